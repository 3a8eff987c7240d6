package tracking

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/internal/domain/types"
)

func speedPtr(v float64) *float64 { return &v }

func position(lat, lng float64, recordedAt time.Time) *models.CurrentPosition {
	return &models.CurrentPosition{
		UserID:     uuid.New(),
		Latitude:   lat,
		Longitude:  lng,
		RecordedAt: recordedAt,
	}
}

func sample(lat, lng float64, speed *float64, recordedAt time.Time) models.RawLocation {
	return models.RawLocation{
		UserID:     uuid.New(),
		Latitude:   lat,
		Longitude:  lng,
		Speed:      speed,
		RecordedAt: recordedAt,
	}
}

func TestClassify_NoPrevious(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		speed *float64
		want  types.MotionState
	}{
		{"fast reported speed", speedPtr(5.0), types.MotionMoving},
		{"slow reported speed", speedPtr(0.3), types.MotionIdle},
		{"exactly 1.0 is not moving", speedPtr(1.0), types.MotionIdle},
		{"no speed at all", nil, types.MotionUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(nil, sample(0, 0, tc.speed, now))
			if got != tc.want {
				t.Fatalf("Classify = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestClassify_LargeDisplacementAlwaysMoving(t *testing.T) {
	now := time.Now()
	prev := position(0, 0, now.Add(-2*time.Second))

	// ~111m north, reported speed zero
	got := Classify(prev, sample(0.001, 0, speedPtr(0), now))
	if got != types.MotionMoving {
		t.Fatalf("displacement >= 50m must classify moving, got %s", got)
	}
}

func TestClassify_CalculatedSpeedOverridesReport(t *testing.T) {
	now := time.Now()

	// ~22m in 10s is 2.2 m/s regardless of the device saying 0
	prev := position(-26.000000, 28.000000, now.Add(-10*time.Second))
	got := Classify(prev, sample(-26.000200, 28.000000, speedPtr(0), now))
	if got != types.MotionMoving {
		t.Fatalf("calculated 2.2 m/s must win over reported 0, got %s", got)
	}

	// barely any displacement over a long window: idle even if the device
	// claims to be driving
	prev = position(0, 0, now.Add(-60*time.Second))
	got = Classify(prev, sample(0.00003, 0, speedPtr(15), now))
	if got != types.MotionIdle {
		t.Fatalf("near-zero displacement must suppress a fast report, got %s", got)
	}
}

func TestClassify_ShortWindowNoiseSuppression(t *testing.T) {
	now := time.Now()

	// <10m displacement in <5s: a fast report is GPS noise
	prev := position(0, 0, now.Add(-2*time.Second))
	got := Classify(prev, sample(0.00005, 0, speedPtr(8), now)) // ~5.5m
	if got != types.MotionIdle {
		t.Fatalf("short window with <10m displacement must be idle, got %s", got)
	}

	// same window but ~33m of displacement corroborates the report
	got = Classify(prev, sample(0.0003, 0, speedPtr(8), now))
	if got != types.MotionMoving {
		t.Fatalf("short window with real displacement should trust the report, got %s", got)
	}
}

func TestClassify_ShortWindowNoReportIsIdle(t *testing.T) {
	now := time.Now()
	prev := position(0, 0, now.Add(-2*time.Second))

	if got := Classify(prev, sample(0.00005, 0, nil, now)); got != types.MotionIdle {
		t.Fatalf("expected idle, got %s", got)
	}
}

func TestClassify_ClockSkewClampedToOneSecond(t *testing.T) {
	now := time.Now()
	// previous sample "from the future", dt clamps to 1s
	prev := position(0, 0, now.Add(30*time.Second))

	// 22m over a clamped 1s window would be 22 m/s but the window is short,
	// so the reported speed path applies: 22m >= 10m and report is fast
	got := Classify(prev, sample(0.0002, 0, speedPtr(4), now))
	if got != types.MotionMoving {
		t.Fatalf("expected moving, got %s", got)
	}
}

func TestRoundCoord(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-26.00000004, -26.0},
		{28.123456789, 28.1234568},
		{-26.0000001, -26.0000001},
		{0, 0},
	}

	for _, tc := range tests {
		if got := roundCoord(tc.in); got != tc.want {
			t.Fatalf("roundCoord(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
