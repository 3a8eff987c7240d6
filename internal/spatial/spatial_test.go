package spatial

import (
	"math"
	"testing"

	"github.com/famhub/location-tracking-system/internal/domain/models"
)

func TestDistance_KnownPair(t *testing.T) {
	// ~0.0002 degrees of latitude is about 22 meters
	d := Distance(-26.000000, 28.000000, -26.000200, 28.000000)
	if math.Abs(d-22.2) > 0.5 {
		t.Fatalf("expected ~22.2m, got %.2f", d)
	}
}

func TestDistance_ZeroForSamePoint(t *testing.T) {
	if d := Distance(51.5, -0.12, 51.5, -0.12); d != 0 {
		t.Fatalf("expected 0, got %f", d)
	}
}

func TestDistance_Symmetric(t *testing.T) {
	a := Distance(40.7128, -74.0060, 34.0522, -118.2437)
	b := Distance(34.0522, -118.2437, 40.7128, -74.0060)
	if math.Abs(a-b) > 1e-6 {
		t.Fatalf("distance must be symmetric: %f vs %f", a, b)
	}
	// NYC to LA is roughly 3,940 km
	if a < 3.9e6 || a > 4.0e6 {
		t.Fatalf("NYC-LA distance out of range: %.0f", a)
	}
}

func TestPointInPolygon(t *testing.T) {
	square := []models.LatLng{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 10},
		{Latitude: 10, Longitude: 10},
		{Latitude: 10, Longitude: 0},
	}

	tests := []struct {
		name     string
		lat, lng float64
		want     bool
	}{
		{"center", 5, 5, true},
		{"outside north", 11, 5, false},
		{"outside west", 5, -1, false},
		{"near corner inside", 0.1, 0.1, true},
		{"far away", -45, 170, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := PointInPolygon(tc.lat, tc.lng, square); got != tc.want {
				t.Fatalf("PointInPolygon(%.1f, %.1f) = %v, want %v", tc.lat, tc.lng, got, tc.want)
			}
		})
	}
}

func TestPointInPolygon_DegenerateShapes(t *testing.T) {
	if PointInPolygon(1, 1, nil) {
		t.Fatal("empty polygon can contain nothing")
	}
	line := []models.LatLng{{Latitude: 0, Longitude: 0}, {Latitude: 1, Longitude: 1}}
	if PointInPolygon(0.5, 0.5, line) {
		t.Fatal("two vertices can contain nothing")
	}
}
