package tracking

import (
	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/internal/domain/types"
	"github.com/famhub/location-tracking-system/internal/spatial"
)

// Classification thresholds. Raw GPS speed is noisy at low velocity, so a
// reported speed is only trusted when the displacement corroborates it.
const (
	unambiguousMoveMeters = 50.0 // displacement that is moving no matter what
	speedWindowSeconds    = 5.0  // minimum window for a reliable d/dt speed
	movingSpeedMS         = 1.0  // m/s, roughly a slow walk
	trustReportMeters     = 10.0 // displacement needed to believe a fast report
)

// Classify derives the motion state of a new sample from its displacement
// against the previous stored position. With no previous position only the
// sample's self-reported speed is available.
func Classify(prev *models.CurrentPosition, sample models.RawLocation) types.MotionState {
	if prev == nil {
		return classifyByReportedSpeed(sample.Speed)
	}

	d := spatial.Distance(prev.Latitude, prev.Longitude, sample.Latitude, sample.Longitude)

	dt := sample.RecordedAt.Sub(prev.RecordedAt).Seconds()
	if dt < 1 {
		dt = 1
	}

	if d >= unambiguousMoveMeters {
		return types.MotionMoving
	}

	if dt >= speedWindowSeconds {
		// Calculated speed over a meaningful window wins over the device's
		// own report: a "moving" report with near-zero displacement is noise.
		if d/dt >= movingSpeedMS {
			return types.MotionMoving
		}
		return types.MotionIdle
	}

	// Window too short for a trustworthy d/dt. Believe a fast report only
	// when the position actually changed.
	if sample.Speed != nil && *sample.Speed > movingSpeedMS && d >= trustReportMeters {
		return types.MotionMoving
	}
	return types.MotionIdle
}

func classifyByReportedSpeed(speed *float64) types.MotionState {
	if speed == nil {
		return types.MotionUnknown
	}
	if *speed > movingSpeedMS {
		return types.MotionMoving
	}
	return types.MotionIdle
}
