package client

import (
	"context"
	"errors"
	"time"

	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/internal/domain/types"
)

// ErrBridgeUnavailable is returned by bridge implementations when the native
// host is not present, for example when the app runs in a plain browser.
var ErrBridgeUnavailable = errors.New("native bridge unavailable")

// NativeBridge is the only point where the sync controller depends on a
// native host. Every method may fail with ErrBridgeUnavailable, in which
// case the controller degrades to pure-API polling.
type NativeBridge interface {
	// GetCachedFamily returns the family roster cached on-device by the
	// background location service.
	GetCachedFamily(ctx context.Context) ([]models.MemberLocation, error)

	// GetTrackingMode reports whether background tracking runs on this device.
	GetTrackingMode(ctx context.Context) (types.TrackingMode, error)

	StartTracking(ctx context.Context) error
	StopTracking(ctx context.Context) error

	// WakeAllDevices asks the host to ping other family devices for a
	// fresh location fix.
	WakeAllDevices(ctx context.Context) error
}

const bridgeProbeTimeout = 2 * time.Second

// bridgeAvailable probes the native bridge. Any failure means the host is
// absent or broken and the browser strategy is used instead.
func bridgeAvailable(ctx context.Context, bridge NativeBridge) bool {
	if bridge == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, bridgeProbeTimeout)
	defer cancel()

	_, err := bridge.GetTrackingMode(ctx)
	return err == nil
}
