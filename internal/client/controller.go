package client

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/pkg/logger"
	wrap "github.com/famhub/location-tracking-system/pkg/logger/wrapper"
)

// Polling cadence by app visibility.
const (
	activeInterval = 10 * time.Second
	hiddenInterval = 30 * time.Second
)

// Visibility of the hosting page or app.
type Visibility string

const (
	VisibilityActive Visibility = "active"
	VisibilityHidden Visibility = "hidden"
)

// VisibilitySource delivers visibility transitions of the hosting app.
// A nil source means the app is always considered active.
type VisibilitySource interface {
	Changes() <-chan Visibility
}

// FamilyReader reads the family roster from the tracking API.
type FamilyReader interface {
	FamilyLocations(ctx context.Context, familyID uuid.UUID) ([]models.MemberLocation, error)
}

// RenderFunc receives each refreshed roster. The map layer hangs off here.
type RenderFunc func(ctx context.Context, members []models.MemberLocation)

// Uploader ships an ordered batch of samples to the tracking API.
type Uploader interface {
	UploadBatch(ctx context.Context, samples []models.RawLocation) error
}

// PositionStream is the device position API as seen by the browser client.
type PositionStream interface {
	Samples() <-chan models.RawLocation
}

// Controller drives one consuming application. Start is non-blocking;
// Stop flushes pending work and releases timers. OnSample hands the
// controller a device position observed by the host app directly.
type Controller interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	OnSample(sample models.RawLocation)
}

// Deps carries everything either sync strategy may need.
type Deps struct {
	Bridge NativeBridge
	API    FamilyReader
	Render RenderFunc
	Stream PositionStream
	Upload Uploader
	Vis    VisibilitySource

	FamilyID uuid.UUID
}

// Detect probes the native bridge and selects the sync strategy. A working
// bridge means the cache-first native poller; anything else gets the
// browser watch-and-batch client.
func Detect(ctx context.Context, deps Deps, l logger.Logger) Controller {
	ctx = wrap.WithAction(ctx, "client_detect")

	if bridgeAvailable(ctx, deps.Bridge) {
		l.Info(ctx, "native bridge detected, using cache-first poller")
		return NewCacheFirstPoller(deps.Bridge, deps.API, deps.Render, deps.Vis, deps.FamilyID, l)
	}

	l.Info(ctx, "no native bridge, using watch-and-batch client")
	return NewWatchBatcher(deps.Stream, deps.Upload, deps.API, deps.Render, deps.Vis, deps.FamilyID, l)
}
