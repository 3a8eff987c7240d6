package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/internal/spatial"
	"github.com/famhub/location-tracking-system/pkg/logger"
	wrap "github.com/famhub/location-tracking-system/pkg/logger/wrapper"
)

const (
	// A sample within this distance of the last uploaded point is noise.
	suppressRadiusMeters = 20.0

	flushInterval = 30 * time.Second
)

// WatchBatcher is the browser sync strategy. It subscribes to the device
// position stream, buffers samples, suppresses those within 20 m of the last
// uploaded point and flushes the buffer every 30 seconds or on Stop. A failed
// batch is prepended back onto the buffer so arrival order survives retries.
// The family roster is polled over the plain read API.
type WatchBatcher struct {
	stream PositionStream
	upload Uploader
	api    FamilyReader
	render RenderFunc
	vis    VisibilitySource

	familyID uuid.UUID
	l        logger.Logger

	flushEvery time.Duration
	active     time.Duration
	hidden     time.Duration

	bufMu       sync.Mutex
	buffer      []models.RawLocation
	lastLat     float64
	lastLng     float64
	hasUploaded bool

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

func NewWatchBatcher(
	stream PositionStream,
	upload Uploader,
	api FamilyReader,
	render RenderFunc,
	vis VisibilitySource,
	familyID uuid.UUID,
	l logger.Logger,
) *WatchBatcher {
	return &WatchBatcher{
		stream:     stream,
		upload:     upload,
		api:        api,
		render:     render,
		vis:        vis,
		familyID:   familyID,
		l:          l,
		flushEvery: flushInterval,
		active:     activeInterval,
		hidden:     hiddenInterval,
	}
}

func (w *WatchBatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return errors.New("watcher already started")
	}
	w.started = true

	ctx, w.cancel = context.WithCancel(ctx)
	ctx = wrap.WithAction(ctx, "watch_and_batch")
	w.done = make(chan struct{})

	go w.loop(ctx)

	return nil
}

// Stop cancels the watch loop and flushes whatever is still buffered.
func (w *WatchBatcher) Stop(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return nil
	}
	w.started = false

	w.cancel()
	<-w.done

	w.flush(wrap.WithAction(ctx, "watch_and_batch_stop"))

	return nil
}

func (w *WatchBatcher) loop(ctx context.Context) {
	defer close(w.done)

	var visCh <-chan Visibility
	if w.vis != nil {
		visCh = w.vis.Changes()
	}

	flushTicker := time.NewTicker(w.flushEvery)
	defer flushTicker.Stop()

	pollTicker := time.NewTicker(w.active)
	defer pollTicker.Stop()

	w.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case sample, ok := <-w.stream.Samples():
			if !ok {
				return
			}
			w.observe(sample)
		case <-flushTicker.C:
			w.flush(ctx)
		case <-pollTicker.C:
			w.poll(ctx)
		case v, ok := <-visCh:
			if !ok {
				visCh = nil
				continue
			}
			switch v {
			case VisibilityActive:
				pollTicker.Reset(w.active)
				w.poll(ctx)
			case VisibilityHidden:
				pollTicker.Reset(w.hidden)
			}
		}
	}
}

// OnSample feeds one device position into the batch buffer, applying the
// same suppression as stream-delivered samples.
func (w *WatchBatcher) OnSample(sample models.RawLocation) {
	w.observe(sample)
}

// observe buffers one watched sample unless it sits within the suppression
// radius of the last uploaded point. Buffered-but-unsent samples do not move
// the reference point.
func (w *WatchBatcher) observe(sample models.RawLocation) {
	w.bufMu.Lock()
	defer w.bufMu.Unlock()

	if w.hasUploaded {
		d := spatial.Distance(w.lastLat, w.lastLng, sample.Latitude, sample.Longitude)
		if d < suppressRadiusMeters {
			return
		}
	}

	w.buffer = append(w.buffer, sample)
}

// flush uploads the buffered samples as one ordered batch. On failure the
// batch is prepended back onto the buffer for the next attempt.
func (w *WatchBatcher) flush(ctx context.Context) {
	w.bufMu.Lock()
	batch := w.buffer
	w.buffer = nil
	w.bufMu.Unlock()

	if len(batch) == 0 {
		return
	}

	if err := w.upload.UploadBatch(ctx, batch); err != nil {
		w.l.Warn(ctx, "batch upload failed, keeping samples for retry", "error", err.Error(), "samples", len(batch))

		w.bufMu.Lock()
		w.buffer = append(batch, w.buffer...)
		w.bufMu.Unlock()
		return
	}

	last := batch[len(batch)-1]

	w.bufMu.Lock()
	w.lastLat = last.Latitude
	w.lastLng = last.Longitude
	w.hasUploaded = true
	w.bufMu.Unlock()
}

func (w *WatchBatcher) poll(ctx context.Context) {
	if w.api == nil || w.render == nil {
		return
	}

	members, err := w.api.FamilyLocations(ctx, w.familyID)
	if err != nil {
		w.l.Warn(wrap.WithFamilyID(ctx, w.familyID.String()), "family roster read failed", "error", err.Error())
		return
	}

	w.render(ctx, members)
}
