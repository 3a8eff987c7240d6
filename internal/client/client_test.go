package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/internal/domain/types"
	"github.com/famhub/location-tracking-system/pkg/logger"
)

type fakeBridge struct {
	mu sync.Mutex

	roster    []models.MemberLocation
	rosterErr error
	modeErr   error

	startCalls int
	stopCalls  int
	wakeCalls  int
}

func (b *fakeBridge) GetCachedFamily(ctx context.Context) ([]models.MemberLocation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.roster, b.rosterErr
}

func (b *fakeBridge) GetTrackingMode(ctx context.Context) (types.TrackingMode, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.modeErr != nil {
		return "", b.modeErr
	}
	return types.TrackingEnabled, nil
}

func (b *fakeBridge) StartTracking(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.startCalls++
	return nil
}

func (b *fakeBridge) StopTracking(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopCalls++
	return nil
}

func (b *fakeBridge) WakeAllDevices(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wakeCalls++
	return nil
}

type fakeReader struct {
	mu      sync.Mutex
	roster  []models.MemberLocation
	err     error
	calls   int
	familyI uuid.UUID
}

func (r *fakeReader) FamilyLocations(ctx context.Context, familyID uuid.UUID) ([]models.MemberLocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.familyI = familyID
	return r.roster, r.err
}

func (r *fakeReader) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type fakeUploader struct {
	mu      sync.Mutex
	batches [][]models.RawLocation
	failN   int
}

func (u *fakeUploader) UploadBatch(ctx context.Context, samples []models.RawLocation) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failN > 0 {
		u.failN--
		return errors.New("upstream unavailable")
	}
	cp := make([]models.RawLocation, len(samples))
	copy(cp, samples)
	u.batches = append(u.batches, cp)
	return nil
}

func (u *fakeUploader) uploaded() [][]models.RawLocation {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([][]models.RawLocation, len(u.batches))
	copy(out, u.batches)
	return out
}

type fakeStream struct {
	ch chan models.RawLocation
}

func (s *fakeStream) Samples() <-chan models.RawLocation {
	return s.ch
}

type fakeVis struct {
	ch chan Visibility
}

func (v *fakeVis) Changes() <-chan Visibility {
	return v.ch
}

type renderSink struct {
	mu     sync.Mutex
	calls  int
	latest []models.MemberLocation
}

func (r *renderSink) render(ctx context.Context, members []models.MemberLocation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.latest = members
}

func (r *renderSink) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func testLog() logger.Logger {
	return logger.InitLogger("test", logger.LevelError)
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func member(userID uuid.UUID) models.MemberLocation {
	return models.MemberLocation{
		CurrentPosition: models.CurrentPosition{
			UserID:   userID,
			Latitude: -26.1,
		},
	}
}

func rawSample(lat, lng float64) models.RawLocation {
	return models.RawLocation{
		UserID:     uuid.New(),
		FamilyID:   uuid.New(),
		Latitude:   lat,
		Longitude:  lng,
		RecordedAt: time.Now().UTC(),
	}
}

func TestDetect(t *testing.T) {
	ctx := context.Background()
	deps := Deps{
		Bridge:   &fakeBridge{},
		API:      &fakeReader{},
		Render:   (&renderSink{}).render,
		Stream:   &fakeStream{ch: make(chan models.RawLocation)},
		Upload:   &fakeUploader{},
		FamilyID: uuid.New(),
	}

	if _, ok := Detect(ctx, deps, testLog()).(*CacheFirstPoller); !ok {
		t.Fatalf("healthy bridge should select the cache-first poller")
	}

	deps.Bridge = &fakeBridge{modeErr: ErrBridgeUnavailable}
	if _, ok := Detect(ctx, deps, testLog()).(*WatchBatcher); !ok {
		t.Fatalf("broken bridge should select the watch-and-batch client")
	}

	deps.Bridge = nil
	if _, ok := Detect(ctx, deps, testLog()).(*WatchBatcher); !ok {
		t.Fatalf("missing bridge should select the watch-and-batch client")
	}
}

func TestPollerRendersCacheWithoutAPICall(t *testing.T) {
	bridge := &fakeBridge{roster: []models.MemberLocation{member(uuid.New())}}
	api := &fakeReader{}
	sink := &renderSink{}

	p := NewCacheFirstPoller(bridge, api, sink.render, nil, uuid.New(), testLog())
	p.active = 10 * time.Millisecond

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer p.Stop(context.Background())

	waitFor(t, func() bool { return sink.callCount() >= 2 }, "renders")

	if api.callCount() != 0 {
		t.Fatalf("expected zero API calls on cached path, got %d", api.callCount())
	}
}

func TestPollerFallsBackToAPI(t *testing.T) {
	bridge := &fakeBridge{rosterErr: ErrBridgeUnavailable}
	api := &fakeReader{roster: []models.MemberLocation{member(uuid.New())}}
	sink := &renderSink{}
	familyID := uuid.New()

	p := NewCacheFirstPoller(bridge, api, sink.render, nil, familyID, testLog())
	p.active = 10 * time.Millisecond

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer p.Stop(context.Background())

	waitFor(t, func() bool { return sink.callCount() >= 1 }, "render via API fallback")

	if api.callCount() == 0 {
		t.Fatalf("expected API fallback when the roster cache is unavailable")
	}

	api.mu.Lock()
	got := api.familyI
	api.mu.Unlock()
	if got != familyID {
		t.Fatalf("API fallback queried family %s, want %s", got, familyID)
	}
}

func TestPollerStartsAndStopsTracking(t *testing.T) {
	bridge := &fakeBridge{roster: []models.MemberLocation{member(uuid.New())}}
	sink := &renderSink{}

	p := NewCacheFirstPoller(bridge, &fakeReader{}, sink.render, nil, uuid.New(), testLog())
	p.active = 10 * time.Millisecond

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}

	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	if bridge.startCalls != 1 || bridge.stopCalls != 1 {
		t.Fatalf("expected one start/stop tracking call, got %d/%d", bridge.startCalls, bridge.stopCalls)
	}
	if bridge.wakeCalls != 1 {
		t.Fatalf("expected start to wake family devices once, got %d", bridge.wakeCalls)
	}
}

func TestPollerResyncsOnVisibilityGain(t *testing.T) {
	bridge := &fakeBridge{roster: []models.MemberLocation{member(uuid.New())}}
	sink := &renderSink{}
	vis := &fakeVis{ch: make(chan Visibility, 1)}

	p := NewCacheFirstPoller(bridge, &fakeReader{}, sink.render, vis, uuid.New(), testLog())
	p.active = time.Hour
	p.hidden = time.Hour

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer p.Stop(context.Background())

	waitFor(t, func() bool { return sink.callCount() == 1 }, "initial sync")

	vis.ch <- VisibilityActive

	waitFor(t, func() bool { return sink.callCount() == 2 }, "resync on visibility gain")
}

func TestWatcherSuppressesNearLastUploadedPoint(t *testing.T) {
	uploads := &fakeUploader{}
	w := NewWatchBatcher(nil, uploads, nil, nil, nil, uuid.New(), testLog())
	ctx := context.Background()

	first := rawSample(-26.000000, 28.000000)
	w.observe(first)
	w.flush(ctx)

	// ~5.5 m from the uploaded point, inside the 20 m radius.
	w.observe(rawSample(-26.000050, 28.000000))
	w.flush(ctx)

	// ~33 m away, outside the radius.
	far := rawSample(-26.000300, 28.000000)
	w.observe(far)
	w.flush(ctx)

	got := uploads.uploaded()
	if len(got) != 2 {
		t.Fatalf("expected 2 uploaded batches, got %d", len(got))
	}
	if got[0][0].Latitude != first.Latitude {
		t.Fatalf("first batch carried wrong sample")
	}
	if got[1][0].Latitude != far.Latitude {
		t.Fatalf("second batch carried wrong sample")
	}
}

func TestWatcherBuffersEverythingBeforeFirstUpload(t *testing.T) {
	uploads := &fakeUploader{}
	w := NewWatchBatcher(nil, uploads, nil, nil, nil, uuid.New(), testLog())

	// Two samples a meter apart, nothing uploaded yet.
	w.observe(rawSample(-26.000000, 28.000000))
	w.observe(rawSample(-26.000009, 28.000000))
	w.flush(context.Background())

	got := uploads.uploaded()
	if len(got) != 1 || len(got[0]) != 2 {
		t.Fatalf("expected one batch of 2 samples before first upload, got %+v", got)
	}
}

func TestWatcherPrependsFailedBatch(t *testing.T) {
	uploads := &fakeUploader{failN: 1}
	w := NewWatchBatcher(nil, uploads, nil, nil, nil, uuid.New(), testLog())
	ctx := context.Background()

	a := rawSample(-26.000000, 28.000000)
	w.observe(a)
	w.flush(ctx) // fails, batch goes back onto the buffer

	b := rawSample(-26.001000, 28.000000)
	w.observe(b)
	w.flush(ctx)

	got := uploads.uploaded()
	if len(got) != 1 {
		t.Fatalf("expected a single retried batch, got %d", len(got))
	}
	if len(got[0]) != 2 {
		t.Fatalf("expected retried batch of 2 samples, got %d", len(got[0]))
	}
	if got[0][0].Latitude != a.Latitude || got[0][1].Latitude != b.Latitude {
		t.Fatalf("retry broke arrival order: %+v", got[0])
	}
}

func TestWatcherStopFlushesBuffer(t *testing.T) {
	uploads := &fakeUploader{}
	stream := &fakeStream{ch: make(chan models.RawLocation, 1)}

	w := NewWatchBatcher(stream, uploads, nil, nil, nil, uuid.New(), testLog())
	w.flushEvery = time.Hour
	w.active = time.Hour

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	stream.ch <- rawSample(-26.000000, 28.000000)

	waitFor(t, func() bool {
		w.bufMu.Lock()
		defer w.bufMu.Unlock()
		return len(w.buffer) == 1
	}, "sample buffered")

	if err := w.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}

	got := uploads.uploaded()
	if len(got) != 1 || len(got[0]) != 1 {
		t.Fatalf("expected stop to flush the buffered sample, got %+v", got)
	}
}

func TestWatcherPeriodicFlush(t *testing.T) {
	uploads := &fakeUploader{}
	stream := &fakeStream{ch: make(chan models.RawLocation, 1)}

	w := NewWatchBatcher(stream, uploads, nil, nil, nil, uuid.New(), testLog())
	w.flushEvery = 10 * time.Millisecond
	w.active = time.Hour

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.Stop(context.Background())

	stream.ch <- rawSample(-26.000000, 28.000000)

	waitFor(t, func() bool { return len(uploads.uploaded()) >= 1 }, "periodic flush")
}
