package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/internal/domain/types"
	"github.com/famhub/location-tracking-system/pkg/logger"
)

type fakeBackend struct {
	name    types.CacheTier
	data    map[uuid.UUID]models.CurrentPosition
	pingErr error
	getErr  error
	setErr  error

	gets, sets, pings int
}

func newFakeBackend(name types.CacheTier) *fakeBackend {
	return &fakeBackend{name: name, data: map[uuid.UUID]models.CurrentPosition{}}
}

func (f *fakeBackend) Name() types.CacheTier { return f.name }

func (f *fakeBackend) Get(_ context.Context, userID uuid.UUID) (models.CurrentPosition, error) {
	f.gets++
	if f.getErr != nil {
		return models.CurrentPosition{}, f.getErr
	}
	p, ok := f.data[userID]
	if !ok {
		return models.CurrentPosition{}, types.ErrCacheMiss
	}
	return p, nil
}

func (f *fakeBackend) Set(_ context.Context, userID uuid.UUID, p models.CurrentPosition, _ time.Duration) error {
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.data[userID] = p
	return nil
}

func (f *fakeBackend) Delete(_ context.Context, userID uuid.UUID) error {
	delete(f.data, userID)
	return nil
}

func (f *fakeBackend) Ping(_ context.Context) error {
	f.pings++
	return f.pingErr
}

func testLogger() logger.Logger {
	return logger.InitLogger("cache-test", "error")
}

func sourceReturning(p models.CurrentPosition, err error) (SourceFunc, *int) {
	calls := new(int)
	return func(_ context.Context, _ uuid.UUID) (models.CurrentPosition, error) {
		*calls++
		return p, err
	}, calls
}

func TestChain_ProbeSelectsFirstHealthy(t *testing.T) {
	fast := newFakeBackend(types.TierNats)
	fast.pingErr = errors.New("connection refused")
	slow := newFakeBackend(types.TierBadger)

	src, _ := sourceReturning(models.CurrentPosition{}, nil)
	c := NewChain([]Backend{fast, slow}, src, time.Minute, 0, testLogger())

	if got := c.ActiveTier(); got != types.TierNone {
		t.Fatalf("before first use tier should be none, got %s", got)
	}

	_, _ = c.GetCurrentLocation(context.Background(), uuid.New())

	if got := c.ActiveTier(); got != types.TierBadger {
		t.Fatalf("expected badger tier, got %s", got)
	}
	if slow.pings != 1 {
		t.Fatalf("expected a single probe of the healthy tier, got %d", slow.pings)
	}
}

func TestChain_ProbeOnceNotPerRequest(t *testing.T) {
	b := newFakeBackend(types.TierNats)
	src, _ := sourceReturning(models.CurrentPosition{}, nil)
	c := NewChain([]Backend{b}, src, time.Minute, 0, testLogger())

	for range 5 {
		_, _ = c.GetCurrentLocation(context.Background(), uuid.New())
	}

	if b.pings != 1 {
		t.Fatalf("tier must be probed once and remembered, got %d pings", b.pings)
	}
}

func TestChain_MissRepopulatesFromSource(t *testing.T) {
	b := newFakeBackend(types.TierNats)
	userID := uuid.New()
	want := models.CurrentPosition{UserID: userID, Latitude: -26.1, Longitude: 28.0}

	src, calls := sourceReturning(want, nil)
	c := NewChain([]Backend{b}, src, time.Minute, 0, testLogger())

	got, err := c.GetCurrentLocation(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Latitude != want.Latitude || got.Longitude != want.Longitude {
		t.Fatalf("unexpected position: %+v", got)
	}
	if *calls != 1 {
		t.Fatalf("source should have been read once, got %d", *calls)
	}
	if _, ok := b.data[userID]; !ok {
		t.Fatal("miss should repopulate the tier")
	}

	// second read served from the tier
	if _, err := c.GetCurrentLocation(context.Background(), userID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *calls != 1 {
		t.Fatalf("second read must not hit the source, got %d calls", *calls)
	}
}

func TestChain_DegradesOnTierError(t *testing.T) {
	fast := newFakeBackend(types.TierNats)
	slow := newFakeBackend(types.TierBadger)
	userID := uuid.New()
	slow.data[userID] = models.CurrentPosition{UserID: userID, Latitude: 1}

	src, calls := sourceReturning(models.CurrentPosition{}, nil)
	c := NewChain([]Backend{fast, slow}, src, time.Minute, 0, testLogger())

	// healthy at probe time, fails mid-operation
	_, _ = c.GetCurrentLocation(context.Background(), userID)
	fast.getErr = errors.New("broken pipe")

	got, err := c.GetCurrentLocation(context.Background(), userID)
	if err != nil {
		t.Fatalf("tier failure must not surface: %v", err)
	}
	if got.Latitude != 1 {
		t.Fatalf("expected read from next tier, got %+v", got)
	}
	if c.ActiveTier() != types.TierBadger {
		t.Fatalf("expected degradation to badger, got %s", c.ActiveTier())
	}
	if *calls != 1 {
		t.Fatalf("source reads: got %d, want 1 (initial miss only)", *calls)
	}
}

func TestChain_AllTiersDownFallsToSource(t *testing.T) {
	fast := newFakeBackend(types.TierNats)
	fast.pingErr = errors.New("down")
	slow := newFakeBackend(types.TierBadger)
	slow.pingErr = errors.New("down")

	want := models.CurrentPosition{Latitude: 3}
	src, calls := sourceReturning(want, nil)
	c := NewChain([]Backend{fast, slow}, src, time.Minute, 0, testLogger())

	got, err := c.GetCurrentLocation(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Latitude != want.Latitude {
		t.Fatalf("expected source position, got %+v", got)
	}
	if *calls != 1 {
		t.Fatalf("expected one source read, got %d", *calls)
	}
	if c.ActiveTier() != types.TierSource {
		t.Fatalf("expected source tier, got %s", c.ActiveTier())
	}
}

func TestChain_SourceErrorSurfaces(t *testing.T) {
	b := newFakeBackend(types.TierNats)
	src, _ := sourceReturning(models.CurrentPosition{}, types.ErrLocationNotFound)
	c := NewChain([]Backend{b}, src, time.Minute, 0, testLogger())

	_, err := c.GetCurrentLocation(context.Background(), uuid.New())
	if !errors.Is(err, types.ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound, got %v", err)
	}
}

func TestChain_SetWriteThrough(t *testing.T) {
	b := newFakeBackend(types.TierNats)
	src, _ := sourceReturning(models.CurrentPosition{}, nil)
	c := NewChain([]Backend{b}, src, time.Minute, 0, testLogger())

	userID := uuid.New()
	c.SetCurrentLocation(context.Background(), userID, models.CurrentPosition{UserID: userID, Latitude: 7})

	if b.data[userID].Latitude != 7 {
		t.Fatalf("write-through did not reach the tier: %+v", b.data[userID])
	}
}

func TestChain_SetFailureDegradesSilently(t *testing.T) {
	fast := newFakeBackend(types.TierNats)
	fast.setErr = errors.New("timeout")
	slow := newFakeBackend(types.TierBadger)

	src, _ := sourceReturning(models.CurrentPosition{}, nil)
	c := NewChain([]Backend{fast, slow}, src, time.Minute, 0, testLogger())

	userID := uuid.New()
	c.SetCurrentLocation(context.Background(), userID, models.CurrentPosition{UserID: userID, Latitude: 9})

	if slow.data[userID].Latitude != 9 {
		t.Fatal("expected write to land on the next tier")
	}
	if c.ActiveTier() != types.TierBadger {
		t.Fatalf("expected degradation, got %s", c.ActiveTier())
	}
}

func TestChain_ReprobeRecoversFasterTier(t *testing.T) {
	fast := newFakeBackend(types.TierNats)
	fast.pingErr = errors.New("down")
	slow := newFakeBackend(types.TierBadger)

	src, _ := sourceReturning(models.CurrentPosition{}, nil)
	c := NewChain([]Backend{fast, slow}, src, time.Minute, time.Nanosecond, testLogger())

	_, _ = c.GetCurrentLocation(context.Background(), uuid.New())
	if c.ActiveTier() != types.TierBadger {
		t.Fatalf("expected badger first, got %s", c.ActiveTier())
	}

	fast.pingErr = nil
	time.Sleep(time.Millisecond)

	_, _ = c.GetCurrentLocation(context.Background(), uuid.New())
	if c.ActiveTier() != types.TierNats {
		t.Fatalf("expected recovery to nats tier, got %s", c.ActiveTier())
	}
}
