package tracking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/internal/domain/types"
	"github.com/famhub/location-tracking-system/pkg/logger"
	wrap "github.com/famhub/location-tracking-system/pkg/logger/wrapper"
)

type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakePositions struct {
	byUser    map[uuid.UUID]models.CurrentPosition
	upsertErr error
	listErr   error
}

func newFakePositions() *fakePositions {
	return &fakePositions{byUser: map[uuid.UUID]models.CurrentPosition{}}
}

func (f *fakePositions) Upsert(_ context.Context, p *models.CurrentPosition) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	p.UpdatedAt = time.Now().UTC()
	f.byUser[p.UserID] = *p
	return nil
}

func (f *fakePositions) Get(_ context.Context, userID uuid.UUID) (models.CurrentPosition, error) {
	p, ok := f.byUser[userID]
	if !ok {
		return models.CurrentPosition{}, types.ErrLocationNotFound
	}
	return p, nil
}

func (f *fakePositions) ListByFamily(_ context.Context, familyID uuid.UUID) ([]models.CurrentPosition, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.CurrentPosition
	for _, p := range f.byUser {
		if p.FamilyID == familyID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeHistory struct {
	entries   []models.LocationHistoryEntry
	appendErr error
}

func (f *fakeHistory) Append(_ context.Context, e *models.LocationHistoryEntry) (uuid.UUID, error) {
	if f.appendErr != nil {
		return uuid.Nil, f.appendErr
	}
	e.ID = uuid.New()
	f.entries = append(f.entries, *e)
	return e.ID, nil
}

func (f *fakeHistory) ListRecent(_ context.Context, userID uuid.UUID, limit int) ([]models.LocationHistoryEntry, error) {
	var out []models.LocationHistoryEntry
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if f.entries[i].UserID == userID {
			out = append(out, f.entries[i])
		}
	}
	return out, nil
}

type fakeCache struct {
	entries map[uuid.UUID]models.CurrentPosition
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[uuid.UUID]models.CurrentPosition{}}
}

func (f *fakeCache) GetCurrentLocation(_ context.Context, userID uuid.UUID) (models.CurrentPosition, error) {
	p, ok := f.entries[userID]
	if !ok {
		return models.CurrentPosition{}, types.ErrLocationNotFound
	}
	return p, nil
}

func (f *fakeCache) SetCurrentLocation(_ context.Context, userID uuid.UUID, p models.CurrentPosition) {
	f.entries[userID] = p
}

type fakeSettings struct {
	settings models.TrackingSettings
}

func (f *fakeSettings) Resolve(_ context.Context, userID uuid.UUID) models.TrackingSettings {
	s := f.settings
	s.UserID = userID
	return s
}

type fakeGeofence struct {
	events     []models.GeofenceEvent
	processErr error
	panics     bool
	calls      int
}

func (f *fakeGeofence) Process(_ context.Context, _, _ uuid.UUID, _, _ float64) ([]models.GeofenceEvent, error) {
	f.calls++
	if f.panics {
		panic("containment blew up")
	}
	return f.events, f.processErr
}

type fakeAlerts struct {
	dispatched [][]models.GeofenceEvent
}

func (f *fakeAlerts) Dispatch(_ context.Context, _ uuid.UUID, events []models.GeofenceEvent) ([]models.AlertRecord, error) {
	f.dispatched = append(f.dispatched, events)
	return nil, nil
}

type fakeHub struct {
	messages []any
}

func (f *fakeHub) Broadcast(_ uuid.UUID, msg any) {
	f.messages = append(f.messages, msg)
}

type fixture struct {
	svc       *Service
	positions *fakePositions
	history   *fakeHistory
	cache     *fakeCache
	geofence  *fakeGeofence
	alerts    *fakeAlerts
	hub       *fakeHub
}

func newFixture() *fixture {
	f := &fixture{
		positions: newFakePositions(),
		history:   &fakeHistory{},
		cache:     newFakeCache(),
		geofence:  &fakeGeofence{},
		alerts:    &fakeAlerts{},
		hub:       &fakeHub{},
	}
	f.svc = NewService(
		f.positions,
		f.history,
		f.cache,
		&fakeSettings{settings: models.TrackingSettings{
			UpdateIntervalSeconds:  30,
			IdleHeartbeatSeconds:   300,
			OfflineThresholdSecond: 660,
			StaleThresholdSeconds:  3600,
		}},
		f.geofence,
		f.alerts,
		f.hub,
		fakeTxManager{},
		logger.InitLogger("tracking-test", "error"),
	)
	return f
}

func rawSample(userID, familyID uuid.UUID) models.RawLocation {
	return models.RawLocation{
		UserID:     userID,
		FamilyID:   familyID,
		Latitude:   -26.10012345678,
		Longitude:  28.05298765432,
		Accuracy:   12,
		Speed:      speedPtr(3.5),
		RecordedAt: time.Now().UTC(),
		DeviceID:   "pixel-8",
		Platform:   types.PlatformAndroid,
		AppVersion: "2.4.1",
	}
}

func TestRecord_HappyPath(t *testing.T) {
	f := newFixture()
	userID, familyID := uuid.New(), uuid.New()

	res, err := f.svc.Record(context.Background(), rawSample(userID, familyID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.MotionState != types.MotionMoving {
		t.Fatalf("first sample with 3.5 m/s must be moving, got %s", res.MotionState)
	}
	if !res.StoredHistory || res.HistoryID == uuid.Nil {
		t.Fatalf("expected stored history row, got %+v", res)
	}

	stored := f.positions.byUser[userID]
	if stored.Latitude != -26.1001235 || stored.Longitude != 28.0529877 {
		t.Fatalf("coordinates must be rounded to 7 decimals, got %v, %v", stored.Latitude, stored.Longitude)
	}
	if _, ok := f.cache.entries[userID]; !ok {
		t.Fatal("accepted write must refresh the cache")
	}
	if len(f.hub.messages) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(f.hub.messages))
	}
}

func TestRecord_DurableWriteFailureSurfaces(t *testing.T) {
	f := newFixture()
	f.positions.upsertErr = errors.New("connection refused")

	_, err := f.svc.Record(context.Background(), rawSample(uuid.New(), uuid.New()))
	if !errors.Is(err, types.ErrDatabase) {
		t.Fatalf("expected ErrDatabase, got %v", err)
	}
	if f.geofence.calls != 0 {
		t.Fatal("side effects must not run after a failed write")
	}
	if len(f.history.entries) != 0 {
		t.Fatal("history must not be appended after a failed write")
	}
}

func TestRecord_HistoryFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture()
	f.history.appendErr = errors.New("disk full")
	userID := uuid.New()

	res, err := f.svc.Record(context.Background(), rawSample(userID, uuid.New()))
	if err != nil {
		t.Fatalf("history failure must not surface: %v", err)
	}
	if res.StoredHistory {
		t.Fatal("StoredHistory must be false")
	}
	if _, ok := f.positions.byUser[userID]; !ok {
		t.Fatal("position must still be current")
	}
}

func TestRecord_DuplicateSampleSkipped(t *testing.T) {
	f := newFixture()
	f.history.appendErr = types.ErrDuplicateSample

	res, err := f.svc.Record(context.Background(), rawSample(uuid.New(), uuid.New()))
	if err != nil {
		t.Fatalf("duplicate must not surface: %v", err)
	}
	if res.StoredHistory {
		t.Fatal("duplicate append must report StoredHistory=false")
	}
}

func TestRecord_GeofenceFailureIsolated(t *testing.T) {
	f := newFixture()
	// Shape the failure the way the repository layer actually reports it:
	// wrapped with the log context of the failing query.
	repoCtx := wrap.WithAction(context.Background(), "db_query")
	f.geofence.processErr = wrap.Error(repoCtx, fmt.Errorf("GeofenceRepo.ListActiveByFamily: %w", errors.New("connection refused")))

	res, err := f.svc.Record(context.Background(), rawSample(uuid.New(), uuid.New()))
	if err != nil {
		t.Fatalf("geofence failure must not surface: %v", err)
	}
	if len(res.GeofenceEvents) != 0 {
		t.Fatalf("no events expected, got %d", len(res.GeofenceEvents))
	}
	if len(f.alerts.dispatched) != 0 {
		t.Fatal("alerts must not run without events")
	}
}

func TestRecord_SideEffectPanicRecovered(t *testing.T) {
	f := newFixture()
	f.geofence.panics = true
	userID := uuid.New()

	res, err := f.svc.Record(context.Background(), rawSample(userID, uuid.New()))
	if err != nil {
		t.Fatalf("side-effect panic must not surface: %v", err)
	}
	if len(res.GeofenceEvents) != 0 {
		t.Fatal("panicked processing must yield no events")
	}
	if _, ok := f.positions.byUser[userID]; !ok {
		t.Fatal("position write must survive the panic")
	}
}

func TestRecord_EventsFlowToAlertsAndBroadcast(t *testing.T) {
	f := newFixture()
	familyID, userID := uuid.New(), uuid.New()
	f.geofence.events = []models.GeofenceEvent{{
		ID:       uuid.New(),
		Type:     types.EventGeofenceEnter,
		FamilyID: familyID,
		UserID:   userID,
	}}

	res, err := f.svc.Record(context.Background(), rawSample(userID, familyID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.GeofenceEvents) != 1 {
		t.Fatalf("expected 1 event in result, got %d", len(res.GeofenceEvents))
	}
	if len(f.alerts.dispatched) != 1 || len(f.alerts.dispatched[0]) != 1 {
		t.Fatalf("expected events handed to alerts engine, got %+v", f.alerts.dispatched)
	}

	update, ok := f.hub.messages[0].(models.FamilyLocationUpdate)
	if !ok {
		t.Fatalf("unexpected broadcast payload %T", f.hub.messages[0])
	}
	if len(update.Events) != 1 {
		t.Fatalf("broadcast should carry the events, got %d", len(update.Events))
	}
}

func TestRecord_UsesPreviousPositionForClassification(t *testing.T) {
	f := newFixture()
	userID, familyID := uuid.New(), uuid.New()
	now := time.Now().UTC()

	f.positions.byUser[userID] = models.CurrentPosition{
		UserID:     userID,
		FamilyID:   familyID,
		Latitude:   -26.000000,
		Longitude:  28.000000,
		RecordedAt: now.Add(-10 * time.Second),
	}

	s := rawSample(userID, familyID)
	s.Latitude = -26.000200
	s.Longitude = 28.000000
	s.Speed = speedPtr(0)
	s.RecordedAt = now

	res, err := f.svc.Record(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// ~22m in 10s: calculated 2.2 m/s beats the reported 0
	if res.MotionState != types.MotionMoving {
		t.Fatalf("expected moving, got %s", res.MotionState)
	}
}

func TestFamilyLocations_FreshnessFlags(t *testing.T) {
	f := newFixture()
	familyID := uuid.New()
	now := time.Now().UTC()

	fresh, offline, stale := uuid.New(), uuid.New(), uuid.New()
	f.positions.byUser[fresh] = models.CurrentPosition{UserID: fresh, FamilyID: familyID, UpdatedAt: now.Add(-10 * time.Second)}
	f.positions.byUser[offline] = models.CurrentPosition{UserID: offline, FamilyID: familyID, UpdatedAt: now.Add(-15 * time.Minute)}
	f.positions.byUser[stale] = models.CurrentPosition{UserID: stale, FamilyID: familyID, UpdatedAt: now.Add(-2 * time.Hour)}

	got, err := f.svc.FamilyLocations(context.Background(), familyID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 members, got %d", len(got))
	}

	flags := map[uuid.UUID][2]bool{}
	for _, m := range got {
		flags[m.UserID] = [2]bool{m.IsStale, m.IsOffline}
	}

	if flags[fresh] != [2]bool{false, false} {
		t.Fatalf("fresh member flagged: %v", flags[fresh])
	}
	// 15 minutes exceeds the 11-minute offline threshold but not the
	// 1-hour stale threshold
	if flags[offline] != [2]bool{false, true} {
		t.Fatalf("offline member flags wrong: %v", flags[offline])
	}
	if flags[stale] != [2]bool{true, true} {
		t.Fatalf("stale member flags wrong: %v", flags[stale])
	}
}

func TestFamilyLocations_WrappedRepoError(t *testing.T) {
	f := newFixture()
	rootErr := errors.New("connection reset")
	repoCtx := wrap.WithAction(context.Background(), "db_query")
	f.positions.listErr = wrap.Error(repoCtx, fmt.Errorf("PositionRepo.ListByFamily: %w", rootErr))

	_, err := f.svc.FamilyLocations(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected the repo failure to surface")
	}
	// The service wraps the error a second time; the chain must stay
	// finite and keep the original cause.
	if errors.Unwrap(err) == err {
		t.Fatal("error must not be its own cause")
	}
	if !errors.Is(err, rootErr) {
		t.Fatalf("cause lost: %v", err)
	}
	if got := err.Error(); got != "PositionRepo.ListByFamily: connection reset" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestCurrentLocation_ReadsThroughCache(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	f.cache.entries[userID] = models.CurrentPosition{UserID: userID, Latitude: 5}

	got, err := f.svc.CurrentLocation(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Latitude != 5 {
		t.Fatalf("unexpected position: %+v", got)
	}
}

func TestHistory_LimitNormalized(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	for range 3 {
		if _, err := f.svc.Record(context.Background(), rawSample(userID, uuid.New())); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got, err := f.svc.History(context.Background(), userID, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
}
