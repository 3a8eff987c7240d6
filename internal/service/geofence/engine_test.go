package geofence

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/internal/domain/types"
	"github.com/famhub/location-tracking-system/pkg/logger"
	wrap "github.com/famhub/location-tracking-system/pkg/logger/wrapper"
)

type memberKey struct {
	userID, geofenceID uuid.UUID
}

type fakeStore struct {
	fences  []models.Geofence
	listErr error

	members map[memberKey]bool

	events    []models.GeofenceEvent
	createErr error
}

func newFakeStore(fences ...models.Geofence) *fakeStore {
	return &fakeStore{fences: fences, members: map[memberKey]bool{}}
}

func (f *fakeStore) ListActiveByFamily(_ context.Context, _ uuid.UUID) ([]models.Geofence, error) {
	return f.fences, f.listErr
}

func (f *fakeStore) Get(_ context.Context, userID, geofenceID uuid.UUID) (models.MembershipState, error) {
	inside, ok := f.members[memberKey{userID, geofenceID}]
	if !ok {
		return models.MembershipState{}, types.ErrNotFound
	}
	return models.MembershipState{UserID: userID, GeofenceID: geofenceID, Inside: inside}, nil
}

func (f *fakeStore) Set(_ context.Context, userID, geofenceID uuid.UUID, inside bool) error {
	f.members[memberKey{userID, geofenceID}] = inside
	return nil
}

func (f *fakeStore) Create(_ context.Context, ev *models.GeofenceEvent) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.events = append(f.events, *ev)
	return nil
}

func circleFence(familyID uuid.UUID, lat, lng, radius float64) models.Geofence {
	return models.Geofence{
		ID:           uuid.New(),
		FamilyID:     familyID,
		Name:         "home",
		Shape:        types.ShapeCircle,
		CenterLat:    lat,
		CenterLng:    lng,
		RadiusMeters: radius,
		Active:       true,
	}
}

func testEngine(store *fakeStore) *Engine {
	return NewEngine(store, store, store, logger.InitLogger("geofence-test", "error"))
}

func TestProcess_FirstContactInitializesSilently(t *testing.T) {
	familyID, userID := uuid.New(), uuid.New()
	store := newFakeStore(circleFence(familyID, 0, 0, 100))
	e := testEngine(store)

	events, err := e.Process(context.Background(), familyID, userID, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("first contact must not emit events, got %d", len(events))
	}
	if inside := store.members[memberKey{userID, store.fences[0].ID}]; !inside {
		t.Fatal("membership should be initialized to current containment")
	}
}

func TestProcess_EnterEmitsExactlyOneEvent(t *testing.T) {
	familyID, userID := uuid.New(), uuid.New()
	fence := circleFence(familyID, 0, 0, 100)
	store := newFakeStore(fence)
	store.members[memberKey{userID, fence.ID}] = false
	e := testEngine(store)

	events, err := e.Process(context.Background(), familyID, userID, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected exactly one event, got %d", len(events))
	}
	if events[0].Type != types.EventGeofenceEnter {
		t.Fatalf("expected enter, got %s", events[0].Type)
	}
	if !store.members[memberKey{userID, fence.ID}] {
		t.Fatal("membership should flip to inside")
	}

	// inside-to-inside: no further events
	events, err = e.Process(context.Background(), familyID, userID, 0.0001, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("unchanged containment must emit zero events, got %d", len(events))
	}
}

func TestProcess_ExitEmitsExitEvent(t *testing.T) {
	familyID, userID := uuid.New(), uuid.New()
	fence := circleFence(familyID, 0, 0, 100)
	store := newFakeStore(fence)
	store.members[memberKey{userID, fence.ID}] = true
	e := testEngine(store)

	// ~1.1km away at 0.01 degrees latitude
	events, err := e.Process(context.Background(), familyID, userID, 0.01, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].Type != types.EventGeofenceExit {
		t.Fatalf("expected a single exit event, got %+v", events)
	}
	if store.members[memberKey{userID, fence.ID}] {
		t.Fatal("membership should flip to outside")
	}
}

func TestProcess_ListFailureSurfaces(t *testing.T) {
	familyID, userID := uuid.New(), uuid.New()
	store := newFakeStore()
	rootErr := errors.New("connection refused")
	repoCtx := wrap.WithAction(context.Background(), "db_query")
	store.listErr = wrap.Error(repoCtx, fmt.Errorf("GeofenceRepo.ListActiveByFamily: %w", rootErr))
	e := testEngine(store)

	_, err := e.Process(context.Background(), familyID, userID, 0, 0)
	if err == nil {
		t.Fatal("expected the repo failure to surface")
	}
	if errors.Unwrap(err) == err {
		t.Fatal("error must not be its own cause")
	}
	if !errors.Is(err, rootErr) {
		t.Fatalf("cause lost: %v", err)
	}
	if got := err.Error(); got != "GeofenceRepo.ListActiveByFamily: connection refused" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestProcess_EventWriteFailureSkipsStateFlip(t *testing.T) {
	familyID, userID := uuid.New(), uuid.New()
	fence := circleFence(familyID, 0, 0, 100)
	store := newFakeStore(fence)
	store.members[memberKey{userID, fence.ID}] = false
	// Repositories hand back errors already wrapped with their log context;
	// the engine logs and absorbs them without re-entering the error chain.
	repoCtx := wrap.WithAction(context.Background(), "db_insert")
	store.createErr = wrap.Error(repoCtx, fmt.Errorf("EventRepo.Create: %w", errors.New("insert failed")))
	e := testEngine(store)

	events, err := e.Process(context.Background(), familyID, userID, 0, 0)
	if err != nil {
		t.Fatalf("per-geofence failures are absorbed: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("failed event write must not be reported, got %d", len(events))
	}
	if store.members[memberKey{userID, fence.ID}] {
		t.Fatal("membership must not flip when the event record failed, so the edge is retried")
	}
}

func TestProcess_PolygonFence(t *testing.T) {
	familyID, userID := uuid.New(), uuid.New()
	fence := models.Geofence{
		ID:       uuid.New(),
		FamilyID: familyID,
		Name:     "school block",
		Shape:    types.ShapePolygon,
		Vertices: []models.LatLng{
			{Latitude: 0, Longitude: 0},
			{Latitude: 0, Longitude: 1},
			{Latitude: 1, Longitude: 1},
			{Latitude: 1, Longitude: 0},
		},
		Active: true,
	}
	store := newFakeStore(fence)
	store.members[memberKey{userID, fence.ID}] = false
	e := testEngine(store)

	events, err := e.Process(context.Background(), familyID, userID, 0.5, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].Type != types.EventGeofenceEnter {
		t.Fatalf("expected polygon enter, got %+v", events)
	}
}

func TestContains_CircleBoundary(t *testing.T) {
	g := circleFence(uuid.New(), 0, 0, 120)

	if !Contains(g, 0.001, 0) { // ~111m, inside 120m radius
		t.Fatal("point within radius must be contained")
	}
	if Contains(g, 0.002, 0) { // ~222m
		t.Fatal("point beyond radius must not be contained")
	}
}

func TestContains_UnknownShape(t *testing.T) {
	g := models.Geofence{Shape: "triangle"}
	if Contains(g, 0, 0) {
		t.Fatal("unrecognized shape contains nothing")
	}
}
