package wrap

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestErrorAttachesLogCtx(t *testing.T) {
	ctx := WithLogCtx(context.Background(), LogCtx{Action: "location_record", UserID: "u1"})

	base := errors.New("connection refused")
	wrapped := Error(ctx, base)

	if !errors.Is(wrapped, base) {
		t.Fatalf("wrapped error lost its cause")
	}
	if wrapped.Error() != base.Error() {
		t.Fatalf("message changed: %q", wrapped.Error())
	}

	got := ErrorCtx(context.Background(), wrapped)
	if lc, ok := got.Value(LogCtxKey).(LogCtx); !ok || lc.Action != "location_record" {
		t.Fatalf("log context not carried by the error: %+v", got.Value(LogCtxKey))
	}
}

func TestErrorNil(t *testing.T) {
	if Error(context.Background(), nil) != nil {
		t.Fatalf("wrapping nil must stay nil")
	}
}

// A repo returns an already-wrapped error and the service layer wraps it
// again before logging. The chain must stay acyclic: Error() terminates,
// Unwrap makes progress and errors.Is still finds the root cause.
func TestErrorDoubleWrap(t *testing.T) {
	sentinel := errors.New("no rows")

	repoCtx := WithLogCtx(context.Background(), LogCtx{Action: "db_query"})
	repoErr := Error(repoCtx, fmt.Errorf("GeofenceRepo.ListActiveByFamily: %w", sentinel))

	svcCtx := WithLogCtx(context.Background(), LogCtx{Action: "geofence_process", FamilyID: "f1"})
	svcErr := Error(svcCtx, repoErr)

	if errors.Unwrap(svcErr) == svcErr {
		t.Fatalf("double wrap made the error its own cause")
	}
	if svcErr.Error() != "GeofenceRepo.ListActiveByFamily: no rows" {
		t.Fatalf("unexpected message: %q", svcErr.Error())
	}
	if !errors.Is(svcErr, sentinel) {
		t.Fatalf("root cause lost after double wrap")
	}

	// The second wrap refreshes the attached log context.
	got := ErrorCtx(context.Background(), svcErr)
	lc, ok := got.Value(LogCtxKey).(LogCtx)
	if !ok || lc.Action != "geofence_process" || lc.FamilyID != "f1" {
		t.Fatalf("log context not refreshed on re-wrap: %+v", lc)
	}
}

func TestErrorDeepChainStaysAcyclic(t *testing.T) {
	ctx := WithLogCtx(context.Background(), LogCtx{Action: "retry"})

	err := Error(ctx, errors.New("timeout"))
	for range 5 {
		err = Error(ctx, err)
	}

	depth := 0
	for e := err; e != nil; e = errors.Unwrap(e) {
		depth++
		if depth > 10 {
			t.Fatalf("unwrap chain does not terminate")
		}
	}
	if err.Error() != "timeout" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}
