package wrap

import (
	"context"
	"errors"
)

// errorWithLogCtx pairs an error with the LogCtx of the operation that
// produced it, so the request fields of the failing call travel with the
// error up the stack.
type errorWithLogCtx struct {
	err    error
	logCtx LogCtx
}

func (e *errorWithLogCtx) Error() string {
	return e.err.Error()
}

func (e *errorWithLogCtx) Unwrap() error {
	return e.err
}

// ErrorCtx restores the LogCtx carried by err into ctx. Handlers use it to
// log with the user, family and action of the operation that actually failed
// rather than their own.
func ErrorCtx(ctx context.Context, err error) context.Context {
	var e *errorWithLogCtx
	if errors.As(err, &e) && e != nil {
		return context.WithValue(ctx, LogCtxKey, e.logCtx)
	}
	return ctx
}
