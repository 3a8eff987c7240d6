package main

import (
	"context"
	"errors"

	"github.com/famhub/location-tracking-system/pkg/logger"
	wrap "github.com/famhub/location-tracking-system/pkg/logger/wrapper"
)

// Small smoke tool for the structured logger: prints one record with the
// full log context attached so the JSON shape can be eyeballed.
func main() {
	lg := logger.InitLogger("logtest", logger.LevelDebug)

	ctx := context.Background()

	if err := someLogic(ctx); err != nil {
		lg.Error(wrap.ErrorCtx(ctx, err), "error occured", err)
	}
}

func someLogic(ctx context.Context) error {
	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{
		Action:     "location_record",
		UserID:     "7b06fa17-54d5-4a71-b1e3-96d72f4e2c41",
		FamilyID:   "c1a2b9a4-93a4-4a54-8f4a-6f0edc430c9a",
		RequestID:  "request_123",
		GeofenceID: "2a8e9be6-6a39-4a9e-bb11-9cf2c53a35a5",
	})

	someError := errors.New("some error")

	return wrap.Error(ctx, someError)
}
