package models

import (
	"context"

	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/domain/types"
)

// User is the authenticated identity injected by the auth middleware.
// The session/user subsystem itself lives outside this service; only the
// claims carried by the bearer token are represented here.
type User struct {
	ID       uuid.UUID      `json:"id"`
	FamilyID uuid.UUID      `json:"family_id"`
	Role     types.UserRole `json:"role"`
}

var anonymous = &User{}

// AnonymousUser returns the identity used for requests without credentials.
func AnonymousUser() *User {
	return anonymous
}

func (u *User) IsAnonymous() bool {
	return u == anonymous || (u != nil && u.ID == uuid.Nil)
}

type userCtxKey struct{}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, user)
}

// UserFromContext extracts the authenticated user, or nil.
func UserFromContext(ctx context.Context) *User {
	if u, ok := ctx.Value(userCtxKey{}).(*User); ok {
		return u
	}
	return nil
}
