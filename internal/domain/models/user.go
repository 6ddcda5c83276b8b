package models

import (
	"context"

	"github.com/Temutjin2k/route-guard/internal/domain/types"
	"github.com/google/uuid"
)

type User struct {
	ID   uuid.UUID      `json:"id"`
	Role types.UserRole `json:"role"`
}

func AnonymousUser() *User {
	return &User{Role: types.RoleAnonymous}
}

func (u *User) IsAnonymous() bool {
	return u == nil || u.Role == types.RoleAnonymous
}

type userCtxKey struct{}

// WithUser stores the authenticated user in the context
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext returns the user or nil when none is set
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}
