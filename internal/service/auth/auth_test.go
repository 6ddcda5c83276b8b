package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Temutjin2k/route-guard/internal/domain/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const secret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func validClaims(userID uuid.UUID, role types.UserRole) Claims {
	return Claims{
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestRoleCheck_Valid(t *testing.T) {
	s := NewTokenService(secret)
	id := uuid.New()

	user, err := s.RoleCheck(context.Background(), sign(t, jwt.SigningMethodHS256, []byte(secret), validClaims(id, types.RoleModerator)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != id || user.Role != types.RoleModerator {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestRoleCheck_Rejects(t *testing.T) {
	s := NewTokenService(secret)
	id := uuid.New()

	expired := validClaims(id, types.RoleUser)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	badSubject := validClaims(id, types.RoleUser)
	badSubject.Subject = "not-a-uuid"

	nilSubject := validClaims(uuid.Nil, types.RoleUser)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte("other"), validClaims(id, types.RoleUser)), types.ErrInvalidToken},
		{"wrong algorithm", sign(t, jwt.SigningMethodHS512, []byte(secret), validClaims(id, types.RoleUser)), types.ErrInvalidToken},
		{"expired", sign(t, jwt.SigningMethodHS256, []byte(secret), expired), types.ErrExpiredToken},
		{"bad subject", sign(t, jwt.SigningMethodHS256, []byte(secret), badSubject), types.ErrInvalidToken},
		{"nil subject", sign(t, jwt.SigningMethodHS256, []byte(secret), nilSubject), types.ErrInvalidToken},
		{"unknown role", sign(t, jwt.SigningMethodHS256, []byte(secret), validClaims(id, "ROOT")), types.ErrInvalidToken},
		{"garbage", "abc.def.ghi", types.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.RoleCheck(context.Background(), tt.token)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
