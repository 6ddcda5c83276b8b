package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/Temutjin2k/route-guard/internal/domain/models"
	"github.com/Temutjin2k/route-guard/internal/domain/types"
	wrap "github.com/Temutjin2k/route-guard/pkg/logger/wrapper"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carried by access tokens issued by the identity provider
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService validates HS256 access tokens. Issuing tokens is the identity provider's job.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// RoleCheck validates the token and returns the user it was issued for
func (s *TokenService) RoleCheck(ctx context.Context, token string) (*models.User, error) {
	ctx = wrap.WithAction(ctx, "validate_token")

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, wrap.Error(ctx, types.ErrExpiredToken)
		}
		return nil, wrap.Error(ctx, fmt.Errorf("%w: %v", types.ErrInvalidToken, err))
	}
	if !parsed.Valid {
		return nil, wrap.Error(ctx, types.ErrInvalidToken)
	}

	// uuid.Nil is reserved for anonymous viewers
	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%w: invalid subject", types.ErrInvalidToken))
	}

	role := types.UserRole(claims.Role)
	switch role {
	case types.RoleUser, types.RoleModerator, types.RoleAdmin:
	default:
		return nil, wrap.Error(ctx, fmt.Errorf("%w: unknown role %q", types.ErrInvalidToken, claims.Role))
	}

	return &models.User{ID: userID, Role: role}, nil
}
