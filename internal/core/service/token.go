package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ledgerly/budget-api/internal/core/domain"
)

// sessionClaims is the JWT payload: the caller's identity plus the
// registered iat/exp/jti claims.
type sessionClaims struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// JWTService signs and verifies HS256 session tokens with a single secret.
type JWTService struct {
	secret []byte
	now    func() time.Time
}

func NewJWTService(secret string) (*JWTService, error) {
	if secret == "" {
		return nil, errors.New("jwt: empty signing secret")
	}
	return &JWTService{secret: []byte(secret), now: time.Now}, nil
}

func (s *JWTService) Issue(identity domain.Identity, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("jwt: non-positive ttl %s", ttl)
	}

	now := s.now()
	claims := sessionClaims{
		ID:    identity.ID,
		Email: identity.Email,
		Name:  identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

func (s *JWTService) Verify(token string) (*domain.SessionClaims, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.ID == "" {
		return nil, domain.ErrInvalidToken
	}

	out := &domain.SessionClaims{
		Identity: domain.Identity{ID: claims.ID, Email: claims.Email, Name: claims.Name},
		TokenID:  claims.RegisteredClaims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
