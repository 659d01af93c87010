package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ledgerly/budget-api/internal/core/domain"
	"github.com/ledgerly/budget-api/internal/core/ports"
)

const (
	bearerPrefix = "Bearer "
	claimsKey    = "session_claims"
)

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Any other shape is domain.ErrNoToken.
func BearerToken(header string) (string, error) {
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || token == "" || strings.ContainsAny(token, " \t") {
		return "", domain.ErrNoToken
	}
	return token, nil
}

// Authenticate verifies the bearer token and stores its claims on the
// context. Requests without a bearer token pass through anonymously; a
// token that fails verification is rejected.
func Authenticate(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if errors.Is(err, domain.ErrNoToken) {
				return next(c)
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				return err
			}
			SetClaims(c, claims)
			return next(c)
		}
	}
}

// SetClaims attaches verified session claims to the request.
func SetClaims(c echo.Context, claims *domain.SessionClaims) {
	c.Set(claimsKey, claims)
}

// ClaimsFrom returns the verified session claims, if any.
func ClaimsFrom(c echo.Context) (*domain.SessionClaims, bool) {
	claims, ok := c.Get(claimsKey).(*domain.SessionClaims)
	return claims, ok && claims != nil
}
