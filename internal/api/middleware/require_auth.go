package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/ledgerly/budget-api/internal/core/domain"
)

// RequireAuth rejects anonymous requests before the handler runs.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := ClaimsFrom(c); !ok {
				return domain.ErrUnauthenticated
			}
			return next(c)
		}
	}
}
