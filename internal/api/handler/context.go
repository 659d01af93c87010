package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/ledgerly/budget-api/internal/api/middleware"
	"github.com/ledgerly/budget-api/internal/core/domain"
)

// ownerID returns the id of the verified caller. Routes behind RequireAuth
// always have one; anything else is a wiring bug surfaced as 401.
func ownerID(c echo.Context) (string, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok || claims.ID == "" {
		return "", domain.ErrUnauthenticated
	}
	return claims.ID, nil
}
