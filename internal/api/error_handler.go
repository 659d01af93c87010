package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ledgerly/budget-api/internal/core/domain"
)

const (
	msgDuplicateIdentity  = "The provided email is already registered."
	msgNotRegistered      = "Provided email is not registered."
	msgInvalidCredentials = "Unable to authenticate the user."
	msgInvalidToken       = "Invalid token."
	msgUnauthenticated    = "No authorization token was found."
	msgInvalidID          = "Id is not valid"
	msgNotFound           = "Resource not found."
	msgBudgetNotFound     = "No budget found"
	msgTxNotFound         = "No transaction found"
	msgInternal           = "Internal server error"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Message string `json:"message"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"message": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Message
	}
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		switch nf.Resource {
		case domain.ErrBudgetNotFound.Resource:
			return http.StatusNotFound, msgBudgetNotFound
		case domain.ErrTransactionNotFound.Resource:
			return http.StatusNotFound, msgTxNotFound
		}
		return http.StatusNotFound, msgNotFound
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest, msgInvalidID
	case errors.Is(err, domain.ErrDuplicateIdentity):
		return http.StatusBadRequest, msgDuplicateIdentity
	case errors.Is(err, domain.ErrNotRegistered):
		return http.StatusUnauthorized, msgNotRegistered
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, msgInvalidCredentials
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, msgInvalidToken
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrNoToken):
		return http.StatusUnauthorized, msgUnauthenticated
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, msgNotFound
	}

	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, msgInternal
}
