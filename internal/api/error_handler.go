package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mineralchain/roles-admin/internal/core/domain"
)

// StatusClientClosedRequest is returned when the operation was cancelled
// before the registry confirmed it.
const StatusClientClosedRequest = 499

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps workflow and auth errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>", "kind": "<kind>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var opErr *domain.OperationError
	if errors.As(err, &opErr) {
		code := operationStatus(opErr)
		if code >= http.StatusInternalServerError {
			log.Warn().Err(err).Str("path", c.Path()).Msg("role operation failed")
		}
		return code, errorResponse{Error: opErr.Message, Kind: domain.ErrorKind(opErr)}
	}

	switch {
	case errors.Is(err, domain.ErrOperationInFlight):
		return http.StatusConflict, errorResponse{Error: err.Error(), Kind: "in_flight"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "invalid credentials"}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Error: "user not found"}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, errorResponse{Error: "user already exists"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}

func operationStatus(e *domain.OperationError) int {
	switch e.Kind {
	case domain.ErrValidation:
		return http.StatusBadRequest
	case domain.ErrResolution:
		return http.StatusUnprocessableEntity
	case domain.ErrRemoteRejected, domain.ErrOperationInFlight:
		return http.StatusConflict
	case domain.ErrUserCancelled:
		return StatusClientClosedRequest
	case domain.ErrUnauthorized:
		return http.StatusForbidden
	case domain.ErrUnknown:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
