// Package apierr translates the federation error taxonomy into HTTP
// responses at the handler edge. The core never formats status codes.
package apierr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/federation"
)

// From maps a service error to an echo HTTPError.
func From(err error) *echo.HTTPError {
	var unknownRegion *federation.UnknownRegionError
	var conflict *federation.ConflictError
	var incomplete *federation.IncompleteError
	var locateIncomplete *federation.LocateIncompleteError
	var blocked *federation.ReferentialBlockError

	switch {
	case errors.Is(err, federation.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, federation.ErrInvalidArgument):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.As(err, &unknownRegion):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.As(err, &conflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.As(err, &blocked):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.As(err, &incomplete), errors.As(err, &locateIncomplete):
		// Retryable: a region was unreachable and the operation refused
		// to guess.
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
