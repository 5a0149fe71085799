package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/orderdirect/internal/customer"
	"github.com/Skotchmaster/orderdirect/internal/identity"
	"github.com/Skotchmaster/orderdirect/internal/menu"
	"github.com/Skotchmaster/orderdirect/internal/order"
	"github.com/Skotchmaster/orderdirect/internal/session"
	"github.com/Skotchmaster/orderdirect/internal/tenant"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, tenant.ErrValidation),
		errors.Is(err, identity.ErrValidation),
		errors.Is(err, menu.ErrValidation),
		errors.Is(err, order.ErrValidation),
		errors.Is(err, customer.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, identity.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, tenant.ErrNotFound),
		errors.Is(err, identity.ErrNotFound),
		errors.Is(err, menu.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, customer.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, tenant.ErrConflict),
		errors.Is(err, identity.ErrConflict),
		errors.Is(err, menu.ErrConflict),
		errors.Is(err, order.ErrInvalidTransition):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// fail logs err under event and turns it into the matching HTTP error.
// Internal errors are not echoed to the client.
func fail(l *slog.Logger, event string, err error) error {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		l.Error(event, "status", status, "error", err)
		return echo.NewHTTPError(status, "internal server error")
	}
	l.Warn(event, "status", status, "reason", http.StatusText(status), "error", err)
	return echo.NewHTTPError(status, err.Error())
}

func badRequest(l *slog.Logger, event, reason string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}

func parseID(c echo.Context, l *slog.Logger, event string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, badRequest(l, event, "id is not a uuid", err)
	}
	return id, nil
}
