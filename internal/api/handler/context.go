package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/citizenconnect/complaint-portal/internal/api/middleware"
	"github.com/citizenconnect/complaint-portal/internal/core/domain"
)

// principalFrom returns the identity injected by the session middleware.
// Routes that reach a handler through RequireSession always carry one; the
// check here is the fast-fail for routes mounted without it.
func principalFrom(c echo.Context) (domain.Principal, error) {
	uid, _ := c.Get(middleware.KeyUserID).(string)
	role, _ := c.Get(middleware.KeyRole).(string)
	if uid == "" || role == "" {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return domain.Principal{UserID: uid, Role: role}, nil
}
