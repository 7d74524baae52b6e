package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/citizenconnect/complaint-portal/internal/core/domain"
)

// SessionCookie is the name of the cookie carrying the signed session token.
const SessionCookie = "complaint_portal.sid"

// Context keys set by LoadSession.
const (
	KeyUserID = "user_id"
	KeyRole   = "role"
)

// IdentityResolver turns a session token into the principal bound to it.
type IdentityResolver interface {
	CurrentIdentity(ctx context.Context, token string) (domain.Principal, error)
}

// LoadSession resolves the session cookie once per request and, when it is
// valid, injects the principal's user id and role into the context. Requests
// without a valid session, or whose lookup failed, pass through anonymously.
func LoadSession(resolver IdentityResolver, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			p, err := resolver.CurrentIdentity(c.Request().Context(), cookie.Value)
			switch {
			case err == nil:
				c.Set(KeyUserID, p.UserID)
				c.Set(KeyRole, p.Role)
			case errors.Is(err, domain.ErrUnauthenticated):
				// Stale or forged cookie: treat as anonymous.
			default:
				// Store outage: public routes keep working, guarded ones
				// answer 401 through RequireSession and RBAC.
				log.Error().Err(err).Msg("session lookup failed, continuing anonymously")
			}
			return next(c)
		}
	}
}

// RequireSession rejects requests that carry no valid session with 401.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if uid, _ := c.Get(KeyUserID).(string); uid == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
			}
			return next(c)
		}
	}
}
