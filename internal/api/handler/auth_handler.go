package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/citizenconnect/complaint-portal/internal/api/metrics"
	"github.com/citizenconnect/complaint-portal/internal/api/middleware"
	"github.com/citizenconnect/complaint-portal/internal/core/domain"
	"github.com/citizenconnect/complaint-portal/internal/core/ports"
)

type AuthHandler struct {
	authService  ports.AuthService
	secureCookie bool
}

// NewAuthHandler builds the auth endpoints. secureCookie marks the session
// cookie Secure and should be true whenever the portal is served over HTTPS.
func NewAuthHandler(authService ports.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookie: secureCookie}
}

// Register creates a citizen account.
//
// @Summary      Register a citizen
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  msgResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Msg: "Invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if _, err := h.authService.Register(c.Request().Context(), toRegisterInput(req)); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, msgResponse{Msg: "User registered successfully"})
}

// Login opens a citizen session.
//
// @Summary      Citizen login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	return h.login(c, domain.RoleUser, "Login successful", "Invalid user credentials")
}

// AdminLogin opens an administrator session.
//
// @Summary      Admin login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Router       /auth/admin-login [post]
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	return h.login(c, domain.RoleAdmin, "Admin login successful", "Invalid admin credentials")
}

func (h *AuthHandler) login(c echo.Context, role, okMsg, invalidMsg string) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Msg: "Invalid payload"})
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password, role)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(role, "failure").Inc()
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return c.JSON(http.StatusBadRequest, errorResponse{Msg: invalidMsg})
		}
		return err
	}
	metrics.LoginsTotal.WithLabelValues(role, "success").Inc()

	c.SetCookie(h.sessionCookie(res.Token, res.Session.ExpiresAt))
	return c.JSON(http.StatusOK, loginResponse{Msg: okMsg, User: toUserSummary(res.User)})
}

// Logout closes a citizen session.
//
// @Summary      Citizen logout
// @Tags         auth
// @Produce      json
// @Success      200   {object}  msgResponse
// @Failure      400   {object}  errorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	return h.logout(c, domain.RoleUser, "User logged out successfully", "Not logged in as user")
}

// AdminLogout closes an administrator session.
//
// @Summary      Admin logout
// @Tags         auth
// @Produce      json
// @Success      200   {object}  msgResponse
// @Failure      400   {object}  errorResponse
// @Router       /auth/admin-logout [post]
func (h *AuthHandler) AdminLogout(c echo.Context) error {
	return h.logout(c, domain.RoleAdmin, "Admin logged out successfully", "Not logged in as admin")
}

func (h *AuthHandler) logout(c echo.Context, role, okMsg, wrongRoleMsg string) error {
	token := ""
	if cookie, err := c.Cookie(middleware.SessionCookie); err == nil {
		token = cookie.Value
	}

	err := h.authService.Logout(c.Request().Context(), token, role)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotAuthenticated), errors.Is(err, domain.ErrRoleMismatch):
		return c.JSON(http.StatusBadRequest, errorResponse{Msg: wrongRoleMsg})
	default:
		return err
	}

	c.SetCookie(h.sessionCookie("", time.Unix(0, 0)))
	return c.JSON(http.StatusOK, msgResponse{Msg: okMsg})
}

// Me returns the identity bound to the current session.
//
// @Summary      Current identity
// @Tags         auth
// @Produce      json
// @Success      200   {object}  meResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return err
	}

	user, err := h.authService.Me(c.Request().Context(), p.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// The session outlived its identity.
			return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
		}
		return err
	}
	return c.JSON(http.StatusOK, meResponse{User: user})
}

// CreateAdmin registers another administrator.
//
// @Summary      Create an administrator
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      createAdminRequest  true  "Administrator details"
// @Success      201   {object}  createAdminResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /auth/admins [post]
func (h *AuthHandler) CreateAdmin(c echo.Context) error {
	var req createAdminRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Msg: "Invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	admin, err := h.authService.CreateAdmin(c.Request().Context(), toAdminInput(req))
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return c.JSON(http.StatusBadRequest, errorResponse{Msg: "Admin already exists"})
		}
		return err
	}
	return c.JSON(http.StatusCreated, createAdminResponse{Msg: "Admin created successfully", Admin: toAdminView(admin)})
}

func (h *AuthHandler) sessionCookie(value string, expires time.Time) *http.Cookie {
	cookie := &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		cookie.MaxAge = -1
	}
	return cookie
}
