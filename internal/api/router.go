package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/citizenconnect/complaint-portal/docs"
	"github.com/citizenconnect/complaint-portal/internal/api/handler"
	"github.com/citizenconnect/complaint-portal/internal/api/middleware"
	"github.com/citizenconnect/complaint-portal/internal/core/domain"
	"github.com/citizenconnect/complaint-portal/internal/infrastructure/storage"
)

// RouterConfig holds the transport settings of the HTTP server.
type RouterConfig struct {
	AllowedOrigins []string
	MaxUploadMB    int
	UploadDir      string
}

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth       *handler.AuthHandler
	Complaints *handler.ComplaintHandler
	Chat       *handler.ChatHandler
	Activities *handler.ActivityHandler
	Realtime   *handler.RealtimeHandler
	Health     *handler.HealthHandler
	Readiness  *handler.ReadinessHandler
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig, sessions middleware.IdentityResolver, h Handlers, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowCredentials: true,
	}))
	if cfg.MaxUploadMB > 0 {
		e.Use(echomiddleware.BodyLimit(fmt.Sprintf("%dM", cfg.MaxUploadMB)))
	}
	e.Use(echoprometheus.NewMiddleware("complaint_portal"))
	e.Use(middleware.LoadSession(sessions, log))

	requireSession := middleware.RequireSession()
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/admin-login", h.Auth.AdminLogin)
	auth.POST("/logout", h.Auth.Logout)
	auth.POST("/admin-logout", h.Auth.AdminLogout)
	auth.GET("/me", h.Auth.Me, requireSession)
	auth.POST("/admins", h.Auth.CreateAdmin, adminOnly)

	// --- Complaint routes ---
	complaints := e.Group("/complaints")
	complaints.POST("", h.Complaints.Create, requireSession)
	complaints.GET("/user/:userId", h.Complaints.ListByOwner, requireSession)
	complaints.GET("/all", h.Complaints.ListAll, adminOnly)
	complaints.PATCH("/status/:id", h.Complaints.UpdateStatus, adminOnly)

	e.POST("/chat", h.Chat.Reply, requireSession)

	// --- Daily activity routes ---
	admin := e.Group("/admin/daily-updates", adminOnly)
	admin.POST("", h.Activities.Create)
	admin.GET("", h.Activities.List)
	admin.PUT("/:id", h.Activities.Update)
	admin.DELETE("/:id", h.Activities.Delete)
	e.GET("/daily-updates", h.Activities.Public)

	// --- Realtime and static files ---
	e.GET("/ws", h.Realtime.Connect)
	if cfg.UploadDir != "" {
		e.Static(storage.URLPrefix, cfg.UploadDir)
	}

	// --- Health probes (no auth required) ---
	e.GET("/health", h.Health.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", h.Readiness.Readiness) // readiness – are dependencies up?

	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
