package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/casefile-io/access-engine/internal/api/handler"
	"github.com/casefile-io/access-engine/internal/api/middleware"
)

// Handlers bundles the constructed handlers the router mounts.
type Handlers struct {
	Auth       *handler.AuthHandler
	Decision   *handler.DecisionHandler
	Client     *handler.ClientHandler
	Note       *handler.NoteHandler
	Attribute  *handler.AttributeHandler
	Safety     *handler.SafetyHandler
	Group      *handler.GroupHandler
	Audit      *handler.AuditHandler
	Toggle     *handler.ToggleHandler
	Health     *handler.HealthHandler
	HealthDeps *handler.HealthDependenciesHandler
}

// NewRouter builds the Echo instance with all routes registered. Everything
// under /v1 requires a valid token; health probes and metrics do not.
func NewRouter(h Handlers, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("access_engine"))

	// --- Auth routes ---
	e.POST("/auth/register", h.Auth.Register)
	e.POST("/auth/login", h.Auth.Login)

	// --- Health probes and metrics (no auth required) ---
	e.GET("/health", h.Health.Liveness)
	e.GET("/health/ready", h.HealthDeps.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Protected API ---
	v1 := e.Group("/v1", middleware.Auth(jwtSecret))

	v1.POST("/decisions", h.Decision.Decide)

	v1.GET("/clients", h.Client.List)
	v1.GET("/clients/:id", h.Client.Get)
	v1.PUT("/clients/:id/sharing", h.Client.SetSharing)
	v1.PUT("/clients/:id/status", h.Client.SetStatus)

	v1.GET("/clients/:id/notes", h.Note.List)
	v1.POST("/clients/:id/notes", h.Note.Create)
	v1.GET("/notes/:id", h.Note.Get)
	v1.POST("/notes/search", h.Note.Search)

	v1.GET("/clients/:id/attributes", h.Attribute.List)
	v1.PUT("/clients/:id/attributes", h.Attribute.Write)

	v1.GET("/clients/:id/groups", h.Group.ListForClient)

	v1.POST("/safety/blocks", h.Safety.Block)
	v1.DELETE("/safety/blocks/:id", h.Safety.Unblock)
	v1.POST("/safety/clients/:id/dv-flag", h.Safety.SetDVFlag)
	v1.POST("/safety/dv-removals", h.Safety.RequestRemoval)
	v1.GET("/safety/dv-removals", h.Safety.ListPendingRemovals)
	v1.POST("/safety/dv-removals/:id/review", h.Safety.ReviewRemoval)

	v1.GET("/audit", h.Audit.Query)

	v1.GET("/config/toggles/:name", h.Toggle.Get)
	v1.PUT("/config/toggles/:name", h.Toggle.Set)

	return e
}
