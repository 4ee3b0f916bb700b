package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/formdesk/dashboard-gateway/internal/api/handler"
	"github.com/formdesk/dashboard-gateway/internal/api/middleware"
	"github.com/formdesk/dashboard-gateway/internal/core/ports"
	"github.com/formdesk/dashboard-gateway/internal/core/service"
	"github.com/formdesk/dashboard-gateway/internal/gateway"
	"github.com/formdesk/dashboard-gateway/internal/infrastructure/upstream"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Sessions      *service.SessionStore
	Notifications *service.NotificationService
	Resources     *upstream.ResourceClient
	Upstream      *gateway.Client
	Redis         *redis.Client
	Log           zerolog.Logger
}

// proxied CRUD collections.
var resourceRoutes = []string{
	"organizations",
	"businesses",
	"business-units",
	"users",
	"roles",
	"forms",
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("dashboard"))

	// --- Handlers ---
	sessionHandler := handler.NewSessionHandler(deps.Sessions, deps.Notifications)
	formHandler := handler.NewFormHandler(deps.Resources)
	resourceHandler := handler.NewResourceHandler(deps.Resources)
	notificationHandler := handler.NewNotificationHandler(deps.Notifications)
	dashboardHandler := handler.NewDashboardHandler(deps.Resources)
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Redis, deps.Upstream)

	// --- Public routes ---
	e.POST("/login", sessionHandler.Login)
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Guarded routes (navigation guard) ---
	guarded := e.Group("", middleware.RequireSession(deps.Sessions))
	guarded.POST("/logout", sessionHandler.Logout)
	guarded.GET("/session", sessionHandler.Session)
	guarded.POST("/session/refresh", sessionHandler.Refresh)
	guarded.GET("/fields/catalog", formHandler.Catalog)
	guarded.GET("/notifications", notificationHandler.List)
	guarded.POST("/notifications/:id/read", notificationHandler.MarkRead)
	guarded.GET("/notifications/stream", notificationHandler.Stream)

	// Organization routes stay reachable without an organization so a fresh
	// principal can create one; everything else requires it.
	withOrg := guarded.Group("", middleware.RequireOrganization(deps.Sessions))
	withOrg.GET("/dashboard/completion", dashboardHandler.Completion)
	withOrg.GET("/forms/:id/render", formHandler.Render)

	for _, collection := range resourceRoutes {
		group := withOrg
		if collection == "organizations" {
			group = guarded
		}
		registerResource(group, resourceHandler, deps.Sessions, collection)
	}

	return e
}

// registerResource binds the five CRUD routes for one collection. Reads are
// open to any principal of the organization; writes require the collection's
// manage permission (superadmins always pass).
func registerResource(group *echo.Group, h *handler.ResourceHandler, sessions *service.SessionStore, collection string) {
	group.GET("/"+collection, h.List(collection))
	group.GET("/"+collection+"/:id", h.Get(collection))

	manage := middleware.RequirePermission(sessions, collection+".manage")
	group.POST("/"+collection, h.Create(collection), manage)
	group.PUT("/"+collection+"/:id", h.Update(collection), manage)
	group.DELETE("/"+collection+"/:id", h.Delete(collection), manage)
}

// compile-time checks: the resource client satisfies the ports consumed here.
var (
	_ ports.ResourceAPI  = (*upstream.ResourceClient)(nil)
	_ ports.FormAPI      = (*upstream.ResourceClient)(nil)
	_ ports.DashboardAPI = (*upstream.ResourceClient)(nil)
)
