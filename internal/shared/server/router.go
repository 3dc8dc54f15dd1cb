package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"compliance-backend/internal/compliance"
	"compliance-backend/internal/dashboard"
	"compliance-backend/internal/debugapi"
	"compliance-backend/internal/documents"
	"compliance-backend/internal/folders"
	"compliance-backend/internal/services/health"
	"compliance-backend/internal/shared/config"
	"compliance-backend/internal/shared/metrics"
	"compliance-backend/internal/shared/server/middleware"
	"compliance-backend/internal/shared/server/respond"
	"compliance-backend/internal/users"
)

const welcomeMessage = "Welcome to the CareLumi backend api!"

// RouterDeps holds the handlers mounted by NewRouter.
type RouterDeps struct {
	Config            config.Config
	Resolver          middleware.IdentityResolver
	Health            *health.Service
	UserHandler       *users.Handler
	FolderHandler     *folders.Handler
	DocumentHandler   *documents.Handler
	ComplianceHandler *compliance.Handler
	DashboardHandler  *dashboard.Handler
	// DebugHandler is mounted only in dev-like environments.
	DebugHandler *debugapi.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if !deps.Config.IsDevLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/", func(c *gin.Context) {
		respond.OK(c, gin.H{"message": welcomeMessage})
	})
	r.GET("/health", func(c *gin.Context) {
		status, ok := deps.Health.Status(c.Request.Context())
		code := http.StatusOK
		if !ok {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})
	r.GET("/metrics", metrics.Handler())

	root := r.Group("")
	if deps.UserHandler != nil {
		loginLimit := middleware.RateLimit(middleware.RateLimitConfig{
			Limit:  int64(deps.Config.LoginRatePerMinute),
			Period: time.Minute,
			Prefix: "login",
		})
		deps.UserHandler.RegisterRoutes(root, loginLimit)
	}

	staff := r.Group("/organization", middleware.RequireStaff(deps.Resolver))
	admin := r.Group("/organization", middleware.RequireAdmin(deps.Resolver))

	if deps.FolderHandler != nil {
		deps.FolderHandler.RegisterRoutes(admin)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(staff, admin)
	}
	if deps.ComplianceHandler != nil {
		deps.ComplianceHandler.RegisterRoutes(admin)
	}
	if deps.DashboardHandler != nil {
		deps.DashboardHandler.RegisterRoutes(admin)
	}
	if deps.DebugHandler != nil && deps.Config.IsDevLike() {
		deps.DebugHandler.RegisterRoutes(root)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
