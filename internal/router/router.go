package router

import (
	"net/http"
	"time"

	"github.com/courseboard/courseboard/internal/config"
	"github.com/courseboard/courseboard/internal/handler"
	"github.com/courseboard/courseboard/internal/middleware"
	"github.com/courseboard/courseboard/internal/response"
	"github.com/courseboard/courseboard/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Course  *handler.CourseHandler
	User    *handler.UserHandler
	Monitor *handler.MonitorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Every response carries request metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)

		// Authenticated profile routes
		auth.POST("/logout", middleware.RequireJWT(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Courses Group (JWT + Active Session) ───────────────────────
	courses := router.Group("/api/v1/courses")
	courses.Use(
		middleware.RequireJWT(authService),
		middleware.CheckActiveSession(authService),
	)
	{
		courses.GET("", handlers.Course.ListCourses)
		courses.GET("/:id", handlers.Course.GetCourse)
		courses.POST("/:id/enroll", middleware.RequireStudent(), handlers.Course.Enroll)

		courses.POST("", middleware.RequireAdmin(), handlers.Course.CreateCourse)
		courses.PUT("/:id", middleware.RequireAdmin(), handlers.Course.UpdateCourse)
		courses.DELETE("/:id", middleware.RequireAdmin(), handlers.Course.DeleteCourse)
	}

	// ─── 3. Users Group (Admin) ────────────────────────────────────────
	users := router.Group("/api/v1/users")
	users.Use(
		middleware.RequireJWT(authService),
		middleware.CheckActiveSession(authService),
		middleware.RequireAdmin(),
	)
	{
		users.GET("", handlers.User.ListUsers)
		users.GET("/:id", handlers.User.GetUser)
		users.DELETE("/:id", handlers.User.DeleteUser)
	}

	// ─── 4. WebSocket Group (Admin WS Auth) ────────────────────────────
	wsGroup := router.Group("/ws/v1")
	wsGroup.Use(middleware.RequireWSAuth(authService))
	{
		wsGroup.GET("/courses/:id/monitor", handlers.Monitor.CourseMonitorStream)
	}

	return router
}
