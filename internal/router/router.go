package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/bimbelhub/bimbel-backend/internal/config"
	"github.com/bimbelhub/bimbel-backend/internal/handler"
	"github.com/bimbelhub/bimbel-backend/internal/middleware"
	"github.com/bimbelhub/bimbel-backend/internal/response"
	"github.com/bimbelhub/bimbel-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth          *handler.AuthHandler
	LearnerPortal *handler.LearnerPortalHandler
	Exam          *handler.ExamHandler
	WS            *handler.WSHandler
	Monitor       *handler.MonitorHandler
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
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

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
		auth.POST("/learner/token", handlers.Auth.IssueLearnerToken)
		auth.POST("/admin/login", handlers.Auth.AdminLogin)

		// Authenticated profile routes
		auth.POST("/learner/logout", middleware.RequireLearnerJWT(authService), handlers.Auth.LearnerLogout)
		auth.GET("/admin/me", middleware.RequireAdminJWT(authService), handlers.Auth.GetAdminProfile)
	}

	// ─── 2. Learner Group (JWT + Single Device) ────────────────────────
	learnerAPI := router.Group("/api/v1/learner")
	learnerAPI.Use(
		middleware.RequireLearnerJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		learnerAPI.GET("/exams", handlers.LearnerPortal.Catalog)
		learnerAPI.GET("/results", handlers.LearnerPortal.History)

		learnerAPI.POST("/exams/:exam_id/session", handlers.LearnerPortal.Open)
		learnerAPI.GET("/exams/:exam_id/paper", handlers.LearnerPortal.Paper)
		learnerAPI.GET("/exams/:exam_id/session", handlers.LearnerPortal.State)
		learnerAPI.POST("/exams/:exam_id/session/begin", handlers.LearnerPortal.Begin)
		learnerAPI.POST("/exams/:exam_id/session/goto", handlers.LearnerPortal.GoTo)
		learnerAPI.POST("/exams/:exam_id/session/answers", handlers.LearnerPortal.Answer)
		learnerAPI.POST("/exams/:exam_id/session/submit", handlers.LearnerPortal.Submit)
		learnerAPI.POST("/exams/:exam_id/session/reset", handlers.LearnerPortal.Reset)
		learnerAPI.GET("/exams/:exam_id/session/result", handlers.LearnerPortal.Result)
	}

	// ─── 3. WebSocket Group (Learner WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireLearnerWSAuth(authService))
	{
		ws.GET("/learner/exams/:exam_id/stream", handlers.WS.SessionStream)
	}

	// ─── 4. Admin Group (JWT) ──────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		adminAPI.GET("/exams", handlers.Exam.List)
		adminAPI.POST("/exams", handlers.Exam.Create)
		adminAPI.GET("/exams/:exam_id", handlers.Exam.Get)
		adminAPI.PUT("/exams/:exam_id", handlers.Exam.Update)
		adminAPI.DELETE("/exams/:exam_id", handlers.Exam.Delete)
		adminAPI.POST("/exams/:exam_id/activate", handlers.Exam.Activate)
		adminAPI.POST("/exams/:exam_id/deactivate", handlers.Exam.Deactivate)
		adminAPI.GET("/exams/:exam_id/results", handlers.Exam.Results)
		adminAPI.GET("/exams/:exam_id/monitor", handlers.Monitor.MonitorExamSSE)
	}

	return router
}
