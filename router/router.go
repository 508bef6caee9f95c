package router

import (
	"github.com/VyaparSathi/vyapar-sathi-backend/config"
	"github.com/VyaparSathi/vyapar-sathi-backend/handlers"
	"github.com/VyaparSathi/vyapar-sathi-backend/middleware"
	"github.com/VyaparSathi/vyapar-sathi-backend/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Dependencies struct holds all dependencies required for setting up routes.
type Dependencies struct {
	Config             *config.Config
	JWTValidator       middleware.Validator
	RateLimiter        services.RateLimiterInterface
	BusinessHandler    *handlers.BusinessHandler
	DocumentHandler    *handlers.DocumentHandler
	CredibilityHandler *handlers.CredibilityHandler
	ProofHandler       *handlers.ProofHandler
	HealthHandler      *handlers.HealthHandler
	WSHandler          *handlers.WSHandler
	Logger             *zap.SugaredLogger
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Global Middleware
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))

	// Health and Metrics Routes (no auth)
	r.GET("/health", deps.HealthHandler.LivenessHandler)
	r.GET("/health/liveness", deps.HealthHandler.LivenessHandler)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Versioned API Group (v1)
	v1 := r.Group("/v1")
	{
		// Extraction service callback; guarded by shared API key inside
		// the handler, not by user auth.
		v1.POST("/internal/extraction/callback", deps.DocumentHandler.ExtractionCallbackHandler)

		// --- Authenticated Routes ---
		authMiddleware := middleware.AuthMiddleware(deps.JWTValidator)
		authRoutes := v1.Group("")
		authRoutes.Use(authMiddleware)
		{
			// Business Routes
			businessRoutes := authRoutes.Group("/businesses")
			{
				businessRoutes.POST("", deps.BusinessHandler.CreateBusinessHandler)
				businessRoutes.GET("/me", deps.BusinessHandler.GetMyBusinessHandler)
				businessRoutes.GET("/:id", deps.BusinessHandler.GetBusinessHandler)
				businessRoutes.PUT("/:id", deps.BusinessHandler.UpdateBusinessHandler)

				// Document Routes (scoped to a business)
				businessRoutes.POST("/:id/documents",
					middleware.UploadRateLimiter(deps.RateLimiter),
					deps.DocumentHandler.UploadDocumentHandler)
				businessRoutes.GET("/:id/documents", deps.DocumentHandler.ListDocumentsHandler)

				// Credibility Routes
				businessRoutes.GET("/:id/credibility", deps.CredibilityHandler.GetScoreHandler)
				businessRoutes.POST("/:id/credibility/recalculate", deps.CredibilityHandler.RecalculateHandler)

				// Verification Proof Routes
				businessRoutes.GET("/:id/proofs", deps.ProofHandler.ListProofsHandler)

				// WebSocket event stream
				businessRoutes.GET("/:id/events", deps.WSHandler.SubscribeHandler)
			}

			// Document Routes (by document ID)
			documentRoutes := authRoutes.Group("/documents")
			{
				documentRoutes.GET("/:docID", deps.DocumentHandler.GetDocumentHandler)
				documentRoutes.PATCH("/:docID", deps.DocumentHandler.UpdateDocumentHandler)
				documentRoutes.DELETE("/:docID", deps.DocumentHandler.DeleteDocumentHandler)
			}
		}
	}

	return r
}
