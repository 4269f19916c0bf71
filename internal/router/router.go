package router

import (
	"github.com/gin-gonic/gin"

	"contractocr/internal/handler"
	"contractocr/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	allowedOrigins []string,
	extractionH *handler.ExtractionHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	v1.POST("/extract", extractionH.Extract)
	v1.POST("/extract/text", extractionH.ExtractText)

	extractions := v1.Group("/extractions")
	extractions.GET("", extractionH.List)
	extractions.GET("/export", extractionH.Export)
	extractions.GET("/:id", extractionH.GetByID)
	extractions.GET("/:id/file", extractionH.GetFileURL)
	extractions.DELETE("/:id/file", extractionH.DeleteFile)
	extractions.POST("/:id/reprocess", extractionH.Reprocess)

	return r
}
