package handlers

import (
	"net/http"

	_ "github.com/epeers/portools/docs"
	"github.com/epeers/portools/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter wires the ingestion API. Uploads larger than maxFileSize bytes are rejected.
func NewRouter(portfolioHandler *PortfolioHandler, maxFileSize int64) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.PUT("/portfolios/:id", middleware.RequireContentLength(maxFileSize), portfolioHandler.Put)
	router.GET("/portfolios/:id", portfolioHandler.Get)
	router.GET("/portfolios/:id/summaries/:view", portfolioHandler.GetSummary)

	return router
}

// Health handles GET /health
// @Summary Health check
// @Tags ops
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Metrics exposes Prometheus metrics
func Metrics() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
