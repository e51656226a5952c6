// Package httpapi exposes the connection engine and the research trail over
// HTTP for the site build and client-side islands.
package httpapi

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"studio-journal/backend/internal/connections"
	"studio-journal/backend/internal/papertrail"
	"studio-journal/backend/internal/trail"
)

const requestIDHeader = "X-Request-ID"

// TrailService is the soft-failing subset of the research trail client
type TrailService interface {
	FetchTrail(ctx context.Context, slug string) *trail.Trail
	SubmitSourceSuggestion(ctx context.Context, s trail.SourceSuggestion) bool
	SubmitConnectionSuggestion(ctx context.Context, s trail.ConnectionSuggestion) bool
}

// SuiteHydrator produces the paper trail page data
type SuiteHydrator interface {
	Hydrate(ctx context.Context) papertrail.Suite
}

// Deps are the router's collaborators. Trail and PaperTrail may be nil when
// no research service is configured; those routes then render nothing.
type Deps struct {
	Index           *connections.Index
	Trail           TrailService
	PaperTrail      SuiteHydrator
	Gatherer        prometheus.Gatherer
	ThreadPairLimit int
	CanvasWidth     float64
	CanvasHeight    float64
	Logger          *zap.Logger
}

// NewRouter builds the gin engine with middleware and every route
func NewRouter(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	h := &handlers{deps: deps, log: deps.Logger}

	router := gin.New()
	router.Use(requestID())
	router.Use(ginLogger(deps.Logger))
	router.Use(gin.Recovery())
	router.Use(cors())

	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	{
		api.GET("/essays/:slug/connections", h.essayConnections)
		api.GET("/threads/pairs", h.threadPairs)
		api.GET("/trail/:slug", h.researchTrail)
		api.GET("/paper-trail", h.paperTrail)
		api.POST("/suggest/source", h.suggestSource)
		api.POST("/suggest/connection", h.suggestConnection)
	}

	return router
}

// requestID tags every request with an ID, reusing the caller's if present
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Accept, Origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
			zap.String("request_id", c.GetString("request_id")),
		)
	}
}
