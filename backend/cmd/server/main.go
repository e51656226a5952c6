package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"studio-journal/backend/internal/connections"
	"studio-journal/backend/internal/content"
	"studio-journal/backend/internal/graph"
	"studio-journal/backend/internal/httpapi"
	"studio-journal/backend/internal/papertrail"
	"studio-journal/backend/internal/trail"
	"studio-journal/backend/pkg/config"
	"studio-journal/backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting HTTP API server...")

	// Load content snapshot
	cols, err := content.NewLoader().Load(cfg.ContentDir)
	if err != nil {
		log.Fatal("Failed to load content", zap.String("dir", cfg.ContentDir), zap.Error(err))
	}
	index := connections.NewIndex(cols)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps := httpapi.Deps{
		Index:           index,
		Gatherer:        reg,
		ThreadPairLimit: cfg.ThreadPairLimit,
		CanvasWidth:     cfg.CanvasWidth,
		CanvasHeight:    cfg.CanvasHeight,
		Logger:          log,
	}

	var trailClient *trail.Client
	if cfg.HasResearchAPI() {
		trailClient = trail.NewClient(cfg.ResearchAPIURL,
			trail.WithTimeout(cfg.ResearchTimeout),
			trail.WithCacheTTL(cfg.ResearchCacheTTL),
			trail.WithMetrics(trail.NewMetrics(reg)),
		)
		deps.Trail = trailClient
	} else {
		log.Warn("RESEARCH_API_URL not set, research trail sections will render nothing")
	}

	// The graph store, when configured, replaces the remote graph endpoint
	var graphReader papertrail.GraphReader
	if trailClient != nil {
		graphReader = trailClient
	}
	if cfg.HasGraphStore() {
		driver, err := neo4j.NewDriverWithContext(
			cfg.Neo4jURI,
			neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
		)
		if err != nil {
			log.Fatal("Failed to create Neo4j driver", zap.Error(err))
		}
		defer driver.Close(context.Background())

		if err := driver.VerifyConnectivity(context.Background()); err != nil {
			log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
		}
		graphReader = graph.NewRepository(driver)
	}

	if trailClient != nil || graphReader != nil {
		// A nil *trail.Client must not leak into the interface as non-nil
		var trailReader papertrail.TrailReader
		if trailClient != nil {
			trailReader = trailClient
		}
		deps.PaperTrail = papertrail.NewHydrator(graphReader, trailReader, trail.DefaultActivityDays)
	}

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.NewRouter(deps)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started",
		zap.String("port", cfg.Port),
		zap.Int("essays", len(cols.Essays)),
		zap.Bool("research_api", cfg.HasResearchAPI()),
		zap.Bool("graph_store", cfg.HasGraphStore()),
	)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
