// Package server exposes the HTTP API, the websocket feed for dashboards and
// the background analysis/mitigation loop.
package server

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/config"
	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/countermeasure"
	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/detection"
	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/models"
	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/storage"
	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/telemetry"
)

type Server struct {
	cfg      *config.Config
	store    storage.Store
	detector *detection.Detector
	blocker  *countermeasure.Blocker
	hub      *Hub
	router   *gin.Engine
}

// New wires the API around the given collaborators and registers the
// blocker's event feed with the websocket hub.
func New(cfg *config.Config, store storage.Store, detector *detection.Detector, blocker *countermeasure.Blocker) *Server {
	telemetry.InitMetrics()

	s := &Server{
		cfg:      cfg,
		store:    store,
		detector: detector,
		blocker:  blocker,
		hub:      NewHub(),
		router:   gin.Default(),
	}

	blocker.OnEvent = func(ev models.BlockEvent) {
		s.hub.Broadcast("block_event", ev)
	}

	s.setupRoutes()
	return s
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine { return s.router }

// Run starts the analysis loop and serves the API until the listener fails
// or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	go s.runAnalysis(ctx)
	return s.router.Run(s.cfg.Listen)
}

func (s *Server) setupRoutes() {
	s.router.Use(corsMiddleware())

	api := s.router.Group("/api")
	{
		api.POST("/traffic/ingest", s.ingestTraffic)

		api.POST("/block", s.blockAddress)
		api.POST("/unblock", s.unblockAddress)
		api.GET("/blocked", s.getBlocked)

		api.GET("/attacks/active", s.getActiveAttacks)
		api.GET("/stats/summary", s.getSummaryStats)
	}

	s.router.GET("/ws", s.hub.Handle)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// corsMiddleware lets browser dashboards on other origins use the API
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
