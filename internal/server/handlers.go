package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/countermeasure"
	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/models"
)

type blockRequest struct {
	Address     string `json:"address" binding:"required"`
	DurationSec *int   `json:"duration_sec"`
	Reason      string `json:"reason"`
}

type unblockRequest struct {
	Address string `json:"address" binding:"required"`
}

// ingestTraffic receives one traffic entry from a collaborator
func (s *Server) ingestTraffic(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "traffic store disabled"})
		return
	}

	var entry models.TrafficEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if entry.SourceIP == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source_ip is required"})
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	if err := s.store.AddEntry(c.Request.Context(), entry); err != nil {
		log.Printf("server: store traffic entry: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store entry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// blockAddress installs a block on behalf of an external detector or the CLI
func (s *Server) blockAddress(c *gin.Context) {
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	durationSec := s.cfg.Counter.BlockSeconds
	if req.DurationSec != nil {
		durationSec = *req.DurationSec
	}
	if durationSec < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "duration_sec must be >= 0"})
		return
	}

	reason := req.Reason
	if reason == "" {
		reason = "manual"
	}

	status := s.blocker.Block(c.Request.Context(), req.Address,
		time.Duration(durationSec)*time.Second, reason)

	code := http.StatusOK
	if status == countermeasure.StatusBlockFailed {
		code = http.StatusBadGateway
	}
	c.JSON(code, gin.H{
		"status":       string(status),
		"address":      req.Address,
		"duration_sec": durationSec,
	})
}

// unblockAddress removes a block; unknown addresses are a successful no-op
func (s *Server) unblockAddress(c *gin.Context) {
	var req unblockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.blocker.Unblock(c.Request.Context(), req.Address)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "address": req.Address})
}

// getBlocked returns the current block snapshot with expiry info
func (s *Server) getBlocked(c *gin.Context) {
	blocked := s.blocker.Blocked()
	c.JSON(http.StatusOK, gin.H{
		"blocked": blocked,
		"count":   len(blocked),
	})
}

// getActiveAttacks returns the attacks currently marked active
func (s *Server) getActiveAttacks(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusOK, gin.H{"attacks": []models.Attack{}})
		return
	}

	attacks, err := s.store.ActiveAttacks(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"attacks": attacks})
}

// getSummaryStats returns the dashboard headline numbers
func (s *Server) getSummaryStats(c *gin.Context) {
	summary := gin.H{
		"status":         "NORMAL",
		"active_attacks": 0,
		"blocked":        len(s.blocker.Blocked()),
	}

	if s.store != nil {
		if attacks, err := s.store.ActiveAttacks(c.Request.Context()); err == nil && len(attacks) > 0 {
			summary["status"] = "UNDER_ATTACK"
			summary["active_attacks"] = len(attacks)
		}
		window := time.Duration(s.cfg.Detection.WindowSeconds) * time.Second
		if entries, err := s.store.RecentEntries(c.Request.Context(), window); err == nil {
			summary["window"] = s.detector.Stats(entries)
		}
	}

	c.JSON(http.StatusOK, summary)
}
