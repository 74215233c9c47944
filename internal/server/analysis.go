package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/countermeasure"
	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/models"
	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/telemetry"
)

// runAnalysis periodically classifies the recent traffic window, records and
// broadcasts findings, and auto-blocks offending sources when configured.
func (s *Server) runAnalysis(ctx context.Context) {
	if s.store == nil {
		log.Println("analysis: no traffic store configured, detection disabled")
		return
	}

	interval := time.Duration(s.cfg.Detection.IntervalSeconds) * time.Second
	window := time.Duration(s.cfg.Detection.WindowSeconds) * time.Second

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("analysis: engine started (every %s over a %s window)", interval, window)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		entries, err := s.store.RecentEntries(ctx, window)
		if err != nil {
			log.Printf("analysis: fetch traffic window: %v", err)
			continue
		}
		if len(entries) == 0 {
			continue
		}

		for _, attack := range s.detector.Analyze(entries) {
			s.handleAttack(ctx, attack)
		}

		s.hub.Broadcast("stats", s.detector.Stats(entries))
	}
}

func (s *Server) handleAttack(ctx context.Context, attack models.Attack) {
	log.Printf("analysis: %s detected (confidence %.2f, %d source(s))",
		attack.Type, attack.Confidence, len(attack.SourceIPs))
	telemetry.AttacksDetected.WithLabelValues(attack.Type).Inc()

	if s.cfg.Detection.AutoBlock && attack.Confidence >= s.cfg.Detection.MinConfidence {
		attack.Mitigated = s.mitigate(ctx, attack)
	}

	if err := s.store.SaveAttack(ctx, attack); err != nil {
		log.Printf("analysis: save attack: %v", err)
	}

	alert := models.Alert{
		ID:         attack.ID,
		Level:      "CRITICAL",
		Title:      fmt.Sprintf("%s attack detected", attack.Type),
		Message:    attack.Description,
		AttackType: attack.Type,
		Timestamp:  time.Now(),
	}
	if err := s.store.PublishAlert(ctx, alert); err != nil {
		log.Printf("analysis: publish alert: %v", err)
	}
	s.hub.Broadcast("alert", alert)
}

// mitigate blocks every offending source of an attack and reports whether at
// least one new block was installed. Already-blocked sources are left alone.
func (s *Server) mitigate(ctx context.Context, attack models.Attack) bool {
	duration := time.Duration(s.cfg.Counter.BlockSeconds) * time.Second
	reason := "auto: " + attack.Type

	mitigated := false
	for _, ip := range attack.SourceIPs {
		switch s.blocker.Block(ctx, ip, duration, reason) {
		case countermeasure.StatusBlocked:
			mitigated = true
		case countermeasure.StatusBlockFailed:
			log.Printf("analysis: mitigation failed for %s", ip)
		}
	}
	return mitigated
}
