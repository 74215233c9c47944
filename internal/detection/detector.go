// Package detection classifies windows of access traffic and flags source
// addresses that look hostile. Findings feed the countermeasure layer.
package detection

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/config"
	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/models"
)

type Detector struct {
	cfg config.DetectConfig
}

func New(cfg config.DetectConfig) *Detector {
	return &Detector{cfg: cfg}
}

// windowCounts holds the per-window aggregates the detectors share
type windowCounts struct {
	total   int
	byIP    map[string]int
	byPath  map[string]int
	ipEnt   float64
	pathEnt float64
}

// Analyze runs all detectors over one traffic window and returns the attacks
// found, if any.
func (d *Detector) Analyze(entries []models.TrafficEntry) []models.Attack {
	if len(entries) == 0 {
		return nil
	}

	w := count(entries)
	var attacks []models.Attack

	if a := d.detectRequestFlood(w); a != nil {
		attacks = append(attacks, *a)
	}
	if a := d.detectBotnetFlood(w); a != nil {
		attacks = append(attacks, *a)
	}
	if a := d.detectPathHammering(w); a != nil {
		attacks = append(attacks, *a)
	}
	return attacks
}

// Stats summarizes a window for the dashboard endpoints.
func (d *Detector) Stats(entries []models.TrafficEntry) models.WindowStats {
	w := count(entries)
	stats := models.WindowStats{
		WindowSeconds: d.cfg.WindowSeconds,
		TotalRequests: w.total,
		UniqueIPs:     len(w.byIP),
		SourceEntropy: w.ipEnt,
		PathEntropy:   w.pathEnt,
	}
	if len(w.byIP) > 0 {
		stats.RequestsPerIP = float64(w.total) / float64(len(w.byIP))
	}
	return stats
}

func count(entries []models.TrafficEntry) *windowCounts {
	w := &windowCounts{
		byIP:   make(map[string]int),
		byPath: make(map[string]int),
	}
	for _, e := range entries {
		w.total++
		w.byIP[e.SourceIP]++
		if e.Path != "" {
			w.byPath[e.Path]++
		}
	}
	w.ipEnt = entropy(w.byIP)
	w.pathEnt = entropy(w.byPath)
	return w
}

// detectRequestFlood flags individual sources hammering the service beyond
// the per-IP threshold.
func (d *Detector) detectRequestFlood(w *windowCounts) *models.Attack {
	var offenders []string
	peak := 0
	for ip, n := range w.byIP {
		if n >= d.cfg.FloodThreshold {
			offenders = append(offenders, ip)
			if n > peak {
				peak = n
			}
		}
	}
	if len(offenders) == 0 {
		return nil
	}
	sort.Strings(offenders)

	confidence := math.Min(float64(peak)/float64(2*d.cfg.FloodThreshold), 1.0)
	return &models.Attack{
		ID:         uuid.New().String(),
		Type:       "REQUEST_FLOOD",
		Severity:   severity(confidence),
		Confidence: confidence,
		DetectedAt: time.Now(),
		SourceIPs:  offenders,
		Description: fmt.Sprintf("request flood: %d source(s) above %d req/window, peak %d",
			len(offenders), d.cfg.FloodThreshold, peak),
	}
}

// detectBotnetFlood flags a coordinated flood: high total volume concentrated
// in few sources (low source entropy).
func (d *Detector) detectBotnetFlood(w *windowCounts) *models.Attack {
	if w.total < d.cfg.BotnetThreshold || w.ipEnt >= d.cfg.EntropyMin {
		return nil
	}

	confidence := math.Min(float64(w.total)/float64(2*d.cfg.BotnetThreshold), 1.0)
	return &models.Attack{
		ID:         uuid.New().String(),
		Type:       "BOTNET_FLOOD",
		Severity:   severity(confidence),
		Confidence: confidence,
		DetectedAt: time.Now(),
		SourceIPs:  topKeys(w.byIP, 20),
		Description: fmt.Sprintf("coordinated flood: %d requests from %d sources (entropy %.2f)",
			w.total, len(w.byIP), w.ipEnt),
	}
}

// detectPathHammering flags repeated hits on a single path, the access-log
// signature of a scripted endpoint flood.
func (d *Detector) detectPathHammering(w *windowCounts) *models.Attack {
	hotPath := ""
	hits := 0
	for path, n := range w.byPath {
		if n > hits {
			hotPath, hits = path, n
		}
	}
	if hits < d.cfg.PathRepeatThreshold || w.pathEnt >= 2.0 {
		return nil
	}

	confidence := math.Min(float64(hits)/float64(2*d.cfg.PathRepeatThreshold), 1.0)
	return &models.Attack{
		ID:         uuid.New().String(),
		Type:       "PATH_HAMMERING",
		Severity:   severity(confidence),
		Confidence: confidence,
		DetectedAt: time.Now(),
		SourceIPs:  topKeys(w.byIP, 20),
		Description: fmt.Sprintf("path hammering: %d hits on %s (path entropy %.2f)",
			hits, hotPath, w.pathEnt),
	}
}

// entropy calculates Shannon entropy for a count distribution
func entropy(counts map[string]int) float64 {
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return 0
	}

	ent := 0.0
	for _, n := range counts {
		if n > 0 {
			p := float64(n) / float64(total)
			ent -= p * math.Log2(p)
		}
	}
	return ent
}

// topKeys returns up to n keys sorted by descending count
func topKeys(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

func severity(confidence float64) string {
	switch {
	case confidence >= 0.9:
		return "CRITICAL"
	case confidence >= 0.7:
		return "HIGH"
	case confidence >= 0.5:
		return "MEDIUM"
	}
	return "LOW"
}
