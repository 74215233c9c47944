// Package simulator drives the demo: it plays normal visitor traffic against
// the ingest API and periodically switches to one of the attack patterns the
// detector knows about.
package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/models"
)

var attackPhases = []string{"REQUEST_FLOOD", "BOTNET_FLOOD", "PATH_HAMMERING"}

var normalPaths = []string{
	"/", "/api/data", "/api/status", "/login", "/dashboard",
	"/spectrum", "/flows", "/help",
}

type Simulator struct {
	serverURL string
	rate      int // normal requests per tick
	client    *http.Client

	attackActive bool
	attackPhase  int
}

func New(serverURL string, rate int) *Simulator {
	return &Simulator{
		serverURL: serverURL,
		rate:      rate,
		client:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Run generates traffic until ctx is cancelled, alternating between calm
// periods and attack phases.
func (s *Simulator) Run(ctx context.Context) error {
	log.Printf("simulator: sending ~%d req/s to %s, cycling %v", s.rate, s.serverURL, attackPhases)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	phaseTicker := time.NewTicker(15 * time.Second)
	defer phaseTicker.Stop()

	s.attackActive = true
	log.Printf("simulator: starting %s phase", attackPhases[s.attackPhase])

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-phaseTicker.C:
			if s.attackActive {
				s.attackActive = false
				log.Println("simulator: attack phase over, back to normal traffic")
			} else {
				s.attackPhase = (s.attackPhase + 1) % len(attackPhases)
				s.attackActive = true
				log.Printf("simulator: starting %s phase", attackPhases[s.attackPhase])
			}
		case <-ticker.C:
			for i := 0; i < s.rate; i++ {
				s.send(ctx, s.normalEntry())
			}
			if s.attackActive {
				for _, entry := range s.attackBurst() {
					s.send(ctx, entry)
				}
			}
		}
	}
}

func (s *Simulator) normalEntry() models.TrafficEntry {
	return models.TrafficEntry{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		SourceIP: fmt.Sprintf("10.%d.%d.%d",
			rand.Intn(256), rand.Intn(256), rand.Intn(254)+1),
		Method:     "GET",
		Path:       normalPaths[rand.Intn(len(normalPaths))],
		StatusCode: 200,
		DurationMS: rand.Intn(200) + 20,
	}
}

func (s *Simulator) attackBurst() []models.TrafficEntry {
	switch attackPhases[s.attackPhase] {
	case "REQUEST_FLOOD":
		// one loud source hammering random endpoints
		return s.burst(rand.Intn(200)+300, []string{"203.0.113.66"}, normalPaths)
	case "BOTNET_FLOOD":
		// a handful of sources producing the bulk of the window
		ips := []string{
			"198.51.100.20", "198.51.100.21", "198.51.100.22",
			"198.51.100.23", "198.51.100.24",
		}
		return s.burst(rand.Intn(500)+1000, ips, normalPaths)
	case "PATH_HAMMERING":
		ips := []string{"192.0.2.50", "192.0.2.51"}
		return s.burst(rand.Intn(300)+600, ips, []string{"/login"})
	}
	return nil
}

func (s *Simulator) burst(n int, ips, paths []string) []models.TrafficEntry {
	entries := make([]models.TrafficEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, models.TrafficEntry{
			ID:         uuid.New().String(),
			Timestamp:  time.Now(),
			SourceIP:   ips[rand.Intn(len(ips))],
			Method:     "GET",
			Path:       paths[rand.Intn(len(paths))],
			UserAgent:  "curl/7.68.0",
			StatusCode: 200,
			DurationMS: rand.Intn(50),
		})
	}
	return entries
}

func (s *Simulator) send(ctx context.Context, entry models.TrafficEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.serverURL+"/api/traffic/ingest", bytes.NewReader(data))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}
