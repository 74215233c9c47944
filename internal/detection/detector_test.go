package detection

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/config"
	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/models"
)

func testConfig() config.DetectConfig {
	return config.DetectConfig{
		WindowSeconds:       60,
		IntervalSeconds:     5,
		FloodThreshold:      50,
		BotnetThreshold:     200,
		EntropyMin:          3.0,
		PathRepeatThreshold: 100,
	}
}

func entries(ip, path string, n int) []models.TrafficEntry {
	out := make([]models.TrafficEntry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.TrafficEntry{
			Timestamp: time.Now(),
			SourceIP:  ip,
			Method:    "GET",
			Path:      path,
		})
	}
	return out
}

// diverse generates background traffic from many sources over many paths
func diverse(n int) []models.TrafficEntry {
	out := make([]models.TrafficEntry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.TrafficEntry{
			Timestamp: time.Now(),
			SourceIP:  fmt.Sprintf("10.1.%d.%d", i%40, i%200),
			Method:    "GET",
			Path:      fmt.Sprintf("/page/%d", i%30),
		})
	}
	return out
}

func TestAnalyzeEmptyWindow(t *testing.T) {
	d := New(testConfig())
	assert.Nil(t, d.Analyze(nil))
}

func TestNormalTrafficIsClean(t *testing.T) {
	d := New(testConfig())
	assert.Empty(t, d.Analyze(diverse(150)))
}

func TestRequestFlood(t *testing.T) {
	d := New(testConfig())

	window := append(diverse(100), entries("203.0.113.66", "/api/data", 120)...)
	attacks := d.Analyze(window)

	var flood *models.Attack
	for i := range attacks {
		if attacks[i].Type == "REQUEST_FLOOD" {
			flood = &attacks[i]
		}
	}
	require.NotNil(t, flood, "expected a REQUEST_FLOOD finding")
	assert.Equal(t, []string{"203.0.113.66"}, flood.SourceIPs)
	assert.InDelta(t, 1.0, flood.Confidence, 0.01)
	assert.Equal(t, "CRITICAL", flood.Severity)
}

func TestBotnetFlood(t *testing.T) {
	d := New(testConfig())

	var window []models.TrafficEntry
	for i := 0; i < 5; i++ {
		ip := fmt.Sprintf("198.51.100.%d", 20+i)
		for j := 0; j < 9; j++ {
			window = append(window, entries(ip, fmt.Sprintf("/p/%d", j), 6)...)
		}
	}
	require.GreaterOrEqual(t, len(window), 200)

	attacks := d.Analyze(window)
	var botnet *models.Attack
	for i := range attacks {
		if attacks[i].Type == "BOTNET_FLOOD" {
			botnet = &attacks[i]
		}
	}
	require.NotNil(t, botnet, "expected a BOTNET_FLOOD finding")
	assert.Len(t, botnet.SourceIPs, 5)
}

func TestPathHammering(t *testing.T) {
	d := New(testConfig())

	window := append(entries("192.0.2.50", "/login", 80), entries("192.0.2.51", "/login", 60)...)
	attacks := d.Analyze(window)

	var hammer *models.Attack
	for i := range attacks {
		if attacks[i].Type == "PATH_HAMMERING" {
			hammer = &attacks[i]
		}
	}
	require.NotNil(t, hammer, "expected a PATH_HAMMERING finding")
	assert.Contains(t, hammer.Description, "/login")
	assert.Contains(t, hammer.SourceIPs, "192.0.2.50")
	assert.Contains(t, hammer.SourceIPs, "192.0.2.51")
}

func TestStats(t *testing.T) {
	d := New(testConfig())

	window := append(entries("10.0.0.1", "/a", 30), entries("10.0.0.2", "/b", 30)...)
	stats := d.Stats(window)

	assert.Equal(t, 60, stats.TotalRequests)
	assert.Equal(t, 2, stats.UniqueIPs)
	assert.InDelta(t, 30.0, stats.RequestsPerIP, 0.01)
	assert.InDelta(t, 1.0, stats.SourceEntropy, 0.01)
}

func TestEntropy(t *testing.T) {
	assert.Zero(t, entropy(map[string]int{}))
	assert.Zero(t, entropy(map[string]int{"a": 10}))
	assert.InDelta(t, 1.0, entropy(map[string]int{"a": 5, "b": 5}), 0.001)
}

func TestTopKeys(t *testing.T) {
	counts := map[string]int{"a": 1, "b": 5, "c": 3, "d": 5}
	assert.Equal(t, []string{"b", "d", "c"}, topKeys(counts, 3))
}
