package models

import "time"

// TrafficEntry is a single observed HTTP access event, either ingested over
// the API or parsed out of the dashboard access log.
type TrafficEntry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	SourceIP   string    `json:"source_ip"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	UserAgent  string    `json:"user_agent,omitempty"`
	StatusCode int       `json:"status_code,omitempty"`
	DurationMS int       `json:"duration_ms,omitempty"`
}

// Attack represents a detected attack pattern in the traffic window
type Attack struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`     // REQUEST_FLOOD, BOTNET_FLOOD, PATH_HAMMERING
	Severity    string    `json:"severity"` // LOW, MEDIUM, HIGH, CRITICAL
	Confidence  float64   `json:"confidence"`
	DetectedAt  time.Time `json:"detected_at"`
	SourceIPs   []string  `json:"source_ips"`
	Description string    `json:"description"`
	Mitigated   bool      `json:"mitigated"`
}

// Alert is the user-facing notification published for dashboards
type Alert struct {
	ID         string    `json:"id"`
	Level      string    `json:"level"` // INFO, WARNING, CRITICAL
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	AttackType string    `json:"attack_type,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// WindowStats summarizes a traffic window for the stats endpoints
type WindowStats struct {
	WindowSeconds int     `json:"window_seconds"`
	TotalRequests int     `json:"total_requests"`
	UniqueIPs     int     `json:"unique_ips"`
	RequestsPerIP float64 `json:"requests_per_ip"`
	SourceEntropy float64 `json:"source_entropy"`
	PathEntropy   float64 `json:"path_entropy"`
}
