package models

import "time"

// BlockedAddress is the display form of an active block. ExpiresAt is nil for
// indefinite blocks (restored from disk, or blocked with duration 0).
type BlockedAddress struct {
	Address   string     `json:"address"`
	BlockedAt time.Time  `json:"blocked_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

// BlockEvent is broadcast to dashboard clients whenever a block is installed
// or removed.
type BlockEvent struct {
	ID          string    `json:"id"`
	Action      string    `json:"action"` // block, unblock
	Address     string    `json:"address"`
	DurationSec int       `json:"duration_sec,omitempty"`
	Status      string    `json:"status"`
	Reason      string    `json:"reason,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
