package storage

import (
	"context"
	"time"

	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/models"
)

// Store buffers the traffic window and keeps detection results for the
// dashboard endpoints. It is display-side state only: the block registry
// never lives here.
type Store interface {
	AddEntry(ctx context.Context, entry models.TrafficEntry) error
	RecentEntries(ctx context.Context, window time.Duration) ([]models.TrafficEntry, error)

	SaveAttack(ctx context.Context, attack models.Attack) error
	ActiveAttacks(ctx context.Context) ([]models.Attack, error)

	PublishAlert(ctx context.Context, alert models.Alert) error

	Close() error
}
