package countermeasure

import (
	"context"
	"log"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/models"
	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/registry"
	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/telemetry"
)

// actionTimeout bounds a single platform action (firewall command or
// controller call).
const actionTimeout = 10 * time.Second

// Blocker is the single entry point for blocking and unblocking addresses.
// It dedups concurrent requests, keeps the registry and its mirror in sync
// with the platform state, and schedules one cancellable expiry timer per
// active timed block. Platform actions run outside the internal lock.
//
// No Blocker operation terminates the process; failures become status values
// or log lines.
type Blocker struct {
	backend Backend
	reg     *registry.Registry

	// OnEvent, when set, receives a BlockEvent after every completed block
	// or unblock. Set it before the Blocker is shared between goroutines.
	OnEvent func(models.BlockEvent)

	mu         sync.Mutex
	installing map[string]struct{}
	removing   map[string]struct{}
	timers     map[string]*time.Timer
	meta       map[string]models.BlockedAddress
}

func New(backend Backend, reg *registry.Registry) *Blocker {
	return &Blocker{
		backend:    backend,
		reg:        reg,
		installing: make(map[string]struct{}),
		removing:   make(map[string]struct{}),
		timers:     make(map[string]*time.Timer),
		meta:       make(map[string]models.BlockedAddress),
	}
}

// Restore loads the persisted registry. Restored blocks carry no expiry:
// the mirror stores membership only, so they stay blocked until an explicit
// unblock. It returns the number of restored addresses.
func (b *Blocker) Restore() int {
	addrs := b.reg.Load()
	now := time.Now()

	b.mu.Lock()
	for _, addr := range addrs {
		b.meta[addr] = models.BlockedAddress{
			Address:   addr,
			BlockedAt: now,
			Reason:    "restored from previous run",
		}
	}
	b.mu.Unlock()

	telemetry.ActiveBlocks.Set(float64(b.reg.Len()))
	if len(addrs) > 0 {
		log.Printf("countermeasure: restored %d blocked address(es) from state file", len(addrs))
	}
	return len(addrs)
}

// Block installs a block for addr and schedules its removal after d. A zero
// duration means an indefinite block. If addr is already blocked (or an
// install for it is in flight) the existing block is left untouched,
// including its expiry.
func (b *Blocker) Block(ctx context.Context, addr string, d time.Duration, reason string) Status {
	if net.ParseIP(addr) == nil {
		log.Printf("countermeasure: refusing to block invalid address %q", addr)
		return StatusBlockFailed
	}

	b.mu.Lock()
	if _, busy := b.installing[addr]; busy || b.reg.Contains(addr) {
		b.mu.Unlock()
		return StatusAlreadyBlocked
	}
	b.installing[addr] = struct{}{}
	b.mu.Unlock()

	actx, cancel := context.WithTimeout(ctx, actionTimeout)
	err := b.backend.Install(actx, addr)
	cancel()

	b.mu.Lock()
	delete(b.installing, addr)
	if err != nil {
		b.mu.Unlock()
		telemetry.BlockFailures.WithLabelValues(b.backend.Name()).Inc()
		log.Printf("countermeasure: could not block %s: %v", addr, err)
		b.emit("block", addr, d, StatusBlockFailed, reason)
		return StatusBlockFailed
	}

	now := time.Now()
	entry := models.BlockedAddress{Address: addr, BlockedAt: now, Reason: reason}
	b.reg.Add(addr)
	if d > 0 {
		expires := now.Add(d)
		entry.ExpiresAt = &expires
		b.timers[addr] = time.AfterFunc(d, func() { b.expire(addr) })
	}
	b.meta[addr] = entry
	b.mu.Unlock()

	telemetry.BlocksInstalled.WithLabelValues(b.backend.Name()).Inc()
	telemetry.ActiveBlocks.Set(float64(b.reg.Len()))
	log.Printf("countermeasure: blocked %s via %s for %s", addr, b.backend.Name(), durationLabel(d))
	b.emit("block", addr, d, StatusBlocked, reason)
	return StatusBlocked
}

// Unblock removes the block for addr. Unknown addresses are a silent no-op,
// which also resolves the race between an explicit call and a fired expiry
// timer. A pending timer is cancelled. If the platform removal fails the
// registry entry is dropped anyway (optimistic removal); the failure is
// logged and counted so a possible stale rule is visible.
func (b *Blocker) Unblock(ctx context.Context, addr string) {
	b.mu.Lock()
	if !b.reg.Contains(addr) {
		b.mu.Unlock()
		return
	}
	if _, busy := b.removing[addr]; busy {
		b.mu.Unlock()
		return
	}
	b.removing[addr] = struct{}{}
	if t, ok := b.timers[addr]; ok {
		t.Stop()
		delete(b.timers, addr)
	}
	b.mu.Unlock()

	actx, cancel := context.WithTimeout(ctx, actionTimeout)
	err := b.backend.Remove(actx, addr)
	cancel()

	b.mu.Lock()
	delete(b.removing, addr)
	delete(b.meta, addr)
	b.reg.Remove(addr)
	b.mu.Unlock()

	if err != nil {
		telemetry.RemoveFailures.WithLabelValues(b.backend.Name()).Inc()
		log.Printf("countermeasure: could not remove block for %s (entry dropped): %v", addr, err)
	} else {
		telemetry.BlocksRemoved.WithLabelValues(b.backend.Name()).Inc()
		log.Printf("countermeasure: unblocked %s", addr)
	}
	telemetry.ActiveBlocks.Set(float64(b.reg.Len()))
	b.emit("unblock", addr, 0, "", "")
}

// Contains reports whether addr is currently blocked.
func (b *Blocker) Contains(addr string) bool {
	return b.reg.Contains(addr)
}

// Blocked returns the active blocks with their expiry info, sorted by
// address.
func (b *Blocker) Blocked() []models.BlockedAddress {
	addrs := b.reg.Snapshot()

	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.BlockedAddress, 0, len(addrs))
	for _, addr := range addrs {
		if entry, ok := b.meta[addr]; ok {
			out = append(out, entry)
		} else {
			out = append(out, models.BlockedAddress{Address: addr})
		}
	}
	return out
}

// Stop cancels all pending expiry timers. Blocks stay installed and
// registered; on the next start they come back via Restore.
func (b *Blocker) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for addr, t := range b.timers {
		t.Stop()
		delete(b.timers, addr)
	}
}

func (b *Blocker) expire(addr string) {
	log.Printf("countermeasure: block for %s expired", addr)
	b.mu.Lock()
	delete(b.timers, addr)
	b.mu.Unlock()
	b.Unblock(context.Background(), addr)
}

func (b *Blocker) emit(action, addr string, d time.Duration, status Status, reason string) {
	if b.OnEvent == nil {
		return
	}
	b.OnEvent(models.BlockEvent{
		ID:          uuid.New().String(),
		Action:      action,
		Address:     addr,
		DurationSec: int(d.Seconds()),
		Status:      string(status),
		Reason:      reason,
		Timestamp:   time.Now(),
	})
}

func durationLabel(d time.Duration) string {
	if d <= 0 {
		return "ever (no expiry)"
	}
	return d.String()
}
