package countermeasure

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/models"
	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/registry"
)

// fakeBackend records platform actions and can be told to fail or stall.
type fakeBackend struct {
	mu           sync.Mutex
	installs     []string
	removes      []string
	installErr   error
	removeErr    error
	installDelay time.Duration
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Install(ctx context.Context, addr string) error {
	if f.installDelay > 0 {
		time.Sleep(f.installDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.installErr != nil {
		return f.installErr
	}
	f.installs = append(f.installs, addr)
	return nil
}

func (f *fakeBackend) Remove(ctx context.Context, addr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removes = append(f.removes, addr)
	return nil
}

func (f *fakeBackend) installCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.installs)
}

func (f *fakeBackend) removeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.removes)
}

func newTestBlocker(t *testing.T) (*Blocker, *fakeBackend, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blocked.json")
	backend := &fakeBackend{}
	b := New(backend, registry.New(path))
	t.Cleanup(b.Stop)
	return b, backend, path
}

func TestBlockInstallsAndPersists(t *testing.T) {
	b, backend, path := newTestBlocker(t)

	status := b.Block(context.Background(), "10.0.0.5", time.Minute, "test")
	require.Equal(t, StatusBlocked, status)

	assert.True(t, b.Contains("10.0.0.5"))
	assert.Equal(t, []string{"10.0.0.5"}, backend.installs)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `["10.0.0.5"]`, string(data))
}

func TestBlockAlreadyBlocked(t *testing.T) {
	b, backend, _ := newTestBlocker(t)

	require.Equal(t, StatusBlocked, b.Block(context.Background(), "10.0.0.5", time.Minute, "test"))
	firstExpiry := b.Blocked()[0].ExpiresAt

	// second request is a no-op: no extra install, expiry untouched
	assert.Equal(t, StatusAlreadyBlocked, b.Block(context.Background(), "10.0.0.5", time.Hour, "test"))
	assert.Equal(t, 1, backend.installCount())
	assert.Equal(t, firstExpiry, b.Blocked()[0].ExpiresAt)
}

func TestBlockInstallFailure(t *testing.T) {
	b, backend, path := newTestBlocker(t)
	backend.installErr = errors.New("netsh exited 1")

	status := b.Block(context.Background(), "10.0.0.5", time.Minute, "test")
	assert.Equal(t, StatusBlockFailed, status)
	assert.False(t, b.Contains("10.0.0.5"))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "failed install must not touch the mirror")

	// address stays blockable once the backend recovers
	backend.installErr = nil
	assert.Equal(t, StatusBlocked, b.Block(context.Background(), "10.0.0.5", time.Minute, "test"))
}

func TestBlockInvalidAddress(t *testing.T) {
	b, backend, _ := newTestBlocker(t)

	assert.Equal(t, StatusBlockFailed, b.Block(context.Background(), "not-an-ip", time.Minute, "test"))
	assert.Equal(t, 0, backend.installCount())
}

func TestBlockZeroDurationIsIndefinite(t *testing.T) {
	b, _, _ := newTestBlocker(t)

	require.Equal(t, StatusBlocked, b.Block(context.Background(), "10.0.0.5", 0, "test"))
	require.Len(t, b.Blocked(), 1)
	assert.Nil(t, b.Blocked()[0].ExpiresAt)

	time.Sleep(50 * time.Millisecond)
	assert.True(t, b.Contains("10.0.0.5"))
}

func TestUnblockUnknownIsNoop(t *testing.T) {
	b, backend, _ := newTestBlocker(t)

	b.Unblock(context.Background(), "10.0.0.99")
	assert.Equal(t, 0, backend.removeCount())
}

func TestUnblockIsIdempotent(t *testing.T) {
	b, backend, _ := newTestBlocker(t)
	require.Equal(t, StatusBlocked, b.Block(context.Background(), "10.0.0.5", time.Minute, "test"))

	b.Unblock(context.Background(), "10.0.0.5")
	b.Unblock(context.Background(), "10.0.0.5")

	assert.False(t, b.Contains("10.0.0.5"))
	assert.Equal(t, 1, backend.removeCount())
}

func TestTimerExpiryUnblocksOnce(t *testing.T) {
	b, backend, _ := newTestBlocker(t)

	require.Equal(t, StatusBlocked, b.Block(context.Background(), "10.0.0.5", 100*time.Millisecond, "test"))
	require.True(t, b.Contains("10.0.0.5"))

	require.Eventually(t, func() bool {
		return !b.Contains("10.0.0.5")
	}, 2*time.Second, 10*time.Millisecond)

	// give a hypothetical duplicate fire time to show up
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 1, backend.removeCount())
}

func TestExplicitUnblockCancelsTimer(t *testing.T) {
	b, backend, _ := newTestBlocker(t)

	require.Equal(t, StatusBlocked, b.Block(context.Background(), "10.0.0.5", 150*time.Millisecond, "test"))
	b.Unblock(context.Background(), "10.0.0.5")
	require.Equal(t, 1, backend.removeCount())

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, backend.removeCount(), "cancelled timer must not remove again")
}

func TestConcurrentBlockSingleInstall(t *testing.T) {
	b, backend, _ := newTestBlocker(t)
	backend.installDelay = 50 * time.Millisecond

	var wg sync.WaitGroup
	statuses := make([]Status, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			statuses[i] = b.Block(context.Background(), "10.0.0.9", 5*time.Second, "test")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, backend.installCount())
	assert.True(t, b.Contains("10.0.0.9"))

	blocked, already := 0, 0
	for _, st := range statuses {
		switch st {
		case StatusBlocked:
			blocked++
		case StatusAlreadyBlocked:
			already++
		}
	}
	assert.Equal(t, 1, blocked)
	assert.Equal(t, 1, already)
}

func TestRemoveFailureStillDropsEntry(t *testing.T) {
	b, backend, path := newTestBlocker(t)
	require.Equal(t, StatusBlocked, b.Block(context.Background(), "10.0.0.5", time.Minute, "test"))

	backend.removeErr = errors.New("iptables exited 1")
	b.Unblock(context.Background(), "10.0.0.5")

	// optimistic removal: entry gone locally even though the platform
	// action failed
	assert.False(t, b.Contains("10.0.0.5"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestRestoreIsIndefinite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocked.json")
	require.NoError(t, os.WriteFile(path, []byte(`["10.0.0.7","10.0.0.8"]`), 0o644))

	backend := &fakeBackend{}
	b := New(backend, registry.New(path))
	t.Cleanup(b.Stop)

	assert.Equal(t, 2, b.Restore())
	assert.True(t, b.Contains("10.0.0.7"))

	// restored blocks have no expiry and no timers
	for _, entry := range b.Blocked() {
		assert.Nil(t, entry.ExpiresAt)
	}
	time.Sleep(50 * time.Millisecond)
	assert.True(t, b.Contains("10.0.0.7"))
	assert.Equal(t, 0, backend.removeCount())

	// the firewall rule is assumed present from the previous run, so a
	// restored block is AlreadyBlocked without a new install
	assert.Equal(t, StatusAlreadyBlocked, b.Block(context.Background(), "10.0.0.7", time.Minute, "test"))
	assert.Equal(t, 0, backend.installCount())
}

func TestBlockEvents(t *testing.T) {
	b, _, _ := newTestBlocker(t)

	var mu sync.Mutex
	var events []models.BlockEvent
	b.OnEvent = func(ev models.BlockEvent) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	}

	b.Block(context.Background(), "10.0.0.5", time.Minute, "test")
	b.Unblock(context.Background(), "10.0.0.5")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 2)
	assert.Equal(t, "block", events[0].Action)
	assert.Equal(t, string(StatusBlocked), events[0].Status)
	assert.Equal(t, "unblock", events[1].Action)
	assert.NotEmpty(t, events[0].ID)
}
