// Package countermeasure installs and removes host-level blocks for hostile
// source addresses. A Backend knows how to act on one concrete platform; the
// Blocker wraps a Backend with the block registry, dedup and timed expiry.
package countermeasure

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// Status is the caller-visible outcome of a block request. No other signal
// crosses the subsystem boundary.
type Status string

const (
	StatusBlocked        Status = "BLOCKED"
	StatusAlreadyBlocked Status = "ALREADY_BLOCKED"
	StatusBlockFailed    Status = "BLOCK_FAILED"
)

// Backend translates block intent into a platform action. Install and Remove
// act on a single address and must be safe to call concurrently for
// different addresses.
type Backend interface {
	Name() string
	Install(ctx context.Context, addr string) error
	Remove(ctx context.Context, addr string) error
}

// RuleName derives the firewall rule name for an address. The name is
// deterministic so the delete side can find the rule without extra state.
func RuleName(addr string) string {
	return "Block_SDN_Attacker_" + addr
}

// runner abstracts command execution so backend tests can stub the host
// firewall tools.
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// ForName builds the backend selected in configuration. "auto" picks the
// host firewall matching the current OS.
func ForName(name, sdnURL string, dpid, priority int) (Backend, error) {
	switch name {
	case "auto":
		if runtime.GOOS == "windows" {
			return NewWindowsFirewall(), nil
		}
		return NewIPTables(), nil
	case "netsh":
		return NewWindowsFirewall(), nil
	case "iptables":
		return NewIPTables(), nil
	case "sdn":
		return NewSDNFlow(sdnURL, dpid, priority), nil
	default:
		return nil, fmt.Errorf("unknown countermeasure backend %q", name)
	}
}
