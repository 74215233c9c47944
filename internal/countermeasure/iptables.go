package countermeasure

import (
	"context"
	"fmt"
)

// IPTables blocks addresses with DROP rules on the INPUT chain. iptables has
// no timed rules, so expiry is emulated entirely by the Blocker's timer.
type IPTables struct {
	run runner
}

func NewIPTables() *IPTables {
	return &IPTables{run: execRun}
}

func (t *IPTables) Name() string { return "iptables" }

func (t *IPTables) Install(ctx context.Context, addr string) error {
	out, err := t.run(ctx, "iptables", "-A", "INPUT", "-s", addr, "-j", "DROP")
	if err != nil {
		return fmt.Errorf("iptables append for %s: %v: %s", addr, err, out)
	}
	return nil
}

func (t *IPTables) Remove(ctx context.Context, addr string) error {
	out, err := t.run(ctx, "iptables", "-D", "INPUT", "-s", addr, "-j", "DROP")
	if err != nil {
		return fmt.Errorf("iptables delete for %s: %v: %s", addr, err, out)
	}
	return nil
}
