package countermeasure

import (
	"context"
	"fmt"
)

// WindowsFirewall blocks addresses with uniquely named netsh advfirewall deny
// rules. The rule engine has no native expiry, the Blocker's timer handles it.
type WindowsFirewall struct {
	run runner
}

func NewWindowsFirewall() *WindowsFirewall {
	return &WindowsFirewall{run: execRun}
}

func (w *WindowsFirewall) Name() string { return "netsh" }

func (w *WindowsFirewall) Install(ctx context.Context, addr string) error {
	out, err := w.run(ctx, "netsh",
		"advfirewall", "firewall", "add", "rule",
		"name="+RuleName(addr),
		"dir=in", "interface=any", "action=block",
		"remoteip="+addr,
	)
	if err != nil {
		return fmt.Errorf("netsh add rule for %s: %v: %s", addr, err, out)
	}
	return nil
}

func (w *WindowsFirewall) Remove(ctx context.Context, addr string) error {
	out, err := w.run(ctx, "netsh",
		"advfirewall", "firewall", "delete", "rule",
		"name="+RuleName(addr),
	)
	if err != nil {
		return fmt.Errorf("netsh delete rule for %s: %v: %s", addr, err, out)
	}
	return nil
}
