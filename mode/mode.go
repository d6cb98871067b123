// Package mode carries the execution-mode flags threaded from the CLI down
// to the action boundaries.
package mode

// ExecutionMode is checked exactly where an irreversible platform call
// would happen; everything upstream runs identically in both modes.
type ExecutionMode struct {
	DryRun bool
	// BypassRateLimits skips the rate gate's interval/cap/cooldown checks.
	// Test use only; every outward notification must surface it.
	BypassRateLimits bool
}

func (m ExecutionMode) Label() string {
	if m.DryRun {
		return "dry-run"
	}
	return "live"
}
