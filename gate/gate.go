// Package gate decides whether a publish action is currently permitted:
// operator kill switch, minimum interval since the last post, rolling 24h
// cap and error cooldown. The decision is advisory until the caller re-checks
// under the state lock immediately before committing.
package gate

import (
	"fmt"
	"time"

	"github.com/aditya493/linkedin-devops-automation/internal/statefile"
)

// Deny reasons. Callers treat a deny as a normal outcome, never an error.
const (
	ReasonKillSwitch = "kill_switch"
	ReasonInterval   = "min_interval"
	ReasonDailyCap   = "daily_cap"
	ReasonCooldown   = "error_cooldown"
)

// RateState is the persisted singleton behind the gate. PostTimes holds the
// timestamps inside the current rolling window; older entries are pruned on
// every successful publish.
type RateState struct {
	LastPostAt  time.Time   `json:"last_post_at"`
	PostTimes   []time.Time `json:"post_times"`
	LastErrorAt time.Time   `json:"last_error_at"`
	KillSwitch  bool        `json:"kill_switch"`
}

type Config struct {
	MinInterval   time.Duration
	MaxPerDay     int
	ErrorCooldown time.Duration
	KillSwitch    bool
	// Bypass skips interval/cap/cooldown checks. Test and dry-run use only;
	// callers must surface it in every outward notification.
	Bypass bool
}

type Decision struct {
	Allowed  bool
	Reason   string
	Bypassed bool
}

func Allow() Decision { return Decision{Allowed: true} }

func Deny(reason string) Decision { return Decision{Reason: reason} }

type Gate struct {
	path  string
	cfg   Config
	state RateState
}

// Open loads the persisted rate state. Corrupt state is fatal: publishing on
// guessed rate history could blow the daily cap.
func Open(path string, cfg Config) (*Gate, error) {
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 4 * time.Hour
	}
	if cfg.MaxPerDay <= 0 {
		cfg.MaxPerDay = 3
	}
	if cfg.ErrorCooldown <= 0 {
		cfg.ErrorCooldown = 30 * time.Minute
	}
	g := &Gate{path: path, cfg: cfg}
	if err := g.Reload(); err != nil {
		return nil, err
	}
	return g, nil
}

// Reload re-reads the on-disk snapshot. Callers re-check MayPublish after a
// Reload under the state lock to close the race window between the advisory
// check and the commit.
func (g *Gate) Reload() error {
	var state RateState
	if _, err := statefile.ReadJSON(g.path, &state); err != nil {
		return fmt.Errorf("rate state: %w", err)
	}
	g.state = state
	return nil
}

// MayPublish evaluates the gate at the given instant. The interval boundary
// is inclusive: a post exactly MinInterval after the previous one is allowed.
// The kill switch wins over everything, including bypass.
func (g *Gate) MayPublish(now time.Time) Decision {
	if g.cfg.KillSwitch || g.state.KillSwitch {
		return Deny(ReasonKillSwitch)
	}
	if g.cfg.Bypass {
		return Decision{Allowed: true, Bypassed: true}
	}
	if !g.state.LastPostAt.IsZero() && now.Sub(g.state.LastPostAt) < g.cfg.MinInterval {
		return Deny(ReasonInterval)
	}
	if g.countWithinWindow(now) >= g.cfg.MaxPerDay {
		return Deny(ReasonDailyCap)
	}
	if !g.state.LastErrorAt.IsZero() && now.Sub(g.state.LastErrorAt) < g.cfg.ErrorCooldown {
		return Deny(ReasonCooldown)
	}
	return Allow()
}

// MayEngage evaluates the gate for reply actions. The kill switch denies
// unconditionally and a platform error cooldown defers the run; the
// interval and daily-cap rules bound publishes only.
func (g *Gate) MayEngage(now time.Time) Decision {
	if g.cfg.KillSwitch || g.state.KillSwitch {
		return Deny(ReasonKillSwitch)
	}
	if g.cfg.Bypass {
		return Decision{Allowed: true, Bypassed: true}
	}
	if !g.state.LastErrorAt.IsZero() && now.Sub(g.state.LastErrorAt) < g.cfg.ErrorCooldown {
		return Deny(ReasonCooldown)
	}
	return Allow()
}

func (g *Gate) countWithinWindow(now time.Time) int {
	cutoff := now.Add(-24 * time.Hour)
	n := 0
	for _, ts := range g.state.PostTimes {
		if ts.After(cutoff) {
			n++
		}
	}
	return n
}

// RecordPublish marks a confirmed publish and prunes timestamps that fell
// out of the rolling window.
func (g *Gate) RecordPublish(now time.Time) {
	g.state.LastPostAt = now
	cutoff := now.Add(-24 * time.Hour)
	kept := g.state.PostTimes[:0]
	for _, ts := range g.state.PostTimes {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	g.state.PostTimes = append(kept, now)
}

// RecordError starts the cooldown timer. Called only on failed platform
// actions, never on success.
func (g *Gate) RecordError(now time.Time) {
	g.state.LastErrorAt = now
}

func (g *Gate) Flush() error {
	if err := statefile.WriteJSON(g.path, g.state); err != nil {
		return fmt.Errorf("rate state: %w", err)
	}
	return nil
}

func (g *Gate) LockPath() string { return statefile.LockPath(g.path) }

// State returns a copy of the current in-memory snapshot for reporting.
func (g *Gate) State() RateState {
	cp := g.state
	cp.PostTimes = append([]time.Time(nil), g.state.PostTimes...)
	return cp
}
