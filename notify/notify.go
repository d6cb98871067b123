// Package notify assembles the per-run outcome record and delivers it to a
// Slack incoming webhook.
package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aditya493/linkedin-devops-automation/mode"
)

// Record summarizes one invocation. Live and dry runs produce the same
// record shape; only the mode marker differs.
type Record struct {
	RunID      string
	Kind       string // "post" or "engage"
	Mode       string
	Bypassed   bool
	StartedAt  time.Time
	FinishedAt time.Time

	Published int
	Skipped   int
	Replied   int
	Failed    int

	Detail  string
	Preview string
	Errors  []string
}

// NewRecord starts a run record with a fresh id.
func NewRecord(kind string, m mode.ExecutionMode, now time.Time) *Record {
	return &Record{
		RunID:     uuid.NewString(),
		Kind:      kind,
		Mode:      m.Label(),
		Bypassed:  m.BypassRateLimits,
		StartedAt: now,
	}
}

func (r *Record) AddError(err error) {
	if err != nil {
		r.Errors = append(r.Errors, err.Error())
	}
}

// Text renders the record for webhook delivery and log output.
func (r *Record) Text() string {
	var b strings.Builder
	icon := "✅"
	if r.Failed > 0 || len(r.Errors) > 0 {
		icon = "⚠️"
	}
	fmt.Fprintf(&b, "%s %s run %s [%s]", icon, r.Kind, r.RunID, r.Mode)
	if r.Bypassed {
		b.WriteString(" [RATE LIMITS BYPASSED]")
	}
	b.WriteString("\n")
	switch r.Kind {
	case "engage":
		fmt.Fprintf(&b, "replied=%d skipped=%d failed=%d", r.Replied, r.Skipped, r.Failed)
	default:
		fmt.Fprintf(&b, "published=%d skipped=%d failed=%d", r.Published, r.Skipped, r.Failed)
	}
	if !r.FinishedAt.IsZero() {
		fmt.Fprintf(&b, " duration=%s", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	}
	if r.Detail != "" {
		b.WriteString("\n")
		b.WriteString(r.Detail)
	}
	if r.Preview != "" {
		b.WriteString("\n--- preview ---\n")
		b.WriteString(r.Preview)
	}
	for _, e := range r.Errors {
		b.WriteString("\nerror: ")
		b.WriteString(e)
	}
	return b.String()
}
