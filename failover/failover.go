// Package failover drives an ordered list of completion backends and
// guarantees usable text for every request: the first backend whose response
// passes validation wins, and when every backend is exhausted a
// deterministic static fallback answers instead.
package failover

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aditya493/linkedin-devops-automation/llm"
)

// FailureKind distinguishes why a backend attempt was rejected, so callers
// and tests can assert which tier answered and why the others did not.
type FailureKind string

const (
	FailureNone      FailureKind = ""
	FailureTimeout   FailureKind = "timeout"
	FailureTransport FailureKind = "transport"
	FailureAuth      FailureKind = "auth"
	FailureQuota     FailureKind = "quota"
	FailureRemote    FailureKind = "remote"
	FailureInvalid   FailureKind = "invalid"
)

// Attempt records one backend try. Never persisted; logging and metrics only.
type Attempt struct {
	Backend  string
	Kind     FailureKind
	Err      error
	Duration time.Duration

	text string
}

// Outcome is the total result of Generate. Text is always non-empty.
type Outcome struct {
	Text     string
	Backend  string
	Fallback bool
	Attempts []Attempt
}

type Chain struct {
	backends []llm.Client
	timeout  time.Duration
	maxChars int
	logger   *slog.Logger
}

const defaultMaxChars = 2000

func New(backends []llm.Client, timeout time.Duration, logger *slog.Logger) *Chain {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{
		backends: backends,
		timeout:  timeout,
		maxChars: defaultMaxChars,
		logger:   logger,
	}
}

// Generate tries each backend in order and never fails: if no backend
// produces a valid response the static fallback for the request's task
// answers. Each attempt is bounded by the chain's per-call timeout.
func (c *Chain) Generate(ctx context.Context, req llm.Request) Outcome {
	var attempts []Attempt
	for _, backend := range c.backends {
		attempt := c.try(ctx, backend, req)
		attempts = append(attempts, attempt)
		if attempt.Kind == FailureNone {
			c.logger.Debug("failover_backend_ok",
				"backend", attempt.Backend,
				"task", string(req.Task),
				"attempts", len(attempts),
				"duration", attempt.Duration.String())
			return Outcome{Text: attempt.text, Backend: attempt.Backend, Attempts: attempts}
		}
		c.logger.Debug("failover_backend_failed",
			"backend", attempt.Backend,
			"task", string(req.Task),
			"kind", string(attempt.Kind),
			"error", errText(attempt.Err))
	}

	c.logger.Warn("failover_exhausted", "task", string(req.Task), "attempts", len(attempts))
	return Outcome{
		Text:     StaticFallback(req.Task, req.Prompt),
		Backend:  "static",
		Fallback: true,
		Attempts: attempts,
	}
}

func (c *Chain) try(ctx context.Context, backend llm.Client, req llm.Request) Attempt {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	res, err := backend.Complete(callCtx, req)
	elapsed := time.Since(start)
	if err != nil {
		return Attempt{Backend: backend.Name(), Kind: classify(err), Err: err, Duration: elapsed}
	}

	text, ok := Validate(res.Text, c.maxChars)
	if !ok {
		return Attempt{
			Backend:  backend.Name(),
			Kind:     FailureInvalid,
			Err:      errors.New("response failed validation"),
			Duration: elapsed,
		}
	}
	a := Attempt{Backend: backend.Name(), Kind: FailureNone, Duration: elapsed}
	a.text = text
	return a
}

var httpStatusRe = regexp.MustCompile(`http (\d{3})`)

func classify(err error) FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return FailureTimeout
		}
		return FailureTransport
	}
	if m := httpStatusRe.FindStringSubmatch(err.Error()); m != nil {
		status, _ := strconv.Atoi(m[1])
		switch {
		case status == 401 || status == 403:
			return FailureAuth
		case status == 429:
			return FailureQuota
		}
		return FailureRemote
	}
	return FailureTransport
}

// Validate normalizes a backend response and decides whether it is usable:
// non-empty after trimming, under the length ceiling, and not an error echo
// or refusal masquerading as content.
func Validate(text string, maxChars int) (string, bool) {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, `"'`)
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	if maxChars > 0 && len(text) > maxChars {
		return "", false
	}
	lower := strings.ToLower(text)
	rejectPrefixes := []string{
		"error", "i'm sorry", "i am sorry", "i cannot", "i can't", "as an ai",
	}
	for _, p := range rejectPrefixes {
		if strings.HasPrefix(lower, p) {
			return "", false
		}
	}
	for _, spam := range []string{"placeholder", "lorem ipsum"} {
		if strings.Contains(lower, spam) {
			return "", false
		}
	}
	return text, true
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
