// Package publish commits one post per run: re-checks the rate gate and the
// dedup ledger under their file locks, performs the single irreversible
// create-post call, and flushes state only after confirmed success.
package publish

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aditya493/linkedin-devops-automation/gate"
	"github.com/aditya493/linkedin-devops-automation/internal/statefile"
	"github.com/aditya493/linkedin-devops-automation/ledger"
	"github.com/aditya493/linkedin-devops-automation/mode"
	"github.com/aditya493/linkedin-devops-automation/source"
)

type Status string

const (
	StatusPublished Status = "published"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Result is the outcome of one publish attempt. Skipped is a normal
// outcome, not an error; Err is set only for StatusFailed.
type Result struct {
	Status   Status
	Reason   string
	PostID   string
	DryRun   bool
	Bypassed bool
	Err      error
}

// Poster is the single platform call the publisher needs.
type Poster interface {
	CreatePost(ctx context.Context, text string) (string, error)
}

type Publisher struct {
	gate     *gate.Gate
	ledger   *ledger.PublishLedger
	platform Poster
	mode     mode.ExecutionMode
	logger   *slog.Logger
	now      func() time.Time
}

func New(g *gate.Gate, l *ledger.PublishLedger, platform Poster, m mode.ExecutionMode, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Publisher{
		gate:     g,
		ledger:   l,
		platform: platform,
		mode:     m,
		logger:   logger,
		now:      time.Now,
	}
}

// Publish posts the composed text for a candidate. Under the rate-state
// lock it reloads and re-checks both the gate and the dedup ledger, so a
// concurrent run that already published is observed and answered with a
// skip. The create-post call is never retried here; a failure is deferred
// to the next scheduled invocation.
func (p *Publisher) Publish(ctx context.Context, candidate source.ContentCandidate, format, personaID, text string) Result {
	var res Result
	err := statefile.WithLock(ctx, p.gate.LockPath(), func() error {
		res = p.publishLocked(ctx, candidate, format, personaID, text)
		return nil
	})
	if err != nil {
		return Result{Status: StatusFailed, Reason: "state_lock", Err: fmt.Errorf("publish: %w", err)}
	}
	return res
}

func (p *Publisher) publishLocked(ctx context.Context, candidate source.ContentCandidate, format, personaID, text string) Result {
	now := p.now()

	// Re-read both stores: another invocation may have flushed since our
	// advisory checks.
	if err := p.gate.Reload(); err != nil {
		return Result{Status: StatusFailed, Reason: "state_corrupt", Err: err}
	}
	if err := p.ledger.Reload(); err != nil {
		return Result{Status: StatusFailed, Reason: "state_corrupt", Err: err}
	}

	decision := p.gate.MayPublish(now)
	if !decision.Allowed {
		p.logger.Info("publish_skipped", "reason", decision.Reason, "fingerprint", candidate.Fingerprint)
		return Result{Status: StatusSkipped, Reason: decision.Reason}
	}
	if p.ledger.IsDuplicate(candidate.Fingerprint, now) {
		p.logger.Info("publish_skipped", "reason", "duplicate", "fingerprint", candidate.Fingerprint)
		return Result{Status: StatusSkipped, Reason: "duplicate", Bypassed: decision.Bypassed}
	}

	if p.mode.DryRun {
		p.logger.Info("publish_dry_run",
			"fingerprint", candidate.Fingerprint,
			"format", format,
			"chars", len(text))
		return Result{Status: StatusPublished, PostID: "", DryRun: true, Bypassed: decision.Bypassed}
	}

	postID, err := p.platform.CreatePost(ctx, text)
	if err != nil {
		p.gate.RecordError(now)
		if flushErr := p.gate.Flush(); flushErr != nil {
			p.logger.Error("rate_state_flush_failed", "error", flushErr.Error())
		}
		p.logger.Error("publish_failed", "fingerprint", candidate.Fingerprint, "error", err.Error())
		return Result{Status: StatusFailed, Reason: "platform", Err: err, Bypassed: decision.Bypassed}
	}

	p.ledger.Record(ledger.PublishRecord{
		Fingerprint: candidate.Fingerprint,
		PostedAt:    now,
		Format:      format,
		PersonaID:   personaID,
		ContentHash: ContentHash(text),
		PostID:      postID,
	})
	if err := p.ledger.Flush(now); err != nil {
		// The live post exists; losing the ledger write risks a duplicate
		// next run, so surface it loudly.
		p.logger.Error("publish_ledger_flush_failed", "post_id", postID, "error", err.Error())
		return Result{Status: StatusFailed, Reason: "ledger_flush", PostID: postID, Err: err, Bypassed: decision.Bypassed}
	}
	p.gate.RecordPublish(now)
	if err := p.gate.Flush(); err != nil {
		p.logger.Error("rate_state_flush_failed", "post_id", postID, "error", err.Error())
		return Result{Status: StatusFailed, Reason: "rate_flush", PostID: postID, Err: err, Bypassed: decision.Bypassed}
	}

	p.logger.Info("publish_ok", "post_id", postID, "format", format, "fingerprint", candidate.Fingerprint)
	return Result{Status: StatusPublished, PostID: postID, Bypassed: decision.Bypassed}
}

// ContentHash is the truncated digest stored in the publish ledger.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:16]
}
