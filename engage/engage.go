// Package engage reconciles comments on the author's own posts against the
// reply ledger: every unanswered comment from someone else gets at most one
// reply, ever, across all runs.
package engage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/aditya493/linkedin-devops-automation/failover"
	"github.com/aditya493/linkedin-devops-automation/gate"
	"github.com/aditya493/linkedin-devops-automation/internal/statefile"
	"github.com/aditya493/linkedin-devops-automation/ledger"
	"github.com/aditya493/linkedin-devops-automation/llm"
	"github.com/aditya493/linkedin-devops-automation/mode"
	"github.com/aditya493/linkedin-devops-automation/platform/linkedin"
)

// Platform is the slice of the LinkedIn client the reconciler uses.
type Platform interface {
	Author(ctx context.Context) (string, error)
	ListOwnPosts(ctx context.Context, limit int) ([]linkedin.Post, error)
	ListComments(ctx context.Context, postURN string) ([]linkedin.Comment, error)
	CreateComment(ctx context.Context, parentURN, text string) (string, error)
}

type Summary struct {
	Replied int
	Skipped int
	Failed  int
	// Gate carries the deny reason when the whole run was refused before
	// touching the platform.
	Gate   string
	Errors []error
}

type Config struct {
	MaxReplies int
	PostLimit  int
}

type Reconciler struct {
	platform Platform
	chain    *failover.Chain
	ledger   *ledger.ReplyLedger
	gate     *gate.Gate
	cfg      Config
	mode     mode.ExecutionMode
	logger   *slog.Logger
	now      func() time.Time
}

func New(platform Platform, chain *failover.Chain, l *ledger.ReplyLedger, g *gate.Gate, cfg Config, m mode.ExecutionMode, logger *slog.Logger) *Reconciler {
	if cfg.MaxReplies <= 0 {
		cfg.MaxReplies = 10
	}
	if cfg.PostLimit <= 0 {
		cfg.PostLimit = 10
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Reconciler{
		platform: platform,
		chain:    chain,
		ledger:   l,
		gate:     g,
		cfg:      cfg,
		mode:     m,
		logger:   logger,
		now:      time.Now,
	}
}

type pendingComment struct {
	comment linkedin.Comment
	post    linkedin.Post
}

// Reconcile runs one engagement pass. The ledger is flushed after every
// confirmed reply, before the next comment is touched, so a crash mid-run
// never causes a resend. Per-comment failures are recorded and skipped.
func (r *Reconciler) Reconcile(ctx context.Context) Summary {
	var sum Summary

	// Replies are irreversible; the gate's kill switch and error cooldown
	// bind them the same as publishes.
	if r.gate != nil {
		if err := r.gate.Reload(); err != nil {
			sum.Errors = append(sum.Errors, fmt.Errorf("rate state: %w", err))
			return sum
		}
		if d := r.gate.MayEngage(r.now()); !d.Allowed {
			r.logger.Info("engage_gated", "reason", d.Reason)
			sum.Gate = d.Reason
			return sum
		}
	}

	author, err := r.platform.Author(ctx)
	if err != nil {
		sum.Errors = append(sum.Errors, fmt.Errorf("resolve author: %w", err))
		return sum
	}
	posts, err := r.platform.ListOwnPosts(ctx, r.cfg.PostLimit)
	if err != nil {
		sum.Errors = append(sum.Errors, fmt.Errorf("list posts: %w", err))
		return sum
	}

	var pending []pendingComment
	for _, post := range posts {
		comments, err := r.platform.ListComments(ctx, post.URN)
		if err != nil {
			r.logger.Warn("list_comments_failed", "post", post.URN, "error", err.Error())
			sum.Errors = append(sum.Errors, fmt.Errorf("list comments %s: %w", post.URN, err))
			continue
		}
		for _, c := range comments {
			if c.Actor == author {
				continue
			}
			if r.ledger.Has(c.URN) {
				continue
			}
			pending = append(pending, pendingComment{comment: c, post: post})
		}
	}

	// Oldest first, across all posts, so long-waiting commenters are served
	// before the reply budget runs out.
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].comment.CreatedAt.Before(pending[j].comment.CreatedAt)
	})

	for _, pc := range pending {
		if sum.Replied >= r.cfg.MaxReplies {
			break
		}
		err := r.replyOne(ctx, pc)
		switch {
		case err == nil:
			sum.Replied++
		case errors.Is(err, errAlreadyReplied):
			// A concurrent run answered it; no budget consumed, counted as
			// skipped below.
		default:
			sum.Failed++
			sum.Errors = append(sum.Errors, fmt.Errorf("comment %s: %w", pc.comment.URN, err))
			r.recordPlatformError(ctx, err)
		}
	}
	sum.Skipped = len(pending) - sum.Replied - sum.Failed
	return sum
}

// errAlreadyReplied marks a comment answered by a concurrent run. Counted
// as skipped, not failed.
var errAlreadyReplied = errors.New("already replied")

// recordPlatformError starts the gate's cooldown when the platform itself
// rate-limits or drops a reply call. Remote and auth failures are not
// cooldown-worthy; they do not resolve by waiting.
func (r *Reconciler) recordPlatformError(ctx context.Context, cause error) {
	if r.gate == nil {
		return
	}
	var perr *linkedin.Error
	if !errors.As(cause, &perr) {
		return
	}
	if perr.Kind != linkedin.KindRateLimit && perr.Kind != linkedin.KindTransport {
		return
	}
	err := statefile.WithLock(ctx, r.gate.LockPath(), func() error {
		if err := r.gate.Reload(); err != nil {
			return err
		}
		r.gate.RecordError(r.now())
		return r.gate.Flush()
	})
	if err != nil {
		r.logger.Error("rate_state_flush_failed", "error", err.Error())
	}
}

func (r *Reconciler) replyOne(ctx context.Context, pc pendingComment) error {
	text := r.generateReply(ctx, pc)

	if r.mode.DryRun {
		r.logger.Info("reply_dry_run", "comment", pc.comment.URN, "chars", len(text))
		return nil
	}

	// Lock, reload and flush per reply: a concurrent run may have answered
	// this comment, and a crash after CreateComment must not lose the record.
	err := statefile.WithLock(ctx, r.ledger.LockPath(), func() error {
		if err := r.ledger.Reload(); err != nil {
			return err
		}
		if r.ledger.Has(pc.comment.URN) {
			return errAlreadyReplied
		}
		if _, err := r.platform.CreateComment(ctx, pc.comment.URN, text); err != nil {
			return err
		}
		r.ledger.Record(ledger.ReplyRecord{
			CommentID: pc.comment.URN,
			PostID:    pc.post.URN,
			Text:      text,
			RepliedAt: r.now(),
		})
		return r.ledger.Flush()
	})
	if errors.Is(err, errAlreadyReplied) {
		r.logger.Info("reply_skipped", "comment", pc.comment.URN, "reason", "already_replied")
		return err
	}
	if err != nil {
		return err
	}
	r.logger.Info("reply_ok", "comment", pc.comment.URN, "post", pc.post.URN)
	return nil
}

func (r *Reconciler) generateReply(ctx context.Context, pc pendingComment) string {
	if r.chain == nil {
		return failover.StaticFallback(llm.TaskReply, pc.comment.Text)
	}
	prompt := fmt.Sprintf(
		"Write a short, warm, professional reply to this comment on a post.\nPost: %s\nComment: %s\nReply in one or two sentences, no hashtags.",
		clip(pc.post.Text, 400), clip(pc.comment.Text, 400))
	out := r.chain.Generate(ctx, llm.Request{Task: llm.TaskReply, Prompt: prompt, MaxTokens: 80})
	return out.Text
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
