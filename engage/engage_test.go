package engage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/aditya493/linkedin-devops-automation/gate"
	"github.com/aditya493/linkedin-devops-automation/internal/statefile"
	"github.com/aditya493/linkedin-devops-automation/ledger"
	"github.com/aditya493/linkedin-devops-automation/mode"
	"github.com/aditya493/linkedin-devops-automation/platform/linkedin"
)

type fakePlatform struct {
	author   string
	posts    []linkedin.Post
	comments map[string][]linkedin.Comment

	created    []string
	failOn     map[string]error
	crashAfter string // panic after successfully creating this comment's reply
}

func (f *fakePlatform) Author(_ context.Context) (string, error) { return f.author, nil }

func (f *fakePlatform) ListOwnPosts(_ context.Context, limit int) ([]linkedin.Post, error) {
	if len(f.posts) > limit {
		return f.posts[:limit], nil
	}
	return f.posts, nil
}

func (f *fakePlatform) ListComments(_ context.Context, postURN string) ([]linkedin.Comment, error) {
	return f.comments[postURN], nil
}

func (f *fakePlatform) CreateComment(_ context.Context, parentURN, _ string) (string, error) {
	if err := f.failOn[parentURN]; err != nil {
		return "", err
	}
	f.created = append(f.created, parentURN)
	if f.crashAfter == parentURN {
		panic("simulated crash after reply")
	}
	return parentURN + ":reply", nil
}

func at(h int) time.Time {
	return time.Date(2026, 3, 1, h, 0, 0, 0, time.UTC)
}

func newPlatform() *fakePlatform {
	return &fakePlatform{
		author: "urn:li:person:me",
		posts: []linkedin.Post{
			{URN: "post:1", Text: "first post"},
			{URN: "post:2", Text: "second post"},
		},
		comments: map[string][]linkedin.Comment{
			"post:1": {
				{URN: "c1", Actor: "urn:li:person:alice", Text: "great read", CreatedAt: at(10)},
				{URN: "c-own", Actor: "urn:li:person:me", Text: "thanks all", CreatedAt: at(9)},
			},
			"post:2": {
				{URN: "c2", Actor: "urn:li:person:bob", Text: "disagree", CreatedAt: at(8)},
			},
		},
		failOn: map[string]error{},
	}
}

func newLedger(t *testing.T) *ledger.ReplyLedger {
	t.Helper()
	l, err := ledger.OpenReplyLedger(filepath.Join(t.TempDir(), "reply_ledger.json"))
	if err != nil {
		t.Fatalf("open reply ledger: %v", err)
	}
	return l
}

func TestReconcileRepliesOldestFirstSkippingOwn(t *testing.T) {
	t.Parallel()

	p := newPlatform()
	l := newLedger(t)
	sum := New(p, nil, l, nil, Config{}, mode.ExecutionMode{}, nil).Reconcile(context.Background())

	if sum.Replied != 2 || sum.Failed != 0 {
		t.Fatalf("summary = %+v", sum)
	}
	// c2 (08:00) before c1 (10:00); the author's own comment untouched.
	if len(p.created) != 2 || p.created[0] != "c2" || p.created[1] != "c1" {
		t.Fatalf("created = %v", p.created)
	}
	if !l.Has("c1") || !l.Has("c2") {
		t.Fatal("replies not recorded")
	}
	if l.Has("c-own") {
		t.Fatal("own comment must never be recorded")
	}
}

func TestReconcileBudgetAcrossPosts(t *testing.T) {
	t.Parallel()

	p := newPlatform()
	l := newLedger(t)
	sum := New(p, nil, l, nil, Config{MaxReplies: 1}, mode.ExecutionMode{}, nil).Reconcile(context.Background())

	if sum.Replied != 1 || sum.Skipped != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if len(p.created) != 1 || p.created[0] != "c2" {
		t.Fatalf("created = %v, want oldest comment only", p.created)
	}
}

func TestReconcileNeverResendsAcrossRuns(t *testing.T) {
	t.Parallel()

	p := newPlatform()
	l := newLedger(t)
	New(p, nil, l, nil, Config{}, mode.ExecutionMode{}, nil).Reconcile(context.Background())

	// Second run over a reopened ledger, same comments still on the posts.
	reopened, err := ledger.OpenReplyLedger(filepath.Dir(l.LockPath()) + "/reply_ledger.json")
	if err != nil {
		t.Fatalf("reopen ledger: %v", err)
	}
	p2 := newPlatform()
	sum := New(p2, nil, reopened, nil, Config{}, mode.ExecutionMode{}, nil).Reconcile(context.Background())

	if sum.Replied != 0 {
		t.Fatalf("second run replied %d times", sum.Replied)
	}
	if len(p2.created) != 0 {
		t.Fatalf("second run created replies: %v", p2.created)
	}
}

func TestReconcilePerCommentFailureIsIsolated(t *testing.T) {
	t.Parallel()

	p := newPlatform()
	p.failOn["c2"] = errors.New("http 500")
	l := newLedger(t)
	sum := New(p, nil, l, nil, Config{}, mode.ExecutionMode{}, nil).Reconcile(context.Background())

	if sum.Failed != 1 || sum.Replied != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if l.Has("c2") {
		t.Fatal("failed reply must not be recorded")
	}
	if !l.Has("c1") {
		t.Fatal("later comment should still be replied")
	}
	if len(sum.Errors) != 1 {
		t.Fatalf("errors = %v", sum.Errors)
	}
}

func TestReconcileCrashMidRunLeavesSentRepliesMarked(t *testing.T) {
	t.Parallel()

	p := newPlatform()
	p.crashAfter = "c2" // oldest comment; crash happens after the create call
	l := newLedger(t)
	r := New(p, nil, l, nil, Config{}, mode.ExecutionMode{}, nil)

	func() {
		defer func() { recover() }()
		r.Reconcile(context.Background())
	}()

	// The crash hit after CreateComment but before the ledger write for c2;
	// that is the platform's irreducible window. What must hold: every
	// comment recorded in the ledger was actually sent, and nothing after
	// the crash point ran.
	if len(p.created) != 1 || p.created[0] != "c2" {
		t.Fatalf("created = %v", p.created)
	}

	// Next run: c1 gets its reply; c2 is the known double-send hazard the
	// flush-per-reply design minimizes to a single comment.
	reopened, err := ledger.OpenReplyLedger(filepath.Dir(l.LockPath()) + "/reply_ledger.json")
	if err != nil {
		t.Fatalf("reopen ledger: %v", err)
	}
	if reopened.Has("c1") {
		t.Fatal("c1 was never attempted; must not be marked")
	}
}

func TestReconcileDryRunTouchesNothing(t *testing.T) {
	t.Parallel()

	p := newPlatform()
	l := newLedger(t)
	sum := New(p, nil, l, nil, Config{}, mode.ExecutionMode{DryRun: true}, nil).Reconcile(context.Background())

	if sum.Replied != 2 {
		t.Fatalf("dry run should count would-be replies: %+v", sum)
	}
	if len(p.created) != 0 {
		t.Fatalf("dry run created replies: %v", p.created)
	}
	if l.Len() != 0 {
		t.Fatal("dry run mutated the reply ledger")
	}
}

func newGate(t *testing.T, state gate.RateState, cfg gate.Config) *gate.Gate {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rate_state.json")
	if err := statefile.WriteJSON(path, state); err != nil {
		t.Fatalf("seed rate state: %v", err)
	}
	g, err := gate.Open(path, cfg)
	if err != nil {
		t.Fatalf("open gate: %v", err)
	}
	return g
}

func TestReconcileKillSwitchBlocksReplies(t *testing.T) {
	t.Parallel()

	p := newPlatform()
	l := newLedger(t)
	g := newGate(t, gate.RateState{KillSwitch: true}, gate.Config{})
	sum := New(p, nil, l, g, Config{}, mode.ExecutionMode{}, nil).Reconcile(context.Background())

	if len(p.created) != 0 {
		t.Fatalf("kill switch on, yet replies were created: %v", p.created)
	}
	if sum.Gate != gate.ReasonKillSwitch {
		t.Fatalf("gate reason = %q, want %q", sum.Gate, gate.ReasonKillSwitch)
	}
	if sum.Replied != 0 || sum.Failed != 0 {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestReconcileRateLimitFailureStartsCooldown(t *testing.T) {
	t.Parallel()

	p := newPlatform()
	p.failOn["c2"] = &linkedin.Error{Op: "create_comment", Kind: linkedin.KindRateLimit, Status: 429, Msg: "slow down"}
	l := newLedger(t)
	g := newGate(t, gate.RateState{}, gate.Config{ErrorCooldown: time.Hour})
	sum := New(p, nil, l, g, Config{}, mode.ExecutionMode{}, nil).Reconcile(context.Background())

	if sum.Failed != 1 || sum.Replied != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if err := g.Reload(); err != nil {
		t.Fatalf("reload gate: %v", err)
	}
	if g.State().LastErrorAt.IsZero() {
		t.Fatal("platform rate limit did not record an error in the gate")
	}
	if d := g.MayEngage(time.Now()); d.Allowed || d.Reason != gate.ReasonCooldown {
		t.Fatalf("next run decision = %+v, want cooldown deny", d)
	}
}

func TestReconcileRemoteFailureLeavesGateUntouched(t *testing.T) {
	t.Parallel()

	p := newPlatform()
	p.failOn["c2"] = &linkedin.Error{Op: "create_comment", Kind: linkedin.KindRemote, Status: 500, Msg: "boom"}
	l := newLedger(t)
	g := newGate(t, gate.RateState{}, gate.Config{ErrorCooldown: time.Hour})
	New(p, nil, l, g, Config{}, mode.ExecutionMode{}, nil).Reconcile(context.Background())

	if err := g.Reload(); err != nil {
		t.Fatalf("reload gate: %v", err)
	}
	if !g.State().LastErrorAt.IsZero() {
		t.Fatal("remote failure must not start a cooldown")
	}
}

func TestReconcileAlreadyRepliedSparesBudget(t *testing.T) {
	t.Parallel()

	l := newLedger(t)
	path := filepath.Dir(l.LockPath()) + "/reply_ledger.json"

	// Another run already answered the oldest comment.
	other, err := ledger.OpenReplyLedger(path)
	if err != nil {
		t.Fatalf("open second handle: %v", err)
	}
	other.Record(ledger.ReplyRecord{CommentID: "c2", PostID: "post:2", Text: "done", RepliedAt: at(8)})
	if err := other.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	p := newPlatform()
	sum := New(p, nil, l, nil, Config{MaxReplies: 1}, mode.ExecutionMode{}, nil).Reconcile(context.Background())

	// c2's skip must not consume the single-reply budget; c1 still goes out.
	if len(p.created) != 1 || p.created[0] != "c1" {
		t.Fatalf("created = %v, want c1 only", p.created)
	}
	if sum.Replied != 1 || sum.Skipped != 1 || sum.Failed != 0 {
		t.Fatalf("summary = %+v", sum)
	}
}
