package failover

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aditya493/linkedin-devops-automation/llm"
)

type fakeBackend struct {
	name string
	text string
	err  error
	wait time.Duration
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Complete(ctx context.Context, req llm.Request) (llm.Result, error) {
	if f.wait > 0 {
		select {
		case <-ctx.Done():
			return llm.Result{}, ctx.Err()
		case <-time.After(f.wait):
		}
	}
	if f.err != nil {
		return llm.Result{}, f.err
	}
	return llm.Result{Text: f.text}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGenerateFirstValidBackendWins(t *testing.T) {
	t.Parallel()

	chain := New([]llm.Client{
		&fakeBackend{name: "groq", err: errors.New("groq http 500: boom")},
		&fakeBackend{name: "gemini", text: "Container orchestration patterns reveal key trends."},
		&fakeBackend{name: "openrouter", text: "should never be reached"},
	}, time.Second, discardLogger())

	out := chain.Generate(context.Background(), llm.Request{Task: llm.TaskGenerate, Prompt: "k8s"})
	if out.Backend != "gemini" {
		t.Fatalf("Backend = %q, want gemini", out.Backend)
	}
	if out.Fallback {
		t.Fatalf("Fallback = true, want false")
	}
	if len(out.Attempts) != 2 {
		t.Fatalf("attempts = %d, want 2", len(out.Attempts))
	}
	if out.Attempts[0].Kind != FailureRemote {
		t.Fatalf("first attempt kind = %q, want remote", out.Attempts[0].Kind)
	}
}

func TestGenerateTotalWhenAllBackendsFail(t *testing.T) {
	t.Parallel()

	tasks := []llm.Task{llm.TaskSummarize, llm.TaskGenerate, llm.TaskPersona, llm.TaskReply}
	for _, task := range tasks {
		task := task
		t.Run(string(task), func(t *testing.T) {
			t.Parallel()
			chain := New([]llm.Client{
				&fakeBackend{name: "a", err: errors.New("a http 429: quota")},
				&fakeBackend{name: "b", text: ""},
				&fakeBackend{name: "c", err: errors.New("dial tcp: connection refused")},
			}, time.Second, discardLogger())

			out := chain.Generate(context.Background(), llm.Request{Task: task, Prompt: "anything"})
			if strings.TrimSpace(out.Text) == "" {
				t.Fatalf("Generate() returned empty text for %s", task)
			}
			if !out.Fallback {
				t.Fatalf("Fallback = false, want true")
			}
			if out.Backend != "static" {
				t.Fatalf("Backend = %q, want static", out.Backend)
			}
		})
	}
}

func TestGenerateTimeoutMovesToNextBackend(t *testing.T) {
	t.Parallel()

	chain := New([]llm.Client{
		&fakeBackend{name: "slow", wait: time.Second, text: "late"},
		&fakeBackend{name: "fast", text: "Deployment pipelines that ship code safely reveal patterns."},
	}, 30*time.Millisecond, discardLogger())

	out := chain.Generate(context.Background(), llm.Request{Task: llm.TaskGenerate, Prompt: "x"})
	if out.Backend != "fast" {
		t.Fatalf("Backend = %q, want fast", out.Backend)
	}
	if out.Attempts[0].Kind != FailureTimeout {
		t.Fatalf("first attempt kind = %q, want timeout", out.Attempts[0].Kind)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want FailureKind
	}{
		{context.DeadlineExceeded, FailureTimeout},
		{fmt.Errorf("wrap: %w", context.DeadlineExceeded), FailureTimeout},
		{errors.New("groq http 401: invalid key"), FailureAuth},
		{errors.New("gemini http 403: forbidden"), FailureAuth},
		{errors.New("openrouter http 429: rate limited"), FailureQuota},
		{errors.New("groq http 503: unavailable"), FailureRemote},
		{errors.New("dial tcp: connection refused"), FailureTransport},
	}
	for _, tc := range cases {
		if got := classify(tc.err); got != tc.want {
			t.Errorf("classify(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", defaultMaxChars+1)
	cases := []struct {
		name string
		in   string
		ok   bool
		want string
	}{
		{"plain", "Solid insight on GitOps workflows.", true, "Solid insight on GitOps workflows."},
		{"quoted", `"Solid insight."`, true, "Solid insight."},
		{"empty", "   ", false, ""},
		{"too_long", long, false, ""},
		{"error_echo", "Error: upstream returned 500", false, ""},
		{"refusal", "I'm sorry, I can't help with that.", false, ""},
		{"placeholder", "This is a placeholder response.", false, ""},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Validate(tc.in, defaultMaxChars)
			if ok != tc.ok {
				t.Fatalf("Validate(%q) ok = %v, want %v", tc.in, ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("Validate(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestStaticFallbackDeterministic(t *testing.T) {
	t.Parallel()

	a := StaticFallback(llm.TaskReply, "great post, thanks!")
	b := StaticFallback(llm.TaskReply, "great post, thanks!")
	if a != b {
		t.Fatalf("StaticFallback not deterministic: %q vs %q", a, b)
	}
}
