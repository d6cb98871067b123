package persona

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aditya493/linkedin-devops-automation/failover"
	"github.com/aditya493/linkedin-devops-automation/llm"
)

type fixedBackend struct {
	name string
	text string
	err  error
}

func (b *fixedBackend) Name() string { return b.name }

func (b *fixedBackend) Complete(_ context.Context, _ llm.Request) (llm.Result, error) {
	if b.err != nil {
		return llm.Result{}, b.err
	}
	return llm.Result{Text: b.text}, nil
}

func testChain(text string) *failover.Chain {
	return failover.New([]llm.Client{&fixedBackend{name: "fake", text: text}}, 0, nil)
}

func TestChooseUsesAIWhenValid(t *testing.T) {
	t.Parallel()

	r := NewResolver(testChain("Platform reliability separates leaders from the rest. This matters."), Table{}, nil)
	got := r.Choose(context.Background(), "digest", "kubernetes content", "Some title")
	if got != "Platform reliability separates leaders from the rest. This matters." {
		t.Fatalf("got %q", got)
	}
}

func TestChooseRejectsFirstPersonAI(t *testing.T) {
	t.Parallel()

	table := Table{
		Topics: []TopicRule{{
			Keywords: []string{"kubernetes"},
			Persona:  "Orchestration at scale rewards the disciplined.",
		}},
		// Present but lower in the ladder than the topic match.
		Formats: map[string]string{"digest": "Format default voice."},
	}
	r := NewResolver(testChain("I think this kubernetes release is really great for everyone."), table, nil)
	got := r.Choose(context.Background(), "digest", "kubernetes content", "title")
	if !strings.HasPrefix(got, "Orchestration at scale rewards the disciplined.") {
		t.Fatalf("first-person AI line not rejected, got %q", got)
	}
}

func TestTopicTableOrderWins(t *testing.T) {
	t.Parallel()

	table := Table{Topics: []TopicRule{
		{Keywords: []string{"terraform"}, Persona: "first rule"},
		{Keywords: []string{"terraform", "kubernetes"}, Persona: "second rule"},
	}}
	r := NewResolver(nil, table, nil)
	got := r.Choose(context.Background(), "digest", "a terraform story", "title")
	if !strings.HasPrefix(got, "first rule") {
		t.Fatalf("table order not respected, got %q", got)
	}
}

func TestFormatDefaultBeforeBuiltin(t *testing.T) {
	t.Parallel()

	table := Table{Formats: map[string]string{"digest": "Operator digest voice."}}
	r := NewResolver(nil, table, nil)
	got := r.Choose(context.Background(), "digest", "no matching topic", "title")
	if !strings.HasPrefix(got, "Operator digest voice.") {
		t.Fatalf("got %q", got)
	}
}

func TestBuiltinPoolThenHardDefault(t *testing.T) {
	t.Parallel()

	r := NewResolver(nil, Table{}, nil)

	fromPool := r.Choose(context.Background(), "hot_take", "", "title")
	found := false
	for _, p := range builtinPersonas["hot_take"] {
		if fromPool == p {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a built-in hot_take persona, got %q", fromPool)
	}

	if got := r.Choose(context.Background(), "nonexistent_format", "", ""); got != DefaultPersona {
		t.Fatalf("got %q, want hard default", got)
	}
}

func TestChooseIdempotent(t *testing.T) {
	t.Parallel()

	r := NewResolver(nil, Table{}, nil)
	a := r.Choose(context.Background(), "digest", "some content", "some title")
	b := r.Choose(context.Background(), "digest", "some content", "some title")
	if a != b {
		t.Fatalf("identical inputs gave %q then %q", a, b)
	}
}

func TestChainFallbackDoesNotShortCircuitLadder(t *testing.T) {
	t.Parallel()

	// A chain whose only backend errors produces a static fallback outcome;
	// the resolver must keep walking its own ladder instead.
	chain := failover.New([]llm.Client{&fixedBackend{name: "down", err: context.DeadlineExceeded}}, 0, nil)
	table := Table{Formats: map[string]string{"digest": "Operator voice."}}
	r := NewResolver(chain, table, nil)
	got := r.Choose(context.Background(), "digest", "", "")
	if !strings.HasPrefix(got, "Operator voice.") {
		t.Fatalf("got %q", got)
	}
}

func TestLoadTable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "personas.yaml")
	doc := `topics:
  - keywords: [kubernetes, helm]
    persona: "Orchestration insight."
formats:
  digest: "Digest voice."
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write table: %v", err)
	}

	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("load table: %v", err)
	}
	if len(table.Topics) != 1 || table.Topics[0].Persona != "Orchestration insight." {
		t.Fatalf("topics = %+v", table.Topics)
	}
	if table.Formats["digest"] != "Digest voice." {
		t.Fatalf("formats = %+v", table.Formats)
	}

	if _, err := LoadTable(filepath.Join(dir, "missing.yaml")); err != nil {
		t.Fatalf("missing table should not error: %v", err)
	}
}
