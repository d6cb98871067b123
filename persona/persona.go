// Package persona selects the voice line placed near the top of every post.
// Resolution walks an ordered fallback ladder and is deterministic for
// identical inputs, so live and dry runs produce the same line.
package persona

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"log/slog"
	"strings"

	"github.com/aditya493/linkedin-devops-automation/failover"
	"github.com/aditya493/linkedin-devops-automation/llm"
)

// DefaultPersona is the final rung of the ladder.
const DefaultPersona = "Engineering leaders turn infrastructure noise into signal. Here's what matters."

type Resolver struct {
	chain  *failover.Chain
	table  Table
	logger *slog.Logger
}

func NewResolver(chain *failover.Chain, table Table, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{chain: chain, table: table, logger: logger}
}

// Choose resolves the persona line for a post. The ladder: AI-authored line,
// operator topic table, operator format default, built-in format pool, hard
// default. Each rung runs only when the previous one yielded nothing usable.
func (r *Resolver) Choose(ctx context.Context, format, content, title string) string {
	if line, ok := r.aiPersona(ctx, format, content, title); ok {
		r.logger.Debug("persona_resolved", "step", "ai")
		return line
	}
	if line, ok := r.topicPersona(content, title); ok {
		r.logger.Debug("persona_resolved", "step", "topic_table")
		return line
	}
	if line, ok := r.formatPersona(format, title); ok {
		r.logger.Debug("persona_resolved", "step", "format_default")
		return line
	}
	if line, ok := builtinPersona(format, title); ok {
		r.logger.Debug("persona_resolved", "step", "builtin")
		return line
	}
	r.logger.Debug("persona_resolved", "step", "default")
	return DefaultPersona
}

func (r *Resolver) aiPersona(ctx context.Context, format, content, title string) (string, bool) {
	if r.chain == nil {
		return "", false
	}
	out := r.chain.Generate(ctx, llm.Request{
		Task:      llm.TaskPersona,
		Prompt:    personaPrompt(format, content, title),
		MaxTokens: 60,
	})
	// The chain's static fallback is not AI-authored; let the ladder's own
	// fallbacks take over instead.
	if out.Fallback {
		return "", false
	}
	return acceptPersona(out.Text)
}

// acceptPersona applies the persona-specific validation on top of the
// chain's generic one: third-person voice only, sensible length.
func acceptPersona(raw string) (string, bool) {
	line := strings.Trim(strings.TrimSpace(raw), `"'`)
	if len(line) < 15 || len(line) > 200 {
		return "", false
	}
	lower := strings.ToLower(line)
	for _, p := range []string{"i ", "i'", "we ", "my ", "our ", "me "} {
		if strings.HasPrefix(lower, p) {
			return "", false
		}
	}
	return line, true
}

func personaPrompt(format, content, title string) string {
	var b strings.Builder
	b.WriteString("Write one intro line for an infrastructure expert sharing content professionally.\n")
	if title != "" {
		fmt.Fprintf(&b, "Article title: %s\n", title)
	}
	if content != "" {
		snippet := content
		if len(snippet) > 300 {
			snippet = snippet[:300]
		}
		fmt.Fprintf(&b, "Content snippet: %s\n", snippet)
	}
	if format != "" {
		fmt.Fprintf(&b, "Post format: %s\n", format)
	}
	b.WriteString("Rules: third person only, no first-person pronouns, 10-20 words, authoritative tone. Return only the line.")
	return b.String()
}

func (r *Resolver) topicPersona(content, title string) (string, bool) {
	haystack := strings.ToLower(title + " " + content)
	for _, rule := range r.table.Topics {
		for _, kw := range rule.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" && strings.Contains(haystack, kw) {
				return rule.Persona + pickEnding(title+kw), true
			}
		}
	}
	return "", false
}

func (r *Resolver) formatPersona(format, title string) (string, bool) {
	line, ok := r.table.Formats[format]
	if !ok || strings.TrimSpace(line) == "" {
		return "", false
	}
	return line + pickEnding(title+format), true
}

func builtinPersona(format, title string) (string, bool) {
	pool, ok := builtinPersonas[format]
	if !ok || len(pool) == 0 {
		return "", false
	}
	return pool[pickIndex(format+"\x00"+title, len(pool))], true
}

var endings = []string{
	" Here's the signal.",
	" This matters.",
	" Worth understanding.",
	" Let's break this down.",
	" Here's what stands out.",
}

func pickEnding(seed string) string {
	return endings[pickIndex(seed, len(endings))]
}

func pickIndex(seed string, n int) int {
	h := fnv.New32a()
	h.Write([]byte(seed))
	return int(h.Sum32() % uint32(n))
}
