// Package compose builds the post text: format selection, hooks and CTAs,
// persona line placement, hashtag rotation and final clipping. Given the
// same seed and inputs the output is identical, which keeps dry-run and
// live runs diffable.
package compose

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/aditya493/linkedin-devops-automation/failover"
	"github.com/aditya493/linkedin-devops-automation/llm"
	"github.com/aditya493/linkedin-devops-automation/source"
)

type Format string

const (
	FormatDigest    Format = "digest"
	FormatDeepDive  Format = "deep_dive"
	FormatQuickTip  Format = "quick_tip"
	FormatCaseStudy Format = "case_study"
	FormatHotTake   Format = "hot_take"
	FormatLessons   Format = "lessons"
)

// DefaultFormats is the rotation used when the operator does not force one.
var DefaultFormats = []Format{
	FormatDigest, FormatDeepDive, FormatQuickTip,
	FormatCaseStudy, FormatHotTake, FormatLessons,
}

const DefaultMaxChars = 1300

type Config struct {
	MaxChars    int
	Hashtags    []string
	MaxHashtags int
	Formats     []Format
	// ForceFormat pins every run to one format. Empty means rotate.
	ForceFormat Format
}

type Composer struct {
	chain *failover.Chain
	cfg   Config
	rng   *rand.Rand
}

// New builds a composer. The chain supplies value lines and summary
// enhancement; seed fixes the random choices for this run.
func New(chain *failover.Chain, cfg Config, seed int64) *Composer {
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = DefaultMaxChars
	}
	if cfg.MaxHashtags <= 0 {
		cfg.MaxHashtags = 5
	}
	if len(cfg.Hashtags) == 0 {
		cfg.Hashtags = defaultHashtags
	}
	if len(cfg.Formats) == 0 {
		cfg.Formats = DefaultFormats
	}
	return &Composer{chain: chain, cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

var defaultHashtags = []string{
	"#DevOps", "#SRE", "#Kubernetes", "#CloudNative", "#PlatformEngineering",
	"#CICD", "#Observability", "#DevSecOps", "#Terraform", "#GitOps",
}

// PickFormat chooses this run's format: the forced one when set, otherwise
// a seeded pick from the configured rotation.
func (c *Composer) PickFormat() Format {
	if c.cfg.ForceFormat != "" {
		return c.cfg.ForceFormat
	}
	return c.cfg.Formats[c.rng.Intn(len(c.cfg.Formats))]
}

// Build renders the post for the given format. items must be non-empty;
// digest uses up to five items, the other formats use the first.
func (c *Composer) Build(ctx context.Context, format Format, persona string, items []source.ContentCandidate) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("compose: no candidates")
	}
	var text string
	switch format {
	case FormatDigest:
		text = c.buildDigest(ctx, persona, items)
	case FormatDeepDive:
		text = c.buildDeepDive(ctx, persona, items[0])
	case FormatQuickTip:
		text = c.buildQuickTip(persona, items[0])
	case FormatCaseStudy:
		text = c.buildCaseStudy(ctx, persona, items[0])
	case FormatHotTake:
		text = c.buildHotTake(persona, items[0])
	case FormatLessons:
		text = c.buildLessons(persona, items[0])
	default:
		return "", fmt.Errorf("compose: unknown format %q", format)
	}
	text = Clip(text, c.cfg.MaxChars, true)
	if err := Validate(text, c.cfg.MaxChars); err != nil {
		return "", err
	}
	return text, nil
}

func (c *Composer) buildDigest(ctx context.Context, persona string, items []source.ContentCandidate) string {
	if len(items) > 5 {
		items = items[:5]
	}
	var b strings.Builder
	b.WriteString(c.pick(digestHooks))
	b.WriteString("\n")
	if persona != "" {
		b.WriteString(persona)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(c.pick(sectionHeaders))
	b.WriteString("\n")
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item.Title)
		fmt.Fprintf(&b, "   → %s\n", c.valueLine(ctx, item))
		if item.Link != "" {
			fmt.Fprintf(&b, "   🔗 %s\n", item.Link)
		}
	}
	b.WriteString("\n")
	b.WriteString(c.pick(digestCTAs))
	b.WriteString("\n\n")
	b.WriteString(c.hashtags(items))
	return b.String()
}

func (c *Composer) buildDeepDive(ctx context.Context, persona string, item source.ContentCandidate) string {
	summary := item.Summary
	if c.chain != nil {
		out := c.chain.Generate(ctx, llm.Request{
			Task:      llm.TaskSummarize,
			Prompt:    item.Title + "\n\n" + item.Summary,
			MaxTokens: 150,
		})
		summary = out.Text
	}
	var b strings.Builder
	b.WriteString(c.pick(deepDiveHooks))
	b.WriteString("\n")
	if persona != "" {
		b.WriteString(persona)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n%s\n\n%s\n", item.Title, summary)
	fmt.Fprintf(&b, "\nThe part worth your attention: %s\n", c.valueLine(ctx, item))
	if item.Link != "" {
		fmt.Fprintf(&b, "\nFull story: %s\n", item.Link)
	}
	b.WriteString("\n")
	b.WriteString(c.pick(discussionCTAs))
	b.WriteString("\n\n")
	b.WriteString(c.hashtags([]source.ContentCandidate{item}))
	return b.String()
}

func (c *Composer) buildQuickTip(persona string, item source.ContentCandidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💡 Quick tip from the trenches\n")
	if persona != "" {
		b.WriteString(persona)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n%s\n", item.Title)
	if item.Summary != "" {
		fmt.Fprintf(&b, "\nIn short: %s\n", item.Summary)
	}
	if item.Link != "" {
		fmt.Fprintf(&b, "\nDetails: %s\n", item.Link)
	}
	b.WriteString("\n")
	b.WriteString(c.pick(discussionCTAs))
	b.WriteString("\n\n")
	b.WriteString(c.hashtags([]source.ContentCandidate{item}))
	return b.String()
}

func (c *Composer) buildCaseStudy(ctx context.Context, persona string, item source.ContentCandidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Worth studying: %s\n", item.Title)
	if persona != "" {
		b.WriteString(persona)
		b.WriteString("\n")
	}
	if item.Summary != "" {
		fmt.Fprintf(&b, "\nWhat happened: %s\n", item.Summary)
	}
	fmt.Fprintf(&b, "\nWhy it matters: %s\n", c.valueLine(ctx, item))
	if item.Link != "" {
		fmt.Fprintf(&b, "\nSource: %s\n", item.Link)
	}
	b.WriteString("\n")
	b.WriteString(c.pick(discussionCTAs))
	b.WriteString("\n\n")
	b.WriteString(c.hashtags([]source.ContentCandidate{item}))
	return b.String()
}

func (c *Composer) buildHotTake(persona string, item source.ContentCandidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔥 Hot take: %s\n", item.Title)
	if persona != "" {
		b.WriteString(persona)
		b.WriteString("\n")
	}
	if item.Summary != "" {
		fmt.Fprintf(&b, "\n%s\n", item.Summary)
	}
	fmt.Fprintf(&b, "\n%s\n", c.pick(hotTakeLines))
	if item.Link != "" {
		fmt.Fprintf(&b, "\nContext: %s\n", item.Link)
	}
	b.WriteString("\n")
	b.WriteString("Agree or disagree? Tell me why below.")
	b.WriteString("\n\n")
	b.WriteString(c.hashtags([]source.ContentCandidate{item}))
	return b.String()
}

func (c *Composer) buildLessons(persona string, item source.ContentCandidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🧵 Topic: %s\n", item.Title)
	if persona != "" {
		b.WriteString(persona)
		b.WriteString("\n")
	}
	b.WriteString("\nThe pattern: teams hit this before the tooling catches up.\n\n")
	lessons := c.pickN(lessonLines, 3)
	for i, l := range lessons {
		fmt.Fprintf(&b, "%d. %s\n", i+1, l)
	}
	if item.Link != "" {
		fmt.Fprintf(&b, "\nBackground: %s\n", item.Link)
	}
	b.WriteString("\n")
	b.WriteString(c.pick(discussionCTAs))
	b.WriteString("\n\n")
	b.WriteString(c.hashtags([]source.ContentCandidate{item}))
	return b.String()
}

// valueLine asks the chain for a one-line takeaway; the chain's static
// fallback keeps this total when every backend is down.
func (c *Composer) valueLine(ctx context.Context, item source.ContentCandidate) string {
	if c.chain == nil {
		return failover.StaticFallback(llm.TaskGenerate, item.Title)
	}
	out := c.chain.Generate(ctx, llm.Request{
		Task:      llm.TaskGenerate,
		Prompt:    "One-line practical takeaway for engineers, no preamble: " + item.Title + ". " + item.Summary,
		MaxTokens: 60,
	})
	return firstLine(out.Text)
}

func (c *Composer) hashtags(items []source.ContentCandidate) string {
	seen := make(map[string]bool)
	var tags []string
	for _, item := range items {
		for _, t := range item.Tags {
			tag := "#" + camelTag(t)
			if !seen[strings.ToLower(tag)] {
				seen[strings.ToLower(tag)] = true
				tags = append(tags, tag)
			}
		}
	}
	base := append([]string(nil), c.cfg.Hashtags...)
	c.rng.Shuffle(len(base), func(i, j int) { base[i], base[j] = base[j], base[i] })
	for _, t := range base {
		if !seen[strings.ToLower(t)] {
			seen[strings.ToLower(t)] = true
			tags = append(tags, t)
		}
	}
	if len(tags) > c.cfg.MaxHashtags {
		tags = tags[:c.cfg.MaxHashtags]
	}
	return strings.Join(tags, " ")
}

func camelTag(t string) string {
	var b strings.Builder
	for _, w := range strings.Fields(strings.ToLower(t)) {
		b.WriteString(strings.ToUpper(w[:1]))
		b.WriteString(w[1:])
	}
	return b.String()
}

func (c *Composer) pick(pool []string) string {
	return pool[c.rng.Intn(len(pool))]
}

func (c *Composer) pickN(pool []string, n int) []string {
	idx := c.rng.Perm(len(pool))
	if n > len(idx) {
		n = len(idx)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = pool[idx[i]]
	}
	return out
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// Clip truncates to maxChars. With preserveHashtags the trailing hashtag
// lines survive the cut and the body is trimmed instead.
func Clip(text string, maxChars int, preserveHashtags bool) string {
	if len(text) <= maxChars {
		return text
	}
	if !preserveHashtags {
		return strings.TrimRight(text[:maxChars], " \n")
	}
	var body, hashtags []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			hashtags = append(hashtags, line)
		} else {
			body = append(body, line)
		}
	}
	clipped := strings.Join(body, "\n")
	budget := maxChars
	if len(hashtags) > 0 {
		tagBlock := strings.Join(hashtags, "\n")
		budget -= len(tagBlock) + 1
	}
	if budget < 0 {
		budget = 0
	}
	if len(clipped) > budget {
		clipped = strings.TrimRight(clipped[:budget], " \n")
	}
	if len(hashtags) > 0 {
		return clipped + "\n" + strings.Join(hashtags, "\n")
	}
	return clipped
}

// Validate rejects empty, oversized, hashtag-only and repetitive content
// before it reaches the publisher.
func Validate(content string, maxChars int) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return fmt.Errorf("compose: empty content")
	}
	if len(content) > maxChars {
		return fmt.Errorf("compose: content too long: %d > %d chars", len(content), maxChars)
	}
	substantial := 0
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			substantial++
		}
	}
	if substantial < 3 {
		return fmt.Errorf("compose: too few content lines: %d", substantial)
	}
	counts := make(map[string]int)
	for _, w := range strings.Fields(strings.ToLower(trimmed)) {
		if len(w) > 3 {
			counts[w]++
			if counts[w] > 8 {
				return fmt.Errorf("compose: repetitive content: %q appears %d times", w, counts[w])
			}
		}
	}
	return nil
}
