// Package source produces content candidates for a publish run. Candidates
// are ephemeral; only their fingerprint survives into the publish ledger.
package source

import (
	"context"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/aditya493/linkedin-devops-automation/ledger"
)

// ContentCandidate is one publishable item discovered this run.
type ContentCandidate struct {
	Fingerprint string
	Title       string
	Summary     string
	Link        string
	SourceName  string
	PublishedAt time.Time
	Tags        []string
}

// Source yields candidates for one run. Implementations must not cache
// across runs; every invocation sees a fresh fetch.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]ContentCandidate, error)
}

// FilterConfig narrows fetched candidates before dedup. Keywords match
// case-insensitively against title+summary. An empty include list admits
// everything.
type FilterConfig struct {
	Include []string
	Exclude []string
	MinAge  time.Duration
	MaxAge  time.Duration
}

// Filter applies keyword and age rules. Candidates without a publish
// timestamp pass the age checks; dedup still protects against re-posting
// them.
func Filter(candidates []ContentCandidate, cfg FilterConfig, now time.Time) []ContentCandidate {
	kept := make([]ContentCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Title == "" || c.Link == "" {
			continue
		}
		haystack := strings.ToLower(c.Title + " " + c.Summary)
		if len(cfg.Include) > 0 && !containsAny(haystack, cfg.Include) {
			continue
		}
		if containsAny(haystack, cfg.Exclude) {
			continue
		}
		if !c.PublishedAt.IsZero() {
			age := now.Sub(c.PublishedAt)
			if cfg.MinAge > 0 && age < cfg.MinAge {
				continue
			}
			if cfg.MaxAge > 0 && age > cfg.MaxAge {
				continue
			}
		}
		kept = append(kept, c)
	}
	return kept
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" && strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// normalize builds a candidate from raw feed fields: HTML stripped, whitespace
// folded, fingerprint derived from the normalized title+link.
func normalize(sourceName, title, link, summary string, published time.Time, tags []string) ContentCandidate {
	title = foldSpace(StripHTML(title))
	summary = foldSpace(StripHTML(summary))
	link = strings.TrimSpace(link)
	return ContentCandidate{
		Fingerprint: ledger.Fingerprint(title, link),
		Title:       title,
		Summary:     summary,
		Link:        link,
		SourceName:  sourceName,
		PublishedAt: published,
		Tags:        tags,
	}
}

// StripHTML renders the text content of an HTML fragment, dropping tags,
// scripts and styles. Plain text passes through unchanged.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(s))
	skipDepth := 0
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(tokenizer.Text())
			}
		}
	}
}

func foldSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
