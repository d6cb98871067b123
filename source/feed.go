package source

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// FeedSource fetches RSS 2.0 and Atom 1.0 feeds over HTTP and maps their
// entries to candidates. Malformed or unreachable feeds are logged and
// skipped; a run proceeds with whatever the healthy feeds yielded.
type FeedSource struct {
	urls    []string
	perFeed int
	timeout time.Duration
	httpc   *http.Client
	logger  *slog.Logger
}

type FeedConfig struct {
	URLs []string
	// PerFeedLimit caps entries taken from a single feed.
	PerFeedLimit int
	Timeout      time.Duration
}

func NewFeedSource(cfg FeedConfig, logger *slog.Logger) *FeedSource {
	if cfg.PerFeedLimit <= 0 {
		cfg.PerFeedLimit = 30
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &FeedSource{
		urls:    cfg.URLs,
		perFeed: cfg.PerFeedLimit,
		timeout: cfg.Timeout,
		httpc:   &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

func (s *FeedSource) Name() string { return "rss" }

func (s *FeedSource) Fetch(ctx context.Context) ([]ContentCandidate, error) {
	var out []ContentCandidate
	for _, u := range s.urls {
		entries, err := s.fetchOne(ctx, u)
		if err != nil {
			s.logger.Warn("feed_fetch_failed", "url", u, "error", err.Error())
			continue
		}
		out = append(out, entries...)
	}
	return out, nil
}

func (s *FeedSource) fetchOne(ctx context.Context, feedURL string) ([]ContentCandidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "autopost-feed-reader/1.0")
	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}

	entries, err := parseFeed(raw)
	if err != nil {
		return nil, err
	}
	if len(entries) > s.perFeed {
		entries = entries[:s.perFeed]
	}
	name := feedHost(feedURL)
	out := make([]ContentCandidate, 0, len(entries))
	for _, e := range entries {
		out = append(out, normalize(name, e.Title, e.Link, e.Summary, e.Published, e.Tags))
	}
	return out, nil
}

func feedHost(feedURL string) string {
	s := strings.TrimPrefix(strings.TrimPrefix(feedURL, "https://"), "http://")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimPrefix(s, "www.")
}

type feedEntry struct {
	Title     string
	Link      string
	Summary   string
	Published time.Time
	Tags      []string
}

// parseFeed auto-detects RSS vs Atom from the root element.
func parseFeed(data []byte) ([]feedEntry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty feed")
	}
	switch rootElement(trimmed) {
	case "rss", "rdf":
		return parseRSS(data)
	case "feed":
		return parseAtom(data)
	default:
		return nil, fmt.Errorf("unknown feed format")
	}
}

func rootElement(data []byte) string {
	d := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := d.Token()
		if err != nil {
			return ""
		}
		if se, ok := tok.(xml.StartElement); ok {
			return strings.ToLower(se.Name.Local)
		}
	}
}

type rssRoot struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate"`
	Categories  []string `xml:"category"`
}

func parseRSS(data []byte) ([]feedEntry, error) {
	var root rssRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse rss: %w", err)
	}
	out := make([]feedEntry, 0, len(root.Channel.Items))
	for _, it := range root.Channel.Items {
		out = append(out, feedEntry{
			Title:     strings.TrimSpace(it.Title),
			Link:      strings.TrimSpace(it.Link),
			Summary:   strings.TrimSpace(it.Description),
			Published: parseFeedTime(it.PubDate),
			Tags:      it.Categories,
		})
	}
	return out, nil
}

type atomRoot struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title string `xml:"title"`
	Links []struct {
		Rel  string `xml:"rel,attr"`
		Href string `xml:"href,attr"`
	} `xml:"link"`
	Summary    string `xml:"summary"`
	Content    string `xml:"content"`
	Updated    string `xml:"updated"`
	Published  string `xml:"published"`
	Categories []struct {
		Term string `xml:"term,attr"`
	} `xml:"category"`
}

func parseAtom(data []byte) ([]feedEntry, error) {
	var root atomRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse atom: %w", err)
	}
	out := make([]feedEntry, 0, len(root.Entries))
	for _, e := range root.Entries {
		link := ""
		for _, l := range e.Links {
			if l.Rel == "" || l.Rel == "alternate" {
				link = l.Href
				break
			}
		}
		summary := e.Summary
		if summary == "" {
			summary = e.Content
		}
		published := e.Published
		if published == "" {
			published = e.Updated
		}
		tags := make([]string, 0, len(e.Categories))
		for _, c := range e.Categories {
			if c.Term != "" {
				tags = append(tags, c.Term)
			}
		}
		out = append(out, feedEntry{
			Title:     strings.TrimSpace(e.Title),
			Link:      strings.TrimSpace(link),
			Summary:   strings.TrimSpace(summary),
			Published: parseFeedTime(published),
			Tags:      tags,
		})
	}
	return out, nil
}

var feedTimeLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2006-01-02",
}

func parseFeedTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range feedTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
