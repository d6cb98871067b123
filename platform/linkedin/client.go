// Package linkedin wraps the small slice of the LinkedIn REST API the
// engine needs: identity lookup, UGC post creation and listing, and
// social-action comments. All failures come back as *Error with a Kind the
// caller can route on.
package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.linkedin.com"
	restliVersion  = "2.0.0"
)

type Post struct {
	URN       string
	Text      string
	CreatedAt time.Time
}

type Comment struct {
	URN       string
	Actor     string
	Text      string
	CreatedAt time.Time
}

type Config struct {
	AccessToken string
	// AuthorURN overrides identity lookup. Accepts a full URN or a bare id,
	// see NormalizeAuthorURN.
	AuthorURN string
	BaseURL   string
	Timeout   time.Duration
}

type Client struct {
	token   string
	author  string
	baseURL string
	httpc   *http.Client
}

func New(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		token:   cfg.AccessToken,
		author:  NormalizeAuthorURN(cfg.AuthorURN),
		baseURL: base,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// Identity returns the member URN of the token owner via the userinfo
// endpoint.
func (c *Client) Identity(ctx context.Context) (string, error) {
	var out struct {
		Sub string `json:"sub"`
	}
	if err := c.doJSON(ctx, "identity", http.MethodGet, "/v2/userinfo", nil, &out); err != nil {
		return "", err
	}
	if out.Sub == "" {
		return "", &Error{Op: "identity", Kind: KindRemote, Msg: "userinfo response has no sub"}
	}
	return NormalizeAuthorURN(out.Sub), nil
}

// Author resolves the acting author URN: the configured one when set,
// otherwise the token identity. The result is cached for the client's
// lifetime.
func (c *Client) Author(ctx context.Context) (string, error) {
	if c.author != "" {
		return c.author, nil
	}
	urn, err := c.Identity(ctx)
	if err != nil {
		return "", err
	}
	c.author = urn
	return urn, nil
}

// CreatePost publishes a text share and returns its URN. This is the
// irreversible action of the whole engine; callers must not retry it inside
// a run.
func (c *Client) CreatePost(ctx context.Context, text string) (string, error) {
	author, err := c.Author(ctx)
	if err != nil {
		return "", err
	}
	body := map[string]any{
		"author":         author,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]any{
			"com.linkedin.ugc.ShareContent": map[string]any{
				"shareCommentary":    map[string]any{"text": text},
				"shareMediaCategory": "NONE",
			},
		},
		"visibility": map[string]any{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/v2/ugcPosts", body)
	if err != nil {
		return "", &Error{Op: "create_post", Kind: KindTransport, Msg: err.Error(), Err: err}
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", &Error{Op: "create_post", Kind: KindTransport, Msg: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &Error{
			Op:     "create_post",
			Kind:   classifyStatus(resp.StatusCode),
			Status: resp.StatusCode,
			Msg:    snippet(raw),
		}
	}
	if id := resp.Header.Get("X-RestLi-Id"); id != "" {
		return id, nil
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &out); err == nil && out.ID != "" {
		return out.ID, nil
	}
	return "", &Error{Op: "create_post", Kind: KindRemote, Status: resp.StatusCode, Msg: "created post has no id"}
}

// ListOwnPosts returns the author's most recent shares, newest first as the
// API delivers them, up to limit.
func (c *Client) ListOwnPosts(ctx context.Context, limit int) ([]Post, error) {
	author, err := c.Author(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	path := fmt.Sprintf("/v2/ugcPosts?q=authors&authors=List(%s)&count=%d",
		url.QueryEscape(author), limit)

	var out struct {
		Elements []struct {
			ID              string `json:"id"`
			Created         struct{ Time int64 }
			SpecificContent struct {
				ShareContent struct {
					ShareCommentary struct {
						Text string `json:"text"`
					} `json:"shareCommentary"`
				} `json:"com.linkedin.ugc.ShareContent"`
			} `json:"specificContent"`
		} `json:"elements"`
	}
	if err := c.doJSON(ctx, "list_posts", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}

	posts := make([]Post, 0, len(out.Elements))
	for _, el := range out.Elements {
		if el.ID == "" {
			continue
		}
		posts = append(posts, Post{
			URN:       el.ID,
			Text:      el.SpecificContent.ShareContent.ShareCommentary.Text,
			CreatedAt: time.UnixMilli(el.Created.Time).UTC(),
		})
	}
	return posts, nil
}

// ListComments returns the comments attached to a post URN.
func (c *Client) ListComments(ctx context.Context, postURN string) ([]Comment, error) {
	path := "/v2/socialActions/" + url.PathEscape(postURN) + "/comments"

	var out struct {
		Elements []struct {
			URN     string `json:"$URN"`
			ID      json.Number
			Actor   string `json:"actor"`
			Created struct{ Time int64 }
			Message struct {
				Text string `json:"text"`
			} `json:"message"`
		} `json:"elements"`
	}
	if err := c.doJSON(ctx, "list_comments", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}

	comments := make([]Comment, 0, len(out.Elements))
	for _, el := range out.Elements {
		urn := el.URN
		if urn == "" && el.ID != "" {
			urn = "urn:li:comment:(" + postURN + "," + el.ID.String() + ")"
		}
		comments = append(comments, Comment{
			URN:       urn,
			Actor:     el.Actor,
			Text:      el.Message.Text,
			CreatedAt: time.UnixMilli(el.Created.Time).UTC(),
		})
	}
	return comments, nil
}

// CreateComment posts a reply under the given post or comment URN and
// returns the new comment's URN.
func (c *Client) CreateComment(ctx context.Context, parentURN, text string) (string, error) {
	author, err := c.Author(ctx)
	if err != nil {
		return "", err
	}
	body := map[string]any{
		"actor":   author,
		"message": map[string]any{"text": text},
	}
	path := "/v2/socialActions/" + url.PathEscape(parentURN) + "/comments"

	var out struct {
		URN string `json:"$URN"`
		ID  json.Number
	}
	if err := c.doJSON(ctx, "create_comment", http.MethodPost, path, body, &out); err != nil {
		return "", err
	}
	if out.URN != "" {
		return out.URN, nil
	}
	if out.ID != "" {
		return "urn:li:comment:(" + parentURN + "," + out.ID.String() + ")", nil
	}
	return "", &Error{Op: "create_comment", Kind: KindRemote, Msg: "created comment has no id"}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Restli-Protocol-Version", restliVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Msg: err.Error(), Err: err}
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Msg: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Op: op, Kind: classifyStatus(resp.StatusCode), Status: resp.StatusCode, Msg: snippet(raw)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Op: op, Kind: KindRemote, Status: resp.StatusCode, Msg: "undecodable response: " + err.Error(), Err: err}
	}
	return nil
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 240 {
		s = s[:240]
	}
	if s == "" {
		s = "(empty body)"
	}
	return s
}
