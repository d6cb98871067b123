// Package openrouter implements llm.Client against the OpenRouter
// OpenAI-compatible chat completions endpoint.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aditya493/linkedin-devops-automation/llm"
)

const (
	defaultBaseURL = "https://openrouter.ai/api"
	defaultModel   = "meta-llama/llama-3.1-8b-instruct:free"
)

type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	// Referer is required by OpenRouter's usage policy.
	Referer string
	Title   string
	HTTP    *http.Client
}

func New(apiKey, model string) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{
		BaseURL: defaultBaseURL,
		APIKey:  apiKey,
		Model:   model,
		Referer: "https://github.com/aditya493/linkedin-devops-automation",
		Title:   "LinkedIn DevOps Automation",
		HTTP:    &http.Client{},
	}
}

func (c *Client) Name() string { return "openrouter" }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Result, error) {
	start := time.Now()

	system := req.System
	if system == "" {
		switch req.Task {
		case llm.TaskSummarize:
			system = "You are a technical content summarizer for DevOps professionals. Be concise and clear."
		default:
			system = "You are a DevOps expert explaining technical concepts clearly."
		}
	}
	prompt := req.Prompt
	if len(prompt) > 1500 {
		prompt = prompt[:1500]
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 || maxTokens > 800 {
		maxTokens = 200
	}

	body := chatRequest{
		Model: c.Model,
		Messages: []llm.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.3,
	}

	b, err := json.Marshal(body)
	if err != nil {
		return llm.Result{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.BaseURL, "/")+"/v1/chat/completions", bytes.NewReader(b))
	if err != nil {
		return llm.Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	httpReq.Header.Set("HTTP-Referer", c.Referer)
	httpReq.Header.Set("X-Title", c.Title)

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return llm.Result{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return llm.Result{}, err
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return llm.Result{}, fmt.Errorf("openrouter: decode response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if out.Error != nil && out.Error.Message != "" {
			return llm.Result{}, fmt.Errorf("openrouter http %d: %s", resp.StatusCode, out.Error.Message)
		}
		return llm.Result{}, fmt.Errorf("openrouter http %d: %s", resp.StatusCode, string(raw))
	}
	if len(out.Choices) == 0 {
		return llm.Result{}, fmt.Errorf("openrouter: empty choices")
	}

	return llm.Result{
		Text:     strings.TrimSpace(out.Choices[0].Message.Content),
		Duration: time.Since(start),
	}, nil
}
