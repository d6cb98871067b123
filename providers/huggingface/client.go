// Package huggingface implements llm.Client against the Hugging Face
// inference API. Kept for operators with legacy HF tokens; response shape
// differs per model family so parsing is tolerant.
package huggingface

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
	defaultBaseURL = "https://api-inference.huggingface.co"
	defaultModel   = "facebook/bart-large-cnn"
)

type Client struct {
	BaseURL string
	APIKey  string
	Model   string
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
		HTTP:    &http.Client{},
	}
}

func (c *Client) Name() string { return "huggingface" }

type inferenceRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type inferenceOutput struct {
	SummaryText   string `json:"summary_text"`
	GeneratedText string `json:"generated_text"`
	Text          string `json:"text"`
}

func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Result, error) {
	start := time.Now()

	prompt := req.Prompt
	if len(prompt) > 1024 {
		prompt = prompt[:1024]
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 150
	}

	var params map[string]any
	if req.Task == llm.TaskSummarize {
		params = map[string]any{
			"max_length": maxTokens,
			"min_length": 30,
			"do_sample":  false,
		}
	} else {
		params = map[string]any{
			"max_new_tokens":   maxTokens,
			"do_sample":        false,
			"return_full_text": false,
		}
	}

	b, err := json.Marshal(inferenceRequest{Inputs: prompt, Parameters: params})
	if err != nil {
		return llm.Result{}, err
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/models/" + c.Model
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return llm.Result{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return llm.Result{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return llm.Result{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return llm.Result{}, fmt.Errorf("huggingface http %d: %s", resp.StatusCode, string(raw))
	}

	var outs []inferenceOutput
	if err := json.Unmarshal(raw, &outs); err != nil {
		return llm.Result{}, fmt.Errorf("huggingface: decode response: %w", err)
	}
	if len(outs) == 0 {
		return llm.Result{}, fmt.Errorf("huggingface: empty response")
	}

	text := outs[0].SummaryText
	if text == "" {
		text = outs[0].GeneratedText
	}
	if text == "" {
		text = outs[0].Text
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return llm.Result{}, fmt.Errorf("huggingface: no text in response")
	}

	return llm.Result{Text: text, Duration: time.Since(start)}, nil
}
