// Package llm defines the provider-neutral completion contract. Every remote
// backend implements Client over its own wire protocol; callers never see
// backend-specific details.
package llm

import (
	"context"
	"time"
)

// Task selects the prompt framing a backend applies. Backends may route
// different tasks to different models.
type Task string

const (
	TaskSummarize Task = "summarize"
	TaskGenerate  Task = "generate"
	TaskPersona   Task = "persona"
	TaskReply     Task = "reply"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

type Request struct {
	Task      Task
	Prompt    string
	System    string
	MaxTokens int
}

type Result struct {
	Text     string
	Usage    Usage
	Duration time.Duration
}

// Client is one remote completion backend. Implementations must honor the
// context deadline; a stalled backend is the caller's failover signal.
type Client interface {
	Name() string
	Complete(ctx context.Context, req Request) (Result, error)
}
