package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aditya493/linkedin-devops-automation/mode"
)

func TestRecordTextSurfacesBypass(t *testing.T) {
	t.Parallel()

	rec := NewRecord("post", mode.ExecutionMode{DryRun: true, BypassRateLimits: true}, time.Now())
	rec.Published = 1
	text := rec.Text()

	if !strings.Contains(text, "[dry-run]") {
		t.Errorf("mode marker missing: %q", text)
	}
	if !strings.Contains(text, "RATE LIMITS BYPASSED") {
		t.Errorf("bypass not surfaced: %q", text)
	}
	if !strings.Contains(text, "published=1") {
		t.Errorf("counts missing: %q", text)
	}
}

func TestRecordTextEngageCountsAndErrors(t *testing.T) {
	t.Parallel()

	rec := NewRecord("engage", mode.ExecutionMode{}, time.Now())
	rec.Replied = 2
	rec.AddError(errors.New("comment urn:li:comment:1: boom"))
	text := rec.Text()

	if !strings.Contains(text, "replied=2") {
		t.Errorf("reply count missing: %q", text)
	}
	if !strings.Contains(text, "error: comment urn:li:comment:1: boom") {
		t.Errorf("error line missing: %q", text)
	}
	if !strings.HasPrefix(text, "⚠️") {
		t.Errorf("error run should carry warning icon: %q", text)
	}
}

func TestWebhookSend(t *testing.T) {
	t.Parallel()

	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	rec := NewRecord("post", mode.ExecutionMode{}, time.Now())
	rec.Published = 1
	if err := NewWebhook(nil, srv.URL).Send(context.Background(), rec); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(got["text"], "published=1") {
		t.Fatalf("payload text = %q", got["text"])
	}
}

func TestWebhookRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusBadGateway)
			return
		}
	}))
	defer srv.Close()

	rec := NewRecord("post", mode.ExecutionMode{}, time.Now())
	if err := NewWebhook(nil, srv.URL).Send(context.Background(), rec); err != nil {
		t.Fatalf("send: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestWebhookClientErrorNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "no_service", http.StatusNotFound)
	}))
	defer srv.Close()

	rec := NewRecord("post", mode.ExecutionMode{}, time.Now())
	if err := NewWebhook(nil, srv.URL).Send(context.Background(), rec); err == nil {
		t.Fatal("want error")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestWebhookDisabledIsNoop(t *testing.T) {
	t.Parallel()

	rec := NewRecord("post", mode.ExecutionMode{}, time.Now())
	if err := NewWebhook(nil, "").Send(context.Background(), rec); err != nil {
		t.Fatalf("disabled webhook should be a no-op: %v", err)
	}
}
