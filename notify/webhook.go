package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Webhook posts run records to a Slack incoming webhook. A nil or empty
// webhook is a no-op sender so call sites stay unconditional.
type Webhook struct {
	http *http.Client
	url  string
}

func NewWebhook(httpClient *http.Client, url string) *Webhook {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Webhook{http: httpClient, url: strings.TrimSpace(url)}
}

func (w *Webhook) Enabled() bool { return w != nil && w.url != "" }

// Send delivers the record text, retrying transient failures. Notification
// failure never fails the run; callers log the returned error and move on.
func (w *Webhook) Send(ctx context.Context, rec *Record) error {
	if !w.Enabled() {
		return nil
	}
	payload, err := json.Marshal(map[string]string{"text": rec.Text()})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	const maxAttempts = 3
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := w.http.Do(req)
		if err != nil {
			lastErr = err
		} else {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
			resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return nil
			}
			lastErr = fmt.Errorf("webhook http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != 429 {
				return lastErr
			}
		}
		if attempt < maxAttempts {
			select {
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}
