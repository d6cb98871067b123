// Package ledger persists the append-mostly record sets that survive across
// independent process invocations: the publish ledger (windowed duplicate
// detection) and the reply ledger (unbounded, at-most-once replies).
package ledger

import (
	"fmt"
	"time"

	"github.com/aditya493/linkedin-devops-automation/internal/statefile"
)

const publishLedgerVersion = 1

// PublishRecord is appended once per confirmed platform post.
type PublishRecord struct {
	Fingerprint string    `json:"fingerprint"`
	PostedAt    time.Time `json:"posted_at"`
	Format      string    `json:"format,omitempty"`
	PersonaID   string    `json:"persona_id,omitempty"`
	ContentHash string    `json:"content_hash,omitempty"`
	PostID      string    `json:"post_id,omitempty"`
}

type publishDocument struct {
	Version int             `json:"version"`
	Records []PublishRecord `json:"records"`
}

// PublishLedger answers duplicate checks against a rolling lookback window.
// Records outside the window never produce a duplicate hit; they are pruned
// lazily at the next flush.
type PublishLedger struct {
	path    string
	window  time.Duration
	records []PublishRecord
}

// OpenPublishLedger loads the ledger document. A missing file starts an empty
// ledger; an unreadable or undecodable file is fatal to the caller, which
// must not publish on guessed history.
func OpenPublishLedger(path string, windowDays int) (*PublishLedger, error) {
	if windowDays <= 0 {
		windowDays = 7
	}
	l := &PublishLedger{path: path, window: time.Duration(windowDays) * 24 * time.Hour}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *PublishLedger) Reload() error {
	var doc publishDocument
	if _, err := statefile.ReadJSON(l.path, &doc); err != nil {
		return fmt.Errorf("publish ledger: %w", err)
	}
	l.records = doc.Records
	return nil
}

// IsDuplicate reports whether a record with the same fingerprint exists
// inside the lookback window ending at now.
func (l *PublishLedger) IsDuplicate(fingerprint string, now time.Time) bool {
	cutoff := now.Add(-l.window)
	for _, rec := range l.records {
		if rec.Fingerprint == fingerprint && rec.PostedAt.After(cutoff) {
			return true
		}
	}
	return false
}

// Record appends a publish record in memory. The caller flushes after the
// remote side effect is confirmed, never before.
func (l *PublishLedger) Record(rec PublishRecord) {
	l.records = append(l.records, rec)
}

// Flush compacts records strictly older than the window and writes the whole
// document atomically.
func (l *PublishLedger) Flush(now time.Time) error {
	cutoff := now.Add(-l.window)
	kept := l.records[:0]
	for _, rec := range l.records {
		if rec.PostedAt.After(cutoff) {
			kept = append(kept, rec)
		}
	}
	l.records = kept
	doc := publishDocument{Version: publishLedgerVersion, Records: l.records}
	if err := statefile.WriteJSON(l.path, doc); err != nil {
		return fmt.Errorf("publish ledger: %w", err)
	}
	return nil
}

func (l *PublishLedger) Len() int { return len(l.records) }

func (l *PublishLedger) LockPath() string { return statefile.LockPath(l.path) }
