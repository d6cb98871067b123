package ledger

import (
	"fmt"
	"time"

	"github.com/aditya493/linkedin-devops-automation/internal/statefile"
)

const replyLedgerVersion = 1

// ReplyRecord is appended once per confirmed reply. Retention is unbounded:
// a reply must never repeat, no matter how long ago it was sent.
type ReplyRecord struct {
	CommentID string    `json:"comment_id"`
	PostID    string    `json:"post_id"`
	Text      string    `json:"text,omitempty"`
	RepliedAt time.Time `json:"replied_at"`
}

type replyDocument struct {
	Version int           `json:"version"`
	Records []ReplyRecord `json:"records"`
}

type ReplyLedger struct {
	path    string
	records []ReplyRecord
	byID    map[string]struct{}
}

func OpenReplyLedger(path string) (*ReplyLedger, error) {
	l := &ReplyLedger{path: path}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *ReplyLedger) Reload() error {
	var doc replyDocument
	if _, err := statefile.ReadJSON(l.path, &doc); err != nil {
		return fmt.Errorf("reply ledger: %w", err)
	}
	l.records = doc.Records
	l.byID = make(map[string]struct{}, len(doc.Records))
	for _, rec := range doc.Records {
		l.byID[rec.CommentID] = struct{}{}
	}
	return nil
}

// Has reports whether a reply for the comment id was ever recorded.
func (l *ReplyLedger) Has(commentID string) bool {
	_, ok := l.byID[commentID]
	return ok
}

func (l *ReplyLedger) Record(rec ReplyRecord) {
	if l.byID == nil {
		l.byID = map[string]struct{}{}
	}
	if _, ok := l.byID[rec.CommentID]; ok {
		return
	}
	l.records = append(l.records, rec)
	l.byID[rec.CommentID] = struct{}{}
}

// Flush writes the whole document atomically. Callers flush after every
// single reply so a crash mid-run leaves already-sent replies marked.
func (l *ReplyLedger) Flush() error {
	doc := replyDocument{Version: replyLedgerVersion, Records: l.records}
	if err := statefile.WriteJSON(l.path, doc); err != nil {
		return fmt.Errorf("reply ledger: %w", err)
	}
	return nil
}

func (l *ReplyLedger) Len() int { return len(l.records) }

func (l *ReplyLedger) LockPath() string { return statefile.LockPath(l.path) }
