package linkedin

import "fmt"

// ErrorKind classifies platform failures so callers can decide between
// cooldown, credential alerts and plain retry-next-run.
type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindAuth      ErrorKind = "auth"
	KindRateLimit ErrorKind = "rate_limit"
	KindRemote    ErrorKind = "remote"
)

// Error is returned by every failed platform call. Op names the API action,
// Status carries the HTTP status when one was received.
type Error struct {
	Op     string
	Kind   ErrorKind
	Status int
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("linkedin %s: %s (http %d): %s", e.Op, e.Kind, e.Status, e.Msg)
	}
	return fmt.Sprintf("linkedin %s: %s: %s", e.Op, e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func classifyStatus(status int) ErrorKind {
	switch {
	case status == 401 || status == 403:
		return KindAuth
	case status == 429:
		return KindRateLimit
	default:
		return KindRemote
	}
}
