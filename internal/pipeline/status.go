package pipeline

import "errors"

// ErrSkipped is returned by a collector that does not apply to a URL,
// for example certificate inspection of a plain http URL. The collector's
// defaults are used and the result is marked StatusSkipped.
var ErrSkipped = errors.New("collector does not apply")

// ErrCollectorPanic wraps a panic recovered from a collector.
var ErrCollectorPanic = errors.New("collector panicked")

// PartialError marks a collector result in which some features are real
// observations and the rest fell back to defaults. The vector returned
// alongside it is kept and the result is marked StatusDegraded.
type PartialError struct {
	Err error
}

// Error implements error.
func (e *PartialError) Error() string {
	return "partial result: " + e.Err.Error()
}

// Unwrap returns the underlying failure.
func (e *PartialError) Unwrap() error {
	return e.Err
}

// Status describes how a collector's features were obtained.
type Status int

const (
	// StatusOK means the collector produced real observations.
	StatusOK Status = iota
	// StatusSkipped means the collector did not apply and emitted defaults.
	StatusSkipped
	// StatusDegraded means the collector failed or timed out and emitted defaults.
	StatusDegraded
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusSkipped:
		return "skipped"
	case StatusDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
