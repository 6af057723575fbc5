package certificate

import (
	"context"
	"errors"
	"net"
	"syscall"
)

// ErrNoCertificate is returned when the handshake completes without a peer
// certificate.
var ErrNoCertificate = errors.New("server presented no certificate")

// FailureClass categorises why an inspection failed.
type FailureClass int

const (
	// FailureOther is any failure not covered below.
	FailureOther FailureClass = iota
	// FailureTimeout means the dial or handshake ran out of time.
	FailureTimeout
	// FailureRefused means the TCP connection was refused.
	FailureRefused
	// FailureDial means the TCP connection failed for another reason,
	// such as an unresolvable host.
	FailureDial
	// FailureHandshake means the TLS handshake or verification failed.
	FailureHandshake
	// FailureNoCertificate means no certificate was presented.
	FailureNoCertificate
)

// String returns the class name used in logs and results.
func (c FailureClass) String() string {
	switch c {
	case FailureTimeout:
		return "timeout"
	case FailureRefused:
		return "refused"
	case FailureDial:
		return "dial"
	case FailureHandshake:
		return "handshake"
	case FailureNoCertificate:
		return "no-certificate"
	default:
		return "other"
	}
}

// InspectError is returned by Inspector.Inspect.
type InspectError struct {
	Class FailureClass
	Err   error
}

// Error implements error.
func (e *InspectError) Error() string {
	return e.Class.String() + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *InspectError) Unwrap() error {
	return e.Err
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// classifyDial maps a connection error to a failure.
func classifyDial(err error) *InspectError {
	switch {
	case isTimeout(err):
		return &InspectError{Class: FailureTimeout, Err: err}
	case errors.Is(err, syscall.ECONNREFUSED):
		return &InspectError{Class: FailureRefused, Err: err}
	default:
		return &InspectError{Class: FailureDial, Err: err}
	}
}

// classifyHandshake maps a handshake error to a failure.
func classifyHandshake(err error) *InspectError {
	if isTimeout(err) {
		return &InspectError{Class: FailureTimeout, Err: err}
	}
	return &InspectError{Class: FailureHandshake, Err: err}
}
