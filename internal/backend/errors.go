package backend

import (
	"errors"
	"fmt"
)

// Kind classifies why a backend call did not produce a usable response.
type Kind int

const (
	// KindUnexpected covers local failures: building the request, encoding
	// the payload, a success body that is not JSON.
	KindUnexpected Kind = iota
	// KindConnectionFailed means the backend could not be reached at all.
	KindConnectionFailed
	// KindUnavailable is a 502/503 from the backend, typically a cold start.
	KindUnavailable
	// KindTimeout means the deadline expired or the call was abandoned.
	KindTimeout
	// KindBackendError is any other non-2xx status.
	KindBackendError
)

func (k Kind) String() string {
	switch k {
	case KindConnectionFailed:
		return "connection_failed"
	case KindUnavailable:
		return "backend_unavailable"
	case KindTimeout:
		return "timeout"
	case KindBackendError:
		return "backend_error"
	default:
		return "unexpected"
	}
}

type Error struct {
	Kind   Kind
	Status int    // set for KindUnavailable and KindBackendError
	Body   string // response text, set alongside Status
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUnavailable:
		return fmt.Sprintf("backend is unavailable (%d)", e.Status)
	case KindBackendError:
		return fmt.Sprintf("backend responded with status %d: %s", e.Status, e.Body)
	case KindTimeout:
		return fmt.Sprintf("backend call timed out: %v", e.Err)
	case KindConnectionFailed:
		return fmt.Sprintf("backend connection failed: %v", e.Err)
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "unexpected backend failure"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Degradable reports whether the failure means "backend down or starting up",
// which callers absorb into a 503 with safe default data.
func (e *Error) Degradable() bool {
	switch e.Kind {
	case KindConnectionFailed, KindUnavailable, KindTimeout:
		return true
	default:
		return false
	}
}

// AsError extracts a *Error from err. Errors that did not come from this
// package are reported as KindUnexpected.
func AsError(err error) *Error {
	var be *Error
	if errors.As(err, &be) {
		return be
	}
	return &Error{Kind: KindUnexpected, Err: err}
}
