package core

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	ErrEmbeddingUnavailable  = errors.New("embedding unavailable")
	ErrGenerationUnavailable = errors.New("generation unavailable")
	ErrMalformedMemory       = errors.New("malformed memory record")
	ErrDegenerateVector      = errors.New("degenerate vector")
	ErrMemoryNotFound        = errors.New("memory not found")
	ErrEmptyMessage          = errors.New("no message provided")
)

// ProviderError describes a failed call to a remote provider.
//
// Kind is one of the sentinel errors above and Transient tells whether the
// same call may succeed if repeated. Both Kind and Err match errors.Is.
type ProviderError struct {
	Op        string
	Kind      error
	Err       error
	Transient bool
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", AppName, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func NewProviderError(op string, kind, err error, transient bool) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Op: op, Kind: kind, Err: err, Transient: transient}
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Transient
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsTransientStatus classifies an HTTP status returned by a provider API.
func IsTransientStatus(code int) bool {
	return code == 408 || code == 409 || code == 429 || code >= 500
}
