// Package apierr turns SDK errors from the embedding and completion
// providers into core.ProviderError values.
package apierr

import (
	"context"
	"errors"
	"net"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/sandevgo/mnemo/internal/core"
	openai "github.com/sashabaranov/go-openai"
)

// Wrap classifies err and returns it as a *core.ProviderError of the given
// kind. A nil err stays nil.
func Wrap(op string, kind, err error) error {
	if err == nil {
		return nil
	}
	return core.NewProviderError(op, kind, err, transient(err))
}

func transient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	if code, ok := StatusCode(err); ok {
		return core.IsTransientStatus(code)
	}

	// anything below HTTP: refused connections, resets, DNS hiccups
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// StatusCode extracts the HTTP status carried by an SDK error.
func StatusCode(err error) (int, bool) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return apiErr.HTTPStatusCode, true
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return reqErr.HTTPStatusCode, true
	}

	var antErr *anthropic.Error
	if errors.As(err, &antErr) && antErr.StatusCode != 0 {
		return antErr.StatusCode, true
	}

	return 0, false
}
