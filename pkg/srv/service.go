// Package srv runs long-lived components side by side and stops them in
// reverse start order.
package srv

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sandevgo/mnemo/pkg/log"
)

// ShutdownTimeout bounds the whole shutdown sequence.
var ShutdownTimeout = 10 * time.Second

// Service is a component with a blocking Start and a Shutdown that makes
// Start return.
type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// StartServices launches every service in its own goroutine. Start errors are
// logged; a service that fails does not stop the others.
func StartServices(ctx context.Context, services []Service) {
	logger := log.FromCtx(ctx)
	for _, s := range services {
		go func(s Service) {
			err := s.Start(ctx)
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Type("service", s).Msg("service stopped with error")
			}
		}(s)
	}
}

// ShutdownServices blocks until ctx is done and then shuts the services down
// in reverse order.
func ShutdownServices(ctx context.Context, services []Service) {
	<-ctx.Done()

	logger := log.FromCtx(ctx)
	logger.Info().Msg("shutting down services")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()

	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Type("service", services[i]).Msg("service shutdown failed")
		}
	}
}
