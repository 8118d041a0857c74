package srv

import (
	"context"
	"sync"
)

// cleanupService runs a closer during shutdown, at most once.
type cleanupService struct {
	once sync.Once
	fn   func() error
	err  error
}

// NewCleanup wraps a closer so it runs during shutdown. Start is a no-op.
func NewCleanup(fn func() error) Service {
	return &cleanupService{fn: fn}
}

func (c *cleanupService) Start(context.Context) error {
	return nil
}

func (c *cleanupService) Shutdown(context.Context) error {
	c.once.Do(func() {
		if c.fn != nil {
			c.err = c.fn()
		}
	})
	return c.err
}
