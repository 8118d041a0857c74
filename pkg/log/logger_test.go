package log

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWithComponent(t *testing.T) {
	out := &syncBuffer{}
	ctx, cleanup := newContextWithWriter(context.Background(), out, false)

	FromCtx(WithComponent(ctx, "recall")).Info().Msg("scored")
	FromCtx(ctx).Debug().Msg("hidden")
	defer cleanup()

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "scored")
	}, time.Second, 10*time.Millisecond)
	assert.Contains(t, out.String(), "component")
	assert.Contains(t, out.String(), "recall")
	assert.NotContains(t, out.String(), "hidden")
}

func TestGooseLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).Level(zerolog.DebugLevel).WithContext(context.Background())

	NewGooseLoggerFromCtx(ctx).Printf("OK   %s (%s)\n", "00001_init.sql", "1.2ms")

	out := buf.String()
	assert.Contains(t, out, `"level":"debug"`)
	assert.Contains(t, out, `"component":"migrations"`)
	assert.Contains(t, out, `"message":"OK   00001_init.sql (1.2ms)"`)
}
