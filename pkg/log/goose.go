package log

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// GooseLogger routes migration output into the application log.
type GooseLogger struct {
	logger zerolog.Logger
}

func NewGooseLoggerFromCtx(ctx context.Context) *GooseLogger {
	return &GooseLogger{
		logger: FromCtx(ctx).With().Str("component", "migrations").Logger(),
	}
}

func (g *GooseLogger) Fatalf(format string, v ...interface{}) {
	g.logger.Fatal().Msg(line(format, v))
}

// Printf logs at debug level, goose reports every migration on each start.
func (g *GooseLogger) Printf(format string, v ...interface{}) {
	g.logger.Debug().Msg(line(format, v))
}

// goose terminates most messages with a newline of its own
func line(format string, v []interface{}) string {
	return strings.TrimSpace(fmt.Sprintf(format, v...))
}
