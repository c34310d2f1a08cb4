package logger

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// ZeroLogger wraps zerolog.Logger to implement the Logger interface.
type ZeroLogger struct {
	zlog   *zerolog.Logger
	filter *SensitiveDataFilter
}

// Ensure ZeroLogger implements the interface
var _ Logger = (*ZeroLogger)(nil)

var callerMarshalOnce sync.Once

// Options configures a ZeroLogger
type Options struct {
	// Level is a zerolog level name; unknown values fall back to info
	Level string
	// Pretty switches to human readable console output
	Pretty bool
	// Output overrides the destination (default: stdout)
	Output io.Writer
	// File, when set, sends output through a rotating log file instead of Output
	File *FileOptions
	// Filter customizes masking of sensitive fields (default: DefaultFilterConfig)
	Filter *FilterConfig
}

// New creates a new ZeroLogger instance writing to stdout.
// If pretty is true, output will be formatted for human readability.
func New(level string, pretty bool) *ZeroLogger {
	return NewWithOptions(Options{Level: level, Pretty: pretty})
}

// NewWithOptions creates a ZeroLogger from opts
func NewWithOptions(opts Options) *ZeroLogger {
	callerMarshalOnce.Do(func() {
		zerolog.CallerMarshalFunc = func(_ uintptr, file string, line int) string {
			base := filepath.Base(file)
			parent := filepath.Base(filepath.Dir(file))
			if parent != "." && parent != "" {
				return parent + "/" + base + ":" + strconv.Itoa(line)
			}
			return base + ":" + strconv.Itoa(line)
		}
	})

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.File != nil && opts.File.Path != "" {
		out = newRotatingWriter(opts.File)
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	l := zerolog.New(out).With().Timestamp().CallerWithSkipFrameCount(3).Logger()

	zLevel, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		zLevel = zerolog.InfoLevel
	}
	l = l.Level(zLevel)

	return &ZeroLogger{zlog: &l, filter: NewSensitiveDataFilter(opts.Filter)}
}

// WithContext returns a logger carrying the request ID and the active span's
// trace_id/span_id found in ctx. A zerolog logger stored in ctx takes precedence.
func (l *ZeroLogger) WithContext(ctx any) Logger {
	c, ok := ctx.(context.Context)
	if !ok || c == nil {
		return l
	}
	if zl := zerolog.Ctx(c); zl != nil && zl.GetLevel() != zerolog.Disabled {
		return &ZeroLogger{zlog: zl, filter: l.filter}
	}

	id, hasID := RequestIDFromContext(c)
	spanCtx := trace.SpanContextFromContext(c)
	if !hasID && !spanCtx.IsValid() {
		return l
	}

	zc := l.zlog.With()
	if hasID {
		zc = zc.Str(RequestIDField, id)
	}
	if spanCtx.IsValid() {
		zc = zc.Str("trace_id", spanCtx.TraceID().String()).Str("span_id", spanCtx.SpanID().String())
	}
	log := zc.Logger()
	return &ZeroLogger{zlog: &log, filter: l.filter}
}

// WithFields returns a logger with additional fields attached to all log entries.
func (l *ZeroLogger) WithFields(fields map[string]any) Logger {
	if l.filter != nil {
		fields = l.filter.FilterFields(fields)
	}
	log := l.zlog.With().Fields(fields).Logger()
	return &ZeroLogger{zlog: &log, filter: l.filter}
}
