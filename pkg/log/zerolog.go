package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/datakit/pkg/errors"
)

// ZerologProvider is the default LoggerProvider.
type ZerologProvider struct {
	mu   sync.RWMutex
	base zerolog.Logger
}

// NewZerologProvider writes JSON lines to stderr.
func NewZerologProvider(level Level) *ZerologProvider {
	return NewZerologProviderWithWriter(os.Stderr, level)
}

// NewZerologProviderWithWriter writes JSON lines to w.
func NewZerologProviderWithWriter(w io.Writer, level Level) *ZerologProvider {
	base := zerolog.New(w).With().Timestamp().Logger().Level(toZerologLevel(level))
	return &ZerologProvider{base: base}
}

// NewConsoleProvider writes human-readable lines to w, used by the CLI on a terminal.
func NewConsoleProvider(w io.Writer, level Level, color bool) *ZerologProvider {
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: !color}
	base := zerolog.New(cw).With().Timestamp().Logger().Level(toZerologLevel(level))
	return &ZerologProvider{base: base}
}

// GetLogger implements LoggerProvider.
func (p *ZerologProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &zerologLogger{logger: p.base}
}

// GetLoggerWithName implements LoggerProvider.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &zerologLogger{logger: p.base.With().Str(ComponentKey, name).Logger()}
}

// SetLevel affects loggers obtained after the call.
func (p *ZerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.base = p.base.Level(toZerologLevel(level))
}

// InstallWarningHook routes errors.Warn through this provider at warn level.
func (p *ZerologProvider) InstallWarningHook() {
	errors.SetZerologWarnFunc(func(w error) {
		p.mu.RLock()
		logger := p.base
		p.mu.RUnlock()

		event := logger.Warn()
		if m, ok := w.(zerolog.LogObjectMarshaler); ok {
			event = event.EmbedObject(m)
		}
		event.Msg(w.Error())
	})
}

type zerologLogger struct {
	logger zerolog.Logger
}

func (z *zerologLogger) Debug(msg string, fields ...any) {
	z.write(z.logger.Debug(), msg, fields)
}

func (z *zerologLogger) Info(msg string, fields ...any) {
	z.write(z.logger.Info(), msg, fields)
}

func (z *zerologLogger) Warn(msg string, fields ...any) {
	z.write(z.logger.Warn(), msg, fields)
}

func (z *zerologLogger) Error(msg string, fields ...any) {
	event := z.logger.Error()
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			event = withError(event, err)
			fields = fields[1:]
		}
	}
	z.write(event, msg, fields)
}

func (z *zerologLogger) With(fields ...any) Logger {
	ctx := z.logger.With()
	for i := 0; i+1 < len(fields); i += 2 {
		ctx = ctx.Interface(fmt.Sprint(fields[i]), fields[i+1])
	}
	return &zerologLogger{logger: ctx.Logger()}
}

func (z *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return toZerologLevel(level) >= z.logger.GetLevel()
}

func (z *zerologLogger) write(event *zerolog.Event, msg string, fields []any) {
	if event == nil {
		return
	}
	for i := 0; i < len(fields); i += 2 {
		if i+1 >= len(fields) {
			event = event.Interface("!BADKEY", fields[i])
			break
		}
		key := fmt.Sprint(fields[i])
		switch v := fields[i+1].(type) {
		case error:
			event = event.AnErr(key, v)
		case zerolog.LogObjectMarshaler:
			event = event.Object(key, v)
		default:
			event = event.Interface(key, v)
		}
	}
	event.Msg(msg)
}

func withError(event *zerolog.Event, err error) *zerolog.Event {
	event = event.Err(err)
	if stack := errors.StackTrace(err); stack != "" {
		event = event.Str(StacktraceKey, stack)
	}
	var dimErr *errors.DimensionError
	var notFitted *errors.NotFittedError
	var valErr *errors.ValueError
	switch {
	case errors.As(err, &dimErr):
		event = event.Str(ErrorCodeKey, ErrorDimensionMismatch)
	case errors.As(err, &notFitted):
		event = event.Str(ErrorCodeKey, ErrorNotFitted)
	case errors.As(err, &valErr):
		event = event.Str(ErrorCodeKey, ErrorInvalidInput)
	}
	return event
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// ToLogLevel parses "debug", "info", "warn" or "error". It panics on anything
// else; configuration is validated before this is called.
func ToLogLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
}
