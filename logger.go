package httpadapter

import (
	"fmt"
	"log"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the adapter's logging interface. Key-value pairs alternate
// keys and values, like structured loggers expect.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// SimpleLogger writes levelled lines to standard error via the stdlib log
// package. Meant for examples and tests.
type SimpleLogger struct {
	logger *log.Logger
}

// NewSimpleLogger creates a SimpleLogger.
func NewSimpleLogger() *SimpleLogger {
	return &SimpleLogger{logger: log.New(os.Stderr, "", log.LstdFlags)}
}

func (l *SimpleLogger) log(level, msg string, keysAndValues ...any) {
	line := fmt.Sprintf("[%s] %s", level, msg)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		line += fmt.Sprintf(" %v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	l.logger.Println(line)
}

// Debug logs at debug level.
func (l *SimpleLogger) Debug(msg string, keysAndValues ...any) {
	l.log("DEBUG", msg, keysAndValues...)
}

// Info logs at info level.
func (l *SimpleLogger) Info(msg string, keysAndValues ...any) {
	l.log("INFO", msg, keysAndValues...)
}

// Warn logs at warn level.
func (l *SimpleLogger) Warn(msg string, keysAndValues ...any) {
	l.log("WARN", msg, keysAndValues...)
}

// Error logs at error level.
func (l *SimpleLogger) Error(msg string, keysAndValues ...any) {
	l.log("ERROR", msg, keysAndValues...)
}

// StructuredLogger adapts a zerolog.Logger to the Logger interface.
type StructuredLogger struct {
	zl zerolog.Logger
}

// NewStructuredLogger creates a zerolog-backed logger writing JSON lines to
// standard error.
func NewStructuredLogger() *StructuredLogger {
	return &StructuredLogger{zl: zerolog.New(os.Stderr).With().Timestamp().Logger()}
}

// NewStructuredLoggerWith wraps an existing zerolog.Logger.
func NewStructuredLoggerWith(zl zerolog.Logger) *StructuredLogger {
	return &StructuredLogger{zl: zl}
}

func (l *StructuredLogger) emit(ev *zerolog.Event, msg string, keysAndValues ...any) {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		ev = ev.Interface(fmt.Sprint(keysAndValues[i]), keysAndValues[i+1])
	}
	ev.Msg(msg)
}

// Debug logs at debug level.
func (l *StructuredLogger) Debug(msg string, keysAndValues ...any) {
	l.emit(l.zl.Debug(), msg, keysAndValues...)
}

// Info logs at info level.
func (l *StructuredLogger) Info(msg string, keysAndValues ...any) {
	l.emit(l.zl.Info(), msg, keysAndValues...)
}

// Warn logs at warn level.
func (l *StructuredLogger) Warn(msg string, keysAndValues ...any) {
	l.emit(l.zl.Warn(), msg, keysAndValues...)
}

// Error logs at error level.
func (l *StructuredLogger) Error(msg string, keysAndValues ...any) {
	l.emit(l.zl.Error(), msg, keysAndValues...)
}

// DebugConfig gates the adapter's own debug output. Logging only happens
// when Enabled is true and a Logger is configured.
type DebugConfig struct {
	Enabled      bool
	LogRequests  bool
	LogResponses bool
	LogRetries   bool
	LogRateLimit bool
	LogErrors    bool
}

// DefaultDebugConfig returns a config with every category on but Enabled
// false, so a single flag flip turns on full visibility.
func DefaultDebugConfig() *DebugConfig {
	return &DebugConfig{
		LogRequests:  true,
		LogResponses: true,
		LogRetries:   true,
		LogRateLimit: true,
		LogErrors:    true,
	}
}
