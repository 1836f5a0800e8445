// Package log provides a small leveled logger built on the standard library's slog package.
//
// The global logger writes JSON to os.Stderr unless IMAGELINK_LOG_FORMAT=text is set.
// The format variable is read whenever the handler is rebuilt (init and SetOutput).
// The level lives in a slog.LevelVar so the CLI can change it after init, once flags
// and the config file have been read. SetOutput swaps the writer, mainly for tests.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// FormatEnvVar selects the handler: "text" or anything else for JSON.
const FormatEnvVar = "IMAGELINK_LOG_FORMAT"

var (
	mu            sync.RWMutex
	logger        *slog.Logger
	globalLeveler           = &slog.LevelVar{}
	outputWriter  io.Writer = os.Stderr
	// ErrInvalidLogLevel indicates an invalid log level string was provided.
	ErrInvalidLogLevel = fmt.Errorf("invalid log level")
)

func init() {
	globalLeveler.Set(slog.LevelInfo)
	configureLogger()
}

// configureLogger rebuilds the handler from outputWriter, the env format and the LevelVar.
func configureLogger() {
	mu.Lock()
	defer mu.Unlock()

	opts := &slog.HandlerOptions{Level: globalLeveler}
	var handler slog.Handler
	if strings.EqualFold(os.Getenv(FormatEnvVar), "text") {
		handler = slog.NewTextHandler(outputWriter, opts)
	} else {
		opts.ReplaceAttr = func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		}
		handler = slog.NewJSONHandler(outputWriter, opts)
	}
	logger = slog.New(handler)
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetOutput changes the output destination for the logger.
// It returns a function that restores the previous writer.
func SetOutput(w io.Writer) (restore func()) {
	mu.Lock()
	original := outputWriter
	outputWriter = w
	mu.Unlock()
	configureLogger()
	return func() {
		mu.Lock()
		outputWriter = original
		mu.Unlock()
		configureLogger()
	}
}

// Debug logs a debug message with optional key-value pairs
func Debug(msg string, args ...any) {
	current().Debug(msg, args...)
}

// Info logs an info message with optional key-value pairs
func Info(msg string, args ...any) {
	current().Info(msg, args...)
}

// Warn logs a warning message with optional key-value pairs
func Warn(msg string, args ...any) {
	current().Warn(msg, args...)
}

// Error logs an error message with optional key-value pairs
func Error(msg string, args ...any) {
	current().Error(msg, args...)
}

// Warnf logs a formatted warning.
func Warnf(format string, args ...any) {
	current().Warn(fmt.Sprintf(format, args...))
}

// With returns a child logger carrying the given attributes.
func With(args ...any) *slog.Logger {
	return current().With(args...)
}

// SetLevel changes the level at runtime. It accepts a Level or a slog.Level.
func SetLevel(level interface{}) {
	switch v := level.(type) {
	case slog.Level:
		globalLeveler.Set(v)
	case Level:
		globalLeveler.Set(slog.Level(v))
	default:
		panic(fmt.Sprintf("SetLevel: unsupported level type %T", level))
	}
}

// CurrentLevel returns the active level.
func CurrentLevel() Level {
	return Level(globalLeveler.Level())
}

// IsDebugEnabled reports whether debug records are emitted.
func IsDebugEnabled() bool {
	return globalLeveler.Level() <= slog.LevelDebug
}

// Level mirrors slog.Level so callers do not need to import log/slog.
type Level int8

// Log level definitions.
const (
	LevelDebug Level = Level(slog.LevelDebug)
	LevelInfo  Level = Level(slog.LevelInfo)
	LevelWarn  Level = Level(slog.LevelWarn)
	LevelError Level = Level(slog.LevelError)
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a case-insensitive level name. "WARNING" is accepted as WARN.
// On error it returns LevelInfo and an error wrapping ErrInvalidLogLevel.
func ParseLevel(levelStr string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLogLevel, levelStr)
	}
}
