package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	defaultLogger zerolog.Logger
	once          sync.Once
	mu            sync.RWMutex
)

// Options controls how the default logger is built.
type Options struct {
	Level  string    // debug, info, warn, error
	Format string    // "console" (default) or "json"
	Output io.Writer // defaults to os.Stdout
}

// Init initializes the default logger with a console writer on os.Stdout at
// info level. It runs only once; use Configure to change the logger later.
func Init() {
	once.Do(func() {
		install(Options{})
	})
}

// Configure replaces the default logger. A later Init is a no-op.
func Configure(opts Options) {
	once.Do(func() {})
	install(opts)
}

func install(opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if !strings.EqualFold(opts.Format, "json") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.DateTime}
	}

	l := zerolog.New(out).Level(ParseLevel(opts.Level)).With().Timestamp().Logger()

	mu.Lock()
	defaultLogger = l
	mu.Unlock()
}

// ParseLevel maps a level name to a zerolog level; unknown names mean info.
func ParseLevel(value string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get returns the default logger, initializing it if needed.
func Get() *zerolog.Logger {
	Init()
	mu.RLock()
	defer mu.RUnlock()
	l := defaultLogger
	return &l
}

// Info logs an informational message with key/value pairs.
func Info(msg string, args ...any) {
	Get().Info().Fields(args).Msg(msg)
}

// Warn logs a warning message with key/value pairs.
func Warn(msg string, args ...any) {
	Get().Warn().Fields(args).Msg(msg)
}

// Error logs an error message. err may be nil.
func Error(msg string, err error, args ...any) {
	Get().Error().Err(err).Fields(args).Msg(msg)
}

// Debug logs a debug message with key/value pairs.
func Debug(msg string, args ...any) {
	Get().Debug().Fields(args).Msg(msg)
}
