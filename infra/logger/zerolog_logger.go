package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	defaultsMu     sync.RWMutex
	defaultLevel   = zerolog.DebugLevel
	defaultConsole bool
	// defaultFile receives a JSON copy of every log line when set.
	defaultFile io.Writer
)

// Configure sets the level and format used when LOG_LEVEL and APP_ENV are
// unset. format is "console" or "json".
func Configure(level, format string) error {
	lv, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	if lv != zerolog.NoLevel {
		defaultLevel = lv
	}
	defaultConsole = strings.EqualFold(format, "console")
	return nil
}

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a ZerologLogger using the APP_ENV environment variable
// to determine the output format. All logs include the provided component field.
func NewZerologLogger(component string) Logger {
	defaultsMu.RLock()
	console, file := defaultConsole, defaultFile
	defaultsMu.RUnlock()
	var out io.Writer = os.Stdout
	if env := strings.ToLower(os.Getenv("APP_ENV")); env == "dev" || (env == "" && console) {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	if file != nil {
		out = zerolog.MultiLevelWriter(out, file)
	}
	return NewZerologLoggerWithWriter(out, component)
}

// NewZerologLoggerWithWriter writes JSON logs to w. LOG_LEVEL (debug, info,
// warn, error) sets the minimum level; without it the level given to
// Configure applies, debug by default.
func NewZerologLoggerWithWriter(w io.Writer, component string) Logger {
	defaultsMu.RLock()
	level := defaultLevel
	defaultsMu.RUnlock()
	if lv, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL"))); err == nil && lv != zerolog.NoLevel {
		level = lv
	}
	z := zerolog.New(w).Level(level).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	l.log.Debug().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Infow(msg string, fields map[string]any) {
	l.log.Info().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
