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

// Package-level leveled logger used by the blog service.
// - zerolog underneath, one JSON line per entry
// - provides Debug/Info/Warn/Error/Fatal variants and Init(level)

var (
	mu     sync.RWMutex
	logger zerolog.Logger = newLogger(os.Stdout)
	level  zerolog.Level  = zerolog.InfoLevel
)

func newLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Str("service", "gogoblog").Logger()
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Call early during startup. Default level is Info.
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn", "warning":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	case "fatal":
		level = zerolog.FatalLevel
	default:
		level = zerolog.InfoLevel
	}
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w)
}

func event(l zerolog.Level) *zerolog.Event {
	mu.RLock()
	defer mu.RUnlock()
	if l < level {
		return nil
	}
	return logger.WithLevel(l)
}

func Debugf(format string, v ...interface{}) {
	if e := event(zerolog.DebugLevel); e != nil {
		e.Msgf(format, v...)
	}
}

func Infof(format string, v ...interface{}) {
	if e := event(zerolog.InfoLevel); e != nil {
		e.Msgf(format, v...)
	}
}

func Warnf(format string, v ...interface{}) {
	if e := event(zerolog.WarnLevel); e != nil {
		e.Msgf(format, v...)
	}
}

func Errorf(format string, v ...interface{}) {
	if e := event(zerolog.ErrorLevel); e != nil {
		e.Msgf(format, v...)
	}
}

func Fatalf(format string, v ...interface{}) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	l.WithLevel(zerolog.FatalLevel).Msgf(format, v...)
	os.Exit(1)
}

// Println kept for brief messages (maps to Info)
func Println(v ...interface{}) {
	if e := event(zerolog.InfoLevel); e != nil {
		e.Msg(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
	}
}

// Debug/Info/Warn/Error helpers that accept a single string
func Debug(v string) { Debugf("%s", v) }
func Info(v string)  { Infof("%s", v) }
func Warn(v string)  { Warnf("%s", v) }
func Error(v string) { Errorf("%s", v) }

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	switch level {
	case zerolog.DebugLevel:
		return "debug"
	case zerolog.WarnLevel:
		return "warn"
	case zerolog.ErrorLevel:
		return "error"
	case zerolog.FatalLevel:
		return "fatal"
	}
	return "info"
}
