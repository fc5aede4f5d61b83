// Package logger holds the process-wide zerolog logger.
//
// Call Init once from main. Packages that are handed no logger use Get, and
// long-lived components take a Component child so entries carry their origin.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options configures Init.
type Options struct {
	// Level is a zerolog level name; "warning" is accepted for warn.
	// Empty or unknown names mean info.
	Level string
	// Pretty switches from JSON lines to zerolog's console writer and adds
	// caller information. Meant for ENV=development.
	Pretty bool
	// Service is stamped on every entry when set.
	Service string
	// Output defaults to os.Stdout.
	Output io.Writer
}

var (
	mu    sync.RWMutex
	once  sync.Once
	root  zerolog.Logger
	ready bool
)

// Init builds the root logger. Calls after the first return the existing
// logger unchanged.
func Init(opts Options) zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		level := parseLevel(opts.Level)
		zerolog.SetGlobalLevel(level)

		builder := zerolog.New(writer(opts)).Level(level).With().Timestamp()
		if opts.Service != "" {
			builder = builder.Str("service", opts.Service)
		}
		if opts.Pretty {
			builder = builder.Caller()
		}

		mu.Lock()
		root, ready = builder.Logger(), true
		mu.Unlock()
	})
	return Get()
}

func writer(opts Options) io.Writer {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if !opts.Pretty {
		return out
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
}

// Get returns the root logger. It panics before Init.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if !ready {
		panic("logger: Get() called before Init()")
	}
	return root
}

// Component returns a child of the root logger with a "component" field.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset forgets the root logger so tests can Init again.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	once = sync.Once{}
	root, ready = zerolog.Logger{}, false
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		return zerolog.WarnLevel
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
