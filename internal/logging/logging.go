// Package logging provides the component-scoped zerolog logger used across
// the sender core.
package logging

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	base   zerolog.Logger
	debug  bool
	envKey = "AS2SEND_DEBUG"
)

func initBase() {
	debug = os.Getenv(envKey) != ""
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if debug {
		base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
		return
	}
	base = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// WithComponent returns a logger tagged with the given component name,
// matching the convention used across this codebase: every package obtains
// its own named logger rather than passing around a single global one.
func WithComponent(name string) zerolog.Logger {
	once.Do(initBase)
	return base.With().Str("component", name).Logger()
}

// Debug reports whether AS2SEND_DEBUG is set.
func Debug() bool {
	once.Do(initBase)
	return debug
}
