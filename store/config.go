package store

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/katalvlaran/carta/core"
)

// Config configures the badger database behind a Graph.
type Config struct {
	// ID names the graph. Default: "store".
	ID core.Identity

	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in RAM; nothing survives Close.
	InMemory bool

	// SyncWrites fsyncs every commit. Slower, but no write is lost on crash.
	SyncWrites bool

	// NumVersionsToKeep is the number of versions badger retains per key.
	NumVersionsToKeep int

	// GCInterval is how often value-log garbage collection runs. Zero
	// disables the collector. Never runs for in-memory databases.
	GCInterval time.Duration

	// GCDiscardRatio is the discard ratio passed to RunValueLogGC.
	GCDiscardRatio float64

	// Logger receives badger's own log lines and store diagnostics.
	// Nil silences both.
	Logger *slog.Logger
}

// DefaultConfig returns a persistent configuration rooted at path.
func DefaultConfig(path string) Config {
	return Config{
		ID:                core.ID("store"),
		Path:              path,
		SyncWrites:        true,
		NumVersionsToKeep: 1,
		GCInterval:        5 * time.Minute,
		GCDiscardRatio:    0.5,
	}
}

// InMemoryConfig returns a configuration for tests and scratch graphs.
func InMemoryConfig() Config {
	return Config{
		ID:                core.ID("store"),
		InMemory:          true,
		NumVersionsToKeep: 1,
	}
}

func (c Config) validate() error {
	if !c.InMemory && c.Path == "" {
		return fmt.Errorf("store: path is required for a persistent database")
	}
	if c.NumVersionsToKeep < 0 {
		return fmt.Errorf("store: NumVersionsToKeep %d < 0", c.NumVersionsToKeep)
	}
	if c.GCDiscardRatio < 0 || c.GCDiscardRatio >= 1 {
		if c.GCInterval > 0 {
			return fmt.Errorf("store: GCDiscardRatio %g not in [0,1)", c.GCDiscardRatio)
		}
	}

	return nil
}

// badgerLogger routes badger's printf-style logging into slog.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Info(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...), "component", "badger")
}
