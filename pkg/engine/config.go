package engine

import (
	"runtime"
	"time"
)

// Config controls one ListActions call. It is always passed explicitly.
type Config struct {
	// Disabled maps provider ids to true to skip them.
	Disabled map[string]bool
	// Parallelism bounds concurrently running providers; zero or less
	// means unbounded.
	Parallelism int
	// ProviderTimeout bounds each provider; zero means no bound beyond the
	// request context.
	ProviderTimeout time.Duration
}

// DefaultConfig enables every provider and runs up to GOMAXPROCS of them at
// once.
func DefaultConfig() Config {
	return Config{Parallelism: runtime.GOMAXPROCS(0)}
}

// IsEnabled reports whether the provider id is enabled.
func (cfg Config) IsEnabled(id string) bool {
	return !cfg.Disabled[id]
}

// Without returns a copy of cfg with the ids additionally disabled.
func (cfg Config) Without(ids ...string) Config {
	disabled := make(map[string]bool, len(cfg.Disabled)+len(ids))
	for id, off := range cfg.Disabled {
		disabled[id] = off
	}

	for _, id := range ids {
		disabled[id] = true
	}

	cfg.Disabled = disabled

	return cfg
}
