package scheduler

import (
	"time"
)

// Config controls how deferred tasks are run.
type Config struct {
	// TaskTimeout bounds a single task run.
	TaskTimeout time.Duration
	// StopOnShutdown cancels pending tasks when the application stops.
	StopOnShutdown bool
}

func DefaultConfig() Config {
	return Config{
		TaskTimeout:    30 * time.Second,
		StopOnShutdown: true,
	}
}

func ProvideConfig() Config {
	return DefaultConfig()
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.TaskTimeout <= 0 {
		c.TaskTimeout = defaults.TaskTimeout
	}
	return c
}
