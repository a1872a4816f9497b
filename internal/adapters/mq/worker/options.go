package worker

import (
	"time"

	"github.com/topcoder-platform/playoff-processor/pkg/logger"
)

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithRetryPause sets how long to wait after a failed fetch.
func WithRetryPause(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.retryPause = d
		}
	}
}
