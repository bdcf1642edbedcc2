package queue

import (
	"context"
	"time"
)

// Task is a unit of work executed by the pool.
type Task func(ctx context.Context) error

// PoolConfig contains the configuration for the worker pool.
type PoolConfig struct {
	Workers   int // number of workers
	QueueSize int // size of the pending task buffer
}

// PoolOption configures Pool.
type PoolOption func(*PoolConfig)

// WithWorkers sets worker count.
func WithWorkers(n int) PoolOption {
	return func(c *PoolConfig) {
		c.Workers = n
	}
}

// WithQueueSize sets the pending task buffer size.
func WithQueueSize(n int) PoolOption {
	return func(c *PoolConfig) {
		c.QueueSize = n
	}
}

// submission pairs a task with its context and completion callback.
type submission struct {
	ctx      context.Context
	fn       Task
	enqueued time.Time
	done     func(err error, elapsed time.Duration)
}
