package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ArenaPull/pkg/logger"
)

// Pool is a bounded in-process worker pool. Tasks are submitted through
// batches so a caller can fan out work and join on completion.
type Pool struct {
	logger    *logger.Logger
	config    *PoolConfig
	tasks     chan submission
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewPool creates a new worker pool.
func NewPool(lgr *logger.Logger, opts ...PoolOption) *Pool {
	cfg := &PoolConfig{
		Workers:   4,
		QueueSize: 64,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = cfg.Workers
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		logger: lgr,
		config: cfg,
		tasks:  make(chan submission, cfg.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start starts the pool workers.
func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isRunning {
		return fmt.Errorf("pool already running")
	}
	p.isRunning = true

	for i := 0; i < p.config.Workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.logger.Info("worker pool started",
		logger.Int("workers", p.config.Workers),
		logger.Int("queue_size", p.config.QueueSize))
	return nil
}

// Stop stops accepting tasks and waits for in-flight work to finish.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return nil
	}
	p.isRunning = false
	p.cancel()
	close(p.tasks)
	p.mu.Unlock()

	doneCh := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(doneCh)
	}()

	select {
	case <-ctx.Done():
		p.logger.Warn("timeout waiting for pool workers", logger.Error(ctx.Err()))
		return fmt.Errorf("timeout: %w", ctx.Err())
	case <-doneCh:
		p.logger.Info("worker pool stopped gracefully")
		return nil
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for sub := range p.tasks {
		select {
		case <-sub.ctx.Done():
			sub.done(sub.ctx.Err(), time.Since(sub.enqueued))
			continue
		default:
		}

		start := time.Now()
		err := sub.fn(sub.ctx)
		elapsed := time.Since(start)
		if err != nil {
			p.logger.Debug("pool task failed",
				logger.Int("worker_id", id),
				logger.Duration("elapsed", elapsed),
				logger.Error(err))
		}
		sub.done(err, elapsed)
	}
}

func (p *Pool) submit(sub submission) error {
	p.mu.Lock()
	running := p.isRunning
	p.mu.Unlock()
	if !running {
		return fmt.Errorf("pool not running")
	}

	select {
	case p.tasks <- sub:
		return nil
	case <-sub.ctx.Done():
		return sub.ctx.Err()
	case <-p.ctx.Done():
		return fmt.Errorf("pool stopped")
	}
}

// Batch groups submissions so the caller can join on their completion.
type Batch struct {
	pool *Pool
	wg   sync.WaitGroup
}

// NewBatch creates an empty batch bound to the pool.
func (p *Pool) NewBatch() *Batch {
	return &Batch{pool: p}
}

// Submit enqueues a task into the pool as part of this batch. The callback
// runs on a worker goroutine when the task completes; it may be nil.
func (b *Batch) Submit(ctx context.Context, fn Task, done func(error)) error {
	b.wg.Add(1)
	err := b.pool.submit(submission{
		ctx:      ctx,
		fn:       fn,
		enqueued: time.Now(),
		done: func(err error, _ time.Duration) {
			if done != nil {
				done(err)
			}
			b.wg.Done()
		},
	})
	if err != nil {
		b.wg.Done()
		return err
	}
	return nil
}

// Wait blocks until every submitted task in the batch has completed.
func (b *Batch) Wait() {
	b.wg.Wait()
}
