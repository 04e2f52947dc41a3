package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ocx/syncx/internal/blobstore"
	"github.com/ocx/syncx/internal/cache"
	"github.com/ocx/syncx/internal/deadletter"
	"github.com/ocx/syncx/internal/events"
	"github.com/ocx/syncx/internal/metrics"
	"github.com/ocx/syncx/internal/queue"
)

// Config bounds the worker pool's concurrency and retry behavior
// (§9 worker-concurrency-cap and worker-retry resolutions).
type Config struct {
	MaxInflight    int
	RetryAttempts  int
	RetryBaseDelay time.Duration
}

// Pool is the worker loop: a single blocking-consumer task that spawns a
// bounded number of concurrent job runs (§5 "Scheduling").
type Pool struct {
	cfg   Config
	queue queue.Queue
	blobs blobstore.BlobStore
	cache cache.Cache
	dlq   deadletter.DeadLetter
	emit  events.Emitter
	mx    *metrics.Metrics
	log   *slog.Logger

	sem chan struct{}
	wg  sync.WaitGroup
}

func New(cfg Config, q queue.Queue, blobs blobstore.BlobStore, ch cache.Cache, dlq deadletter.DeadLetter, emit events.Emitter, mx *metrics.Metrics) *Pool {
	if cfg.MaxInflight <= 0 {
		cfg.MaxInflight = 8
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = 500 * time.Millisecond
	}
	return &Pool{
		cfg:   cfg,
		queue: q,
		blobs: blobs,
		cache: ch,
		dlq:   dlq,
		emit:  emit,
		mx:    mx,
		log:   slog.With("component", "worker"),
		sem:   make(chan struct{}, cfg.MaxInflight),
	}
}

// Run blocks, dequeuing jobs and spawning a bounded-concurrency task per
// job, until ctx is canceled.
func (p *Pool) Run(ctx context.Context) {
	for {
		id, err := p.queue.BlockingPop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.wg.Wait()
				return
			}
			p.log.Error("dequeue failed", "err", err)
			continue
		}

		select {
		case p.sem <- struct{}{}:
		case <-ctx.Done():
			p.wg.Wait()
			return
		}

		p.wg.Add(1)
		go func(jobID string) {
			defer p.wg.Done()
			defer func() { <-p.sem }()
			p.processWithRetry(ctx, jobID)
		}(id)
	}
}

// processWithRetry runs the job's state machine up to cfg.RetryAttempts
// times in all, with exponential backoff between runs, before
// dead-lettering (§9 worker-retry resolution).
func (p *Pool) processWithRetry(ctx context.Context, id string) {
	start := time.Now()
	delay := p.cfg.RetryBaseDelay

	var lastErr error
	var lastState State
	for attempt := 1; attempt <= p.cfg.RetryAttempts; attempt++ {
		_, state, err := RunJob(ctx, id, p.blobs, p.cache)
		if err == nil {
			p.mx.WorkerJobsTotal.WithLabelValues("done").Inc()
			p.mx.WorkerJobDuration.Observe(time.Since(start).Seconds())
			p.emit.Emit(events.TypeWorkerDone, id, map[string]interface{}{"attempts": attempt})
			p.log.Info("job done", "job_id", id, "attempt", attempt)
			return
		}

		lastErr, lastState = err, state
		p.log.Warn("job step failed", "job_id", id, "state", state, "attempt", attempt, "err", err)
		if attempt < p.cfg.RetryAttempts {
			p.mx.WorkerRetries.Inc()
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}
			delay *= 2
		}
	}

	p.mx.WorkerJobsTotal.WithLabelValues("dead_lettered").Inc()
	p.mx.WorkerDeadLettered.Inc()
	reason := lastState.String() + ": " + lastErr.Error()
	if err := p.dlq.Send(ctx, id, reason); err != nil {
		p.log.Error("dead-letter enqueue failed", "job_id", id, "err", err)
	}
	p.emit.Emit(events.TypeWorkerFailed, id, map[string]interface{}{"state": string(lastState), "reason": lastErr.Error()})
}

func (s State) String() string { return string(s) }
