package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/geocoder89/webtwist/internal/jobs"
	"github.com/geocoder89/webtwist/internal/notifications"
	"github.com/geocoder89/webtwist/internal/observability"
	"github.com/hibiken/asynq"
)

type Config struct {
	RedisOpt    asynq.RedisClientOpt
	Concurrency int
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Worker wraps the asynq server that consumes contact notifications.
type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	notifier notifications.Notifier
	prom     *observability.Prom
	log      *slog.Logger
	redis    Pinger

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, notifier notifications.Notifier, redis Pinger, prom *observability.Prom, log *slog.Logger) *Worker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if log == nil {
		log = slog.Default()
	}

	w := &Worker{
		notifier: notifier,
		prom:     prom,
		log:      log,
		redis:    redis,
	}

	w.server = asynq.NewServer(cfg.RedisOpt, asynq.Config{
		Concurrency:    cfg.Concurrency,
		Queues:         map[string]int{jobs.QueueDefault: 1},
		RetryDelayFunc: RetryDelay,
		ErrorHandler:   asynq.ErrorHandlerFunc(w.reportError),
	})

	w.mux = asynq.NewServeMux()
	w.mux.HandleFunc(string(jobs.JobContactNotification), w.HandleContactNotification)

	return w
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	w.setReady(true)
	w.log.Info("worker started", "queue", jobs.QueueDefault)

	<-ctx.Done()

	w.setReady(false)
	w.log.Info("worker received shutdown signal")
	w.server.Shutdown()

	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}

func (w *Worker) isReady() bool {
	w.readyMu.RLock()
	defer w.readyMu.RUnlock()
	return w.ready
}

func (w *Worker) reportError(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)

	w.log.ErrorContext(ctx, "job failed",
		"job_type", task.Type(),
		"retry", retried,
		"max_retry", maxRetry,
		"err", err,
	)
}
