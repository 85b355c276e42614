package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/webtwist/internal/jobs"
	"github.com/hibiken/asynq"
)

const (
	resultDone   = "done"
	resultRetry  = "retry"
	resultFailed = "failed"
)

func (w *Worker) HandleContactNotification(ctx context.Context, task *asynq.Task) error {
	start := time.Now()

	err := w.processContactNotification(ctx, task.Payload())

	result := resultDone
	if err != nil {
		result = resultFailed
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)
		if !errors.Is(err, asynq.SkipRetry) && retried < maxRetry {
			result = resultRetry
		}
	}
	w.prom.ObserveJob(string(jobs.JobContactNotification), result, time.Since(start))

	return err
}

func (w *Worker) processContactNotification(ctx context.Context, raw []byte) error {
	p, err := jobs.Decode[jobs.ContactNotificationPayload](raw)
	if err != nil {
		// a malformed payload will never succeed
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	if err := w.notifier.SendContactAlert(ctx, p.Alert()); err != nil {
		return fmt.Errorf("send contact alert %s: %w", p.MessageID, err)
	}

	w.log.InfoContext(ctx, "contact notification delivered", "message_id", p.MessageID, "request_id", p.RequestID)
	return nil
}
