package jobs

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
)

type Enqueuer interface {
	EnqueueContactNotification(ctx context.Context, p ContactNotificationPayload) error
}

// Client submits tasks to the Redis-backed queue consumed by cmd/worker.
type Client struct {
	client *asynq.Client
}

func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

func (c *Client) EnqueueContactNotification(ctx context.Context, p ContactNotificationPayload) error {
	task, err := NewContactNotificationTask(p)
	if err != nil {
		return err
	}

	if _, err := c.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue %s: %w", JobContactNotification, err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// InlineEnqueuer runs the handler in-process. Used when Redis is not configured.
type InlineEnqueuer struct {
	Handle func(ctx context.Context, p ContactNotificationPayload) error
}

func (e InlineEnqueuer) EnqueueContactNotification(ctx context.Context, p ContactNotificationPayload) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return e.Handle(ctx, p)
}
