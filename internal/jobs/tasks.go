package jobs

import (
	"time"

	"github.com/hibiken/asynq"
)

const (
	contactNotificationMaxRetry = 8
	contactNotificationTimeout  = 30 * time.Second
)

func NewContactNotificationTask(p ContactNotificationPayload) (*asynq.Task, error) {
	return newTask(p,
		asynq.MaxRetry(contactNotificationMaxRetry),
		asynq.Timeout(contactNotificationTimeout),
	)
}

func newTask[P Payload](p P, opts ...asynq.Option) (*asynq.Task, error) {
	b, err := Encode(p)
	if err != nil {
		return nil, err
	}

	opts = append([]asynq.Option{asynq.Queue(QueueDefault)}, opts...)
	return asynq.NewTask(string(p.JobType()), b, opts...), nil
}
