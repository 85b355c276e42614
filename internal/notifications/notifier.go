package notifications

import (
	"context"
	"time"
)

type ContactAlert struct {
	MessageID   string
	Name        string
	Email       string
	Message     string
	SubmittedAt time.Time
}

type Notifier interface {
	SendContactAlert(ctx context.Context, alert ContactAlert) error
}
