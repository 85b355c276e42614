package jobs

import (
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/webtwist/internal/notifications"
)

// ContactNotificationPayload tells the site owner a visitor left a message.
// It carries the message itself so the worker never needs the database.
type ContactNotificationPayload struct {
	MessageID   string    `json:"messageId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Message     string    `json:"message"`
	SubmittedAt time.Time `json:"submittedAt"`
	RequestID   string    `json:"requestId,omitempty"`
}

func (ContactNotificationPayload) JobType() JobType { return JobContactNotification }

func (p ContactNotificationPayload) Validate() error {
	if strings.TrimSpace(p.MessageID) == "" || strings.TrimSpace(p.Email) == "" {
		return fmt.Errorf("%w: message id and email are required", ErrInvalidJobPayload)
	}
	return nil
}

func (p ContactNotificationPayload) Alert() notifications.ContactAlert {
	return notifications.ContactAlert{
		MessageID:   p.MessageID,
		Name:        p.Name,
		Email:       p.Email,
		Message:     p.Message,
		SubmittedAt: p.SubmittedAt,
	}
}
