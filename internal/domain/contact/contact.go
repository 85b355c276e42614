package contact

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("contact message not found")

type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=120"`
	Email         string `json:"email" binding:"required,email"`
	Message       string `json:"message" binding:"required,min=1,max=5000"`
	CaptchaID     string `json:"captchaId" binding:"required"`
	CaptchaAnswer string `json:"captchaAnswer" binding:"required"`
}

// admins only ever edit the message body
type UpdateRequest struct {
	Message string `json:"message" binding:"required,min=1,max=5000"`
}
