package about

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("about content not found")

// Page is the single about document; there is at most one per site.
type Page struct {
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UpdateRequest struct {
	Content string `json:"content" binding:"max=20000"`
}
