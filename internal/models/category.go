package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a user-defined classification tag for transactions.
type Category struct {
	ID          uuid.UUID `json:"id" db:"category_id"`
	FromUser    uuid.UUID `json:"fromUser" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}
