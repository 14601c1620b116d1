package models

import (
	"time"

	"github.com/google/uuid"
)

// Client is a stored billing contact. Documents copy the client's name,
// email, and address at build time; they never reference this row live.
type Client struct {
	ID         uuid.UUID `json:"id" db:"id"`
	BusinessID uuid.UUID `json:"business_id" db:"business_id"`
	Name       string    `json:"name" db:"name"`
	Email      *string   `json:"email" db:"email"`
	Phone      *string   `json:"phone" db:"phone"`
	Address    *string   `json:"address" db:"address"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
