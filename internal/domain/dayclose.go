package domain

import (
	"time"

	"github.com/google/uuid"
)

// DayClose is an operator-triggered bookkeeping checkpoint. It is a read-only
// marker: closing a day never touches loan or entry balances.
type DayClose struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ClosedAt  time.Time `json:"closed_at" db:"closed_at"`
	Note      string    `json:"note" db:"note"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type CreateDayCloseRequest struct {
	Note string `json:"note"`
}
