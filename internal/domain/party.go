package domain

import (
	"time"

	"github.com/google/uuid"
)

// Party is a borrower that loans reference. Parties are never deleted; only
// their contact fields may change after loans exist.
type Party struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	AccountNo string    `json:"account_no" db:"account_no"`
	Phone     string    `json:"phone" db:"phone"`
	Address   string    `json:"address" db:"address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CreatePartyRequest struct {
	Name      string `json:"name" validate:"required"`
	AccountNo string `json:"account_no" validate:"required"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

type UpdatePartyContactRequest struct {
	Phone   string `json:"phone"`
	Address string `json:"address"`
}
