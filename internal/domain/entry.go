package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entry is one ledger line for a loan: an interest-accrual checkpoint and an
// optional payment. Entries are immutable after creation; the only legal
// mutations are the soft-delete marker toggles. There is no update path for
// the financial fields, in code or in SQL.
type Entry struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	LoanID           uuid.UUID       `json:"loan_id" db:"loan_id"`
	EntryDate        time.Time       `json:"entry_date" db:"entry_date"`
	BalanceAmount    decimal.Decimal `json:"balance_amount" db:"balance_amount"` // principal snapshot the interest accrued against
	InterestAmount   decimal.Decimal `json:"interest_amount" db:"interest_amount"`
	ReceivedDate     *time.Time      `json:"received_date,omitempty" db:"received_date"`
	ReceivedAmount   decimal.Decimal `json:"received_amount" db:"received_amount"`
	ReceivedInterest decimal.Decimal `json:"received_interest" db:"received_interest"`
	DeletedAt        *time.Time      `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

// InBin reports whether the entry is soft-deleted.
func (e *Entry) InBin() bool {
	return e.DeletedAt != nil
}

// Payment is the caller-supplied part of an entry posting. Amounts default to
// zero for pure accrual checkpoints.
type Payment struct {
	EntryDate        time.Time
	ReceivedDate     *time.Time
	ReceivedAmount   decimal.Decimal
	ReceivedInterest decimal.Decimal
}

// NewEntry freezes one posted ledger line. balanceAmount is the loan's
// pre-update principal (the snapshot interest accrued on), interestAmount the
// accrual from the calculator. This factory is the only constructor for
// entries.
func NewEntry(loanID uuid.UUID, p Payment, balanceAmount, interestAmount decimal.Decimal) *Entry {
	return &Entry{
		ID:               uuid.New(),
		LoanID:           loanID,
		EntryDate:        p.EntryDate,
		BalanceAmount:    balanceAmount,
		InterestAmount:   interestAmount,
		ReceivedDate:     p.ReceivedDate,
		ReceivedAmount:   p.ReceivedAmount,
		ReceivedInterest: p.ReceivedInterest,
		CreatedAt:        time.Now().UTC(),
	}
}

// DTOs for requests and responses

type PostEntryRequest struct {
	EntryDate        time.Time        `json:"entry_date" validate:"required"`
	ReceivedDate     *time.Time       `json:"received_date"`
	ReceivedAmount   *decimal.Decimal `json:"received_amount" validate:"omitempty,gte=0"`
	ReceivedInterest *decimal.Decimal `json:"received_interest" validate:"omitempty,gte=0"`
}
