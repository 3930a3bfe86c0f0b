package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Loan represents one credit extended to a party. BalanceAmount and
// BalanceInterest are denormalized running totals: while the loan is live
// they always equal the replay of CalculateBalance over its live entries
// starting from (Principal, 0). Only entry posting mutates them.
type Loan struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	PartyID          uuid.UUID       `json:"party_id" db:"party_id"`
	Principal        decimal.Decimal `json:"principal" db:"principal"`
	InterestRate     decimal.Decimal `json:"interest_rate" db:"interest_rate"` // percent per period
	BalanceAmount    decimal.Decimal `json:"balance_amount" db:"balance_amount"`
	BalanceInterest  decimal.Decimal `json:"balance_interest" db:"balance_interest"`
	InterestReceived decimal.Decimal `json:"interest_received" db:"interest_received"`
	OriginationDate  time.Time       `json:"origination_date" db:"origination_date"`
	DeletedAt        *time.Time      `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// InBin reports whether the loan is soft-deleted.
func (l *Loan) InBin() bool {
	return l.DeletedAt != nil
}

// NewLoan builds a live loan with balances initialized from the principal.
func NewLoan(partyID uuid.UUID, principal, interestRate decimal.Decimal, originationDate time.Time) *Loan {
	now := time.Now().UTC()
	return &Loan{
		ID:               uuid.New(),
		PartyID:          partyID,
		Principal:        principal,
		InterestRate:     interestRate,
		BalanceAmount:    principal,
		BalanceInterest:  decimal.Zero,
		InterestReceived: decimal.Zero,
		OriginationDate:  originationDate,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	PartyID         uuid.UUID       `json:"party_id" validate:"required"`
	Principal       decimal.Decimal `json:"principal" validate:"required,gt=0"`
	InterestRate    decimal.Decimal `json:"interest_rate" validate:"gte=0"`
	OriginationDate time.Time       `json:"origination_date" validate:"required"`
}

// LoanPreview is the read-only view used by the entry composition UI. The
// calculated fields come from running the calculator with zero payments and
// are never persisted.
type LoanPreview struct {
	LoanID                   uuid.UUID       `json:"loan_id"`
	BalanceAmount            decimal.Decimal `json:"balance_amount"`
	BalanceInterest          decimal.Decimal `json:"balance_interest"`
	InterestRate             decimal.Decimal `json:"interest_rate"`
	CalculatedInterestAmount decimal.Decimal `json:"calculated_interest_amount"`
	TotalPendingInterest     decimal.Decimal `json:"total_pending_interest"`
	NextEntryDate            time.Time       `json:"next_entry_date"`
}

// LoanAudit reports whether the stored balances match a replay of the loan's
// live entry history.
type LoanAudit struct {
	LoanID                   uuid.UUID       `json:"loan_id"`
	BalanceAmount            decimal.Decimal `json:"balance_amount"`
	BalanceInterest          decimal.Decimal `json:"balance_interest"`
	ReplayedBalanceAmount    decimal.Decimal `json:"replayed_balance_amount"`
	ReplayedBalanceInterest  decimal.Decimal `json:"replayed_balance_interest"`
	Consistent               bool            `json:"consistent"`
	LiveEntries              int             `json:"live_entries"`
}

// BinCounts reports rows affected by recycle-bin operations for UI messaging.
type BinCounts struct {
	Loans   int64 `json:"loans"`
	Entries int64 `json:"entries"`
}
