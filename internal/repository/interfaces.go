package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mkarayel/loan-ledger/internal/domain"
)

// LoanRepository defines loan persistence including the atomic operations
// that must span the loan row and its entries.
type LoanRepository interface {
	// Create inserts a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan regardless of bin state
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// List retrieves live loans
	List(ctx context.Context) ([]*domain.Loan, error)

	// ListDeleted retrieves loans in the recycle bin
	ListDeleted(ctx context.Context) ([]*domain.Loan, error)

	// PostEntry atomically posts one entry against a live loan and updates
	// its balances. The loan row is locked for the duration so concurrent
	// postings on the same loan serialize. Returns errors.ErrLoanNotFound
	// when the loan is absent or in the bin.
	PostEntry(ctx context.Context, loanID uuid.UUID, payment domain.Payment) (*domain.Entry, error)

	// SoftDelete moves a live loan and its live entries to the bin with one
	// shared timestamp. Returns the number of entries cascaded.
	SoftDelete(ctx context.Context, loanID uuid.UUID, at time.Time) (int64, error)

	// Restore brings a binned loan back along with all of its binned entries.
	// Returns the number of entries restored.
	Restore(ctx context.Context, loanID uuid.UUID) (int64, error)

	// Purge permanently deletes a binned loan and every entry it owns.
	// Returns the number of entries removed.
	Purge(ctx context.Context, loanID uuid.UUID) (int64, error)

	// PurgeDeleted permanently deletes every binned loan and all their
	// entries. Returns loan and entry counts.
	PurgeDeleted(ctx context.Context) (int64, int64, error)
}

// EntryRepository defines entry persistence and single-row bin transitions.
type EntryRepository interface {
	// GetByID retrieves an entry regardless of bin state
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Entry, error)

	// ListByLoanID retrieves live entries for a loan in posting order
	ListByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Entry, error)

	// ListDeleted retrieves entries in the recycle bin
	ListDeleted(ctx context.Context) ([]*domain.Entry, error)

	// LatestEntryDate returns the entry date of the most recent live entry,
	// or nil when the loan has none
	LatestEntryDate(ctx context.Context, loanID uuid.UUID) (*time.Time, error)

	// SoftDelete bins a single live entry whose parent loan is live
	SoftDelete(ctx context.Context, entryID uuid.UUID, at time.Time) error

	// Restore un-bins a single entry whose parent loan is live
	Restore(ctx context.Context, entryID uuid.UUID) error

	// Purge permanently deletes a binned entry
	Purge(ctx context.Context, entryID uuid.UUID) error

	// PurgeDeleted permanently deletes binned entries whose parent loan is
	// live. Entries owned by binned loans stay until their loan is purged.
	PurgeDeleted(ctx context.Context) (int64, error)
}

// PartyRepository defines borrower persistence.
type PartyRepository interface {
	Create(ctx context.Context, party *domain.Party) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Party, error)
	List(ctx context.Context) ([]*domain.Party, error)
	UpdateContact(ctx context.Context, party *domain.Party) error
}

// DayCloseRepository stores bookkeeping checkpoints.
type DayCloseRepository interface {
	Create(ctx context.Context, dc *domain.DayClose) error
	Latest(ctx context.Context) (*domain.DayClose, error)
}
