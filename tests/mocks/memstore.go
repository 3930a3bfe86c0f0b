package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkarayel/loan-ledger/internal/domain"
	apperrors "github.com/mkarayel/loan-ledger/pkg/errors"
)

// MemStore is an in-memory implementation of LoanRepository and
// EntryRepository with the same atomicity guarantees as the postgres
// implementation: one mutex serializes every multi-row operation, so
// concurrent postings against the same loan cannot lose updates.
type MemStore struct {
	mu      sync.Mutex
	loans   map[uuid.UUID]*domain.Loan
	entries map[uuid.UUID]*domain.Entry
}

func NewMemStore() *MemStore {
	return &MemStore{
		loans:   make(map[uuid.UUID]*domain.Loan),
		entries: make(map[uuid.UUID]*domain.Entry),
	}
}

func (s *MemStore) Create(_ context.Context, loan *domain.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *loan
	s.loans[loan.ID] = &cp
	return nil
}

func (s *MemStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loan, ok := s.loans[id]
	if !ok {
		return nil, apperrors.ErrLoanNotFound
	}
	cp := *loan
	return &cp, nil
}

func (s *MemStore) List(_ context.Context) ([]*domain.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Loan
	for _, loan := range s.loans {
		if loan.DeletedAt == nil {
			cp := *loan
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemStore) ListDeleted(_ context.Context) ([]*domain.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Loan
	for _, loan := range s.loans {
		if loan.DeletedAt != nil {
			cp := *loan
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemStore) PostEntry(_ context.Context, loanID uuid.UUID, payment domain.Payment) (*domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan, ok := s.loans[loanID]
	if !ok || loan.DeletedAt != nil {
		return nil, apperrors.ErrLoanNotFound
	}

	result := domain.CalculateBalance(
		loan.BalanceAmount,
		loan.BalanceInterest,
		loan.InterestRate,
		payment.ReceivedAmount,
		payment.ReceivedInterest,
	)

	entry := domain.NewEntry(loanID, payment, loan.BalanceAmount, result.InterestAccrued)
	s.entries[entry.ID] = entry

	loan.BalanceAmount = result.BalanceAmount
	loan.BalanceInterest = result.BalanceInterest
	loan.InterestReceived = loan.InterestReceived.Add(payment.ReceivedInterest)
	loan.UpdatedAt = time.Now().UTC()

	cp := *entry
	return &cp, nil
}

func (s *MemStore) SoftDelete(_ context.Context, loanID uuid.UUID, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan, ok := s.loans[loanID]
	if !ok {
		return 0, apperrors.ErrLoanNotFound
	}
	if loan.DeletedAt != nil {
		return 0, apperrors.ErrLoanAlreadyInBin
	}

	loan.DeletedAt = &at
	var cascaded int64
	for _, entry := range s.entries {
		if entry.LoanID == loanID && entry.DeletedAt == nil {
			entry.DeletedAt = &at
			cascaded++
		}
	}
	return cascaded, nil
}

func (s *MemStore) Restore(_ context.Context, loanID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan, ok := s.loans[loanID]
	if !ok {
		return 0, apperrors.ErrLoanNotFound
	}
	if loan.DeletedAt == nil {
		return 0, apperrors.ErrLoanNotInBin
	}

	loan.DeletedAt = nil
	var restored int64
	for _, entry := range s.entries {
		if entry.LoanID == loanID && entry.DeletedAt != nil {
			entry.DeletedAt = nil
			restored++
		}
	}
	return restored, nil
}

func (s *MemStore) Purge(_ context.Context, loanID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan, ok := s.loans[loanID]
	if !ok {
		return 0, apperrors.ErrLoanNotFound
	}
	if loan.DeletedAt == nil {
		return 0, apperrors.ErrLoanNotInBin
	}

	var removed int64
	for id, entry := range s.entries {
		if entry.LoanID == loanID {
			delete(s.entries, id)
			removed++
		}
	}
	delete(s.loans, loanID)
	return removed, nil
}

func (s *MemStore) PurgeDeleted(_ context.Context) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var loans, entries int64
	for loanID, loan := range s.loans {
		if loan.DeletedAt == nil {
			continue
		}
		for id, entry := range s.entries {
			if entry.LoanID == loanID {
				delete(s.entries, id)
				entries++
			}
		}
		delete(s.loans, loanID)
		loans++
	}
	return loans, entries, nil
}

// EntryStore exposes the entry side of the store as its own value so both
// repository interfaces can be satisfied without method-name collisions.
func (s *MemStore) EntryStore() *MemEntryStore {
	return &MemEntryStore{store: s}
}

type MemEntryStore struct {
	store *MemStore
}

func (s *MemEntryStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Entry, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	entry, ok := s.store.entries[id]
	if !ok {
		return nil, apperrors.ErrEntryNotFound
	}
	cp := *entry
	return &cp, nil
}

func (s *MemEntryStore) ListByLoanID(_ context.Context, loanID uuid.UUID) ([]*domain.Entry, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	var out []*domain.Entry
	for _, entry := range s.store.entries {
		if entry.LoanID == loanID && entry.DeletedAt == nil {
			cp := *entry
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EntryDate.Equal(out[j].EntryDate) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].EntryDate.Before(out[j].EntryDate)
	})
	return out, nil
}

func (s *MemEntryStore) ListDeleted(_ context.Context) ([]*domain.Entry, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	var out []*domain.Entry
	for _, entry := range s.store.entries {
		if entry.DeletedAt != nil {
			cp := *entry
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemEntryStore) LatestEntryDate(ctx context.Context, loanID uuid.UUID) (*time.Time, error) {
	entries, err := s.ListByLoanID(ctx, loanID)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	latest := entries[len(entries)-1].EntryDate
	return &latest, nil
}

func (s *MemEntryStore) SoftDelete(_ context.Context, entryID uuid.UUID, at time.Time) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	entry, ok := s.store.entries[entryID]
	if !ok {
		return apperrors.ErrEntryNotFound
	}
	if loan, ok := s.store.loans[entry.LoanID]; ok && loan.DeletedAt != nil {
		return apperrors.ErrLoanInBin
	}
	if entry.DeletedAt != nil {
		return apperrors.ErrEntryAlreadyInBin
	}

	entry.DeletedAt = &at
	return nil
}

func (s *MemEntryStore) Restore(_ context.Context, entryID uuid.UUID) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	entry, ok := s.store.entries[entryID]
	if !ok {
		return apperrors.ErrEntryNotFound
	}
	if loan, ok := s.store.loans[entry.LoanID]; ok && loan.DeletedAt != nil {
		return apperrors.ErrLoanInBin
	}
	if entry.DeletedAt == nil {
		return apperrors.ErrEntryNotInBin
	}

	entry.DeletedAt = nil
	return nil
}

func (s *MemEntryStore) Purge(_ context.Context, entryID uuid.UUID) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	entry, ok := s.store.entries[entryID]
	if !ok {
		return apperrors.ErrEntryNotFound
	}
	if entry.DeletedAt == nil {
		return apperrors.ErrEntryNotInBin
	}

	delete(s.store.entries, entryID)
	return nil
}

func (s *MemEntryStore) PurgeDeleted(_ context.Context) (int64, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	var removed int64
	for id, entry := range s.store.entries {
		if entry.DeletedAt == nil {
			continue
		}
		if loan, ok := s.store.loans[entry.LoanID]; ok && loan.DeletedAt != nil {
			continue
		}
		delete(s.store.entries, id)
		removed++
	}
	return removed, nil
}
