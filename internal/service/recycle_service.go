package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mkarayel/loan-ledger/internal/config"
	"github.com/mkarayel/loan-ledger/internal/domain"
	"github.com/mkarayel/loan-ledger/internal/repository"
	apperrors "github.com/mkarayel/loan-ledger/pkg/errors"
)

// Recycle-bin scopes accepted by EmptyBin.
const (
	BinScopeLoans   = "loans"
	BinScopeEntries = "entries"
)

// RecycleService coordinates soft-delete, restore and permanent delete for
// loans and entries. None of these transitions touch loan balances; they only
// move rows in and out of the bin.
type RecycleService struct {
	loanRepo  repository.LoanRepository
	entryRepo repository.EntryRepository
	cache     *previewCache
	logger    *zap.Logger
}

func NewRecycleService(
	loanRepo repository.LoanRepository,
	entryRepo repository.EntryRepository,
	redisClient *redis.Client,
	cfg *config.Config,
	logger *zap.Logger,
) *RecycleService {
	return &RecycleService{
		loanRepo:  loanRepo,
		entryRepo: entryRepo,
		cache:     newPreviewCache(redisClient, cfg.Ledger.PreviewCacheTTL, logger),
		logger:    logger,
	}
}

// DeleteLoan moves a live loan and its live entries to the bin with one
// shared timestamp.
func (s *RecycleService) DeleteLoan(ctx context.Context, loanID uuid.UUID) (*domain.BinCounts, error) {
	entries, err := s.loanRepo.SoftDelete(ctx, loanID, time.Now().UTC())
	if err != nil {
		return nil, s.mapLoanError(loanID, err)
	}

	s.cache.Invalidate(ctx, loanID)
	s.logger.Info("loan moved to bin", zap.String("loan_id", loanID.String()), zap.Int64("entries", entries))

	return &domain.BinCounts{Loans: 1, Entries: entries}, nil
}

// RestoreLoan brings a binned loan back together with all of its binned
// entries, including any binned individually before the loan was deleted.
func (s *RecycleService) RestoreLoan(ctx context.Context, loanID uuid.UUID) (*domain.BinCounts, error) {
	entries, err := s.loanRepo.Restore(ctx, loanID)
	if err != nil {
		return nil, s.mapLoanError(loanID, err)
	}

	s.cache.Invalidate(ctx, loanID)
	s.logger.Info("loan restored from bin", zap.String("loan_id", loanID.String()), zap.Int64("entries", entries))

	return &domain.BinCounts{Loans: 1, Entries: entries}, nil
}

// PurgeLoan permanently removes a binned loan and every entry it owns.
func (s *RecycleService) PurgeLoan(ctx context.Context, loanID uuid.UUID) (*domain.BinCounts, error) {
	entries, err := s.loanRepo.Purge(ctx, loanID)
	if err != nil {
		return nil, s.mapLoanError(loanID, err)
	}

	s.cache.Invalidate(ctx, loanID)
	s.logger.Info("loan purged", zap.String("loan_id", loanID.String()), zap.Int64("entries", entries))

	return &domain.BinCounts{Loans: 1, Entries: entries}, nil
}

// DeleteEntry bins a single entry of a live loan.
func (s *RecycleService) DeleteEntry(ctx context.Context, entryID uuid.UUID) (*domain.BinCounts, error) {
	entry, err := s.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, s.mapEntryError(entryID, err)
	}

	if err := s.entryRepo.SoftDelete(ctx, entryID, time.Now().UTC()); err != nil {
		return nil, s.mapEntryError(entryID, err)
	}

	s.cache.Invalidate(ctx, entry.LoanID)
	s.logger.Info("entry moved to bin", zap.String("entry_id", entryID.String()), zap.String("loan_id", entry.LoanID.String()))

	return &domain.BinCounts{Entries: 1}, nil
}

// RestoreEntry un-bins a single entry of a live loan.
func (s *RecycleService) RestoreEntry(ctx context.Context, entryID uuid.UUID) (*domain.BinCounts, error) {
	entry, err := s.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, s.mapEntryError(entryID, err)
	}

	if err := s.entryRepo.Restore(ctx, entryID); err != nil {
		return nil, s.mapEntryError(entryID, err)
	}

	s.cache.Invalidate(ctx, entry.LoanID)
	s.logger.Info("entry restored from bin", zap.String("entry_id", entryID.String()), zap.String("loan_id", entry.LoanID.String()))

	return &domain.BinCounts{Entries: 1}, nil
}

// PurgeEntry permanently removes a binned entry.
func (s *RecycleService) PurgeEntry(ctx context.Context, entryID uuid.UUID) (*domain.BinCounts, error) {
	if err := s.entryRepo.Purge(ctx, entryID); err != nil {
		return nil, s.mapEntryError(entryID, err)
	}

	s.logger.Info("entry purged", zap.String("entry_id", entryID.String()))

	return &domain.BinCounts{Entries: 1}, nil
}

// EmptyBin bulk-purges the bin. Scope "loans" removes binned loans with all
// their entries; scope "entries" removes binned entries whose parent loan is
// still live.
func (s *RecycleService) EmptyBin(ctx context.Context, scope string) (*domain.BinCounts, error) {
	switch scope {
	case BinScopeLoans:
		loans, entries, err := s.loanRepo.PurgeDeleted(ctx)
		if err != nil {
			return nil, apperrors.WrapDatabaseError(err)
		}
		s.logger.Info("bin emptied", zap.String("scope", scope), zap.Int64("loans", loans), zap.Int64("entries", entries))
		return &domain.BinCounts{Loans: loans, Entries: entries}, nil

	case BinScopeEntries:
		entries, err := s.entryRepo.PurgeDeleted(ctx)
		if err != nil {
			return nil, apperrors.WrapDatabaseError(err)
		}
		s.logger.Info("bin emptied", zap.String("scope", scope), zap.Int64("entries", entries))
		return &domain.BinCounts{Entries: entries}, nil

	default:
		return nil, apperrors.WrapValidation("scope must be loans or entries")
	}
}

// ListBinLoans returns loans currently in the bin.
func (s *RecycleService) ListBinLoans(ctx context.Context) ([]*domain.Loan, error) {
	loans, err := s.loanRepo.ListDeleted(ctx)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return loans, nil
}

// ListBinEntries returns entries currently in the bin.
func (s *RecycleService) ListBinEntries(ctx context.Context) ([]*domain.Entry, error) {
	entries, err := s.entryRepo.ListDeleted(ctx)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return entries, nil
}

func (s *RecycleService) mapLoanError(loanID uuid.UUID, err error) error {
	var be *apperrors.BusinessError
	if errors.As(err, &be) {
		return err
	}

	switch {
	case errors.Is(err, apperrors.ErrLoanNotFound):
		return apperrors.WrapLoanNotFound(loanID.String())
	case errors.Is(err, apperrors.ErrLoanAlreadyInBin):
		return apperrors.WrapLoanAlreadyInBin(loanID.String())
	case errors.Is(err, apperrors.ErrLoanNotInBin):
		return apperrors.WrapLoanNotInBin(loanID.String())
	default:
		return apperrors.WrapDatabaseError(err)
	}
}

func (s *RecycleService) mapEntryError(entryID uuid.UUID, err error) error {
	var be *apperrors.BusinessError
	if errors.As(err, &be) {
		return err
	}

	switch {
	case errors.Is(err, apperrors.ErrEntryNotFound):
		return apperrors.WrapEntryNotFound(entryID.String())
	case errors.Is(err, apperrors.ErrEntryAlreadyInBin):
		return apperrors.WrapEntryAlreadyInBin(entryID.String())
	case errors.Is(err, apperrors.ErrEntryNotInBin):
		return apperrors.WrapEntryNotInBin(entryID.String())
	case errors.Is(err, apperrors.ErrLoanInBin):
		return apperrors.WrapLoanInBin(entryID.String())
	default:
		return apperrors.WrapDatabaseError(err)
	}
}
