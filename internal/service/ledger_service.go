package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mkarayel/loan-ledger/internal/config"
	"github.com/mkarayel/loan-ledger/internal/domain"
	"github.com/mkarayel/loan-ledger/internal/repository"
	apperrors "github.com/mkarayel/loan-ledger/pkg/errors"
)

// LedgerService owns loan lifecycle, entry posting and the read-only query
// surface (preview, audit). Balance mutation goes through exactly one path:
// PostEntry.
type LedgerService struct {
	loanRepo  repository.LoanRepository
	entryRepo repository.EntryRepository
	partyRepo repository.PartyRepository
	cache     *previewCache
	config    *config.Config
	logger    *zap.Logger
}

func NewLedgerService(
	loanRepo repository.LoanRepository,
	entryRepo repository.EntryRepository,
	partyRepo repository.PartyRepository,
	redisClient *redis.Client,
	cfg *config.Config,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		loanRepo:  loanRepo,
		entryRepo: entryRepo,
		partyRepo: partyRepo,
		cache:     newPreviewCache(redisClient, cfg.Ledger.PreviewCacheTTL, logger),
		config:    cfg,
		logger:    logger,
	}
}

// CreateLoan opens a credit for a party with balances (principal, 0).
func (s *LedgerService) CreateLoan(ctx context.Context, req *domain.CreateLoanRequest) (*domain.Loan, error) {
	if !req.Principal.IsPositive() {
		return nil, apperrors.WrapValidation("principal must be greater than zero")
	}
	if req.InterestRate.IsNegative() {
		return nil, apperrors.WrapValidation("interest_rate must not be negative")
	}
	if req.OriginationDate.IsZero() {
		return nil, apperrors.WrapValidation("origination_date is required")
	}

	if _, err := s.partyRepo.GetByID(ctx, req.PartyID); err != nil {
		if errors.Is(err, apperrors.ErrPartyNotFound) {
			return nil, apperrors.WrapPartyNotFound(req.PartyID.String())
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	loan := domain.NewLoan(req.PartyID, req.Principal, req.InterestRate, req.OriginationDate)
	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	s.logger.Info("loan created",
		zap.String("loan_id", loan.ID.String()),
		zap.String("party_id", loan.PartyID.String()),
		zap.String("principal", loan.Principal.String()),
	)

	return loan, nil
}

// GetLoan returns a live loan.
func (s *LedgerService) GetLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, s.mapLoanError(loanID, err)
	}
	if loan.InBin() {
		return nil, apperrors.WrapLoanNotFound(loanID.String())
	}
	return loan, nil
}

// ListLoans returns all live loans.
func (s *LedgerService) ListLoans(ctx context.Context) ([]*domain.Loan, error) {
	loans, err := s.loanRepo.List(ctx)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return loans, nil
}

// ListEntries returns the live entries of a live loan in posting order.
func (s *LedgerService) ListEntries(ctx context.Context, loanID uuid.UUID) ([]*domain.Entry, error) {
	if _, err := s.GetLoan(ctx, loanID); err != nil {
		return nil, err
	}

	entries, err := s.entryRepo.ListByLoanID(ctx, loanID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return entries, nil
}

// PostEntry posts one ledger entry against a live loan: it accrues interest
// on the current balance and applies the optional payment, atomically with
// the loan balance update.
func (s *LedgerService) PostEntry(ctx context.Context, loanID uuid.UUID, req *domain.PostEntryRequest) (*domain.Entry, error) {
	if req.EntryDate.IsZero() {
		return nil, apperrors.WrapValidation("entry_date is required")
	}

	payment := domain.Payment{
		EntryDate:        req.EntryDate,
		ReceivedDate:     req.ReceivedDate,
		ReceivedAmount:   decimal.Zero,
		ReceivedInterest: decimal.Zero,
	}
	if req.ReceivedAmount != nil {
		payment.ReceivedAmount = *req.ReceivedAmount
	}
	if req.ReceivedInterest != nil {
		payment.ReceivedInterest = *req.ReceivedInterest
	}

	if payment.ReceivedAmount.IsNegative() {
		return nil, apperrors.WrapValidation("received_amount must not be negative")
	}
	if payment.ReceivedInterest.IsNegative() {
		return nil, apperrors.WrapValidation("received_interest must not be negative")
	}

	entry, err := s.loanRepo.PostEntry(ctx, loanID, payment)
	if err != nil {
		return nil, s.mapLoanError(loanID, err)
	}

	s.cache.Invalidate(ctx, loanID)

	s.logger.Info("entry posted",
		zap.String("loan_id", loanID.String()),
		zap.String("entry_id", entry.ID.String()),
		zap.String("interest_amount", entry.InterestAmount.String()),
		zap.String("received_amount", payment.ReceivedAmount.String()),
		zap.String("received_interest", payment.ReceivedInterest.String()),
	)

	return entry, nil
}

// Preview reports the loan's balances plus the interest one more accrual
// checkpoint would add, computed with zero payments. Nothing is persisted.
func (s *LedgerService) Preview(ctx context.Context, loanID uuid.UUID) (*domain.LoanPreview, error) {
	if cached := s.cache.Get(ctx, loanID); cached != nil {
		return cached, nil
	}

	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	latest, err := s.entryRepo.LatestEntryDate(ctx, loanID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	result := domain.CalculateBalance(loan.BalanceAmount, loan.BalanceInterest, loan.InterestRate, decimal.Zero, decimal.Zero)

	base := loan.OriginationDate
	if latest != nil {
		base = *latest
	}

	preview := &domain.LoanPreview{
		LoanID:                   loan.ID,
		BalanceAmount:            loan.BalanceAmount,
		BalanceInterest:          loan.BalanceInterest,
		InterestRate:             loan.InterestRate,
		CalculatedInterestAmount: result.InterestAccrued,
		TotalPendingInterest:     result.TotalInterestDue,
		NextEntryDate:            base.AddDate(0, 0, s.config.Ledger.NextEntryOffsetDays),
	}

	s.cache.Set(ctx, preview)

	return preview, nil
}

// Audit replays the loan's live entries through the calculator and compares
// the result with the stored balances. A mismatch is an internal defect.
func (s *LedgerService) Audit(ctx context.Context, loanID uuid.UUID) (*domain.LoanAudit, error) {
	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	entries, err := s.entryRepo.ListByLoanID(ctx, loanID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	replayedAmount, replayedInterest := domain.ReplayEntries(loan.Principal, loan.InterestRate, entries)

	audit := &domain.LoanAudit{
		LoanID:                  loan.ID,
		BalanceAmount:           loan.BalanceAmount,
		BalanceInterest:         loan.BalanceInterest,
		ReplayedBalanceAmount:   replayedAmount,
		ReplayedBalanceInterest: replayedInterest,
		Consistent:              replayedAmount.Equal(loan.BalanceAmount) && replayedInterest.Equal(loan.BalanceInterest),
		LiveEntries:             len(entries),
	}

	if !audit.Consistent {
		s.logger.Error("loan balances diverge from entry replay",
			zap.String("loan_id", loanID.String()),
			zap.String("balance_amount", loan.BalanceAmount.String()),
			zap.String("replayed_balance_amount", replayedAmount.String()),
			zap.String("balance_interest", loan.BalanceInterest.String()),
			zap.String("replayed_balance_interest", replayedInterest.String()),
		)
		return audit, apperrors.WrapIntegrity(loanID.String(), "stored balances do not match entry replay")
	}

	return audit, nil
}

func (s *LedgerService) mapLoanError(loanID uuid.UUID, err error) error {
	var be *apperrors.BusinessError
	if errors.As(err, &be) {
		return err
	}

	switch {
	case errors.Is(err, apperrors.ErrLoanNotFound):
		return apperrors.WrapLoanNotFound(loanID.String())
	case errors.Is(err, apperrors.ErrConflict):
		return apperrors.WrapConflict(loanID.String(), err)
	case errors.Is(err, apperrors.ErrIntegrity):
		return apperrors.WrapIntegrity(loanID.String(), err.Error())
	default:
		return apperrors.WrapDatabaseError(err)
	}
}
