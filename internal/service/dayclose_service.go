package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkarayel/loan-ledger/internal/domain"
	"github.com/mkarayel/loan-ledger/internal/repository"
	apperrors "github.com/mkarayel/loan-ledger/pkg/errors"
)

// DayCloseService records bookkeeping checkpoints. A day close is a marker
// only; it never recomputes or mutates loan balances.
type DayCloseService struct {
	dayCloseRepo repository.DayCloseRepository
	logger       *zap.Logger
}

func NewDayCloseService(dayCloseRepo repository.DayCloseRepository, logger *zap.Logger) *DayCloseService {
	return &DayCloseService{dayCloseRepo: dayCloseRepo, logger: logger}
}

func (s *DayCloseService) Close(ctx context.Context, note string) (*domain.DayClose, error) {
	now := time.Now().UTC()
	dc := &domain.DayClose{
		ID:        uuid.New(),
		ClosedAt:  now,
		Note:      note,
		CreatedAt: now,
	}

	if err := s.dayCloseRepo.Create(ctx, dc); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	s.logger.Info("day closed", zap.Time("closed_at", dc.ClosedAt), zap.String("note", dc.Note))

	return dc, nil
}

// Latest returns the most recent checkpoint, or nil when none exists yet.
func (s *DayCloseService) Latest(ctx context.Context) (*domain.DayClose, error) {
	dc, err := s.dayCloseRepo.Latest(ctx)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return dc, nil
}
