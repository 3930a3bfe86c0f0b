package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkarayel/loan-ledger/internal/domain"
	"github.com/mkarayel/loan-ledger/internal/repository"
	apperrors "github.com/mkarayel/loan-ledger/pkg/errors"
)

// PartyService manages borrowers. Parties are never deleted; contact fields
// are the only mutable part once loans reference them.
type PartyService struct {
	partyRepo repository.PartyRepository
	logger    *zap.Logger
}

func NewPartyService(partyRepo repository.PartyRepository, logger *zap.Logger) *PartyService {
	return &PartyService{partyRepo: partyRepo, logger: logger}
}

func (s *PartyService) Create(ctx context.Context, req *domain.CreatePartyRequest) (*domain.Party, error) {
	name := strings.TrimSpace(req.Name)
	accountNo := strings.TrimSpace(req.AccountNo)
	if name == "" {
		return nil, apperrors.WrapValidation("name is required")
	}
	if accountNo == "" {
		return nil, apperrors.WrapValidation("account_no is required")
	}

	now := time.Now().UTC()
	party := &domain.Party{
		ID:        uuid.New(),
		Name:      name,
		AccountNo: accountNo,
		Phone:     req.Phone,
		Address:   req.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.partyRepo.Create(ctx, party); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	s.logger.Info("party created", zap.String("party_id", party.ID.String()), zap.String("account_no", party.AccountNo))

	return party, nil
}

func (s *PartyService) Get(ctx context.Context, partyID uuid.UUID) (*domain.Party, error) {
	party, err := s.partyRepo.GetByID(ctx, partyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrPartyNotFound) {
			return nil, apperrors.WrapPartyNotFound(partyID.String())
		}
		return nil, apperrors.WrapDatabaseError(err)
	}
	return party, nil
}

func (s *PartyService) List(ctx context.Context) ([]*domain.Party, error) {
	parties, err := s.partyRepo.List(ctx)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return parties, nil
}

func (s *PartyService) UpdateContact(ctx context.Context, partyID uuid.UUID, req *domain.UpdatePartyContactRequest) (*domain.Party, error) {
	party, err := s.Get(ctx, partyID)
	if err != nil {
		return nil, err
	}

	party.Phone = req.Phone
	party.Address = req.Address

	if err := s.partyRepo.UpdateContact(ctx, party); err != nil {
		if errors.Is(err, apperrors.ErrPartyNotFound) {
			return nil, apperrors.WrapPartyNotFound(partyID.String())
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	return party, nil
}
