package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mkarayel/loan-ledger/internal/domain"
	apperrors "github.com/mkarayel/loan-ledger/pkg/errors"
)

type partyRepository struct {
	db *sqlx.DB
}

func NewPartyRepository(db *sqlx.DB) PartyRepository {
	return &partyRepository{db: db}
}

func (r *partyRepository) Create(ctx context.Context, party *domain.Party) error {
	query := `
		INSERT INTO parties (id, name, account_no, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		party.ID,
		party.Name,
		party.AccountNo,
		party.Phone,
		party.Address,
		party.CreatedAt,
		party.UpdatedAt,
	)

	return err
}

func (r *partyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Party, error) {
	query := `SELECT id, name, account_no, phone, address, created_at, updated_at FROM parties WHERE id = $1`

	var party domain.Party
	if err := r.db.GetContext(ctx, &party, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrPartyNotFound
		}
		return nil, err
	}

	return &party, nil
}

func (r *partyRepository) List(ctx context.Context) ([]*domain.Party, error) {
	query := `SELECT id, name, account_no, phone, address, created_at, updated_at FROM parties ORDER BY name`

	var parties []*domain.Party
	if err := r.db.SelectContext(ctx, &parties, query); err != nil {
		return nil, err
	}

	return parties, nil
}

// UpdateContact only touches the contact fields; name and account number are
// fixed once loans reference the party.
func (r *partyRepository) UpdateContact(ctx context.Context, party *domain.Party) error {
	query := `UPDATE parties SET phone = $2, address = $3, updated_at = $4 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, party.ID, party.Phone, party.Address, time.Now().UTC())
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.ErrPartyNotFound
	}

	return nil
}
