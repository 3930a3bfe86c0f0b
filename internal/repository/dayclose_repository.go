package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/mkarayel/loan-ledger/internal/domain"
)

type dayCloseRepository struct {
	db *sqlx.DB
}

func NewDayCloseRepository(db *sqlx.DB) DayCloseRepository {
	return &dayCloseRepository{db: db}
}

func (r *dayCloseRepository) Create(ctx context.Context, dc *domain.DayClose) error {
	query := `INSERT INTO day_closes (id, closed_at, note, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query, dc.ID, dc.ClosedAt, dc.Note, dc.CreatedAt)
	return err
}

func (r *dayCloseRepository) Latest(ctx context.Context) (*domain.DayClose, error) {
	query := `SELECT id, closed_at, note, created_at FROM day_closes ORDER BY closed_at DESC LIMIT 1`

	var dc domain.DayClose
	if err := r.db.GetContext(ctx, &dc, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &dc, nil
}
