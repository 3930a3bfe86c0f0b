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

type entryRepository struct {
	db *sqlx.DB
}

func NewEntryRepository(db *sqlx.DB) EntryRepository {
	return &entryRepository{db: db}
}

const entryColumns = `id, loan_id, entry_date, balance_amount, interest_amount, received_date, received_amount, received_interest, deleted_at, created_at`

func (r *entryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = $1`

	var entry domain.Entry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrEntryNotFound
		}
		return nil, err
	}

	return &entry, nil
}

func (r *entryRepository) ListByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE loan_id = $1 AND deleted_at IS NULL
		ORDER BY entry_date, created_at
	`

	var entries []*domain.Entry
	if err := r.db.SelectContext(ctx, &entries, query, loanID); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *entryRepository) ListDeleted(ctx context.Context) ([]*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE deleted_at IS NOT NULL ORDER BY deleted_at DESC`

	var entries []*domain.Entry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *entryRepository) LatestEntryDate(ctx context.Context, loanID uuid.UUID) (*time.Time, error) {
	query := `
		SELECT entry_date
		FROM entries
		WHERE loan_id = $1 AND deleted_at IS NULL
		ORDER BY entry_date DESC, created_at DESC
		LIMIT 1
	`

	var entryDate time.Time
	if err := r.db.GetContext(ctx, &entryDate, query, loanID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &entryDate, nil
}

// SoftDelete bins a single entry. Only allowed while the parent loan is live
// so loan-level cascade accounting stays consistent.
func (r *entryRepository) SoftDelete(ctx context.Context, entryID uuid.UUID, at time.Time) error {
	query := `
		UPDATE entries SET deleted_at = $2
		WHERE id = $1 AND deleted_at IS NULL
		  AND loan_id IN (SELECT id FROM loans WHERE deleted_at IS NULL)
	`

	res, err := r.db.ExecContext(ctx, query, entryID, at)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return r.stateError(ctx, entryID, apperrors.ErrEntryAlreadyInBin, false)
	}

	return nil
}

func (r *entryRepository) Restore(ctx context.Context, entryID uuid.UUID) error {
	query := `
		UPDATE entries SET deleted_at = NULL
		WHERE id = $1 AND deleted_at IS NOT NULL
		  AND loan_id IN (SELECT id FROM loans WHERE deleted_at IS NULL)
	`

	res, err := r.db.ExecContext(ctx, query, entryID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return r.stateError(ctx, entryID, apperrors.ErrEntryNotInBin, true)
	}

	return nil
}

func (r *entryRepository) Purge(ctx context.Context, entryID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM entries WHERE id = $1 AND deleted_at IS NOT NULL`,
		entryID,
	)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var exists bool
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM entries WHERE id = $1)`, entryID); err != nil {
			return err
		}
		if !exists {
			return apperrors.ErrEntryNotFound
		}
		return apperrors.ErrEntryNotInBin
	}

	return nil
}

// PurgeDeleted removes binned entries of live loans only. Entries that were
// cascaded into the bin with their loan are purged through the loan paths.
func (r *entryRepository) PurgeDeleted(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM entries
		WHERE deleted_at IS NOT NULL
		  AND loan_id IN (SELECT id FROM loans WHERE deleted_at IS NULL)
	`)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// stateError explains why a conditional bin transition touched no rows: the
// entry is missing, its parent loan is binned, or the entry itself is in the
// wrong bin state.
func (r *entryRepository) stateError(ctx context.Context, entryID uuid.UUID, stateErr error, wantBinned bool) error {
	type row struct {
		EntryDeleted *time.Time `db:"entry_deleted"`
		LoanDeleted  *time.Time `db:"loan_deleted"`
	}

	var st row
	err := r.db.GetContext(ctx, &st, `
		SELECT e.deleted_at AS entry_deleted, l.deleted_at AS loan_deleted
		FROM entries e JOIN loans l ON l.id = e.loan_id
		WHERE e.id = $1
	`, entryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.ErrEntryNotFound
		}
		return err
	}

	if st.LoanDeleted != nil {
		return apperrors.ErrLoanInBin
	}
	if wantBinned && st.EntryDeleted == nil {
		return apperrors.ErrEntryNotInBin
	}
	return stateErr
}
