package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/mkarayel/loan-ledger/internal/domain"
	apperrors "github.com/mkarayel/loan-ledger/pkg/errors"
)

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

const loanColumns = `id, party_id, principal, interest_rate, balance_amount, balance_interest, interest_received, origination_date, deleted_at, created_at, updated_at`

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (id, party_id, principal, interest_rate, balance_amount, balance_interest, interest_received, origination_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.PartyID,
		loan.Principal,
		loan.InterestRate,
		loan.BalanceAmount,
		loan.BalanceInterest,
		loan.InterestReceived,
		loan.OriginationDate,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return err
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrLoanNotFound
		}
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) List(ctx context.Context) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE deleted_at IS NULL ORDER BY created_at`

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) ListDeleted(ctx context.Context) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE deleted_at IS NOT NULL ORDER BY deleted_at DESC`

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query); err != nil {
		return nil, err
	}

	return loans, nil
}

// PostEntry is the only write path for loan balances. The SELECT ... FOR
// UPDATE serializes concurrent postings per loan row; postings on different
// loans run in parallel.
func (r *loanRepository) PostEntry(ctx context.Context, loanID uuid.UUID, payment domain.Payment) (*domain.Entry, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	lockQuery := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`

	var loan domain.Loan
	if err = tx.GetContext(ctx, &loan, lockQuery, loanID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrLoanNotFound
		}
		return nil, mapLockError(err)
	}

	if loan.BalanceAmount.IsNegative() || loan.BalanceInterest.IsNegative() {
		return nil, fmt.Errorf("%w: negative balances on loan %s", apperrors.ErrIntegrity, loanID)
	}

	result := domain.CalculateBalance(
		loan.BalanceAmount,
		loan.BalanceInterest,
		loan.InterestRate,
		payment.ReceivedAmount,
		payment.ReceivedInterest,
	)

	// The entry snapshots the pre-update principal the interest was
	// computed against, not the post-payment value.
	entry := domain.NewEntry(loanID, payment, loan.BalanceAmount, result.InterestAccrued)

	insertQuery := `
		INSERT INTO entries (id, loan_id, entry_date, balance_amount, interest_amount, received_date, received_amount, received_interest, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = tx.ExecContext(ctx, insertQuery,
		entry.ID,
		entry.LoanID,
		entry.EntryDate,
		entry.BalanceAmount,
		entry.InterestAmount,
		entry.ReceivedDate,
		entry.ReceivedAmount,
		entry.ReceivedInterest,
		entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	updateQuery := `
		UPDATE loans
		SET balance_amount = $2, balance_interest = $3, interest_received = interest_received + $4, updated_at = $5
		WHERE id = $1
	`

	_, err = tx.ExecContext(ctx, updateQuery,
		loanID,
		result.BalanceAmount,
		result.BalanceInterest,
		payment.ReceivedInterest,
		time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, mapLockError(err)
	}

	return entry, nil
}

func (r *loanRepository) SoftDelete(ctx context.Context, loanID uuid.UUID, at time.Time) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE loans SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		loanID, at,
	)
	if err != nil {
		return 0, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if rows == 0 {
		return 0, r.binStateError(ctx, tx, loanID, apperrors.ErrLoanAlreadyInBin)
	}

	// Same timestamp on the loan and every cascaded entry.
	entRes, err := tx.ExecContext(ctx,
		`UPDATE entries SET deleted_at = $2 WHERE loan_id = $1 AND deleted_at IS NULL`,
		loanID, at,
	)
	if err != nil {
		return 0, err
	}

	entries, err := entRes.RowsAffected()
	if err != nil {
		return 0, err
	}

	return entries, tx.Commit()
}

// Restore un-bins the loan and all of its binned entries, whether they were
// cascaded or binned individually beforehand. That is the documented
// recycle-bin behavior, not an accident.
func (r *loanRepository) Restore(ctx context.Context, loanID uuid.UUID) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE loans SET deleted_at = NULL, updated_at = $2 WHERE id = $1 AND deleted_at IS NOT NULL`,
		loanID, time.Now().UTC(),
	)
	if err != nil {
		return 0, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if rows == 0 {
		return 0, r.binStateError(ctx, tx, loanID, apperrors.ErrLoanNotInBin)
	}

	entRes, err := tx.ExecContext(ctx,
		`UPDATE entries SET deleted_at = NULL WHERE loan_id = $1 AND deleted_at IS NOT NULL`,
		loanID,
	)
	if err != nil {
		return 0, err
	}

	entries, err := entRes.RowsAffected()
	if err != nil {
		return 0, err
	}

	return entries, tx.Commit()
}

func (r *loanRepository) Purge(ctx context.Context, loanID uuid.UUID) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var deletedAt *time.Time
	err = tx.GetContext(ctx, &deletedAt, `SELECT deleted_at FROM loans WHERE id = $1 FOR UPDATE`, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperrors.ErrLoanNotFound
		}
		return 0, err
	}
	if deletedAt == nil {
		return 0, apperrors.ErrLoanNotInBin
	}

	entRes, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE loan_id = $1`, loanID)
	if err != nil {
		return 0, err
	}
	entries, err := entRes.RowsAffected()
	if err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM loans WHERE id = $1`, loanID); err != nil {
		return 0, err
	}

	return entries, tx.Commit()
}

func (r *loanRepository) PurgeDeleted(ctx context.Context) (int64, int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	entRes, err := tx.ExecContext(ctx,
		`DELETE FROM entries WHERE loan_id IN (SELECT id FROM loans WHERE deleted_at IS NOT NULL)`,
	)
	if err != nil {
		return 0, 0, err
	}
	entries, err := entRes.RowsAffected()
	if err != nil {
		return 0, 0, err
	}

	loanRes, err := tx.ExecContext(ctx, `DELETE FROM loans WHERE deleted_at IS NOT NULL`)
	if err != nil {
		return 0, 0, err
	}
	loans, err := loanRes.RowsAffected()
	if err != nil {
		return 0, 0, err
	}

	return loans, entries, tx.Commit()
}

// binStateError distinguishes "loan does not exist" from "loan is in the
// wrong bin state" after a conditional update touched no rows.
func (r *loanRepository) binStateError(ctx context.Context, tx *sqlx.Tx, loanID uuid.UUID, stateErr error) error {
	var exists bool
	if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM loans WHERE id = $1)`, loanID); err != nil {
		return err
	}
	if !exists {
		return apperrors.ErrLoanNotFound
	}
	return stateErr
}

// mapLockError surfaces postgres serialization failures and deadlocks as the
// retryable conflict error.
func mapLockError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "40001" || pqErr.Code == "40P01" {
			return fmt.Errorf("%w: %v", apperrors.ErrConflict, err)
		}
	}
	return err
}
