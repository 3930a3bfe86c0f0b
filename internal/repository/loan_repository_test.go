package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarayel/loan-ledger/internal/domain"
	"github.com/mkarayel/loan-ledger/internal/repository"
	apperrors "github.com/mkarayel/loan-ledger/pkg/errors"
)

var loanCols = []string{
	"id", "party_id", "principal", "interest_rate", "balance_amount", "balance_interest",
	"interest_received", "origination_date", "deleted_at", "created_at", "updated_at",
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func loanRow(id uuid.UUID, balanceAmount, balanceInterest string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(loanCols).AddRow(
		id, uuid.New(), "1000", "10", balanceAmount, balanceInterest,
		"0", now, nil, now, now,
	)
}

func TestLoanRepository_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		loanID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM loans WHERE id = \$1`).
			WithArgs(loanID).
			WillReturnRows(loanRow(loanID, "800", "100"))

		loan, err := repository.NewLoanRepository(db).GetByID(context.Background(), loanID)

		require.NoError(t, err)
		assert.Equal(t, loanID, loan.ID)
		assert.True(t, loan.BalanceAmount.Equal(decimal.NewFromInt(800)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		loanID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM loans WHERE id = \$1`).
			WithArgs(loanID).
			WillReturnRows(sqlmock.NewRows(loanCols))

		_, err := repository.NewLoanRepository(db).GetByID(context.Background(), loanID)

		assert.ErrorIs(t, err, apperrors.ErrLoanNotFound)
	})
}

func TestLoanRepository_PostEntry(t *testing.T) {
	loanID := uuid.New()
	entryDate := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	payment := domain.Payment{
		EntryDate:        entryDate,
		ReceivedAmount:   decimal.NewFromInt(200),
		ReceivedInterest: decimal.NewFromInt(100),
	}

	t.Run("locks, inserts the snapshot and updates balances in one transaction", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM loans WHERE id = \$1 AND deleted_at IS NULL FOR UPDATE`).
			WithArgs(loanID).
			WillReturnRows(loanRow(loanID, "1000", "100"))
		// 10% on 1000 accrues 100; the entry snapshots the pre-update balance.
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO entries`)).
			WithArgs(
				sqlmock.AnyArg(), loanID, entryDate,
				decimal.NewFromInt(1000), decimal.NewFromInt(100),
				nil, decimal.NewFromInt(200), decimal.NewFromInt(100),
				sqlmock.AnyArg(),
			).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE loans`)).
			WithArgs(loanID, decimal.NewFromInt(800), decimal.NewFromInt(100), decimal.NewFromInt(100), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		entry, err := repository.NewLoanRepository(db).PostEntry(context.Background(), loanID, payment)

		require.NoError(t, err)
		assert.True(t, entry.BalanceAmount.Equal(decimal.NewFromInt(1000)))
		assert.True(t, entry.InterestAmount.Equal(decimal.NewFromInt(100)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("binned or missing loan aborts before writing", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM loans WHERE id = \$1 AND deleted_at IS NULL FOR UPDATE`).
			WithArgs(loanID).
			WillReturnRows(sqlmock.NewRows(loanCols))
		mock.ExpectRollback()

		_, err := repository.NewLoanRepository(db).PostEntry(context.Background(), loanID, payment)

		assert.ErrorIs(t, err, apperrors.ErrLoanNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls the balance update back", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM loans WHERE id = \$1 AND deleted_at IS NULL FOR UPDATE`).
			WithArgs(loanID).
			WillReturnRows(loanRow(loanID, "1000", "100"))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO entries`)).
			WillReturnError(assert.AnError)
		mock.ExpectRollback()

		_, err := repository.NewLoanRepository(db).PostEntry(context.Background(), loanID, payment)

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("serialization failure on commit maps to conflict", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM loans WHERE id = \$1 AND deleted_at IS NULL FOR UPDATE`).
			WithArgs(loanID).
			WillReturnRows(loanRow(loanID, "1000", "100"))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO entries`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE loans`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit().WillReturnError(&pq.Error{Code: "40001"})

		_, err := repository.NewLoanRepository(db).PostEntry(context.Background(), loanID, payment)

		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestLoanRepository_SoftDelete(t *testing.T) {
	loanID := uuid.New()
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("cascades with one shared timestamp", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE loans SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`)).
			WithArgs(loanID, at).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE entries SET deleted_at = $2 WHERE loan_id = $1 AND deleted_at IS NULL`)).
			WithArgs(loanID, at).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectCommit()

		entries, err := repository.NewLoanRepository(db).SoftDelete(context.Background(), loanID, at)

		require.NoError(t, err)
		assert.Equal(t, int64(3), entries)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already binned", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE loans SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`)).
			WithArgs(loanID, at).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM loans WHERE id = $1)`)).
			WithArgs(loanID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		_, err := repository.NewLoanRepository(db).SoftDelete(context.Background(), loanID, at)

		assert.ErrorIs(t, err, apperrors.ErrLoanAlreadyInBin)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE loans SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`)).
			WithArgs(loanID, at).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM loans WHERE id = $1)`)).
			WithArgs(loanID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectRollback()

		_, err := repository.NewLoanRepository(db).SoftDelete(context.Background(), loanID, at)

		assert.ErrorIs(t, err, apperrors.ErrLoanNotFound)
	})
}

func TestLoanRepository_Restore(t *testing.T) {
	loanID := uuid.New()

	t.Run("un-bins all binned entries", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE loans SET deleted_at = NULL, updated_at = $2 WHERE id = $1 AND deleted_at IS NOT NULL`)).
			WithArgs(loanID, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE entries SET deleted_at = NULL WHERE loan_id = $1 AND deleted_at IS NOT NULL`)).
			WithArgs(loanID).
			WillReturnResult(sqlmock.NewResult(0, 4))
		mock.ExpectCommit()

		entries, err := repository.NewLoanRepository(db).Restore(context.Background(), loanID)

		require.NoError(t, err)
		assert.Equal(t, int64(4), entries)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("live loan is not in bin", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE loans SET deleted_at = NULL, updated_at = $2 WHERE id = $1 AND deleted_at IS NOT NULL`)).
			WithArgs(loanID, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM loans WHERE id = $1)`)).
			WithArgs(loanID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		_, err := repository.NewLoanRepository(db).Restore(context.Background(), loanID)

		assert.ErrorIs(t, err, apperrors.ErrLoanNotInBin)
	})
}

func TestLoanRepository_Purge(t *testing.T) {
	loanID := uuid.New()

	t.Run("removes binned loan with entries", func(t *testing.T) {
		db, mock := newMockDB(t)
		deletedAt := time.Now().UTC()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT deleted_at FROM loans WHERE id = $1 FOR UPDATE`)).
			WithArgs(loanID).
			WillReturnRows(sqlmock.NewRows([]string{"deleted_at"}).AddRow(deletedAt))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM entries WHERE loan_id = $1`)).
			WithArgs(loanID).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM loans WHERE id = $1`)).
			WithArgs(loanID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		entries, err := repository.NewLoanRepository(db).Purge(context.Background(), loanID)

		require.NoError(t, err)
		assert.Equal(t, int64(2), entries)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("live loan cannot be purged", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT deleted_at FROM loans WHERE id = $1 FOR UPDATE`)).
			WithArgs(loanID).
			WillReturnRows(sqlmock.NewRows([]string{"deleted_at"}).AddRow(nil))
		mock.ExpectRollback()

		_, err := repository.NewLoanRepository(db).Purge(context.Background(), loanID)

		assert.ErrorIs(t, err, apperrors.ErrLoanNotInBin)
	})
}

func TestLoanRepository_PurgeDeleted(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM entries WHERE loan_id IN (SELECT id FROM loans WHERE deleted_at IS NOT NULL)`)).
		WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM loans WHERE deleted_at IS NOT NULL`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	loans, entries, err := repository.NewLoanRepository(db).PurgeDeleted(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(2), loans)
	assert.Equal(t, int64(7), entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}
