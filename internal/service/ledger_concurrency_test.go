package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkarayel/loan-ledger/internal/domain"
	"github.com/mkarayel/loan-ledger/internal/service"
	"github.com/mkarayel/loan-ledger/tests/mocks"
)

// Concurrent postings against one loan must serialize: every payment lands on
// the balance left by the previous one, never on a stale read.
func TestLedgerService_PostEntry_ConcurrentPostingsSerialize(t *testing.T) {
	store := mocks.NewMemStore()
	svc := service.NewLedgerService(store, store.EntryStore(), new(mocks.MockPartyRepository), nil, testConfig(), zap.NewNop())

	ctx := context.Background()
	loan := domain.NewLoan(uuid.New(), dec(100), decimal.Zero, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.Create(ctx, loan))

	const workers = 10
	payment := dec(10)
	entryDate := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PostEntry(ctx, loan.ID, &domain.PostEntryRequest{
				EntryDate:      entryDate,
				ReceivedAmount: &payment,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	got, err := svc.GetLoan(ctx, loan.ID)
	require.NoError(t, err)
	assert.True(t, got.BalanceAmount.Equal(decimal.Zero), "lost update: final balance %s", got.BalanceAmount)

	entries, err := svc.ListEntries(ctx, loan.ID)
	require.NoError(t, err)
	require.Len(t, entries, workers)

	// Replay must reproduce the stored balances exactly.
	audit, err := svc.Audit(ctx, loan.ID)
	require.NoError(t, err)
	assert.True(t, audit.Consistent)
}
