package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func TestCalculateBalance(t *testing.T) {
	tests := []struct {
		name             string
		balanceAmount    int64
		balanceInterest  int64
		ratePercent      int64
		receivedAmount   int64
		receivedInterest int64
		wantAmount       int64
		wantInterest     int64
		wantAccrued      int64
		wantTotalDue     int64
	}{
		{
			name:          "accrual only on fresh loan",
			balanceAmount: 1000, ratePercent: 10,
			wantAmount: 1000, wantInterest: 100, wantAccrued: 100, wantTotalDue: 100,
		},
		{
			name:          "payment against principal and interest",
			balanceAmount: 1000, balanceInterest: 100, ratePercent: 10,
			receivedAmount: 200, receivedInterest: 100,
			wantAmount: 800, wantInterest: 100, wantAccrued: 100, wantTotalDue: 200,
		},
		{
			name:          "pending interest is added exactly once",
			balanceAmount: 1000, balanceInterest: 50, ratePercent: 5,
			receivedInterest: 30,
			wantAmount:       1000, wantInterest: 70, wantAccrued: 50, wantTotalDue: 100,
		},
		{
			name:          "principal overpayment floors at zero",
			balanceAmount: 100, ratePercent: 0,
			receivedAmount: 150,
			wantAmount:     0, wantInterest: 0, wantAccrued: 0, wantTotalDue: 0,
		},
		{
			name:          "interest overpayment floors at zero",
			balanceAmount: 1000, balanceInterest: 20, ratePercent: 3,
			receivedInterest: 80,
			wantAmount:       1000, wantInterest: 0, wantAccrued: 30, wantTotalDue: 50,
		},
		{
			name:          "zero rate accrues nothing",
			balanceAmount: 500, balanceInterest: 10, ratePercent: 0,
			receivedAmount: 100,
			wantAmount:     400, wantInterest: 10, wantAccrued: 0, wantTotalDue: 10,
		},
		{
			name:         "fully paid off loan stays at zero",
			ratePercent:  10,
			wantAmount:   0, wantInterest: 0, wantAccrued: 0, wantTotalDue: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateBalance(
				dec(tt.balanceAmount),
				dec(tt.balanceInterest),
				dec(tt.ratePercent),
				dec(tt.receivedAmount),
				dec(tt.receivedInterest),
			)

			assert.True(t, result.BalanceAmount.Equal(dec(tt.wantAmount)),
				"balance amount: got %s want %d", result.BalanceAmount, tt.wantAmount)
			assert.True(t, result.BalanceInterest.Equal(dec(tt.wantInterest)),
				"balance interest: got %s want %d", result.BalanceInterest, tt.wantInterest)
			assert.True(t, result.InterestAccrued.Equal(dec(tt.wantAccrued)),
				"accrued: got %s want %d", result.InterestAccrued, tt.wantAccrued)
			assert.True(t, result.TotalInterestDue.Equal(dec(tt.wantTotalDue)),
				"total due: got %s want %d", result.TotalInterestDue, tt.wantTotalDue)
		})
	}
}

func TestCalculateBalance_FractionalRate(t *testing.T) {
	// 2.5% on 1000 = 25 exactly, no binary float drift
	result := CalculateBalance(dec(1000), decimal.Zero, decimal.RequireFromString("2.5"), decimal.Zero, decimal.Zero)

	assert.True(t, result.InterestAccrued.Equal(dec(25)), "got %s", result.InterestAccrued)
}

func TestCalculateBalance_NeverNegative(t *testing.T) {
	// Fold an aggressive payment sequence and assert balances never dip
	// below zero at any step.
	amount, interest := dec(1000), decimal.Zero
	payments := []struct{ amount, interestPaid int64 }{
		{0, 0}, {600, 500}, {600, 500}, {600, 500}, {0, 100},
	}

	for _, p := range payments {
		result := CalculateBalance(amount, interest, dec(10), dec(p.amount), dec(p.interestPaid))
		assert.False(t, result.BalanceAmount.IsNegative())
		assert.False(t, result.BalanceInterest.IsNegative())
		amount, interest = result.BalanceAmount, result.BalanceInterest
	}

	assert.True(t, amount.Equal(decimal.Zero))
	assert.True(t, interest.Equal(decimal.Zero))
}

func TestReplayEntries(t *testing.T) {
	loanID := uuid.New()
	principal, rate := dec(1000), dec(10)

	// Post two checkpoints through the calculator, capturing entries the
	// way the posting transaction does.
	var entries []*Entry
	amount, interest := principal, decimal.Zero

	for _, p := range []Payment{
		{EntryDate: date(2024, 1, 1)},
		{EntryDate: date(2024, 2, 1), ReceivedAmount: dec(200), ReceivedInterest: dec(100)},
	} {
		result := CalculateBalance(amount, interest, rate, p.ReceivedAmount, p.ReceivedInterest)
		entries = append(entries, NewEntry(loanID, p, amount, result.InterestAccrued))
		amount, interest = result.BalanceAmount, result.BalanceInterest
	}

	require.True(t, amount.Equal(dec(800)))
	require.True(t, interest.Equal(dec(100)))

	replayedAmount, replayedInterest := ReplayEntries(principal, rate, entries)

	assert.True(t, replayedAmount.Equal(amount), "replayed amount %s, stored %s", replayedAmount, amount)
	assert.True(t, replayedInterest.Equal(interest), "replayed interest %s, stored %s", replayedInterest, interest)
}

func TestReplayEntries_NoEntries(t *testing.T) {
	amount, interest := ReplayEntries(dec(5000), dec(7), nil)

	assert.True(t, amount.Equal(dec(5000)))
	assert.True(t, interest.Equal(decimal.Zero))
}

func TestNewEntry_SnapshotsPreUpdateBalance(t *testing.T) {
	loanID := uuid.New()
	payment := Payment{
		EntryDate:        date(2024, 3, 1),
		ReceivedAmount:   dec(250),
		ReceivedInterest: dec(50),
	}

	entry := NewEntry(loanID, payment, dec(1000), dec(100))

	assert.Equal(t, loanID, entry.LoanID)
	assert.True(t, entry.BalanceAmount.Equal(dec(1000)), "entry must snapshot the balance interest accrued on")
	assert.True(t, entry.InterestAmount.Equal(dec(100)))
	assert.True(t, entry.ReceivedAmount.Equal(dec(250)))
	assert.True(t, entry.ReceivedInterest.Equal(dec(50)))
	assert.Nil(t, entry.DeletedAt)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
