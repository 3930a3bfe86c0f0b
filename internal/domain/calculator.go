package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// BalanceResult is the outcome of applying one accrual checkpoint to a loan.
type BalanceResult struct {
	BalanceAmount    decimal.Decimal // outstanding principal after the payment
	BalanceInterest  decimal.Decimal // pending interest after the payment
	InterestAccrued  decimal.Decimal // interest accrued this period, stored on the entry
	TotalInterestDue decimal.Decimal // pending interest before the payment, display only
}

// CalculateBalance applies one accrual checkpoint and an optional payment to
// the current loan balances. Interest accrues on the outstanding principal at
// the simple per-period percentage rate. Balances floor at zero: an
// overpayment is capped, not carried forward as credit.
//
// This is a total function. Negative payments or rates are rejected by the
// caller before it is reached.
func CalculateBalance(balanceAmount, balanceInterest, ratePercent, receivedAmount, receivedInterest decimal.Decimal) BalanceResult {
	accrued := balanceAmount.Mul(ratePercent).Div(hundred)
	totalDue := balanceInterest.Add(accrued)

	newInterest := totalDue.Sub(receivedInterest)
	if newInterest.IsNegative() {
		newInterest = decimal.Zero
	}

	newAmount := balanceAmount.Sub(receivedAmount)
	if newAmount.IsNegative() {
		newAmount = decimal.Zero
	}

	return BalanceResult{
		BalanceAmount:    newAmount,
		BalanceInterest:  newInterest,
		InterestAccrued:  accrued,
		TotalInterestDue: totalDue,
	}
}

// ReplayEntries folds CalculateBalance over entries in posting order starting
// from (principal, 0) and returns the resulting balances. For a consistent
// loan the result equals the stored denormalized balances; the audit endpoint
// and tests use it to verify that.
//
// Callers pass live entries only, ordered by entry date then creation time.
func ReplayEntries(principal, ratePercent decimal.Decimal, entries []*Entry) (balanceAmount, balanceInterest decimal.Decimal) {
	balanceAmount, balanceInterest = principal, decimal.Zero
	for _, e := range entries {
		res := CalculateBalance(balanceAmount, balanceInterest, ratePercent, e.ReceivedAmount, e.ReceivedInterest)
		balanceAmount, balanceInterest = res.BalanceAmount, res.BalanceInterest
	}
	return balanceAmount, balanceInterest
}
