package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// RunningBalance pairs a transaction with the account balance right after it.
type RunningBalance struct {
	Transaction *Transaction
	Balance     decimal.Decimal
}

// DisplayLess orders transactions for display: pending first, then newest
// date first, then highest id first.
func DisplayLess(a, b *Transaction) bool {
	if a.Pending != b.Pending {
		return a.Pending
	}
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	return a.ID > b.ID
}

// SortForDisplay sorts txs in place by DisplayLess.
func SortForDisplay(txs []*Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return DisplayLess(txs[i], txs[j])
	})
}

// ComputeRunningBalances annotates txs with running balances, seeded with
// opening (the account's starting balance). The result is in display order;
// the first entry's balance equals opening plus the sum of all amounts.
// The input slice is not modified.
func ComputeRunningBalances(opening decimal.Decimal, txs []*Transaction) []RunningBalance {
	if len(txs) == 0 {
		return []RunningBalance{}
	}

	ordered := make([]*Transaction, len(txs))
	copy(ordered, txs)
	SortForDisplay(ordered)

	result := make([]RunningBalance, len(ordered))
	balance := opening
	// walk oldest first
	for i := len(ordered) - 1; i >= 0; i-- {
		balance = balance.Add(ordered[i].Amount)
		result[i] = RunningBalance{Transaction: ordered[i], Balance: balance}
	}

	return result
}

// SumAmounts returns the signed sum of all amounts.
func SumAmounts(txs []*Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txs {
		sum = sum.Add(t.Amount)
	}
	return sum
}
