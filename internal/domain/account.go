package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a user's bank account with a cached current balance.
type Account struct {
	ID              string
	UserID          string
	Name            string
	StartingBalance decimal.Decimal
	CurrentBalance  decimal.Decimal
	// PendingBalance is the sum of pending transaction amounts.
	// It is derived on read and never persisted.
	PendingBalance decimal.Decimal
	LastFour       string
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ApplyDelta returns the balance after adding a signed transaction delta.
func (a *Account) ApplyDelta(delta decimal.Decimal) decimal.Decimal {
	return a.CurrentBalance.Add(delta)
}

// NonPendingBalance returns the balance excluding pending transactions.
func (a *Account) NonPendingBalance() decimal.Decimal {
	return a.CurrentBalance.Sub(a.PendingBalance)
}

// ExpectedBalance returns the balance implied by the starting balance and
// the given sum of transaction amounts.
func (a *Account) ExpectedBalance(transactionSum decimal.Decimal) decimal.Decimal {
	return a.StartingBalance.Add(transactionSum)
}
