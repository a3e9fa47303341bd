package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the declared direction of a transaction. It is accepted on input
// only; the stored amount sign carries it afterwards.
type Kind string

const (
	KindCredit Kind = "credit"
	KindDebit  Kind = "debit"
)

// Valid reports whether k is credit or debit.
func (k Kind) Valid() bool {
	return k == KindCredit || k == KindDebit
}

// ParseKind parses a user supplied kind, ignoring case and surrounding space.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	return k, k.Valid()
}

// NormalizeAmount converts a magnitude into a signed amount for kind.
// Debits become non-positive, credits non-negative.
func NormalizeAmount(kind Kind, magnitude decimal.Decimal) decimal.Decimal {
	abs := magnitude.Abs()
	if kind == KindDebit {
		return abs.Neg()
	}
	return abs
}

// Transaction is a dated credit or debit recorded against one account.
type Transaction struct {
	ID            string
	AccountID     string
	Date          time.Time
	Description   string
	Amount        decimal.Decimal
	Memo          string
	Pending       bool
	AttachmentURI string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Kind derives the transaction kind from the stored amount sign.
// Unsaved transactions are treated as debits.
func (t *Transaction) Kind() Kind {
	if t.ID == "" {
		return KindDebit
	}
	if t.Amount.IsNegative() {
		return KindDebit
	}
	return KindCredit
}

// Magnitude returns the absolute amount.
func (t *Transaction) Magnitude() decimal.Decimal {
	return t.Amount.Abs()
}

// HasAttachment reports whether a file is attached.
func (t *Transaction) HasAttachment() bool {
	return t.AttachmentURI != ""
}

// Validate checks the persisted fields of t.
func (t *Transaction) Validate() error {
	verr := NewValidationError()

	description := strings.TrimSpace(t.Description)
	switch {
	case description == "":
		verr.Add("description", "can't be blank")
	case len([]rune(t.Description)) > MaxDescriptionLength:
		verr.Add("description", tooLong(MaxDescriptionLength))
	}

	if t.Date.IsZero() {
		verr.Add("trx_date", "can't be blank")
	}

	if len([]rune(t.Memo)) > MaxMemoLength {
		verr.Add("memo", tooLong(MaxMemoLength))
	}

	return verr.Err()
}

// ValidateTransactionInput checks the raw kind and magnitude supplied by a
// caller before sign normalization.
func ValidateTransactionInput(kind string, magnitude decimal.Decimal) *ValidationError {
	verr := NewValidationError()

	if strings.TrimSpace(kind) == "" {
		verr.Add("trx_type", "can't be blank")
	} else if _, ok := ParseKind(kind); !ok {
		verr.Add("trx_type", "is not included in the list")
	}

	verr.Merge(ValidateMagnitude("amount", magnitude))

	return verr
}

// TruncateDate drops the time of day, keeping the calendar date in UTC.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
