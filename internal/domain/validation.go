package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxAccountNameLength = 255
	MaxDescriptionLength = 150
	MaxMemoLength        = 500
	MinPasswordLength    = 8
	MaxPasswordLength    = 72 // bcrypt ignores anything longer
	LastFourLength       = 4

	DefaultPerPage = 10
	MaxPerPage     = 100

	// AmountScale is the number of decimal places money columns store.
	AmountScale = 2
)

// amountLimit is the smallest magnitude a NUMERIC(19, 2) column rejects.
var amountLimit = decimal.New(1, 17)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	lastFourRegex = regexp.MustCompile(`^[0-9]{4}$`)
)

func tooLong(n int) string {
	return fmt.Sprintf("is too long (maximum is %d characters)", n)
}

func tooShort(n int) string {
	return fmt.Sprintf("is too short (minimum is %d characters)", n)
}

// Validate checks the editable fields of an account.
func (a *Account) Validate() error {
	verr := NewValidationError()

	name := strings.TrimSpace(a.Name)
	switch {
	case name == "":
		verr.Add("name", "can't be blank")
	case len([]rune(a.Name)) > MaxAccountNameLength:
		verr.Add("name", tooLong(MaxAccountNameLength))
	}

	if a.LastFour != "" && !lastFourRegex.MatchString(a.LastFour) {
		verr.Add("last_four", fmt.Sprintf("must be %d digits", LastFourLength))
	}

	starting := ValidateAmount("starting_balance", a.StartingBalance)
	if !starting.HasErrors() && !AmountInRange(a.CurrentBalance) {
		starting.Add("starting_balance", "would move the current balance out of range")
	}
	verr.Merge(starting)

	return verr.Err()
}

// Validate checks a user's profile fields. Passwords are validated separately
// because only their hash is stored.
func (u *User) Validate() error {
	verr := NewValidationError()

	if strings.TrimSpace(u.Email) == "" {
		verr.Add("email", "can't be blank")
	} else if err := ValidateEmail(u.Email); err != nil {
		verr.Add("email", "is invalid")
	}
	if strings.TrimSpace(u.FirstName) == "" {
		verr.Add("first_name", "can't be blank")
	}
	if strings.TrimSpace(u.LastName) == "" {
		verr.Add("last_name", "can't be blank")
	}
	if strings.TrimSpace(u.Timezone) == "" {
		verr.Add("timezone", "can't be blank")
	} else if _, err := time.LoadLocation(u.Timezone); err != nil {
		verr.Add("timezone", "is not a valid timezone")
	}

	return verr.Err()
}

// ValidateEmail validates email format
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if !emailRegex.MatchString(email) {
		return fmt.Errorf("%w: email is invalid", ErrValidation)
	}

	return nil
}

// ValidatePassword checks password length and confirmation.
func ValidatePassword(password, confirmation string) *ValidationError {
	verr := NewValidationError()

	switch {
	case password == "":
		verr.Add("password", "can't be blank")
	case len(password) < MinPasswordLength:
		verr.Add("password", tooShort(MinPasswordLength))
	case len(password) > MaxPasswordLength:
		verr.Add("password", tooLong(MaxPasswordLength))
	}

	if password != confirmation {
		verr.Add("password_confirmation", "doesn't match Password")
	}

	return verr
}

// ValidateMagnitude rejects negative amounts entered by a caller, along with
// anything ValidateAmount rejects.
func ValidateMagnitude(field string, amount decimal.Decimal) *ValidationError {
	verr := NewValidationError()
	if amount.IsNegative() {
		verr.Add(field, "must be greater than or equal to 0")
	}
	verr.Merge(ValidateAmount(field, amount))
	return verr
}

// ValidateAmount checks that amount can be stored exactly: no more than
// AmountScale decimal places and a magnitude below 10^17.
func ValidateAmount(field string, amount decimal.Decimal) *ValidationError {
	verr := NewValidationError()
	if !amount.Equal(amount.Truncate(AmountScale)) {
		verr.Add(field, fmt.Sprintf("must have at most %d decimal places", AmountScale))
	}
	if !AmountInRange(amount) {
		verr.Add(field, "must be less than "+amountLimit.String()+" in magnitude")
	}
	return verr
}

// AmountInRange reports whether a money column can hold amount.
func AmountInRange(amount decimal.Decimal) bool {
	return amount.Abs().LessThan(amountLimit)
}

// ValidatePagination clamps page and perPage to sane bounds.
func ValidatePagination(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}

	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	return page, perPage
}
