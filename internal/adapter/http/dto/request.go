package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobalance/internal/usecase"
)

// DateLayout is the wire format of transaction dates.
const DateLayout = "2006-01-02"

// RegisterRequest represents a sign-up request.
type RegisterRequest struct {
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required"`
	FirstName            string `json:"first_name" validate:"required,max=100"`
	LastName             string `json:"last_name" validate:"required,max=100"`
	Timezone             string `json:"timezone" validate:"required,timezone"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterRequest) ToUseCaseInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		Email:                r.Email,
		Password:             r.Password,
		PasswordConfirmation: r.PasswordConfirmation,
		FirstName:            r.FirstName,
		LastName:             r.LastName,
		Timezone:             r.Timezone,
	}
}

// UpdateUserRequest represents a partial profile update.
type UpdateUserRequest struct {
	Email                *string `json:"email,omitempty" validate:"omitnil,email,max=255"`
	Password             *string `json:"password,omitempty"`
	PasswordConfirmation *string `json:"password_confirmation,omitempty"`
	FirstName            *string `json:"first_name,omitempty" validate:"omitnil,max=100"`
	LastName             *string `json:"last_name,omitempty" validate:"omitnil,max=100"`
	Timezone             *string `json:"timezone,omitempty" validate:"omitnil,timezone"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateUserRequest) ToUseCaseInput(userID string) usecase.UpdateUserInput {
	return usecase.UpdateUserInput{
		ID:                   userID,
		Email:                r.Email,
		FirstName:            r.FirstName,
		LastName:             r.LastName,
		Timezone:             r.Timezone,
		Password:             r.Password,
		PasswordConfirmation: r.PasswordConfirmation,
	}
}

// LoginRequest represents a token request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name            string          `json:"name" validate:"required,max=255"`
	StartingBalance decimal.Decimal `json:"starting_balance"`
	LastFour        string          `json:"last_four,omitempty" validate:"omitempty,len=4,numeric"`
	Active          *bool           `json:"active,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput(userID string) usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		UserID:          userID,
		Name:            r.Name,
		StartingBalance: r.StartingBalance,
		LastFour:        r.LastFour,
		Active:          r.Active,
	}
}

// UpdateAccountRequest represents a partial account update.
type UpdateAccountRequest struct {
	Name            *string          `json:"name,omitempty" validate:"omitnil,max=255"`
	StartingBalance *decimal.Decimal `json:"starting_balance,omitempty"`
	LastFour        *string          `json:"last_four,omitempty" validate:"omitempty,len=4,numeric"`
	Active          *bool            `json:"active,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateAccountRequest) ToUseCaseInput(userID, accountID string) usecase.UpdateAccountInput {
	return usecase.UpdateAccountInput{
		UserID:          userID,
		ID:              accountID,
		Name:            r.Name,
		StartingBalance: r.StartingBalance,
		LastFour:        r.LastFour,
		Active:          r.Active,
	}
}

// CreateTransactionRequest represents a request to record a transaction.
// Amount is the unsigned magnitude; TrxType decides the sign.
type CreateTransactionRequest struct {
	TrxType     string           `json:"trx_type" validate:"required"`
	TrxDate     string           `json:"trx_date" validate:"required,datetime=2006-01-02"`
	Description string           `json:"description" validate:"required,max=150"`
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	Memo        string           `json:"memo,omitempty" validate:"max=500"`
	Pending     bool             `json:"pending"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransactionRequest) ToUseCaseInput(userID, accountID string) (usecase.CreateTransactionInput, error) {
	date, err := time.Parse(DateLayout, r.TrxDate)
	if err != nil {
		return usecase.CreateTransactionInput{}, err
	}

	return usecase.CreateTransactionInput{
		UserID:      userID,
		AccountID:   accountID,
		Kind:        r.TrxType,
		Date:        date,
		Description: r.Description,
		Amount:      *r.Amount,
		Memo:        r.Memo,
		Pending:     r.Pending,
	}, nil
}

// UpdateTransactionRequest represents a partial transaction update.
type UpdateTransactionRequest struct {
	TrxType     *string          `json:"trx_type,omitempty"`
	TrxDate     *string          `json:"trx_date,omitempty" validate:"omitnil,datetime=2006-01-02"`
	Description *string          `json:"description,omitempty" validate:"omitnil,max=150"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Memo        *string          `json:"memo,omitempty" validate:"omitnil,max=500"`
	Pending     *bool            `json:"pending,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateTransactionRequest) ToUseCaseInput(userID, accountID, id string) (usecase.UpdateTransactionInput, error) {
	input := usecase.UpdateTransactionInput{
		UserID:      userID,
		AccountID:   accountID,
		ID:          id,
		Kind:        r.TrxType,
		Description: r.Description,
		Amount:      r.Amount,
		Memo:        r.Memo,
		Pending:     r.Pending,
	}

	if r.TrxDate != nil {
		date, err := time.Parse(DateLayout, *r.TrxDate)
		if err != nil {
			return usecase.UpdateTransactionInput{}, err
		}
		input.Date = &date
	}

	return input, nil
}
