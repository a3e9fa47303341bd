package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobalance/internal/domain"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	txManager   TxManager
	accountRepo AccountRepository
	idGen       IDGenerator
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(txManager TxManager, accountRepo AccountRepository, idGen IDGenerator) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		idGen:       idGen,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	UserID          string
	Name            string
	StartingBalance decimal.Decimal
	LastFour        string
	Active          *bool
}

// UpdateAccountInput carries the fields to change. Nil fields are kept.
type UpdateAccountInput struct {
	UserID          string
	ID              string
	Name            *string
	StartingBalance *decimal.Decimal
	LastFour        *string
	Active          *bool
}

// CreateAccount creates a new account whose current balance starts at the
// starting balance.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	now := time.Now().UTC()

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	account := &domain.Account{
		UserID:          input.UserID,
		Name:            strings.TrimSpace(input.Name),
		StartingBalance: input.StartingBalance,
		CurrentBalance:  input.StartingBalance,
		PendingBalance:  decimal.Zero,
		LastFour:        strings.TrimSpace(input.LastFour),
		Active:          active,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}

	account.ID = uc.idGen.Generate()
	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves one of the user's accounts.
func (uc *AccountUseCase) GetAccount(ctx context.Context, userID, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, userID, id)
}

// ListAccounts lists the user's active or inactive accounts.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, userID string, active bool) ([]*domain.Account, error) {
	return uc.accountRepo.ListByUser(ctx, userID, active)
}

// UpdateAccount edits an account. Changing the starting balance shifts the
// current balance by the same amount so it stays equal to the starting
// balance plus all transactions.
func (uc *AccountUseCase) UpdateAccount(ctx context.Context, input UpdateAccountInput) (*domain.Account, error) {
	var result *domain.Account
	_, err := withinTx(ctx, uc.txManager, func(ctx context.Context, tx Tx) (decimal.Decimal, error) {
		account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.UserID, input.ID)
		if err != nil {
			return decimal.Zero, err
		}

		if input.Name != nil {
			account.Name = strings.TrimSpace(*input.Name)
		}
		if input.LastFour != nil {
			account.LastFour = strings.TrimSpace(*input.LastFour)
		}
		if input.Active != nil {
			account.Active = *input.Active
		}

		delta := decimal.Zero
		if input.StartingBalance != nil {
			delta = input.StartingBalance.Sub(account.StartingBalance)
			account.StartingBalance = *input.StartingBalance
			account.CurrentBalance = account.ApplyDelta(delta)
		}

		if err := account.Validate(); err != nil {
			return decimal.Zero, err
		}

		account.UpdatedAt = time.Now().UTC()
		if err := uc.accountRepo.Update(ctx, tx, account); err != nil {
			return decimal.Zero, err
		}

		result = account
		return delta, nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ActivateAccount marks the account active.
func (uc *AccountUseCase) ActivateAccount(ctx context.Context, userID, id string) error {
	return uc.accountRepo.SetActive(ctx, userID, id, true, time.Now().UTC())
}

// DeactivateAccount soft-disables the account. Its transactions are kept.
func (uc *AccountUseCase) DeactivateAccount(ctx context.Context, userID, id string) error {
	return uc.accountRepo.SetActive(ctx, userID, id, false, time.Now().UTC())
}

// DeleteAccount removes the account and, through the foreign key, all of its
// transactions.
func (uc *AccountUseCase) DeleteAccount(ctx context.Context, userID, id string) error {
	return uc.accountRepo.Delete(ctx, userID, id)
}
