package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/gobalance/internal/domain"
	"github.com/iho/gobalance/internal/infrastructure/postgres/generated"
	"github.com/iho/gobalance/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return newAccountRepository(pool)
}

func newAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{queries: generated.New(db)}
}

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	return r.queries.CreateAccount(ctx, generated.CreateAccountParams{
		ID:              account.ID,
		UserID:          account.UserID,
		Name:            account.Name,
		StartingBalance: decimalToNumeric(account.StartingBalance),
		CurrentBalance:  decimalToNumeric(account.CurrentBalance),
		LastFour:        stringToPgText(account.LastFour),
		Active:          account.Active,
		CreatedAt:       timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:       timeToPgTimestamptz(account.UpdatedAt),
	})
}

// GetByID retrieves one of the user's accounts with its pending balance.
func (r *AccountRepository) GetByID(ctx context.Context, userID, id string) (*domain.Account, error) {
	return getAccountByUser(ctx, r.queries, userID, id)
}

// GetByIDInTx is GetByID inside tx. It takes no row lock.
func (r *AccountRepository) GetByIDInTx(ctx context.Context, tx usecase.Tx, userID, id string) (*domain.Account, error) {
	return getAccountByUser(ctx, queriesFor(tx), userID, id)
}

func getAccountByUser(ctx context.Context, queries *generated.Queries, userID, id string) (*domain.Account, error) {
	row, err := queries.GetAccountByUser(ctx, generated.GetAccountByUserParams{UserID: userID, ID: id})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	account := rowToAccount(generated.Account{
		ID:              row.ID,
		UserID:          row.UserID,
		Name:            row.Name,
		StartingBalance: row.StartingBalance,
		CurrentBalance:  row.CurrentBalance,
		LastFour:        row.LastFour,
		Active:          row.Active,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	})
	account.PendingBalance = numericToDecimal(row.PendingBalance)

	return account, nil
}

// GetByIDForUpdate retrieves an account with a FOR UPDATE lock.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, userID, id string) (*domain.Account, error) {
	row, err := queriesFor(tx).GetAccountForUpdate(ctx, generated.GetAccountForUpdateParams{UserID: userID, ID: id})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// ListByUser lists the user's active or inactive accounts.
func (r *AccountRepository) ListByUser(ctx context.Context, userID string, active bool) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccountsByUser(ctx, generated.ListAccountsByUserParams{UserID: userID, Active: active})
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		account := rowToAccount(generated.Account{
			ID:              row.ID,
			UserID:          row.UserID,
			Name:            row.Name,
			StartingBalance: row.StartingBalance,
			CurrentBalance:  row.CurrentBalance,
			LastFour:        row.LastFour,
			Active:          row.Active,
			CreatedAt:       row.CreatedAt,
			UpdatedAt:       row.UpdatedAt,
		})
		account.PendingBalance = numericToDecimal(row.PendingBalance)
		accounts = append(accounts, account)
	}

	return accounts, nil
}

// Update writes every editable column of a locked account.
func (r *AccountRepository) Update(ctx context.Context, tx usecase.Tx, account *domain.Account) error {
	n, err := queriesFor(tx).UpdateAccount(ctx, generated.UpdateAccountParams{
		ID:              account.ID,
		Name:            account.Name,
		StartingBalance: decimalToNumeric(account.StartingBalance),
		CurrentBalance:  decimalToNumeric(account.CurrentBalance),
		LastFour:        stringToPgText(account.LastFour),
		Active:          account.Active,
		UpdatedAt:       timeToPgTimestamptz(account.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// UpdateBalance overwrites the cached current balance.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Tx, id string, balance decimal.Decimal, updatedAt time.Time) error {
	n, err := queriesFor(tx).UpdateAccountBalance(ctx, generated.UpdateAccountBalanceParams{
		ID:             id,
		CurrentBalance: decimalToNumeric(balance),
		UpdatedAt:      timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// SetActive toggles the active flag.
func (r *AccountRepository) SetActive(ctx context.Context, userID, id string, active bool, updatedAt time.Time) error {
	n, err := r.queries.SetAccountActive(ctx, generated.SetAccountActiveParams{
		UserID:    userID,
		ID:        id,
		Active:    active,
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// Delete removes the account; its transactions cascade.
func (r *AccountRepository) Delete(ctx context.Context, userID, id string) error {
	n, err := r.queries.DeleteAccount(ctx, generated.DeleteAccountParams{UserID: userID, ID: id})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:              row.ID,
		UserID:          row.UserID,
		Name:            row.Name,
		StartingBalance: numericToDecimal(row.StartingBalance),
		CurrentBalance:  numericToDecimal(row.CurrentBalance),
		PendingBalance:  decimal.Zero,
		LastFour:        row.LastFour.String,
		Active:          row.Active,
		CreatedAt:       row.CreatedAt.Time,
		UpdatedAt:       row.UpdatedAt.Time,
	}
}
