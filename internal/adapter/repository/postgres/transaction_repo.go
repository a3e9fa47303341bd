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

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return newTransactionRepository(pool)
}

func newTransactionRepository(db generated.DBTX) *TransactionRepository {
	return &TransactionRepository{queries: generated.New(db)}
}

// Create inserts a transaction inside tx.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Tx, t *domain.Transaction) error {
	return queriesFor(tx).CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:            t.ID,
		AccountID:     t.AccountID,
		TrxDate:       timeToPgDate(t.Date),
		Description:   t.Description,
		Amount:        decimalToNumeric(t.Amount),
		Memo:          stringToPgText(t.Memo),
		Pending:       t.Pending,
		AttachmentUri: stringToPgText(t.AttachmentURI),
		CreatedAt:     timeToPgTimestamptz(t.CreatedAt),
		UpdatedAt:     timeToPgTimestamptz(t.UpdatedAt),
	})
}

// GetByID retrieves a transaction of the account.
func (r *TransactionRepository) GetByID(ctx context.Context, accountID, id string) (*domain.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, generated.GetTransactionParams{AccountID: accountID, ID: id})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return rowToTransaction(row), nil
}

// GetByIDForUpdate retrieves a transaction with a FOR UPDATE lock.
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, accountID, id string) (*domain.Transaction, error) {
	row, err := queriesFor(tx).GetTransactionForUpdate(ctx, generated.GetTransactionForUpdateParams{AccountID: accountID, ID: id})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return rowToTransaction(row), nil
}

// Update writes the editable columns of a transaction.
func (r *TransactionRepository) Update(ctx context.Context, tx usecase.Tx, t *domain.Transaction) error {
	n, err := queriesFor(tx).UpdateTransaction(ctx, generated.UpdateTransactionParams{
		AccountID:   t.AccountID,
		ID:          t.ID,
		TrxDate:     timeToPgDate(t.Date),
		Description: t.Description,
		Amount:      decimalToNumeric(t.Amount),
		Memo:        stringToPgText(t.Memo),
		Pending:     t.Pending,
		UpdatedAt:   timeToPgTimestamptz(t.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// Delete removes a transaction inside tx.
func (r *TransactionRepository) Delete(ctx context.Context, tx usecase.Tx, accountID, id string) error {
	n, err := queriesFor(tx).DeleteTransaction(ctx, generated.DeleteTransactionParams{AccountID: accountID, ID: id})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// ListByAccount returns all transactions of the account in display order.
// A nil tx reads through the pool.
func (r *TransactionRepository) ListByAccount(ctx context.Context, tx usecase.Tx, accountID string) ([]*domain.Transaction, error) {
	queries := r.queries
	if tx != nil {
		queries = queriesFor(tx)
	}

	rows, err := queries.ListTransactionsByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	transactions := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		transactions = append(transactions, rowToTransaction(row))
	}

	return transactions, nil
}

// SumByAccount sums every amount of the account. A nil tx reads through
// the pool.
func (r *TransactionRepository) SumByAccount(ctx context.Context, tx usecase.Tx, accountID string) (decimal.Decimal, error) {
	queries := r.queries
	if tx != nil {
		queries = queriesFor(tx)
	}

	total, err := queries.SumTransactionsByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}

// SetAttachment records (or clears, with an empty uri) the attachment URI.
func (r *TransactionRepository) SetAttachment(ctx context.Context, accountID, id, uri string, updatedAt time.Time) error {
	n, err := r.queries.SetTransactionAttachment(ctx, generated.SetTransactionAttachmentParams{
		AccountID:     accountID,
		ID:            id,
		AttachmentUri: stringToPgText(uri),
		UpdatedAt:     timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

func rowToTransaction(row generated.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:            row.ID,
		AccountID:     row.AccountID,
		Date:          row.TrxDate.Time,
		Description:   row.Description,
		Amount:        numericToDecimal(row.Amount),
		Memo:          row.Memo.String,
		Pending:       row.Pending,
		AttachmentURI: row.AttachmentUri.String,
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}
}
