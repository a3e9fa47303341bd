package usecase

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobalance/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// AccountRepository defines data access for accounts. Every lookup is scoped
// to the owning user; foreign accounts are reported as domain.ErrAccountNotFound.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, userID, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Tx, userID, id string) (*domain.Account, error)
	// GetByIDInTx reads the account, with its pending balance, inside tx
	// without locking it.
	GetByIDInTx(ctx context.Context, tx Tx, userID, id string) (*domain.Account, error)
	ListByUser(ctx context.Context, userID string, active bool) ([]*domain.Account, error)
	Update(ctx context.Context, tx Tx, account *domain.Account) error
	UpdateBalance(ctx context.Context, tx Tx, id string, balance decimal.Decimal, updatedAt time.Time) error
	SetActive(ctx context.Context, userID, id string, active bool, updatedAt time.Time) error
	Delete(ctx context.Context, userID, id string) error
}

// TransactionRepository defines data access for account transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx Tx, transaction *domain.Transaction) error
	GetByID(ctx context.Context, accountID, id string) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx Tx, accountID, id string) (*domain.Transaction, error)
	Update(ctx context.Context, tx Tx, transaction *domain.Transaction) error
	Delete(ctx context.Context, tx Tx, accountID, id string) error
	// ListByAccount returns every transaction of the account in display order.
	// A nil tx reads outside any transaction.
	ListByAccount(ctx context.Context, tx Tx, accountID string) ([]*domain.Transaction, error)
	SumByAccount(ctx context.Context, tx Tx, accountID string) (decimal.Decimal, error)
	SetAttachment(ctx context.Context, accountID, id, uri string, updatedAt time.Time) error
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
}

// Tx represents a database transaction.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TxManager handles transaction lifecycle.
type TxManager interface {
	Begin(ctx context.Context) (Tx, error)
	// BeginSnapshot starts a read-only transaction in which every read sees
	// the same committed state.
	BeginSnapshot(ctx context.Context) (Tx, error)
}

// Retrier re-runs fn while it fails with a transient storage error.
type Retrier interface {
	Retry(ctx context.Context, fn func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// AttachmentStore keeps transaction attachments in object storage.
type AttachmentStore interface {
	// Put stores the object and returns its URI.
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, uri string) error
	// URL returns a URL clients can fetch the object from.
	URL(uri string) string
}

// MutationObserver is notified after each transaction lifecycle operation.
type MutationObserver interface {
	ObserveMutation(op string, delta decimal.Decimal, err error)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key so a failed request can be retried.
	Release(ctx context.Context, key string) error
}
