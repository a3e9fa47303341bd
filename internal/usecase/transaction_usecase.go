package usecase

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gobalance/internal/domain"
)

// TransactionUseCase creates, updates and deletes account transactions while
// keeping the owning account's cached balance in step. Each mutation runs in
// one database transaction with the account row locked.
type TransactionUseCase struct {
	txManager       TxManager
	accountRepo     AccountRepository
	transactionRepo TransactionRepository
	idGen           IDGenerator
	retrier         Retrier
	attachments     AttachmentStore
	observer        MutationObserver
	now             func() time.Time
}

// TransactionUseCaseConfig wires a TransactionUseCase. Retrier, Attachments,
// Observer and Now are optional.
type TransactionUseCaseConfig struct {
	TxManager       TxManager
	AccountRepo     AccountRepository
	TransactionRepo TransactionRepository
	IDGen           IDGenerator
	Retrier         Retrier
	Attachments     AttachmentStore
	Observer        MutationObserver
	Now             func() time.Time
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(cfg TransactionUseCaseConfig) *TransactionUseCase {
	uc := &TransactionUseCase{
		txManager:       cfg.TxManager,
		accountRepo:     cfg.AccountRepo,
		transactionRepo: cfg.TransactionRepo,
		idGen:           cfg.IDGen,
		retrier:         cfg.Retrier,
		attachments:     cfg.Attachments,
		observer:        cfg.Observer,
		now:             cfg.Now,
	}
	if uc.retrier == nil {
		uc.retrier = noRetry{}
	}
	if uc.observer == nil {
		uc.observer = noopObserver{}
	}
	if uc.now == nil {
		uc.now = func() time.Time { return time.Now().UTC() }
	}
	return uc
}

// CreateTransactionInput represents input for recording a transaction.
// Amount is the unsigned magnitude; Kind decides the stored sign.
type CreateTransactionInput struct {
	UserID      string
	AccountID   string
	Kind        string
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Memo        string
	Pending     bool
}

// UpdateTransactionInput carries the fields to change. Nil fields are kept.
type UpdateTransactionInput struct {
	UserID      string
	AccountID   string
	ID          string
	Kind        *string
	Date        *time.Time
	Description *string
	Amount      *decimal.Decimal
	Memo        *string
	Pending     *bool
}

// ListTransactionsInput selects one page of an account's history.
type ListTransactionsInput struct {
	UserID    string
	AccountID string
	Page      int
	PerPage   int
}

// TransactionPage is one page of running-balance entries in display order.
type TransactionPage struct {
	Account *domain.Account
	Entries []domain.RunningBalance
	Page    int
	PerPage int
	Total   int
}

// Pages returns the number of pages available.
func (p *TransactionPage) Pages() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

// AttachFileInput carries an uploaded attachment.
type AttachFileInput struct {
	UserID      string
	AccountID   string
	ID          string
	Filename    string
	ContentType string
	Body        io.Reader
}

// CreateTransaction records a transaction and adds its signed amount to the
// account balance.
func (uc *TransactionUseCase) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error) {
	verr := domain.ValidateTransactionInput(input.Kind, input.Amount)
	kind, _ := domain.ParseKind(input.Kind)

	transaction := &domain.Transaction{
		AccountID:   input.AccountID,
		Date:        domain.TruncateDate(input.Date),
		Description: strings.TrimSpace(input.Description),
		Amount:      domain.NormalizeAmount(kind, input.Amount),
		Memo:        input.Memo,
		Pending:     input.Pending,
	}
	mergeValidation(verr, transaction.Validate())
	if err := verr.Err(); err != nil {
		return nil, err
	}

	err := uc.runAtomic(ctx, OpCreate, func(ctx context.Context, tx Tx) (decimal.Decimal, error) {
		account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.UserID, input.AccountID)
		if err != nil {
			return decimal.Zero, err
		}

		now := uc.now()
		transaction.ID = uc.idGen.Generate()
		transaction.AccountID = account.ID
		transaction.CreatedAt = now
		transaction.UpdatedAt = now

		if err := uc.transactionRepo.Create(ctx, tx, transaction); err != nil {
			return decimal.Zero, err
		}

		return transaction.Amount, uc.adjustBalance(ctx, tx, account, OpCreate, transaction.Amount, now)
	})
	if err != nil {
		return nil, err
	}

	return transaction, nil
}

// UpdateTransaction applies input to an existing transaction. The account
// balance moves by the difference between the new and old amounts.
func (uc *TransactionUseCase) UpdateTransaction(ctx context.Context, input UpdateTransactionInput) (*domain.Transaction, error) {
	verr := domain.NewValidationError()
	if input.Kind != nil {
		if _, ok := domain.ParseKind(*input.Kind); !ok {
			verr.Add("trx_type", "is not included in the list")
		}
	}
	if input.Amount != nil {
		verr.Merge(domain.ValidateMagnitude("amount", *input.Amount))
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	var result *domain.Transaction
	err := uc.runAtomic(ctx, OpUpdate, func(ctx context.Context, tx Tx) (decimal.Decimal, error) {
		account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.UserID, input.AccountID)
		if err != nil {
			return decimal.Zero, err
		}

		existing, err := uc.transactionRepo.GetByIDForUpdate(ctx, tx, account.ID, input.ID)
		if err != nil {
			return decimal.Zero, err
		}

		updated := applyUpdate(existing, input)
		if err := updated.Validate(); err != nil {
			return decimal.Zero, err
		}

		now := uc.now()
		updated.UpdatedAt = now
		if err := uc.transactionRepo.Update(ctx, tx, updated); err != nil {
			return decimal.Zero, err
		}

		delta := updated.Amount.Sub(existing.Amount)
		if err := uc.adjustBalance(ctx, tx, account, OpUpdate, delta, now); err != nil {
			return decimal.Zero, err
		}

		result = updated
		return delta, nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// DeleteTransaction removes a transaction and subtracts its amount from the
// account balance.
func (uc *TransactionUseCase) DeleteTransaction(ctx context.Context, userID, accountID, id string) error {
	var deleted *domain.Transaction
	err := uc.runAtomic(ctx, OpDelete, func(ctx context.Context, tx Tx) (decimal.Decimal, error) {
		account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, userID, accountID)
		if err != nil {
			return decimal.Zero, err
		}

		existing, err := uc.transactionRepo.GetByIDForUpdate(ctx, tx, account.ID, id)
		if err != nil {
			return decimal.Zero, err
		}

		if err := uc.transactionRepo.Delete(ctx, tx, account.ID, id); err != nil {
			return decimal.Zero, err
		}

		delta := existing.Amount.Neg()
		if err := uc.adjustBalance(ctx, tx, account, OpDelete, delta, uc.now()); err != nil {
			return decimal.Zero, err
		}

		deleted = existing
		return delta, nil
	})
	if err != nil {
		return err
	}

	if deleted.HasAttachment() {
		uc.discardAttachment(ctx, deleted.AttachmentURI)
	}

	return nil
}

// ListTransactions returns one page of the account's history with running
// balances. The first entry of page one carries the current balance.
func (uc *TransactionUseCase) ListTransactions(ctx context.Context, input ListTransactionsInput) (*TransactionPage, error) {
	page, perPage := domain.ValidatePagination(input.Page, input.PerPage)

	account, balances, err := uc.history(ctx, input.UserID, input.AccountID)
	if err != nil {
		return nil, err
	}

	start := (page - 1) * perPage
	if start > len(balances) {
		start = len(balances)
	}
	end := start + perPage
	if end > len(balances) {
		end = len(balances)
	}

	return &TransactionPage{
		Account: account,
		Entries: balances[start:end],
		Page:    page,
		PerPage: perPage,
		Total:   len(balances),
	}, nil
}

// GetTransaction returns a transaction together with its running balance.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, userID, accountID, id string) (*domain.RunningBalance, error) {
	_, balances, err := uc.history(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	for _, rb := range balances {
		if rb.Transaction.ID == id {
			return &rb, nil
		}
	}

	return nil, domain.ErrTransactionNotFound
}

// history reads the account and its transactions from one snapshot, so the
// newest running balance always equals the returned current balance.
func (uc *TransactionUseCase) history(ctx context.Context, userID, accountID string) (*domain.Account, []domain.RunningBalance, error) {
	var (
		account      *domain.Account
		transactions []*domain.Transaction
	)
	err := withinSnapshot(ctx, uc.txManager, func(ctx context.Context, tx Tx) error {
		var err error
		account, err = uc.accountRepo.GetByIDInTx(ctx, tx, userID, accountID)
		if err != nil {
			return err
		}

		transactions, err = uc.transactionRepo.ListByAccount(ctx, tx, account.ID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	return account, domain.ComputeRunningBalances(account.StartingBalance, transactions), nil
}

// AttachFile uploads a file and links it to the transaction, replacing any
// previous attachment.
func (uc *TransactionUseCase) AttachFile(ctx context.Context, input AttachFileInput) (*domain.Transaction, error) {
	if uc.attachments == nil {
		return nil, domain.ErrAttachmentsDisabled
	}

	account, err := uc.accountRepo.GetByID(ctx, input.UserID, input.AccountID)
	if err != nil {
		return nil, err
	}

	transaction, err := uc.transactionRepo.GetByID(ctx, account.ID, input.ID)
	if err != nil {
		return nil, err
	}

	key := path.Join("accounts", account.ID, "transactions", transaction.ID, uc.idGen.Generate()+path.Ext(input.Filename))
	uri, err := uc.attachments.Put(ctx, key, input.ContentType, input.Body)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	if err := uc.transactionRepo.SetAttachment(ctx, account.ID, transaction.ID, uri, now); err != nil {
		uc.discardAttachment(ctx, uri)
		return nil, err
	}

	previous := transaction.AttachmentURI
	transaction.AttachmentURI = uri
	transaction.UpdatedAt = now

	if previous != "" {
		uc.discardAttachment(ctx, previous)
	}

	return transaction, nil
}

// RemoveAttachment unlinks and deletes the transaction's attachment.
func (uc *TransactionUseCase) RemoveAttachment(ctx context.Context, userID, accountID, id string) error {
	if uc.attachments == nil {
		return domain.ErrAttachmentsDisabled
	}

	account, err := uc.accountRepo.GetByID(ctx, userID, accountID)
	if err != nil {
		return err
	}

	transaction, err := uc.transactionRepo.GetByID(ctx, account.ID, id)
	if err != nil {
		return err
	}

	if !transaction.HasAttachment() {
		return domain.ErrAttachmentNotFound
	}

	if err := uc.transactionRepo.SetAttachment(ctx, account.ID, id, "", uc.now()); err != nil {
		return err
	}

	uc.discardAttachment(ctx, transaction.AttachmentURI)
	return nil
}

// AttachmentURL returns the download URL of the transaction's attachment,
// or an empty string.
func (uc *TransactionUseCase) AttachmentURL(transaction *domain.Transaction) string {
	if uc.attachments == nil || !transaction.HasAttachment() {
		return ""
	}
	return uc.attachments.URL(transaction.AttachmentURI)
}

func (uc *TransactionUseCase) runAtomic(ctx context.Context, op string, fn func(ctx context.Context, tx Tx) (decimal.Decimal, error)) error {
	var delta decimal.Decimal
	err := uc.retrier.Retry(ctx, func() error {
		var err error
		delta, err = withinTx(ctx, uc.txManager, fn)
		return err
	})
	uc.observer.ObserveMutation(op, delta, err)
	return err
}

// adjustBalance moves the locked account's balance by delta. A zero delta is
// a no-op.
func (uc *TransactionUseCase) adjustBalance(ctx context.Context, tx Tx, account *domain.Account, op string, delta decimal.Decimal, now time.Time) error {
	if delta.IsZero() {
		return nil
	}

	balance := account.ApplyDelta(delta)
	if !domain.AmountInRange(balance) {
		verr := domain.NewValidationError()
		verr.Add("amount", "would move the current balance out of range")
		return verr
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, balance, now); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return &domain.ConsistencyError{AccountID: account.ID, Op: op, Err: err}
		}
		return err
	}

	account.CurrentBalance = balance
	account.UpdatedAt = now
	return nil
}

func (uc *TransactionUseCase) discardAttachment(ctx context.Context, uri string) {
	if uc.attachments == nil {
		return
	}
	if err := uc.attachments.Delete(ctx, uri); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("uri", uri).Msg("failed to delete attachment")
	}
}

func applyUpdate(existing *domain.Transaction, input UpdateTransactionInput) *domain.Transaction {
	updated := *existing

	kind := existing.Kind()
	if input.Kind != nil {
		kind, _ = domain.ParseKind(*input.Kind)
	}
	magnitude := existing.Magnitude()
	if input.Amount != nil {
		magnitude = *input.Amount
	}
	updated.Amount = domain.NormalizeAmount(kind, magnitude)

	if input.Date != nil {
		updated.Date = domain.TruncateDate(*input.Date)
	}
	if input.Description != nil {
		updated.Description = strings.TrimSpace(*input.Description)
	}
	if input.Memo != nil {
		updated.Memo = *input.Memo
	}
	if input.Pending != nil {
		updated.Pending = *input.Pending
	}

	return &updated
}
