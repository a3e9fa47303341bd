package usecase

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/iho/gobalance/internal/domain"
)

// withinTx runs fn inside a database transaction and commits when fn succeeds.
func withinTx(ctx context.Context, txManager TxManager, fn func(ctx context.Context, tx Tx) (decimal.Decimal, error)) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := txManager.Begin(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback(ctx)

	result, err := fn(ctx, tx)
	if err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, err
	}

	return result, nil
}

// withinSnapshot runs fn inside a read-only snapshot transaction.
func withinSnapshot(ctx context.Context, txManager TxManager, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := txManager.BeginSnapshot(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func mergeValidation(verr *domain.ValidationError, err error) {
	var other *domain.ValidationError
	if errors.As(err, &other) {
		verr.Merge(other)
	}
}

type noRetry struct{}

func (noRetry) Retry(_ context.Context, fn func() error) error {
	return fn()
}

type noopObserver struct{}

func (noopObserver) ObserveMutation(string, decimal.Decimal, error) {}
