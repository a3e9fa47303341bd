package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobalance/internal/domain"
)

// ReconciliationUseCase compares cached account balances with the balance
// recomputed from transactions, and repairs drift on request.
type ReconciliationUseCase struct {
	txManager       TxManager
	accountRepo     AccountRepository
	transactionRepo TransactionRepository
	observer        MutationObserver
}

// NewReconciliationUseCase creates a new reconciliation use case. observer may be nil.
func NewReconciliationUseCase(
	txManager TxManager,
	accountRepo AccountRepository,
	transactionRepo TransactionRepository,
	observer MutationObserver,
) *ReconciliationUseCase {
	if observer == nil {
		observer = noopObserver{}
	}
	return &ReconciliationUseCase{
		txManager:       txManager,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		observer:        observer,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	AccountID         string
	CachedBalance     decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	IsReconciled      bool
	Repaired          bool
	CheckedAt         time.Time
}

func newReconciliationResult(account *domain.Account, sum decimal.Decimal) *ReconciliationResult {
	calculated := account.ExpectedBalance(sum)
	diff := account.CurrentBalance.Sub(calculated)
	return &ReconciliationResult{
		AccountID:         account.ID,
		CachedBalance:     account.CurrentBalance,
		CalculatedBalance: calculated,
		Difference:        diff,
		IsReconciled:      diff.IsZero(),
		CheckedAt:         time.Now().UTC(),
	}
}

// ReconcileAccount recomputes one account's balance without changing anything.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, userID, accountID string) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	sum, err := uc.transactionRepo.SumByAccount(ctx, nil, account.ID)
	if err != nil {
		return nil, err
	}

	return newReconciliationResult(account, sum), nil
}

// ReconcileUser checks every account, active or not, owned by the user.
func (uc *ReconciliationUseCase) ReconcileUser(ctx context.Context, userID string) ([]*ReconciliationResult, error) {
	var results []*ReconciliationResult
	for _, active := range []bool{true, false} {
		accounts, err := uc.accountRepo.ListByUser(ctx, userID, active)
		if err != nil {
			return nil, err
		}

		for _, account := range accounts {
			sum, err := uc.transactionRepo.SumByAccount(ctx, nil, account.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile account %s: %w", account.ID, err)
			}
			results = append(results, newReconciliationResult(account, sum))
		}
	}

	return results, nil
}

// RepairAccount recomputes the balance under the account row lock and
// overwrites the cached value when it drifted. The returned result describes
// the state found before the repair.
func (uc *ReconciliationUseCase) RepairAccount(ctx context.Context, userID, accountID string) (*ReconciliationResult, error) {
	var result *ReconciliationResult
	_, err := withinTx(ctx, uc.txManager, func(ctx context.Context, tx Tx) (decimal.Decimal, error) {
		account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, userID, accountID)
		if err != nil {
			return decimal.Zero, err
		}

		sum, err := uc.transactionRepo.SumByAccount(ctx, tx, account.ID)
		if err != nil {
			return decimal.Zero, err
		}

		result = newReconciliationResult(account, sum)
		if result.IsReconciled {
			return decimal.Zero, nil
		}

		if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, result.CalculatedBalance, result.CheckedAt); err != nil {
			return decimal.Zero, err
		}

		result.Repaired = true
		return result.Difference.Neg(), nil
	})

	if result != nil && result.Repaired {
		uc.observer.ObserveMutation(OpRepair, result.Difference.Neg(), err)
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}
