package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/gobalance/internal/domain"
	"github.com/iho/gobalance/internal/usecase"
	"github.com/iho/gobalance/internal/usecase/mocks"
)

type transactionMocks struct {
	txManager   *mocks.MockTxManager
	tx          *mocks.MockTx
	accountRepo *mocks.MockAccountRepository
	txRepo      *mocks.MockTransactionRepository
	idGen       *mocks.MockIDGenerator
	observer    *mocks.MockMutationObserver
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// decimalMatcher compares decimals by value; their internal representation
// differs between equal numbers.
type decimalMatcher struct {
	want decimal.Decimal
}

func (m decimalMatcher) Matches(x any) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalMatcher) String() string {
	return "is decimal " + m.want.String()
}

func decEq(v int64) gomock.Matcher {
	return decimalMatcher{want: decimal.NewFromInt(v)}
}

func newTransactionUseCase(ctrl *gomock.Controller) (*usecase.TransactionUseCase, *transactionMocks) {
	m := &transactionMocks{
		txManager:   mocks.NewMockTxManager(ctrl),
		tx:          mocks.NewMockTx(ctrl),
		accountRepo: mocks.NewMockAccountRepository(ctrl),
		txRepo:      mocks.NewMockTransactionRepository(ctrl),
		idGen:       mocks.NewMockIDGenerator(ctrl),
		observer:    mocks.NewMockMutationObserver(ctrl),
	}

	uc := usecase.NewTransactionUseCase(usecase.TransactionUseCaseConfig{
		TxManager:       m.txManager,
		AccountRepo:     m.accountRepo,
		TransactionRepo: m.txRepo,
		IDGen:           m.idGen,
		Observer:        m.observer,
		Now:             func() time.Time { return fixedNow },
	})

	return uc, m
}

func (m *transactionMocks) expectCommittedTx() {
	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()
}

func (m *transactionMocks) expectRolledBackTx() {
	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
}

func TestTransactionUseCase_CreateTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, m := newTransactionUseCase(ctrl)
	m.expectCommittedTx()

	account := &domain.Account{ID: "acc-1", UserID: "user-1", CurrentBalance: decimal.NewFromInt(1000)}
	m.accountRepo.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "user-1", "acc-1").Return(account, nil)
	m.idGen.EXPECT().Generate().Return("trx-1")
	m.txRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ usecase.Tx, trx *domain.Transaction) error {
			if !trx.Amount.Equal(decimal.NewFromInt(-200)) {
				t.Errorf("expected stored amount -200, got %s", trx.Amount)
			}
			if trx.ID != "trx-1" || trx.AccountID != "acc-1" {
				t.Errorf("unexpected identifiers %s/%s", trx.ID, trx.AccountID)
			}
			return nil
		})
	m.accountRepo.EXPECT().UpdateBalance(gomock.Any(), m.tx, "acc-1", decEq(800), fixedNow).Return(nil)
	m.observer.EXPECT().ObserveMutation(usecase.OpCreate, decEq(-200), nil)

	trx, err := uc.CreateTransaction(context.Background(), usecase.CreateTransactionInput{
		UserID:      "user-1",
		AccountID:   "acc-1",
		Kind:        "debit",
		Date:        time.Date(2024, 5, 30, 15, 4, 5, 0, time.UTC),
		Description: "  Rent ",
		Amount:      decimal.NewFromInt(200),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if trx.Description != "Rent" {
		t.Errorf("expected trimmed description, got %q", trx.Description)
	}
	if !trx.Date.Equal(time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected date truncated to the day, got %s", trx.Date)
	}
	if !account.CurrentBalance.Equal(decimal.NewFromInt(800)) {
		t.Errorf("expected in-memory account balance 800, got %s", account.CurrentBalance)
	}
}

func TestTransactionUseCase_CreateTransaction_ValidationSkipsStorage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// no expectations: any storage call fails the test
	uc, _ := newTransactionUseCase(ctrl)

	_, err := uc.CreateTransaction(context.Background(), usecase.CreateTransactionInput{
		UserID:    "user-1",
		AccountID: "acc-1",
		Kind:      "transfer",
		Amount:    decimal.NewFromInt(10),
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTransactionUseCase_CreateTransaction_AccountNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, m := newTransactionUseCase(ctrl)
	m.expectRolledBackTx()
	m.accountRepo.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "user-1", "acc-x").Return(nil, domain.ErrAccountNotFound)
	m.observer.EXPECT().ObserveMutation(usecase.OpCreate, gomock.Any(), domain.ErrAccountNotFound)

	_, err := uc.CreateTransaction(context.Background(), usecase.CreateTransactionInput{
		UserID:      "user-1",
		AccountID:   "acc-x",
		Kind:        "credit",
		Date:        fixedNow,
		Description: "Salary",
		Amount:      decimal.NewFromInt(10),
	})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestTransactionUseCase_CreateTransaction_VanishedAccountIsConsistencyError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, m := newTransactionUseCase(ctrl)
	m.expectRolledBackTx()
	m.accountRepo.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "user-1", "acc-1").
		Return(&domain.Account{ID: "acc-1", CurrentBalance: decimal.Zero}, nil)
	m.idGen.EXPECT().Generate().Return("trx-1")
	m.txRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.accountRepo.EXPECT().UpdateBalance(gomock.Any(), m.tx, "acc-1", decEq(10), fixedNow).Return(domain.ErrAccountNotFound)
	m.observer.EXPECT().ObserveMutation(usecase.OpCreate, gomock.Any(), gomock.Not(nil))

	_, err := uc.CreateTransaction(context.Background(), usecase.CreateTransactionInput{
		UserID:      "user-1",
		AccountID:   "acc-1",
		Kind:        "credit",
		Date:        fixedNow,
		Description: "Salary",
		Amount:      decimal.NewFromInt(10),
	})

	var cerr *domain.ConsistencyError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConsistencyError, got %v", err)
	}
	if cerr.Op != usecase.OpCreate || cerr.AccountID != "acc-1" {
		t.Errorf("unexpected consistency error %+v", cerr)
	}
}

func TestTransactionUseCase_UpdateTransaction(t *testing.T) {
	tests := []struct {
		name           string
		existingAmount int64
		input          usecase.UpdateTransactionInput
		wantAmount     int64
		wantBalance    *int64
	}{
		{
			name:           "amount change adjusts by difference",
			existingAmount: -200,
			input:          usecase.UpdateTransactionInput{Amount: ptr(decimal.NewFromInt(50))},
			wantAmount:     -50,
			wantBalance:    ptr(int64(950)),
		},
		{
			name:           "kind change flips sign",
			existingAmount: -200,
			input:          usecase.UpdateTransactionInput{Kind: ptr("credit")},
			wantAmount:     200,
			wantBalance:    ptr(int64(1200)),
		},
		{
			name:           "description change leaves balance alone",
			existingAmount: -200,
			input:          usecase.UpdateTransactionInput{Description: ptr("Rent (May)")},
			wantAmount:     -200,
		},
		{
			name:           "same amount re-entered leaves balance alone",
			existingAmount: 75,
			input:          usecase.UpdateTransactionInput{Amount: ptr(decimal.NewFromInt(75))},
			wantAmount:     75,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			uc, m := newTransactionUseCase(ctrl)
			m.expectCommittedTx()

			account := &domain.Account{ID: "acc-1", CurrentBalance: decimal.NewFromInt(800)}
			existing := &domain.Transaction{
				ID:          "trx-1",
				AccountID:   "acc-1",
				Date:        fixedNow,
				Description: "Rent",
				Amount:      decimal.NewFromInt(tt.existingAmount),
			}
			m.accountRepo.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "user-1", "acc-1").Return(account, nil)
			m.txRepo.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "acc-1", "trx-1").Return(existing, nil)
			m.txRepo.EXPECT().Update(gomock.Any(), m.tx, gomock.Any()).Return(nil)
			if tt.wantBalance != nil {
				m.accountRepo.EXPECT().UpdateBalance(gomock.Any(), m.tx, "acc-1", decEq(*tt.wantBalance), fixedNow).Return(nil)
			}
			m.observer.EXPECT().ObserveMutation(usecase.OpUpdate, gomock.Any(), nil)

			input := tt.input
			input.UserID, input.AccountID, input.ID = "user-1", "acc-1", "trx-1"

			updated, err := uc.UpdateTransaction(context.Background(), input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !updated.Amount.Equal(decimal.NewFromInt(tt.wantAmount)) {
				t.Errorf("expected amount %d, got %s", tt.wantAmount, updated.Amount)
			}
			if !existing.Amount.Equal(decimal.NewFromInt(tt.existingAmount)) {
				t.Errorf("existing record must not be mutated")
			}
		})
	}
}

func TestTransactionUseCase_UpdateTransaction_InvalidMergedState(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, m := newTransactionUseCase(ctrl)
	m.expectRolledBackTx()
	m.accountRepo.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "user-1", "acc-1").
		Return(&domain.Account{ID: "acc-1"}, nil)
	m.txRepo.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "acc-1", "trx-1").
		Return(&domain.Transaction{ID: "trx-1", AccountID: "acc-1", Date: fixedNow, Description: "Rent", Amount: decimal.NewFromInt(-5)}, nil)
	m.observer.EXPECT().ObserveMutation(usecase.OpUpdate, gomock.Any(), gomock.Not(nil))

	_, err := uc.UpdateTransaction(context.Background(), usecase.UpdateTransactionInput{
		UserID: "user-1", AccountID: "acc-1", ID: "trx-1",
		Description: ptr("   "),
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTransactionUseCase_DeleteTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, m := newTransactionUseCase(ctrl)
	m.expectCommittedTx()
	m.accountRepo.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "user-1", "acc-1").
		Return(&domain.Account{ID: "acc-1", CurrentBalance: decimal.NewFromInt(950)}, nil)
	m.txRepo.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "acc-1", "trx-1").
		Return(&domain.Transaction{ID: "trx-1", AccountID: "acc-1", Amount: decimal.NewFromInt(-50)}, nil)
	m.txRepo.EXPECT().Delete(gomock.Any(), m.tx, "acc-1", "trx-1").Return(nil)
	m.accountRepo.EXPECT().UpdateBalance(gomock.Any(), m.tx, "acc-1", decEq(1000), fixedNow).Return(nil)
	m.observer.EXPECT().ObserveMutation(usecase.OpDelete, decEq(50), nil)

	if err := uc.DeleteTransaction(context.Background(), "user-1", "acc-1", "trx-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTransactionUseCase_DeleteTransaction_CommitFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	commitErr := errors.New("connection reset")

	uc, m := newTransactionUseCase(ctrl)
	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.tx.EXPECT().Commit(gomock.Any()).Return(commitErr)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	m.accountRepo.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "user-1", "acc-1").
		Return(&domain.Account{ID: "acc-1", CurrentBalance: decimal.NewFromInt(10)}, nil)
	m.txRepo.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "acc-1", "trx-1").
		Return(&domain.Transaction{ID: "trx-1", AccountID: "acc-1", Amount: decimal.NewFromInt(10)}, nil)
	m.txRepo.EXPECT().Delete(gomock.Any(), m.tx, "acc-1", "trx-1").Return(nil)
	m.accountRepo.EXPECT().UpdateBalance(gomock.Any(), m.tx, "acc-1", decEq(0), fixedNow).Return(nil)
	m.observer.EXPECT().ObserveMutation(usecase.OpDelete, gomock.Any(), commitErr)

	if err := uc.DeleteTransaction(context.Background(), "user-1", "acc-1", "trx-1"); !errors.Is(err, commitErr) {
		t.Fatalf("expected commit error, got %v", err)
	}
}

func TestTransactionUseCase_UsesRetrier(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	retrier := mocks.NewMockRetrier(ctrl)
	txManager := mocks.NewMockTxManager(ctrl)

	beginErr := errors.New("deadlock detected")
	txManager.EXPECT().Begin(gomock.Any()).Return(nil, beginErr).Times(2)
	retrier.EXPECT().Retry(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, fn func() error) error {
			_ = fn()
			return fn()
		})

	uc := usecase.NewTransactionUseCase(usecase.TransactionUseCaseConfig{
		TxManager:       txManager,
		AccountRepo:     mocks.NewMockAccountRepository(ctrl),
		TransactionRepo: mocks.NewMockTransactionRepository(ctrl),
		IDGen:           mocks.NewMockIDGenerator(ctrl),
		Retrier:         retrier,
	})

	err := uc.DeleteTransaction(context.Background(), "user-1", "acc-1", "trx-1")
	if !errors.Is(err, beginErr) {
		t.Fatalf("expected begin error, got %v", err)
	}
}

func TestTransactionUseCase_AttachFile_Disabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, _ := newTransactionUseCase(ctrl)

	_, err := uc.AttachFile(context.Background(), usecase.AttachFileInput{UserID: "user-1", AccountID: "acc-1", ID: "trx-1"})
	if !errors.Is(err, domain.ErrAttachmentsDisabled) {
		t.Fatalf("expected ErrAttachmentsDisabled, got %v", err)
	}
	if url := uc.AttachmentURL(&domain.Transaction{AttachmentURI: "gs://b/o"}); url != "" {
		t.Fatalf("expected no url without a store, got %q", url)
	}
}

func TestTransactionUseCase_AttachFile_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockAttachmentStore(ctrl)
	accountRepo := mocks.NewMockAccountRepository(ctrl)
	txRepo := mocks.NewMockTransactionRepository(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)

	uc := usecase.NewTransactionUseCase(usecase.TransactionUseCaseConfig{
		TxManager:       mocks.NewMockTxManager(ctrl),
		AccountRepo:     accountRepo,
		TransactionRepo: txRepo,
		IDGen:           idGen,
		Attachments:     store,
		Now:             func() time.Time { return fixedNow },
	})

	dbErr := errors.New("db down")
	accountRepo.EXPECT().GetByID(gomock.Any(), "user-1", "acc-1").Return(&domain.Account{ID: "acc-1"}, nil)
	txRepo.EXPECT().GetByID(gomock.Any(), "acc-1", "trx-1").Return(&domain.Transaction{ID: "trx-1", AccountID: "acc-1"}, nil)
	idGen.EXPECT().Generate().Return("obj")
	store.EXPECT().Put(gomock.Any(), "accounts/acc-1/transactions/trx-1/obj.jpg", "image/jpeg", gomock.Any()).Return("gs://bucket/obj.jpg", nil)
	txRepo.EXPECT().SetAttachment(gomock.Any(), "acc-1", "trx-1", "gs://bucket/obj.jpg", fixedNow).Return(dbErr)
	store.EXPECT().Delete(gomock.Any(), "gs://bucket/obj.jpg").Return(nil)

	_, err := uc.AttachFile(context.Background(), usecase.AttachFileInput{
		UserID: "user-1", AccountID: "acc-1", ID: "trx-1", Filename: "photo.jpg", ContentType: "image/jpeg",
	})
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected db error, got %v", err)
	}
}

func TestTransactionUseCase_GetTransaction_ReadsOneSnapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, m := newTransactionUseCase(ctrl)
	account := &domain.Account{ID: "acc-1", StartingBalance: decimal.NewFromInt(100), CurrentBalance: decimal.NewFromInt(70)}
	history := []*domain.Transaction{
		{ID: "trx-2", AccountID: "acc-1", Date: fixedNow, Amount: decimal.NewFromInt(-50)},
		{ID: "trx-1", AccountID: "acc-1", Date: fixedNow.AddDate(0, 0, -1), Amount: decimal.NewFromInt(20)},
	}

	gomock.InOrder(
		m.txManager.EXPECT().BeginSnapshot(gomock.Any()).Return(m.tx, nil),
		m.accountRepo.EXPECT().GetByIDInTx(gomock.Any(), m.tx, "user-1", "acc-1").Return(account, nil),
		m.txRepo.EXPECT().ListByAccount(gomock.Any(), m.tx, "acc-1").Return(history, nil),
		m.tx.EXPECT().Commit(gomock.Any()).Return(nil),
	)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()

	rb, err := uc.GetTransaction(context.Background(), "user-1", "acc-1", "trx-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rb.Balance.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("expected running balance 120, got %s", rb.Balance)
	}
}

func TestTransactionUseCase_ListTransactions_AccountNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, m := newTransactionUseCase(ctrl)
	m.txManager.EXPECT().BeginSnapshot(gomock.Any()).Return(m.tx, nil)
	m.accountRepo.EXPECT().GetByIDInTx(gomock.Any(), m.tx, "user-1", "missing").Return(nil, domain.ErrAccountNotFound)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	_, err := uc.ListTransactions(context.Background(), usecase.ListTransactionsInput{UserID: "user-1", AccountID: "missing"})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
