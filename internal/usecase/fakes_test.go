package usecase_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobalance/internal/domain"
	"github.com/iho/gobalance/internal/usecase"
)

// memStore is an in-memory ledger. Begin snapshots the state and Rollback
// restores it unless the transaction was committed. BeginSnapshot copies the
// state for reads only.
type memStore struct {
	mu           sync.Mutex
	accounts     map[string]domain.Account
	transactions map[string]domain.Transaction
	seq          int

	failUpdateBalance error
	// afterSnapshotAccountRead runs between the two reads of a history
	// snapshot.
	afterSnapshotAccountRead func()
}

func newMemStore() *memStore {
	return &memStore{
		accounts:     make(map[string]domain.Account),
		transactions: make(map[string]domain.Transaction),
	}
}

func (s *memStore) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return fmt.Sprintf("01ID%06d", s.seq)
}

func (s *memStore) balance(id string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[id].CurrentBalance
}

type memTx struct {
	store        *memStore
	accounts     map[string]domain.Account
	transactions map[string]domain.Transaction
	readOnly     bool
	done         bool
}

func (s *memStore) Begin(context.Context) (usecase.Tx, error) {
	return s.begin(false), nil
}

func (s *memStore) BeginSnapshot(context.Context) (usecase.Tx, error) {
	return s.begin(true), nil
}

func (s *memStore) begin(readOnly bool) *memTx {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		store:        s,
		accounts:     make(map[string]domain.Account, len(s.accounts)),
		transactions: make(map[string]domain.Transaction, len(s.transactions)),
		readOnly:     readOnly,
	}
	for k, v := range s.accounts {
		tx.accounts[k] = v
	}
	for k, v := range s.transactions {
		tx.transactions[k] = v
	}
	return tx
}

func (t *memTx) Commit(context.Context) error {
	t.done = true
	return nil
}

func (t *memTx) Rollback(context.Context) error {
	if t.done || t.readOnly {
		t.done = true
		return nil
	}
	t.done = true
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.accounts = t.accounts
	t.store.transactions = t.transactions
	return nil
}

func accountView(accounts map[string]domain.Account, transactions map[string]domain.Transaction, userID, id string) (*domain.Account, error) {
	a, ok := accounts[id]
	if !ok || a.UserID != userID {
		return nil, domain.ErrAccountNotFound
	}
	a.PendingBalance = decimal.Zero
	for _, t := range transactions {
		if t.AccountID == id && t.Pending {
			a.PendingBalance = a.PendingBalance.Add(t.Amount)
		}
	}
	return &a, nil
}

func transactionsOf(transactions map[string]domain.Transaction, accountID string) []*domain.Transaction {
	var out []*domain.Transaction
	for _, t := range transactions {
		if t.AccountID == accountID {
			t := t
			out = append(out, &t)
		}
	}
	domain.SortForDisplay(out)
	return out
}

// account repository

func (s *memStore) Create(_ context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = *account
	return nil
}

func (s *memStore) GetByID(_ context.Context, userID, id string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return accountView(s.accounts, s.transactions, userID, id)
}

func (s *memStore) GetByIDForUpdate(ctx context.Context, _ usecase.Tx, userID, id string) (*domain.Account, error) {
	return s.GetByID(ctx, userID, id)
}

// GetByIDInTx reads from the state captured when tx began.
func (s *memStore) GetByIDInTx(_ context.Context, tx usecase.Tx, userID, id string) (*domain.Account, error) {
	mt := tx.(*memTx)
	account, err := accountView(mt.accounts, mt.transactions, userID, id)
	if hook := s.afterSnapshotAccountRead; hook != nil && err == nil {
		s.afterSnapshotAccountRead = nil
		hook()
	}
	return account, err
}

func (s *memStore) ListByUser(_ context.Context, userID string, active bool) ([]*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Account
	for _, a := range s.accounts {
		if a.UserID == userID && a.Active == active {
			a := a
			out = append(out, &a)
		}
	}
	return out, nil
}

func (s *memStore) Update(_ context.Context, _ usecase.Tx, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.ID]; !ok {
		return domain.ErrAccountNotFound
	}
	s.accounts[account.ID] = *account
	return nil
}

func (s *memStore) UpdateBalance(_ context.Context, _ usecase.Tx, id string, balance decimal.Decimal, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdateBalance != nil {
		return s.failUpdateBalance
	}
	a, ok := s.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.CurrentBalance = balance
	a.UpdatedAt = updatedAt
	s.accounts[id] = a
	return nil
}

func (s *memStore) SetActive(_ context.Context, userID, id string, active bool, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok || a.UserID != userID {
		return domain.ErrAccountNotFound
	}
	a.Active = active
	a.UpdatedAt = updatedAt
	s.accounts[id] = a
	return nil
}

func (s *memStore) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok || a.UserID != userID {
		return domain.ErrAccountNotFound
	}
	delete(s.accounts, id)
	for k, t := range s.transactions {
		if t.AccountID == id {
			delete(s.transactions, k)
		}
	}
	return nil
}

// memTransactions adapts memStore to TransactionRepository; method names
// collide with the account side.
type memTransactions struct{ s *memStore }

func (r memTransactions) Create(_ context.Context, _ usecase.Tx, t *domain.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.transactions[t.ID] = *t
	return nil
}

func (r memTransactions) GetByID(_ context.Context, accountID, id string) (*domain.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transactions[id]
	if !ok || t.AccountID != accountID {
		return nil, domain.ErrTransactionNotFound
	}
	return &t, nil
}

func (r memTransactions) GetByIDForUpdate(ctx context.Context, _ usecase.Tx, accountID, id string) (*domain.Transaction, error) {
	return r.GetByID(ctx, accountID, id)
}

func (r memTransactions) Update(_ context.Context, _ usecase.Tx, t *domain.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.transactions[t.ID]; !ok {
		return domain.ErrTransactionNotFound
	}
	r.s.transactions[t.ID] = *t
	return nil
}

func (r memTransactions) Delete(_ context.Context, _ usecase.Tx, accountID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transactions[id]
	if !ok || t.AccountID != accountID {
		return domain.ErrTransactionNotFound
	}
	delete(r.s.transactions, id)
	return nil
}

func (r memTransactions) ListByAccount(_ context.Context, tx usecase.Tx, accountID string) ([]*domain.Transaction, error) {
	if tx != nil {
		return transactionsOf(tx.(*memTx).transactions, accountID), nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return transactionsOf(r.s.transactions, accountID), nil
}

func (r memTransactions) SumByAccount(_ context.Context, _ usecase.Tx, accountID string) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum := decimal.Zero
	for _, t := range r.s.transactions {
		if t.AccountID == accountID {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

func (r memTransactions) SetAttachment(_ context.Context, accountID, id, uri string, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transactions[id]
	if !ok || t.AccountID != accountID {
		return domain.ErrTransactionNotFound
	}
	t.AttachmentURI = uri
	t.UpdatedAt = updatedAt
	r.s.transactions[id] = t
	return nil
}

// memAttachments is an in-memory AttachmentStore.
type memAttachments struct {
	objects map[string][]byte
	deleted []string
}

func newMemAttachments() *memAttachments {
	return &memAttachments{objects: make(map[string][]byte)}
}

func (m *memAttachments) Put(_ context.Context, key, _ string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	uri := "mem://" + key
	m.objects[uri] = data
	return uri, nil
}

func (m *memAttachments) Delete(_ context.Context, uri string) error {
	delete(m.objects, uri)
	m.deleted = append(m.deleted, uri)
	return nil
}

func (m *memAttachments) URL(uri string) string {
	return "https://files.example/" + uri[len("mem://"):]
}

type ledgerFixture struct {
	store        *memStore
	attachments  *memAttachments
	accounts     *usecase.AccountUseCase
	transactions *usecase.TransactionUseCase
	reconcile    *usecase.ReconciliationUseCase
}

func newLedgerFixture() *ledgerFixture {
	store := newMemStore()
	attachments := newMemAttachments()
	txRepo := memTransactions{s: store}

	return &ledgerFixture{
		store:       store,
		attachments: attachments,
		accounts:    usecase.NewAccountUseCase(store, store, store),
		transactions: usecase.NewTransactionUseCase(usecase.TransactionUseCaseConfig{
			TxManager:       store,
			AccountRepo:     store,
			TransactionRepo: txRepo,
			IDGen:           store,
			Attachments:     attachments,
		}),
		reconcile: usecase.NewReconciliationUseCase(store, store, txRepo, nil),
	}
}
