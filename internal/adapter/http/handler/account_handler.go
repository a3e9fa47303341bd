package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gobalance/internal/adapter/http/dto"
	"github.com/iho/gobalance/internal/domain"
	"github.com/iho/gobalance/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, userID, id string) (*domain.Account, error)
	ListAccounts(ctx context.Context, userID string, active bool) ([]*domain.Account, error)
	UpdateAccount(ctx context.Context, input usecase.UpdateAccountInput) (*domain.Account, error)
	ActivateAccount(ctx context.Context, userID, id string) error
	DeactivateAccount(ctx context.Context, userID, id string) error
	DeleteAccount(ctx context.Context, userID, id string) error
}

// AccountHandler handles account-related HTTP requests. Every route acts
// on the authenticated user's accounts only.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Create creates a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.CreateAccountRequest
	if !decodeJSON(w, r, &req, http.StatusUnprocessableEntity) {
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), req.ToUseCaseInput(user.ID))
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/accounts/"+account.ID)
	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account, user.Location()))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), user.ID, chi.URLParam(r, "accountID"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account, user.Location()))
}

// List lists active accounts, oldest first.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

// ListInactive lists deactivated accounts.
func (h *AccountHandler) ListInactive(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

func (h *AccountHandler) list(w http.ResponseWriter, r *http.Request, active bool) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	accounts, err := h.accountUC.ListAccounts(r.Context(), user.ID, active)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountsFromDomain(accounts, user.Location()))
}

// Update edits an account.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.UpdateAccountRequest
	if !decodeJSON(w, r, &req, http.StatusUnprocessableEntity) {
		return
	}

	account, err := h.accountUC.UpdateAccount(r.Context(), req.ToUseCaseInput(user.ID, chi.URLParam(r, "accountID")))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account, user.Location()))
}

// Activate marks an account active.
func (h *AccountHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, h.accountUC.ActivateAccount)
}

// Deactivate marks an account inactive.
func (h *AccountHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, h.accountUC.DeactivateAccount)
}

func (h *AccountHandler) setActive(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, userID, id string) error) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := fn(r.Context(), user.ID, chi.URLParam(r, "accountID")); err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct{}{})
}

// Delete removes an account and its transactions.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.accountUC.DeleteAccount(r.Context(), user.ID, chi.URLParam(r, "accountID")); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
