package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gobalance/internal/adapter/http/dto"
	"github.com/iho/gobalance/internal/usecase"
)

// ReconciliationService defines the behavior needed by ReconciliationHandler.
type ReconciliationService interface {
	ReconcileAccount(ctx context.Context, userID, accountID string) (*usecase.ReconciliationResult, error)
	RepairAccount(ctx context.Context, userID, accountID string) (*usecase.ReconciliationResult, error)
}

// ReconciliationHandler checks and repairs cached account balances.
type ReconciliationHandler struct {
	reconcileUC ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconcileUC ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconcileUC: reconcileUC}
}

// Check compares the cached balance with the transactions.
func (h *ReconciliationHandler) Check(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.reconcileUC.ReconcileAccount)
}

// Repair overwrites a drifted cached balance.
func (h *ReconciliationHandler) Repair(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.reconcileUC.RepairAccount)
}

func (h *ReconciliationHandler) run(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, userID, accountID string) (*usecase.ReconciliationResult, error)) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	result, err := fn(r.Context(), user.ID, chi.URLParam(r, "accountID"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromResult(result))
}
