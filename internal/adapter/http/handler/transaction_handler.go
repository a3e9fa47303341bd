package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gobalance/internal/adapter/http/dto"
	"github.com/iho/gobalance/internal/domain"
	"github.com/iho/gobalance/internal/usecase"
)

// attachmentField is the multipart form field carrying the upload.
const attachmentField = "attachment"

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	CreateTransaction(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, input usecase.UpdateTransactionInput) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, accountID, id string) error
	ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) (*usecase.TransactionPage, error)
	GetTransaction(ctx context.Context, userID, accountID, id string) (*domain.RunningBalance, error)
	AttachFile(ctx context.Context, input usecase.AttachFileInput) (*domain.Transaction, error)
	RemoveAttachment(ctx context.Context, userID, accountID, id string) error
	AttachmentURL(transaction *domain.Transaction) string
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	transactionUC      TransactionService
	maxAttachmentBytes int64
}

// NewTransactionHandler creates a new TransactionHandler. Uploads larger
// than maxAttachmentBytes are rejected.
func NewTransactionHandler(transactionUC TransactionService, maxAttachmentBytes int64) *TransactionHandler {
	return &TransactionHandler{
		transactionUC:      transactionUC,
		maxAttachmentBytes: maxAttachmentBytes,
	}
}

// List returns one page of the account's transactions with running balances.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	page, err := h.transactionUC.ListTransactions(r.Context(), usecase.ListTransactionsInput{
		UserID:    user.ID,
		AccountID: chi.URLParam(r, "accountID"),
		Page:      parseIntQuery(r, "page", 1),
		PerPage:   parseIntQuery(r, "per_page", domain.DefaultPerPage),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	transactions := make([]*dto.TransactionResponse, len(page.Entries))
	for i, entry := range page.Entries {
		transactions[i] = dto.RunningBalanceFromDomain(entry, h.transactionUC.AttachmentURL(entry.Transaction))
	}

	writeJSON(w, http.StatusOK, dto.TransactionListResponse{
		Transactions: transactions,
		Meta:         dto.NewPaginationMeta(page),
	})
}

// Get returns a transaction with its running balance.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	entry, err := h.transactionUC.GetTransaction(r.Context(), user.ID, chi.URLParam(r, "accountID"), chi.URLParam(r, "transactionID"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RunningBalanceFromDomain(*entry, h.transactionUC.AttachmentURL(entry.Transaction)))
}

// Create records a transaction.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.CreateTransactionRequest
	if !decodeJSON(w, r, &req, http.StatusUnprocessableEntity) {
		return
	}

	input, err := req.ToUseCaseInput(user.ID, chi.URLParam(r, "accountID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	transaction, err := h.transactionUC.CreateTransaction(r.Context(), input)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Location", transactionLocation(transaction))
	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(transaction, ""))
}

// Update edits a transaction.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.UpdateTransactionRequest
	if !decodeJSON(w, r, &req, http.StatusUnprocessableEntity) {
		return
	}

	input, err := req.ToUseCaseInput(user.ID, chi.URLParam(r, "accountID"), chi.URLParam(r, "transactionID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	transaction, err := h.transactionUC.UpdateTransaction(r.Context(), input)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(transaction, h.transactionUC.AttachmentURL(transaction)))
}

// Delete removes a transaction.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	err := h.transactionUC.DeleteTransaction(r.Context(), user.ID, chi.URLParam(r, "accountID"), chi.URLParam(r, "transactionID"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Attach uploads a file for the transaction from a multipart form.
func (h *TransactionHandler) Attach(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxAttachmentBytes)
	file, header, err := r.FormFile(attachmentField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "attachment too large", err.Error())
			return
		}
		verr := domain.NewValidationError()
		verr.Add(attachmentField, "can't be blank")
		writeValidationError(w, http.StatusUnprocessableEntity, verr)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	transaction, err := h.transactionUC.AttachFile(r.Context(), usecase.AttachFileInput{
		UserID:      user.ID,
		AccountID:   chi.URLParam(r, "accountID"),
		ID:          chi.URLParam(r, "transactionID"),
		Filename:    header.Filename,
		ContentType: contentType,
		Body:        file,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(transaction, h.transactionUC.AttachmentURL(transaction)))
}

// Detach removes the transaction's attachment.
func (h *TransactionHandler) Detach(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	err := h.transactionUC.RemoveAttachment(r.Context(), user.ID, chi.URLParam(r, "accountID"), chi.URLParam(r, "transactionID"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func transactionLocation(t *domain.Transaction) string {
	return "/api/v1/accounts/" + t.AccountID + "/transactions/" + t.ID
}
