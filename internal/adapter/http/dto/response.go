package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobalance/internal/domain"
	"github.com/iho/gobalance/internal/usecase"
)

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Timezone  string      `json:"timezone"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Display   UserDisplay `json:"display"`
}

// UserDisplay holds the preformatted user fields.
type UserDisplay struct {
	FullName    string `json:"full_name"`
	MemberSince string `json:"member_since"`
}

// UserFromDomain converts domain user to response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Timezone:  u.Timezone,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		Display: UserDisplay{
			FullName:    u.FullName(),
			MemberSince: FormatInZone(u.CreatedAt, MemberSinceLayout, u.Location()),
		},
	}
}

// LoginResponse is returned for valid credentials.
type LoginResponse struct {
	Email string `json:"email"`
	JWT   string `json:"jwt"`
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	StartingBalance   decimal.Decimal `json:"starting_balance"`
	CurrentBalance    decimal.Decimal `json:"current_balance"`
	PendingBalance    decimal.Decimal `json:"pending_balance"`
	NonPendingBalance decimal.Decimal `json:"non_pending_balance"`
	LastFour          string          `json:"last_four,omitempty"`
	Active            bool            `json:"active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Display           AccountDisplay  `json:"display"`
}

// AccountDisplay holds the preformatted account fields.
type AccountDisplay struct {
	AccountName        string `json:"account_name"`
	CardTitle          string `json:"card_title"`
	LastFour           string `json:"last_four"`
	CurrentBalance     string `json:"current_balance"`
	PendingBalance     string `json:"pending_balance"`
	NonPendingBalance  string `json:"non_pending_balance"`
	AccountNameBalance string `json:"account_name_balance"`
	UpdatedAt          string `json:"updated_at"`
}

// AccountFromDomain converts domain account to response. loc is the
// viewer's timezone for the display timestamps.
func AccountFromDomain(a *domain.Account, loc *time.Location) *AccountResponse {
	current := FormatCurrency(a.CurrentBalance)
	return &AccountResponse{
		ID:                a.ID,
		Name:              a.Name,
		StartingBalance:   a.StartingBalance,
		CurrentBalance:    a.CurrentBalance,
		PendingBalance:    a.PendingBalance,
		NonPendingBalance: a.NonPendingBalance(),
		LastFour:          a.LastFour,
		Active:            a.Active,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
		Display: AccountDisplay{
			AccountName:        AccountDisplayName(a.Name, a.LastFour),
			CardTitle:          CardTitle(a.Name),
			LastFour:           MaskLastFour(a.LastFour),
			CurrentBalance:     current,
			PendingBalance:     FormatCurrency(a.PendingBalance),
			NonPendingBalance:  FormatCurrency(a.NonPendingBalance()),
			AccountNameBalance: a.Name + " (" + current + ")",
			UpdatedAt:          FormatInZone(a.UpdatedAt, DisplayTimeLayout, loc),
		},
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account, loc *time.Location) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a, loc)
	}
	return result
}

// TransactionResponse represents a transaction in API responses. Amount is
// signed; TransactionType is derived from its sign.
type TransactionResponse struct {
	ID              string           `json:"id"`
	AccountID       string           `json:"account_id"`
	TrxDate         string           `json:"trx_date"`
	Description     string           `json:"description"`
	Amount          decimal.Decimal  `json:"amount"`
	TransactionType string           `json:"transaction_type"`
	Memo            string           `json:"memo,omitempty"`
	Pending         bool             `json:"pending"`
	RunningBalance  *decimal.Decimal `json:"running_balance,omitempty"`
	AttachmentURL   string           `json:"attachment_url,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// TransactionFromDomain converts domain transaction to response.
// attachmentURL may be empty.
func TransactionFromDomain(t *domain.Transaction, attachmentURL string) *TransactionResponse {
	return &TransactionResponse{
		ID:              t.ID,
		AccountID:       t.AccountID,
		TrxDate:         t.Date.Format(DateLayout),
		Description:     t.Description,
		Amount:          t.Amount,
		TransactionType: string(t.Kind()),
		Memo:            t.Memo,
		Pending:         t.Pending,
		AttachmentURL:   attachmentURL,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// RunningBalanceFromDomain converts a transaction with its running balance.
func RunningBalanceFromDomain(rb domain.RunningBalance, attachmentURL string) *TransactionResponse {
	resp := TransactionFromDomain(rb.Transaction, attachmentURL)
	balance := rb.Balance
	resp.RunningBalance = &balance
	return resp
}

// TransactionListResponse is one page of an account's history.
type TransactionListResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Meta         PaginationMeta         `json:"meta"`
}

// PaginationMeta describes the page returned. Prev and Next are omitted on
// the first and last page.
type PaginationMeta struct {
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	Pages   int  `json:"pages"`
	Count   int  `json:"count"`
	Prev    *int `json:"prev,omitempty"`
	Next    *int `json:"next,omitempty"`
}

// NewPaginationMeta builds the meta block for page.
func NewPaginationMeta(page *usecase.TransactionPage) PaginationMeta {
	meta := PaginationMeta{
		Page:    page.Page,
		PerPage: page.PerPage,
		Pages:   page.Pages(),
		Count:   page.Total,
	}
	if page.Page > 1 {
		prev := page.Page - 1
		meta.Prev = &prev
	}
	if page.Page < meta.Pages {
		next := page.Page + 1
		meta.Next = &next
	}
	return meta
}

// ReconciliationResponse reports whether the cached balance matches the
// transactions.
type ReconciliationResponse struct {
	AccountID         string          `json:"account_id"`
	CachedBalance     decimal.Decimal `json:"cached_balance"`
	CalculatedBalance decimal.Decimal `json:"calculated_balance"`
	Difference        decimal.Decimal `json:"difference"`
	Consistent        bool            `json:"consistent"`
	Repaired          bool            `json:"repaired"`
	CheckedAt         time.Time       `json:"checked_at"`
}

// ReconciliationFromResult converts a reconciliation result to response.
func ReconciliationFromResult(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:         r.AccountID,
		CachedBalance:     r.CachedBalance,
		CalculatedBalance: r.CalculatedBalance,
		Difference:        r.Difference,
		Consistent:        r.IsReconciled,
		Repaired:          r.Repaired,
		CheckedAt:         r.CheckedAt,
	}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Message string              `json:"message,omitempty"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

// HealthResponse represents health check response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
