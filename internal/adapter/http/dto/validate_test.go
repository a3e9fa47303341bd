package dto

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gobalance/internal/domain"
)

func validTransactionRequest() *CreateTransactionRequest {
	amount := decimal.NewFromInt(10)
	return &CreateTransactionRequest{
		TrxType:     "credit",
		TrxDate:     "2024-02-29",
		Description: "Paycheck",
		Amount:      &amount,
	}
}

func TestValidate_CreateTransactionRequest(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateTransactionRequest)
		field   string
		message string
	}{
		{
			name:    "missing type",
			mutate:  func(r *CreateTransactionRequest) { r.TrxType = "" },
			field:   "trx_type",
			message: "can't be blank",
		},
		{
			name:    "missing amount",
			mutate:  func(r *CreateTransactionRequest) { r.Amount = nil },
			field:   "amount",
			message: "can't be blank",
		},
		{
			name:    "malformed date",
			mutate:  func(r *CreateTransactionRequest) { r.TrxDate = "2024-02-30" },
			field:   "trx_date",
			message: "is invalid",
		},
		{
			name:    "description too long",
			mutate:  func(r *CreateTransactionRequest) { r.Description = strings.Repeat("x", 151) },
			field:   "description",
			message: "is too long (maximum is 150 characters)",
		},
		{
			name:    "memo too long",
			mutate:  func(r *CreateTransactionRequest) { r.Memo = strings.Repeat("x", 501) },
			field:   "memo",
			message: "is too long (maximum is 500 characters)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validTransactionRequest()
			tt.mutate(req)

			err := Validate(req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidation))

			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, []string{tt.message}, verr.Fields[tt.field])
		})
	}

	assert.NoError(t, Validate(validTransactionRequest()))
}

func TestValidate_RegisterRequest(t *testing.T) {
	req := &RegisterRequest{
		Email:    "not-an-email",
		Password: "password1",
		Timezone: "Mars/Olympus",
	}

	err := Validate(req)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"is invalid"}, verr.Fields["email"])
	assert.Equal(t, []string{"can't be blank"}, verr.Fields["password_confirmation"])
	assert.Equal(t, []string{"can't be blank"}, verr.Fields["first_name"])
	assert.Equal(t, []string{"is not a valid timezone"}, verr.Fields["timezone"])
	assert.NotContains(t, verr.Fields, "password")
}

func TestValidate_PartialUpdates(t *testing.T) {
	assert.NoError(t, Validate(&UpdateAccountRequest{}))
	assert.NoError(t, Validate(&UpdateTransactionRequest{}))
	assert.NoError(t, Validate(&UpdateUserRequest{}))

	empty := ""
	assert.NoError(t, Validate(&UpdateAccountRequest{LastFour: &empty}), "clearing last four is allowed")

	short := "12"
	err := Validate(&UpdateAccountRequest{LastFour: &short})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "last_four")

	tz := "Not/AZone"
	require.Error(t, Validate(&UpdateUserRequest{Timezone: &tz}))
}

func TestValidate_CreateAccountRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateAccountRequest
		wantErr string
	}{
		{name: "valid", req: CreateAccountRequest{Name: "Savings", LastFour: "0042"}},
		{name: "no last four", req: CreateAccountRequest{Name: "Cash"}},
		{name: "blank name", req: CreateAccountRequest{}, wantErr: "name"},
		{name: "letters in last four", req: CreateAccountRequest{Name: "Card", LastFour: "12ab"}, wantErr: "last_four"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tt.wantErr)
		})
	}
}
