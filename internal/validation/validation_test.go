package validation_test

import (
	"errors"
	"testing"
	"time"

	"github.com/qifin/lotledger/internal/api/request"
	"github.com/qifin/lotledger/internal/apperrors"
	"github.com/qifin/lotledger/internal/model"
	"github.com/qifin/lotledger/internal/validation"
)

func validLot() *model.Lot {
	return &model.Lot{
		ID:                     "lot-1",
		AccountID:              "acct-1",
		SecurityID:             "sec-1",
		PurchaseDate:           time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		Quantity:               10,
		RemainingQuantity:      10,
		CreatedByTransactionID: "txn-1",
	}
}

// TestValidateLot tests structural lot validation.
//
// WHY: A malformed lot aborts the whole ledger rebuild, so each required
// field must be enforced.
func TestValidateLot(t *testing.T) {
	t.Run("accepts a complete lot", func(t *testing.T) {
		if err := validation.ValidateLot(validLot()); err != nil {
			t.Errorf("ValidateLot() returned unexpected error: %v", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(*model.Lot)
	}{
		{"missing id", func(l *model.Lot) { l.ID = "" }},
		{"missing account", func(l *model.Lot) { l.AccountID = "" }},
		{"missing security", func(l *model.Lot) { l.SecurityID = "" }},
		{"missing transaction", func(l *model.Lot) { l.CreatedByTransactionID = "" }},
		{"zero purchase date", func(l *model.Lot) { l.PurchaseDate = time.Time{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lot := validLot()
			tt.mutate(lot)
			if err := validation.ValidateLot(lot); !errors.Is(err, apperrors.ErrInvalidLot) {
				t.Errorf("Expected ErrInvalidLot, got %v", err)
			}
		})
	}
}

// TestValidateCreateTransaction tests the create-transaction payload checks.
func TestValidateCreateTransaction(t *testing.T) {
	tests := []struct {
		name    string
		req     request.CreateTransactionRequest
		wantErr bool
	}{
		{
			name: "valid bank transaction",
			req: request.CreateTransactionRequest{
				AccountID: "acct-1", Date: "2024-01-10", Type: "bank",
				Amount: ptr(100),
			},
		},
		{
			name: "valid investment transaction",
			req: request.CreateTransactionRequest{
				AccountID: "acct-1", Date: "2024-01-10", Type: "investment",
				InvestmentAction: "Buy", Quantity: 10,
			},
		},
		{
			name:    "missing account",
			req:     request.CreateTransactionRequest{Date: "2024-01-10", Type: "bank", Amount: ptr(100)},
			wantErr: true,
		},
		{
			name:    "missing date",
			req:     request.CreateTransactionRequest{AccountID: "acct-1", Type: "bank", Amount: ptr(100)},
			wantErr: true,
		},
		{
			name: "malformed date",
			req: request.CreateTransactionRequest{
				AccountID: "acct-1", Date: "Jan 10 2024", Type: "bank", Amount: ptr(100),
			},
			wantErr: true,
		},
		{
			name:    "bank without amount",
			req:     request.CreateTransactionRequest{AccountID: "acct-1", Date: "2024-01-10", Type: "bank"},
			wantErr: true,
		},
		{
			name: "investment without action",
			req: request.CreateTransactionRequest{
				AccountID: "acct-1", Date: "2024-01-10", Type: "investment",
			},
			wantErr: true,
		},
		{
			name: "unknown type",
			req: request.CreateTransactionRequest{
				AccountID: "acct-1", Date: "2024-01-10", Type: "margin",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateCreateTransaction(&tt.req)
			if tt.wantErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

// TestValidateCreatePrice tests the create-price payload checks.
func TestValidateCreatePrice(t *testing.T) {
	t.Run("accepts a valid payload", func(t *testing.T) {
		req := request.CreatePriceRequest{SecurityID: "sec-1", Date: "2024-01-10", Price: 100}
		if err := validation.ValidateCreatePrice(&req); err != nil {
			t.Errorf("ValidateCreatePrice() returned unexpected error: %v", err)
		}
	})

	t.Run("rejects non-positive price", func(t *testing.T) {
		req := request.CreatePriceRequest{SecurityID: "sec-1", Date: "2024-01-10", Price: 0}
		if err := validation.ValidateCreatePrice(&req); err == nil {
			t.Error("Expected validation error for zero price")
		}
	})

	t.Run("rejects missing security", func(t *testing.T) {
		req := request.CreatePriceRequest{Date: "2024-01-10", Price: 100}
		if err := validation.ValidateCreatePrice(&req); err == nil {
			t.Error("Expected validation error for missing security")
		}
	})
}

func ptr(f float64) *float64 {
	return &f
}
