package service_test

import (
	"errors"
	"testing"

	"github.com/qifin/lotledger/internal/apperrors"
	"github.com/qifin/lotledger/internal/model"
	"github.com/qifin/lotledger/internal/service"
	"github.com/qifin/lotledger/internal/testutil"
)

// TestClassifyAction tests the action-to-category mapping.
//
// WHY: Classification drives the whole replay. Every known action must land
// in its category and anything unknown must be a hard error, because a
// silently skipped action would lose ledger information.
func TestClassifyAction(t *testing.T) {
	tests := []struct {
		action   string
		expected service.ActionCategory
	}{
		{"Buy", service.ActionBuy},
		{"BuyX", service.ActionBuy},
		{"CvrShrt", service.ActionBuy},
		{"Sell", service.ActionSell},
		{"SellX", service.ActionSell},
		{"ShtSell", service.ActionSell},
		{"ReinvDiv", service.ActionReinvest},
		{"ReinvInt", service.ActionReinvest},
		{"ReinvLg", service.ActionReinvest},
		{"ReinvMd", service.ActionReinvest},
		{"ReinvSh", service.ActionReinvest},
		{"ShrsIn", service.ActionSharesIn},
		{"ShrsOut", service.ActionSharesOut},
		{"StkSplit", service.ActionSplit},
		{"Grant", service.ActionGrantOrVest},
		{"Vest", service.ActionGrantOrVest},
		{"Exercise", service.ActionExercise},
		{"Div", service.ActionCashOnly},
		{"IntInc", service.ActionCashOnly},
		{"MargInt", service.ActionCashOnly},
		{"RtrnCap", service.ActionCashOnly},
		{"XIn", service.ActionTransfer},
		{"XOut", service.ActionTransfer},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			category, err := service.ClassifyAction(tt.action)
			if err != nil {
				t.Fatalf("ClassifyAction(%q) returned unexpected error: %v", tt.action, err)
			}
			if category != tt.expected {
				t.Errorf("ClassifyAction(%q) = %v, expected %v", tt.action, category, tt.expected)
			}
		})
	}

	t.Run("unknown action is a hard error", func(t *testing.T) {
		_, err := service.ClassifyAction("Frobnicate")
		if !errors.Is(err, apperrors.ErrUnhandledAction) {
			t.Errorf("Expected ErrUnhandledAction, got %v", err)
		}
	})

	t.Run("empty action is a hard error", func(t *testing.T) {
		_, err := service.ClassifyAction("")
		if !errors.Is(err, apperrors.ErrUnhandledAction) {
			t.Errorf("Expected ErrUnhandledAction, got %v", err)
		}
	})
}

// TestActionCategory_TouchesLots tests which categories reach the lot
// ledger.
func TestActionCategory_TouchesLots(t *testing.T) {
	if service.ActionCashOnly.TouchesLots() {
		t.Error("Expected cash-only actions to skip the lot ledger")
	}
	if service.ActionTransfer.TouchesLots() {
		t.Error("Expected transfer actions to skip the lot ledger")
	}
	for _, category := range []service.ActionCategory{
		service.ActionBuy, service.ActionSell, service.ActionReinvest,
		service.ActionSharesIn, service.ActionSharesOut, service.ActionSplit,
		service.ActionGrantOrVest, service.ActionExercise,
	} {
		if !category.TouchesLots() {
			t.Errorf("Expected category %v to touch the lot ledger", category)
		}
	}
}

// TestCashImpactSign tests the cash-impact classification.
//
// WHY: Cash balances hinge on this sign. Inflows and outflows must map to
// +1/-1 and everything else to 0.
func TestCashImpactSign(t *testing.T) {
	tests := []struct {
		action   string
		expected float64
	}{
		{"Sell", 1},
		{"ShtSell", 1},
		{"Div", 1},
		{"IntInc", 1},
		{"XIn", 1},
		{"ContribX", 1},
		{"Buy", -1},
		{"CvrShrt", -1},
		{"MargInt", -1},
		{"WithdrwX", -1},
		{"XOut", -1},
		{"ReinvDiv", 0},
		{"ShrsIn", 0},
		{"StkSplit", 0},
		{"Grant", 0},
		{"Exercise", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if sign := service.CashImpactSign(tt.action); sign != tt.expected {
			t.Errorf("CashImpactSign(%q) = %v, expected %v", tt.action, sign, tt.expected)
		}
	}
}

// TestReplayPriority tests the same-day replay tier.
//
// WHY: The tier must come from the action's cash class so registers storing
// outflow amounts positive still replay inflows first. Only bank rows, which
// carry no action, fall back to the amount sign.
func TestReplayPriority(t *testing.T) {
	tests := []struct {
		name     string
		txn      model.Transaction
		expected int
	}{
		{
			name:     "sell is an inflow",
			txn:      model.Transaction{Type: model.TransactionTypeInvestment, InvestmentAction: "Sell", Amount: testutil.Ptr(500)},
			expected: 0,
		},
		{
			name:     "buy with negative amount is an outflow",
			txn:      model.Transaction{Type: model.TransactionTypeInvestment, InvestmentAction: "Buy", Amount: testutil.Ptr(-500)},
			expected: 1,
		},
		{
			name:     "buy stored positive is still an outflow",
			txn:      model.Transaction{Type: model.TransactionTypeInvestment, InvestmentAction: "Buy", Amount: testutil.Ptr(500)},
			expected: 1,
		},
		{
			name:     "split has no cash impact",
			txn:      model.Transaction{Type: model.TransactionTypeInvestment, InvestmentAction: "StkSplit"},
			expected: 2,
		},
		{
			name:     "bank deposit tiers by amount sign",
			txn:      model.Transaction{Type: model.TransactionTypeBank, Amount: testutil.Ptr(100)},
			expected: 0,
		},
		{
			name:     "bank withdrawal tiers by amount sign",
			txn:      model.Transaction{Type: model.TransactionTypeBank, Amount: testutil.Ptr(-100)},
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if priority := service.ReplayPriority(&tt.txn); priority != tt.expected {
				t.Errorf("ReplayPriority() = %d, expected %d", priority, tt.expected)
			}
		})
	}
}
