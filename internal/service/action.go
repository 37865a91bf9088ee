package service

import (
	"fmt"

	"github.com/qifin/lotledger/internal/apperrors"
	"github.com/qifin/lotledger/internal/model"
)

// ActionCategory is the routing decision for one investment action code.
type ActionCategory int

// Categories an investment action can resolve to. CashOnly and Transfer
// actions are skipped entirely by the lot ledger: they never touch lots.
const (
	ActionCashOnly ActionCategory = iota
	ActionTransfer
	ActionBuy
	ActionReinvest
	ActionSharesIn
	ActionSell
	ActionSharesOut
	ActionSplit
	ActionGrantOrVest
	ActionExercise
)

// Fixed action enumerations, following the QIF investment action codes.
var (
	cashOnlyActions = []string{
		"Cash", "CGLong", "CGShort", "Div", "DivX", "IntInc",
		"MargInt", "MiscExp", "MiscInc", "MiscIncX",
		"ContribX", "WithdrwX", "RtrnCap", "RtrnCapX",
	}
	transferActions    = []string{"XIn", "XOut"}
	buyActions         = []string{"Buy", "BuyX", "CvrShrt"}
	sellActions        = []string{"Sell", "SellX", "ShtSell"}
	reinvestActions    = []string{"ReinvDiv", "ReinvInt", "ReinvLg", "ReinvMd", "ReinvSh"}
	sharesInActions    = []string{"ShrsIn"}
	sharesOutActions   = []string{"ShrsOut"}
	splitActions       = []string{"StkSplit"}
	grantOrVestActions = []string{"Grant", "Vest"}
	exerciseActions    = []string{"Exercise"}
)

var actionCategories = buildActionCategories()

func buildActionCategories() map[string]ActionCategory {
	categories := make(map[string]ActionCategory)
	add := func(actions []string, category ActionCategory) {
		for _, action := range actions {
			categories[action] = category
		}
	}
	add(cashOnlyActions, ActionCashOnly)
	add(transferActions, ActionTransfer)
	add(buyActions, ActionBuy)
	add(sellActions, ActionSell)
	add(reinvestActions, ActionReinvest)
	add(sharesInActions, ActionSharesIn)
	add(sharesOutActions, ActionSharesOut)
	add(splitActions, ActionSplit)
	add(grantOrVestActions, ActionGrantOrVest)
	add(exerciseActions, ActionExercise)
	return categories
}

// ClassifyAction maps an investment action code to its category. An action
// outside every enumeration is a hard failure, not a warning: an
// unrecognized action replayed silently would lose ledger information.
func ClassifyAction(action string) (ActionCategory, error) {
	category, ok := actionCategories[action]
	if !ok {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrUnhandledAction, action)
	}
	return category, nil
}

// TouchesLots reports whether transactions in this category affect the lot
// ledger. CashOnly and Transfer actions only move cash.
func (c ActionCategory) TouchesLots() bool {
	return c != ActionCashOnly && c != ActionTransfer
}

// Cash-impact enumerations for the portfolio valuator. Actions in neither
// set (reinvestments, share movements, splits, option lifecycle) have no
// cash impact.
var (
	cashInflowActions = []string{
		"Cash", "CGLong", "CGShort", "ContribX", "Div", "DivX",
		"IntInc", "MiscInc", "MiscIncX", "Sell", "ShtSell", "XIn",
	}
	cashOutflowActions = []string{
		"Buy", "CvrShrt", "MargInt", "MiscExp", "XOut", "WithdrwX",
	}
)

var cashImpactSigns = buildCashImpactSigns()

func buildCashImpactSigns() map[string]float64 {
	signs := make(map[string]float64)
	for _, action := range cashInflowActions {
		signs[action] = 1
	}
	for _, action := range cashOutflowActions {
		signs[action] = -1
	}
	return signs
}

// CashImpactSign returns +1 for cash-inflow actions, -1 for cash-outflow
// actions, and 0 for actions without cash impact.
func CashImpactSign(action string) float64 {
	return cashImpactSigns[action]
}

// Same-day replay tiers: cash inflows land before outflows before entries
// with no cash impact.
const (
	replayInflow = iota
	replayOutflow
	replayNeutral
)

// ReplayPriority returns the same-day replay tier of a transaction.
// Investment rows are tiered by their action's cash-impact class rather
// than the stored amount sign, so a register that records outflow amounts
// as positive still replays its inflows first, matching the cash rule.
// Bank rows have no action and fall back to the amount sign.
func ReplayPriority(t *model.Transaction) int {
	sign := CashImpactSign(t.InvestmentAction)
	if t.Type == model.TransactionTypeBank {
		sign = t.AmountValue()
	}
	switch {
	case sign > 0:
		return replayInflow
	case sign < 0:
		return replayOutflow
	default:
		return replayNeutral
	}
}
