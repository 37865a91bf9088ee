package model

import "time"

// Transaction types distinguish plain bank register entries from investment
// register entries. Bank transactions only ever affect cash balances.
const (
	TransactionTypeBank       = "bank"
	TransactionTypeInvestment = "investment"
)

// Transaction represents a single imported register entry. Transactions are
// read-only input to the ledger: the rebuild replays them, it never edits them.
//
// Amount, Price and Commission are nullable in the source data (a QIF
// reinvestment record may carry neither an amount nor a price), hence the
// pointer fields.
type Transaction struct {
	ID               string    `json:"id"`
	AccountID        string    `json:"accountId"`
	Date             time.Time `json:"date"`
	Type             string    `json:"type"`
	InvestmentAction string    `json:"investmentAction,omitempty"`
	SecurityID       string    `json:"securityId,omitempty"`
	Amount           *float64  `json:"amount,omitempty"`
	Quantity         float64   `json:"quantity"`
	Price            *float64  `json:"price,omitempty"`
	Commission       *float64  `json:"commission,omitempty"`
	CreatedAt        time.Time `json:"createdAt,omitempty"`
}

// AmountValue returns the transaction amount, or 0 when absent.
func (t *Transaction) AmountValue() float64 {
	if t.Amount == nil {
		return 0
	}
	return *t.Amount
}

// PriceValue returns the transaction price, or 0 when absent.
func (t *Transaction) PriceValue() float64 {
	if t.Price == nil {
		return 0
	}
	return *t.Price
}
