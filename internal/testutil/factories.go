package testutil

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/qifin/lotledger/internal/model"
)

var nameCounter atomic.Int64

// MakeID returns a fresh random identifier.
func MakeID() string {
	return uuid.New().String()
}

// MakeName returns a unique name with the given prefix, so tests can create
// many entities without colliding on unique columns.
func MakeName(prefix string) string {
	return fmt.Sprintf("%s %d", prefix, nameCounter.Add(1))
}

// Date is shorthand for a UTC midnight timestamp.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Ptr returns a pointer to the given float. Convenient for the nullable
// amount/price/commission transaction fields.
func Ptr(f float64) *float64 {
	return &f
}

// AccountBuilder provides a fluent interface for creating test accounts.
//
// Example usage:
//
//	account := testutil.NewAccount().WithName("Brokerage").Build(t, db)
type AccountBuilder struct {
	ID          string
	Name        string
	AccountType string
}

// NewAccount creates an AccountBuilder with sensible defaults.
func NewAccount() *AccountBuilder {
	return &AccountBuilder{
		ID:          MakeID(),
		Name:        MakeName("Test Account"),
		AccountType: "investment",
	}
}

// WithID sets a custom ID.
func (b *AccountBuilder) WithID(id string) *AccountBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *AccountBuilder) WithName(name string) *AccountBuilder {
	b.Name = name
	return b
}

// WithType sets a custom account type.
func (b *AccountBuilder) WithType(accountType string) *AccountBuilder {
	b.AccountType = accountType
	return b
}

// Build creates the account in the database and returns it.
func (b *AccountBuilder) Build(t *testing.T, db *sql.DB) model.Account {
	t.Helper()

	query := `INSERT INTO account (id, name, account_type) VALUES (?, ?, ?)`
	if _, err := db.Exec(query, b.ID, b.Name, b.AccountType); err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}

	return model.Account{
		ID:          b.ID,
		Name:        b.Name,
		AccountType: b.AccountType,
	}
}

// SecurityBuilder provides a fluent interface for creating test securities.
// The id defaults to the content hash of the symbol, matching production.
type SecurityBuilder struct {
	ID     string
	Symbol string
	Name   string
}

// NewSecurity creates a SecurityBuilder with sensible defaults.
func NewSecurity() *SecurityBuilder {
	symbol := fmt.Sprintf("TST%d", nameCounter.Add(1))
	return &SecurityBuilder{
		ID:     model.SecurityID(symbol),
		Symbol: symbol,
		Name:   MakeName("Test Security"),
	}
}

// WithSymbol sets a custom symbol and rederives the id from it.
func (b *SecurityBuilder) WithSymbol(symbol string) *SecurityBuilder {
	b.Symbol = symbol
	b.ID = model.SecurityID(symbol)
	return b
}

// WithName sets a custom name.
func (b *SecurityBuilder) WithName(name string) *SecurityBuilder {
	b.Name = name
	return b
}

// Build creates the security in the database and returns it.
func (b *SecurityBuilder) Build(t *testing.T, db *sql.DB) model.Security {
	t.Helper()

	query := `INSERT INTO security (id, symbol, name) VALUES (?, ?, ?)`
	if _, err := db.Exec(query, b.ID, b.Symbol, b.Name); err != nil {
		t.Fatalf("Failed to create test security: %v", err)
	}

	return model.Security{
		ID:     b.ID,
		Symbol: b.Symbol,
		Name:   b.Name,
	}
}

// TransactionBuilder provides a fluent interface for creating test
// transactions. Defaults describe an investment buy; use the With* methods
// to shape other register entries.
//
// Example usage:
//
//	txn := testutil.NewTransaction(account.ID).
//	    WithAction("Buy").
//	    WithSecurity(security.ID).
//	    WithQuantity(10).
//	    WithAmount(-1500).
//	    Build(t, db)
type TransactionBuilder struct {
	ID               string
	AccountID        string
	Date             time.Time
	Type             string
	InvestmentAction string
	SecurityID       string
	Amount           *float64
	Quantity         float64
	Price            *float64
	Commission       *float64
}

// NewTransaction creates a TransactionBuilder with sensible defaults.
func NewTransaction(accountID string) *TransactionBuilder {
	return &TransactionBuilder{
		ID:        MakeID(),
		AccountID: accountID,
		Date:      Date(2024, time.January, 15),
		Type:      model.TransactionTypeInvestment,
	}
}

// WithID sets a custom ID.
func (b *TransactionBuilder) WithID(id string) *TransactionBuilder {
	b.ID = id
	return b
}

// WithDate sets a custom date.
func (b *TransactionBuilder) WithDate(date time.Time) *TransactionBuilder {
	b.Date = date
	return b
}

// Bank marks the transaction as a plain bank register entry.
func (b *TransactionBuilder) Bank() *TransactionBuilder {
	b.Type = model.TransactionTypeBank
	b.InvestmentAction = ""
	b.SecurityID = ""
	return b
}

// WithAction sets the investment action.
func (b *TransactionBuilder) WithAction(action string) *TransactionBuilder {
	b.InvestmentAction = action
	return b
}

// WithSecurity sets the security reference.
func (b *TransactionBuilder) WithSecurity(securityID string) *TransactionBuilder {
	b.SecurityID = securityID
	return b
}

// WithAmount sets the transaction amount.
func (b *TransactionBuilder) WithAmount(amount float64) *TransactionBuilder {
	b.Amount = &amount
	return b
}

// WithQuantity sets the share quantity.
func (b *TransactionBuilder) WithQuantity(quantity float64) *TransactionBuilder {
	b.Quantity = quantity
	return b
}

// WithPrice sets the per-share price.
func (b *TransactionBuilder) WithPrice(price float64) *TransactionBuilder {
	b.Price = &price
	return b
}

// WithCommission sets the commission.
func (b *TransactionBuilder) WithCommission(commission float64) *TransactionBuilder {
	b.Commission = &commission
	return b
}

// Build creates the transaction in the database and returns it.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	query := `
		INSERT INTO "transaction"
			(id, account_id, date, type, investment_action, security_id, amount, quantity, price, commission)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var action, securityID any
	if b.InvestmentAction != "" {
		action = b.InvestmentAction
	}
	if b.SecurityID != "" {
		securityID = b.SecurityID
	}

	_, err := db.Exec(query,
		b.ID,
		b.AccountID,
		b.Date.Format("2006-01-02"),
		b.Type,
		action,
		securityID,
		optFloat(b.Amount),
		b.Quantity,
		optFloat(b.Price),
		optFloat(b.Commission),
	)
	if err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	return model.Transaction{
		ID:               b.ID,
		AccountID:        b.AccountID,
		Date:             b.Date,
		Type:             b.Type,
		InvestmentAction: b.InvestmentAction,
		SecurityID:       b.SecurityID,
		Amount:           b.Amount,
		Quantity:         b.Quantity,
		Price:            b.Price,
		Commission:       b.Commission,
	}
}

// PriceBuilder provides a fluent interface for creating test prices.
type PriceBuilder struct {
	ID         string
	SecurityID string
	Date       time.Time
	Price      float64
}

// NewPrice creates a PriceBuilder with sensible defaults.
func NewPrice(securityID string) *PriceBuilder {
	return &PriceBuilder{
		ID:         MakeID(),
		SecurityID: securityID,
		Date:       Date(2024, time.January, 15),
		Price:      100,
	}
}

// WithDate sets a custom date.
func (b *PriceBuilder) WithDate(date time.Time) *PriceBuilder {
	b.Date = date
	return b
}

// WithPrice sets a custom price.
func (b *PriceBuilder) WithPrice(price float64) *PriceBuilder {
	b.Price = price
	return b
}

// Build creates the price record in the database and returns it.
func (b *PriceBuilder) Build(t *testing.T, db *sql.DB) model.Price {
	t.Helper()

	query := `INSERT INTO price (id, security_id, date, price) VALUES (?, ?, ?, ?)`
	if _, err := db.Exec(query, b.ID, b.SecurityID, b.Date.Format("2006-01-02"), b.Price); err != nil {
		t.Fatalf("Failed to create test price: %v", err)
	}

	return model.Price{
		ID:         b.ID,
		SecurityID: b.SecurityID,
		Date:       b.Date,
		Price:      b.Price,
	}
}

// LotBuilder provides a fluent interface for creating test lots directly,
// bypassing the ledger rebuild. The creating transaction is synthesized so
// the foreign key holds.
type LotBuilder struct {
	AccountID         string
	SecurityID        string
	PurchaseDate      time.Time
	Quantity          float64
	CostBasis         float64
	RemainingQuantity float64
	ClosedDate        *time.Time
}

// NewLot creates a LotBuilder with sensible defaults: 10 shares at a total
// cost of 1000, fully remaining.
func NewLot(accountID, securityID string) *LotBuilder {
	return &LotBuilder{
		AccountID:         accountID,
		SecurityID:        securityID,
		PurchaseDate:      Date(2024, time.January, 15),
		Quantity:          10,
		CostBasis:         1000,
		RemainingQuantity: 10,
	}
}

// WithPurchaseDate sets a custom purchase date.
func (b *LotBuilder) WithPurchaseDate(date time.Time) *LotBuilder {
	b.PurchaseDate = date
	return b
}

// WithQuantity sets quantity and remaining quantity together.
func (b *LotBuilder) WithQuantity(quantity float64) *LotBuilder {
	b.Quantity = quantity
	b.RemainingQuantity = quantity
	return b
}

// WithRemaining sets the remaining quantity only.
func (b *LotBuilder) WithRemaining(remaining float64) *LotBuilder {
	b.RemainingQuantity = remaining
	return b
}

// WithCostBasis sets the total dollar cost basis.
func (b *LotBuilder) WithCostBasis(costBasis float64) *LotBuilder {
	b.CostBasis = costBasis
	return b
}

// ClosedOn marks the lot closed on the given date.
func (b *LotBuilder) ClosedOn(date time.Time) *LotBuilder {
	b.ClosedDate = &date
	b.RemainingQuantity = 0
	return b
}

// Build creates the lot (and its backing transaction) in the database and
// returns it. The lot id is derived from its key fields as in production.
func (b *LotBuilder) Build(t *testing.T, db *sql.DB) model.Lot {
	t.Helper()

	txn := NewTransaction(b.AccountID).
		WithAction("Buy").
		WithSecurity(b.SecurityID).
		WithDate(b.PurchaseDate).
		WithQuantity(b.Quantity).
		WithAmount(-b.CostBasis).
		Build(t, db)

	lot := model.Lot{
		ID:                     model.LotID(b.AccountID, b.SecurityID, b.PurchaseDate, txn.ID),
		AccountID:              b.AccountID,
		SecurityID:             b.SecurityID,
		PurchaseDate:           b.PurchaseDate,
		Quantity:               b.Quantity,
		CostBasis:              b.CostBasis,
		RemainingQuantity:      b.RemainingQuantity,
		ClosedDate:             b.ClosedDate,
		CreatedByTransactionID: txn.ID,
	}

	query := `
		INSERT INTO lot
			(id, account_id, security_id, purchase_date, quantity, cost_basis,
			 remaining_quantity, closed_date, created_by_transaction_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var closed any
	if b.ClosedDate != nil {
		closed = b.ClosedDate.Format("2006-01-02")
	}

	_, err := db.Exec(query,
		lot.ID,
		lot.AccountID,
		lot.SecurityID,
		lot.PurchaseDate.Format("2006-01-02"),
		lot.Quantity,
		lot.CostBasis,
		lot.RemainingQuantity,
		closed,
		lot.CreatedByTransactionID,
	)
	if err != nil {
		t.Fatalf("Failed to create test lot: %v", err)
	}

	return lot
}

func optFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
