package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/qifin/lotledger/internal/apperrors"
	"github.com/qifin/lotledger/internal/model"
)

// TransactionRepository provides data access methods for the transaction
// table. Transactions are the read-only input to the lot ledger.
type TransactionRepository struct {
	db DBTX
}

// NewTransactionRepository creates a new TransactionRepository with the
// provided database connection or transaction.
func NewTransactionRepository(db DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `
	id, account_id, date, type, investment_action, security_id,
	amount, quantity, price, commission, created_at
`

// OrderedInvestmentTransactions retrieves every investment transaction in
// stable (date, id) order. The same-day cash-priority tier (inflows before
// outflows before no-impact entries) is applied by the replay driver, which
// owns the action classification the tier depends on.
func (r *TransactionRepository) OrderedInvestmentTransactions() ([]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM "transaction"
		WHERE type = ?
		ORDER BY date ASC, id ASC
	`

	rows, err := r.db.Query(query, model.TransactionTypeInvestment)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// GetTransactionsForAccount retrieves all transactions (bank and investment)
// for an account dated on or before the given date, ordered by date then id.
// Used by the cash-balance computation, which sums contributions and does
// not depend on same-day order.
func (r *TransactionRepository) GetTransactionsForAccount(accountID string, upTo time.Time) ([]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM "transaction"
		WHERE account_id = ?
		AND date <= ?
		ORDER BY date ASC, id ASC
	`

	rows, err := r.db.Query(query, accountID, DateString(upTo))
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// GetTransactions retrieves all transactions, optionally narrowed to one
// account, ordered by date then id.
func (r *TransactionRepository) GetTransactions(accountID string) ([]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM "transaction"
	`
	var args []any
	if accountID != "" {
		query += ` WHERE account_id = ?`
		args = append(args, accountID)
	}
	query += ` ORDER BY date ASC, id ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// GetOldestTransactionDate finds the date of the earliest transaction,
// optionally narrowed to one account. Returns time.Time{} when no
// transactions exist.
func (r *TransactionRepository) GetOldestTransactionDate(accountID string) time.Time {
	query := `SELECT MIN(date) FROM "transaction"`
	var args []any
	if accountID != "" {
		query += ` WHERE account_id = ?`
		args = append(args, accountID)
	}

	var oldestDateStr sql.NullString
	err := r.db.QueryRow(query, args...).Scan(&oldestDateStr)
	if err != nil || !oldestDateStr.Valid {
		return time.Time{}
	}
	oldestDate, err := ParseTime(oldestDateStr.String)
	if err != nil {
		return time.Time{}
	}

	return oldestDate
}

// InsertTransaction stores a new transaction row.
func (r *TransactionRepository) InsertTransaction(t *model.Transaction) error {
	query := `
		INSERT INTO "transaction" (
			id, account_id, date, type, investment_action, security_id,
			amount, quantity, price, commission, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		t.ID,
		t.AccountID,
		DateString(t.Date),
		t.Type,
		nullString(t.InvestmentAction),
		nullString(t.SecurityID),
		nullFloat(t.Amount),
		t.Quantity,
		nullFloat(t.Price),
		nullFloat(t.Commission),
		t.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// GetTransaction retrieves a single transaction by its ID.
func (r *TransactionRepository) GetTransaction(transactionID string) (model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM "transaction"
		WHERE id = ?
	`

	rows, err := r.db.Query(query, transactionID)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions, err := scanTransactions(rows)
	if err != nil {
		return model.Transaction{}, err
	}
	if len(transactions) == 0 {
		return model.Transaction{}, apperrors.ErrTransactionNotFound
	}

	return transactions[0], nil
}

// scanTransactions reads transaction rows into models, handling the nullable
// amount/price/commission columns and the string date columns.
func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	transactions := []model.Transaction{}

	for rows.Next() {
		var t model.Transaction
		var dateStr string
		var createdAtStr sql.NullString
		var action, securityID sql.NullString
		var amount, price, commission sql.NullFloat64

		err := rows.Scan(
			&t.ID,
			&t.AccountID,
			&dateStr,
			&t.Type,
			&action,
			&securityID,
			&amount,
			&t.Quantity,
			&price,
			&commission,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction table results: %w", err)
		}

		t.Date, err = ParseTime(dateStr)
		if err != nil || t.Date.IsZero() {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		if createdAtStr.Valid {
			if t.CreatedAt, err = ParseTime(createdAtStr.String); err != nil {
				return nil, fmt.Errorf("failed to parse date: %w", err)
			}
		}

		if action.Valid {
			t.InvestmentAction = action.String
		}
		if securityID.Valid {
			t.SecurityID = securityID.String
		}
		if amount.Valid {
			v := amount.Float64
			t.Amount = &v
		}
		if price.Valid {
			v := price.Float64
			t.Price = &v
		}
		if commission.Valid {
			v := commission.Float64
			t.Commission = &v
		}

		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}
