package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/qifin/lotledger/internal/model"
)

// LotRepository provides data access methods for the lot table. The ledger
// rebuild binds it to a transaction so that clear-and-replay is atomic.
type LotRepository struct {
	db DBTX
}

// NewLotRepository creates a new LotRepository with the provided database
// connection or transaction.
func NewLotRepository(db DBTX) *LotRepository {
	return &LotRepository{db: db}
}

const lotColumns = `
	id, account_id, security_id, purchase_date, quantity, cost_basis,
	remaining_quantity, closed_date, created_by_transaction_id, created_at
`

// OpenLots retrieves all open lots for an (account, security) pair, oldest
// first. The (purchase_date, id) ordering is the FIFO walk order.
func (r *LotRepository) OpenLots(accountID, securityID string) ([]model.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM lot
		WHERE account_id = ?
		AND security_id = ?
		AND closed_date IS NULL
		ORDER BY purchase_date ASC, id ASC
	`

	rows, err := r.db.Query(query, accountID, securityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lot table: %w", err)
	}
	defer rows.Close()

	return scanLots(rows)
}

// CurrentOpenLots retrieves every lot that is open in the current ledger
// state: not closed and with a non-zero remainder.
func (r *LotRepository) CurrentOpenLots() ([]model.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM lot
		WHERE closed_date IS NULL
		AND remaining_quantity != 0
		ORDER BY purchase_date ASC, id ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query lot table: %w", err)
	}
	defer rows.Close()

	return scanLots(rows)
}

// LotsAsOf retrieves every lot that was open on the given date: purchased on
// or before it and not yet closed as of it. A lot that has since been closed
// still counts on dates before its close, which lets the same ledger answer
// historical queries without point-in-time snapshots.
func (r *LotRepository) LotsAsOf(date time.Time) ([]model.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM lot
		WHERE purchase_date <= ?
		AND (closed_date IS NULL OR closed_date > ?)
		AND quantity != 0
		ORDER BY purchase_date ASC, id ASC
	`

	d := DateString(date)
	rows, err := r.db.Query(query, d, d)
	if err != nil {
		return nil, fmt.Errorf("failed to query lot table: %w", err)
	}
	defer rows.Close()

	return scanLots(rows)
}

// LotsForAccount retrieves every lot of an account, open or closed, oldest
// first. Portfolio history filters these by date in memory instead of
// issuing one as-of query per day.
func (r *LotRepository) LotsForAccount(accountID string) ([]model.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM lot
		WHERE account_id = ?
		ORDER BY purchase_date ASC, id ASC
	`

	rows, err := r.db.Query(query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lot table: %w", err)
	}
	defer rows.Close()

	return scanLots(rows)
}

// InsertLot stores a new lot row and returns its id.
func (r *LotRepository) InsertLot(lot *model.Lot) (string, error) {
	query := `
		INSERT INTO lot (
			id, account_id, security_id, purchase_date, quantity, cost_basis,
			remaining_quantity, closed_date, created_by_transaction_id, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		lot.ID,
		lot.AccountID,
		lot.SecurityID,
		DateString(lot.PurchaseDate),
		lot.Quantity,
		lot.CostBasis,
		lot.RemainingQuantity,
		nullDate(lot.ClosedDate),
		lot.CreatedByTransactionID,
		lot.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert lot: %w", err)
	}

	return lot.ID, nil
}

// UpdateLotRemaining updates the remaining quantity of a lot, stamping the
// closed date when the reduction consumed it.
func (r *LotRepository) UpdateLotRemaining(lotID string, remainingQuantity float64, closedDate *time.Time) error {
	query := `
		UPDATE lot
		SET remaining_quantity = ?, closed_date = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query, remainingQuantity, nullDate(closedDate), lotID)
	if err != nil {
		return fmt.Errorf("failed to update lot: %w", err)
	}

	return nil
}

// UpdateLotQuantities rescales a lot in place after a stock split. Cost
// basis is deliberately not a parameter: splits never touch it.
func (r *LotRepository) UpdateLotQuantities(lotID string, quantity, remainingQuantity float64) error {
	query := `
		UPDATE lot
		SET quantity = ?, remaining_quantity = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query, quantity, remainingQuantity, lotID)
	if err != nil {
		return fmt.Errorf("failed to update lot: %w", err)
	}

	return nil
}

// ClearAllLots deletes every lot. Only the full-ledger rebuild calls this,
// inside its transaction, immediately before replaying all transactions.
func (r *LotRepository) ClearAllLots() error {
	if _, err := r.db.Exec(`DELETE FROM lot`); err != nil {
		return fmt.Errorf("failed to clear lot table: %w", err)
	}
	return nil
}

// CountLots returns the number of lot rows.
func (r *LotRepository) CountLots() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM lot`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count lots: %w", err)
	}
	return count, nil
}

// scanLots reads lot rows into models, handling the nullable closed_date.
func scanLots(rows *sql.Rows) ([]model.Lot, error) {
	lots := []model.Lot{}

	for rows.Next() {
		var l model.Lot
		var purchaseDateStr string
		var closedDateStr, createdAtStr sql.NullString

		err := rows.Scan(
			&l.ID,
			&l.AccountID,
			&l.SecurityID,
			&purchaseDateStr,
			&l.Quantity,
			&l.CostBasis,
			&l.RemainingQuantity,
			&closedDateStr,
			&l.CreatedByTransactionID,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lot table results: %w", err)
		}

		l.PurchaseDate, err = ParseTime(purchaseDateStr)
		if err != nil || l.PurchaseDate.IsZero() {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		if closedDateStr.Valid {
			closed, err := ParseTime(closedDateStr.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse date: %w", err)
			}
			l.ClosedDate = &closed
		}
		if createdAtStr.Valid {
			if l.CreatedAt, err = ParseTime(createdAtStr.String); err != nil {
				return nil, fmt.Errorf("failed to parse date: %w", err)
			}
		}

		lots = append(lots, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lot table: %w", err)
	}

	return lots, nil
}
