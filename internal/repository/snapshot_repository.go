package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/qifin/lotledger/internal/model"
)

// SnapshotRepository provides data access for the materialized daily
// portfolio table.
type SnapshotRepository struct {
	db DBTX
}

// NewSnapshotRepository creates a new SnapshotRepository with the provided
// database connection or transaction.
func NewSnapshotRepository(db DBTX) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// GetSnapshots retrieves materialized rows for an account within a date
// range, in date order. An empty accountID returns rows for all accounts.
func (r *SnapshotRepository) GetSnapshots(accountID string, startDate, endDate time.Time) ([]model.DailyPortfolioSnapshot, error) {
	query := `
		SELECT id, account_id, date, cash_balance, market_value, cost_basis,
			unrealized_gain_loss, calculated_at
		FROM daily_portfolio_materialized
		WHERE date >= ? AND date <= ?
	`
	args := []any{DateString(startDate), DateString(endDate)}
	if accountID != "" {
		query += ` AND account_id = ?`
		args = append(args, accountID)
	}
	query += ` ORDER BY date ASC, account_id ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily portfolio table: %w", err)
	}
	defer rows.Close()

	snapshots := []model.DailyPortfolioSnapshot{}
	for rows.Next() {
		var s model.DailyPortfolioSnapshot
		var dateStr string
		var calculatedAtStr sql.NullString

		err := rows.Scan(
			&s.ID,
			&s.AccountID,
			&dateStr,
			&s.CashBalance,
			&s.MarketValue,
			&s.CostBasis,
			&s.UnrealizedGainLoss,
			&calculatedAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily portfolio results: %w", err)
		}

		s.Date, err = ParseTime(dateStr)
		if err != nil || s.Date.IsZero() {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		if calculatedAtStr.Valid {
			if s.CalculatedAt, err = ParseTime(calculatedAtStr.String); err != nil {
				return nil, fmt.Errorf("failed to parse date: %w", err)
			}
		}

		snapshots = append(snapshots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily portfolio table: %w", err)
	}

	return snapshots, nil
}

// ReplaceSnapshots deletes and re-inserts all materialized rows for one
// account. Regeneration always recomputes an account's full history, so a
// blanket delete keeps stale dates from lingering.
func (r *SnapshotRepository) ReplaceSnapshots(accountID string, snapshots []model.DailyPortfolioSnapshot) error {
	if _, err := r.db.Exec(`DELETE FROM daily_portfolio_materialized WHERE account_id = ?`, accountID); err != nil {
		return fmt.Errorf("failed to clear daily portfolio rows: %w", err)
	}

	query := `
		INSERT INTO daily_portfolio_materialized (
			id, account_id, date, cash_balance, market_value, cost_basis,
			unrealized_gain_loss, calculated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, s := range snapshots {
		_, err := r.db.Exec(query,
			s.ID,
			s.AccountID,
			DateString(s.Date),
			s.CashBalance,
			s.MarketValue,
			s.CostBasis,
			s.UnrealizedGainLoss,
			s.CalculatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to insert daily portfolio row: %w", err)
		}
	}

	return nil
}
