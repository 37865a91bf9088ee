package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/qifin/lotledger/internal/apperrors"
	"github.com/qifin/lotledger/internal/model"
)

// PriceRepository provides data access methods for the append-only price
// table.
type PriceRepository struct {
	db DBTX
}

// NewPriceRepository creates a new PriceRepository with the provided
// database connection or transaction.
func NewPriceRepository(db DBTX) *PriceRepository {
	return &PriceRepository{db: db}
}

// LatestPriceOnOrBefore finds the most recent price record for a security
// dated on or before the given date. Returns apperrors.ErrPriceNotFound when
// no such record exists.
func (r *PriceRepository) LatestPriceOnOrBefore(securityID string, date time.Time) (model.Price, error) {
	query := `
		SELECT id, security_id, date, price
		FROM price
		WHERE security_id = ?
		AND date <= ?
		ORDER BY date DESC
		LIMIT 1
	`

	var p model.Price
	var dateStr string
	err := r.db.QueryRow(query, securityID, DateString(date)).Scan(
		&p.ID,
		&p.SecurityID,
		&dateStr,
		&p.Price,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Price{}, apperrors.ErrPriceNotFound
	}
	if err != nil {
		return model.Price{}, fmt.Errorf("failed to query price table: %w", err)
	}

	p.Date, err = ParseTime(dateStr)
	if err != nil || p.Date.IsZero() {
		return model.Price{}, fmt.Errorf("failed to parse date: %w", err)
	}

	return p, nil
}

// GetPrices retrieves all price records for a security in date order.
func (r *PriceRepository) GetPrices(securityID string) ([]model.Price, error) {
	query := `
		SELECT id, security_id, date, price
		FROM price
		WHERE security_id = ?
		ORDER BY date ASC
	`

	rows, err := r.db.Query(query, securityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query price table: %w", err)
	}
	defer rows.Close()

	prices := []model.Price{}
	for rows.Next() {
		var p model.Price
		var dateStr string
		if err := rows.Scan(&p.ID, &p.SecurityID, &dateStr, &p.Price); err != nil {
			return nil, fmt.Errorf("failed to scan price table results: %w", err)
		}
		p.Date, err = ParseTime(dateStr)
		if err != nil || p.Date.IsZero() {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		prices = append(prices, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price table: %w", err)
	}

	return prices, nil
}

// InsertPrice stores a new price record.
func (r *PriceRepository) InsertPrice(p *model.Price) error {
	query := `
		INSERT INTO price (id, security_id, date, price)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, p.ID, p.SecurityID, DateString(p.Date), p.Price)
	if err != nil {
		return fmt.Errorf("failed to insert price: %w", err)
	}

	return nil
}
