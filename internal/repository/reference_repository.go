package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/qifin/lotledger/internal/apperrors"
	"github.com/qifin/lotledger/internal/model"
)

// ReferenceRepository provides data access for the reference tables:
// accounts and securities. The rebuild resolves transaction references
// against these and aborts when one is missing.
type ReferenceRepository struct {
	db DBTX
}

// NewReferenceRepository creates a new ReferenceRepository with the provided
// database connection or transaction.
func NewReferenceRepository(db DBTX) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// ResolveAccount retrieves an account by id, returning
// apperrors.ErrAccountNotFound when it does not exist.
func (r *ReferenceRepository) ResolveAccount(accountID string) (model.Account, error) {
	query := `SELECT id, name, account_type, created_at FROM account WHERE id = ?`

	var a model.Account
	var createdAtStr sql.NullString
	err := r.db.QueryRow(query, accountID).Scan(&a.ID, &a.Name, &a.AccountType, &createdAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, apperrors.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to query account table: %w", err)
	}

	if createdAtStr.Valid {
		if a.CreatedAt, err = ParseTime(createdAtStr.String); err != nil {
			return model.Account{}, fmt.Errorf("failed to parse date: %w", err)
		}
	}

	return a, nil
}

// ResolveSecurity retrieves a security by id, returning
// apperrors.ErrSecurityNotFound when it does not exist.
func (r *ReferenceRepository) ResolveSecurity(securityID string) (model.Security, error) {
	query := `SELECT id, symbol, name, created_at FROM security WHERE id = ?`

	var s model.Security
	var createdAtStr sql.NullString
	err := r.db.QueryRow(query, securityID).Scan(&s.ID, &s.Symbol, &s.Name, &createdAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Security{}, apperrors.ErrSecurityNotFound
	}
	if err != nil {
		return model.Security{}, fmt.Errorf("failed to query security table: %w", err)
	}

	if createdAtStr.Valid {
		if s.CreatedAt, err = ParseTime(createdAtStr.String); err != nil {
			return model.Security{}, fmt.Errorf("failed to parse date: %w", err)
		}
	}

	return s, nil
}

// GetAccounts retrieves all accounts ordered by name.
func (r *ReferenceRepository) GetAccounts() ([]model.Account, error) {
	query := `SELECT id, name, account_type, created_at FROM account ORDER BY name ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query account table: %w", err)
	}
	defer rows.Close()

	accounts := []model.Account{}
	for rows.Next() {
		var a model.Account
		var createdAtStr sql.NullString
		if err := rows.Scan(&a.ID, &a.Name, &a.AccountType, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan account table results: %w", err)
		}
		if createdAtStr.Valid {
			if a.CreatedAt, err = ParseTime(createdAtStr.String); err != nil {
				return nil, fmt.Errorf("failed to parse date: %w", err)
			}
		}
		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account table: %w", err)
	}

	return accounts, nil
}

// GetSecurities retrieves all securities ordered by symbol.
func (r *ReferenceRepository) GetSecurities() ([]model.Security, error) {
	query := `SELECT id, symbol, name, created_at FROM security ORDER BY symbol ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query security table: %w", err)
	}
	defer rows.Close()

	securities := []model.Security{}
	for rows.Next() {
		var s model.Security
		var createdAtStr sql.NullString
		if err := rows.Scan(&s.ID, &s.Symbol, &s.Name, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan security table results: %w", err)
		}
		if createdAtStr.Valid {
			if s.CreatedAt, err = ParseTime(createdAtStr.String); err != nil {
				return nil, fmt.Errorf("failed to parse date: %w", err)
			}
		}
		securities = append(securities, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating security table: %w", err)
	}

	return securities, nil
}

// InsertAccount stores a new account row.
func (r *ReferenceRepository) InsertAccount(a *model.Account) error {
	query := `INSERT INTO account (id, name, account_type, created_at) VALUES (?, ?, ?, ?)`

	_, err := r.db.Exec(query, a.ID, a.Name, a.AccountType, a.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

// InsertSecurity stores a new security row.
func (r *ReferenceRepository) InsertSecurity(s *model.Security) error {
	query := `INSERT INTO security (id, symbol, name, created_at) VALUES (?, ?, ?, ?)`

	_, err := r.db.Exec(query, s.ID, s.Symbol, s.Name, s.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert security: %w", err)
	}

	return nil
}
