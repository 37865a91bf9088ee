package repository

import (
	"database/sql"
	"fmt"
	"time"
)

// DBTX is the subset of database/sql methods the repositories need. Both
// *sql.DB and *sql.Tx satisfy it, which lets the ledger rebuild run every
// repository call against one atomic transaction.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// ParseTime parses a date string in "2006-01-02" or RFC3339 format.
func ParseTime(str string) (time.Time, error) {
	returnTime, err := time.Parse("2006-01-02", str)
	if err != nil {
		returnTime, err = time.Parse(time.RFC3339, str)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse date: %w", err)
		}
	}
	return returnTime.UTC(), nil
}

// DateString formats a time as the DATE column representation.
func DateString(t time.Time) string {
	return t.Format("2006-01-02")
}

// nullFloat converts an optional float into its driver representation.
func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// nullDate converts an optional date into its driver representation.
func nullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return DateString(*t)
}

// nullString converts an empty string into NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
