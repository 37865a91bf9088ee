package testutil

import (
	"database/sql"
	"testing"

	"github.com/qifin/lotledger/internal/repository"
	"github.com/qifin/lotledger/internal/service"
)

// NewTestSystemService creates a SystemService wired to the given database.
func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()
	return service.NewSystemService(db)
}

// NewTestLedgerService creates a LedgerService wired to the given database.
func NewTestLedgerService(t *testing.T, db *sql.DB) *service.LedgerService {
	t.Helper()
	return service.NewLedgerService(db)
}

// NewTestHoldingsService creates a HoldingsService wired to the given database.
func NewTestHoldingsService(t *testing.T, db *sql.DB) *service.HoldingsService {
	t.Helper()
	return service.NewHoldingsService(repository.NewLotRepository(db))
}

// NewTestPortfolioService creates a PortfolioService wired to the given database.
func NewTestPortfolioService(t *testing.T, db *sql.DB) *service.PortfolioService {
	t.Helper()
	return service.NewPortfolioService(
		repository.NewTransactionRepository(db),
		repository.NewLotRepository(db),
		repository.NewPriceRepository(db),
		repository.NewReferenceRepository(db),
		repository.NewSnapshotRepository(db),
		NewTestHoldingsService(t, db),
	)
}

// NewTestSnapshotService creates a SnapshotService wired to the given database.
func NewTestSnapshotService(t *testing.T, db *sql.DB) *service.SnapshotService {
	t.Helper()
	return service.NewSnapshotService(
		repository.NewTransactionRepository(db),
		repository.NewReferenceRepository(db),
		repository.NewSnapshotRepository(db),
		NewTestPortfolioService(t, db),
	)
}

// NewTestTransactionService creates a TransactionService wired to the given database.
func NewTestTransactionService(t *testing.T, db *sql.DB) *service.TransactionService {
	t.Helper()
	return service.NewTransactionService(
		repository.NewTransactionRepository(db),
		repository.NewReferenceRepository(db),
	)
}

// NewTestPriceService creates a PriceService wired to the given database.
func NewTestPriceService(t *testing.T, db *sql.DB) *service.PriceService {
	t.Helper()
	return service.NewPriceService(
		repository.NewPriceRepository(db),
		repository.NewReferenceRepository(db),
	)
}

// NewTestReferenceService creates a ReferenceService wired to the given database.
func NewTestReferenceService(t *testing.T, db *sql.DB) *service.ReferenceService {
	t.Helper()
	return service.NewReferenceService(repository.NewReferenceRepository(db))
}
