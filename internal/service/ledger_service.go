package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sort"

	"github.com/qifin/lotledger/internal/model"
	"github.com/qifin/lotledger/internal/repository"
)

// LedgerService is the import driver: it rebuilds the whole lot ledger from
// the transaction history. The ledger is always re-derived from scratch
// (clear + full replay) rather than incrementally patched, so an import is
// idempotent and bounded by total transaction count.
type LedgerService struct {
	db *sql.DB
}

// NewLedgerService creates a new LedgerService on the given database.
func NewLedgerService(db *sql.DB) *LedgerService {
	return &LedgerService{db: db}
}

// RebuildResult summarizes one ledger rebuild.
type RebuildResult struct {
	TransactionsProcessed int      `json:"transactionsProcessed"`
	LotCount              int      `json:"lotCount"`
	Warnings              []string `json:"warnings"`
}

// RebuildLots clears every lot and replays all investment transactions in
// (date, priority, id) order inside one database transaction. Same-day
// priority puts cash inflows before outflows before no-impact entries,
// tiered by each action's cash-impact class.
//
// Any fatal error (unhandled action, missing account or security reference,
// malformed lot) rolls the transaction back, leaving the prior ledger state
// intact; there is no partial commit. Recoverable conditions are collected
// as warnings and the replay continues.
func (s *LedgerService) RebuildLots(ctx context.Context) (*RebuildResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin rebuild transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	transactionRepo := repository.NewTransactionRepository(tx)
	lotRepo := repository.NewLotRepository(tx)
	priceRepo := repository.NewPriceRepository(tx)
	referenceRepo := repository.NewReferenceRepository(tx)
	engine := NewLotEngine(lotRepo, priceRepo)

	if err := lotRepo.ClearAllLots(); err != nil {
		return nil, err
	}

	transactions, err := transactionRepo.OrderedInvestmentTransactions()
	if err != nil {
		return nil, err
	}
	sortReplayOrder(transactions)

	result := &RebuildResult{Warnings: []string{}}
	warn := func(msg string) {
		log.Printf("ledger rebuild: %s", msg)
		result.Warnings = append(result.Warnings, msg)
	}

	for i := range transactions {
		txn := &transactions[i]

		category, err := ClassifyAction(txn.InvestmentAction)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", txn.ID, err)
		}

		result.TransactionsProcessed++

		if !category.TouchesLots() {
			continue
		}

		if err := s.resolveReferences(referenceRepo, txn); err != nil {
			return nil, err
		}

		if err := engine.Apply(category, txn, warn); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", txn.ID, err)
		}
	}

	result.LotCount, err = lotRepo.CountLots()
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit rebuild transaction: %w", err)
	}

	log.Printf("ledger rebuild: replayed %d transactions into %d lots (%d warnings)",
		result.TransactionsProcessed, result.LotCount, len(result.Warnings))

	return result, nil
}

// sortReplayOrder arranges transactions for replay: by date, then by the
// same-day cash tier from ReplayPriority, then by id. The repository feed
// already comes back in (date, id) order; this applies the tier the action
// classification supplies.
func sortReplayOrder(transactions []model.Transaction) {
	sort.SliceStable(transactions, func(i, j int) bool {
		a, b := &transactions[i], &transactions[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if pa, pb := ReplayPriority(a), ReplayPriority(b); pa != pb {
			return pa < pb
		}
		return a.ID < b.ID
	})
}

// resolveReferences fails the rebuild when a lot-affecting transaction
// references a missing account or security.
func (s *LedgerService) resolveReferences(referenceRepo *repository.ReferenceRepository, txn *model.Transaction) error {
	if _, err := referenceRepo.ResolveAccount(txn.AccountID); err != nil {
		return fmt.Errorf("transaction %s: account %s: %w", txn.ID, txn.AccountID, err)
	}
	if _, err := referenceRepo.ResolveSecurity(txn.SecurityID); err != nil {
		return fmt.Errorf("transaction %s: security %s: %w", txn.ID, txn.SecurityID, err)
	}
	return nil
}
