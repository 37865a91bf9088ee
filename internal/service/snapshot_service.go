package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/qifin/lotledger/internal/repository"
)

// snapshotWorkers bounds the per-account fan-out during regeneration.
const snapshotWorkers = 4

// SnapshotService regenerates the materialized daily portfolio table. Each
// account's full history is recomputed and replaced; accounts are processed
// in parallel since regeneration is a pure read of the lot ledger plus a
// write to the account's own snapshot rows.
type SnapshotService struct {
	transactionRepo  *repository.TransactionRepository
	referenceRepo    *repository.ReferenceRepository
	snapshotRepo     *repository.SnapshotRepository
	portfolioService *PortfolioService
}

// NewSnapshotService creates a new SnapshotService with the provided
// dependencies.
func NewSnapshotService(
	transactionRepo *repository.TransactionRepository,
	referenceRepo *repository.ReferenceRepository,
	snapshotRepo *repository.SnapshotRepository,
	portfolioService *PortfolioService,
) *SnapshotService {
	return &SnapshotService{
		transactionRepo:  transactionRepo,
		referenceRepo:    referenceRepo,
		snapshotRepo:     snapshotRepo,
		portfolioService: portfolioService,
	}
}

// Regenerate recomputes the daily portfolio snapshots for every account,
// from each account's oldest transaction through today.
func (s *SnapshotService) Regenerate(ctx context.Context) error {
	accounts, err := s.referenceRepo.GetAccounts()
	if err != nil {
		return err
	}

	start := time.Now()

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(snapshotWorkers)

	for _, account := range accounts {
		account := account
		g.Go(func() error {
			return s.regenerateAccount(account.ID)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	log.Printf("snapshot regeneration: %d accounts in %s", len(accounts), time.Since(start))
	return nil
}

func (s *SnapshotService) regenerateAccount(accountID string) error {
	oldest := s.transactionRepo.GetOldestTransactionDate(accountID)
	if oldest.IsZero() {
		// No transactions: clear any stale rows.
		return s.snapshotRepo.ReplaceSnapshots(accountID, nil)
	}

	today := truncateToDay(time.Now().UTC())
	snapshots, err := s.portfolioService.computeHistory(accountID, oldest, today)
	if err != nil {
		return err
	}

	calculatedAt := time.Now().UTC()
	for i := range snapshots {
		snapshots[i].ID = uuid.New().String()
		snapshots[i].CalculatedAt = calculatedAt
	}

	return s.snapshotRepo.ReplaceSnapshots(accountID, snapshots)
}
