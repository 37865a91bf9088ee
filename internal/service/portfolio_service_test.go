package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/qifin/lotledger/internal/apperrors"
	"github.com/qifin/lotledger/internal/model"
	"github.com/qifin/lotledger/internal/repository"
	"github.com/qifin/lotledger/internal/testutil"
)

// TestPortfolioService_CashBalance tests the per-transaction cash rule.
//
// WHY: Cash is derived, not stored. Bank amounts contribute directly,
// investment amounts contribute by magnitude with the sign of their action's
// cash-impact class, and non-cash actions contribute nothing.
func TestPortfolioService_CashBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestPortfolioService(t, db)

	account := testutil.NewAccount().Build(t, db)
	security := testutil.NewSecurity().Build(t, db)

	// Bank deposit: contributes its signed amount directly
	testutil.NewTransaction(account.ID).
		Bank().
		WithDate(testutil.Date(2024, time.January, 1)).
		WithAmount(5000).
		Build(t, db)
	// Buy: outflow regardless of the stored sign
	testutil.NewTransaction(account.ID).
		WithAction("Buy").
		WithSecurity(security.ID).
		WithDate(testutil.Date(2024, time.January, 10)).
		WithQuantity(10).
		WithAmount(-1000).
		Build(t, db)
	// Dividend: inflow
	testutil.NewTransaction(account.ID).
		WithAction("Div").
		WithDate(testutil.Date(2024, time.January, 20)).
		WithAmount(25).
		Build(t, db)
	// Share transfer in: no cash impact
	testutil.NewTransaction(account.ID).
		WithAction("ShrsIn").
		WithSecurity(security.ID).
		WithDate(testutil.Date(2024, time.January, 25)).
		WithQuantity(5).
		WithAmount(500).
		Build(t, db)

	t.Run("sums contributions through a date", func(t *testing.T) {
		balance, err := svc.CashBalance(account.ID, testutil.Date(2024, time.January, 31))
		if err != nil {
			t.Fatalf("CashBalance() returned unexpected error: %v", err)
		}
		if balance != 4025 {
			t.Errorf("Expected balance 4025 (5000 - 1000 + 25), got %v", balance)
		}
	})

	t.Run("excludes transactions after the date", func(t *testing.T) {
		balance, err := svc.CashBalance(account.ID, testutil.Date(2024, time.January, 5))
		if err != nil {
			t.Fatalf("CashBalance() returned unexpected error: %v", err)
		}
		if balance != 5000 {
			t.Errorf("Expected balance 5000 before the buy, got %v", balance)
		}
	})

	t.Run("outflow sign comes from the action, not the stored amount", func(t *testing.T) {
		// Some exports store buy amounts positive; the magnitude rule must
		// still subtract them.
		testutil.NewTransaction(account.ID).
			WithAction("Buy").
			WithSecurity(security.ID).
			WithDate(testutil.Date(2024, time.February, 1)).
			WithQuantity(2).
			WithAmount(200).
			Build(t, db)

		balance, err := svc.CashBalance(account.ID, testutil.Date(2024, time.February, 28))
		if err != nil {
			t.Fatalf("CashBalance() returned unexpected error: %v", err)
		}
		if balance != 3825 {
			t.Errorf("Expected balance 3825 (4025 - 200), got %v", balance)
		}
	})
}

// TestPortfolioService_DailyPortfolio tests single-day account valuation.
//
// WHY: The daily portfolio is cash plus holdings valued at the latest price
// on or before the date, with unpriced securities valued at zero instead of
// failing.
func TestPortfolioService_DailyPortfolio(t *testing.T) {
	t.Run("values holdings at latest prior price", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		ledger := testutil.NewTestLedgerService(t, db)

		account := testutil.NewAccount().Build(t, db)
		security := testutil.NewSecurity().Build(t, db)

		testutil.NewTransaction(account.ID).
			Bank().
			WithDate(testutil.Date(2024, time.January, 1)).
			WithAmount(2000).
			Build(t, db)
		testutil.NewTransaction(account.ID).
			WithAction("Buy").
			WithSecurity(security.ID).
			WithDate(testutil.Date(2024, time.January, 10)).
			WithQuantity(10).
			WithAmount(-1000).
			Build(t, db)
		testutil.NewPrice(security.ID).
			WithDate(testutil.Date(2024, time.January, 20)).
			WithPrice(120).
			Build(t, db)
		// A later price that must not be used for an earlier valuation date
		testutil.NewPrice(security.ID).
			WithDate(testutil.Date(2024, time.March, 1)).
			WithPrice(300).
			Build(t, db)

		if _, err := ledger.RebuildLots(context.Background()); err != nil {
			t.Fatalf("RebuildLots() returned unexpected error: %v", err)
		}

		portfolio, err := svc.DailyPortfolio(account.ID, testutil.Date(2024, time.January, 31))
		if err != nil {
			t.Fatalf("DailyPortfolio() returned unexpected error: %v", err)
		}

		if portfolio.CashBalance != 1000 {
			t.Errorf("Expected cash 1000 (2000 - 1000), got %v", portfolio.CashBalance)
		}
		// 10 shares at 120 plus 1000 cash
		if portfolio.TotalMarketValue != 2200 {
			t.Errorf("Expected total market value 2200, got %v", portfolio.TotalMarketValue)
		}
		if portfolio.TotalCostBasis != 1000 {
			t.Errorf("Expected cost basis 1000, got %v", portfolio.TotalCostBasis)
		}
		if portfolio.UnrealizedGainLoss != 200 {
			t.Errorf("Expected unrealized gain 200, got %v", portfolio.UnrealizedGainLoss)
		}
		if len(portfolio.Holdings) != 1 {
			t.Fatalf("Expected 1 enriched holding, got %d", len(portfolio.Holdings))
		}
		if portfolio.Holdings[0].Price != 120 {
			t.Errorf("Expected latest prior price 120, got %v", portfolio.Holdings[0].Price)
		}
	})

	t.Run("values unpriced securities at zero", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		ledger := testutil.NewTestLedgerService(t, db)

		account := testutil.NewAccount().Build(t, db)
		security := testutil.NewSecurity().Build(t, db)

		testutil.NewTransaction(account.ID).
			WithAction("Buy").
			WithSecurity(security.ID).
			WithDate(testutil.Date(2024, time.January, 10)).
			WithQuantity(10).
			WithAmount(-1000).
			Build(t, db)

		if _, err := ledger.RebuildLots(context.Background()); err != nil {
			t.Fatalf("RebuildLots() returned unexpected error: %v", err)
		}

		portfolio, err := svc.DailyPortfolio(account.ID, testutil.Date(2024, time.January, 31))
		if err != nil {
			t.Fatalf("DailyPortfolio() returned unexpected error: %v", err)
		}
		if portfolio.Holdings[0].Price != 0 {
			t.Errorf("Expected zero price for unpriced security, got %v", portfolio.Holdings[0].Price)
		}
		if portfolio.TotalMarketValue != -1000 {
			t.Errorf("Expected total of cash only, got %v", portfolio.TotalMarketValue)
		}
	})

	t.Run("unknown account fails", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)

		_, err := svc.DailyPortfolio("no-such-account", testutil.Date(2024, time.January, 31))
		if !errors.Is(err, apperrors.ErrAccountNotFound) {
			t.Errorf("Expected ErrAccountNotFound, got %v", err)
		}
	})
}

// TestPortfolioService_PortfolioHistory tests the daily history range.
//
// WHY: History is clamped to [oldest transaction, today] and must produce
// one snapshot per day with cash accumulating across days.
func TestPortfolioService_PortfolioHistory(t *testing.T) {
	t.Run("clamps start to oldest transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)

		account := testutil.NewAccount().Build(t, db)

		testutil.NewTransaction(account.ID).
			Bank().
			WithDate(testutil.Date(2024, time.March, 10)).
			WithAmount(1000).
			Build(t, db)

		history, err := svc.PortfolioHistory(account.ID,
			testutil.Date(2024, time.March, 1), testutil.Date(2024, time.March, 14))
		if err != nil {
			t.Fatalf("PortfolioHistory() returned unexpected error: %v", err)
		}

		// 2024-03-10 through 2024-03-14 inclusive
		if len(history) != 5 {
			t.Fatalf("Expected 5 daily snapshots, got %d", len(history))
		}
		if !history[0].Date.Equal(testutil.Date(2024, time.March, 10)) {
			t.Errorf("Expected history to start at oldest transaction, got %v", history[0].Date)
		}
		for _, snapshot := range history {
			if snapshot.CashBalance != 1000 {
				t.Errorf("Expected cash 1000 on %v, got %v", snapshot.Date, snapshot.CashBalance)
			}
		}
	})

	t.Run("rejects inverted range", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)

		account := testutil.NewAccount().Build(t, db)

		_, err := svc.PortfolioHistory(account.ID,
			testutil.Date(2024, time.March, 10), testutil.Date(2024, time.March, 1))
		if !errors.Is(err, apperrors.ErrInvalidDateRange) {
			t.Errorf("Expected ErrInvalidDateRange, got %v", err)
		}
	})

	t.Run("empty for account without transactions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)

		account := testutil.NewAccount().Build(t, db)

		history, err := svc.PortfolioHistory(account.ID,
			testutil.Date(2024, time.March, 1), testutil.Date(2024, time.March, 14))
		if err != nil {
			t.Fatalf("PortfolioHistory() returned unexpected error: %v", err)
		}
		if len(history) != 0 {
			t.Errorf("Expected empty history, got %d snapshots", len(history))
		}
	})
}

// TestPortfolioService_PortfolioHistoryWithFallback tests the materialized
// read path.
//
// WHY: Reads prefer the materialized table and fall back to on-demand
// computation when the table holds nothing for the range.
func TestPortfolioService_PortfolioHistoryWithFallback(t *testing.T) {
	t.Run("serves materialized rows when present", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)

		account := testutil.NewAccount().Build(t, db)

		// A live transaction the materialized row deliberately disagrees
		// with, so the source of the response is observable.
		testutil.NewTransaction(account.ID).
			Bank().
			WithDate(testutil.Date(2024, time.March, 10)).
			WithAmount(1000).
			Build(t, db)

		materialized := []model.DailyPortfolioSnapshot{{
			ID:           uuid.New().String(),
			AccountID:    account.ID,
			Date:         testutil.Date(2024, time.March, 10),
			CashBalance:  777,
			MarketValue:  777,
			CalculatedAt: time.Now().UTC(),
		}}
		if err := repository.NewSnapshotRepository(db).ReplaceSnapshots(account.ID, materialized); err != nil {
			t.Fatalf("ReplaceSnapshots() returned unexpected error: %v", err)
		}

		history, err := svc.PortfolioHistoryWithFallback(account.ID,
			testutil.Date(2024, time.March, 10), testutil.Date(2024, time.March, 10))
		if err != nil {
			t.Fatalf("PortfolioHistoryWithFallback() returned unexpected error: %v", err)
		}
		if len(history) != 1 || history[0].CashBalance != 777 {
			t.Errorf("Expected the materialized row, got %+v", history)
		}
	})

	t.Run("falls back to on-demand computation when table is empty", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)

		account := testutil.NewAccount().Build(t, db)

		testutil.NewTransaction(account.ID).
			Bank().
			WithDate(testutil.Date(2024, time.March, 10)).
			WithAmount(1000).
			Build(t, db)

		history, err := svc.PortfolioHistoryWithFallback(account.ID,
			testutil.Date(2024, time.March, 10), testutil.Date(2024, time.March, 10))
		if err != nil {
			t.Fatalf("PortfolioHistoryWithFallback() returned unexpected error: %v", err)
		}
		if len(history) != 1 || history[0].CashBalance != 1000 {
			t.Errorf("Expected the computed row, got %+v", history)
		}
	})
}
