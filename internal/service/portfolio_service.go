package service

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/qifin/lotledger/internal/apperrors"
	"github.com/qifin/lotledger/internal/model"
	"github.com/qifin/lotledger/internal/repository"
)

// RoundingPrecision rounds API-visible money totals to cents.
const RoundingPrecision = 100

// PortfolioService combines the cash-flow ledger with as-of-date holdings
// and latest-price lookups into daily portfolio snapshots. It is a pure
// read-side component: nothing here mutates the lot ledger.
type PortfolioService struct {
	transactionRepo *repository.TransactionRepository
	lotRepo         *repository.LotRepository
	priceRepo       *repository.PriceRepository
	referenceRepo   *repository.ReferenceRepository
	snapshotRepo    *repository.SnapshotRepository
	holdingsService *HoldingsService
}

// NewPortfolioService creates a new PortfolioService with the provided
// repository dependencies.
func NewPortfolioService(
	transactionRepo *repository.TransactionRepository,
	lotRepo *repository.LotRepository,
	priceRepo *repository.PriceRepository,
	referenceRepo *repository.ReferenceRepository,
	snapshotRepo *repository.SnapshotRepository,
	holdingsService *HoldingsService,
) *PortfolioService {
	return &PortfolioService{
		transactionRepo: transactionRepo,
		lotRepo:         lotRepo,
		priceRepo:       priceRepo,
		referenceRepo:   referenceRepo,
		snapshotRepo:    snapshotRepo,
		holdingsService: holdingsService,
	}
}

// CashBalance computes the cash balance of an account as of a date by
// scanning its transactions and applying the signed case rule: bank amounts
// contribute directly, investment actions contribute +amount, -amount, or
// nothing depending on their cash-impact class.
func (s *PortfolioService) CashBalance(accountID string, date time.Time) (float64, error) {
	transactions, err := s.transactionRepo.GetTransactionsForAccount(accountID, date)
	if err != nil {
		return 0, err
	}

	var balance float64
	for i := range transactions {
		balance += cashContribution(&transactions[i])
	}

	return balance, nil
}

// cashContribution applies the per-transaction cash rule. Investment
// amounts are taken by magnitude with the sign supplied by the action's
// cash-impact class, so the rule holds whether the source stored outflows
// as negative or positive amounts.
func cashContribution(t *model.Transaction) float64 {
	if t.Type == model.TransactionTypeBank {
		return t.AmountValue()
	}
	sign := CashImpactSign(t.InvestmentAction)
	if sign == 0 {
		return 0
	}
	return sign * math.Abs(t.AmountValue())
}

// DailyPortfolio values one account on one date: cash balance plus the
// market value of its as-of-date holdings at the latest price on or before
// the date. A security without any price record is valued at zero.
func (s *PortfolioService) DailyPortfolio(accountID string, date time.Time) (*model.DailyPortfolio, error) {
	if _, err := s.referenceRepo.ResolveAccount(accountID); err != nil {
		return nil, err
	}

	cash, err := s.CashBalance(accountID, date)
	if err != nil {
		return nil, err
	}

	holdings, err := s.holdingsService.HoldingsAsOfForAccount(accountID, date)
	if err != nil {
		return nil, err
	}

	enriched := make([]model.EnrichedHolding, 0, len(holdings))
	var marketValue, costBasis float64
	for _, holding := range holdings {
		var price float64
		record, err := s.priceRepo.LatestPriceOnOrBefore(holding.SecurityID, date)
		if err == nil {
			price = record.Price
		} else if !errors.Is(err, apperrors.ErrPriceNotFound) {
			return nil, err
		}

		value := holding.Quantity * price
		marketValue += value
		costBasis += holding.CostBasis

		enriched = append(enriched, model.EnrichedHolding{
			Holding:     holding,
			Price:       price,
			MarketValue: round2(value),
			GainLoss:    round2(value - holding.CostBasis),
		})
	}

	return &model.DailyPortfolio{
		AccountID:          accountID,
		Date:               date,
		CashBalance:        round2(cash),
		TotalMarketValue:   round2(cash + marketValue),
		TotalCostBasis:     round2(costBasis),
		UnrealizedGainLoss: round2(marketValue - costBasis),
		Holdings:           enriched,
	}, nil
}

// PortfoliosForDate values every account on one date.
func (s *PortfolioService) PortfoliosForDate(date time.Time) ([]model.DailyPortfolio, error) {
	accounts, err := s.referenceRepo.GetAccounts()
	if err != nil {
		return nil, err
	}

	portfolios := make([]model.DailyPortfolio, 0, len(accounts))
	for _, account := range accounts {
		portfolio, err := s.DailyPortfolio(account.ID, date)
		if err != nil {
			return nil, err
		}
		portfolios = append(portfolios, *portfolio)
	}

	return portfolios, nil
}

// PortfolioHistory computes one snapshot per day for an account over the
// requested range, on demand.
//
// The returned range is clamped to [oldest transaction date, today]: share
// counts and cash depend on all prior transactions, so everything before the
// requested start is replayed anyway and only the display window changes.
func (s *PortfolioService) PortfolioHistory(accountID string, requestedStartDate, requestedEndDate time.Time) ([]model.DailyPortfolioSnapshot, error) {
	if requestedEndDate.Before(requestedStartDate) {
		return nil, apperrors.ErrInvalidDateRange
	}
	if _, err := s.referenceRepo.ResolveAccount(accountID); err != nil {
		return nil, err
	}

	oldest := s.transactionRepo.GetOldestTransactionDate(accountID)
	if oldest.IsZero() {
		return []model.DailyPortfolioSnapshot{}, nil
	}

	startDate := requestedStartDate
	if startDate.Before(oldest) {
		startDate = oldest
	}
	endDate := requestedEndDate
	if today := truncateToDay(time.Now().UTC()); endDate.After(today) {
		endDate = today
	}

	return s.computeHistory(accountID, startDate, endDate)
}

// PortfolioHistoryWithFallback tries the materialized snapshot table first
// and falls back to on-demand computation when the table has no rows for
// the range (being regenerated or never populated). Writes regenerate the
// table, so emptiness is the only staleness signal needed.
func (s *PortfolioService) PortfolioHistoryWithFallback(accountID string, startDate, endDate time.Time) ([]model.DailyPortfolioSnapshot, error) {
	snapshots, err := s.snapshotRepo.GetSnapshots(accountID, startDate, endDate)
	if err == nil && len(snapshots) > 0 {
		return snapshots, nil
	}
	return s.PortfolioHistory(accountID, startDate, endDate)
}

// computeHistory walks the date range once with all data preloaded: the
// account's lots, its transactions, and every relevant price series. Cash
// accumulates transaction by transaction; holdings are re-aggregated from
// the in-memory lots per day.
func (s *PortfolioService) computeHistory(accountID string, startDate, endDate time.Time) ([]model.DailyPortfolioSnapshot, error) {
	lots, err := s.lotRepo.LotsForAccount(accountID)
	if err != nil {
		return nil, err
	}

	transactions, err := s.transactionRepo.GetTransactionsForAccount(accountID, endDate)
	if err != nil {
		return nil, err
	}

	pricesBySecurity := make(map[string][]model.Price)
	for i := range lots {
		securityID := lots[i].SecurityID
		if _, ok := pricesBySecurity[securityID]; ok {
			continue
		}
		prices, err := s.priceRepo.GetPrices(securityID)
		if err != nil {
			return nil, err
		}
		pricesBySecurity[securityID] = prices
	}

	startDate = truncateToDay(startDate)
	endDate = truncateToDay(endDate)

	snapshots := []model.DailyPortfolioSnapshot{}
	var cash float64
	transactionIdx := 0

	for date := startDate; !date.After(endDate); date = date.AddDate(0, 0, 1) {
		for transactionIdx < len(transactions) && !transactions[transactionIdx].Date.After(date) {
			cash += cashContribution(&transactions[transactionIdx])
			transactionIdx++
		}

		holdings := aggregateLots(filterLots(lots, func(l *model.Lot) bool {
			return l.OpenOn(date) && l.Quantity != 0
		}), false)

		var marketValue, costBasis float64
		for _, holding := range holdings {
			price := latestPriceInSeries(pricesBySecurity[holding.SecurityID], date)
			marketValue += holding.Quantity * price
			costBasis += holding.CostBasis
		}

		snapshots = append(snapshots, model.DailyPortfolioSnapshot{
			AccountID:          accountID,
			Date:               date,
			CashBalance:        round2(cash),
			MarketValue:        round2(cash + marketValue),
			CostBasis:          round2(costBasis),
			UnrealizedGainLoss: round2(marketValue - costBasis),
		})
	}

	return snapshots, nil
}

// latestPriceInSeries finds the latest price on or before the date in an
// ascending price series, or 0 when none exists.
func latestPriceInSeries(prices []model.Price, date time.Time) float64 {
	idx := sort.Search(len(prices), func(i int) bool {
		return prices[i].Date.After(date)
	})
	if idx == 0 {
		return 0
	}
	return prices[idx-1].Price
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round2(v float64) float64 {
	return math.Round(v*RoundingPrecision) / RoundingPrecision
}
