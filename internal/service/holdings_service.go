package service

import (
	"math"
	"sort"
	"time"

	"github.com/qifin/lotledger/internal/model"
	"github.com/qifin/lotledger/internal/repository"
)

// HoldingsService aggregates lots into weighted-average-cost holdings. It is
// a pure read-side component: every query derives holdings from the lot
// ledger on demand, nothing is persisted.
type HoldingsService struct {
	lotRepo *repository.LotRepository
}

// NewHoldingsService creates a new HoldingsService with the provided
// repository dependency.
func NewHoldingsService(lotRepo *repository.LotRepository) *HoldingsService {
	return &HoldingsService{lotRepo: lotRepo}
}

// CurrentHoldings aggregates all currently open lots by (account, security).
func (s *HoldingsService) CurrentHoldings() ([]model.Holding, error) {
	lots, err := s.lotRepo.CurrentOpenLots()
	if err != nil {
		return nil, err
	}
	return aggregateLots(lots, true), nil
}

// HoldingsAsOf reconstructs the holdings as they existed on the given date,
// from lot purchase and close dates rather than current live state.
//
// As-of aggregation sums the original lot quantity, not the remaining
// quantity: a lot's remainder reflects reductions that may have happened
// after the as-of date.
func (s *HoldingsService) HoldingsAsOf(date time.Time) ([]model.Holding, error) {
	lots, err := s.lotRepo.LotsAsOf(date)
	if err != nil {
		return nil, err
	}
	return aggregateLots(lots, false), nil
}

// HoldingsAsOfForAccount reconstructs one account's holdings on a date.
func (s *HoldingsService) HoldingsAsOfForAccount(accountID string, date time.Time) ([]model.Holding, error) {
	lots, err := s.lotRepo.LotsAsOf(date)
	if err != nil {
		return nil, err
	}
	return aggregateLots(filterLots(lots, func(l *model.Lot) bool {
		return l.AccountID == accountID
	}), false), nil
}

// HoldingsForAccount aggregates the open lots of one account.
func (s *HoldingsService) HoldingsForAccount(accountID string) ([]model.Holding, error) {
	lots, err := s.lotRepo.CurrentOpenLots()
	if err != nil {
		return nil, err
	}
	return aggregateLots(filterLots(lots, func(l *model.Lot) bool {
		return l.AccountID == accountID
	}), true), nil
}

// HoldingsForSecurity aggregates the open lots of one security across all
// accounts.
func (s *HoldingsService) HoldingsForSecurity(securityID string) ([]model.Holding, error) {
	lots, err := s.lotRepo.CurrentOpenLots()
	if err != nil {
		return nil, err
	}
	return aggregateLots(filterLots(lots, func(l *model.Lot) bool {
		return l.SecurityID == securityID
	}), true), nil
}

// Holding returns the single aggregated holding for an (account, security)
// pair, or nil when no lots exist or the aggregate quantity is zero.
func (s *HoldingsService) Holding(accountID, securityID string) (*model.Holding, error) {
	lots, err := s.lotRepo.OpenLots(accountID, securityID)
	if err != nil {
		return nil, err
	}
	holdings := aggregateLots(filterLots(lots, func(l *model.Lot) bool {
		return l.RemainingQuantity != 0
	}), true)
	if len(holdings) == 0 {
		return nil, nil
	}
	return &holdings[0], nil
}

type holdingKey struct {
	accountID  string
	securityID string
}

// aggregateLots groups lots by (account, security), sums quantity and cost
// basis, and derives the weighted average cost per share. Groups whose
// summed quantity is zero are dropped.
//
// useRemaining selects which quantity is summed: remaining quantity for
// current-state queries, original quantity for as-of-date reconstruction.
// Cost basis is summed unadjusted either way, so a partially reduced lot set
// overstates average cost (see DESIGN.md); downstream reports depend on
// this behavior.
func aggregateLots(lots []model.Lot, useRemaining bool) []model.Holding {
	groups := make(map[holdingKey]*model.Holding)

	for i := range lots {
		lot := &lots[i]
		key := holdingKey{accountID: lot.AccountID, securityID: lot.SecurityID}

		holding, ok := groups[key]
		if !ok {
			holding = &model.Holding{
				AccountID:  lot.AccountID,
				SecurityID: lot.SecurityID,
			}
			groups[key] = holding
		}

		if useRemaining {
			holding.Quantity += lot.RemainingQuantity
		} else {
			holding.Quantity += lot.Quantity
		}
		holding.CostBasis += lot.CostBasis

		if lot.CreatedAt.After(holding.LastUpdated) {
			holding.LastUpdated = lot.CreatedAt
		}
	}

	holdings := make([]model.Holding, 0, len(groups))
	for _, holding := range groups {
		if math.Abs(holding.Quantity) <= model.Epsilon {
			continue
		}
		holding.AvgCostPerShare = holding.CostBasis / holding.Quantity
		holdings = append(holdings, *holding)
	}

	sort.Slice(holdings, func(i, j int) bool {
		if holdings[i].AccountID != holdings[j].AccountID {
			return holdings[i].AccountID < holdings[j].AccountID
		}
		return holdings[i].SecurityID < holdings[j].SecurityID
	})

	return holdings
}

func filterLots(lots []model.Lot, keep func(*model.Lot) bool) []model.Lot {
	filtered := make([]model.Lot, 0, len(lots))
	for i := range lots {
		if keep(&lots[i]) {
			filtered = append(filtered, lots[i])
		}
	}
	return filtered
}
