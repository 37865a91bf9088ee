package model

import "time"

// Holding is a derived position: the aggregate of a set of lots for one
// (account, security) pair. Holdings are computed on demand and never
// persisted.
type Holding struct {
	AccountID       string    `json:"accountId"`
	SecurityID      string    `json:"securityId"`
	Quantity        float64   `json:"quantity"`
	CostBasis       float64   `json:"costBasis"`
	AvgCostPerShare float64   `json:"avgCostPerShare"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

// EnrichedHolding is a holding priced as of a valuation date.
type EnrichedHolding struct {
	Holding
	Price       float64 `json:"price"`
	MarketValue float64 `json:"marketValue"`
	GainLoss    float64 `json:"gainLoss"`
}

// DailyPortfolio is the point-in-time valuation of one account: cash plus
// the market value of its as-of-date holdings.
type DailyPortfolio struct {
	AccountID          string            `json:"accountId"`
	Date               time.Time         `json:"date"`
	CashBalance        float64           `json:"cashBalance"`
	TotalMarketValue   float64           `json:"totalMarketValue"`
	TotalCostBasis     float64           `json:"totalCostBasis"`
	UnrealizedGainLoss float64           `json:"unrealizedGainLoss"`
	Holdings           []EnrichedHolding `json:"holdings"`
}

// DailyPortfolioSnapshot is one pre-computed row of the materialized daily
// portfolio table. It carries the same totals as DailyPortfolio but not the
// per-holding breakdown; MarketValue is the combined cash plus securities
// total, matching DailyPortfolio.TotalMarketValue.
type DailyPortfolioSnapshot struct {
	ID                 string    `json:"id"`
	AccountID          string    `json:"accountId"`
	Date               time.Time `json:"date"`
	CashBalance        float64   `json:"cashBalance"`
	MarketValue        float64   `json:"marketValue"`
	CostBasis          float64   `json:"costBasis"`
	UnrealizedGainLoss float64   `json:"unrealizedGainLoss"`
	CalculatedAt       time.Time `json:"calculatedAt,omitempty"`
}
