package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/qifin/lotledger/internal/apperrors"
	"github.com/qifin/lotledger/internal/service"
)

// PortfolioHandler handles portfolio valuation HTTP requests
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// Portfolio returns the daily portfolio snapshot of one account.
//
// Endpoint: GET /api/portfolio/{accountID}[?date=2006-01-02]
func (h *PortfolioHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	date, err := parseDateParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse date", err.Error())
		return
	}

	portfolio, err := h.portfolioService.DailyPortfolio(accountID, date)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			respondError(w, http.StatusNotFound, "account not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get portfolio", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, portfolio)
}

// Portfolios returns the daily portfolio snapshot of every account.
//
// Endpoint: GET /api/portfolio[?date=2006-01-02]
func (h *PortfolioHandler) Portfolios(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse date", err.Error())
		return
	}

	portfolios, err := h.portfolioService.PortfoliosForDate(date)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get portfolios", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, portfolios)
}

// PortfolioHistory returns one valuation row per day for an account.
//
// Endpoint: GET /api/portfolio/{accountID}/history?start_date=...&end_date=...
func (h *PortfolioHandler) PortfolioHistory(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	var startDate, endDate time.Time
	var err error

	if r.URL.Query().Get("start_date") == "" && r.URL.Query().Get("end_date") == "" {
		respondError(w, http.StatusBadRequest, "start_date and/or end_date are required", nil)
		return
	}

	if r.URL.Query().Get("start_date") == "" {
		startDate = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	} else {
		startDate, err = parseDate(r.URL.Query().Get("start_date"))
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to parse start_date", err.Error())
			return
		}
	}

	if r.URL.Query().Get("end_date") == "" {
		endDate = time.Now().UTC()
	} else {
		endDate, err = parseDate(r.URL.Query().Get("end_date"))
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to parse end_date", err.Error())
			return
		}
	}

	history, err := h.portfolioService.PortfolioHistoryWithFallback(accountID, startDate, endDate)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAccountNotFound):
			respondError(w, http.StatusNotFound, "account not found", nil)
		case errors.Is(err, apperrors.ErrInvalidDateRange):
			respondError(w, http.StatusBadRequest, "invalid date range", nil)
		default:
			respondError(w, http.StatusInternalServerError, "failed to get portfolio history", err.Error())
		}
		return
	}
	respondJSON(w, http.StatusOK, history)
}

func parseDate(raw string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		date, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, err
		}
	}
	return date.UTC(), nil
}
