package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qifin/lotledger/internal/service"
)

// HoldingsHandler handles holdings HTTP requests
type HoldingsHandler struct {
	holdingsService *service.HoldingsService
}

// NewHoldingsHandler creates a new HoldingsHandler
func NewHoldingsHandler(holdingsService *service.HoldingsService) *HoldingsHandler {
	return &HoldingsHandler{
		holdingsService: holdingsService,
	}
}

// Holdings returns the current holdings, or the as-of-date holdings when a
// ?date= parameter is supplied.
//
// Endpoint: GET /api/holdings[?date=2006-01-02]
func (h *HoldingsHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("date") == "" {
		holdings, err := h.holdingsService.CurrentHoldings()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to retrieve holdings", err.Error())
			return
		}
		respondJSON(w, http.StatusOK, holdings)
		return
	}

	date, err := parseDateParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse date", err.Error())
		return
	}

	holdings, err := h.holdingsService.HoldingsAsOf(date)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve holdings", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, holdings)
}

// HoldingsForAccount returns the current holdings of one account.
//
// Endpoint: GET /api/holdings/account/{accountID}
func (h *HoldingsHandler) HoldingsForAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	holdings, err := h.holdingsService.HoldingsForAccount(accountID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve holdings", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, holdings)
}

// HoldingsForSecurity returns the current holdings of one security across
// all accounts.
//
// Endpoint: GET /api/holdings/security/{securityID}
func (h *HoldingsHandler) HoldingsForSecurity(w http.ResponseWriter, r *http.Request) {
	securityID := chi.URLParam(r, "securityID")

	holdings, err := h.holdingsService.HoldingsForSecurity(securityID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve holdings", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, holdings)
}

// Holding returns the single holding for an (account, security) pair.
//
// Endpoint: GET /api/holdings/{accountID}/{securityID}
// Returns 404 when no open position exists.
func (h *HoldingsHandler) Holding(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	securityID := chi.URLParam(r, "securityID")

	holding, err := h.holdingsService.Holding(accountID, securityID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve holding", err.Error())
		return
	}
	if holding == nil {
		respondError(w, http.StatusNotFound, "holding not found", nil)
		return
	}
	respondJSON(w, http.StatusOK, holding)
}
