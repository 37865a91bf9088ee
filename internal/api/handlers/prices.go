package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qifin/lotledger/internal/api/request"
	"github.com/qifin/lotledger/internal/apperrors"
	"github.com/qifin/lotledger/internal/service"
)

// PriceHandler handles price HTTP requests
type PriceHandler struct {
	priceService *service.PriceService
}

// NewPriceHandler creates a new PriceHandler
func NewPriceHandler(priceService *service.PriceService) *PriceHandler {
	return &PriceHandler{
		priceService: priceService,
	}
}

// CreatePrice records a new price.
//
// Endpoint: POST /api/price
func (h *PriceHandler) CreatePrice(w http.ResponseWriter, r *http.Request) {
	var req request.CreatePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	price, err := h.priceService.CreatePrice(req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrSecurityNotFound):
			respondError(w, http.StatusNotFound, "security not found", err.Error())
		case errors.Is(err, apperrors.ErrMissingRequiredField):
			respondError(w, http.StatusBadRequest, "validation failed", err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "failed to create price", err.Error())
		}
		return
	}

	respondJSON(w, http.StatusCreated, price)
}

// Prices lists all price records for a security.
//
// Endpoint: GET /api/price/{securityID}
func (h *PriceHandler) Prices(w http.ResponseWriter, r *http.Request) {
	prices, err := h.priceService.GetPrices(chi.URLParam(r, "securityID"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve prices", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, prices)
}
