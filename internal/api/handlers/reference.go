package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/qifin/lotledger/internal/api/request"
	"github.com/qifin/lotledger/internal/apperrors"
	"github.com/qifin/lotledger/internal/service"
)

// ReferenceHandler handles account and security HTTP requests
type ReferenceHandler struct {
	referenceService *service.ReferenceService
}

// NewReferenceHandler creates a new ReferenceHandler
func NewReferenceHandler(referenceService *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{
		referenceService: referenceService,
	}
}

// CreateAccount stores a new account.
//
// Endpoint: POST /api/account
func (h *ReferenceHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req request.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.referenceService.CreateAccount(req)
	if err != nil {
		if errors.Is(err, apperrors.ErrMissingRequiredField) {
			respondError(w, http.StatusBadRequest, "validation failed", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to create account", err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, account)
}

// Accounts lists all accounts.
//
// Endpoint: GET /api/account
func (h *ReferenceHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.referenceService.GetAccounts()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve accounts", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, accounts)
}

// CreateSecurity stores a new security.
//
// Endpoint: POST /api/security
func (h *ReferenceHandler) CreateSecurity(w http.ResponseWriter, r *http.Request) {
	var req request.CreateSecurityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	security, err := h.referenceService.CreateSecurity(req)
	if err != nil {
		if errors.Is(err, apperrors.ErrMissingRequiredField) {
			respondError(w, http.StatusBadRequest, "validation failed", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to create security", err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, security)
}

// Securities lists all securities.
//
// Endpoint: GET /api/security
func (h *ReferenceHandler) Securities(w http.ResponseWriter, r *http.Request) {
	securities, err := h.referenceService.GetSecurities()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve securities", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, securities)
}
