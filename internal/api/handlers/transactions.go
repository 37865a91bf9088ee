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

// TransactionHandler handles transaction HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// CreateTransaction stores a new transaction.
//
// Endpoint: POST /api/transaction
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req request.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	transaction, err := h.transactionService.CreateTransaction(req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAccountNotFound),
			errors.Is(err, apperrors.ErrSecurityNotFound):
			respondError(w, http.StatusNotFound, "referenced entity not found", err.Error())
		case errors.Is(err, apperrors.ErrMissingRequiredField):
			respondError(w, http.StatusBadRequest, "validation failed", err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "failed to create transaction", err.Error())
		}
		return
	}

	respondJSON(w, http.StatusCreated, transaction)
}

// Transactions lists transactions, optionally narrowed by ?account=.
//
// Endpoint: GET /api/transaction[?account={accountID}]
func (h *TransactionHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.transactionService.GetTransactions(r.URL.Query().Get("account"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve transactions", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, transactions)
}

// Transaction retrieves one transaction by id.
//
// Endpoint: GET /api/transaction/{transactionID}
func (h *TransactionHandler) Transaction(w http.ResponseWriter, r *http.Request) {
	transaction, err := h.transactionService.GetTransaction(chi.URLParam(r, "transactionID"))
	if err != nil {
		if errors.Is(err, apperrors.ErrTransactionNotFound) {
			respondError(w, http.StatusNotFound, "transaction not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to retrieve transaction", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, transaction)
}
