package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/qifin/lotledger/internal/apperrors"
	"github.com/qifin/lotledger/internal/service"
)

// LedgerHandler handles lot-ledger HTTP requests
type LedgerHandler struct {
	ledgerService   *service.LedgerService
	snapshotService *service.SnapshotService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *service.LedgerService, snapshotService *service.SnapshotService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService:   ledgerService,
		snapshotService: snapshotService,
	}
}

// Rebuild clears and replays the full lot ledger, then regenerates the
// materialized daily portfolio table.
//
// Endpoint: POST /api/ledger/rebuild
func (h *LedgerHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	result, err := h.ledgerService.RebuildLots(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, apperrors.ErrUnhandledAction) ||
			errors.Is(err, apperrors.ErrAccountNotFound) ||
			errors.Is(err, apperrors.ErrSecurityNotFound) ||
			errors.Is(err, apperrors.ErrInvalidLot) {
			status = http.StatusUnprocessableEntity
		}
		respondError(w, status, "ledger rebuild failed", err.Error())
		return
	}

	// Snapshot regeneration failure does not undo the rebuild; the
	// fallback path serves history until the next regeneration.
	if err := h.snapshotService.Regenerate(r.Context()); err != nil {
		log.Printf("snapshot regeneration after rebuild failed: %v", err)
	}

	respondJSON(w, http.StatusOK, result)
}
