package model

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"time"
)

// Epsilon is the numeric tolerance for lot quantities: anything within
// Epsilon of zero is treated as exactly zero. NoiseTolerance bounds the
// sell-side leftover that is discarded after FIFO exhaustion instead of
// opening a spurious micro-lot.
const (
	Epsilon        = 1e-10
	NoiseTolerance = 10 * Epsilon
)

// Lot is a discrete purchase (or short-sale) record. Quantity and
// RemainingQuantity share sign: positive is long, negative is short.
//
// CostBasis is fixed at creation and never rescaled: partial reductions only
// move RemainingQuantity and ClosedDate, and stock splits rescale Quantity
// and RemainingQuantity while leaving CostBasis untouched so the total
// dollar cost basis survives the split.
type Lot struct {
	ID                     string     `json:"id"`
	AccountID              string     `json:"accountId"`
	SecurityID             string     `json:"securityId"`
	PurchaseDate           time.Time  `json:"purchaseDate"`
	Quantity               float64    `json:"quantity"`
	CostBasis              float64    `json:"costBasis"`
	RemainingQuantity      float64    `json:"remainingQuantity"`
	ClosedDate             *time.Time `json:"closedDate,omitempty"`
	CreatedByTransactionID string     `json:"createdByTransactionId"`
	CreatedAt              time.Time  `json:"createdAt,omitempty"`
}

// IsOpen reports whether the lot still carries a significant remaining
// quantity. A lot whose remainder is within Epsilon of zero counts as closed
// even if ClosedDate has not been stamped yet.
func (l *Lot) IsOpen() bool {
	return l.ClosedDate == nil && math.Abs(l.RemainingQuantity) > Epsilon
}

// OpenOn reports whether the lot was open on the given date: purchased on or
// before it and not yet closed as of it. A lot that has since been closed in
// the current ledger state still counts as open on dates before its close.
func (l *Lot) OpenOn(date time.Time) bool {
	if l.PurchaseDate.After(date) {
		return false
	}
	return l.ClosedDate == nil || l.ClosedDate.After(date)
}

// LotID derives the deterministic lot identifier from its key fields.
//
// The hash is versioned: changing the material or the digest invalidates
// every stored lot id, so the v1 scheme is never altered silently.
func LotID(accountID, securityID string, purchaseDate time.Time, transactionID string) string {
	return contentID("lot|v1|" + accountID + "|" + securityID + "|" + purchaseDate.Format("2006-01-02") + "|" + transactionID)
}

// SecurityID derives the deterministic security identifier from its symbol.
func SecurityID(symbol string) string {
	return contentID("security|v1|" + symbol)
}

// contentID hashes the material with SHA-256 and keeps the first 16 bytes,
// hex encoded. 128 bits is ample for collision resistance at this scale and
// fits the VARCHAR(36) id columns.
func contentID(material string) string {
	sum := sha256.Sum256([]byte(material))
	return hex.EncodeToString(sum[:16])
}
