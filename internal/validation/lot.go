package validation

import (
	"fmt"

	"github.com/qifin/lotledger/internal/apperrors"
	"github.com/qifin/lotledger/internal/model"
)

// ValidateLot performs structural validation on a lot before it is stored.
// A malformed lot is a data-integrity failure and aborts the whole rebuild.
func ValidateLot(lot *model.Lot) error {
	if lot.ID == "" {
		return fmt.Errorf("%w: missing id", apperrors.ErrInvalidLot)
	}
	if lot.AccountID == "" {
		return fmt.Errorf("%w: missing account id", apperrors.ErrInvalidLot)
	}
	if lot.SecurityID == "" {
		return fmt.Errorf("%w: missing security id", apperrors.ErrInvalidLot)
	}
	if lot.CreatedByTransactionID == "" {
		return fmt.Errorf("%w: missing creating transaction id", apperrors.ErrInvalidLot)
	}
	if lot.PurchaseDate.IsZero() {
		return fmt.Errorf("%w: zero purchase date", apperrors.ErrInvalidLot)
	}
	return nil
}
