package validation

import (
	"fmt"
	"time"

	"github.com/qifin/lotledger/internal/api/request"
	"github.com/qifin/lotledger/internal/apperrors"
	"github.com/qifin/lotledger/internal/model"
)

// ValidateCreateTransaction checks a create-transaction payload before the
// service touches the database.
func ValidateCreateTransaction(req *request.CreateTransactionRequest) error {
	if req.AccountID == "" {
		return fmt.Errorf("%w: accountId", apperrors.ErrMissingRequiredField)
	}
	if req.Date == "" {
		return fmt.Errorf("%w: date", apperrors.ErrMissingRequiredField)
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return fmt.Errorf("invalid date %q: %w", req.Date, err)
	}

	switch req.Type {
	case model.TransactionTypeBank:
		if req.Amount == nil {
			return fmt.Errorf("%w: amount", apperrors.ErrMissingRequiredField)
		}
	case model.TransactionTypeInvestment:
		if req.InvestmentAction == "" {
			return fmt.Errorf("%w: investmentAction", apperrors.ErrMissingRequiredField)
		}
	default:
		return fmt.Errorf("%w: type must be %q or %q",
			apperrors.ErrMissingRequiredField, model.TransactionTypeBank, model.TransactionTypeInvestment)
	}

	return nil
}

// ValidateCreatePrice checks a create-price payload.
func ValidateCreatePrice(req *request.CreatePriceRequest) error {
	if req.SecurityID == "" {
		return fmt.Errorf("%w: securityId", apperrors.ErrMissingRequiredField)
	}
	if req.Date == "" {
		return fmt.Errorf("%w: date", apperrors.ErrMissingRequiredField)
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return fmt.Errorf("invalid date %q: %w", req.Date, err)
	}
	if req.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", apperrors.ErrMissingRequiredField)
	}
	return nil
}
