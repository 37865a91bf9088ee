package apperrors

import "errors"

// Fatal import errors. Any of these aborts a ledger rebuild: the surrounding
// transaction is rolled back and the prior ledger state is kept intact.
var (
	// ErrUnhandledAction indicates an investment action code that is not
	// cash-only, transfer, or in any recognized lot category. This is a hard
	// stop, not a warning: an unrecognized action means the ledger would
	// silently lose information.
	ErrUnhandledAction = errors.New("unhandled investment action")

	// ErrAccountNotFound indicates that an account referenced by a
	// transaction does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrSecurityNotFound indicates that a security referenced by a
	// transaction does not exist.
	ErrSecurityNotFound = errors.New("security not found")

	// ErrInvalidLot indicates lot data failing structural validation
	// (missing key fields or a zero purchase date).
	ErrInvalidLot = errors.New("invalid lot")
)

// Domain entity errors for read-side lookups.
var (
	// ErrTransactionNotFound indicates that a transaction with the given ID
	// does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrPriceNotFound indicates no price record on or before the requested
	// date for a security.
	ErrPriceNotFound = errors.New("price not found")

	// ErrHoldingNotFound indicates that no open position exists for the
	// requested account and security.
	ErrHoldingNotFound = errors.New("holding not found")
)

// Business logic errors represent validation failures or constraint
// violations on API input.
var (
	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrDuplicateEntry indicates that an entity with the same unique
	// constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrMissingRequiredField indicates that a required field is missing or
	// empty.
	ErrMissingRequiredField = errors.New("missing required field")
)
