package service

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/qifin/lotledger/internal/apperrors"
	"github.com/qifin/lotledger/internal/model"
	"github.com/qifin/lotledger/internal/repository"
	"github.com/qifin/lotledger/internal/validation"
)

// LotEngine is the write side of the lot ledger: FIFO matching for buys and
// sells across long and short positions, proportional split adjustment, and
// the option grant/vest/exercise lifecycle. It operates through repositories
// bound to the rebuild's transaction, so nothing it does is visible until
// the rebuild commits.
type LotEngine struct {
	lotRepo   *repository.LotRepository
	priceRepo *repository.PriceRepository
}

// NewLotEngine creates a LotEngine over the provided repositories.
func NewLotEngine(lotRepo *repository.LotRepository, priceRepo *repository.PriceRepository) *LotEngine {
	return &LotEngine{
		lotRepo:   lotRepo,
		priceRepo: priceRepo,
	}
}

// Apply routes one classified transaction into the lot ledger. Recoverable
// conditions (a reinvestment with no usable cost-basis source) are reported
// through warn and skipped; every returned error is fatal to the rebuild.
func (e *LotEngine) Apply(category ActionCategory, txn *model.Transaction, warn func(string)) error {
	switch category {
	case ActionBuy, ActionSharesIn:
		return e.reduceOrOpen(txn, txn.Quantity, true, nil)
	case ActionSell, ActionSharesOut:
		return e.reduceOrOpen(txn, txn.Quantity, false, nil)
	case ActionReinvest:
		return e.applyReinvest(txn, warn)
	case ActionSplit:
		return e.applySplit(txn)
	case ActionGrantOrVest:
		return e.applyGrantOrVest(txn)
	case ActionExercise:
		return e.applyExercise(txn)
	case ActionCashOnly, ActionTransfer:
		// Cash-only and transfer actions never touch lots.
		return nil
	default:
		return fmt.Errorf("%w: category %d", apperrors.ErrUnhandledAction, category)
	}
}

// reduceOrOpen is the FIFO core. It walks the open lots whose sign opposes
// the transaction's direction, oldest first, reducing each until the
// transaction quantity is consumed, then opens a new lot in the
// transaction's own direction for any significant leftover.
//
// A buy first closes out existing shorts before opening a new long, and a
// sell first closes out existing longs before opening a new short, which is
// the standard buy-to-cover / short-sale behavior. A sell-side leftover
// within the noise tolerance is discarded instead of becoming a micro-lot.
//
// costBasisHint, when non-nil, overrides the cost basis of a newly opened
// lot; reinvestments use it to carry their inferred basis.
func (e *LotEngine) reduceOrOpen(txn *model.Transaction, quantity float64, isBuy bool, costBasisHint *float64) error {
	lots, err := e.lotRepo.OpenLots(txn.AccountID, txn.SecurityID)
	if err != nil {
		return err
	}

	remaining := math.Abs(quantity)

	for i := range lots {
		if remaining <= model.Epsilon {
			break
		}
		lot := &lots[i]

		// Only lots with the opposite sign are reduced; lots already in the
		// transaction's direction are left untouched.
		if isBuy && lot.RemainingQuantity >= 0 {
			continue
		}
		if !isBuy && lot.RemainingQuantity <= 0 {
			continue
		}

		reduceBy := math.Min(math.Abs(lot.RemainingQuantity), remaining)
		newRemaining := lot.RemainingQuantity - math.Copysign(reduceBy, lot.RemainingQuantity)
		remaining -= reduceBy

		var closedDate *time.Time
		if math.Abs(newRemaining) <= model.Epsilon {
			newRemaining = 0
			d := txn.Date
			closedDate = &d
		}

		if err := e.lotRepo.UpdateLotRemaining(lot.ID, newRemaining, closedDate); err != nil {
			return err
		}
	}

	if remaining <= model.Epsilon {
		return nil
	}

	// A buy leftover always opens a lot. A sell leftover opens a short lot
	// only when it exceeds the noise tolerance; below that it is floating
	// noise from the FIFO walk and is discarded.
	if !isBuy && remaining <= model.NoiseTolerance {
		return nil
	}

	signedQuantity := remaining
	if !isBuy {
		signedQuantity = -remaining
	}

	var costBasis float64
	switch {
	case costBasisHint != nil:
		costBasis = *costBasisHint
	case txn.Amount != nil:
		costBasis = math.Abs(*txn.Amount)
	default:
		costBasis = remaining * txn.PriceValue()
	}

	return e.openLot(txn, signedQuantity, costBasis)
}

// applyReinvest handles dividend/interest/capital-gain reinvestment. A
// positive quantity is a buy whose cost basis is inferred from the
// transaction amount, the transaction price, or the latest prior price
// record, in that order; with no usable source the transaction is skipped
// with a warning and the rebuild continues. A negative quantity is treated
// as a sell.
func (e *LotEngine) applyReinvest(txn *model.Transaction, warn func(string)) error {
	if txn.Quantity < 0 {
		return e.reduceOrOpen(txn, -txn.Quantity, false, nil)
	}
	if txn.Quantity == 0 {
		return nil
	}

	var costBasis float64
	switch {
	case txn.Amount != nil:
		costBasis = math.Abs(*txn.Amount)
	case txn.Price != nil:
		costBasis = txn.Quantity * *txn.Price
	default:
		price, err := e.priceRepo.LatestPriceOnOrBefore(txn.SecurityID, txn.Date)
		if errors.Is(err, apperrors.ErrPriceNotFound) {
			warn(fmt.Sprintf("skipping reinvestment %s: no amount, price, or prior price record for security %s", txn.ID, txn.SecurityID))
			return nil
		}
		if err != nil {
			return err
		}
		costBasis = txn.Quantity * price.Price
	}

	return e.reduceOrOpen(txn, txn.Quantity, true, &costBasis)
}

// applySplit rescales every open lot of the (account, security) pair in
// place. The QIF encoding carries the split ratio as quantity/10, so a 2:1
// split arrives with quantity 20. Cost basis is left untouched, preserving
// total dollar cost basis across the split.
func (e *LotEngine) applySplit(txn *model.Transaction) error {
	ratio := txn.Quantity / 10
	if ratio <= 0 {
		return nil
	}

	lots, err := e.lotRepo.OpenLots(txn.AccountID, txn.SecurityID)
	if err != nil {
		return err
	}

	for i := range lots {
		lot := &lots[i]
		err := e.lotRepo.UpdateLotQuantities(lot.ID, lot.Quantity*ratio, lot.RemainingQuantity*ratio)
		if err != nil {
			return err
		}
	}

	return nil
}

// applyGrantOrVest creates a zero-cost option lot. Grant and Vest are not
// distinguished at the lot level.
func (e *LotEngine) applyGrantOrVest(txn *model.Transaction) error {
	return e.openLot(txn, txn.Quantity, 0)
}

// applyExercise reduces open option lots FIFO by the exercised amount. No
// equity lot is created for the exercised shares; the option lot is simply
// marked consumed.
func (e *LotEngine) applyExercise(txn *model.Transaction) error {
	lots, err := e.lotRepo.OpenLots(txn.AccountID, txn.SecurityID)
	if err != nil {
		return err
	}

	remaining := math.Abs(txn.Quantity)

	for i := range lots {
		if remaining <= model.Epsilon {
			break
		}
		lot := &lots[i]
		if lot.RemainingQuantity <= 0 {
			continue
		}

		reduceBy := math.Min(lot.RemainingQuantity, remaining)
		newRemaining := lot.RemainingQuantity - reduceBy
		remaining -= reduceBy

		var closedDate *time.Time
		if math.Abs(newRemaining) <= model.Epsilon {
			newRemaining = 0
			d := txn.Date
			closedDate = &d
		}

		if err := e.lotRepo.UpdateLotRemaining(lot.ID, newRemaining, closedDate); err != nil {
			return err
		}
	}

	return nil
}

// openLot validates and stores a new lot created by the given transaction.
func (e *LotEngine) openLot(txn *model.Transaction, signedQuantity, costBasis float64) error {
	lot := &model.Lot{
		ID:                     model.LotID(txn.AccountID, txn.SecurityID, txn.Date, txn.ID),
		AccountID:              txn.AccountID,
		SecurityID:             txn.SecurityID,
		PurchaseDate:           txn.Date,
		Quantity:               signedQuantity,
		CostBasis:              costBasis,
		RemainingQuantity:      signedQuantity,
		CreatedByTransactionID: txn.ID,
		CreatedAt:              time.Now().UTC(),
	}

	if err := validation.ValidateLot(lot); err != nil {
		return err
	}

	if _, err := e.lotRepo.InsertLot(lot); err != nil {
		return err
	}

	return nil
}
