package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/qifin/lotledger/internal/api/request"
	"github.com/qifin/lotledger/internal/model"
	"github.com/qifin/lotledger/internal/repository"
	"github.com/qifin/lotledger/internal/validation"
)

// PriceService handles price record entry and retrieval. The price table is
// append-only; valuation always looks up the latest price on or before a
// date.
type PriceService struct {
	priceRepo     *repository.PriceRepository
	referenceRepo *repository.ReferenceRepository
}

// NewPriceService creates a new PriceService with the provided repository
// dependencies.
func NewPriceService(
	priceRepo *repository.PriceRepository,
	referenceRepo *repository.ReferenceRepository,
) *PriceService {
	return &PriceService{
		priceRepo:     priceRepo,
		referenceRepo: referenceRepo,
	}
}

// CreatePrice validates and stores a new price record.
func (s *PriceService) CreatePrice(req request.CreatePriceRequest) (*model.Price, error) {
	if err := validation.ValidateCreatePrice(&req); err != nil {
		return nil, err
	}

	if _, err := s.referenceRepo.ResolveSecurity(req.SecurityID); err != nil {
		return nil, err
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, err
	}

	price := &model.Price{
		ID:         uuid.New().String(),
		SecurityID: req.SecurityID,
		Date:       date,
		Price:      req.Price,
	}

	if err := s.priceRepo.InsertPrice(price); err != nil {
		return nil, fmt.Errorf("failed to create price: %w", err)
	}

	return price, nil
}

// GetPrices retrieves all price records for a security in date order.
func (s *PriceService) GetPrices(securityID string) ([]model.Price, error) {
	return s.priceRepo.GetPrices(securityID)
}

// LatestPriceOnOrBefore finds the most recent price for a security on or
// before a date.
func (s *PriceService) LatestPriceOnOrBefore(securityID string, date time.Time) (model.Price, error) {
	return s.priceRepo.LatestPriceOnOrBefore(securityID, date)
}
