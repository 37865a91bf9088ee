package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/qifin/lotledger/internal/api/request"
	"github.com/qifin/lotledger/internal/apperrors"
	"github.com/qifin/lotledger/internal/model"
	"github.com/qifin/lotledger/internal/repository"
)

// ReferenceService handles account and security reference data. Accounts
// get random UUIDs; securities get deterministic content-hash ids derived
// from their symbol, so re-creating the same security yields the same id.
type ReferenceService struct {
	referenceRepo *repository.ReferenceRepository
}

// NewReferenceService creates a new ReferenceService with the provided
// repository dependency.
func NewReferenceService(referenceRepo *repository.ReferenceRepository) *ReferenceService {
	return &ReferenceService{referenceRepo: referenceRepo}
}

// CreateAccount validates and stores a new account.
func (s *ReferenceService) CreateAccount(req request.CreateAccountRequest) (*model.Account, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name", apperrors.ErrMissingRequiredField)
	}
	if req.AccountType == "" {
		return nil, fmt.Errorf("%w: accountType", apperrors.ErrMissingRequiredField)
	}

	account := &model.Account{
		ID:          uuid.New().String(),
		Name:        req.Name,
		AccountType: req.AccountType,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.referenceRepo.InsertAccount(account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// CreateSecurity validates and stores a new security.
func (s *ReferenceService) CreateSecurity(req request.CreateSecurityRequest) (*model.Security, error) {
	if req.Symbol == "" {
		return nil, fmt.Errorf("%w: symbol", apperrors.ErrMissingRequiredField)
	}

	name := req.Name
	if name == "" {
		name = req.Symbol
	}

	security := &model.Security{
		ID:        model.SecurityID(req.Symbol),
		Symbol:    req.Symbol,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.referenceRepo.InsertSecurity(security); err != nil {
		return nil, fmt.Errorf("failed to create security: %w", err)
	}

	return security, nil
}

// GetAccounts retrieves all accounts.
func (s *ReferenceService) GetAccounts() ([]model.Account, error) {
	return s.referenceRepo.GetAccounts()
}

// GetSecurities retrieves all securities.
func (s *ReferenceService) GetSecurities() ([]model.Security, error) {
	return s.referenceRepo.GetSecurities()
}

// GetAccount retrieves one account by id.
func (s *ReferenceService) GetAccount(accountID string) (model.Account, error) {
	return s.referenceRepo.ResolveAccount(accountID)
}

// GetSecurity retrieves one security by id.
func (s *ReferenceService) GetSecurity(securityID string) (model.Security, error) {
	return s.referenceRepo.ResolveSecurity(securityID)
}
