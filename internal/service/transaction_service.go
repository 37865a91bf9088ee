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

// TransactionService handles transaction entry and retrieval. Transactions
// normally arrive through the QIF importer; these entry points exist so a
// ledger can be populated and corrected without it.
type TransactionService struct {
	transactionRepo *repository.TransactionRepository
	referenceRepo   *repository.ReferenceRepository
}

// NewTransactionService creates a new TransactionService with the provided
// repository dependencies.
func NewTransactionService(
	transactionRepo *repository.TransactionRepository,
	referenceRepo *repository.ReferenceRepository,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		referenceRepo:   referenceRepo,
	}
}

// CreateTransaction validates and stores a new transaction. The account (and
// security, for investment transactions referencing one) must already exist.
func (s *TransactionService) CreateTransaction(req request.CreateTransactionRequest) (*model.Transaction, error) {
	if err := validation.ValidateCreateTransaction(&req); err != nil {
		return nil, err
	}

	if _, err := s.referenceRepo.ResolveAccount(req.AccountID); err != nil {
		return nil, err
	}
	if req.SecurityID != "" {
		if _, err := s.referenceRepo.ResolveSecurity(req.SecurityID); err != nil {
			return nil, err
		}
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, err
	}

	transaction := &model.Transaction{
		ID:               uuid.New().String(),
		AccountID:        req.AccountID,
		Date:             date,
		Type:             req.Type,
		InvestmentAction: req.InvestmentAction,
		SecurityID:       req.SecurityID,
		Amount:           req.Amount,
		Quantity:         req.Quantity,
		Price:            req.Price,
		Commission:       req.Commission,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.transactionRepo.InsertTransaction(transaction); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	return transaction, nil
}

// GetTransactions retrieves all transactions, optionally narrowed to one
// account.
func (s *TransactionService) GetTransactions(accountID string) ([]model.Transaction, error) {
	return s.transactionRepo.GetTransactions(accountID)
}

// GetTransaction retrieves a single transaction by its ID.
func (s *TransactionService) GetTransaction(transactionID string) (model.Transaction, error) {
	return s.transactionRepo.GetTransaction(transactionID)
}
