package transaction

import (
	"context"
	"fmt"
	"strings"

	"ecert/internal/domain/transaction"
)

// Service reads the transaction journal for the HTTP layer and the CLI.
type Service struct {
	repo transaction.Repository
}

// NewService creates a new transaction service
func NewService(repo transaction.Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// GetTransactions retrieves journal entries with filtering and pagination
func (s *Service) GetTransactions(ctx context.Context, opts transaction.FilterOptions) (*transaction.TransactionResult, error) {
	if opts.Status != nil && !opts.Status.Valid() {
		return nil, fmt.Errorf("invalid transaction status: %s", *opts.Status)
	}
	return s.repo.List(ctx, opts.Normalize())
}

// GetTransactionByHash retrieves a specific journal entry by its hash
func (s *Service) GetTransactionByHash(ctx context.Context, hash string) (*transaction.Transaction, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return nil, fmt.Errorf("hash is required")
	}
	return s.repo.GetByHash(ctx, hash)
}
