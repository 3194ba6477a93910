package transaction

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
)

var ErrTransactionNotFound = errors.New("transaction not found")

type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// Valid reports whether s is one of the known statuses.
func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusSuccess, TransactionStatusFailed:
		return true
	}
	return false
}

// Transaction is a journal entry for a state-changing contract call
// submitted through this service.
type Transaction struct {
	ID          string
	Hash        string
	Method      string
	MethodSig   string
	Argument    string
	From        string
	Status      TransactionStatus
	BlockNumber int64
	CreatedAt   time.Time
	ConfirmedAt *time.Time
}

// NewTransaction creates a pending journal entry.
func NewTransaction(hash, method, argument, from string, input []byte) *Transaction {
	tx := &Transaction{
		ID:        uuid.New().String(),
		Hash:      strings.ToLower(hash),
		Method:    method,
		Argument:  argument,
		From:      strings.ToLower(from),
		Status:    TransactionStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	tx.MethodSig = tx.ExtractMethodSignature(input)
	return tx
}

// ExtractMethodSignature returns the 4-byte selector of the call data as a
// lowercase 0x-prefixed hex string, or "" when the data is too short.
func (tx *Transaction) ExtractMethodSignature(input []byte) string {
	if len(input) < 4 {
		return ""
	}
	return hexutil.Encode(input[:4])
}

// Confirm records the mined outcome of the transaction.
func (tx *Transaction) Confirm(success bool, blockNumber int64, at time.Time) {
	tx.Status = TransactionStatusFailed
	if success {
		tx.Status = TransactionStatusSuccess
	}
	tx.BlockNumber = blockNumber
	at = at.UTC()
	tx.ConfirmedAt = &at
}

type FilterOptions struct {
	Method *string
	Status *TransactionStatus

	Page     int
	PageSize int
}

// Normalize applies the default page and page size.
func (o FilterOptions) Normalize() FilterOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PageSize < 1 {
		o.PageSize = 20
	}
	if o.PageSize > 100 {
		o.PageSize = 100
	}
	return o
}

type TransactionResult struct {
	Transactions []Transaction
	Total        int
	Page         int
	PageSize     int
	TotalPages   int
}

type Repository interface {
	Create(ctx context.Context, tx *Transaction) error
	Update(ctx context.Context, tx *Transaction) error
	GetByHash(ctx context.Context, hash string) (*Transaction, error)
	List(ctx context.Context, opts FilterOptions) (*TransactionResult, error)
}
