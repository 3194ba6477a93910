package http

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	certservice "ecert/internal/application/certificate"
	"ecert/internal/domain/certificate"
	"ecert/internal/domain/network"
	"ecert/internal/domain/transaction"
)

type CertificateService interface {
	GetOwner(ctx context.Context, reader bind.ContractBackend) (common.Address, error)
	IsMinter(ctx context.Context, account common.Address, reader bind.ContractBackend) (bool, error)
	IsValidCertificate(ctx context.Context, token string, reader bind.ContractBackend) (bool, error)
	BurnCertificate(ctx context.Context, token string, signer *certificate.Signer) (*types.Receipt, error)
	AddMinter(ctx context.Context, account common.Address, signer *certificate.Signer) (*types.Receipt, error)
	RemoveMinter(ctx context.Context, account common.Address, signer *certificate.Signer) (*types.Receipt, error)
	Status(ctx context.Context, backend certservice.StatusBackend) (*certservice.Status, error)
}

type NetworkService interface {
	EnsureNetwork(ctx context.Context, provider network.Provider) error
	VerifyChain(ctx context.Context, provider network.Provider) error
	Descriptor() network.Descriptor
}

type TransactionService interface {
	GetTransactions(ctx context.Context, opts transaction.FilterOptions) (*transaction.TransactionResult, error)
	GetTransactionByHash(ctx context.Context, hash string) (*transaction.Transaction, error)
}

// Chain is the connected wallet the handlers operate through. Signer is nil
// when no signing key is configured.
type Chain struct {
	Provider network.Provider
	Reader   certservice.StatusBackend
	Signer   *certificate.Signer
}

type TransactionFilters struct {
	Method   *string `json:"method"`
	Status   *string `json:"status"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

type Transaction struct {
	ID          string     `json:"id"`
	Hash        string     `json:"hash"`
	Method      string     `json:"method"`
	MethodSig   string     `json:"method_sig"`
	Argument    string     `json:"argument"`
	From        string     `json:"from"`
	Status      string     `json:"status"`
	BlockNumber int64      `json:"block_number"`
	CreatedAt   time.Time  `json:"created_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}

// ToDomainFilterOptions maps HTTP transaction filters to domain filter options.
func ToDomainFilterOptions(f TransactionFilters) (transaction.FilterOptions, error) {
	var opts transaction.FilterOptions

	if f.Method != nil && *f.Method != "" {
		opts.Method = f.Method
	}

	if f.Status != nil && *f.Status != "" {
		s := transaction.TransactionStatus(*f.Status)
		if !s.Valid() {
			return opts, fmt.Errorf("invalid transaction status: %s", *f.Status)
		}
		opts.Status = &s
	}

	opts.Page = f.Page
	opts.PageSize = f.PageSize

	return opts, nil
}

type Receipt struct {
	TransactionHash string `json:"transaction_hash"`
	BlockNumber     uint64 `json:"block_number"`
	GasUsed         uint64 `json:"gas_used"`
	Status          string `json:"status"`
}

type Network struct {
	ChainID        string           `json:"chain_id"`
	ChainName      string           `json:"chain_name"`
	NativeCurrency network.Currency `json:"native_currency"`
	RPCURLs        []string         `json:"rpc_urls"`
}

type Status struct {
	ChainID     string   `json:"chain_id"`
	BlockNumber uint64   `json:"block_number"`
	Owner       string   `json:"owner"`
	Contract    string   `json:"contract"`
	Signer      string   `json:"signer,omitempty"`
	Target      *Network `json:"target"`
}

type MinterRequest struct {
	Address string `json:"address"`
}

type MinterStatus struct {
	Address  string `json:"address"`
	IsMinter bool   `json:"is_minter"`
}

type CertificateStatus struct {
	Token string `json:"token"`
	Valid bool   `json:"valid"`
}

type Token struct {
	Token string `json:"token"`
}

type Owner struct {
	Owner string `json:"owner"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	Total      int         `json:"total"`
	TotalPages int         `json:"total_pages"`
}
