package certificate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	ErrInvalidAddress      = errors.New("invalid address")
	ErrInvalidToken        = errors.New("invalid certificate token")
	ErrTransactionReverted = errors.New("transaction reverted")
	ErrNoSigner            = errors.New("signer is required for state-changing calls")
)

// Contract is the typed surface of the deployed certificate contract.
type Contract interface {
	Owner(ctx context.Context) (common.Address, error)
	Minters(ctx context.Context, account common.Address) (bool, error)
	IsValidCertificate(ctx context.Context, token string) (bool, error)

	BurnCertificate(opts *bind.TransactOpts, token string) (*types.Transaction, error)
	AddMinter(opts *bind.TransactOpts, account common.Address) (*types.Transaction, error)
	RemoveMinter(opts *bind.TransactOpts, account common.Address) (*types.Transaction, error)
}

// Backend is what a caller hands in to reach the chain: it answers reads,
// carries submitted transactions and reports their receipts.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// Signer pairs a backend with the account that signs transactions.
type Signer struct {
	Backend Backend
	Opts    *bind.TransactOpts
}

// ContractFactory binds the deployed contract to a backend.
type ContractFactory func(backend bind.ContractBackend) (Contract, error)

// Confirmer blocks until tx is mined and returns its receipt.
type Confirmer func(ctx context.Context, backend bind.DeployBackend, tx *types.Transaction) (*types.Receipt, error)

// ParseAddress parses a 0x-prefixed hex account address.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}

// ValidateToken rejects blank certificate tokens. Any other string is passed
// to the contract as is.
func ValidateToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrInvalidToken
	}
	return nil
}
