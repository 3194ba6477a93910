package contract

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"ecert/internal/contractinfo"
	"ecert/internal/domain/certificate"
)

// Contract method names as declared in the ABI.
const (
	MethodOwner              = "owner"
	MethodMinters            = "minters"
	MethodIsValidCertificate = "isValidCertificate"
	MethodBurnCertificate    = "burnCertificate"
	MethodAddMinter          = "addMinter"
	MethodRemoveMinter       = "removeMinter"
)

// Certificate is a typed binding to the deployed certificate contract.
type Certificate struct {
	address  common.Address
	contract *bind.BoundContract
}

// New binds the contract at address to backend. The address is not checked
// for code; the first call against it surfaces that failure.
func New(address common.Address, backend bind.ContractBackend) (*Certificate, error) {
	parsed, err := contractinfo.ABI()
	if err != nil {
		return nil, err
	}
	return &Certificate{
		address:  address,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

// Factory returns a certificate.ContractFactory bound to address.
func Factory(address common.Address) certificate.ContractFactory {
	return func(backend bind.ContractBackend) (certificate.Contract, error) {
		return New(address, backend)
	}
}

// Address returns the bound contract address.
func (c *Certificate) Address() common.Address {
	return c.address
}

func (c *Certificate) Owner(ctx context.Context) (common.Address, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, MethodOwner); err != nil {
		return common.Address{}, fmt.Errorf("call %s: %w", MethodOwner, err)
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

func (c *Certificate) Minters(ctx context.Context, account common.Address) (bool, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, MethodMinters, account); err != nil {
		return false, fmt.Errorf("call %s: %w", MethodMinters, err)
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (c *Certificate) IsValidCertificate(ctx context.Context, token string) (bool, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, MethodIsValidCertificate, token); err != nil {
		return false, fmt.Errorf("call %s: %w", MethodIsValidCertificate, err)
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (c *Certificate) BurnCertificate(opts *bind.TransactOpts, token string) (*types.Transaction, error) {
	return c.transact(opts, MethodBurnCertificate, token)
}

func (c *Certificate) AddMinter(opts *bind.TransactOpts, account common.Address) (*types.Transaction, error) {
	return c.transact(opts, MethodAddMinter, account)
}

func (c *Certificate) RemoveMinter(opts *bind.TransactOpts, account common.Address) (*types.Transaction, error) {
	return c.transact(opts, MethodRemoveMinter, account)
}

func (c *Certificate) transact(opts *bind.TransactOpts, method string, params ...interface{}) (*types.Transaction, error) {
	tx, err := c.contract.Transact(opts, method, params...)
	if err != nil {
		return nil, fmt.Errorf("transact %s: %w", method, err)
	}
	return tx, nil
}
