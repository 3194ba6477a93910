package network

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// JSON-RPC methods used by the handshake.
const (
	MethodChainID         = "eth_chainId"
	MethodSwitchChain     = "wallet_switchEthereumChain"
	MethodAddChain        = "wallet_addEthereumChain"
	MethodRequestAccounts = "eth_requestAccounts"
)

// CodeChainUnrecognized is the EIP-3326 error code returned by a wallet that
// does not know the requested chain.
const CodeChainUnrecognized = 4902

// Provider is the wallet capability every network operation receives
// explicitly. *rpc.Client satisfies it.
type Provider interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// Currency describes the native currency of a chain.
type Currency struct {
	Name     string `json:"name" yaml:"name"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	Decimals int    `json:"decimals" yaml:"decimals"`
}

// Descriptor is the wallet_addEthereumChain parameter for the target chain.
type Descriptor struct {
	ChainID        *hexutil.Big `json:"chainId" yaml:"-"`
	ChainName      string       `json:"chainName" yaml:"chain_name"`
	NativeCurrency Currency     `json:"nativeCurrency" yaml:"native_currency"`
	RPCURLs        []string     `json:"rpcUrls" yaml:"rpc_urls"`
}

// LocalChainID is 1337 (0x539), the Hardhat development chain.
const LocalChainID int64 = 1337

// LocalDescriptor returns the descriptor of the local development chain.
func LocalDescriptor() Descriptor {
	return Descriptor{
		ChainID:   (*hexutil.Big)(big.NewInt(LocalChainID)),
		ChainName: "Hardhat Local",
		NativeCurrency: Currency{
			Name:     "Ether",
			Symbol:   "ETH",
			Decimals: 18,
		},
		RPCURLs: []string{"http://127.0.0.1:8545"},
	}
}

// ID returns the chain id as a big.Int; nil when unset.
func (d Descriptor) ID() *big.Int {
	if d.ChainID == nil {
		return nil
	}
	return d.ChainID.ToInt()
}

// SwitchParams is the single parameter object of wallet_switchEthereumChain.
type SwitchParams struct {
	ChainID *hexutil.Big `json:"chainId"`
}

// Switch returns the switch request parameter for this descriptor.
func (d Descriptor) Switch() SwitchParams {
	return SwitchParams{ChainID: d.ChainID}
}

// Validate checks that the descriptor can be sent to a wallet.
func (d Descriptor) Validate() error {
	if d.ChainID == nil || d.ChainID.ToInt().Sign() <= 0 {
		return fmt.Errorf("%w: chain id must be positive", ErrInvalidDescriptor)
	}
	if d.ChainName == "" {
		return fmt.Errorf("%w: chain name is required", ErrInvalidDescriptor)
	}
	if len(d.RPCURLs) == 0 {
		return fmt.Errorf("%w: at least one rpc url is required", ErrInvalidDescriptor)
	}
	return nil
}

var (
	ErrInvalidDescriptor = errors.New("invalid network descriptor")
	ErrChainMismatch     = errors.New("provider is on a different chain")
)

// ErrorKind is the closed set of handshake failure classes.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindChainUnrecognized
)

func (k ErrorKind) String() string {
	switch k {
	case KindChainUnrecognized:
		return "chain_unrecognized"
	default:
		return "other"
	}
}

// ChainError is a provider failure tagged with its kind.
type ChainError struct {
	Kind   ErrorKind
	Method string
	Err    error
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Method, e.Kind, e.Err)
}

func (e *ChainError) Unwrap() error {
	return e.Err
}

// Classify tags err with its kind by inspecting the JSON-RPC error code.
// A nil err stays nil.
func Classify(method string, err error) error {
	if err == nil {
		return nil
	}
	var existing *ChainError
	if errors.As(err, &existing) {
		return err
	}

	kind := KindOther
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == CodeChainUnrecognized {
		kind = KindChainUnrecognized
	}
	return &ChainError{Kind: kind, Method: method, Err: err}
}

// IsChainUnrecognized reports whether err was classified as an unknown chain.
func IsChainUnrecognized(err error) bool {
	var chainErr *ChainError
	return errors.As(err, &chainErr) && chainErr.Kind == KindChainUnrecognized
}
