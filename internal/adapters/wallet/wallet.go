package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"ecert/internal/domain/certificate"
	"ecert/internal/domain/network"
)

var (
	ErrWalletNotFound      = errors.New("wallet provider not found")
	ErrSignerNotAuthorized = errors.New("signing key is not an account of the wallet")
	ErrInvalidKey          = errors.New("invalid private key")
)

// codeMethodNotFound is the JSON-RPC code for an unsupported method.
const codeMethodNotFound = -32601

// Handshaker brings a provider onto the target chain.
type Handshaker interface {
	EnsureNetwork(ctx context.Context, provider network.Provider) error
	Descriptor() network.Descriptor
}

// Session is a connected wallet on the target chain.
type Session struct {
	RPC      *rpc.Client
	Client   *ethclient.Client
	Accounts []common.Address
	ChainID  *big.Int
}

// Detect dials the wallet provider at url and checks that something answers.
// An empty url, a failed dial or an unreachable endpoint means no wallet is
// available.
func Detect(ctx context.Context, url string) (*rpc.Client, error) {
	if strings.TrimSpace(url) == "" {
		return nil, ErrWalletNotFound
	}
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWalletNotFound, err)
	}
	if err := ping(ctx, client); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %w", ErrWalletNotFound, err)
	}
	return client, nil
}

// ping issues net_version since HTTP dials are lazy. Any JSON-RPC error reply,
// an unsupported method included, means a provider is listening.
func ping(ctx context.Context, client *rpc.Client) error {
	var version string
	err := client.CallContext(ctx, &version, "net_version")
	if err == nil {
		return nil
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return nil
	}
	return err
}

// Acquire detects the wallet at url, ensures it is on the target chain and
// requests its accounts.
func Acquire(ctx context.Context, url string, hs Handshaker) (*Session, error) {
	client, err := Detect(ctx, url)
	if err != nil {
		return nil, err
	}
	session, err := Connect(ctx, client, hs)
	if err != nil {
		client.Close()
		return nil, err
	}
	return session, nil
}

// Connect runs the handshake and account request over an already dialled
// client. The caller keeps ownership of client on error.
func Connect(ctx context.Context, client *rpc.Client, hs Handshaker) (*Session, error) {
	if err := hs.EnsureNetwork(ctx, client); err != nil {
		return nil, fmt.Errorf("ensure network: %w", err)
	}

	accounts, err := requestAccounts(ctx, client)
	if err != nil {
		return nil, err
	}

	return &Session{
		RPC:      client,
		Client:   ethclient.NewClient(client),
		Accounts: accounts,
		ChainID:  hs.Descriptor().ID(),
	}, nil
}

// requestAccounts asks the wallet to expose its accounts. Nodes that do not
// implement eth_requestAccounts are asked for eth_accounts instead.
func requestAccounts(ctx context.Context, client network.Provider) ([]common.Address, error) {
	var accounts []common.Address
	err := client.CallContext(ctx, &accounts, network.MethodRequestAccounts)
	if err == nil {
		return accounts, nil
	}

	var rpcErr rpc.Error
	if !errors.As(err, &rpcErr) || rpcErr.ErrorCode() != codeMethodNotFound {
		return nil, fmt.Errorf("request accounts: %w", err)
	}
	if err := client.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// Close releases the provider connection.
func (s *Session) Close() {
	if s != nil && s.RPC != nil {
		s.RPC.Close()
	}
}

// Signer builds a transaction signer from a hex private key. When the wallet
// reported accounts, the key must belong to one of them.
func (s *Session) Signer(privateKeyHex string) (*certificate.Signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, s.ChainID)
	if err != nil {
		return nil, fmt.Errorf("build transactor: %w", err)
	}

	if len(s.Accounts) > 0 && !s.HasAccount(opts.From) {
		return nil, fmt.Errorf("%w: %s", ErrSignerNotAuthorized, opts.From.Hex())
	}

	return &certificate.Signer{Backend: s.Client, Opts: opts}, nil
}

// HasAccount reports whether the wallet exposed account.
func (s *Session) HasAccount(account common.Address) bool {
	for _, a := range s.Accounts {
		if a == account {
			return true
		}
	}
	return false
}
