package certificate

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ecert/internal/adapters/logger"
	"ecert/internal/domain"
	"ecert/internal/domain/certificate"
	"ecert/internal/domain/transaction"
)

// Publisher receives journal entries once their transaction is mined.
type Publisher interface {
	Publish(tx transaction.Transaction)
}

// Service forwards calls to the certificate contract. Reads go straight to
// the bound handle; writes are submitted and awaited until mined.
type Service struct {
	contracts certificate.ContractFactory
	confirm   certificate.Confirmer
	logger    *logger.Logger

	journal   transaction.Repository
	limiter   domain.RateLimiterService
	publisher Publisher
}

// NewService creates a certificate service. A nil confirm waits with
// bind.WaitMined.
func NewService(contracts certificate.ContractFactory, confirm certificate.Confirmer, log *logger.Logger) *Service {
	if confirm == nil {
		confirm = bind.WaitMined
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Service{
		contracts: contracts,
		confirm:   confirm,
		logger:    log.Named("certificate"),
	}
}

// SetJournal records submitted transactions in repo.
func (s *Service) SetJournal(repo transaction.Repository) {
	s.journal = repo
}

// SetRateLimiter gates state-changing submissions.
func (s *Service) SetRateLimiter(limiter domain.RateLimiterService) {
	s.limiter = limiter
}

// SetPublisher announces mined journal entries.
func (s *Service) SetPublisher(p Publisher) {
	s.publisher = p
}

// GetContract returns a handle to the deployed contract bound to backend.
func (s *Service) GetContract(backend bind.ContractBackend) (certificate.Contract, error) {
	if backend == nil {
		return nil, fmt.Errorf("contract backend is required")
	}
	return s.contracts(backend)
}

func (s *Service) GetOwner(ctx context.Context, reader bind.ContractBackend) (common.Address, error) {
	contract, err := s.GetContract(reader)
	if err != nil {
		return common.Address{}, err
	}
	return contract.Owner(ctx)
}

func (s *Service) IsMinter(ctx context.Context, account common.Address, reader bind.ContractBackend) (bool, error) {
	contract, err := s.GetContract(reader)
	if err != nil {
		return false, err
	}
	return contract.Minters(ctx, account)
}

func (s *Service) IsValidCertificate(ctx context.Context, token string, reader bind.ContractBackend) (bool, error) {
	contract, err := s.GetContract(reader)
	if err != nil {
		return false, err
	}
	return contract.IsValidCertificate(ctx, token)
}

// BurnCertificate burns token and returns once the transaction is mined.
func (s *Service) BurnCertificate(ctx context.Context, token string, signer *certificate.Signer) (*types.Receipt, error) {
	return s.submit(ctx, signer, "burnCertificate", token,
		func(c certificate.Contract, opts *bind.TransactOpts) (*types.Transaction, error) {
			return c.BurnCertificate(opts, token)
		})
}

// AddMinter authorizes account to mint and returns once the transaction is mined.
func (s *Service) AddMinter(ctx context.Context, account common.Address, signer *certificate.Signer) (*types.Receipt, error) {
	return s.submit(ctx, signer, "addMinter", account.Hex(),
		func(c certificate.Contract, opts *bind.TransactOpts) (*types.Transaction, error) {
			return c.AddMinter(opts, account)
		})
}

// RemoveMinter revokes account's minting right and returns once the
// transaction is mined.
func (s *Service) RemoveMinter(ctx context.Context, account common.Address, signer *certificate.Signer) (*types.Receipt, error) {
	return s.submit(ctx, signer, "removeMinter", account.Hex(),
		func(c certificate.Contract, opts *bind.TransactOpts) (*types.Transaction, error) {
			return c.RemoveMinter(opts, account)
		})
}

type sendFunc func(c certificate.Contract, opts *bind.TransactOpts) (*types.Transaction, error)

func (s *Service) submit(ctx context.Context, signer *certificate.Signer, method, argument string, send sendFunc) (*types.Receipt, error) {
	if signer == nil || signer.Backend == nil || signer.Opts == nil {
		return nil, certificate.ErrNoSigner
	}

	if s.limiter != nil {
		if err := s.limiter.Allow(ctx); err != nil {
			return nil, fmt.Errorf("%s: %w", method, err)
		}
	}

	contract, err := s.GetContract(signer.Backend)
	if err != nil {
		return nil, err
	}

	opts := *signer.Opts
	opts.Context = ctx

	tx, err := send(contract, &opts)
	if err != nil {
		return nil, err
	}

	log := s.logger.WithFields(
		zap.String("method", method),
		zap.String("tx_hash", tx.Hash().Hex()),
	)
	log.Info("transaction submitted", zap.String("from", opts.From.Hex()))

	// Journal writes outlive the caller's context.
	journalCtx := context.WithoutCancel(ctx)
	entry := s.record(journalCtx, tx, method, argument, opts.From)

	receipt, err := s.confirm(ctx, signer.Backend, tx)
	if err != nil {
		// The entry stays pending: the outcome is unknown until the
		// transaction is looked up again.
		log.Warn("transaction outcome unknown", zap.Error(err))
		return nil, fmt.Errorf("wait for %s %s: %w", method, tx.Hash().Hex(), err)
	}

	success := receipt.Status == types.ReceiptStatusSuccessful
	s.settle(journalCtx, entry, success, receipt.BlockNumber)

	if !success {
		log.Warn("transaction reverted", zap.Uint64("block", blockUint64(receipt.BlockNumber)))
		return receipt, fmt.Errorf("%w: %s %s", certificate.ErrTransactionReverted, method, tx.Hash().Hex())
	}

	log.Info("transaction confirmed", zap.Uint64("block", blockUint64(receipt.BlockNumber)))
	return receipt, nil
}

// record writes a pending journal entry. Journal failures never fail the call.
func (s *Service) record(ctx context.Context, tx *types.Transaction, method, argument string, from common.Address) *transaction.Transaction {
	entry := transaction.NewTransaction(tx.Hash().Hex(), method, argument, from.Hex(), tx.Data())
	if s.journal == nil {
		return entry
	}
	if err := s.journal.Create(ctx, entry); err != nil {
		s.logger.Error("failed to journal transaction", zap.String("tx_hash", entry.Hash), zap.Error(err))
	}
	return entry
}

func (s *Service) settle(ctx context.Context, entry *transaction.Transaction, success bool, block *big.Int) {
	entry.Confirm(success, int64(blockUint64(block)), time.Now())

	if s.journal != nil {
		if err := s.journal.Update(ctx, entry); err != nil {
			s.logger.Error("failed to update journaled transaction", zap.String("tx_hash", entry.Hash), zap.Error(err))
		}
	}
	if s.publisher != nil {
		s.publisher.Publish(*entry)
	}
}

// StatusBackend is a reader that can also report chain id and head.
type StatusBackend interface {
	bind.ContractBackend
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// Status is a point-in-time snapshot of the chain and the contract.
type Status struct {
	ChainID     *big.Int
	BlockNumber uint64
	Owner       common.Address
}

// Status fetches chain id, latest block and contract owner concurrently.
func (s *Service) Status(ctx context.Context, backend StatusBackend) (*Status, error) {
	var st Status
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		id, err := backend.ChainID(gctx)
		if err != nil {
			return fmt.Errorf("chain id: %w", err)
		}
		st.ChainID = id
		return nil
	})
	g.Go(func() error {
		n, err := backend.BlockNumber(gctx)
		if err != nil {
			return fmt.Errorf("block number: %w", err)
		}
		st.BlockNumber = n
		return nil
	})
	g.Go(func() error {
		owner, err := s.GetOwner(gctx, backend)
		if err != nil {
			return fmt.Errorf("owner: %w", err)
		}
		st.Owner = owner
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &st, nil
}

func blockUint64(n *big.Int) uint64 {
	if n == nil {
		return 0
	}
	return n.Uint64()
}
