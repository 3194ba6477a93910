// Package app wires configuration, wallet, contract and journal together for
// the command line entry points.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"ecert/config"
	contractadapter "ecert/internal/adapters/contract"
	"ecert/internal/adapters/logger"
	transactionrepo "ecert/internal/adapters/transaction"
	"ecert/internal/adapters/wallet"
	certificateservice "ecert/internal/application/certificate"
	networkservice "ecert/internal/application/network"
	"ecert/internal/application/ratelimiter"
	transactionservice "ecert/internal/application/transaction"
	"ecert/internal/domain/certificate"
	httpports "ecert/internal/ports/http"
)

// App holds the services of a connected process.
type App struct {
	Config       *config.Config
	Logger       *logger.Logger
	Network      *networkservice.Service
	Certificates *certificateservice.Service
	Transactions *transactionservice.Service
	Session      *wallet.Session
	Signer       *certificate.Signer
	Contract     common.Address

	journal *transactionrepo.SQLiteRepository
}

// New connects to the wallet, runs the network handshake and opens the
// journal. The wallet handshake is bounded by cfg.Wallet.RequestTimeout.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	networkSvc, err := networkservice.NewService(cfg.Network, log)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:   cfg,
		Logger:   log,
		Network:  networkSvc,
		Contract: common.HexToAddress(cfg.Contract.Address),
	}

	if err := a.openJournal(ctx); err != nil {
		return nil, err
	}

	handshakeCtx, cancel := context.WithTimeout(ctx, cfg.Wallet.RequestTimeout)
	defer cancel()
	session, err := wallet.Acquire(handshakeCtx, cfg.Wallet.URL, networkSvc)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("connect wallet: %w", err)
	}
	a.Session = session
	log.Info("Wallet connected",
		zap.String("url", cfg.Wallet.URL),
		zap.Int("accounts", len(session.Accounts)),
		zap.String("chain_id", session.ChainID.String()),
	)

	if cfg.Wallet.PrivateKey != "" {
		signer, err := session.Signer(cfg.Wallet.PrivateKey)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("load signer: %w", err)
		}
		a.Signer = signer
		log.Info("Signer loaded", zap.String("address", signer.Opts.From.Hex()))
	} else {
		log.Warn("WALLET_PRIVATE_KEY not set, state-changing calls are disabled")
	}

	a.Certificates = certificateservice.NewService(contractadapter.Factory(a.Contract), nil, log)
	a.Certificates.SetJournal(a.journal)
	a.Certificates.SetRateLimiter(ratelimiter.NewRateLimiter(cfg.RateLimit.MaxCalls, cfg.RateLimit.Window, log))
	a.Transactions = transactionservice.NewService(a.journal)

	return a, nil
}

// openJournal ensures the database directory exists and opens the journal.
func (a *App) openJournal(ctx context.Context) error {
	path := a.Config.Database.Path
	if path != ":memory:" {
		dataDir := filepath.Dir(path)
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	repo, err := transactionrepo.NewSQLiteRepository(ctx, path)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	a.journal = repo
	a.Logger.Debug("Journal ready", zap.String("path", path))
	return nil
}

// Chain returns the wallet view used by the HTTP handlers.
func (a *App) Chain() httpports.Chain {
	return httpports.Chain{
		Provider: a.Session.RPC,
		Reader:   a.Session.Client,
		Signer:   a.Signer,
	}
}

// Close releases the wallet connection and the journal.
func (a *App) Close() {
	a.Session.Close()
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.Logger.Error("Failed to close database", zap.Error(err))
		}
	}
}
