package network

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"ecert/internal/adapters/logger"
	"ecert/internal/domain/network"
)

// Service keeps a wallet provider on the target chain.
type Service struct {
	descriptor network.Descriptor
	logger     *logger.Logger
}

// NewService creates a handshake service for the given target chain.
func NewService(descriptor network.Descriptor, log *logger.Logger) (*Service, error) {
	if err := descriptor.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Service{
		descriptor: descriptor,
		logger:     log.Named("network"),
	}, nil
}

// Descriptor returns the target chain descriptor.
func (s *Service) Descriptor() network.Descriptor {
	return s.descriptor
}

// ChainID queries the provider's active chain id.
func (s *Service) ChainID(ctx context.Context, provider network.Provider) (*hexutil.Big, error) {
	var chainID hexutil.Big
	if err := provider.CallContext(ctx, &chainID, network.MethodChainID); err != nil {
		return nil, network.Classify(network.MethodChainID, err)
	}
	return &chainID, nil
}

// EnsureNetwork makes the provider's active chain equal the target chain.
//
// A provider already on the target chain receives no further requests. When
// the switch fails because the wallet does not know the chain, the chain is
// registered and the switch retried exactly once. Every other failure is
// returned as a *network.ChainError wrapping the provider error.
func (s *Service) EnsureNetwork(ctx context.Context, provider network.Provider) error {
	current, err := s.ChainID(ctx, provider)
	if err != nil {
		return err
	}

	target := s.descriptor.ID()
	if current.ToInt().Cmp(target) == 0 {
		return nil
	}

	s.logger.Info("switching chain",
		zap.String("from", current.String()),
		zap.String("to", s.descriptor.ChainID.String()),
	)

	err = s.switchChain(ctx, provider)
	if err == nil {
		return nil
	}
	if !network.IsChainUnrecognized(err) {
		return err
	}

	s.logger.Warn("chain not registered in wallet, adding it",
		zap.String("chain_id", s.descriptor.ChainID.String()),
		zap.String("chain_name", s.descriptor.ChainName),
	)

	if err := provider.CallContext(ctx, nil, network.MethodAddChain, s.descriptor); err != nil {
		return network.Classify(network.MethodAddChain, err)
	}

	return s.switchChain(ctx, provider)
}

// VerifyChain checks that the provider is on the target chain without
// trying to switch it.
func (s *Service) VerifyChain(ctx context.Context, provider network.Provider) error {
	current, err := s.ChainID(ctx, provider)
	if err != nil {
		return err
	}
	if current.ToInt().Cmp(s.descriptor.ID()) != 0 {
		return fmt.Errorf("%w: active %s, target %s", network.ErrChainMismatch, current, s.descriptor.ChainID)
	}
	return nil
}

func (s *Service) switchChain(ctx context.Context, provider network.Provider) error {
	err := provider.CallContext(ctx, nil, network.MethodSwitchChain, s.descriptor.Switch())
	return network.Classify(network.MethodSwitchChain, err)
}
