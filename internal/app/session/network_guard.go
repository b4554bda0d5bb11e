package session

import (
	"context"
	"errors"
	"fmt"

	"prediction_market/internal/app/port"
	"prediction_market/internal/domain/entity"
	"prediction_market/internal/pkg/utils"

	"go.uber.org/zap"
)

// NetworkGuard checks and changes the chain the wallet is on.
type NetworkGuard struct {
	wallet   port.WalletProvider
	required entity.NetworkDefinition
	notifier port.Notifier
	logger   *zap.Logger
}

// NewNetworkGuard creates a guard for the required network.
func NewNetworkGuard(wallet port.WalletProvider, required entity.NetworkDefinition, notifier port.Notifier, logger *zap.Logger) *NetworkGuard {
	return &NetworkGuard{
		wallet:   wallet,
		required: required,
		notifier: notifier,
		logger:   logger.Named("NetworkGuard"),
	}
}

// Required returns the network the session must be on.
func (g *NetworkGuard) Required() entity.NetworkDefinition {
	return g.required
}

// Verify reports whether the wallet is on the required chain, along with the
// chain id it reported. Read failures count as a mismatch.
func (g *NetworkGuard) Verify(ctx context.Context) (bool, uint64) {
	if g.wallet == nil {
		return false, 0
	}
	id, err := g.wallet.ChainID(ctx)
	if err != nil {
		g.logger.Warn("Error checking network", zap.Error(err))
		return false, 0
	}
	return id == g.required.ChainID, id
}

// Switch asks the wallet to move to the required chain, registering it first
// when the wallet does not know it yet.
func (g *NetworkGuard) Switch(ctx context.Context) error {
	if g.wallet == nil {
		g.notifier.Error("Wallet not detected")
		return entity.ErrWalletUnavailable
	}

	err := g.wallet.SwitchChain(ctx, g.required.ChainID)
	if err == nil {
		g.notifier.Success("Network switched successfully")
		return nil
	}

	code, _ := utils.RPCErrorCode(err)
	switch {
	case code == utils.CodeChainUnsupported:
		g.logger.Info("Wallet does not know the network, adding it", zap.Uint64("chainId", g.required.ChainID))
		if addErr := g.wallet.AddChain(ctx, g.required); addErr != nil {
			g.logger.Error("Error adding network", zap.Error(addErr))
			g.notifier.Error("Failed to add network")
			if c, ok := utils.RPCErrorCode(addErr); ok && c == utils.CodeUserRejected {
				return fmt.Errorf("%w: add network: %w", entity.ErrUserRejected, addErr)
			}
			return fmt.Errorf("add network %s: %w", g.required.Name, addErr)
		}
		g.notifier.Success("Network added and switched successfully")
		return nil
	case code == utils.CodeUserRejected:
		g.notifier.Error("User rejected network switch")
		return fmt.Errorf("%w: %w", entity.ErrUserRejected, err)
	case errors.Is(err, entity.ErrWalletUnavailable):
		g.notifier.Error("Failed to switch network")
		return err
	default:
		g.logger.Error("Error switching network", zap.Error(err))
		g.notifier.Error("Failed to switch network")
		return fmt.Errorf("switch network: %w", err)
	}
}
