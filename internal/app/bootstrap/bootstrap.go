// Package bootstrap wires the wallet session, contracts and services shared by
// the daemon and the CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prediction_market/internal/app/port"
	"prediction_market/internal/app/service"
	"prediction_market/internal/app/session"
	"prediction_market/internal/app/txpipeline"
	"prediction_market/internal/config"
	"prediction_market/internal/domain/entity"
	networkclient "prediction_market/internal/infrastructure/network/client"
	networkdefinition "prediction_market/internal/infrastructure/network/definition"
	"prediction_market/internal/infrastructure/wallet"
	"prediction_market/internal/pkg/logger"

	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// App is the wired application core.
type App struct {
	Network  *networkdefinition.Provider
	Session  *session.Manager
	Executor *txpipeline.Executor
	Markets  *service.MarketServiceImpl

	wallet *wallet.RPCWallet
}

// Build connects to the configured wallet endpoint and wires the session,
// pipeline and market service. A missing wallet endpoint is not an error: the
// session then reports entity.ErrWalletUnavailable on connect.
func Build(ctx context.Context, cfg *config.Config, gate port.ConfirmationGate, notifier port.Notifier, zapLogger *zap.Logger) (*App, error) {
	network, err := networkdefinition.NewProvider(logger.NewSlogAdapter(), cfg.NetworkID, cfg.Network)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve network: %w", err)
	}

	requestTimeout := time.Duration(cfg.Wallet.RequestTimeoutMs) * time.Millisecond
	w, err := wallet.Dial(ctx, cfg.Wallet.RPCURL, wallet.Options{
		RequestTimeout:    requestTimeout,
		PollInterval:      time.Duration(cfg.Wallet.PollIntervalMs) * time.Millisecond,
		RequestsPerSecond: cfg.Wallet.RequestsPerSecond,
		Burst:             cfg.Wallet.Burst,
	}, zapLogger)
	if err != nil && !errors.Is(err, entity.ErrWalletUnavailable) {
		return nil, fmt.Errorf("failed to connect to wallet: %w", err)
	}

	var (
		provider  port.WalletProvider
		rpcClient *rpc.Client
	)
	if w != nil {
		provider = w
		rpcClient = w.Client()
	} else {
		zapLogger.Warn("No wallet endpoint available, wallet features are disabled", zap.Error(err))
	}

	evm := networkclient.NewEVMClient(rpcClient, requestTimeout, cfg.Tx.ReceiptPollInterval(), cfg.Tx.ReceiptTimeout(), zapLogger)
	variant := networkclient.MintToAmount
	if cfg.Contracts.MintVariant == config.MintVariantAmount {
		variant = networkclient.MintAmount
	}
	factory, err := networkclient.NewContractProvider(evm, cfg.Contracts.Market, cfg.Contracts.Token, variant, zapLogger)
	if err != nil {
		if w != nil {
			w.Close()
		}
		return nil, fmt.Errorf("failed to create contract provider: %w", err)
	}

	guard := session.NewNetworkGuard(provider, network.Required(), notifier, zapLogger)
	manager := session.NewManager(provider, guard, factory, notifier, zapLogger, session.Options{
		ReloadDelay: cfg.Tx.ReloadDelay(),
	})
	executor := txpipeline.NewExecutor(gate, manager, notifier, cfg.Tx.RetryBackoff(), zapLogger).
		WithMaxRetries(cfg.Tx.MaxRetries)

	markets, err := service.NewMarketService(manager, executor, logger.NewSlogAdapter(), service.MarketServiceConfig{
		TokenDecimals:      cfg.Contracts.TokenDecimals,
		ApproveAmount:      cfg.Contracts.ApproveAmount,
		MintAmount:         cfg.Contracts.MintAmount,
		MaxConcurrentReads: cfg.Tx.MaxConcurrentReads,
	})
	if err != nil {
		if w != nil {
			w.Close()
		}
		return nil, fmt.Errorf("failed to create market service: %w", err)
	}

	return &App{
		Network:  network,
		Session:  manager,
		Executor: executor,
		Markets:  markets,
		wallet:   w,
	}, nil
}

// Close releases the wallet connection.
func (a *App) Close() {
	if a.wallet != nil {
		a.wallet.Close()
	}
}
