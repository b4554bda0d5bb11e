package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"prediction_market/internal/app/port"
	"prediction_market/internal/domain/entity"
	"prediction_market/internal/pkg/metrics"
	"prediction_market/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Options tunes the Manager.
type Options struct {
	// ReloadDelay is the wait between a chain change and the session reload.
	ReloadDelay time.Duration
	// ResubscribeDelay is the first wait after a failed wallet subscription.
	ResubscribeDelay time.Duration
}

// state is the mutable session. connected is true exactly when account is
// set; market and token are set exactly when connected and networkMatches.
type state struct {
	account        common.Address
	connected      bool
	chainID        uint64
	networkMatches bool
	isOwner        bool
	market         port.MarketContract
	token          port.TokenContract
}

// Manager owns the wallet session. Operations are serialized; snapshots may
// be taken at any time.
type Manager struct {
	wallet   port.WalletProvider
	guard    *NetworkGuard
	factory  port.ContractFactory
	notifier port.Notifier
	logger   *zap.Logger
	opts     Options

	opMu sync.Mutex
	txMu sync.RWMutex

	mu    sync.RWMutex
	state state
}

var (
	_ port.SessionController = (*Manager)(nil)
	_ port.TransactionGuard  = (*Manager)(nil)
)

// NewManager creates a Manager. wallet may be nil when no wallet endpoint is
// available; every wallet operation then fails with entity.ErrWalletUnavailable.
func NewManager(wallet port.WalletProvider, guard *NetworkGuard, factory port.ContractFactory, notifier port.Notifier, logger *zap.Logger, opts Options) *Manager {
	if opts.ReloadDelay <= 0 {
		opts.ReloadDelay = time.Second
	}
	if opts.ResubscribeDelay <= 0 {
		opts.ResubscribeDelay = time.Second
	}
	return &Manager{
		wallet:   wallet,
		guard:    guard,
		factory:  factory,
		notifier: notifier,
		logger:   logger.Named("Session"),
		opts:     opts,
	}
}

// Snapshot returns a copy of the current session.
func (m *Manager) Snapshot() entity.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := entity.Session{
		Connected:      m.state.connected,
		NetworkMatches: m.state.networkMatches,
		IsOwner:        m.state.isOwner,
		HasContract:    m.state.market != nil,
		ChainID:        m.state.chainID,
	}
	if m.state.connected {
		s.Account = m.state.account.Hex()
	}
	return s
}

// Account returns the connected account.
func (m *Manager) Account() (common.Address, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.account, m.state.connected
}

// Contract returns the market contract bound to the connected account.
func (m *Manager) Contract() (port.MarketContract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.usableLocked(); err != nil {
		return nil, err
	}
	return m.state.market, nil
}

// Token returns the stablecoin bound to the connected account.
func (m *Manager) Token() (port.TokenContract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.usableLocked(); err != nil {
		return nil, err
	}
	if m.state.token == nil {
		return nil, fmt.Errorf("token contract is not configured")
	}
	return m.state.token, nil
}

func (m *Manager) usableLocked() error {
	switch {
	case !m.state.connected:
		return entity.ErrWalletNotConnected
	case !m.state.networkMatches:
		return fmt.Errorf("%w: switch to %s", entity.ErrNetworkMismatch, m.guard.Required().Name)
	}
	return nil
}

// BeginTransaction marks a transaction as in flight. Wallet events are held
// back until the returned release func is called.
func (m *Manager) BeginTransaction() func() {
	m.txMu.RLock()
	return sync.OnceFunc(m.txMu.RUnlock)
}

// CheckExistingConnection restores a session for an account the wallet has
// already authorized. It never prompts the user.
func (m *Manager) CheckExistingConnection(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	return m.checkExistingConnection(ctx)
}

func (m *Manager) checkExistingConnection(ctx context.Context) error {
	if m.wallet == nil {
		return entity.ErrWalletUnavailable
	}
	accounts, err := m.wallet.Accounts(ctx)
	if err != nil {
		m.logger.Error("Error checking connection", zap.Error(err))
		return fmt.Errorf("check existing connection: %w", err)
	}
	if len(accounts) == 0 {
		return nil
	}
	return m.establish(ctx, accounts[0])
}

// Connect prompts the wallet for account access and establishes the session.
func (m *Manager) Connect(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if m.wallet == nil {
		m.notifier.Error("Please install a wallet")
		return entity.ErrWalletUnavailable
	}

	accounts, err := m.wallet.RequestAccounts(ctx)
	if err != nil {
		if code, ok := utils.RPCErrorCode(err); ok && code == utils.CodeUserRejected {
			m.notifier.Error("Connection request rejected")
			return fmt.Errorf("%w: %w", entity.ErrUserRejected, err)
		}
		m.logger.Error("Error connecting wallet", zap.Error(err))
		if errors.Is(err, entity.ErrWalletUnavailable) {
			m.notifier.Error("Please install a wallet")
			return err
		}
		m.notifier.Error("Failed to connect wallet")
		return fmt.Errorf("connect wallet: %w", err)
	}
	if len(accounts) == 0 {
		m.notifier.Error("Failed to connect wallet")
		return fmt.Errorf("connect wallet: no accounts authorized")
	}

	if err := m.establish(ctx, accounts[0]); err != nil {
		m.notifier.Error("Failed to connect wallet")
		return err
	}
	return nil
}

// Disconnect forgets the session. The wallet is not contacted.
func (m *Manager) Disconnect() {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	m.reset()
}

func (m *Manager) reset() {
	m.mu.Lock()
	m.state = state{}
	m.mu.Unlock()
}

// VerifyNetwork re-reads the wallet chain and applies the result.
func (m *Manager) VerifyNetwork(ctx context.Context) bool {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	if err := m.applyNetwork(ctx); err != nil {
		m.logger.Error("Failed to bind contracts", zap.Error(err))
	}
	m.recomputeOwnership(ctx)
	return m.Snapshot().NetworkMatches
}

// SwitchNetwork moves the wallet to the required network and re-verifies.
func (m *Manager) SwitchNetwork(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if err := m.guard.Switch(ctx); err != nil {
		return err
	}
	if err := m.applyNetwork(ctx); err != nil {
		return err
	}
	m.recomputeOwnership(ctx)
	return nil
}

// CheckOwnership recomputes whether the connected account owns the contract.
func (m *Manager) CheckOwnership(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	m.recomputeOwnership(ctx)
}

// Reload throws the session away and rebuilds it from the wallet.
func (m *Manager) Reload(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	return m.reload(ctx)
}

func (m *Manager) reload(ctx context.Context) error {
	metrics.SessionReloads.Inc()
	m.reset()
	if err := m.checkExistingConnection(ctx); err != nil && !errors.Is(err, entity.ErrWalletUnavailable) {
		return err
	}
	return nil
}

// establish replaces the session with one for account. The caller holds opMu.
func (m *Manager) establish(ctx context.Context, account common.Address) error {
	m.mu.Lock()
	m.state = state{account: account, connected: true}
	m.mu.Unlock()

	m.logger.Info("Session established", zap.String("account", account.Hex()))

	err := m.applyNetwork(ctx)
	m.recomputeOwnership(ctx)
	return err
}

// applyNetwork verifies the chain and binds or drops the contract handles to
// match. The caller holds opMu.
func (m *Manager) applyNetwork(ctx context.Context) error {
	matches, chainID := m.guard.Verify(ctx)
	account, connected := m.Account()

	var (
		market port.MarketContract
		token  port.TokenContract
		err    error
	)
	if connected && matches {
		market, err = m.factory.Market(account)
		if err != nil {
			// a matching chain without a bound contract is not usable
			matches = false
			err = fmt.Errorf("bind market contract: %w", err)
		} else if t, tokenErr := m.factory.Token(account); tokenErr == nil {
			token = t
		} else {
			m.logger.Debug("Token contract unavailable", zap.Error(tokenErr))
		}
	}

	m.mu.Lock()
	m.state.chainID = chainID
	m.state.networkMatches = matches
	m.state.market = market
	m.state.token = token
	if market == nil {
		// a session without a contract handle cannot be owner
		m.state.isOwner = false
	}
	m.mu.Unlock()

	if !matches && err == nil {
		m.logger.Info("Wallet is on the wrong network",
			zap.Uint64("chainId", chainID), zap.Uint64("required", m.guard.Required().ChainID))
	}
	return err
}

// recomputeOwnership reads owner() when there is a connected account and a
// contract handle. The caller holds opMu.
func (m *Manager) recomputeOwnership(ctx context.Context) {
	m.mu.RLock()
	account, connected, market := m.state.account, m.state.connected, m.state.market
	m.mu.RUnlock()

	isOwner := false
	if connected && market != nil {
		owner, err := market.Owner(ctx)
		if err != nil {
			m.logger.Warn("Error checking ownership", zap.Error(err))
		} else {
			isOwner = strings.EqualFold(owner.Hex(), account.Hex())
		}
	}

	m.mu.Lock()
	m.state.isOwner = isOwner
	m.mu.Unlock()
}
