package session

import (
	"context"
	"time"

	"prediction_market/internal/domain/entity"
	"prediction_market/internal/pkg/metrics"
	"prediction_market/internal/pkg/utils"

	"go.uber.org/zap"
)

// maxResubscribeDelay caps the wait between wallet subscription attempts.
const maxResubscribeDelay = 30 * time.Second

// HasWallet reports whether a wallet endpoint is configured.
func (m *Manager) HasWallet() bool {
	return m.wallet != nil
}

// Run consumes wallet events until ctx is done. Events are applied one at a
// time, each after any in-flight transaction has released its guard. A failed
// or closed subscription is retried with backoff.
func (m *Manager) Run(ctx context.Context) error {
	if m.wallet == nil {
		return entity.ErrWalletUnavailable
	}

	var (
		reloadTimer *time.Timer
		reloadC     <-chan time.Time
	)
	defer func() {
		if reloadTimer != nil {
			reloadTimer.Stop()
		}
	}()

	for {
		events, err := m.subscribe(ctx)
		if err != nil {
			return err
		}

	consume:
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()

			case <-reloadC:
				reloadC = nil
				m.withEventLock(func() {
					if err := m.Reload(ctx); err != nil {
						m.logger.Error("Session reload failed", zap.Error(err))
					}
				})

			case ev, ok := <-events:
				if !ok {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					m.logger.Warn("Wallet event stream closed, resubscribing")
					break consume
				}
				metrics.SessionEvents.WithLabelValues(ev.Kind.String()).Inc()

				if ev.Kind == entity.ChainChanged {
					m.notifier.Info("Network changed, reloading session...")
					if reloadTimer == nil {
						reloadTimer = time.NewTimer(m.opts.ReloadDelay)
					} else {
						reloadTimer.Reset(m.opts.ReloadDelay)
					}
					reloadC = reloadTimer.C
					continue
				}
				m.withEventLock(func() { m.HandleEvent(ctx, ev) })
			}
		}
	}
}

// subscribe opens the wallet event stream, doubling the wait after each
// failure up to maxResubscribeDelay. It gives up only when ctx is done.
func (m *Manager) subscribe(ctx context.Context) (<-chan entity.WalletEvent, error) {
	delay := m.opts.ResubscribeDelay
	for attempt := 1; ; attempt++ {
		events, err := m.wallet.Subscribe(ctx)
		if err == nil {
			if attempt > 1 {
				m.logger.Info("Subscribed to wallet events", zap.Int("attempt", attempt))
			}
			return events, nil
		}
		m.logger.Warn("Subscribe to wallet events failed",
			zap.Int("attempt", attempt), zap.Duration("retryIn", delay), zap.Error(err))

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
		delay = min(delay*2, maxResubscribeDelay)
	}
}

func (m *Manager) withEventLock(fn func()) {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	fn()
}

// HandleEvent applies a single wallet event to the session. Chain changes
// reload the session immediately; Run delays them instead.
func (m *Manager) HandleEvent(ctx context.Context, ev entity.WalletEvent) {
	switch ev.Kind {
	case entity.AccountsChanged:
		m.handleAccountsChanged(ctx, ev)
	case entity.ChainChanged:
		if err := m.Reload(ctx); err != nil {
			m.logger.Error("Session reload failed", zap.Error(err))
		}
	}
}

func (m *Manager) handleAccountsChanged(ctx context.Context, ev entity.WalletEvent) {
	if len(ev.Accounts) == 0 {
		m.Disconnect()
		m.notifier.Info("Wallet disconnected")
		return
	}

	next := ev.Accounts[0]
	if current, connected := m.Account(); connected && current == next {
		return
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	if err := m.establish(ctx, next); err != nil {
		m.logger.Error("Failed to switch account, reloading", zap.Error(err))
		if err := m.reload(ctx); err != nil {
			m.logger.Error("Session reload failed", zap.Error(err))
		}
		return
	}
	m.notifier.Success("Switched to account: " + utils.ShortAddress(next))
}
