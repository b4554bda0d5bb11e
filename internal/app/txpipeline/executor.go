package txpipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prediction_market/internal/app/port"
	"prediction_market/internal/domain/entity"
	"prediction_market/internal/pkg/metrics"

	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// Executor confirms and runs state-changing calls.
type Executor struct {
	gate     port.ConfirmationGate
	guard    port.TransactionGuard
	notifier port.Notifier
	backoff  time.Duration
	retries  int
	sleep    func(ctx context.Context, d time.Duration) error
	logger   *zap.Logger
}

var _ port.TxExecutor = (*Executor)(nil)

// NewExecutor creates an Executor. guard may be nil.
func NewExecutor(gate port.ConfirmationGate, guard port.TransactionGuard, notifier port.Notifier, backoff time.Duration, logger *zap.Logger) *Executor {
	return &Executor{
		gate:     gate,
		guard:    guard,
		notifier: notifier,
		backoff:  backoff,
		retries:  DefaultMaxRetries,
		sleep:    sleepCtx,
		logger:   logger.Named("TxExecutor"),
	}
}

// WithMaxRetries sets the attempt budget used when a transaction does not
// carry its own.
func (e *Executor) WithMaxRetries(n int) *Executor {
	if n > 0 {
		e.retries = n
	}
	return e
}

// Execute asks for confirmation once, then runs tx.Action with retries. It
// shows exactly one success or failure toast, and none when the user cancels.
func (e *Executor) Execute(ctx context.Context, tx *entity.PendingTransaction) (*types.Receipt, error) {
	if tx.RetriesAllowed <= 0 {
		tx.RetriesAllowed = e.retries
	}
	tx.State = entity.TxPending

	decision, err := e.gate.Confirm(ctx, tx.ConfirmationPrompt)
	if err != nil {
		tx.State = entity.TxCancelled
		metrics.TxOutcomes.WithLabelValues(tx.State.String()).Inc()
		return nil, &entity.TxError{Kind: entity.ErrUserCancelled, Err: fmt.Errorf("confirmation: %w", err)}
	}
	if decision != entity.DecisionConfirm {
		tx.State = entity.TxCancelled
		metrics.TxOutcomes.WithLabelValues(tx.State.String()).Inc()
		e.logger.Debug("Transaction cancelled", zap.String("prompt", tx.ConfirmationPrompt))
		return nil, &entity.TxError{Kind: entity.ErrUserCancelled}
	}

	if e.guard != nil {
		release := e.guard.BeginTransaction()
		defer release()
	}

	receipt, attempts, err := Retry(ctx, tx.Action, Policy{
		MaxRetries: tx.RetriesAllowed,
		Backoff:    e.backoff,
		Sleep:      e.sleep,
		OnRetry: func(n, total int, cause error) {
			e.logger.Warn("Transaction attempt failed, retrying", zap.Int("next", n), zap.Int("total", total), zap.Error(cause))
			e.notifier.Loading(fmt.Sprintf("Transaction failed, retrying... (%d/%d)", n, total))
		},
	})
	tx.AttemptsMade = attempts

	if err == nil {
		tx.State = entity.TxConfirmed
		metrics.TxOutcomes.WithLabelValues(tx.State.String()).Inc()
		e.notifier.Success(tx.SuccessMessage)
		return receipt, nil
	}

	switch {
	case errors.Is(err, entity.ErrUserRejected):
		tx.State = entity.TxRejected
		e.notifier.Error("Transaction rejected by user")
	case errors.Is(err, entity.ErrProviderUnavailable):
		tx.State = entity.TxFailed
		e.notifier.Error("Wallet connectivity issue. Please try again later or reload the session.")
	default:
		tx.State = entity.TxFailed
		e.notifier.Error("Transaction failed: " + failureMessage(err))
	}
	metrics.TxOutcomes.WithLabelValues(tx.State.String()).Inc()
	e.logger.Error("Transaction failed", zap.Int("attempts", attempts), zap.Error(err))
	return nil, err
}

func failureMessage(err error) string {
	var txErr *entity.TxError
	if errors.As(err, &txErr) && txErr.Err != nil {
		return txErr.Err.Error()
	}
	return err.Error()
}
