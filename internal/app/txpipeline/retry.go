package txpipeline

import (
	"context"
	"time"

	"prediction_market/internal/domain/entity"
	"prediction_market/internal/pkg/metrics"

	"github.com/ethereum/go-ethereum/core/types"
)

// DefaultMaxRetries is the attempt budget when none is given.
const DefaultMaxRetries = 3

// Policy controls Retry.
type Policy struct {
	MaxRetries int
	Backoff    time.Duration
	// Sleep waits between attempts; nil uses a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnRetry is called before attempt n of total, n starting at 2.
	OnRetry func(n, total int, cause error)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Retry runs action up to p.MaxRetries times. Only transient failures are
// retried. The returned error is a *entity.TxError whose Kind is
// ErrUserRejected, ErrProviderUnavailable or ErrTransactionFailed.
func Retry(ctx context.Context, action entity.TxAction, p Policy) (*types.Receipt, int, error) {
	if p.MaxRetries <= 0 {
		p.MaxRetries = DefaultMaxRetries
	}
	if p.Sleep == nil {
		p.Sleep = sleepCtx
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxRetries; attempt++ {
		metrics.TxAttempts.Inc()

		receipt, err := action(ctx)
		if err == nil {
			return receipt, attempt, nil
		}
		lastErr = err

		switch Classify(err) {
		case ClassUserRejected:
			return nil, attempt, &entity.TxError{Kind: entity.ErrUserRejected, Attempts: attempt, Err: err}
		case ClassOther:
			return nil, attempt, &entity.TxError{Kind: entity.ErrTransactionFailed, Attempts: attempt, Err: err}
		}

		if attempt == p.MaxRetries {
			break
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, p.MaxRetries, err)
		}
		if err := p.Sleep(ctx, p.Backoff); err != nil {
			return nil, attempt, &entity.TxError{Kind: entity.ErrTransactionFailed, Attempts: attempt, Err: err}
		}
	}
	return nil, p.MaxRetries, &entity.TxError{Kind: entity.ErrProviderUnavailable, Attempts: p.MaxRetries, Err: lastErr}
}
