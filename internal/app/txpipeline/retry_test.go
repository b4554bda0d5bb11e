package txpipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"prediction_market/internal/domain/entity"
	"prediction_market/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedAction struct {
	errs  []error
	calls int
}

func (s *scriptedAction) run(context.Context) (*types.Receipt, error) {
	s.calls++
	if s.calls <= len(s.errs) && s.errs[s.calls-1] != nil {
		return nil, s.errs[s.calls-1]
	}
	return &types.Receipt{Status: types.ReceiptStatusSuccessful}, nil
}

type recordingSleep struct {
	waits []time.Duration
}

func (r *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return nil
}

var transient = errors.New("circuit breaker is open")

func TestRetryTransientExhaustsBudget(t *testing.T) {
	t.Parallel()

	action := &scriptedAction{errs: []error{transient, transient, transient, transient}}
	sleeper := &recordingSleep{}
	var retries []int

	_, attempts, err := Retry(context.Background(), action.run, Policy{
		MaxRetries: 3,
		Backoff:    2 * time.Second,
		Sleep:      sleeper.sleep,
		OnRetry:    func(n, _ int, _ error) { retries = append(retries, n) },
	})

	require.ErrorIs(t, err, entity.ErrProviderUnavailable)
	assert.Equal(t, 3, action.calls)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, sleeper.waits)
	assert.Equal(t, []int{2, 3}, retries)

	var txErr *entity.TxError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, 3, txErr.Attempts)
	assert.ErrorIs(t, err, transient)
}

func TestRetryRecoversAfterTransient(t *testing.T) {
	t.Parallel()

	action := &scriptedAction{errs: []error{transient}}
	receipt, attempts, err := Retry(context.Background(), action.run, Policy{MaxRetries: 3, Sleep: (&recordingSleep{}).sleep})

	require.NoError(t, err)
	assert.NotNil(t, receipt)
	assert.Equal(t, 2, attempts)
}

func TestRetryStopsOnRejection(t *testing.T) {
	t.Parallel()

	action := &scriptedAction{errs: []error{&codedError{code: utils.CodeUserRejected, msg: "denied"}}}
	sleeper := &recordingSleep{}

	_, attempts, err := Retry(context.Background(), action.run, Policy{MaxRetries: 3, Sleep: sleeper.sleep})
	require.ErrorIs(t, err, entity.ErrUserRejected)
	assert.Equal(t, 1, action.calls)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, sleeper.waits)
}

func TestRetryStopsOnOtherError(t *testing.T) {
	t.Parallel()

	action := &scriptedAction{errs: []error{errors.New("insufficient allowance")}}
	_, _, err := Retry(context.Background(), action.run, Policy{MaxRetries: 3, Sleep: (&recordingSleep{}).sleep})

	require.ErrorIs(t, err, entity.ErrTransactionFailed)
	assert.Equal(t, 1, action.calls)
	assert.Contains(t, err.Error(), "insufficient allowance")
}

func TestRetryDefaultsBudget(t *testing.T) {
	t.Parallel()

	action := &scriptedAction{errs: []error{transient, transient, transient, transient}}
	_, _, err := Retry(context.Background(), action.run, Policy{Sleep: (&recordingSleep{}).sleep})
	require.ErrorIs(t, err, entity.ErrProviderUnavailable)
	assert.Equal(t, DefaultMaxRetries, action.calls)
}

func TestRetryHonoursContextDuringBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	action := &scriptedAction{errs: []error{transient, transient}}

	_, _, err := Retry(ctx, action.run, Policy{MaxRetries: 3, Backoff: time.Hour})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, action.calls)
}
