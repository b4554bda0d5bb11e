package txpipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"prediction_market/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixedGate struct {
	decision entity.Decision
	err      error
	prompts  []string
}

func (g *fixedGate) Confirm(_ context.Context, prompt string) (entity.Decision, error) {
	g.prompts = append(g.prompts, prompt)
	return g.decision, g.err
}

type countingGuard struct {
	mu       sync.Mutex
	begun    int
	released int
}

func (g *countingGuard) BeginTransaction() func() {
	g.mu.Lock()
	g.begun++
	g.mu.Unlock()
	return func() {
		g.mu.Lock()
		g.released++
		g.mu.Unlock()
	}
}

type toastLog struct {
	levels   []entity.NotificationLevel
	messages []string
}

func (l *toastLog) add(level entity.NotificationLevel, msg string) {
	l.levels = append(l.levels, level)
	l.messages = append(l.messages, msg)
}

func (l *toastLog) Info(msg string)    { l.add(entity.NotifyInfo, msg) }
func (l *toastLog) Success(msg string) { l.add(entity.NotifySuccess, msg) }
func (l *toastLog) Error(msg string)   { l.add(entity.NotifyError, msg) }
func (l *toastLog) Loading(msg string) { l.add(entity.NotifyLoading, msg) }

func (l *toastLog) count(level entity.NotificationLevel) int {
	n := 0
	for _, lv := range l.levels {
		if lv == level {
			n++
		}
	}
	return n
}

func newTestExecutor(gate *fixedGate, guard *countingGuard, toasts *toastLog) *Executor {
	e := NewExecutor(gate, guard, toasts, 2*time.Second, zap.NewNop())
	e.sleep = (&recordingSleep{}).sleep
	return e
}

func TestExecuteCancelledNeverRunsAction(t *testing.T) {
	t.Parallel()

	gate := &fixedGate{decision: entity.DecisionCancel}
	guard := &countingGuard{}
	toasts := &toastLog{}
	action := &scriptedAction{}
	tx := &entity.PendingTransaction{ConfirmationPrompt: "Claim?", SuccessMessage: "ok", Action: action.run}

	_, err := newTestExecutor(gate, guard, toasts).Execute(context.Background(), tx)

	require.ErrorIs(t, err, entity.ErrUserCancelled)
	assert.Zero(t, action.calls)
	assert.Empty(t, toasts.messages)
	assert.Zero(t, guard.begun)
	assert.Equal(t, entity.TxCancelled, tx.State)
	assert.Equal(t, []string{"Claim?"}, gate.prompts)
}

func TestExecuteSuccessShowsOneToast(t *testing.T) {
	t.Parallel()

	gate := &fixedGate{decision: entity.DecisionConfirm}
	guard := &countingGuard{}
	toasts := &toastLog{}
	action := &scriptedAction{errs: []error{transient}}
	tx := &entity.PendingTransaction{ConfirmationPrompt: "Buy?", SuccessMessage: "Bet placed successfully!", Action: action.run}

	receipt, err := newTestExecutor(gate, guard, toasts).Execute(context.Background(), tx)

	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, 2, action.calls)
	assert.Equal(t, entity.TxConfirmed, tx.State)
	assert.Equal(t, 2, tx.AttemptsMade)
	assert.Equal(t, 1, toasts.count(entity.NotifySuccess))
	assert.Zero(t, toasts.count(entity.NotifyError))
	assert.Contains(t, toasts.messages, "Transaction failed, retrying... (2/3)")
	assert.Contains(t, toasts.messages, "Bet placed successfully!")
	assert.Equal(t, 1, guard.begun)
	assert.Equal(t, 1, guard.released)
}

func TestExecuteTransientExhausted(t *testing.T) {
	t.Parallel()

	toasts := &toastLog{}
	action := &scriptedAction{errs: []error{transient, transient, transient}}
	tx := &entity.PendingTransaction{ConfirmationPrompt: "Buy?", Action: action.run, RetriesAllowed: 3}

	_, err := newTestExecutor(&fixedGate{decision: entity.DecisionConfirm}, &countingGuard{}, toasts).Execute(context.Background(), tx)

	require.ErrorIs(t, err, entity.ErrProviderUnavailable)
	assert.Equal(t, 3, action.calls)
	assert.Equal(t, entity.TxFailed, tx.State)
	assert.Equal(t, 1, toasts.count(entity.NotifyError))
	assert.Zero(t, toasts.count(entity.NotifySuccess))
	assert.Equal(t, 2, toasts.count(entity.NotifyLoading))
}

func TestExecuteRejectedAfterOneAttempt(t *testing.T) {
	t.Parallel()

	toasts := &toastLog{}
	action := &scriptedAction{errs: []error{&codedError{code: 4001, msg: "User denied transaction signature."}}}
	tx := &entity.PendingTransaction{ConfirmationPrompt: "Buy?", Action: action.run}

	_, err := newTestExecutor(&fixedGate{decision: entity.DecisionConfirm}, &countingGuard{}, toasts).Execute(context.Background(), tx)

	require.ErrorIs(t, err, entity.ErrUserRejected)
	assert.Equal(t, 1, action.calls)
	assert.Equal(t, entity.TxRejected, tx.State)
	assert.Equal(t, []string{"Transaction rejected by user"}, toasts.messages)
}

func TestExecuteOtherFailureCarriesMessage(t *testing.T) {
	t.Parallel()

	toasts := &toastLog{}
	action := &scriptedAction{errs: []error{errors.New("Market has not ended yet")}}
	tx := &entity.PendingTransaction{ConfirmationPrompt: "Resolve?", Action: action.run}

	_, err := newTestExecutor(&fixedGate{decision: entity.DecisionConfirm}, &countingGuard{}, toasts).Execute(context.Background(), tx)

	require.ErrorIs(t, err, entity.ErrTransactionFailed)
	assert.Equal(t, []string{"Transaction failed: Market has not ended yet"}, toasts.messages)
}

func TestExecuteGateErrorIsCancellation(t *testing.T) {
	t.Parallel()

	action := &scriptedAction{}
	tx := &entity.PendingTransaction{ConfirmationPrompt: "Buy?", Action: action.run}

	_, err := newTestExecutor(&fixedGate{err: context.DeadlineExceeded}, &countingGuard{}, &toastLog{}).Execute(context.Background(), tx)
	require.ErrorIs(t, err, entity.ErrUserCancelled)
	assert.Zero(t, action.calls)
}
