package confirmation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"prediction_market/internal/app/port"
	"prediction_market/internal/domain/entity"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type pending struct {
	entity.Confirmation
	answer chan entity.Decision
}

// Registry holds confirmation prompts until an API client answers them.
// Unanswered prompts are cancelled after the timeout.
type Registry struct {
	mu      sync.Mutex
	pending map[string]*pending
	timeout time.Duration
	logger  *zap.Logger
}

var _ port.ConfirmationGate = (*Registry)(nil)

// NewRegistry creates a Registry. A zero timeout waits until the caller's
// context is done.
func NewRegistry(timeout time.Duration, logger *zap.Logger) *Registry {
	return &Registry{
		pending: make(map[string]*pending),
		timeout: timeout,
		logger:  logger.Named("Confirmations"),
	}
}

// Confirm publishes prompt and blocks until it is answered.
func (r *Registry) Confirm(ctx context.Context, prompt string) (entity.Decision, error) {
	p := &pending{
		Confirmation: entity.Confirmation{
			ID:        uuid.NewString(),
			Prompt:    prompt,
			CreatedAt: time.Now().UTC(),
		},
		answer: make(chan entity.Decision, 1),
	}

	r.mu.Lock()
	r.pending[p.ID] = p
	r.mu.Unlock()
	defer r.remove(p.ID)

	r.logger.Info("Waiting for confirmation", zap.String("id", p.ID), zap.String("prompt", prompt))

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	select {
	case d := <-p.answer:
		return d, nil
	case <-ctx.Done():
		return entity.DecisionCancel, fmt.Errorf("confirmation %s not answered: %w", p.ID, ctx.Err())
	}
}

// Pending lists unanswered prompts, oldest first.
func (r *Registry) Pending() []entity.Confirmation {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]entity.Confirmation, 0, len(r.pending))
	for _, p := range r.pending {
		out = append(out, p.Confirmation)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Resolve answers the prompt with id.
func (r *Registry) Resolve(id string, d entity.Decision) error {
	r.mu.Lock()
	p, ok := r.pending[id]
	if ok {
		delete(r.pending, id)
	}
	r.mu.Unlock()

	if !ok {
		return entity.ErrConfirmationNotFound
	}
	p.answer <- d
	r.logger.Info("Confirmation answered", zap.String("id", id), zap.Stringer("decision", d))
	return nil
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	delete(r.pending, id)
	r.mu.Unlock()
}
