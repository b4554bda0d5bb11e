package port

import (
	"context"

	"prediction_market/internal/domain/entity"
)

// Notifier shows toast-style messages to the user.
type Notifier interface {
	Info(msg string)
	Success(msg string)
	Error(msg string)
	Loading(msg string)
}

// ConfirmationGate asks the user to confirm or cancel an action.
type ConfirmationGate interface {
	Confirm(ctx context.Context, prompt string) (entity.Decision, error)
}

// NotificationFeed exposes stored notifications to API clients.
type NotificationFeed interface {
	List() []entity.Notification
	Dismiss(id string)
}

// ConfirmationQueue exposes pending confirmation prompts to API clients.
type ConfirmationQueue interface {
	Pending() []entity.Confirmation
	Resolve(id string, d entity.Decision) error
}
