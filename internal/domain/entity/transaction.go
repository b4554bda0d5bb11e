package entity

import (
	"context"

	"github.com/ethereum/go-ethereum/core/types"
)

// TxAction submits a transaction and waits for its inclusion.
type TxAction func(ctx context.Context) (*types.Receipt, error)

// TxState is the lifecycle state of a PendingTransaction.
type TxState int

const (
	TxPending TxState = iota
	TxConfirmed
	TxCancelled
	TxRejected
	TxFailed
)

func (s TxState) String() string {
	switch s {
	case TxPending:
		return "pending"
	case TxConfirmed:
		return "confirmed"
	case TxCancelled:
		return "cancelled"
	case TxRejected:
		return "rejected"
	case TxFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PendingTransaction is a state-changing call waiting for confirmation and
// execution. It belongs to the caller that created it.
type PendingTransaction struct {
	ConfirmationPrompt string
	SuccessMessage     string
	RetriesAllowed     int
	AttemptsMade       int
	State              TxState
	Action             TxAction
}

// Decision is the answer to an application confirmation prompt.
type Decision int

const (
	DecisionCancel Decision = iota
	DecisionConfirm
)

func (d Decision) String() string {
	if d == DecisionConfirm {
		return "confirm"
	}
	return "cancel"
}
