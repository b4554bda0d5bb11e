package port

import (
	"context"

	"prediction_market/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// SessionReader gives services read access to the current session.
type SessionReader interface {
	Snapshot() entity.Session
	Account() (common.Address, bool)
	Contract() (MarketContract, error)
	Token() (TokenContract, error)
}

// SessionController is the part of the session manager driven by user actions.
type SessionController interface {
	SessionReader
	Connect(ctx context.Context) error
	Disconnect()
	SwitchNetwork(ctx context.Context) error
	CheckOwnership(ctx context.Context)
}

// TransactionGuard is held for the duration of a confirmed transaction so that
// wallet events are not applied in the middle of it.
type TransactionGuard interface {
	BeginTransaction() (release func())
}

// TxExecutor gates and runs state-changing calls.
type TxExecutor interface {
	Execute(ctx context.Context, tx *entity.PendingTransaction) (*types.Receipt, error)
}
