package port

import (
	"context"

	"prediction_market/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
)

// WalletProvider is the EIP-1193 style gateway exposed by the user's wallet.
// Errors carry the wallet's JSON-RPC error code where the wallet reported one.
type WalletProvider interface {
	// Accounts returns already-authorized accounts without prompting.
	Accounts(ctx context.Context) ([]common.Address, error)
	// RequestAccounts prompts the user to authorize accounts.
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	// ChainID returns the chain id the wallet is currently on.
	ChainID(ctx context.Context) (uint64, error)
	// SwitchChain asks the wallet to change to chainID.
	SwitchChain(ctx context.Context, chainID uint64) error
	// AddChain registers def with the wallet; wallets switch to it on success.
	AddChain(ctx context.Context, def entity.NetworkDefinition) error
	// Subscribe streams account and chain changes until ctx is done.
	Subscribe(ctx context.Context) (<-chan entity.WalletEvent, error)
}
