package port

import (
	"context"
	"math/big"

	"prediction_market/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// MarketContract is the prediction market contract bound to one signing account.
type MarketContract interface {
	Address() common.Address
	Owner(ctx context.Context) (common.Address, error)
	MarketCount(ctx context.Context) (uint64, error)
	GetMarketInfo(ctx context.Context, id uint64) (entity.Market, error)
	GetSharesBalance(ctx context.Context, id uint64, holder common.Address) (entity.SharesBalance, error)
	GetUserShares(ctx context.Context, id uint64, holder common.Address, outcome entity.Outcome) (*big.Int, error)

	BuyShares(ctx context.Context, id uint64, outcome entity.Outcome, amount *big.Int) (*types.Receipt, error)
	ResolveMarket(ctx context.Context, id uint64) (*types.Receipt, error)
	ClaimWinning(ctx context.Context, id uint64) (*types.Receipt, error)
	CreateMarket(ctx context.Context, req entity.CreateMarketRequest) (*types.Receipt, error)
}

// TokenContract is the stablecoin used to buy shares, bound to one signing account.
type TokenContract interface {
	Address() common.Address
	BalanceOf(ctx context.Context, holder common.Address) (*big.Int, error)
	Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error)
	Approve(ctx context.Context, spender common.Address, amount *big.Int) (*types.Receipt, error)
	Mint(ctx context.Context, to common.Address, amount *big.Int) (*types.Receipt, error)
}

// ContractFactory builds contract handles bound to an account's signing capability.
type ContractFactory interface {
	Market(from common.Address) (MarketContract, error)
	Token(from common.Address) (TokenContract, error)
}
