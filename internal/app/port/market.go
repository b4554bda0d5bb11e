package port

import (
	"context"

	"prediction_market/internal/domain/entity"

	"github.com/ethereum/go-ethereum/core/types"
)

// MarketService reads markets and submits market transactions through the
// confirmation pipeline.
type MarketService interface {
	ListMarkets(ctx context.Context) ([]entity.Market, error)
	GetMarket(ctx context.Context, id uint64) (entity.MarketDetail, error)
	Positions(ctx context.Context) ([]entity.Position, error)
	BuyShares(ctx context.Context, id uint64, outcome entity.Outcome, amount string) (*types.Receipt, error)
	ResolveMarket(ctx context.Context, id uint64) (*types.Receipt, error)
	ClaimWinnings(ctx context.Context, id uint64) (*types.Receipt, error)
	CreateMarket(ctx context.Context, req entity.CreateMarketRequest) (*types.Receipt, error)
	TokenStatus(ctx context.Context) (entity.TokenStatus, error)
	ApproveToken(ctx context.Context) (*types.Receipt, error)
	MintToken(ctx context.Context) (*types.Receipt, error)
}
