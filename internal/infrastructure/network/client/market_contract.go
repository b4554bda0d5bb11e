package client

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"prediction_market/internal/app/port"
	"prediction_market/internal/domain/entity"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type marketContract struct {
	client  *EVMClient
	address common.Address
	from    common.Address
	abi     abi.ABI
}

// NewMarketContract binds the prediction market at address to the signing account from.
func NewMarketContract(client *EVMClient, address, from common.Address) port.MarketContract {
	return &marketContract{client: client, address: address, from: from, abi: MarketABI()}
}

func (m *marketContract) Address() common.Address {
	return m.address
}

func (m *marketContract) call(ctx context.Context, method string, args ...any) ([]any, error) {
	data, err := m.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	out, err := m.client.Call(ctx, m.from, m.address, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	values, err := m.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	return values, nil
}

func (m *marketContract) transact(ctx context.Context, method string, args ...any) (*types.Receipt, error) {
	data, err := m.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	receipt, err := m.client.Transact(ctx, m.from, m.address, data)
	if err != nil {
		return receipt, fmt.Errorf("%s: %w", method, err)
	}
	return receipt, nil
}

func (m *marketContract) Owner(ctx context.Context) (common.Address, error) {
	values, err := m.call(ctx, "owner")
	if err != nil {
		return common.Address{}, err
	}
	owner, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("owner: unexpected result type %T", values[0])
	}
	return owner, nil
}

func (m *marketContract) MarketCount(ctx context.Context) (uint64, error) {
	values, err := m.call(ctx, "marketCount")
	if err != nil {
		return 0, err
	}
	count, ok := values[0].(*big.Int)
	if !ok || !count.IsUint64() {
		return 0, fmt.Errorf("marketCount: unexpected result %v", values[0])
	}
	return count.Uint64(), nil
}

func (m *marketContract) GetMarketInfo(ctx context.Context, id uint64) (entity.Market, error) {
	values, err := m.call(ctx, "getMarketInfo", new(big.Int).SetUint64(id))
	if err != nil {
		return entity.Market{}, err
	}
	if len(values) != 12 {
		return entity.Market{}, fmt.Errorf("getMarketInfo: expected 12 values, got %d", len(values))
	}

	market := entity.Market{ID: id}
	var ok bool
	if market.Question, ok = values[0].(string); !ok {
		return entity.Market{}, fmt.Errorf("getMarketInfo: question has type %T", values[0])
	}
	for i := range market.Options {
		if market.Options[i], ok = values[1+i].(string); !ok {
			return entity.Market{}, fmt.Errorf("getMarketInfo: option %d has type %T", i, values[1+i])
		}
	}
	endTime, ok := values[5].(*big.Int)
	if !ok {
		return entity.Market{}, fmt.Errorf("getMarketInfo: endTime has type %T", values[5])
	}
	market.EndTime = time.Unix(endTime.Int64(), 0).UTC()
	if market.Outcome, ok = values[6].(uint8); !ok {
		return entity.Market{}, fmt.Errorf("getMarketInfo: outcome has type %T", values[6])
	}
	for i := range market.Shares {
		if market.Shares[i], ok = values[7+i].(*big.Int); !ok {
			return entity.Market{}, fmt.Errorf("getMarketInfo: shares %d has type %T", i, values[7+i])
		}
	}
	if market.Resolved, ok = values[11].(bool); !ok {
		return entity.Market{}, fmt.Errorf("getMarketInfo: resolved has type %T", values[11])
	}
	return market, nil
}

func (m *marketContract) GetSharesBalance(ctx context.Context, id uint64, holder common.Address) (entity.SharesBalance, error) {
	values, err := m.call(ctx, "getSharesBalance", new(big.Int).SetUint64(id), holder)
	if err != nil {
		return entity.SharesBalance{}, err
	}
	var balance entity.SharesBalance
	for i := range balance {
		v, ok := values[i].(*big.Int)
		if !ok {
			return entity.SharesBalance{}, fmt.Errorf("getSharesBalance: value %d has type %T", i, values[i])
		}
		balance[i] = v
	}
	return balance, nil
}

func (m *marketContract) GetUserShares(ctx context.Context, id uint64, holder common.Address, outcome entity.Outcome) (*big.Int, error) {
	a, b, c, d := outcome.Flags()
	values, err := m.call(ctx, "getUserShares", new(big.Int).SetUint64(id), holder, a, b, c, d)
	if err != nil {
		return nil, err
	}
	shares, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("getUserShares: unexpected result type %T", values[0])
	}
	return shares, nil
}

func (m *marketContract) BuyShares(ctx context.Context, id uint64, outcome entity.Outcome, amount *big.Int) (*types.Receipt, error) {
	a, b, c, d := outcome.Flags()
	return m.transact(ctx, "buyShares", new(big.Int).SetUint64(id), a, b, c, d, amount)
}

func (m *marketContract) ResolveMarket(ctx context.Context, id uint64) (*types.Receipt, error) {
	return m.transact(ctx, "resolveMarket", new(big.Int).SetUint64(id))
}

func (m *marketContract) ClaimWinning(ctx context.Context, id uint64) (*types.Receipt, error) {
	return m.transact(ctx, "claimWinning", new(big.Int).SetUint64(id))
}

func (m *marketContract) CreateMarket(ctx context.Context, req entity.CreateMarketRequest) (*types.Receipt, error) {
	seconds := big.NewInt(int64(req.Duration / time.Second))
	return m.transact(ctx, "createMarket",
		req.Question, req.Options[0], req.Options[1], req.Options[2], req.Options[3], seconds)
}
