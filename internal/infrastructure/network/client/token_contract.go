package client

import (
	"context"
	"fmt"
	"math/big"

	"prediction_market/internal/app/port"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// MintVariant selects which mint signature the token exposes.
type MintVariant int

const (
	MintToAmount MintVariant = iota // mint(address,uint256)
	MintAmount                      // mint(uint256)
)

type tokenContract struct {
	client  *EVMClient
	address common.Address
	from    common.Address
	variant MintVariant
}

// NewTokenContract binds the ERC20 stablecoin at address to the signing account from.
func NewTokenContract(client *EVMClient, address, from common.Address, variant MintVariant) port.TokenContract {
	initParsedABIs()
	return &tokenContract{client: client, address: address, from: from, variant: variant}
}

func (t *tokenContract) Address() common.Address {
	return t.address
}

func (t *tokenContract) readUint(ctx context.Context, method string, args ...any) (*big.Int, error) {
	data, err := parsedERC20ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	out, err := t.client.Call(ctx, t.from, t.address, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	if len(out) == 0 {
		return big.NewInt(0), nil
	}
	values, err := parsedERC20ABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	v, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result type %T", method, values[0])
	}
	return v, nil
}

func (t *tokenContract) send(ctx context.Context, parsed abi.ABI, method string, args ...any) (*types.Receipt, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	receipt, err := t.client.Transact(ctx, t.from, t.address, data)
	if err != nil {
		return receipt, fmt.Errorf("%s: %w", method, err)
	}
	return receipt, nil
}

func (t *tokenContract) BalanceOf(ctx context.Context, holder common.Address) (*big.Int, error) {
	return t.readUint(ctx, "balanceOf", holder)
}

func (t *tokenContract) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return t.readUint(ctx, "allowance", owner, spender)
}

func (t *tokenContract) Approve(ctx context.Context, spender common.Address, amount *big.Int) (*types.Receipt, error) {
	return t.send(ctx, parsedERC20ABI, "approve", spender, amount)
}

func (t *tokenContract) Mint(ctx context.Context, to common.Address, amount *big.Int) (*types.Receipt, error) {
	if t.variant == MintAmount {
		return t.send(ctx, parsedMintABI, "mint", amount)
	}
	return t.send(ctx, parsedMintToABI, "mint", to, amount)
}
