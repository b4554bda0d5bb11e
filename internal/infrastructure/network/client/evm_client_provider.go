package client

import (
	"fmt"
	"sync"

	"prediction_market/internal/app/port"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// contractProvider implements port.ContractFactory.
type contractProvider struct {
	client        *EVMClient
	marketAddress common.Address
	tokenAddress  common.Address
	mintVariant   MintVariant
	logger        *zap.Logger

	mu      sync.Mutex
	markets map[common.Address]port.MarketContract
	tokens  map[common.Address]port.TokenContract
}

// NewContractProvider creates a factory for contract handles. Handles are
// cached per signing account.
func NewContractProvider(client *EVMClient, marketAddress, tokenAddress string, variant MintVariant, logger *zap.Logger) (port.ContractFactory, error) {
	p := &contractProvider{
		client:      client,
		mintVariant: variant,
		logger:      logger.Named("ContractProvider"),
		markets:     make(map[common.Address]port.MarketContract),
		tokens:      make(map[common.Address]port.TokenContract),
	}

	if marketAddress == "" {
		return nil, fmt.Errorf("market contract address is required")
	}
	var err error
	if p.marketAddress, err = parseContractAddress("market", marketAddress); err != nil {
		return nil, err
	}
	if p.tokenAddress, err = parseContractAddress("token", tokenAddress); err != nil {
		return nil, err
	}
	return p, nil
}

func parseContractAddress(kind, s string) (common.Address, error) {
	if s == "" {
		return common.Address{}, nil
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid %s contract address %q", kind, s)
	}
	return common.HexToAddress(s), nil
}

// Market returns the market contract bound to from.
func (p *contractProvider) Market(from common.Address) (port.MarketContract, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.markets[from]; ok {
		return c, nil
	}
	c := NewMarketContract(p.client, p.marketAddress, from)
	p.markets[from] = c
	p.logger.Info("Bound market contract", zap.String("contract", p.marketAddress.Hex()), zap.String("account", from.Hex()))
	return c, nil
}

// Token returns the stablecoin contract bound to from.
func (p *contractProvider) Token(from common.Address) (port.TokenContract, error) {
	if p.tokenAddress == (common.Address{}) {
		return nil, fmt.Errorf("token contract address is not configured")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.tokens[from]; ok {
		return c, nil
	}
	c := NewTokenContract(p.client, p.tokenAddress, from, p.mintVariant)
	p.tokens[from] = c
	return c, nil
}
