package entity

import "github.com/ethereum/go-ethereum/common/hexutil"

// NativeCurrency describes the gas token of a network as wallets expect it in
// wallet_addEthereumChain.
type NativeCurrency struct {
	Name     string `json:"name" yaml:"name"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	Decimals uint8  `json:"decimals" yaml:"decimals"`
}

// NetworkDefinition holds the configuration for the one blockchain network the
// session requires. It is static configuration and is never mutated at runtime.
type NetworkDefinition struct {
	ChainID        uint64         `json:"chainId" yaml:"chainId"`
	Name           string         `json:"name" yaml:"name"`
	NativeCurrency NativeCurrency `json:"nativeCurrency" yaml:"nativeCurrency"`
	RPCURLs        []string       `json:"rpcUrls" yaml:"rpcUrls"`
	ExplorerURLs   []string       `json:"explorerUrls" yaml:"explorerUrls"`
}

// HexChainID returns the chain id in the 0x-prefixed form used by wallet RPC methods.
func (n NetworkDefinition) HexChainID() string {
	return hexutil.EncodeUint64(n.ChainID)
}
