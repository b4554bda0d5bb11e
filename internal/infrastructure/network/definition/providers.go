package networkdefinition

import (
	"fmt"
	"strings"

	"prediction_market/internal/app/port"
	"prediction_market/internal/domain/entity"
)

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	EtherlinkTestnet = entity.NetworkDefinition{
		ChainID: 128123,
		Name:    "Etherlink Testnet",
		NativeCurrency: entity.NativeCurrency{
			Name:     "XTZ",
			Symbol:   "XTZ",
			Decimals: 18,
		},
		RPCURLs:      []string{"https://node.ghostnet.etherlink.com"},
		ExplorerURLs: []string{"https://testnet.explorer.etherlink.com"},
	}
	EtherlinkMainnet = entity.NetworkDefinition{
		ChainID: 42793,
		Name:    "Etherlink Mainnet",
		NativeCurrency: entity.NativeCurrency{
			Name:     "XTZ",
			Symbol:   "XTZ",
			Decimals: 18,
		},
		RPCURLs:      []string{"https://node.mainnet.etherlink.com"},
		ExplorerURLs: []string{"https://explorer.etherlink.com"},
	}
)

// allKnownDefinitions is a helper to quickly access all hardcoded definitions.
var allKnownDefinitions = map[string]entity.NetworkDefinition{
	"etherlink-testnet": EtherlinkTestnet,
	"etherlink":         EtherlinkMainnet,
}

// Provider resolves the network the session requires and names chains the
// wallet reports.
type Provider struct {
	logger   port.Logger
	required entity.NetworkDefinition
}

// NewProvider creates a Provider. identifier selects a known definition; when
// it is empty the explicit definition is used, falling back to Etherlink Testnet.
func NewProvider(log port.Logger, identifier string, explicit entity.NetworkDefinition) (*Provider, error) {
	p := &Provider{logger: log}

	switch {
	case identifier != "":
		def, ok := allKnownDefinitions[strings.ToLower(identifier)]
		if !ok {
			return nil, fmt.Errorf("unknown network identifier %q", identifier)
		}
		p.required = def
	case explicit.ChainID != 0:
		p.required = explicit
	default:
		p.required = EtherlinkTestnet
	}

	p.logger.Info(fmt.Sprintf("Required network: %s (ChainID: %d)", p.required.Name, p.required.ChainID))
	return p, nil
}

// Required returns the network the session must be on.
func (p *Provider) Required() entity.NetworkDefinition {
	return p.required
}

// NameOf returns a human-readable name for chainID.
func (p *Provider) NameOf(chainID uint64) string {
	if chainID == p.required.ChainID {
		return p.required.Name
	}
	for _, def := range allKnownDefinitions {
		if def.ChainID == chainID {
			return def.Name
		}
	}
	return fmt.Sprintf("chain %d", chainID)
}
