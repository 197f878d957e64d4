package networkdefinition

import (
	"fmt"
	"strings"

	"massa_gateway/internal/app/port"
	"massa_gateway/internal/domain/entity"
)

// NetworkDefinitionProvider resolves Massa network selectors to node endpoints.
type NetworkDefinitionProvider struct {
	logger port.Logger
	defs   map[entity.NetworkSelector]entity.NetworkDefinition
}

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	Mainnet = entity.NetworkDefinition{
		Selector:     entity.Mainnet,
		Name:         "Massa Mainnet",
		NativeSymbol: "MAS",
		Decimals:     entity.NanoDecimals,
		RPCURL:       "https://mainnet.massa.net/api/v2",
	}
	Buildnet = entity.NetworkDefinition{
		Selector:     entity.Buildnet,
		Name:         "Massa Buildnet",
		NativeSymbol: "MAS",
		Decimals:     entity.NanoDecimals,
		RPCURL:       "https://buildnet.massa.net/api/v2",
	}
)

// NewNetworkDefinitionProvider returns the built-in definitions with the RPC
// URLs from endpoints applied on top. Empty or unknown entries are ignored.
func NewNetworkDefinitionProvider(log port.Logger, endpoints map[entity.NetworkSelector]string) *NetworkDefinitionProvider {
	p := &NetworkDefinitionProvider{
		logger: log,
		defs: map[entity.NetworkSelector]entity.NetworkDefinition{
			entity.Mainnet:  Mainnet,
			entity.Buildnet: Buildnet,
		},
	}

	for selector, rpcURL := range endpoints {
		rpcURL = strings.TrimSpace(rpcURL)
		if rpcURL == "" {
			continue
		}
		def, ok := p.defs[selector]
		if !ok {
			p.logger.Warn(fmt.Sprintf("Endpoint configured for unknown network '%s'. Skipping.", selector))
			continue
		}
		if def.RPCURL != rpcURL {
			p.logger.Info("Overriding network endpoint", "network", selector, "rpcUrl", rpcURL)
		}
		def.RPCURL = rpcURL
		p.defs[selector] = def
	}

	return p
}

// GetAllNetworkDefinitions returns every definition in display order.
func (p *NetworkDefinitionProvider) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	if p == nil {
		return []entity.NetworkDefinition{}
	}
	out := make([]entity.NetworkDefinition, 0, len(p.defs))
	for _, selector := range entity.NetworkSelectors {
		if def, ok := p.defs[selector]; ok {
			out = append(out, def)
		}
	}
	return out
}

// GetNetworkDefinition returns the definition for selector.
func (p *NetworkDefinitionProvider) GetNetworkDefinition(selector entity.NetworkSelector) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	def, ok := p.defs[selector]
	return def, ok
}
