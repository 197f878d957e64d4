package entity

import "strings"

// NetworkSelector names the Massa network a lookup is sent to.
type NetworkSelector string

const (
	Mainnet  NetworkSelector = "mainnet"
	Buildnet NetworkSelector = "buildnet"
)

// NetworkSelectors lists every selector the gateway can resolve, in display order.
var NetworkSelectors = []NetworkSelector{Mainnet, Buildnet}

// ParseNetworkSelector resolves a request's network field. An empty value
// yields fallback; "testnet" is kept as an alias for buildnet because older
// front-end builds still send it.
func ParseNetworkSelector(raw string, fallback NetworkSelector) (NetworkSelector, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return fallback, nil
	case string(Mainnet):
		return Mainnet, nil
	case string(Buildnet), "testnet":
		return Buildnet, nil
	}
	return "", &ServiceError{
		Kind:    KindInvalidNetwork,
		Message: "Unsupported network '" + raw + "'. Use 'mainnet' or 'buildnet'.",
	}
}

// NetworkDefinition holds the connection details of one Massa network.
type NetworkDefinition struct {
	Selector     NetworkSelector `json:"selector" yaml:"selector"`
	Name         string          `json:"name" yaml:"name"`
	NativeSymbol string          `json:"nativeSymbol" yaml:"nativeSymbol"`
	Decimals     int32           `json:"decimals" yaml:"decimals"`
	RPCURL       string          `json:"rpcUrl" yaml:"rpcUrl"`
}
