package entity

// AddressQuery asks for the balance of one address on one network.
// Finalized selects the final balance instead of the candidate balance.
type AddressQuery struct {
	Address   string
	Network   NetworkSelector
	Finalized bool
}

// BalanceResult is the outcome of a successful balance lookup.
type BalanceResult struct {
	Address          string          `json:"address"`
	Network          NetworkSelector `json:"network"`
	Final            bool            `json:"final"`
	RawBalance       string          `json:"rawBalance"`
	FormattedBalance string          `json:"formattedBalance"`
}

// MultiNetworkBalance collects the independently settled lookups of one
// address across all networks. A network that failed is null and has an
// entry in Errors.
type MultiNetworkBalance struct {
	Address  string                     `json:"address"`
	Mainnet  *BalanceResult             `json:"mainnet"`
	Buildnet *BalanceResult             `json:"buildnet"`
	Errors   map[NetworkSelector]string `json:"errors,omitempty"`
}

// Set records the outcome of one network's lookup.
func (m *MultiNetworkBalance) Set(network NetworkSelector, result *BalanceResult, err error) {
	if err != nil {
		if m.Errors == nil {
			m.Errors = make(map[NetworkSelector]string)
		}
		m.Errors[network] = err.Error()
		return
	}
	switch network {
	case Mainnet:
		m.Mainnet = result
	case Buildnet:
		m.Buildnet = result
	}
}

// Result returns the stored lookup for network, nil when it failed or never ran.
func (m *MultiNetworkBalance) Result(network NetworkSelector) *BalanceResult {
	switch network {
	case Mainnet:
		return m.Mainnet
	case Buildnet:
		return m.Buildnet
	}
	return nil
}
