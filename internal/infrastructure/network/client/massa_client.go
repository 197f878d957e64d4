package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"massa_gateway/internal/app/port"
	"massa_gateway/internal/domain/entity"
	"massa_gateway/internal/pkg/metrics"

	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"
)

// Options tunes the adapter. Zero values mean no call timeout and no throttling.
type Options struct {
	CallTimeout         time.Duration
	RateLimit           float64
	BurstLimit          int
	MaxIdleConnsPerHost int
}

// MassaClient implements port.RPCClient. A JSON-RPC client is dialed and
// closed for every call; the only state shared between calls is the
// transport's connection pool and the optional per-network limiters.
type MassaClient struct {
	networks    port.NetworkDefinitionProvider
	httpClient  *http.Client
	callTimeout time.Duration
	limiters    map[entity.NetworkSelector]*rate.Limiter
	metrics     *metrics.Metrics
	logger      port.Logger
}

// NewMassaClient creates the adapter. m may be nil.
func NewMassaClient(networks port.NetworkDefinitionProvider, opts Options, m *metrics.Metrics, log port.Logger) *MassaClient {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.MaxIdleConnsPerHost > 0 {
		transport.MaxIdleConnsPerHost = opts.MaxIdleConnsPerHost
	}

	c := &MassaClient{
		networks:    networks,
		httpClient:  &http.Client{Transport: transport},
		callTimeout: opts.CallTimeout,
		limiters:    make(map[entity.NetworkSelector]*rate.Limiter),
		metrics:     m,
		logger:      log,
	}
	if opts.RateLimit > 0 {
		burst := opts.BurstLimit
		if burst <= 0 {
			burst = 1
		}
		for _, def := range networks.GetAllNetworkDefinitions() {
			c.limiters[def.Selector] = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
		}
	}
	return c
}

// Call sends method with params to the node of network and returns the raw result.
func (c *MassaClient) Call(ctx context.Context, network entity.NetworkSelector, method string, params ...any) (json.RawMessage, error) {
	def, ok := c.networks.GetNetworkDefinition(network)
	if !ok {
		return nil, &entity.ServiceError{
			Kind:    entity.KindInvalidNetwork,
			Message: fmt.Sprintf("Unsupported network '%s'", network),
			Network: network,
			Method:  method,
		}
	}

	result, err := c.call(ctx, def, method, params)
	outcome := "ok"
	if err != nil {
		outcome = string(entity.KindOf(err))
		c.logger.Warn("Massa RPC call failed", "network", network, "method", method, "rpcUrl", def.RPCURL, "error", err)
	}
	c.metrics.ObserveRPCCall(string(network), method, outcome)
	return result, err
}

func (c *MassaClient) call(ctx context.Context, def entity.NetworkDefinition, method string, params []any) (json.RawMessage, error) {
	if limiter := c.limiters[def.Selector]; limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, transportError(def.Selector, method, 0, err)
		}
	}

	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}

	rpcClient, err := rpc.DialOptions(ctx, def.RPCURL, rpc.WithHTTPClient(c.httpClient))
	if err != nil {
		return nil, transportError(def.Selector, method, 0, err)
	}
	defer rpcClient.Close()

	var result json.RawMessage
	if err := rpcClient.CallContext(ctx, &result, method, params...); err != nil {
		return nil, classifyCallError(def.Selector, method, err)
	}
	return result, nil
}

func classifyCallError(network entity.NetworkSelector, method string, err error) *entity.ServiceError {
	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return transportError(network, method, httpErr.StatusCode, err)
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return &entity.ServiceError{
			Kind:    entity.KindRpcError,
			Message: rpcErr.Error(),
			Network: network,
			Method:  method,
			Err:     err,
		}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.Is(err, rpc.ErrNoResult) || errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &entity.ServiceError{
			Kind:    entity.KindInvalidResponse,
			Message: "Massa node returned an invalid JSON-RPC response",
			Network: network,
			Method:  method,
			Err:     err,
		}
	}

	return transportError(network, method, 0, err)
}

func transportError(network entity.NetworkSelector, method string, status int, err error) *entity.ServiceError {
	msg := fmt.Sprintf("RPC request to %s failed", network)
	if status != 0 {
		msg = fmt.Sprintf("RPC request to %s failed with HTTP status %d", network, status)
	}
	return &entity.ServiceError{
		Kind:           entity.KindTransportError,
		Message:        msg,
		Network:        network,
		Method:         method,
		UpstreamStatus: status,
		Err:            err,
	}
}
