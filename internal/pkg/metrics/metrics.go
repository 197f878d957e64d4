package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "massa_gateway"

// Metrics groups the gateway's collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	FunctionRequests *prometheus.CounterVec
	FunctionDuration *prometheus.HistogramVec
	RPCCalls         *prometheus.CounterVec
	GoalRelays       *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FunctionRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "function_requests_total",
			Help:      "Requests handled per function and response status.",
		}, []string{"function", "status"}),
		FunctionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "function_duration_seconds",
			Help:      "Time spent handling a function request.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"function"}),
		RPCCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_calls_total",
			Help:      "JSON-RPC calls sent to Massa nodes by outcome.",
		}, []string{"network", "method", "outcome"}),
		GoalRelays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "goal_relay_total",
			Help:      "Course goal webhook relays by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.FunctionRequests, m.FunctionDuration, m.RPCCalls, m.GoalRelays)
	return m
}

func (m *Metrics) ObserveFunction(function string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.FunctionRequests.WithLabelValues(function, strconv.Itoa(status)).Inc()
	m.FunctionDuration.WithLabelValues(function).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveRPCCall(network, method, outcome string) {
	if m == nil {
		return
	}
	m.RPCCalls.WithLabelValues(network, method, outcome).Inc()
}

func (m *Metrics) ObserveGoalRelay(outcome string) {
	if m == nil {
		return
	}
	m.GoalRelays.WithLabelValues(outcome).Inc()
}
