package requests

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cometbft/cometbft/libs/log"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricsOnce sync.Once
	calls       *prometheus.CounterVec
)

func callCounter() *prometheus.CounterVec {
	metricsOnce.Do(func() {
		calls = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sethrpc_rpc_calls_total",
			Help: "JSON-RPC calls by method and outcome.",
		}, []string{"method", "outcome"})
		prometheus.MustRegister(calls)
	})
	return calls
}

// Executor runs handlers against a backend and is the only place where
// failures become JSON-RPC errors.
type Executor struct {
	registry *Registry
	backend  *Backend
	logger   log.Logger
	calls    *prometheus.CounterVec
}

func NewExecutor(registry *Registry, backend *Backend, logger log.Logger) *Executor {
	return &Executor{
		registry: registry,
		backend:  backend,
		logger:   logger.With("module", "executor"),
		calls:    callCounter(),
	}
}

func (e *Executor) Registry() *Registry { return e.registry }

// Run executes method with raw params. Exactly one of the results is set.
func (e *Executor) Run(ctx context.Context, method string, raw json.RawMessage) (interface{}, *Error) {
	handler, ok := e.registry.Lookup(method)
	if !ok {
		e.calls.WithLabelValues("unknown", "not_found").Inc()
		return nil, &Error{Code: CodeMethodNotFound, Message: "Method not found"}
	}
	params, err := ParseParams(raw)
	if err != nil {
		return nil, e.fail(method, err)
	}
	result, err := e.invoke(ctx, handler, params)
	if err != nil {
		return nil, e.fail(method, err)
	}
	e.calls.WithLabelValues(method, "ok").Inc()
	return result, nil
}

func (e *Executor) invoke(ctx context.Context, handler Handler, params Params) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler(ctx, e.backend, params)
}

func (e *Executor) fail(method string, err error) *Error {
	summary := Summarize(err)
	e.logger.Error(summary, "method", method, "err", err)
	e.calls.WithLabelValues(method, "error").Inc()
	return &Error{Code: CodeFailure, Message: summary}
}
