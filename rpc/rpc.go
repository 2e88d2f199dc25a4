package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"

	"github.com/cometbft/cometbft/libs/log"
	"github.com/cometbft/cometbft/libs/service"
	ethlog "github.com/ethereum/go-ethereum/log"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sawtooth-seth/rpc/requests"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// maxRequestSize bounds the body of a single HTTP request.
const maxRequestSize = 5 * 1024 * 1024

type RPC struct {
	service.BaseService
	config   *Config
	executor *requests.Executor
	workers  *semaphore.Weighted
	limiter  *rate.Limiter

	server   *http.Server
	listener net.Listener
}

func NewRPC(logger log.Logger, config *Config, executor *requests.Executor) *RPC {
	if config == nil {
		config = &DefaultConfig
	}
	workers := config.Workers
	if workers <= 0 {
		workers = DefaultConfig.Workers
	}
	rpc := &RPC{
		config:   config,
		executor: executor,
		workers:  semaphore.NewWeighted(int64(workers)),
	}
	if config.RateLimit > 0 {
		burst := config.RateBurst
		if burst <= 0 {
			burst = int(config.RateLimit)
		}
		if burst < 1 {
			burst = 1
		}
		rpc.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), burst)
	}
	rpc.BaseService = *service.NewBaseService(logger.With("module", "rpc"), "RPC", rpc)
	return rpc
}

// Handler returns the HTTP routes of the server.
func (r *RPC) Handler() http.Handler {
	router := chi.NewRouter()
	if r.limiter != nil {
		router.With(r.limit).Post("/", r.serveJSONRPC)
	} else {
		router.Post("/", r.serveJSONRPC)
	}
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if r.config.Metrics {
		router.Handle("/metrics", promhttp.Handler())
	}
	return router
}

func (r *RPC) OnStart() error {
	ethlog.Root().SetHandler(
		ethlog.FuncHandler(func(record *ethlog.Record) error {
			fn := r.Logger.Info
			switch record.Lvl {
			case ethlog.LvlTrace, ethlog.LvlDebug:
				fn = r.Logger.Debug
			case ethlog.LvlError, ethlog.LvlCrit:
				fn = r.Logger.Error
			}
			fn(record.Msg, record.Ctx...)
			return nil
		}))

	r.server = &http.Server{
		Handler:           r.Handler(),
		ReadTimeout:       r.config.HTTPTimeouts.ReadTimeout,
		ReadHeaderTimeout: r.config.HTTPTimeouts.ReadHeaderTimeout,
		WriteTimeout:      r.config.HTTPTimeouts.WriteTimeout,
		IdleTimeout:       r.config.HTTPTimeouts.IdleTimeout,
	}

	r.Logger.Debug("try listening", "listenAddr", r.config.ListenAddress)
	listener, err := net.Listen("tcp", r.config.ListenAddress)
	if err != nil {
		return err
	}
	r.listener = listener
	r.Logger.Info("listening", "listenAddr", listener.Addr().String())
	go func() {
		if err := r.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.Logger.Error("rpc server stopped", "err", err)
		}
	}()
	return nil
}

func (r *RPC) OnStop() {
	if r.server != nil {
		r.server.Close()
	}
}

// Addr is the address the server listens on once started.
func (r *RPC) Addr() net.Addr {
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

func (r *RPC) limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !r.limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, errorResponse(nil, codeLimitExceeded, "Request rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, req)
	})
}

func (r *RPC) serveJSONRPC(w http.ResponseWriter, req *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxRequestSize))
	if err != nil {
		writeJSON(w, http.StatusOK, errorResponse(nil, requests.CodeInvalidRequest, "Request too large"))
		return
	}
	ctx := req.Context()

	if !isBatch(body) {
		if resp := r.call(ctx, body); resp != nil {
			writeJSON(w, http.StatusOK, resp)
		} else {
			w.WriteHeader(http.StatusNoContent)
		}
		return
	}
	var batch []json.RawMessage
	if err := json.Unmarshal(body, &batch); err != nil {
		writeJSON(w, http.StatusOK, errorResponse(nil, requests.CodeParseError, "Parse error"))
		return
	}
	if len(batch) == 0 {
		writeJSON(w, http.StatusOK, errorResponse(nil, requests.CodeInvalidRequest, "Empty batch"))
		return
	}
	responses := make([]*response, len(batch))
	g, gctx := errgroup.WithContext(ctx)
	for i, raw := range batch {
		i, raw := i, raw
		g.Go(func() error {
			responses[i] = r.call(gctx, raw)
			return nil
		})
	}
	_ = g.Wait()
	answered := responses[:0]
	for _, resp := range responses {
		if resp != nil {
			answered = append(answered, resp)
		}
	}
	if len(answered) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, answered)
}

// call runs one JSON-RPC request on a worker. Notifications, requests
// without an id, are run but get no response.
func (r *RPC) call(ctx context.Context, raw json.RawMessage) *response {
	var msg request
	if err := json.Unmarshal(raw, &msg); err != nil {
		var syntax *json.SyntaxError
		if errors.As(err, &syntax) {
			return errorResponse(nil, requests.CodeParseError, "Parse error")
		}
		return errorResponse(nil, requests.CodeInvalidRequest, "Invalid request")
	}
	if msg.Version != version || msg.Method == "" {
		return errorResponse(msg.ID, requests.CodeInvalidRequest, "Invalid request")
	}

	if err := r.workers.Acquire(ctx, 1); err != nil {
		return errorResponse(msg.ID, requests.CodeFailure, "Request cancelled")
	}
	defer r.workers.Release(1)

	result, rpcErr := r.executor.Run(ctx, msg.Method, msg.Params)
	if len(msg.ID) == 0 {
		return nil
	}
	if rpcErr != nil {
		return errorResponse(msg.ID, rpcErr.Code, rpcErr.Message)
	}
	out, err := json.Marshal(result)
	if err != nil {
		r.Logger.Error("unable to encode result", "method", msg.Method, "err", err)
		return errorResponse(msg.ID, requests.CodeFailure, "Internal error")
	}
	return resultResponse(msg.ID, out)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
