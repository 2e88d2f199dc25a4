package rpc

import "github.com/ethereum/go-ethereum/rpc"

// Defines the configuration options for the RPC server
type Config struct {
	// TCP address for the RPC server to listen on
	ListenAddress string `mapstructure:"addr"`
	// Workers bounds the calls executing at once, across all connections.
	Workers int `mapstructure:"workers"`
	// RateLimit is the sustained requests per second accepted, 0 disables
	// limiting. RateBurst defaults to RateLimit.
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
	// Metrics serves the prometheus registry at /metrics.
	Metrics bool `mapstructure:"-"`
	// HTTPTimeouts allows for customization of the timeout values used by the HTTP RPC
	// interface.
	HTTPTimeouts rpc.HTTPTimeouts `mapstructure:"-"`
}

// DefaultConfig returns a default configuration for the RPC server
var DefaultConfig = Config{
	ListenAddress: "127.0.0.1:3030",
	Workers:       3,
	Metrics:       true,
	HTTPTimeouts:  rpc.DefaultHTTPTimeouts,
}
