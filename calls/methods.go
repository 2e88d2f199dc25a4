// Package calls implements the JSON-RPC methods served by the gateway.
package calls

import "github.com/sawtooth-seth/rpc/requests"

// Methods lists every method grouped by namespace.
func Methods() [][]requests.Method {
	return [][]requests.Method{
		accountMethods(),
		blockMethods(),
		logsMethods(),
		networkMethods(),
		transactionMethods(),
		personalMethods(),
		sethMethods(),
	}
}

// NewRegistry returns a registry holding every method.
func NewRegistry() (*requests.Registry, error) {
	return requests.NewRegistry(Methods()...)
}
