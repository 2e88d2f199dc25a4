/*
Package rpc serves the gateway's methods as JSON-RPC 2.0 over HTTP.

# Example

request:

	{"jsonrpc": "2.0", "method": "eth_getBalance", "params": ["0x2c7536e3605d9c16a7a3d7b1898e529396a65c23", "latest"], "id": 1}

response:

	{"jsonrpc":"2.0","id":1,"result":"0x3e8"}

# Request

Requests are POSTed to `/`, alone or as a batch array. Batch elements run
concurrently and are answered in request order. At most `rpc.workers` calls
execute at a time across all connections; further calls wait for a worker.

`method` is defined in `{namespace}_{methodName}` format, the methods are
listed by [github.com/sawtooth-seth/rpc/calls.Methods].

# Errors

Every JSON-RPC outcome, including errors, is answered with HTTP 200. A failing
method always answers with code -32069 and a short summary:

	{"jsonrpc":"2.0","id":1,"error":{"code":-32069,"message":"Account locked"}}

Framing errors use the standard codes -32700 (parse error), -32600 (invalid
request) and -32601 (method not found). When `rpc.rate_limit` is set, requests
beyond it are refused with HTTP 429 and code -32005.

# Other routes

	GET /healthz   liveness probe
	GET /metrics   prometheus metrics, unless disabled
*/
package rpc
