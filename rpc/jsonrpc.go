package rpc

import (
	"bytes"
	"encoding/json"

	"github.com/sawtooth-seth/rpc/requests"
)

const (
	version = "2.0"

	// codeLimitExceeded is answered with HTTP 429 when the rate limit is hit.
	codeLimitExceeded = -32005
)

var nullID = json.RawMessage("null")

type request struct {
	Version string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type response struct {
	Version string           `json:"jsonrpc"`
	ID      json.RawMessage  `json:"id"`
	Result  *json.RawMessage `json:"result,omitempty"`
	Error   *requests.Error  `json:"error,omitempty"`
}

func errorResponse(id json.RawMessage, code int, message string) *response {
	if len(id) == 0 {
		id = nullID
	}
	return &response{Version: version, ID: id, Error: &requests.Error{Code: code, Message: message}}
}

func resultResponse(id json.RawMessage, result json.RawMessage) *response {
	if len(id) == 0 {
		id = nullID
	}
	return &response{Version: version, ID: id, Result: &result}
}

// isBatch reports whether body holds a JSON array.
func isBatch(body []byte) bool {
	body = bytes.TrimLeft(body, " \t\r\n")
	return len(body) > 0 && body[0] == '['
}
