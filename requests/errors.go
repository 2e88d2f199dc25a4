package requests

import (
	"errors"
	"fmt"

	"github.com/sawtooth-seth/rpc/types"
)

// JSON-RPC error codes. Every failure inside a method uses CodeFailure.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeFailure        = -32069
)

// Error is a JSON-RPC error object. It never carries data.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

// Failure pairs the summary a caller may see with the cause that only the
// log may see.
type Failure struct {
	Summary string
	Cause   error
}

// Fail reports a handler failure. The summary must not include details of
// cause.
func Fail(summary string, cause error) *Failure {
	return &Failure{Summary: summary, Cause: cause}
}

func (f *Failure) Error() string {
	if f.Cause == nil {
		return f.Summary
	}
	return f.Summary + ": " + f.Cause.Error()
}

func (f *Failure) Unwrap() error { return f.Cause }

// Summaries for failures that do not come with one.
var summaries = []struct {
	err     error
	summary string
}{
	{types.ErrValidation, "Invalid parameters"},
	{types.ErrAccountLocked, "Account locked"},
	{types.ErrAccountNotFound, "Account not found"},
	{types.ErrFilterNotFound, "Filter not found"},
	{types.ErrNotFound, "Not found"},
	{types.ErrTimeout, "Validator timed out"},
	{types.ErrTransport, "Validator unavailable"},
	{types.ErrSigning, "Signing failed"},
	{types.ErrUnsupported, "Method not supported"},
}

const internalError = "Internal error"

// Summarize returns the caller facing message for err.
func Summarize(err error) string {
	var failure *Failure
	if errors.As(err, &failure) && failure.Summary != "" {
		return failure.Summary
	}
	for _, s := range summaries {
		if errors.Is(err, s.err) {
			return s.summary
		}
	}
	return internalError
}
