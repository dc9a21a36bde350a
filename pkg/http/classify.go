package http

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/brendan.keane/lurl/internal/errors"
)

// upstreamBody is the error document returned by the Lambda API. The service
// spells the field "Message"; json matching is case-insensitive so
// "message" is accepted too.
type upstreamBody struct {
	Message string `json:"message"`
	Type    string `json:"__type"`
}

// functionErrorBody is what the Lambda runtime returns for unhandled errors.
type functionErrorBody struct {
	ErrorMessage string `json:"errorMessage"`
	ErrorType    string `json:"errorType"`
}

// transportError classifies a failed invocation call. Timeouts keep
// context.DeadlineExceeded in the chain.
func transportError(err error, functionName string, timeout time.Duration) *errors.LurlError {
	var lErr *errors.LurlError
	if stderrors.As(err, &lErr) {
		return lErr
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrapf(err, errors.ErrorTypeTransport, "invocation timed out after %s", timeout).
			WithContext("function", functionName).
			WithContext("timeout", timeout.String())
	}
	return errors.Wrap(err, errors.ErrorTypeTransport, "invocation failed").
		WithContext("function", functionName)
}

// upstreamError surfaces the Lambda API's own error message for a
// non-success status.
func upstreamError(status int, body []byte) *errors.LurlError {
	var doc upstreamBody
	message := ""
	if err := json.Unmarshal(body, &doc); err == nil {
		message = doc.Message
	}
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	if message == "" {
		message = http.StatusText(status)
	}

	lErr := errors.New(errors.ErrorTypeUpstream, message).
		WithContext("status_code", status)
	if doc.Type != "" {
		lErr.WithContext("error_type", doc.Type)
	}
	return lErr
}

// functionError reports an invocation whose function failed before producing
// a proxy response.
func functionError(kind string, payload []byte) *errors.LurlError {
	var doc functionErrorBody
	_ = json.Unmarshal(payload, &doc)

	message := doc.ErrorMessage
	if message == "" {
		message = "function error: " + kind
	}
	lErr := errors.New(errors.ErrorTypeUpstream, message).
		WithContext("function_error", kind)
	if doc.ErrorType != "" {
		lErr.WithContext("error_type", doc.ErrorType)
	}
	return lErr
}
