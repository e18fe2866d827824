// Package apierror classifies download failures: API errors carrying the HTTP
// status and the structured error body the endpoint returns, transport errors
// from below HTTP, and cooperative cancellation.
package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorItem is one entry of the "errors" list in a structured error body.
type ErrorItem struct {
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
	Domain  string `json:"domain,omitempty"`
}

// ErrorBody is the structured error object media endpoints wrap in an
// {"error": {...}} envelope.
type ErrorBody struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Errors  []ErrorItem `json:"errors,omitempty"`
}

// APIError is a non-success HTTP response. Body is nil when the response did
// not carry a parseable structured error, in which case the raw body text is
// the message.
type APIError struct {
	StatusCode int
	Body       *ErrorBody
	rawMessage string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message())
}

// Message returns the structured message when present, else the raw body text.
func (e *APIError) Message() string {
	if e.Body != nil {
		return e.Body.Message
	}
	return e.rawMessage
}

// ParseResponse classifies a non-success response body. It first tries the
// structured JSON envelope and falls back to the body text verbatim.
func ParseResponse(statusCode int, body []byte) *APIError {
	var envelope struct {
		Error *ErrorBody `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		return &APIError{StatusCode: statusCode, Body: envelope.Error}
	}
	return &APIError{StatusCode: statusCode, rawMessage: string(body)}
}

// TransportError is a connectivity failure below HTTP (DNS, TLS, broken
// connection).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// CancelledError reports cooperative cancellation observed mid-transfer.
type CancelledError struct {
	Err error // the context's error, when one was attached
}

func (e *CancelledError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("download cancelled: %v", e.Err)
	}
	return "download cancelled"
}

func (e *CancelledError) Unwrap() error {
	return e.Err
}

// IsCancelled reports whether err is (or wraps) a cancellation.
func IsCancelled(err error) bool {
	var ce *CancelledError
	return errors.As(err, &ce)
}
