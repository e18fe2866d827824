package apierror

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestParseResponseStructured(t *testing.T) {
	body := `{"error":{"code":403,"message":"quota exceeded","errors":[{"message":"quota exceeded","reason":"quotaExceeded","domain":"usageLimits"}]}}`
	apiErr := ParseResponse(403, []byte(body))
	if apiErr.StatusCode != 403 {
		t.Errorf("Expecting status 403, got %d", apiErr.StatusCode)
	}
	if apiErr.Body == nil {
		t.Fatal("Expecting structured body, got nil")
	}
	if apiErr.Body.Code != 403 {
		t.Errorf("Expecting body code 403, got %d", apiErr.Body.Code)
	}
	if apiErr.Message() != "quota exceeded" {
		t.Errorf("Expecting message %q, got %q", "quota exceeded", apiErr.Message())
	}
	if len(apiErr.Body.Errors) != 1 || apiErr.Body.Errors[0].Reason != "quotaExceeded" {
		t.Errorf("Unexpected sub-errors: %+v", apiErr.Body.Errors)
	}
}

func TestParseResponsePlainText(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"plain", "not found"},
		{"html", "<html><body>Service Unavailable</body></html>"},
		{"malformed json", `{"error": "oops`},
		{"json without envelope", `{"status": "broken"}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			apiErr := ParseResponse(404, []byte(tc.body))
			if apiErr.Body != nil {
				t.Errorf("Expecting nil structured body, got %+v", apiErr.Body)
			}
			if apiErr.Message() != tc.body {
				t.Errorf("Expecting message %q, got %q", tc.body, apiErr.Message())
			}
		})
	}
}

func TestErrorUnwrapping(t *testing.T) {
	cause := errors.New("connection refused")
	var err error = fmt.Errorf("error fetching chunk: %w", &TransportError{Err: cause})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatal("Expecting TransportError via errors.As")
	}
	if !errors.Is(err, cause) {
		t.Error("Expecting wrapped cause via errors.Is")
	}

	cancelled := &CancelledError{Err: context.Canceled}
	if !IsCancelled(fmt.Errorf("wrapped: %w", cancelled)) {
		t.Error("Expecting IsCancelled to detect wrapped cancellation")
	}
	if !errors.Is(cancelled, context.Canceled) {
		t.Error("Expecting CancelledError to unwrap to context.Canceled")
	}
	if IsCancelled(&TransportError{Err: cause}) {
		t.Error("TransportError must not classify as cancellation")
	}
}
