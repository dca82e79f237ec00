package types

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestError_ChainingAndHelpers(t *testing.T) {
	t.Parallel()

	root := errors.New("root")
	err := NewError(ErrUpstreamError, "upstream failed").
		WithCause(root).
		WithHTTPStatus(502).
		WithRetryable(true)

	if GetErrorCode(err) != ErrUpstreamError {
		t.Fatalf("expected code %s, got %s", ErrUpstreamError, GetErrorCode(err))
	}
	if !IsRetryable(err) {
		t.Fatalf("expected retryable")
	}
	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is unwrap to root")
	}
	if got := err.Error(); got != "[UPSTREAM_ERROR] upstream failed: root" {
		t.Fatalf("unexpected error string %q", got)
	}
}

func TestError_Families(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		input  bool
		remote bool
	}{
		{"input", NewInputError("root must be an object"), true, false},
		{"invalid json", NewInvalidJSONError(errors.New("eof")), true, false},
		{"remote", NewRemoteError(ErrAuthentication, "API authentication failed"), false, true},
		{"wrapped remote", fmt.Errorf("draft: %w", NewRemoteError(ErrNetworkError, "dial")), false, true},
		{"plain", errors.New("boom"), false, false},
		{"config", NewError(ErrInvalidConfiguration, "missing key"), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsInputError(tt.err); got != tt.input {
				t.Fatalf("IsInputError = %v, want %v", got, tt.input)
			}
			if got := IsRemoteServiceError(tt.err); got != tt.remote {
				t.Fatalf("IsRemoteServiceError = %v, want %v", got, tt.remote)
			}
		})
	}
}

func TestError_HTTPStatusDefaults(t *testing.T) {
	t.Parallel()

	if got := NewInputError("x").HTTPStatus; got != http.StatusBadRequest {
		t.Fatalf("input status = %d", got)
	}
	if got := NewRemoteError(ErrAPIError, "x").HTTPStatus; got != http.StatusBadGateway {
		t.Fatalf("remote status = %d", got)
	}
	if _, ok := AsError(errors.New("plain")); ok {
		t.Fatalf("plain error should not convert")
	}
}
