package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Message(t *testing.T) {
	base := errors.New("base")
	var nilErr *Error

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"message wins", &Error{Kind: KindValidation, Msg: "msg", Err: base}, "msg"},
		{"falls back to wrapped", &Error{Kind: KindValidation, Err: base}, "base"},
		{"falls back to kind", &Error{Kind: KindNotFound}, string(KindNotFound)},
		{"nil receiver", nilErr, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
	if nilErr.Unwrap() != nil {
		t.Fatalf("nil receiver must unwrap to nil")
	}
}

func TestInvalidField_KeepsSentinelAndField(t *testing.T) {
	sentinel := errors.New("invalid quantity")
	err := fmt.Errorf("price job: %w", InvalidField("quantity", "quantity must be non-negative", sentinel))

	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel reachable via errors.Is")
	}
	if !Is(err, KindValidation) {
		t.Fatalf("expected validation kind, got %q", KindOf(err))
	}
	if FieldOf(err) != "quantity" {
		t.Fatalf("expected field quantity, got %q", FieldOf(err))
	}
	if FieldOf(Conflict("dup", nil)) != "" || FieldOf(errors.New("plain")) != "" {
		t.Fatalf("errors without a field must report none")
	}
}

func TestIs_MatchesWrappedKind(t *testing.T) {
	wrapped := fmt.Errorf("wrap: %w", NotFound("job not found", nil))
	if !Is(wrapped, KindNotFound) {
		t.Fatalf("expected Is to match wrapped kind")
	}
	if Is(wrapped, KindValidation) {
		t.Fatalf("expected Is to be false for different kind")
	}
	if Is(errors.New("plain"), "") {
		t.Fatalf("empty kind must never match")
	}
}

func TestIsClientError(t *testing.T) {
	for _, err := range []error{Validation("bad", nil), NotFound("x", nil), Conflict("dup", nil), InvalidField("language", "unsupported", nil)} {
		if !IsClientError(err) {
			t.Fatalf("expected %v to be a client error", err)
		}
	}
	if IsClientError(errors.New("db down")) {
		t.Fatalf("expected untyped error to be a server error")
	}
}
