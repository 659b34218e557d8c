package provider

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kursadbilgin/reminder-relay/internal/domain"
)

func TestProviderErrorMatchesKindAndCause(t *testing.T) {
	t.Parallel()

	err := &ProviderError{
		Kind:    domain.ErrTransport,
		Message: "unreachable",
		Cause:   context.DeadlineExceeded,
	}

	if !errors.Is(err, domain.ErrTransport) {
		t.Fatal("expected ErrTransport match")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("expected cause match")
	}
	if errors.Is(err, domain.ErrProvider) {
		t.Fatal("unexpected ErrProvider match")
	}
}

func TestProviderErrorDefaultsToProviderKind(t *testing.T) {
	t.Parallel()

	err := &ProviderError{StatusCode: 502, Message: "bad gateway"}
	if !errors.Is(err, domain.ErrProvider) {
		t.Fatal("nil Kind should behave as ErrProvider")
	}
	if got := err.Error(); got != "provider error: status=502: bad gateway" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestRedactHidesSecretButKeepsChain(t *testing.T) {
	t.Parallel()

	cause := errors.New(`Post "https://api.telegram.org/botTOKEN123/sendMessage": dial tcp: timeout`)
	err := redact(cause, "TOKEN123")

	if strings.Contains(err.Error(), "TOKEN123") {
		t.Fatalf("Error() = %q, secret not redacted", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Fatal("redacted error should unwrap to cause")
	}
}

func TestResultErrorMessage(t *testing.T) {
	t.Parallel()

	if got := Success([]byte(`{"ok":true}`), "").ErrorMessage(); got != "" {
		t.Fatalf("success ErrorMessage() = %q, want empty", got)
	}

	rejected := Failure(&ProviderError{Kind: domain.ErrRejected, Message: "generic", Detail: "bad address"}, nil)
	if got := rejected.ErrorMessage(); got != "bad address" {
		t.Fatalf("rejected ErrorMessage() = %q, want detail", got)
	}

	plain := Failure(domain.ErrMissingRecipient, nil)
	if got := plain.ErrorMessage(); got != "validation error: missing recipient" {
		t.Fatalf("plain ErrorMessage() = %q", got)
	}

	if Failure(nil, []byte("not json")).Data != nil {
		t.Fatal("invalid JSON payload should be dropped")
	}
}
