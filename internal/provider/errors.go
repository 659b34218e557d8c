package provider

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kursadbilgin/reminder-relay/internal/domain"
)

// ProviderError describes a failed provider call. Kind is one of the domain
// error sentinels and decides how the failure is reported to the caller.
type ProviderError struct {
	Kind       error
	StatusCode int
	Message    string
	Detail     string
	Cause      error
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "<nil>"
	}

	parts := make([]string, 0, 5)
	if e.Kind != nil {
		parts = append(parts, e.Kind.Error())
	} else {
		parts = append(parts, domain.ErrProvider.Error())
	}

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		parts = append(parts, msg)
	}
	if detail := strings.TrimSpace(e.Detail); detail != "" {
		parts = append(parts, detail)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *ProviderError) Unwrap() []error {
	if e == nil {
		return nil
	}

	kind := e.Kind
	if kind == nil {
		kind = domain.ErrProvider
	}
	if e.Cause == nil {
		return []error{kind}
	}
	return []error{kind, e.Cause}
}

// ClientMessage is the error text safe to return to API callers.
func (e *ProviderError) ClientMessage() string {
	if e == nil {
		return ""
	}
	if detail := strings.TrimSpace(e.Detail); detail != "" && errors.Is(e, domain.ErrRejected) {
		return detail
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		return msg
	}
	return domain.ErrProvider.Error()
}

// redactedError hides a secret embedded in an error message (request URLs
// carry the Telegram bot token) while keeping the chain for errors.Is.
type redactedError struct {
	msg   string
	cause error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.cause }

func redact(err error, secret string) error {
	if err == nil || secret == "" {
		return err
	}
	return &redactedError{
		msg:   strings.ReplaceAll(err.Error(), secret, "<redacted>"),
		cause: err,
	}
}
