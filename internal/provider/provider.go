package provider

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/kursadbilgin/reminder-relay/internal/domain"
)

// Provider is the outbound port for one intent kind.
type Provider interface {
	Kind() domain.Kind
	// Ready reports missing configuration without touching the network.
	Ready() error
	// Send performs exactly one outbound call. Failures are reported in the
	// returned Result, never as a panic or a separate error value.
	Send(ctx context.Context, intent domain.Intent) Result
}

// Result is the normalized outcome of a provider call.
type Result struct {
	OK      bool
	Data    json.RawMessage
	Message string
	Err     error
}

func Success(data []byte, message string) Result {
	return Result{
		OK:      true,
		Data:    rawJSON(data),
		Message: message,
	}
}

func Failure(err error, data []byte) Result {
	if err == nil {
		err = domain.ErrProvider
	}
	return Result{
		Data: rawJSON(data),
		Err:  err,
	}
}

// ErrorMessage returns the caller-facing description of a failed result.
func (r Result) ErrorMessage() string {
	if r.OK || r.Err == nil {
		return ""
	}

	var providerErr *ProviderError
	if errors.As(r.Err, &providerErr) {
		return providerErr.ClientMessage()
	}
	return r.Err.Error()
}

func rawJSON(data []byte) json.RawMessage {
	if len(data) == 0 || !json.Valid(data) {
		return nil
	}
	return json.RawMessage(data)
}
