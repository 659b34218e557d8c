package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks client input problems (missing or malformed fields).
	ErrValidation = errors.New("validation error")
	// ErrMissingRecipient is returned when a chat or email intent has no recipient.
	ErrMissingRecipient = fmt.Errorf("%w: missing recipient", ErrValidation)
	// ErrNotConfigured marks a provider whose credentials are absent from the process config.
	ErrNotConfigured = errors.New("provider not configured")
	// ErrProvider marks a failure reported by the upstream provider.
	ErrProvider = errors.New("provider error")
	// ErrRejected marks a provider-side validation rejection of the request.
	ErrRejected = errors.New("provider rejected request")
	// ErrTransport marks a network or decode failure while reaching a provider.
	ErrTransport = errors.New("provider unreachable")
)
