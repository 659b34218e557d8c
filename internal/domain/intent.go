package domain

import (
	"fmt"
	"math"
	"net/mail"
	"strconv"
	"strings"
)

// Kind identifies which provider an intent is routed to.
type Kind string

const (
	KindChatReminder      Kind = "CHAT_REMINDER"
	KindEmailReminder     Kind = "EMAIL_REMINDER"
	KindPaymentPreference Kind = "PAYMENT_PREFERENCE"
)

func (k Kind) String() string { return string(k) }

func (k Kind) IsValid() bool {
	switch k {
	case KindChatReminder, KindEmailReminder, KindPaymentPreference:
		return true
	}
	return false
}

// Intent field names.
const (
	FieldFirstName         = "firstName"
	FieldLastName          = "lastName"
	FieldDate              = "date"
	FieldTime              = "time"
	FieldPractitioner      = "practitioner"
	FieldSubject           = "subject"
	FieldText              = "text"
	FieldTitle             = "title"
	FieldQuantity          = "quantity"
	FieldUnitPrice         = "unitPrice"
	FieldExternalReference = "externalReference"
)

// Intent describes a single notification or payment request. It is built once
// per inbound request and never mutated afterwards.
type Intent struct {
	kind      Kind
	recipient string
	fields    map[string]string
}

// NewIntent copies fields so later changes to the caller's map are not observed.
// Blank values are dropped.
func NewIntent(kind Kind, recipient string, fields map[string]string) Intent {
	copied := make(map[string]string, len(fields))
	for key, value := range fields {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			copied[key] = trimmed
		}
	}

	return Intent{
		kind:      kind,
		recipient: strings.TrimSpace(recipient),
		fields:    copied,
	}
}

func (i Intent) Kind() Kind { return i.kind }

func (i Intent) Recipient() string { return i.recipient }

// Field returns the trimmed value of name, or "" when absent.
func (i Intent) Field(name string) string { return i.fields[name] }

// Fields returns a copy of the intent's fields.
func (i Intent) Fields() map[string]string {
	copied := make(map[string]string, len(i.fields))
	for key, value := range i.fields {
		copied[key] = value
	}
	return copied
}

func (i Intent) Validate() error {
	if !i.kind.IsValid() {
		return fmt.Errorf("%w: invalid kind %q", ErrValidation, i.kind)
	}

	switch i.kind {
	case KindChatReminder:
		if i.recipient == "" {
			return ErrMissingRecipient
		}
	case KindEmailReminder:
		if i.recipient == "" {
			return ErrMissingRecipient
		}
		if _, err := mail.ParseAddress(i.recipient); err != nil {
			return fmt.Errorf("%w: invalid email address %q", ErrValidation, i.recipient)
		}
	case KindPaymentPreference:
		if i.Field(FieldTitle) == "" {
			return fmt.Errorf("%w: title is required", ErrValidation)
		}
		if _, err := i.Quantity(); err != nil {
			return err
		}
		if _, err := i.UnitPrice(); err != nil {
			return err
		}
	}

	return nil
}

// Quantity parses the payment item quantity.
func (i Intent) Quantity() (int, error) {
	raw := i.Field(FieldQuantity)
	if raw == "" {
		return 0, fmt.Errorf("%w: quantity is required", ErrValidation)
	}

	quantity, err := strconv.Atoi(raw)
	if err != nil || quantity < 1 {
		return 0, fmt.Errorf("%w: quantity must be a positive integer", ErrValidation)
	}
	return quantity, nil
}

// UnitPrice parses the payment item unit price.
func (i Intent) UnitPrice() (float64, error) {
	raw := i.Field(FieldUnitPrice)
	if raw == "" {
		return 0, fmt.Errorf("%w: unit_price is required", ErrValidation)
	}

	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, fmt.Errorf("%w: unit_price must be a positive number", ErrValidation)
	}
	return price, nil
}
