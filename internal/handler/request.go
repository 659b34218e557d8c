package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kursadbilgin/reminder-relay/internal/domain"
)

// flexString accepts a JSON string or number. Front-ends send chat ids and
// payment amounts either way.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*s = ""
		return nil
	}

	if trimmed[0] == '"' {
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return err
		}
		*s = flexString(value)
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(trimmed, &number); err != nil {
		return fmt.Errorf("expected string or number, got %s", trimmed)
	}
	*s = flexString(number.String())
	return nil
}

func (s flexString) String() string { return strings.TrimSpace(string(s)) }

// notificationRequest is the union of the reminder and free-form bodies
// accepted by the chat and email routes.
type notificationRequest struct {
	ChatID       flexString `json:"chatId"`
	Email        string     `json:"email"`
	To           string     `json:"to"`
	FirstName    string     `json:"nombre"`
	LastName     string     `json:"apellido"`
	Date         string     `json:"fecha"`
	Time         string     `json:"hora"`
	Practitioner string     `json:"odontologoNombre"`
	Subject      string     `json:"subject"`
	Text         string     `json:"text"`
}

type paymentRequest struct {
	Title             string     `json:"title"`
	Quantity          flexString `json:"quantity"`
	UnitPrice         flexString `json:"unit_price"`
	ExternalReference flexString `json:"external_reference"`
}

func (r notificationRequest) emailRecipient() string {
	if email := strings.TrimSpace(r.Email); email != "" {
		return email
	}
	return strings.TrimSpace(r.To)
}

func (r notificationRequest) fields() map[string]string {
	return map[string]string{
		domain.FieldFirstName:    r.FirstName,
		domain.FieldLastName:     r.LastName,
		domain.FieldDate:         r.Date,
		domain.FieldTime:         r.Time,
		domain.FieldPractitioner: r.Practitioner,
		domain.FieldSubject:      r.Subject,
		domain.FieldText:         r.Text,
	}
}
