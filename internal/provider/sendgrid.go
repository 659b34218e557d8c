package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	netmail "net/mail"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/kursadbilgin/reminder-relay/internal/config"
	"github.com/kursadbilgin/reminder-relay/internal/domain"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendGridSendPath      = "/v3/mail/send"
	sendGridSentMessage   = "Email enviado correctamente"
	sendGridGenericFailed = "Email provider error"
)

type sendGridErrorResponse struct {
	Errors []struct {
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"errors"`
}

// SendGridProvider delivers email reminders through the SendGrid v3 API.
type SendGridProvider struct {
	client  *resty.Client
	apiKey  string
	sender  string
	baseURL string
	clinic  string
}

var _ Provider = (*SendGridProvider)(nil)

func NewSendGridProvider(cfg config.ProviderConfig, clinic string, client *resty.Client) (*SendGridProvider, error) {
	baseURL, err := normalizeBaseURL("sendgrid", cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	client, err = prepareClient(client)
	if err != nil {
		return nil, err
	}

	return &SendGridProvider{
		client:  client,
		apiKey:  strings.TrimSpace(cfg.Token),
		sender:  strings.TrimSpace(cfg.Sender),
		baseURL: baseURL,
		clinic:  strings.TrimSpace(clinic),
	}, nil
}

func (p *SendGridProvider) Kind() domain.Kind { return domain.KindEmailReminder }

func (p *SendGridProvider) Ready() error {
	if p == nil || p.client == nil {
		return fmt.Errorf("%w: sendgrid provider is not initialized", domain.ErrNotConfigured)
	}
	if p.apiKey == "" || p.sender == "" {
		return fmt.Errorf("%w: SENDGRID_API_KEY or SENDGRID_FROM is not set", domain.ErrNotConfigured)
	}
	return nil
}

func (p *SendGridProvider) Send(ctx context.Context, intent domain.Intent) Result {
	if err := p.Ready(); err != nil {
		return Failure(err, nil)
	}

	message := mail.NewV3MailInit(
		emailAddress(p.sender),
		intent.EmailSubject(p.clinic),
		emailAddress(intent.Recipient()),
		mail.NewContent("text/plain", intent.EmailText(p.clinic)),
	)

	response, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(p.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(mail.GetRequestBody(message)).
		Post(p.baseURL + sendGridSendPath)
	if err != nil {
		return Failure(&ProviderError{
			Kind:    domain.ErrTransport,
			Message: "Email provider unreachable",
			Cause:   redact(err, p.apiKey),
		}, nil)
	}

	statusCode := response.StatusCode()
	raw := response.Body()
	if isSuccessStatus(statusCode) {
		return Success(raw, sendGridSentMessage)
	}

	return Failure(sendGridError(statusCode, raw), raw)
}

// sendGridError uses the first structured error message when SendGrid returns
// one. Client-side rejections become ErrRejected; auth and server failures stay
// provider errors.
func sendGridError(statusCode int, raw []byte) *ProviderError {
	providerErr := &ProviderError{
		Kind:       domain.ErrProvider,
		StatusCode: statusCode,
		Message:    sendGridGenericFailed,
	}

	var payload sendGridErrorResponse
	if err := json.Unmarshal(raw, &payload); err != nil || len(payload.Errors) == 0 {
		return providerErr
	}

	detail := strings.TrimSpace(payload.Errors[0].Message)
	if detail == "" {
		return providerErr
	}
	providerErr.Detail = detail

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
	default:
		if statusCode >= http.StatusBadRequest && statusCode < http.StatusInternalServerError {
			providerErr.Kind = domain.ErrRejected
		}
	}

	return providerErr
}

// emailAddress accepts either a bare address or "Name <address>".
func emailAddress(raw string) *mail.Email {
	if parsed, err := netmail.ParseAddress(raw); err == nil {
		return mail.NewEmail(parsed.Name, parsed.Address)
	}
	return mail.NewEmail("", raw)
}
