package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/kursadbilgin/reminder-relay/internal/config"
	"github.com/kursadbilgin/reminder-relay/internal/domain"
)

const mercadoPagoPreferencesPath = "/checkout/preferences"

type preferenceItem struct {
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type preferenceRequest struct {
	Items             []preferenceItem `json:"items"`
	ExternalReference string           `json:"external_reference,omitempty"`
}

type mercadoPagoErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// MercadoPagoProvider creates checkout preferences. Successful responses are
// returned to the caller unmodified.
type MercadoPagoProvider struct {
	client  *resty.Client
	token   string
	baseURL string
}

var _ Provider = (*MercadoPagoProvider)(nil)

func NewMercadoPagoProvider(cfg config.ProviderConfig, client *resty.Client) (*MercadoPagoProvider, error) {
	baseURL, err := normalizeBaseURL("mercadopago", cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	client, err = prepareClient(client)
	if err != nil {
		return nil, err
	}

	return &MercadoPagoProvider{
		client:  client,
		token:   strings.TrimSpace(cfg.Token),
		baseURL: baseURL,
	}, nil
}

func (p *MercadoPagoProvider) Kind() domain.Kind { return domain.KindPaymentPreference }

func (p *MercadoPagoProvider) Ready() error {
	if p == nil || p.client == nil {
		return fmt.Errorf("%w: mercadopago provider is not initialized", domain.ErrNotConfigured)
	}
	if p.token == "" {
		return fmt.Errorf("%w: MP_ACCESS_TOKEN is not set", domain.ErrNotConfigured)
	}
	return nil
}

func (p *MercadoPagoProvider) Send(ctx context.Context, intent domain.Intent) Result {
	if err := p.Ready(); err != nil {
		return Failure(err, nil)
	}

	quantity, err := intent.Quantity()
	if err != nil {
		return Failure(err, nil)
	}
	unitPrice, err := intent.UnitPrice()
	if err != nil {
		return Failure(err, nil)
	}

	response, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(p.token).
		SetHeader("Content-Type", "application/json").
		SetBody(preferenceRequest{
			Items: []preferenceItem{{
				Title:     intent.Field(domain.FieldTitle),
				Quantity:  quantity,
				UnitPrice: unitPrice,
			}},
			ExternalReference: intent.Field(domain.FieldExternalReference),
		}).
		Post(p.baseURL + mercadoPagoPreferencesPath)
	if err != nil {
		return Failure(&ProviderError{
			Kind:    domain.ErrTransport,
			Message: "Payment provider unreachable",
			Cause:   redact(err, p.token),
		}, nil)
	}

	statusCode := response.StatusCode()
	raw := response.Body()
	if !isSuccessStatus(statusCode) {
		return Failure(mercadoPagoError(statusCode, raw), raw)
	}
	if !json.Valid(raw) {
		return Failure(&ProviderError{
			Kind:       domain.ErrProvider,
			StatusCode: statusCode,
			Message:    "Payment provider returned a malformed payload",
		}, nil)
	}

	return Success(raw, "")
}

func mercadoPagoError(statusCode int, raw []byte) *ProviderError {
	providerErr := &ProviderError{
		Kind:       domain.ErrProvider,
		StatusCode: statusCode,
		Message:    "Payment provider error",
	}

	var payload mercadoPagoErrorResponse
	if err := json.Unmarshal(raw, &payload); err == nil {
		if detail := strings.TrimSpace(payload.Message); detail != "" {
			providerErr.Detail = detail
		} else {
			providerErr.Detail = strings.TrimSpace(payload.Error)
		}
	}

	return providerErr
}
