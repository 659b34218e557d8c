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

const telegramErrorMessage = "Telegram API error"

type telegramRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// TelegramProvider delivers chat reminders through the Telegram Bot API.
type TelegramProvider struct {
	client  *resty.Client
	token   string
	baseURL string
}

var _ Provider = (*TelegramProvider)(nil)

func NewTelegramProvider(cfg config.ProviderConfig, client *resty.Client) (*TelegramProvider, error) {
	baseURL, err := normalizeBaseURL("telegram", cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	client, err = prepareClient(client)
	if err != nil {
		return nil, err
	}

	return &TelegramProvider{
		client:  client,
		token:   strings.TrimSpace(cfg.Token),
		baseURL: baseURL,
	}, nil
}

func (p *TelegramProvider) Kind() domain.Kind { return domain.KindChatReminder }

func (p *TelegramProvider) Ready() error {
	if p == nil || p.client == nil {
		return fmt.Errorf("%w: telegram provider is not initialized", domain.ErrNotConfigured)
	}
	if p.token == "" {
		return fmt.Errorf("%w: TELEGRAM_TOKEN is not set", domain.ErrNotConfigured)
	}
	return nil
}

func (p *TelegramProvider) Send(ctx context.Context, intent domain.Intent) Result {
	if err := p.Ready(); err != nil {
		return Failure(err, nil)
	}

	response, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(telegramRequest{
			ChatID: intent.Recipient(),
			Text:   intent.ChatText(),
		}).
		Post(p.sendMessageURL())
	if err != nil {
		return Failure(&ProviderError{
			Kind:    domain.ErrTransport,
			Message: "Telegram API unreachable",
			Cause:   redact(err, p.token),
		}, nil)
	}

	raw := response.Body()
	var payload telegramResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Failure(&ProviderError{
			Kind:       domain.ErrProvider,
			StatusCode: response.StatusCode(),
			Message:    "Telegram API returned a malformed payload",
			Cause:      err,
		}, nil)
	}

	if !payload.OK {
		return Failure(&ProviderError{
			Kind:       domain.ErrProvider,
			StatusCode: response.StatusCode(),
			Message:    telegramErrorMessage,
			Detail:     payload.Description,
		}, raw)
	}

	return Success(raw, "")
}

func (p *TelegramProvider) sendMessageURL() string {
	return fmt.Sprintf("%s/bot%s/sendMessage", p.baseURL, p.token)
}
