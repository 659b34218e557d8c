package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/reminder-relay/internal/domain"
	"github.com/kursadbilgin/reminder-relay/internal/observability"
	"github.com/kursadbilgin/reminder-relay/internal/provider"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, intent domain.Intent) provider.Result
}

type NotificationHandler struct {
	dispatcher Dispatcher
}

func NewNotificationHandler(dispatcher Dispatcher) (*NotificationHandler, error) {
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	return &NotificationHandler{dispatcher: dispatcher}, nil
}

func RegisterNotificationRoutes(router fiber.Router, dispatcher Dispatcher) error {
	h, err := NewNotificationHandler(dispatcher)
	if err != nil {
		return err
	}

	api := router.Group("/api")
	api.Post("/avisos/telegram", h.SendChatReminder)
	api.Post("/send-telegram", h.SendChatMessage)
	api.Post("/avisos/email", h.SendEmailReminder)
	api.Post("/send-email", h.SendEmailMessage)
	api.Post("/create-payment", h.CreatePayment)

	return nil
}

type successResponse struct {
	OK      bool            `json:"ok"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

type errorResponse struct {
	OK    bool            `json:"ok"`
	Error string          `json:"error"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func (h *NotificationHandler) SendChatReminder(c *fiber.Ctx) error {
	var req notificationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	chatID := req.ChatID.String()
	if chatID == "" {
		return badRequest(c, "chatId is required")
	}

	intent := domain.NewIntent(domain.KindChatReminder, chatID, req.fields())
	return h.dispatch(c, intent)
}

func (h *NotificationHandler) SendChatMessage(c *fiber.Ctx) error {
	var req notificationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	chatID := req.ChatID.String()
	if chatID == "" {
		return badRequest(c, "chatId is required")
	}
	if strings.TrimSpace(req.Text) == "" {
		return badRequest(c, "text is required")
	}

	intent := domain.NewIntent(domain.KindChatReminder, chatID, map[string]string{
		domain.FieldText: req.Text,
	})
	return h.dispatch(c, intent)
}

func (h *NotificationHandler) SendEmailReminder(c *fiber.Ctx) error {
	var req notificationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	recipient := req.emailRecipient()
	if recipient == "" {
		return badRequest(c, "patient email is required")
	}

	intent := domain.NewIntent(domain.KindEmailReminder, recipient, req.fields())
	return h.dispatch(c, intent)
}

func (h *NotificationHandler) SendEmailMessage(c *fiber.Ctx) error {
	var req notificationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	recipient := req.emailRecipient()
	if recipient == "" {
		return badRequest(c, "to is required")
	}
	if strings.TrimSpace(req.Text) == "" {
		return badRequest(c, "text is required")
	}

	intent := domain.NewIntent(domain.KindEmailReminder, recipient, map[string]string{
		domain.FieldSubject: req.Subject,
		domain.FieldText:    req.Text,
	})
	return h.dispatch(c, intent)
}

func (h *NotificationHandler) dispatch(c *fiber.Ctx, intent domain.Intent) error {
	ctx := observability.WithCorrelationID(c.UserContext(), requestCorrelationID(c))
	result := h.dispatcher.Dispatch(ctx, intent)
	return writeResult(c, intent.Kind(), result)
}

// writeResult translates a dispatch result into the client envelope. Payment
// preferences are returned as the provider's raw JSON.
func writeResult(c *fiber.Ctx, kind domain.Kind, result provider.Result) error {
	if !result.OK {
		response := errorResponse{OK: false, Error: result.ErrorMessage()}
		// Only chat failures echo the upstream payload.
		if kind == domain.KindChatReminder {
			response.Data = result.Data
		}
		return c.Status(toHTTPStatus(result.Err)).JSON(response)
	}

	switch kind {
	case domain.KindPaymentPreference:
		body := []byte(result.Data)
		if len(body) == 0 {
			body = []byte("{}")
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Status(fiber.StatusOK).Send(body)
	case domain.KindEmailReminder:
		return c.Status(fiber.StatusOK).JSON(successResponse{OK: true, Message: result.Message})
	default:
		return c.Status(fiber.StatusOK).JSON(successResponse{OK: true, Data: result.Data})
	}
}

func toHTTPStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrRejected):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return nil
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorResponse{
		OK:    false,
		Error: message,
	})
}

func requestCorrelationID(c *fiber.Ctx) string {
	if value := strings.TrimSpace(c.Get(fiber.HeaderXRequestID)); value != "" {
		return value
	}
	if value, ok := c.Locals("requestid").(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}
