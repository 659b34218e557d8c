package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/reminder-relay/internal/domain"
)

func (h *NotificationHandler) CreatePayment(c *fiber.Ctx) error {
	var req paymentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	intent := domain.NewIntent(domain.KindPaymentPreference, "", map[string]string{
		domain.FieldTitle:             req.Title,
		domain.FieldQuantity:          req.Quantity.String(),
		domain.FieldUnitPrice:         req.UnitPrice.String(),
		domain.FieldExternalReference: req.ExternalReference.String(),
	})
	if err := intent.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	return h.dispatch(c, intent)
}
