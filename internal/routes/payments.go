package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/andino-pay/andino_pay/internal/payments"
)

// RegisterPaymentRoutes wires the two-phase payment endpoints. Confirmation
// attempts are rate limited per session.
func RegisterPaymentRoutes(r fiber.Router, h *payments.Handler, confirmLimit fiber.Handler) {
	r.Post("/payment/init", h.Init)
	r.Post("/payment/confirm", confirmLimit, h.Confirm)
}
