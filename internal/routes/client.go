package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/andino-pay/andino_pay/internal/wallet"
)

// RegisterClientRoutes wires client registration.
func RegisterClientRoutes(r fiber.Router, h *wallet.Handler) {
	r.Post("/client/register", h.Register)
}
