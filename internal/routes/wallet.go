package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/andino-pay/andino_pay/internal/wallet"
)

// RegisterWalletRoutes wires load and balance endpoints. The optional
// idempotent-replay middleware guards the load against client retries.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler, idem fiber.Handler) {
	if idem != nil {
		r.Post("/wallet/load", idem, h.Load)
	} else {
		r.Post("/wallet/load", h.Load)
	}
	r.Post("/wallet/balance", h.Balance)
}
