package payments

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/andino-pay/andino_pay/internal/api"
	"github.com/andino-pay/andino_pay/internal/clients"
	"github.com/andino-pay/andino_pay/internal/ledger"
	"github.com/andino-pay/andino_pay/internal/session"
)

var validate = validator.New()

// Handler exposes the payment init and confirm endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a payment handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type initRequest struct {
	Document string          `json:"document" validate:"required"`
	Phone    string          `json:"phone" validate:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

type confirmRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	Token     string `json:"token" validate:"required"`
}

// Init opens a payment session for the identified client.
func (h *Handler) Init(c *fiber.Ctx) error {
	var req initRequest
	if err := c.BodyParser(&req); err != nil {
		return api.Render(c, api.Failure(api.CodeBadRequest, "Malformed payment payload."))
	}
	if err := validate.Struct(req); err != nil {
		return api.Render(c, api.Failure(api.CodeBadRequest, fmt.Sprintf("Validation failed: %v.", err)))
	}

	res, err := h.service.Init(c.UserContext(), req.Document, req.Phone, req.Amount)
	if err != nil {
		return api.Render(c, initFailure(err))
	}

	return api.Render(c, api.Success(api.CodePending, "Payment initiated. Confirmation with token required.", res))
}

// Confirm validates the session token and applies the debit.
func (h *Handler) Confirm(c *fiber.Ctx) error {
	var req confirmRequest
	if err := c.BodyParser(&req); err != nil {
		return api.Render(c, api.Failure(api.CodeBadRequest, "Malformed confirmation payload."))
	}
	if err := validate.Struct(req); err != nil {
		return api.Render(c, api.Failure(api.CodeBadRequest, fmt.Sprintf("Validation failed: %v.", err)))
	}

	receipt, err := h.service.Confirm(c.UserContext(), req.SessionID, req.Token)
	if err != nil {
		return api.Render(c, confirmFailure(err))
	}

	msg := fmt.Sprintf("Payment of $%s confirmed and applied.", receipt.Amount.StringFixed(2))
	return api.Render(c, api.Success(api.CodeOK, msg, receipt))
}

func initFailure(err error) api.Envelope {
	var insufficient InsufficientFundsError
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return api.Failure(api.CodeBadRequest, "Invalid payment amount.")
	case errors.As(err, &insufficient):
		return api.Failure(api.CodeForbidden,
			fmt.Sprintf("Insufficient funds. Current balance: $%s.", insufficient.Balance.StringFixed(2)))
	case errors.Is(err, clients.ErrClientNotFound):
		return api.Failure(api.CodeNotFound, "Client not found or invalid credentials.")
	case errors.Is(err, clients.ErrUnavailable):
		return api.Failure(api.CodeUnavailable, "Wallet data service unavailable.")
	default:
		return api.Failure(api.CodeInternal, "Unexpected internal error.")
	}
}

func confirmFailure(err error) api.Envelope {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return api.Failure(api.CodeNotFound, "Payment session not found.")
	case errors.Is(err, session.ErrSessionExpired):
		return api.Failure(api.CodeTimeout, "Payment session expired.")
	case errors.Is(err, session.ErrTokenMismatch):
		return api.Failure(api.CodeBadToken, "Invalid confirmation token.")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return api.Failure(api.CodeForbidden, "Insufficient funds to complete the operation.")
	case errors.Is(err, ledger.ErrWalletNotFound):
		return api.Failure(api.CodeNotFound, "Wallet not found.")
	case errors.Is(err, clients.ErrUnavailable):
		return api.Failure(api.CodeUnavailable, "Wallet data service unavailable.")
	default:
		return api.Failure(api.CodeInternal, "Unexpected internal error.")
	}
}
