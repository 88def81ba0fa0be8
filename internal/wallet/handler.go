package wallet

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/andino-pay/andino_pay/internal/api"
	"github.com/andino-pay/andino_pay/internal/clients"
	"github.com/andino-pay/andino_pay/internal/ledger"
)

var validate = validator.New()

// Handler exposes the register, load and balance endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Validation rules follow the registration schema: document at least six
// characters, names at least three, a well-formed email and a 7-15 digit phone.
type registerRequest struct {
	Document string `json:"document" validate:"required,min=6"`
	Names    string `json:"names" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,numeric,min=7,max=15"`
}

type identifyRequest struct {
	Document string `json:"document" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
}

type loadRequest struct {
	Document string          `json:"document" validate:"required"`
	Phone    string          `json:"phone" validate:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

// Register creates a new user and wallet pair.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return api.Render(c, api.Failure(api.CodeBadRequest, "Malformed registration payload."))
	}
	if err := validate.Struct(req); err != nil {
		return api.Render(c, api.Failure(api.CodeBadRequest, fmt.Sprintf("Validation failed: %v.", err)))
	}

	uw, err := h.service.Register(c.UserContext(), clients.RegisterInput{
		Document: req.Document,
		Names:    req.Names,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		return api.Render(c, failureEnvelope(err))
	}

	return api.Render(c, api.Success(api.CodeCreated, "User and wallet registered successfully.", uw))
}

// Load credits the identified wallet.
func (h *Handler) Load(c *fiber.Ctx) error {
	var req loadRequest
	if err := c.BodyParser(&req); err != nil {
		return api.Render(c, api.Failure(api.CodeBadRequest, "Malformed load payload."))
	}
	if err := validate.Struct(req); err != nil {
		return api.Render(c, api.Failure(api.CodeBadRequest, fmt.Sprintf("Validation failed: %v.", err)))
	}

	uw, err := h.service.Load(c.UserContext(), req.Document, req.Phone, req.Amount)
	if err != nil {
		return api.Render(c, failureEnvelope(err))
	}

	msg := fmt.Sprintf("Load of $%s successful.", req.Amount.StringFixed(2))
	return api.Render(c, api.Success(api.CodeOK, msg, uw))
}

// Balance returns the identified client's wallet snapshot.
func (h *Handler) Balance(c *fiber.Ctx) error {
	var req identifyRequest
	if err := c.BodyParser(&req); err != nil {
		return api.Render(c, api.Failure(api.CodeBadRequest, "Malformed balance payload."))
	}
	if err := validate.Struct(req); err != nil {
		return api.Render(c, api.Failure(api.CodeBadRequest, fmt.Sprintf("Validation failed: %v.", err)))
	}

	uw, err := h.service.Balance(c.UserContext(), req.Document, req.Phone)
	if err != nil {
		return api.Render(c, failureEnvelope(err))
	}

	return api.Render(c, api.Success(api.CodeOK, "Balance query successful.", uw))
}

func failureEnvelope(err error) api.Envelope {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return api.Failure(api.CodeBadRequest, "Invalid load amount.")
	case errors.Is(err, clients.ErrDuplicateClient):
		return api.Failure(api.CodeConflict, "Client is already registered.")
	case errors.Is(err, clients.ErrClientNotFound):
		return api.Failure(api.CodeNotFound, "Client not found or invalid credentials.")
	case errors.Is(err, ledger.ErrWalletNotFound):
		return api.Failure(api.CodeNotFound, "Wallet not found.")
	case errors.Is(err, clients.ErrUnavailable):
		return api.Failure(api.CodeUnavailable, "Wallet data service unavailable.")
	default:
		return api.Failure(api.CodeInternal, "Unexpected internal error.")
	}
}
