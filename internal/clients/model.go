package clients

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrDuplicateClient indicates a user with the same document or phone is
	// already registered.
	ErrDuplicateClient = errors.New("client already registered")

	// ErrClientNotFound indicates no user matches the document+phone pair.
	ErrClientNotFound = errors.New("client not found")

	// ErrUnavailable indicates the wallet-data backend could not be reached in
	// time. Callers surface it instead of transport-specific failures.
	ErrUnavailable = errors.New("wallet data service unavailable")
)

// User is a registered wallet owner. Document and Phone are unique; the pair
// is the external lookup key.
type User struct {
	ID        string
	Document  string
	Names     string
	Email     string
	Phone     string
	CreatedAt time.Time
}

// RegisterInput carries the data required to register a user and wallet.
type RegisterInput struct {
	Document string
	Names    string
	Email    string
	Phone    string
}

// UserWallet is the combined snapshot the orchestrator works with.
type UserWallet struct {
	Document  string          `json:"document"`
	Names     string          `json:"names"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone"`
	WalletID  string          `json:"walletId"`
	Balance   decimal.Decimal `json:"balance"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
