package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultTTL is how long a pending payment stays confirmable.
const DefaultTTL = 5 * time.Minute

var (
	// ErrSessionNotFound indicates no pending payment exists for the session id,
	// including sessions already consumed by a previous confirmation.
	ErrSessionNotFound = errors.New("payment session not found")

	// ErrSessionExpired indicates the session outlived its TTL. The record is
	// removed as part of the failed validation.
	ErrSessionExpired = errors.New("payment session expired")

	// ErrTokenMismatch indicates the confirmation token is wrong. The record
	// stays in place so the caller may retry with the correct token.
	ErrTokenMismatch = errors.New("confirmation token mismatch")
)

// Created carries the identifiers handed back to the caller at init time. The
// token travels out of band; presenting both is what confirms the payment.
type Created struct {
	SessionID string
	Token     string
}

// Pending is the payload released by a successful validate-and-consume.
type Pending struct {
	WalletID string
	Amount   decimal.Decimal
}

// Store holds short-lived, single-use pending-payment records.
//
// ValidateAndConsume is atomic: find, check and remove happen in one
// indivisible step, so of two concurrent confirmations with the correct token
// only the first succeeds and the second observes ErrSessionNotFound.
type Store interface {
	Create(ctx context.Context, walletID string, amount decimal.Decimal) (Created, error)
	ValidateAndConsume(ctx context.Context, sessionID, token string) (Pending, error)
	Delete(ctx context.Context, sessionID string) error
}

// newToken draws a six-digit confirmation code from crypto/rand.
func newToken() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
