package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrWalletNotFound indicates the referenced wallet does not exist.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrInsufficientFunds occurs when a debit would drive the stored balance
	// below zero. The balance is left unchanged.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Wallet is the authoritative stored-value record. Balance is a fixed-point
// amount with two decimal places and is never negative.
type Wallet struct {
	ID        string
	UserID    string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Ledger is the only component allowed to mutate wallet balances.
//
// ApplyDelta must serialize concurrent calls on the same wallet: the stored
// balance plus the delta is computed under a per-wallet lock and rejected
// atomically when the result would be negative. Deltas on distinct wallets
// do not contend. A positive delta credits the wallet, a negative one debits it.
type Ledger interface {
	CreateWallet(ctx context.Context, userID string) (Wallet, error)
	Get(ctx context.Context, walletID string) (Wallet, error)
	ApplyDelta(ctx context.Context, walletID string, delta decimal.Decimal) (Wallet, error)
}
