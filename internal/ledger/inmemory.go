package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// inMemoryLedger keeps wallets in a map guarded by an RWMutex; each wallet
// additionally carries its own mutex so deltas on different wallets never
// block each other.
type inMemoryLedger struct {
	mu      sync.RWMutex
	wallets map[string]*walletEntry
}

type walletEntry struct {
	mu sync.Mutex
	w  Wallet
}

// NewInMemory creates a concurrency-safe in-memory ledger. It backs the
// development wiring and the unit tests.
func NewInMemory() Ledger {
	return &inMemoryLedger{wallets: make(map[string]*walletEntry)}
}

func (l *inMemoryLedger) CreateWallet(_ context.Context, userID string) (Wallet, error) {
	now := time.Now().UTC()
	w := Wallet{
		ID:        uuid.NewString(),
		UserID:    userID,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.wallets[w.ID] = &walletEntry{w: w}
	return w, nil
}

func (l *inMemoryLedger) Get(_ context.Context, walletID string) (Wallet, error) {
	entry, err := l.entry(walletID)
	if err != nil {
		return Wallet{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.w, nil
}

func (l *inMemoryLedger) ApplyDelta(_ context.Context, walletID string, delta decimal.Decimal) (Wallet, error) {
	entry, err := l.entry(walletID)
	if err != nil {
		return Wallet{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	next := entry.w.Balance.Add(delta)
	if next.IsNegative() {
		return Wallet{}, ErrInsufficientFunds
	}

	entry.w.Balance = next
	entry.w.UpdatedAt = time.Now().UTC()
	return entry.w, nil
}

func (l *inMemoryLedger) entry(walletID string) (*walletEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.wallets[walletID]
	if !ok {
		return nil, ErrWalletNotFound
	}
	return entry, nil
}
