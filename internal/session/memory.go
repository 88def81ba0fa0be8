package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type record struct {
	walletID  string
	amount    decimal.Decimal
	token     string
	createdAt time.Time
}

// MemoryStore keeps pending payments in a sync.Map. Consumption relies on
// CompareAndDelete so the check-and-remove step is atomic per session without
// a store-wide lock.
type MemoryStore struct {
	sessions sync.Map // sessionID -> *record
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore builds an in-memory store with the given TTL. A zero ttl
// falls back to DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{ttl: ttl, now: time.Now}
}

// SetClock replaces the time source. Tests use it to age sessions
// deterministically.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.now = now
}

// Create stores a fresh pending payment and returns its identifiers.
func (s *MemoryStore) Create(_ context.Context, walletID string, amount decimal.Decimal) (Created, error) {
	token, err := newToken()
	if err != nil {
		return Created{}, err
	}

	id := uuid.NewString()
	s.sessions.Store(id, &record{
		walletID:  walletID,
		amount:    amount,
		token:     token,
		createdAt: s.now(),
	})

	return Created{SessionID: id, Token: token}, nil
}

// ValidateAndConsume checks the session and removes it when it matches and is
// unexpired. An expired record is removed too; a token mismatch leaves it in
// place.
func (s *MemoryStore) ValidateAndConsume(_ context.Context, sessionID, token string) (Pending, error) {
	v, ok := s.sessions.Load(sessionID)
	if !ok {
		return Pending{}, ErrSessionNotFound
	}
	rec := v.(*record)

	if s.now().Sub(rec.createdAt) > s.ttl {
		// Expiry consumes the session; losing the race to another deletion
		// still reports it gone.
		if s.sessions.CompareAndDelete(sessionID, v) {
			return Pending{}, ErrSessionExpired
		}
		return Pending{}, ErrSessionNotFound
	}

	if rec.token != token {
		return Pending{}, ErrTokenMismatch
	}

	// Only the goroutine that wins the delete gets the payload.
	if !s.sessions.CompareAndDelete(sessionID, v) {
		return Pending{}, ErrSessionNotFound
	}
	return Pending{WalletID: rec.walletID, Amount: rec.amount}, nil
}

// Delete removes the session if it still exists.
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.sessions.Delete(sessionID)
	return nil
}
