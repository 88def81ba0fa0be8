package session

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

func setupRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, ttl)

	cleanup := func() {
		client.Close()
		mr.Close()
	}
	return store, cleanup
}

func TestRedisStore_CreateAndConsume(t *testing.T) {
	s, cleanup := setupRedisStore(t, DefaultTTL)
	defer cleanup()
	ctx := context.Background()

	walletID := uuid.NewString()
	amount := decimal.RequireFromString("40.00")

	created, err := s.Create(ctx, walletID, amount)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	pending, err := s.ValidateAndConsume(ctx, created.SessionID, created.Token)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if pending.WalletID != walletID {
		t.Fatalf("expected wallet %s, got %s", walletID, pending.WalletID)
	}
	if !pending.Amount.Equal(amount) {
		t.Fatalf("expected amount %s, got %s", amount, pending.Amount)
	}

	if _, err := s.ValidateAndConsume(ctx, created.SessionID, created.Token); err != ErrSessionNotFound {
		t.Fatalf("expected not found on replay, got %v", err)
	}
}

func TestRedisStore_TokenMismatchKeepsRecord(t *testing.T) {
	s, cleanup := setupRedisStore(t, DefaultTTL)
	defer cleanup()
	ctx := context.Background()

	created, err := s.Create(ctx, uuid.NewString(), decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	wrong := "000000"
	if wrong == created.Token {
		wrong = "000001"
	}
	if _, err := s.ValidateAndConsume(ctx, created.SessionID, wrong); err != ErrTokenMismatch {
		t.Fatalf("expected token mismatch, got %v", err)
	}
	if _, err := s.ValidateAndConsume(ctx, created.SessionID, created.Token); err != nil {
		t.Fatalf("retry with correct token: %v", err)
	}
}

func TestRedisStore_Expiry(t *testing.T) {
	s, cleanup := setupRedisStore(t, 5*time.Minute)
	defer cleanup()
	ctx := context.Background()

	now := time.Now()
	s.SetClock(func() time.Time { return now })

	created, err := s.Create(ctx, uuid.NewString(), decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	now = now.Add(5*time.Minute + time.Second)

	if _, err := s.ValidateAndConsume(ctx, created.SessionID, created.Token); err != ErrSessionExpired {
		t.Fatalf("expected expired, got %v", err)
	}
	if _, err := s.ValidateAndConsume(ctx, created.SessionID, created.Token); err != ErrSessionNotFound {
		t.Fatalf("expected not found after expiry, got %v", err)
	}
}

func TestRedisStore_UnknownSession(t *testing.T) {
	s, cleanup := setupRedisStore(t, DefaultTTL)
	defer cleanup()

	if _, err := s.ValidateAndConsume(context.Background(), uuid.NewString(), "123456"); err != ErrSessionNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRedisStore_DeleteIdempotent(t *testing.T) {
	s, cleanup := setupRedisStore(t, DefaultTTL)
	defer cleanup()
	ctx := context.Background()

	created, err := s.Create(ctx, uuid.NewString(), decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.Delete(ctx, created.SessionID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, created.SessionID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}
