package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestInMemoryLedger_ApplyDelta(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	w, err := l.CreateWallet(ctx, uuid.NewString())
	if err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	if !w.Balance.IsZero() {
		t.Fatalf("expected zero starting balance, got %s", w.Balance)
	}

	updated, err := l.ApplyDelta(ctx, w.ID, decimal.RequireFromString("25.50"))
	if err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if !updated.Balance.Equal(decimal.RequireFromString("25.50")) {
		t.Fatalf("expected balance 25.50, got %s", updated.Balance)
	}

	updated, err = l.ApplyDelta(ctx, w.ID, decimal.RequireFromString("-10.00"))
	if err != nil {
		t.Fatalf("debit failed: %v", err)
	}
	if !updated.Balance.Equal(decimal.RequireFromString("15.50")) {
		t.Fatalf("expected balance 15.50, got %s", updated.Balance)
	}
}

func TestInMemoryLedger_RejectsNegativeResult(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	w, _ := l.CreateWallet(ctx, uuid.NewString())
	SeedWallet(l, w.ID, decimal.RequireFromString("10.00"))

	if _, err := l.ApplyDelta(ctx, w.ID, decimal.RequireFromString("-10.01")); err != ErrInsufficientFunds {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	// rejected delta must leave the stored balance unchanged
	got, err := l.Get(ctx, w.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Balance.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("balance changed after rejected delta: %s", got.Balance)
	}
}

func TestInMemoryLedger_UnknownWallet(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	if _, err := l.Get(ctx, uuid.NewString()); err != ErrWalletNotFound {
		t.Fatalf("expected wallet not found, got %v", err)
	}
	if _, err := l.ApplyDelta(ctx, uuid.NewString(), decimal.NewFromInt(1)); err != ErrWalletNotFound {
		t.Fatalf("expected wallet not found, got %v", err)
	}
}

func TestInMemoryLedger_ConcurrentDeltas(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	w, _ := l.CreateWallet(ctx, uuid.NewString())
	SeedWallet(l, w.ID, decimal.RequireFromString("100.00"))

	const workers = 50
	credit := decimal.RequireFromString("3.25")
	debit := decimal.RequireFromString("-2.00")

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := l.ApplyDelta(ctx, w.ID, credit); err != nil {
				t.Errorf("credit failed: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := l.ApplyDelta(ctx, w.ID, debit); err != nil {
				t.Errorf("debit failed: %v", err)
			}
		}()
	}
	wg.Wait()

	// 100.00 + 50*3.25 - 50*2.00 = 162.50; no update may be lost.
	want := decimal.RequireFromString("162.50")
	got, err := l.Get(ctx, w.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Balance.Equal(want) {
		t.Fatalf("expected balance %s after concurrent deltas, got %s", want, got.Balance)
	}
}

func TestInMemoryLedger_ConcurrentDebitsNeverGoNegative(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	w, _ := l.CreateWallet(ctx, uuid.NewString())
	SeedWallet(l, w.ID, decimal.RequireFromString("50.00"))

	const workers = 20
	debit := decimal.RequireFromString("-10.00")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.ApplyDelta(ctx, w.ID, debit); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if accepted != 5 {
		t.Fatalf("expected exactly 5 accepted debits, got %d", accepted)
	}
	got, _ := l.Get(ctx, w.ID)
	if !got.Balance.IsZero() {
		t.Fatalf("expected zero balance, got %s", got.Balance)
	}
	if got.Balance.IsNegative() {
		t.Fatalf("balance went negative: %s", got.Balance)
	}
}
