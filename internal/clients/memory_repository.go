package clients

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/andino-pay/andino_pay/internal/ledger"
)

type memoryRepository struct {
	mu     sync.RWMutex
	users  []User
	byUser map[string]string // userID -> walletID
	ledger ledger.Ledger
}

// NewMemoryRepository builds an in-memory registry over the given ledger. The
// ledger keeps owning balances; this repository only maps identities to
// wallets, the same split the Postgres wiring has.
func NewMemoryRepository(led ledger.Ledger) Repository {
	return &memoryRepository{byUser: make(map[string]string), ledger: led}
}

func (r *memoryRepository) RegisterUserAndWallet(ctx context.Context, input RegisterInput) (UserWallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Document == input.Document || u.Phone == input.Phone {
			return UserWallet{}, ErrDuplicateClient
		}
	}

	user := User{
		ID:        uuid.NewString(),
		Document:  input.Document,
		Names:     input.Names,
		Email:     input.Email,
		Phone:     input.Phone,
		CreatedAt: time.Now().UTC(),
	}

	w, err := r.ledger.CreateWallet(ctx, user.ID)
	if err != nil {
		return UserWallet{}, fmt.Errorf("create wallet: %w", err)
	}

	r.users = append(r.users, user)
	r.byUser[user.ID] = w.ID

	return UserWallet{
		Document:  user.Document,
		Names:     user.Names,
		Email:     user.Email,
		Phone:     user.Phone,
		WalletID:  w.ID,
		Balance:   w.Balance,
		UpdatedAt: w.UpdatedAt,
	}, nil
}

func (r *memoryRepository) FindWalletAndUser(ctx context.Context, document, phone string) (UserWallet, error) {
	r.mu.RLock()
	var found *User
	for i := range r.users {
		if r.users[i].Document == document && r.users[i].Phone == phone {
			found = &r.users[i]
			break
		}
	}
	var walletID string
	if found != nil {
		walletID = r.byUser[found.ID]
	}
	r.mu.RUnlock()

	if found == nil {
		return UserWallet{}, ErrClientNotFound
	}

	w, err := r.ledger.Get(ctx, walletID)
	if err != nil {
		return UserWallet{}, fmt.Errorf("read wallet: %w", err)
	}

	return UserWallet{
		Document:  found.Document,
		Names:     found.Names,
		Email:     found.Email,
		Phone:     found.Phone,
		WalletID:  w.ID,
		Balance:   w.Balance,
		UpdatedAt: w.UpdatedAt,
	}, nil
}
