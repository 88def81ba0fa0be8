package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresLedger persists wallet balances in PostgreSQL. ApplyDelta takes a
// row-level lock on the wallet so concurrent deltas on the same wallet
// serialize while other wallets proceed unimpeded.
type PostgresLedger struct {
	db *pgxpool.Pool
}

// NewPostgresLedger constructs a Postgres-backed ledger implementation.
func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// CreateWallet inserts a zero-balance wallet for the given user.
func (l *PostgresLedger) CreateWallet(ctx context.Context, userID string) (Wallet, error) {
	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return Wallet{}, fmt.Errorf("parse user id: %w", err)
	}

	now := time.Now().UTC()
	w := Wallet{ID: uuid.NewString(), UserID: userID, Balance: decimal.Zero, CreatedAt: now, UpdatedAt: now}

	_, err = l.db.Exec(ctx, `INSERT INTO wallets (id, user_id, balance, created_at, updated_at)
        VALUES ($1, $2, 0, $3, $3)`, uuid.MustParse(w.ID), ownerID, now)
	if err != nil {
		return Wallet{}, fmt.Errorf("insert wallet: %w", err)
	}
	return w, nil
}

// Get fetches the wallet without locking it.
func (l *PostgresLedger) Get(ctx context.Context, walletID string) (Wallet, error) {
	id, err := uuid.Parse(walletID)
	if err != nil {
		return Wallet{}, ErrWalletNotFound
	}
	const query = `SELECT id, user_id, balance::text, created_at, updated_at FROM wallets WHERE id = $1`
	return l.scanWallet(l.db.QueryRow(ctx, query, id))
}

// ApplyDelta adds delta to the stored balance inside a transaction holding a
// FOR UPDATE lock on the wallet row. A result below zero aborts with
// ErrInsufficientFunds and leaves the row untouched.
func (l *PostgresLedger) ApplyDelta(ctx context.Context, walletID string, delta decimal.Decimal) (Wallet, error) {
	id, err := uuid.Parse(walletID)
	if err != nil {
		return Wallet{}, ErrWalletNotFound
	}

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Wallet{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	const lockQuery = `SELECT id, user_id, balance::text, created_at, updated_at FROM wallets WHERE id = $1 FOR UPDATE`
	w, err := l.scanWallet(tx.QueryRow(ctx, lockQuery, id))
	if err != nil {
		return Wallet{}, err
	}

	next := w.Balance.Add(delta)
	if next.IsNegative() {
		return Wallet{}, ErrInsufficientFunds
	}

	now := time.Now().UTC()
	if _, err := tx.Exec(ctx, `UPDATE wallets SET balance = $2::numeric, updated_at = $3 WHERE id = $1`,
		id, next.StringFixed(2), now); err != nil {
		return Wallet{}, fmt.Errorf("update balance: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Wallet{}, fmt.Errorf("commit: %w", err)
	}

	w.Balance = next
	w.UpdatedAt = now
	return w, nil
}

func (l *PostgresLedger) scanWallet(row pgx.Row) (Wallet, error) {
	var (
		w          Wallet
		id, owner  uuid.UUID
		balanceStr string
	)
	if err := row.Scan(&id, &owner, &balanceStr, &w.CreatedAt, &w.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrWalletNotFound
		}
		return Wallet{}, fmt.Errorf("scan wallet: %w", err)
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return Wallet{}, fmt.Errorf("parse balance: %w", err)
	}

	w.ID = id.String()
	w.UserID = owner.String()
	w.Balance = balance
	w.CreatedAt = w.CreatedAt.UTC()
	w.UpdatedAt = w.UpdatedAt.UTC()
	return w, nil
}
