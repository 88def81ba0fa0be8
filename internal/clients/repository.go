package clients

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository is the wallet-data contract the orchestrator consumes. User and
// wallet are created together as a single logical unit and never
// independently.
type Repository interface {
	RegisterUserAndWallet(ctx context.Context, input RegisterInput) (UserWallet, error)
	FindWalletAndUser(ctx context.Context, document, phone string) (UserWallet, error)
}

const uniqueViolation = "23505"

// PostgresRepository stores users and wallets in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// RegisterUserAndWallet inserts the user and a zero-balance wallet in one
// transaction. Unique violations on document, phone or email surface as
// ErrDuplicateClient.
func (r *PostgresRepository) RegisterUserAndWallet(ctx context.Context, input RegisterInput) (UserWallet, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return UserWallet{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	now := time.Now().UTC()
	userID := uuid.New()
	walletID := uuid.New()

	if _, err := tx.Exec(ctx, `INSERT INTO users (id, document, names, email, phone, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		userID, input.Document, input.Names, input.Email, input.Phone, now); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return UserWallet{}, ErrDuplicateClient
		}
		return UserWallet{}, fmt.Errorf("insert user: %w", err)
	}

	if _, err := tx.Exec(ctx, `INSERT INTO wallets (id, user_id, balance, created_at, updated_at)
        VALUES ($1, $2, 0, $3, $3)`, walletID, userID, now); err != nil {
		return UserWallet{}, fmt.Errorf("insert wallet: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return UserWallet{}, fmt.Errorf("commit: %w", err)
	}

	return UserWallet{
		Document:  input.Document,
		Names:     input.Names,
		Email:     input.Email,
		Phone:     input.Phone,
		WalletID:  walletID.String(),
		Balance:   decimal.Zero,
		UpdatedAt: now,
	}, nil
}

// FindWalletAndUser resolves the document+phone pair to the combined snapshot.
func (r *PostgresRepository) FindWalletAndUser(ctx context.Context, document, phone string) (UserWallet, error) {
	const query = `
        SELECT u.document, u.names, u.email, u.phone, w.id, w.balance::text, w.updated_at
        FROM users u
        INNER JOIN wallets w ON w.user_id = u.id
        WHERE u.document = $1 AND u.phone = $2`

	var (
		uw         UserWallet
		walletID   uuid.UUID
		balanceStr string
	)
	row := r.db.QueryRow(ctx, query, document, phone)
	if err := row.Scan(&uw.Document, &uw.Names, &uw.Email, &uw.Phone, &walletID, &balanceStr, &uw.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserWallet{}, ErrClientNotFound
		}
		return UserWallet{}, fmt.Errorf("find client: %w", err)
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return UserWallet{}, fmt.Errorf("parse balance: %w", err)
	}

	uw.WalletID = walletID.String()
	uw.Balance = balance
	uw.UpdatedAt = uw.UpdatedAt.UTC()
	return uw, nil
}
