package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andino-pay/andino_pay/internal/clients"
	"github.com/andino-pay/andino_pay/internal/ledger"
	"github.com/andino-pay/andino_pay/internal/metrics"
	"github.com/andino-pay/andino_pay/internal/notification"
)

// ErrInvalidAmount rejects non-positive load amounts before any state is touched.
var ErrInvalidAmount = errors.New("invalid amount")

// Service orchestrates registration, loads and balance reads over the
// wallet-data collaborator and the ledger.
type Service struct {
	clients  clients.Repository
	ledger   ledger.Ledger
	notifier notification.Notifier
	timeout  time.Duration
}

// NewService builds a wallet service. upstreamTimeout bounds every call into
// the wallet-data collaborator and the ledger's backing store; a timeout
// surfaces as clients.ErrUnavailable.
func NewService(repo clients.Repository, led ledger.Ledger, notifier notification.Notifier, upstreamTimeout time.Duration) *Service {
	if upstreamTimeout <= 0 {
		upstreamTimeout = 5 * time.Second
	}
	return &Service{clients: repo, ledger: led, notifier: notifier, timeout: upstreamTimeout}
}

// Register creates a user and a zero-balance wallet as one unit.
func (s *Service) Register(ctx context.Context, input clients.RegisterInput) (clients.UserWallet, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	uw, err := s.clients.RegisterUserAndWallet(ctx, input)
	if err != nil {
		return clients.UserWallet{}, remapUpstream(err, "register client")
	}
	return uw, nil
}

// Load credits the client's wallet. The amount is validated before any
// collaborator or ledger call.
func (s *Service) Load(ctx context.Context, document, phone string, amount decimal.Decimal) (clients.UserWallet, error) {
	if !amount.IsPositive() {
		return clients.UserWallet{}, ErrInvalidAmount
	}

	uw, err := s.findClient(ctx, document, phone)
	if err != nil {
		return clients.UserWallet{}, err
	}

	creditCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	w, err := s.ledger.ApplyDelta(creditCtx, uw.WalletID, amount)
	if err != nil {
		return clients.UserWallet{}, remapUpstream(err, "credit wallet")
	}

	metrics.LoadsTotal.Inc()

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindMoneyLoaded,
			Destination: uw.WalletID,
			Body:        fmt.Sprintf("Load of %s applied, balance %s", amount.StringFixed(2), w.Balance.StringFixed(2)),
		})
	}

	uw.Balance = w.Balance
	uw.UpdatedAt = w.UpdatedAt
	return uw, nil
}

// Balance is a pure read of the client's wallet snapshot.
func (s *Service) Balance(ctx context.Context, document, phone string) (clients.UserWallet, error) {
	return s.findClient(ctx, document, phone)
}

func (s *Service) findClient(ctx context.Context, document, phone string) (clients.UserWallet, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	uw, err := s.clients.FindWalletAndUser(ctx, document, phone)
	if err != nil {
		return clients.UserWallet{}, remapUpstream(err, "find client")
	}
	return uw, nil
}

// remapUpstream converts timeouts into the unavailable sentinel and wraps
// everything that is not already part of the error taxonomy.
func remapUpstream(err error, op string) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return clients.ErrUnavailable
	case errors.Is(err, clients.ErrDuplicateClient),
		errors.Is(err, clients.ErrClientNotFound),
		errors.Is(err, clients.ErrUnavailable),
		errors.Is(err, ledger.ErrWalletNotFound),
		errors.Is(err, ledger.ErrInsufficientFunds):
		return err
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
