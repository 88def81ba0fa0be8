package payments

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
	"github.com/andino-pay/andino_pay/internal/session"
)

// ErrInvalidAmount rejects non-positive payment amounts before any state is touched.
var ErrInvalidAmount = errors.New("invalid amount")

// InsufficientFundsError carries the current balance so the caller can report
// it. errors.Is matches it against ledger.ErrInsufficientFunds.
type InsufficientFundsError struct {
	Balance decimal.Decimal
}

func (e InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance %s", e.Balance.StringFixed(2))
}

// Is makes the error part of the insufficient-funds taxonomy.
func (e InsufficientFundsError) Is(target error) bool {
	return target == ledger.ErrInsufficientFunds
}

// InitResult is handed to the caller when a payment session is opened.
type InitResult struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
}

// Receipt describes a confirmed payment.
type Receipt struct {
	WalletID    string          `json:"walletId"`
	Amount      decimal.Decimal `json:"amount"`
	Balance     decimal.Decimal `json:"balance"`
	ConfirmedAt time.Time       `json:"confirmedAt"`
}

// Service drives the two-phase payment protocol: init opens a short-lived
// reservation session, confirm consumes it and applies the debit.
type Service struct {
	clients  clients.Repository
	ledger   ledger.Ledger
	sessions session.Store
	notifier notification.Notifier
	timeout  time.Duration
}

// NewService constructs a payment service.
func NewService(repo clients.Repository, led ledger.Ledger, store session.Store, notifier notification.Notifier, upstreamTimeout time.Duration) *Service {
	if upstreamTimeout <= 0 {
		upstreamTimeout = 5 * time.Second
	}
	return &Service{clients: repo, ledger: led, sessions: store, notifier: notifier, timeout: upstreamTimeout}
}

// Init resolves the client, pre-checks the balance and opens a reservation
// session. No session is created when funds are insufficient. The pre-check
// does not hold the funds: a concurrent debit can still make the confirm fail.
func (s *Service) Init(ctx context.Context, document, phone string, amount decimal.Decimal) (InitResult, error) {
	if !amount.IsPositive() {
		return InitResult{}, ErrInvalidAmount
	}

	uw, err := s.findClient(ctx, document, phone)
	if err != nil {
		return InitResult{}, err
	}

	if uw.Balance.LessThan(amount) {
		return InitResult{}, InsufficientFundsError{Balance: uw.Balance}
	}

	createCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	created, err := s.sessions.Create(createCtx, uw.WalletID, amount)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return InitResult{}, clients.ErrUnavailable
		}
		return InitResult{}, fmt.Errorf("create session: %w", err)
	}

	metrics.PaymentsInitiatedTotal.Inc()
	return InitResult{SessionID: created.SessionID, Token: created.Token}, nil
}

// Confirm validates and consumes the session, then applies the debit. The
// consume step is atomic, so a session confirms at most once; if the debit
// then fails on insufficient funds the payment is simply failed, the session
// is already gone and cannot be retried.
func (s *Service) Confirm(ctx context.Context, sessionID, token string) (Receipt, error) {
	pending, err := s.sessions.ValidateAndConsume(ctx, sessionID, token)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrSessionNotFound):
			metrics.ObserveConfirm("not_found")
		case errors.Is(err, session.ErrSessionExpired):
			metrics.ObserveConfirm("expired")
		case errors.Is(err, session.ErrTokenMismatch):
			metrics.ObserveConfirm("bad_token")
		}
		return Receipt{}, err
	}

	debitCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	w, err := s.ledger.ApplyDelta(debitCtx, pending.WalletID, pending.Amount.Neg())
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInsufficientFunds):
			metrics.ObserveConfirm("insufficient_funds")
			return Receipt{}, err
		case errors.Is(err, context.DeadlineExceeded):
			return Receipt{}, clients.ErrUnavailable
		case errors.Is(err, ledger.ErrWalletNotFound):
			return Receipt{}, err
		default:
			return Receipt{}, fmt.Errorf("apply debit: %w", err)
		}
	}

	metrics.ObserveConfirm("confirmed")

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindPaymentConfirmed,
			Destination: pending.WalletID,
			Body:        fmt.Sprintf("Payment of %s applied, balance %s", pending.Amount.StringFixed(2), w.Balance.StringFixed(2)),
		})
	}

	return Receipt{
		WalletID:    pending.WalletID,
		Amount:      pending.Amount,
		Balance:     w.Balance,
		ConfirmedAt: time.Now().UTC(),
	}, nil
}

func (s *Service) findClient(ctx context.Context, document, phone string) (clients.UserWallet, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	uw, err := s.clients.FindWalletAndUser(ctx, document, phone)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return clients.UserWallet{}, clients.ErrUnavailable
		case errors.Is(err, clients.ErrClientNotFound), errors.Is(err, clients.ErrUnavailable):
			return clients.UserWallet{}, err
		default:
			return clients.UserWallet{}, fmt.Errorf("find client: %w", err)
		}
	}
	return uw, nil
}
