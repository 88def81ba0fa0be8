package ledger

import "github.com/shopspring/decimal"

// SeedWallet is a test helper that overwrites a wallet balance when using the
// in-memory ledger.
func SeedWallet(l Ledger, walletID string, balance decimal.Decimal) {
	if mem, ok := l.(*inMemoryLedger); ok {
		if entry, err := mem.entry(walletID); err == nil {
			entry.mu.Lock()
			defer entry.mu.Unlock()
			entry.w.Balance = balance
		}
	}
}
