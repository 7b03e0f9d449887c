// Package asset is the stand-in for the chain environment's value
// ledger: integer-unit balances with an atomic transfer primitive.
package asset

import (
	"fmt"
	"sync"

	"github.com/atelier-labs/atelier/ledger"
)

type Store interface {
	ReadBalance(addr ledger.Address) (uint64, error)
	AddBalance(addr ledger.Address, amount uint64) error
	MoveBalance(from, to ledger.Address, amount uint64) error
}

type Ledger struct {
	mtx   sync.Mutex
	store Store
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

func (l *Ledger) GetBalance(addr ledger.Address) (uint64, error) {
	return l.store.ReadBalance(addr)
}

// Deposit credits an account from outside the system.
func (l *Ledger) Deposit(addr ledger.Address, amount uint64) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if addr.IsZero() {
		return fmt.Errorf("zero recipient: %w", ledger.ErrInvalidInput)
	}
	if amount == 0 {
		return fmt.Errorf("zero amount: %w", ledger.ErrInvalidInput)
	}
	return l.store.AddBalance(addr, amount)
}

func (l *Ledger) TransferValue(amount uint64, from, to ledger.Address) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if from.IsZero() || to.IsZero() {
		return fmt.Errorf("zero party: %w", ledger.ErrInvalidInput)
	}
	if amount == 0 {
		return fmt.Errorf("zero amount: %w", ledger.ErrInvalidInput)
	}
	return l.store.MoveBalance(from, to, amount)
}
