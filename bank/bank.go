// Package bank provides the fungible-unit ledgers the engine collaborates
// with: plain collateral asset ledgers and the owner-gated DSC token. The
// engine never reaches into balances directly; it moves units through the
// transfer surface like any other account would.
package bank

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInvalidAmount is returned for nil, zero or negative amounts.
	ErrInvalidAmount = errors.New("bank: amount must be positive")
	// ErrInsufficientBalance is returned when a debit exceeds the balance.
	ErrInsufficientBalance = errors.New("bank: insufficient balance")
	// ErrZeroAddress is returned for the zero account.
	ErrZeroAddress = errors.New("bank: zero address")
	// ErrNotOwner is returned when a gated operation is attempted against an
	// account other than the configured authority.
	ErrNotOwner = errors.New("bank: caller is not the owner")
)

// Ledger is an in-process fungible-unit ledger with ERC20-like transfer
// semantics. Whoever holds the handle acts as an unrestricted operator, which
// is how the engine custodies collateral.
type Ledger struct {
	mu       sync.RWMutex
	symbol   string
	balances map[common.Address]*big.Int
	supply   *big.Int
}

// NewLedger returns an empty ledger for one asset.
func NewLedger(symbol string) *Ledger {
	return &Ledger{
		symbol:   symbol,
		balances: make(map[common.Address]*big.Int),
		supply:   big.NewInt(0),
	}
}

// Symbol returns the asset symbol.
func (l *Ledger) Symbol() string { return l.symbol }

// Mint credits amount new units to to.
func (l *Ledger) Mint(to common.Address, amount *big.Int) error {
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(to, amount)
	l.supply.Add(l.supply, amount)
	return nil
}

// Burn permanently destroys amount units held by from.
func (l *Ledger) Burn(from common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.debit(from, amount); err != nil {
		return err
	}
	l.supply.Sub(l.supply, amount)
	return nil
}

// TransferFrom moves amount units from from to to.
func (l *Ledger) TransferFrom(from, to common.Address, amount *big.Int) error {
	if from == (common.Address{}) || to == (common.Address{}) {
		return ErrZeroAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.debit(from, amount); err != nil {
		return err
	}
	l.credit(to, amount)
	return nil
}

// BalanceOf returns owner's current balance.
func (l *Ledger) BalanceOf(owner common.Address) (*big.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if bal, ok := l.balances[owner]; ok {
		return new(big.Int).Set(bal), nil
	}
	return big.NewInt(0), nil
}

// TotalSupply returns the outstanding unit count.
func (l *Ledger) TotalSupply() *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.supply)
}

func (l *Ledger) credit(to common.Address, amount *big.Int) {
	if bal, ok := l.balances[to]; ok {
		bal.Add(bal, amount)
		return
	}
	l.balances[to] = new(big.Int).Set(amount)
}

func (l *Ledger) debit(from common.Address, amount *big.Int) error {
	bal, ok := l.balances[from]
	if !ok || bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	bal.Sub(bal, amount)
	return nil
}
