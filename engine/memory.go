package engine

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// MemoryStore is the in-process Store implementation. A single mutex
// serializes transactions; rollback restores a snapshot taken at the start of
// Transact.
type MemoryStore struct {
	mu          sync.RWMutex
	collateral  map[common.Address]map[common.Address]*big.Int
	debt        map[common.Address]*big.Int
	deposits    []DepositEvent
	redemptions []RedemptionEvent
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collateral: make(map[common.Address]map[common.Address]*big.Int),
		debt:       make(map[common.Address]*big.Int),
	}
}

func (s *MemoryStore) CollateralBalance(_ context.Context, user, asset common.Address) (*big.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collateralBalance(user, asset), nil
}

func (s *MemoryStore) SetCollateralBalance(_ context.Context, user, asset common.Address, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCollateralBalance(user, asset, amount)
	return nil
}

func (s *MemoryStore) Debt(_ context.Context, user common.Address) (*big.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userDebt(user), nil
}

func (s *MemoryStore) SetDebt(_ context.Context, user common.Address, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setDebt(user, amount)
	return nil
}

func (s *MemoryStore) AppendDeposit(_ context.Context, ev DepositEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendDeposit(ev)
	return nil
}

func (s *MemoryStore) AppendRedemption(_ context.Context, ev RedemptionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendRedemption(ev)
	return nil
}

// Transact runs fn against an unlocked view of the store. The snapshot taken
// up front is restored when fn fails, so a failed operation leaves no partial
// effect.
func (s *MemoryStore) Transact(_ context.Context, fn func(tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	if err := fn(&memTx{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// Deposits returns a copy of the deposit event log.
func (s *MemoryStore) Deposits() []DepositEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]DepositEvent, len(s.deposits))
	copy(out, s.deposits)
	return out
}

// Redemptions returns a copy of the redemption event log.
func (s *MemoryStore) Redemptions() []RedemptionEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RedemptionEvent, len(s.redemptions))
	copy(out, s.redemptions)
	return out
}

func (s *MemoryStore) collateralBalance(user, asset common.Address) *big.Int {
	if positions, ok := s.collateral[user]; ok {
		if bal, ok := positions[asset]; ok {
			return new(big.Int).Set(bal)
		}
	}
	return big.NewInt(0)
}

func (s *MemoryStore) setCollateralBalance(user, asset common.Address, amount *big.Int) {
	positions, ok := s.collateral[user]
	if !ok {
		positions = make(map[common.Address]*big.Int)
		s.collateral[user] = positions
	}
	positions[asset] = new(big.Int).Set(amount)
}

func (s *MemoryStore) userDebt(user common.Address) *big.Int {
	if debt, ok := s.debt[user]; ok {
		return new(big.Int).Set(debt)
	}
	return big.NewInt(0)
}

func (s *MemoryStore) setDebt(user common.Address, amount *big.Int) {
	s.debt[user] = new(big.Int).Set(amount)
}

func (s *MemoryStore) appendDeposit(ev DepositEvent) {
	ev.Amount = new(big.Int).Set(ev.Amount)
	s.deposits = append(s.deposits, ev)
}

func (s *MemoryStore) appendRedemption(ev RedemptionEvent) {
	ev.Amount = new(big.Int).Set(ev.Amount)
	s.redemptions = append(s.redemptions, ev)
}

type memSnapshot struct {
	collateral   map[common.Address]map[common.Address]*big.Int
	debt         map[common.Address]*big.Int
	nDeposits    int
	nRedemptions int
}

func (s *MemoryStore) snapshot() memSnapshot {
	collateral := make(map[common.Address]map[common.Address]*big.Int, len(s.collateral))
	for user, positions := range s.collateral {
		cloned := make(map[common.Address]*big.Int, len(positions))
		for asset, bal := range positions {
			cloned[asset] = new(big.Int).Set(bal)
		}
		collateral[user] = cloned
	}
	debt := make(map[common.Address]*big.Int, len(s.debt))
	for user, d := range s.debt {
		debt[user] = new(big.Int).Set(d)
	}
	return memSnapshot{
		collateral:   collateral,
		debt:         debt,
		nDeposits:    len(s.deposits),
		nRedemptions: len(s.redemptions),
	}
}

func (s *MemoryStore) restore(snap memSnapshot) {
	s.collateral = snap.collateral
	s.debt = snap.debt
	s.deposits = s.deposits[:snap.nDeposits]
	s.redemptions = s.redemptions[:snap.nRedemptions]
}

// memTx is the in-transaction view. The surrounding Transact call holds the
// store mutex, so no further locking happens here.
type memTx struct {
	s *MemoryStore
}

func (t *memTx) CollateralBalance(_ context.Context, user, asset common.Address) (*big.Int, error) {
	return t.s.collateralBalance(user, asset), nil
}

func (t *memTx) SetCollateralBalance(_ context.Context, user, asset common.Address, amount *big.Int) error {
	t.s.setCollateralBalance(user, asset, amount)
	return nil
}

func (t *memTx) Debt(_ context.Context, user common.Address) (*big.Int, error) {
	return t.s.userDebt(user), nil
}

func (t *memTx) SetDebt(_ context.Context, user common.Address, amount *big.Int) error {
	t.s.setDebt(user, amount)
	return nil
}

func (t *memTx) AppendDeposit(_ context.Context, ev DepositEvent) error {
	t.s.appendDeposit(ev)
	return nil
}

func (t *memTx) AppendRedemption(_ context.Context, ev RedemptionEvent) error {
	t.s.appendRedemption(ev)
	return nil
}

// Transact inside a transaction reuses the enclosing one.
func (t *memTx) Transact(_ context.Context, fn func(tx Store) error) error {
	return fn(t)
}
