package engine

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	bal, err := s.CollateralBalance(ctx, alice, wethAddr)
	require.NoError(t, err)
	requireBig(t, big.NewInt(0), bal)

	require.NoError(t, s.SetCollateralBalance(ctx, alice, wethAddr, ether(7)))
	bal, err = s.CollateralBalance(ctx, alice, wethAddr)
	require.NoError(t, err)
	requireBig(t, ether(7), bal)

	// Reads hand out copies, not aliases into the store.
	bal.Add(bal, ether(1))
	bal, err = s.CollateralBalance(ctx, alice, wethAddr)
	require.NoError(t, err)
	requireBig(t, ether(7), bal)

	require.NoError(t, s.SetDebt(ctx, alice, ether(3)))
	debt, err := s.Debt(ctx, alice)
	require.NoError(t, err)
	requireBig(t, ether(3), debt)
}

func TestMemoryStoreTransactCommit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	err := s.Transact(ctx, func(tx Store) error {
		if err := tx.SetCollateralBalance(ctx, alice, wethAddr, ether(5)); err != nil {
			return err
		}
		return tx.AppendDeposit(ctx, DepositEvent{User: alice, Asset: wethAddr, Amount: ether(5)})
	})
	require.NoError(t, err)

	bal, err := s.CollateralBalance(ctx, alice, wethAddr)
	require.NoError(t, err)
	requireBig(t, ether(5), bal)
	require.Len(t, s.Deposits(), 1)
}

func TestMemoryStoreTransactRollback(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.SetCollateralBalance(ctx, alice, wethAddr, ether(5)))
	require.NoError(t, s.SetDebt(ctx, alice, ether(2)))

	boom := errors.New("boom")
	err := s.Transact(ctx, func(tx Store) error {
		if err := tx.SetCollateralBalance(ctx, alice, wethAddr, ether(9)); err != nil {
			return err
		}
		if err := tx.SetDebt(ctx, alice, ether(8)); err != nil {
			return err
		}
		if err := tx.AppendDeposit(ctx, DepositEvent{User: alice, Asset: wethAddr, Amount: ether(4)}); err != nil {
			return err
		}
		if err := tx.AppendRedemption(ctx, RedemptionEvent{From: alice, To: alice, Asset: wethAddr, Amount: ether(4)}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	bal, err := s.CollateralBalance(ctx, alice, wethAddr)
	require.NoError(t, err)
	requireBig(t, ether(5), bal)
	debt, err := s.Debt(ctx, alice)
	require.NoError(t, err)
	requireBig(t, ether(2), debt)
	require.Empty(t, s.Deposits())
	require.Empty(t, s.Redemptions())
}

func TestMemoryStoreNestedTransact(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	// An inner Transact joins the enclosing unit of work instead of
	// deadlocking on the store mutex.
	err := s.Transact(ctx, func(tx Store) error {
		return tx.Transact(ctx, func(inner Store) error {
			return inner.SetDebt(ctx, alice, ether(1))
		})
	})
	require.NoError(t, err)

	debt, err := s.Debt(ctx, alice)
	require.NoError(t, err)
	requireBig(t, ether(1), debt)
}
