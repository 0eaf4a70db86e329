package engine

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// DepositEvent records one collateral deposit. Events are append-only and
// observable through the store.
type DepositEvent struct {
	User   common.Address
	Asset  common.Address
	Amount *big.Int
}

// RedemptionEvent records one collateral redemption. From and To differ when
// a liquidator seizes collateral.
type RedemptionEvent struct {
	From   common.Address
	To     common.Address
	Asset  common.Address
	Amount *big.Int
}

// Store is the persistence layer for the engine's ledgers: the per-(user,
// asset) collateral table, the per-user debt table and the append-only event
// log. Absent entries read as zero. Transact runs fn against a transactional
// view; if fn returns an error every write made through that view is rolled
// back.
type Store interface {
	CollateralBalance(ctx context.Context, user, asset common.Address) (*big.Int, error)
	SetCollateralBalance(ctx context.Context, user, asset common.Address, amount *big.Int) error
	Debt(ctx context.Context, user common.Address) (*big.Int, error)
	SetDebt(ctx context.Context, user common.Address, amount *big.Int) error
	AppendDeposit(ctx context.Context, ev DepositEvent) error
	AppendRedemption(ctx context.Context, ev RedemptionEvent) error
	Transact(ctx context.Context, fn func(tx Store) error) error
}
