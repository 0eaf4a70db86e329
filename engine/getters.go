package engine

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Read-only queries. None of them mutates state and none fails for a
// registered asset and a well-formed user, including users with no activity.

// AccountCollateralValue returns the aggregate 18-decimal USD value of the
// user's deposited collateral across every registered asset.
func (e *Engine) AccountCollateralValue(ctx context.Context, user common.Address) (*big.Int, error) {
	return e.accountCollateralValue(ctx, e.store, user)
}

// HealthFactor returns the user's current solvency ratio in 18-decimal fixed
// point. Debt-free users report the maximum sentinel.
func (e *Engine) HealthFactor(ctx context.Context, user common.Address) (*big.Int, error) {
	return e.healthFactor(ctx, e.store, user)
}

// AccountInformation returns the user's outstanding debt and aggregate
// collateral value in one call.
func (e *Engine) AccountInformation(ctx context.Context, user common.Address) (debt, collateralValue *big.Int, err error) {
	debt, err = e.store.Debt(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	collateralValue, err = e.accountCollateralValue(ctx, e.store, user)
	if err != nil {
		return nil, nil, err
	}
	return debt, collateralValue, nil
}

// CollateralBalanceOf returns the user's deposited quantity of asset.
func (e *Engine) CollateralBalanceOf(ctx context.Context, user, asset common.Address) (*big.Int, error) {
	return e.store.CollateralBalance(ctx, user, asset)
}

// CollateralTokens returns the registered collateral assets in registration
// order.
func (e *Engine) CollateralTokens() []common.Address {
	out := make([]common.Address, len(e.assets))
	copy(out, e.assets)
	return out
}

// CollateralTokenPriceFeed returns the feed registered for asset.
func (e *Engine) CollateralTokenPriceFeed(asset common.Address) (PriceFeed, error) {
	feed, ok := e.feeds[asset]
	if !ok {
		return nil, ErrInvalidAsset
	}
	return feed, nil
}

// DSC returns the stable token collaborator.
func (e *Engine) DSC() StableToken {
	return e.dsc
}

// Custody returns the engine's custody account.
func (e *Engine) Custody() common.Address {
	return e.custody
}
