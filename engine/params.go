package engine

import "math/big"

// Fixed protocol parameters. Values mirror the 18-decimal fixed-point
// convention used across the accounting code: USD values and DSC amounts are
// wei-style integers, prices arrive from feeds with 8 fractional decimals.
var (
	// precision is the 18-decimal valuation precision.
	precision = big.NewInt(1_000_000_000_000_000_000)
	// additionalFeedPrecision lifts an 8-decimal feed answer to 18 decimals.
	additionalFeedPrecision = big.NewInt(10_000_000_000)
	// liquidationThreshold of 50 over a precision of 100 requires 200%
	// collateralization.
	liquidationThreshold = big.NewInt(50)
	liquidationPrecision = big.NewInt(100)
	// liquidationBonus awards liquidators 10% extra collateral.
	liquidationBonus = big.NewInt(10)
	// minHealthFactor is 1.0 in 18-decimal fixed point.
	minHealthFactor = big.NewInt(1_000_000_000_000_000_000)
	// maxHealthFactor is the sentinel health factor of a debt-free account.
	maxHealthFactor = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
)

// MinHealthFactor returns the minimum solvent health factor (1e18 == 1.0).
func (e *Engine) MinHealthFactor() *big.Int {
	return new(big.Int).Set(minHealthFactor)
}

// LiquidationThreshold returns the collateral discount numerator.
func (e *Engine) LiquidationThreshold() *big.Int {
	return new(big.Int).Set(liquidationThreshold)
}

// LiquidationPrecision returns the collateral discount denominator.
func (e *Engine) LiquidationPrecision() *big.Int {
	return new(big.Int).Set(liquidationPrecision)
}

// LiquidationBonus returns the liquidator bonus percentage over
// LiquidationPrecision.
func (e *Engine) LiquidationBonus() *big.Int {
	return new(big.Int).Set(liquidationBonus)
}

// Precision returns the 18-decimal valuation precision.
func (e *Engine) Precision() *big.Int {
	return new(big.Int).Set(precision)
}

// AdditionalFeedPrecision returns the 8-to-18 decimal feed adjustment.
func (e *Engine) AdditionalFeedPrecision() *big.Int {
	return new(big.Int).Set(additionalFeedPrecision)
}
