package engine

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrNilStore is returned when the engine has no persistence layer.
	ErrNilStore = errors.New("dsc engine: store not configured")
	// ErrNilDSC is returned when the stable token collaborator is missing.
	ErrNilDSC = errors.New("dsc engine: stable token not configured")
	// ErrLengthMismatch is returned when the registration lists differ in length.
	ErrLengthMismatch = errors.New("dsc engine: collateral, feed and token lists must have equal length")
	// ErrZeroAddress is returned for a null user or asset identifier.
	ErrZeroAddress = errors.New("dsc engine: zero address")
	// ErrNilEntry is returned for a nil feed or token in the registration lists.
	ErrNilEntry = errors.New("dsc engine: nil feed or token entry")
	// ErrDuplicateAsset is returned when an asset appears twice at construction.
	ErrDuplicateAsset = errors.New("dsc engine: collateral asset registered twice")
	// ErrInvalidAmount is returned for zero amounts on mutating operations.
	ErrInvalidAmount = errors.New("dsc engine: amount must be positive")
	// ErrInvalidAsset is returned for an unregistered collateral asset.
	ErrInvalidAsset = errors.New("dsc engine: collateral asset not registered")
	// ErrInsufficientCollateral is returned when a redemption exceeds the
	// deposited balance.
	ErrInsufficientCollateral = errors.New("dsc engine: redeem amount exceeds deposited collateral")
	// ErrBurnExceedsDebt is returned when a burn exceeds outstanding debt.
	ErrBurnExceedsDebt = errors.New("dsc engine: burn amount exceeds outstanding debt")
	// ErrHealthFactorOK is returned when liquidating a healthy position.
	ErrHealthFactorOK = errors.New("dsc engine: position is healthy, nothing to liquidate")
	// ErrHealthFactorNotImproved is returned when a liquidation worsens the
	// target's ratio.
	ErrHealthFactorNotImproved = errors.New("dsc engine: liquidation did not improve health factor")
	// ErrReentrantCall is returned when a mutating entry point is invoked
	// while another one is still executing.
	ErrReentrantCall = errors.New("dsc engine: reentrant call rejected")
)

// HealthFactorBrokenError reports a solvency violation together with the
// ratio that caused it, so callers can reduce the requested amount and retry.
type HealthFactorBrokenError struct {
	HealthFactor *big.Int
}

func (e *HealthFactorBrokenError) Error() string {
	return fmt.Sprintf("dsc engine: health factor %s below minimum %s",
		e.HealthFactor.String(), minHealthFactor.String())
}

// IsHealthFactorBroken reports whether err carries a solvency violation.
func IsHealthFactorBroken(err error) bool {
	var hfErr *HealthFactorBrokenError
	return errors.As(err, &hfErr)
}
