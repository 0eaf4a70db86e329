package engine

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	uatomic "go.uber.org/atomic"

	"github.com/mcdexio/dsc-engine/common/logging"
)

// Engine is the collateral-accounting and liquidation core of the synthetic
// dollar. Users lock approved collateral assets, mint DSC against them and
// are liquidated by third parties when their health factor falls below 1.0.
//
// Every mutating entry point runs as one atomic unit of work: ledger state is
// updated first, external token calls happen after, and any failure rolls the
// whole operation back. A single process-wide flag rejects reentrant calls
// triggered from inside an external token callback.
type Engine struct {
	custody common.Address
	dsc     StableToken
	assets  []common.Address
	feeds   map[common.Address]PriceFeed
	tokens  map[common.Address]Token
	store   Store
	logger  logging.Logger
	busy    *uatomic.Bool
}

// Config carries the construction-time registration of the engine. The
// collateral lists are parallel: CollateralTokens[i] is priced by
// PriceFeeds[i] and transferred through Tokens[i]. The set is immutable after
// construction.
type Config struct {
	// Custody is the engine's own account on every token ledger. Deposited
	// collateral and DSC pulled for burning are held here.
	Custody          common.Address
	CollateralTokens []common.Address
	PriceFeeds       []PriceFeed
	Tokens           []Token
	DSC              StableToken
	Store            Store
	Logger           logging.Logger
}

// New validates the registration lists and returns a ready engine.
func New(cfg Config) (*Engine, error) {
	if len(cfg.CollateralTokens) != len(cfg.PriceFeeds) ||
		len(cfg.CollateralTokens) != len(cfg.Tokens) {
		return nil, ErrLengthMismatch
	}
	if cfg.Custody == (common.Address{}) {
		return nil, ErrZeroAddress
	}
	if cfg.DSC == nil {
		return nil, ErrNilDSC
	}
	if cfg.Store == nil {
		return nil, ErrNilStore
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewLoggerTag("dsc-engine")
	}

	e := &Engine{
		custody: cfg.Custody,
		dsc:     cfg.DSC,
		assets:  make([]common.Address, 0, len(cfg.CollateralTokens)),
		feeds:   make(map[common.Address]PriceFeed, len(cfg.CollateralTokens)),
		tokens:  make(map[common.Address]Token, len(cfg.CollateralTokens)),
		store:   cfg.Store,
		logger:  logger,
		busy:    uatomic.NewBool(false),
	}
	for i, asset := range cfg.CollateralTokens {
		if asset == (common.Address{}) {
			return nil, ErrZeroAddress
		}
		if cfg.PriceFeeds[i] == nil || cfg.Tokens[i] == nil {
			return nil, ErrNilEntry
		}
		if _, exists := e.feeds[asset]; exists {
			return nil, ErrDuplicateAsset
		}
		e.assets = append(e.assets, asset)
		e.feeds[asset] = cfg.PriceFeeds[i]
		e.tokens[asset] = cfg.Tokens[i]
	}
	return e, nil
}

// enter acquires the process-wide mutating-call flag. A nested call from
// inside an external token callback fails instead of deadlocking; the caller
// simply resubmits.
func (e *Engine) enter() error {
	if !e.busy.CAS(false, true) {
		return ErrReentrantCall
	}
	return nil
}

func (e *Engine) exit() { e.busy.Store(false) }

// DepositCollateral locks amount units of asset from user into engine
// custody.
func (e *Engine) DepositCollateral(ctx context.Context, user, asset common.Address, amount *big.Int) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()
	return e.transact(ctx, func(tx Store, u *uow) error {
		return e.depositCollateral(ctx, tx, u, user, asset, amount)
	})
}

// MintDSC issues amount DSC against user's collateral, failing if the
// resulting health factor would not stay above the minimum.
func (e *Engine) MintDSC(ctx context.Context, user common.Address, amount *big.Int) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()
	return e.transact(ctx, func(tx Store, u *uow) error {
		return e.mintDsc(ctx, tx, u, user, amount)
	})
}

// DepositCollateralAndMintDSC composes a deposit and a mint in one atomic
// unit of work.
func (e *Engine) DepositCollateralAndMintDSC(ctx context.Context, user, asset common.Address, collateralAmount, dscAmount *big.Int) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()
	return e.transact(ctx, func(tx Store, u *uow) error {
		if err := e.depositCollateral(ctx, tx, u, user, asset, collateralAmount); err != nil {
			return err
		}
		return e.mintDsc(ctx, tx, u, user, dscAmount)
	})
}

// RedeemCollateral releases amount units of asset back to user. The
// remaining position must stay healthy.
func (e *Engine) RedeemCollateral(ctx context.Context, user, asset common.Address, amount *big.Int) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()
	return e.transact(ctx, func(tx Store, u *uow) error {
		if err := requirePositive(amount); err != nil {
			return err
		}
		if err := e.redeemCollateral(ctx, tx, u, user, user, asset, amount); err != nil {
			return err
		}
		return e.revertIfHealthFactorBroken(ctx, tx, user)
	})
}

// BurnDSC retires amount of user's DSC debt, funded from user's own balance.
func (e *Engine) BurnDSC(ctx context.Context, user common.Address, amount *big.Int) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()
	return e.transact(ctx, func(tx Store, u *uow) error {
		if err := requirePositive(amount); err != nil {
			return err
		}
		if err := e.burnDsc(ctx, tx, u, user, user, amount); err != nil {
			return err
		}
		// Burning debt can only improve the ratio; the check stays for
		// symmetry with every other mutating path.
		return e.revertIfHealthFactorBroken(ctx, tx, user)
	})
}

// RedeemCollateralForDSC burns burnAmount of user's DSC and then redeems
// collateralAmount of asset, atomically.
func (e *Engine) RedeemCollateralForDSC(ctx context.Context, user, asset common.Address, collateralAmount, burnAmount *big.Int) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()
	return e.transact(ctx, func(tx Store, u *uow) error {
		if err := requirePositive(burnAmount); err != nil {
			return err
		}
		if err := requirePositive(collateralAmount); err != nil {
			return err
		}
		if err := e.burnDsc(ctx, tx, u, user, user, burnAmount); err != nil {
			return err
		}
		if err := e.redeemCollateral(ctx, tx, u, user, user, asset, collateralAmount); err != nil {
			return err
		}
		return e.revertIfHealthFactorBroken(ctx, tx, user)
	})
}

// Liquidate lets liquidator repay debtToCover of user's DSC debt in exchange
// for the equivalent collateral plus a 10% bonus. Only positions below the
// minimum health factor are eligible, and the call must not worsen the
// target's ratio.
func (e *Engine) Liquidate(ctx context.Context, liquidator, asset, user common.Address, debtToCover *big.Int) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()
	return e.transact(ctx, func(tx Store, u *uow) error {
		if err := requirePositive(debtToCover); err != nil {
			return err
		}
		if user == (common.Address{}) || liquidator == (common.Address{}) {
			return ErrZeroAddress
		}
		if _, ok := e.tokens[asset]; !ok {
			return ErrInvalidAsset
		}
		startHF, err := e.healthFactor(ctx, tx, user)
		if err != nil {
			return err
		}
		if startHF.Cmp(minHealthFactor) >= 0 {
			return ErrHealthFactorOK
		}

		price, err := e.latestPrice(ctx, asset)
		if err != nil {
			return err
		}
		tokenAmount := tokenAmountFromPrice(price, debtToCover)
		bonus := new(big.Int).Mul(tokenAmount, liquidationBonus)
		bonus.Quo(bonus, liquidationPrecision)
		seized := new(big.Int).Add(tokenAmount, bonus)

		if err := e.redeemCollateral(ctx, tx, u, user, liquidator, asset, seized); err != nil {
			return err
		}
		if err := e.burnDsc(ctx, tx, u, user, liquidator, debtToCover); err != nil {
			return err
		}

		endHF, err := e.healthFactor(ctx, tx, user)
		if err != nil {
			return err
		}
		if endHF.Cmp(startHF) < 0 {
			return ErrHealthFactorNotImproved
		}
		if err := e.revertIfHealthFactorBroken(ctx, tx, liquidator); err != nil {
			return err
		}
		e.logger.Notice("liquidated %s: repaid=%s seized=%s asset=%s liquidator=%s hf %s -> %s",
			user.Hex(), debtToCover.String(), seized.String(), asset.Hex(),
			liquidator.Hex(), startHF.String(), endHF.String())
		return nil
	})
}

// depositCollateral credits the position, records the deposit event and then
// pulls the asset into custody. A failed transfer aborts the operation.
func (e *Engine) depositCollateral(ctx context.Context, tx Store, u *uow, user, asset common.Address, amount *big.Int) error {
	if user == (common.Address{}) {
		return ErrZeroAddress
	}
	if err := requirePositive(amount); err != nil {
		return err
	}
	token, ok := e.tokens[asset]
	if !ok {
		return ErrInvalidAsset
	}
	balance, err := tx.CollateralBalance(ctx, user, asset)
	if err != nil {
		return err
	}
	if err := tx.SetCollateralBalance(ctx, user, asset, new(big.Int).Add(balance, amount)); err != nil {
		return err
	}
	if err := tx.AppendDeposit(ctx, DepositEvent{User: user, Asset: asset, Amount: amount}); err != nil {
		return err
	}
	if err := token.TransferFrom(user, e.custody, amount); err != nil {
		return fmt.Errorf("dsc engine: collateral transfer failed: %w", err)
	}
	u.add(func() error { return token.TransferFrom(e.custody, user, amount) })
	e.logger.Info("collateral deposited user=%s asset=%s amount=%s",
		user.Hex(), asset.Hex(), amount.String())
	return nil
}

// redeemCollateral is the shared primitive behind user redemption and
// liquidation seizure: debit from's position, release the asset to to, record
// the event. The debit is checked explicitly, never left to wraparound.
func (e *Engine) redeemCollateral(ctx context.Context, tx Store, u *uow, from, to, asset common.Address, amount *big.Int) error {
	token, ok := e.tokens[asset]
	if !ok {
		return ErrInvalidAsset
	}
	balance, err := tx.CollateralBalance(ctx, from, asset)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientCollateral
	}
	if err := tx.SetCollateralBalance(ctx, from, asset, new(big.Int).Sub(balance, amount)); err != nil {
		return err
	}
	if err := token.TransferFrom(e.custody, to, amount); err != nil {
		return fmt.Errorf("dsc engine: collateral transfer failed: %w", err)
	}
	u.add(func() error { return token.TransferFrom(to, e.custody, amount) })
	if err := tx.AppendRedemption(ctx, RedemptionEvent{From: from, To: to, Asset: asset, Amount: amount}); err != nil {
		return err
	}
	e.logger.Info("collateral redeemed from=%s to=%s asset=%s amount=%s",
		from.Hex(), to.Hex(), asset.Hex(), amount.String())
	return nil
}

// mintDsc increments the debt ledger, validates the resulting health factor
// and only then has the token issue the units. A failed issuance aborts the
// whole unit of work.
func (e *Engine) mintDsc(ctx context.Context, tx Store, u *uow, user common.Address, amount *big.Int) error {
	if user == (common.Address{}) {
		return ErrZeroAddress
	}
	if err := requirePositive(amount); err != nil {
		return err
	}
	debt, err := tx.Debt(ctx, user)
	if err != nil {
		return err
	}
	if err := tx.SetDebt(ctx, user, new(big.Int).Add(debt, amount)); err != nil {
		return err
	}
	if err := e.revertIfHealthFactorBroken(ctx, tx, user); err != nil {
		return err
	}
	if err := e.dsc.Mint(user, amount); err != nil {
		return fmt.Errorf("dsc engine: mint failed: %w", err)
	}
	u.add(func() error {
		if err := e.dsc.TransferFrom(user, e.custody, amount); err != nil {
			return err
		}
		return e.dsc.Burn(e.custody, amount)
	})
	e.logger.Info("dsc minted user=%s amount=%s", user.Hex(), amount.String())
	return nil
}

// burnDsc retires amount of onBehalfOf's debt, pulling the units from payer
// into custody and destroying them there.
func (e *Engine) burnDsc(ctx context.Context, tx Store, u *uow, onBehalfOf, payer common.Address, amount *big.Int) error {
	debt, err := tx.Debt(ctx, onBehalfOf)
	if err != nil {
		return err
	}
	if debt.Cmp(amount) < 0 {
		return ErrBurnExceedsDebt
	}
	if err := tx.SetDebt(ctx, onBehalfOf, new(big.Int).Sub(debt, amount)); err != nil {
		return err
	}
	if err := e.dsc.TransferFrom(payer, e.custody, amount); err != nil {
		return fmt.Errorf("dsc engine: dsc transfer failed: %w", err)
	}
	u.add(func() error { return e.dsc.TransferFrom(e.custody, payer, amount) })
	if err := e.dsc.Burn(e.custody, amount); err != nil {
		return fmt.Errorf("dsc engine: burn failed: %w", err)
	}
	u.add(func() error { return e.dsc.Mint(e.custody, amount) })
	e.logger.Info("dsc burned onBehalfOf=%s payer=%s amount=%s",
		onBehalfOf.Hex(), payer.Hex(), amount.String())
	return nil
}

// accountCollateralValue sums the USD value of every registered asset the
// user has deposited. Zero positions contribute zero without a feed read.
func (e *Engine) accountCollateralValue(ctx context.Context, tx Store, user common.Address) (*big.Int, error) {
	total := big.NewInt(0)
	for _, asset := range e.assets {
		balance, err := tx.CollateralBalance(ctx, user, asset)
		if err != nil {
			return nil, err
		}
		if balance.Sign() == 0 {
			continue
		}
		price, err := e.latestPrice(ctx, asset)
		if err != nil {
			return nil, err
		}
		total.Add(total, usdValueFromPrice(price, balance))
	}
	return total, nil
}

// healthFactor derives the solvency ratio: threshold-adjusted collateral
// value over debt, in 18-decimal fixed point. A debt-free account reports the
// maximum sentinel and is never blocked.
func (e *Engine) healthFactor(ctx context.Context, tx Store, user common.Address) (*big.Int, error) {
	debt, err := tx.Debt(ctx, user)
	if err != nil {
		return nil, err
	}
	if debt.Sign() == 0 {
		return new(big.Int).Set(maxHealthFactor), nil
	}
	collateralValue, err := e.accountCollateralValue(ctx, tx, user)
	if err != nil {
		return nil, err
	}
	adjusted := new(big.Int).Mul(collateralValue, liquidationThreshold)
	adjusted.Quo(adjusted, liquidationPrecision)
	hf := new(big.Int).Mul(adjusted, precision)
	return hf.Quo(hf, debt), nil
}

// revertIfHealthFactorBroken fails with the violating ratio when the user's
// health factor does not exceed the minimum.
func (e *Engine) revertIfHealthFactorBroken(ctx context.Context, tx Store, user common.Address) error {
	hf, err := e.healthFactor(ctx, tx, user)
	if err != nil {
		return err
	}
	if hf.Cmp(minHealthFactor) <= 0 {
		return &HealthFactorBrokenError{HealthFactor: hf}
	}
	return nil
}

func requirePositive(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
