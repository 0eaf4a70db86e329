package engine

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ErrInvalidFeedAnswer is returned when a feed reports a non-positive price.
var ErrInvalidFeedAnswer = errors.New("dsc engine: price feed returned a non-positive answer")

// usdValueFromPrice converts an asset quantity (asset-native 18-decimal
// precision) into an 18-decimal USD value given an 8-decimal feed answer.
// Division truncates toward zero.
func usdValueFromPrice(price, amount *big.Int) *big.Int {
	scaled := new(big.Int).Mul(price, additionalFeedPrecision)
	v := new(big.Int).Mul(scaled, amount)
	return v.Quo(v, precision)
}

// tokenAmountFromPrice is the inverse conversion: an 18-decimal USD amount
// into an asset quantity. The two conversions are exact inverses up to one
// unit of truncation in the smallest representable quantity.
func tokenAmountFromPrice(price, usdAmount *big.Int) *big.Int {
	scaled := new(big.Int).Mul(price, additionalFeedPrecision)
	v := new(big.Int).Mul(usdAmount, precision)
	return v.Quo(v, scaled)
}

// latestPrice reads the current 8-decimal answer for a registered asset.
func (e *Engine) latestPrice(ctx context.Context, asset common.Address) (*big.Int, error) {
	feed, ok := e.feeds[asset]
	if !ok {
		return nil, ErrInvalidAsset
	}
	price, err := feed.LatestAnswer(ctx)
	if err != nil {
		return nil, err
	}
	if price == nil || price.Sign() <= 0 {
		return nil, ErrInvalidFeedAnswer
	}
	return price, nil
}

// UsdValue returns the 18-decimal USD value of amount units of asset at the
// current feed price.
func (e *Engine) UsdValue(ctx context.Context, asset common.Address, amount *big.Int) (*big.Int, error) {
	price, err := e.latestPrice(ctx, asset)
	if err != nil {
		return nil, err
	}
	if amount == nil {
		amount = big.NewInt(0)
	}
	return usdValueFromPrice(price, amount), nil
}

// TokenAmountFromUsd returns the quantity of asset worth usdAmount at the
// current feed price.
func (e *Engine) TokenAmountFromUsd(ctx context.Context, asset common.Address, usdAmount *big.Int) (*big.Int, error) {
	price, err := e.latestPrice(ctx, asset)
	if err != nil {
		return nil, err
	}
	if usdAmount == nil {
		usdAmount = big.NewInt(0)
	}
	return tokenAmountFromPrice(price, usdAmount), nil
}
