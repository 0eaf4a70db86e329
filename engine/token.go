package engine

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Token is the transfer surface the engine requires from a fungible-unit
// ledger. The engine holds an operator handle: TransferFrom moves units
// between arbitrary accounts, which is how collateral enters and leaves
// engine custody.
type Token interface {
	TransferFrom(from, to common.Address, amount *big.Int) error
	BalanceOf(owner common.Address) (*big.Int, error)
}

// StableToken is the issued synthetic-dollar token. The engine is the single
// mint and burn authority; burns permanently destroy units held by from.
type StableToken interface {
	Token
	Mint(to common.Address, amount *big.Int) error
	Burn(from common.Address, amount *big.Int) error
}

// PriceFeed reports the latest USD price of one whole unit of an asset with
// eight fractional decimals. No staleness or sanity checking is layered on
// top of the feed; a frozen or manipulated source is a trust assumption on
// the feed operator.
type PriceFeed interface {
	LatestAnswer(ctx context.Context) (*big.Int, error)
}
