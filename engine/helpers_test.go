package engine

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/mcdexio/dsc-engine/bank"
	"github.com/mcdexio/dsc-engine/feed"
)

var (
	custodyAddr = common.HexToAddress("0x0000000000000000000000000000000000000d5c")
	wethAddr    = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	wbtcAddr    = common.HexToAddress("0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599")
	alice       = common.HexToAddress("0xa11ce")
	bob         = common.HexToAddress("0xb0b")
)

// requireBig compares big integers by value. Zero values carry different
// internal representations depending on how they were produced, so
// require.Equal is not reliable for them.
func requireBig(t *testing.T, want, got *big.Int) {
	t.Helper()
	require.NotNil(t, got)
	require.Zero(t, want.Cmp(got), "want %s got %s", want.String(), got.String())
}

// ether scales n into 18-decimal fixed point.
func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), precision)
}

// price8 scales a USD price into the 8-decimal feed convention.
func price8(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(100_000_000))
}

type fixture struct {
	eng     *Engine
	store   *MemoryStore
	weth    *bank.Ledger
	wbtc    *bank.Ledger
	dsc     *bank.DSC
	ethFeed *feed.Fixed
	btcFeed *feed.Fixed
}

// newFixture wires a two-asset engine over the in-memory store with fixed
// feeds at $2000/ETH and $30000/BTC.
func newFixture(t *testing.T) *fixture {
	f := &fixture{
		store:   NewMemoryStore(),
		weth:    bank.NewLedger("WETH"),
		wbtc:    bank.NewLedger("WBTC"),
		dsc:     bank.NewDSC(custodyAddr),
		ethFeed: feed.NewFixed(price8(2000)),
		btcFeed: feed.NewFixed(price8(30000)),
	}
	eng, err := New(Config{
		Custody:          custodyAddr,
		CollateralTokens: []common.Address{wethAddr, wbtcAddr},
		PriceFeeds:       []PriceFeed{f.ethFeed, f.btcFeed},
		Tokens:           []Token{f.weth, f.wbtc},
		DSC:              f.dsc,
		Store:            f.store,
	})
	require.NoError(t, err)
	f.eng = eng
	return f
}

func (f *fixture) fundWeth(t *testing.T, user common.Address, amount *big.Int) {
	require.NoError(t, f.weth.Mint(user, amount))
}

func (f *fixture) balance(t *testing.T, token *bank.Ledger, owner common.Address) *big.Int {
	bal, err := token.BalanceOf(owner)
	require.NoError(t, err)
	return bal
}

// stepFeed replays a fixed sequence of answers, repeating the last one.
type stepFeed struct {
	answers []*big.Int
	calls   int
}

func (f *stepFeed) LatestAnswer(context.Context) (*big.Int, error) {
	i := f.calls
	if i >= len(f.answers) {
		i = len(f.answers) - 1
	}
	f.calls++
	return new(big.Int).Set(f.answers[i]), nil
}

// reentrantToken attempts a nested deposit from inside its transfer callback,
// recording what the engine answered.
type reentrantToken struct {
	*bank.Ledger
	eng   *Engine
	user  common.Address
	asset common.Address
	inner error
	fired bool
}

func (r *reentrantToken) TransferFrom(from, to common.Address, amount *big.Int) error {
	if !r.fired && r.eng != nil {
		r.fired = true
		r.inner = r.eng.DepositCollateral(context.Background(), r.user, r.asset, big.NewInt(1))
	}
	return r.Ledger.TransferFrom(from, to, amount)
}

// brokenMintDSC refuses issuance while keeping the rest of the token surface.
type brokenMintDSC struct {
	*bank.DSC
	mintErr error
}

func (b *brokenMintDSC) Mint(common.Address, *big.Int) error {
	return b.mintErr
}
