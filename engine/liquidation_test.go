package engine

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/suite"

	"github.com/mcdexio/dsc-engine/bank"
)

type LiquidationTestSuite struct {
	suite.Suite
	f   *fixture
	ctx context.Context
}

func (s *LiquidationTestSuite) SetupTest() {
	s.f = newFixture(s.T())
	s.ctx = context.Background()
}

// openPosition deposits collateral and mints debt for user in one call.
func (s *LiquidationTestSuite) openPosition(user common.Address, collateral, debt *big.Int) {
	s.f.fundWeth(s.T(), user, collateral)
	s.Require().NoError(s.f.eng.DepositCollateralAndMintDSC(s.ctx, user, wethAddr, collateral, debt))
}

func (s *LiquidationTestSuite) TestHealthyPositionNotLiquidatable() {
	s.openPosition(alice, ether(10), ether(100))

	err := s.f.eng.Liquidate(s.ctx, bob, wethAddr, alice, ether(10))
	s.Require().ErrorIs(err, ErrHealthFactorOK)

	bal, err := s.f.eng.CollateralBalanceOf(s.ctx, alice, wethAddr)
	s.Require().NoError(err)
	requireBig(s.T(), ether(10), bal)
	debt, err := s.f.store.Debt(s.ctx, alice)
	s.Require().NoError(err)
	requireBig(s.T(), ether(100), debt)
	s.Require().Empty(s.f.store.Redemptions())
}

func (s *LiquidationTestSuite) TestDebtFreeTargetNotLiquidatable() {
	err := s.f.eng.Liquidate(s.ctx, bob, wethAddr, alice, ether(1))
	s.Require().ErrorIs(err, ErrHealthFactorOK)
}

func (s *LiquidationTestSuite) TestLiquidateRejectsBadInput() {
	s.Require().ErrorIs(
		s.f.eng.Liquidate(s.ctx, bob, wethAddr, alice, big.NewInt(0)),
		ErrInvalidAmount)
	// An unregistered asset fails as such even when the target is healthy.
	s.openPosition(alice, ether(10), ether(100))
	s.Require().ErrorIs(
		s.f.eng.Liquidate(s.ctx, bob, common.HexToAddress("0xdead"), alice, ether(1)),
		ErrInvalidAsset)
	s.Require().ErrorIs(
		s.f.eng.Liquidate(s.ctx, bob, wethAddr, common.Address{}, ether(1)),
		ErrZeroAddress)
	s.Require().ErrorIs(
		s.f.eng.Liquidate(s.ctx, common.Address{}, wethAddr, alice, ether(1)),
		ErrZeroAddress)
}

func (s *LiquidationTestSuite) TestFullLiquidation() {
	s.openPosition(alice, ether(10), ether(100))
	// Bob over-collateralizes so his own ratio survives the price drop.
	s.openPosition(bob, ether(20), ether(100))

	s.f.ethFeed.SetAnswer(price8(18))

	err := s.f.eng.Liquidate(s.ctx, bob, wethAddr, alice, ether(100))
	s.Require().NoError(err)

	// 100 DSC at $18/unit is 5.555... units, plus the 10% bonus.
	seized, ok := new(big.Int).SetString("6111111111111111110", 10)
	s.Require().True(ok)
	remaining := new(big.Int).Sub(ether(10), seized)

	bal, err := s.f.eng.CollateralBalanceOf(s.ctx, alice, wethAddr)
	s.Require().NoError(err)
	requireBig(s.T(), remaining, bal)
	requireBig(s.T(), seized, s.f.balance(s.T(), s.f.weth, bob))

	debt, err := s.f.store.Debt(s.ctx, alice)
	s.Require().NoError(err)
	requireBig(s.T(), big.NewInt(0), debt)

	// Bob paid his 100 DSC; only Alice's units remain outstanding.
	requireBig(s.T(), big.NewInt(0), s.f.balance(s.T(), s.f.dsc.Ledger, bob))
	requireBig(s.T(), ether(100), s.f.dsc.TotalSupply())

	hf, err := s.f.eng.HealthFactor(s.ctx, alice)
	s.Require().NoError(err)
	requireBig(s.T(), maxHealthFactor, hf)

	redemptions := s.f.store.Redemptions()
	s.Require().Len(redemptions, 1)
	s.Require().Equal(alice, redemptions[0].From)
	s.Require().Equal(bob, redemptions[0].To)
	requireBig(s.T(), seized, redemptions[0].Amount)
}

func (s *LiquidationTestSuite) TestSeizureExceedingCollateralFails() {
	s.openPosition(alice, ether(1), ether(999))

	// At $100 the full repayment would seize 10.989 units against a 1 unit
	// position.
	s.f.ethFeed.SetAnswer(price8(100))

	s.Require().NoError(s.f.dsc.Ledger.Mint(bob, ether(999)))
	err := s.f.eng.Liquidate(s.ctx, bob, wethAddr, alice, ether(999))
	s.Require().ErrorIs(err, ErrInsufficientCollateral)

	bal, err := s.f.eng.CollateralBalanceOf(s.ctx, alice, wethAddr)
	s.Require().NoError(err)
	requireBig(s.T(), ether(1), bal)
	debt, err := s.f.store.Debt(s.ctx, alice)
	s.Require().NoError(err)
	requireBig(s.T(), ether(999), debt)
}

func (s *LiquidationTestSuite) TestLiquidatorMustStaySolvent() {
	s.openPosition(alice, ether(10), ether(100))
	// Bob's position breaks at the same price as Alice's.
	s.openPosition(bob, ether(10), ether(100))

	s.f.ethFeed.SetAnswer(price8(18))

	err := s.f.eng.Liquidate(s.ctx, bob, wethAddr, alice, ether(100))
	s.Require().True(IsHealthFactorBroken(err))

	// Everything rolled back: positions, token balances, events.
	bal, err := s.f.eng.CollateralBalanceOf(s.ctx, alice, wethAddr)
	s.Require().NoError(err)
	requireBig(s.T(), ether(10), bal)
	debt, err := s.f.store.Debt(s.ctx, alice)
	s.Require().NoError(err)
	requireBig(s.T(), ether(100), debt)
	requireBig(s.T(), big.NewInt(0), s.f.balance(s.T(), s.f.weth, bob))
	requireBig(s.T(), ether(100), s.f.balance(s.T(), s.f.dsc.Ledger, bob))
	requireBig(s.T(), ether(200), s.f.dsc.TotalSupply())
	s.Require().Empty(s.f.store.Redemptions())
}

func (s *LiquidationTestSuite) TestLiquidationMustImproveRatio() {
	// The feed answers $18 for the eligibility check and the seizure
	// conversion, then crashes to $1 for the closing check. A partial
	// repayment cannot keep up and the whole call must roll back.
	crashing := &stepFeed{answers: []*big.Int{price8(18), price8(18), price8(1)}}
	store := NewMemoryStore()
	weth := bank.NewLedger("WETH")
	dsc := bank.NewDSC(custodyAddr)
	eng, err := New(Config{
		Custody:          custodyAddr,
		CollateralTokens: []common.Address{wethAddr},
		PriceFeeds:       []PriceFeed{crashing},
		Tokens:           []Token{weth},
		DSC:              dsc,
		Store:            store,
	})
	s.Require().NoError(err)

	ctx := context.Background()
	s.Require().NoError(weth.Mint(alice, ether(10)))
	s.Require().NoError(store.SetCollateralBalance(ctx, alice, wethAddr, ether(10)))
	s.Require().NoError(store.SetDebt(ctx, alice, ether(100)))
	s.Require().NoError(weth.TransferFrom(alice, custodyAddr, ether(10)))
	s.Require().NoError(dsc.Ledger.Mint(alice, ether(100)))

	// Bob holds DSC but no position, so his own closing check is free.
	s.Require().NoError(dsc.Ledger.Mint(bob, ether(10)))

	err = eng.Liquidate(ctx, bob, wethAddr, alice, ether(10))
	s.Require().ErrorIs(err, ErrHealthFactorNotImproved)

	bal, err := store.CollateralBalance(ctx, alice, wethAddr)
	s.Require().NoError(err)
	requireBig(s.T(), ether(10), bal)
	debt, err := store.Debt(ctx, alice)
	s.Require().NoError(err)
	requireBig(s.T(), ether(100), debt)
	requireBig(s.T(), ether(10), s.balanceOf(dsc.Ledger, bob))
	requireBig(s.T(), big.NewInt(0), s.balanceOf(weth, bob))
	requireBig(s.T(), ether(10), s.balanceOf(weth, custodyAddr))
	s.Require().Empty(store.Redemptions())
}

func (s *LiquidationTestSuite) balanceOf(l *bank.Ledger, owner common.Address) *big.Int {
	bal, err := l.BalanceOf(owner)
	s.Require().NoError(err)
	return bal
}

func TestLiquidation(t *testing.T) {
	suite.Run(t, new(LiquidationTestSuite))
}
