package dscdb

import (
	"context"
	"errors"
	"math/big"
	"os"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/suite"

	database "github.com/mcdexio/dsc-engine/database/db"
	"github.com/mcdexio/dsc-engine/database/models/dsc"
	"github.com/mcdexio/dsc-engine/engine"
)

var (
	alice    = common.HexToAddress("0xa11ce")
	wethAddr = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
)

// StoreTestSuite runs against a live postgres pointed to by DB_ARGS.
type StoreTestSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func TestStore(t *testing.T) {
	if os.Getenv("DB_ARGS") == "" {
		t.Skip("DB_ARGS not set, skipping database-backed store tests")
	}
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) SetupSuite() {
	database.Initialize()
	s.store = New(database.GetDB())
	s.Require().NoError(s.store.Migrate())
	s.ctx = context.Background()
}

func (s *StoreTestSuite) TearDownSuite() {
	database.Finalize()
}

func (s *StoreTestSuite) SetupTest() {
	s.Require().NoError(s.store.db.Where("1 = 1").Delete(&dsc.Collateral{}).Error)
	s.Require().NoError(s.store.db.Where("1 = 1").Delete(&dsc.Debt{}).Error)
	s.Require().NoError(s.store.db.Where("1 = 1").Delete(&dsc.CollateralDeposited{}).Error)
	s.Require().NoError(s.store.db.Where("1 = 1").Delete(&dsc.CollateralRedeemed{}).Error)
}

func (s *StoreTestSuite) TestCollateralBalanceUpsert() {
	bal, err := s.store.CollateralBalance(s.ctx, alice, wethAddr)
	s.Require().NoError(err)
	s.Require().Zero(big.NewInt(0).Cmp(bal))

	s.Require().NoError(s.store.SetCollateralBalance(s.ctx, alice, wethAddr, big.NewInt(123)))
	bal, err = s.store.CollateralBalance(s.ctx, alice, wethAddr)
	s.Require().NoError(err)
	s.Require().Zero(big.NewInt(123).Cmp(bal))

	// Second write updates in place instead of violating the unique index.
	s.Require().NoError(s.store.SetCollateralBalance(s.ctx, alice, wethAddr, big.NewInt(456)))
	bal, err = s.store.CollateralBalance(s.ctx, alice, wethAddr)
	s.Require().NoError(err)
	s.Require().Zero(big.NewInt(456).Cmp(bal))
}

func (s *StoreTestSuite) TestDebtUpsert() {
	debt, err := s.store.Debt(s.ctx, alice)
	s.Require().NoError(err)
	s.Require().Zero(big.NewInt(0).Cmp(debt))

	s.Require().NoError(s.store.SetDebt(s.ctx, alice, big.NewInt(777)))
	s.Require().NoError(s.store.SetDebt(s.ctx, alice, big.NewInt(888)))
	debt, err = s.store.Debt(s.ctx, alice)
	s.Require().NoError(err)
	s.Require().Zero(big.NewInt(888).Cmp(debt))
}

func (s *StoreTestSuite) TestEvents() {
	err := s.store.AppendDeposit(s.ctx, engine.DepositEvent{
		User: alice, Asset: wethAddr, Amount: big.NewInt(10)})
	s.Require().NoError(err)
	err = s.store.AppendRedemption(s.ctx, engine.RedemptionEvent{
		From: alice, To: alice, Asset: wethAddr, Amount: big.NewInt(4)})
	s.Require().NoError(err)

	var deposits []dsc.CollateralDeposited
	s.Require().NoError(s.store.db.Find(&deposits).Error)
	s.Require().Len(deposits, 1)
	s.Require().Equal(alice.Hex(), deposits[0].Account)

	var redemptions []dsc.CollateralRedeemed
	s.Require().NoError(s.store.db.Find(&redemptions).Error)
	s.Require().Len(redemptions, 1)
	s.Require().Equal(alice.Hex(), redemptions[0].RedeemedFrom)
	s.Require().Equal(alice.Hex(), redemptions[0].RedeemedTo)
}

func (s *StoreTestSuite) TestTransactRollback() {
	s.Require().NoError(s.store.SetDebt(s.ctx, alice, big.NewInt(100)))

	boom := errors.New("boom")
	err := s.store.Transact(s.ctx, func(tx engine.Store) error {
		if err := tx.SetDebt(s.ctx, alice, big.NewInt(999)); err != nil {
			return err
		}
		return boom
	})
	s.Require().ErrorIs(err, boom)

	debt, err := s.store.Debt(s.ctx, alice)
	s.Require().NoError(err)
	s.Require().Zero(big.NewInt(100).Cmp(debt))
}

func (s *StoreTestSuite) TestCancelledContextAbortsQueries() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.store.Debt(ctx, alice)
	s.Require().Error(err)
	s.Require().Error(s.store.SetDebt(ctx, alice, big.NewInt(1)))
	_, err = s.store.CollateralBalance(ctx, alice, wethAddr)
	s.Require().Error(err)
}

func (s *StoreTestSuite) TestTransactCommit() {
	err := s.store.Transact(s.ctx, func(tx engine.Store) error {
		return tx.SetDebt(s.ctx, alice, big.NewInt(55))
	})
	s.Require().NoError(err)

	debt, err := s.store.Debt(s.ctx, alice)
	s.Require().NoError(err)
	s.Require().Zero(big.NewInt(55).Cmp(debt))
}
