// Package dscdb implements the engine's Store contract on top of gorm, so a
// deployment's ledgers survive restarts. Every engine operation maps onto one
// database transaction.
package dscdb

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mcdexio/dsc-engine/database/models"
	"github.com/mcdexio/dsc-engine/database/models/dsc"
	"github.com/mcdexio/dsc-engine/engine"
	"github.com/mcdexio/dsc-engine/types"
)

// SchemaVersion is bumped whenever the persisted layout changes.
const SchemaVersion = "1"

// Store is the gorm-backed persistence layer.
type Store struct {
	db *gorm.DB
}

// New wraps db. The caller runs Migrate once at startup.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the persisted state layout and records the
// schema version.
func (s *Store) Migrate() error {
	err := s.db.AutoMigrate(
		&dsc.Collateral{},
		&dsc.Debt{},
		&dsc.CollateralDeposited{},
		&dsc.CollateralRedeemed{},
		&models.System{},
	)
	if err != nil {
		return fmt.Errorf("dscdb: migrate: %w", err)
	}
	version := models.System{Name: types.SysVarSchemaVersion, Value: SchemaVersion}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&version).Error
}

func (s *Store) CollateralBalance(ctx context.Context, user, asset common.Address) (*big.Int, error) {
	var row dsc.Collateral
	err := s.db.WithContext(ctx).Where("account = ? AND asset = ?", user.Hex(), asset.Hex()).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return big.NewInt(0), nil
	}
	if err != nil {
		return nil, err
	}
	return row.Amount.BigInt(), nil
}

func (s *Store) SetCollateralBalance(ctx context.Context, user, asset common.Address, amount *big.Int) error {
	row := dsc.Collateral{
		Account: user.Hex(),
		Asset:   asset.Hex(),
		Amount:  decimal.NewFromBigInt(amount, 0),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account"}, {Name: "asset"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(&row).Error
}

func (s *Store) Debt(ctx context.Context, user common.Address) (*big.Int, error) {
	var row dsc.Debt
	err := s.db.WithContext(ctx).Where("account = ?", user.Hex()).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return big.NewInt(0), nil
	}
	if err != nil {
		return nil, err
	}
	return row.Amount.BigInt(), nil
}

func (s *Store) SetDebt(ctx context.Context, user common.Address, amount *big.Int) error {
	row := dsc.Debt{
		Account: user.Hex(),
		Amount:  decimal.NewFromBigInt(amount, 0),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(&row).Error
}

func (s *Store) AppendDeposit(ctx context.Context, ev engine.DepositEvent) error {
	row := dsc.CollateralDeposited{
		Account: ev.User.Hex(),
		Asset:   ev.Asset.Hex(),
		Amount:  decimal.NewFromBigInt(ev.Amount, 0),
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

func (s *Store) AppendRedemption(ctx context.Context, ev engine.RedemptionEvent) error {
	row := dsc.CollateralRedeemed{
		RedeemedFrom: ev.From.Hex(),
		RedeemedTo:   ev.To.Hex(),
		Asset:        ev.Asset.Hex(),
		Amount:       decimal.NewFromBigInt(ev.Amount, 0),
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

// Transact maps the engine's unit of work onto a database transaction.
func (s *Store) Transact(ctx context.Context, fn func(tx engine.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}
