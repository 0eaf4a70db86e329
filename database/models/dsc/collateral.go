package dsc

import (
	"github.com/mcdexio/dsc-engine/database/models"
	"github.com/shopspring/decimal"
)

// Collateral is one (account, asset) position: the deposited quantity in
// asset-native precision, stored as a wei-style integer.
type Collateral struct {
	ID      int64           `gorm:"column:id;primary_key;AUTO_INCREMENT;not null"`
	Account string          `gorm:"column:account;type:varchar(64);not null;uniqueIndex:idx_collateral_account_asset" json:"account"`
	Asset   string          `gorm:"column:asset;type:varchar(64);not null;uniqueIndex:idx_collateral_account_asset" json:"asset"`
	Amount  decimal.Decimal `gorm:"column:amount;type:decimal(78,0);not null" json:"amount"`

	models.Base
}

// Debt is one account's outstanding minted-DSC balance (18 decimals).
type Debt struct {
	ID      int64           `gorm:"column:id;primary_key;AUTO_INCREMENT;not null"`
	Account string          `gorm:"column:account;type:varchar(64);not null;uniqueIndex" json:"account"`
	Amount  decimal.Decimal `gorm:"column:amount;type:decimal(78,0);not null" json:"amount"`

	models.Base
}
