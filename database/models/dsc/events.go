package dsc

import (
	"github.com/mcdexio/dsc-engine/database/models"
	"github.com/shopspring/decimal"
)

// CollateralDeposited is the append-only deposit event log.
type CollateralDeposited struct {
	ID      int64           `gorm:"column:id;primary_key;AUTO_INCREMENT;not null"`
	Account string          `gorm:"column:account;type:varchar(64);not null;index" json:"account"`
	Asset   string          `gorm:"column:asset;type:varchar(64);not null;index" json:"asset"`
	Amount  decimal.Decimal `gorm:"column:amount;type:decimal(78,0);not null" json:"amount"`

	models.Base
}

// CollateralRedeemed is the append-only redemption event log. RedeemedFrom
// and RedeemedTo differ when a liquidator seizes collateral.
type CollateralRedeemed struct {
	ID           int64           `gorm:"column:id;primary_key;AUTO_INCREMENT;not null"`
	RedeemedFrom string          `gorm:"column:redeemed_from;type:varchar(64);not null;index" json:"redeemedFrom"`
	RedeemedTo   string          `gorm:"column:redeemed_to;type:varchar(64);not null;index" json:"redeemedTo"`
	Asset        string          `gorm:"column:asset;type:varchar(64);not null;index" json:"asset"`
	Amount       decimal.Decimal `gorm:"column:amount;type:decimal(78,0);not null" json:"amount"`

	models.Base
}
