package models

import "time"

// Base is the base model for all data models.
type Base struct {
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp with time zone" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp with time zone" json:"-"`
}

// TimestampFieldName return created at as our timestamp.
func (b Base) TimestampFieldName() string {
	return "CreatedAt"
}
