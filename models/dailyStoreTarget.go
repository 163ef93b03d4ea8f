package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyStoreTarget holds one target amount per store per day. Weekly and
// monthly goals are expanded into daily rows at write time, so reads never
// need period arithmetic.
//
// Grain: (target_date, store_code).
type DailyStoreTarget struct {
	TargetDate time.Time `gorm:"primaryKey;type:date" json:"target_date"`
	StoreCode  string    `gorm:"primaryKey;size:50" json:"store_code"`

	TargetAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"target_amount"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DailyStoreTarget) TableName() string {
	return "daily_store_targets"
}
