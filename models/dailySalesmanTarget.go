package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailySalesmanTarget holds one target amount per salesman per day.
//
// Grain: (target_date, store_code, salesman_no).
type DailySalesmanTarget struct {
	TargetDate time.Time `gorm:"primaryKey;type:date" json:"target_date"`
	StoreCode  string    `gorm:"primaryKey;size:50" json:"store_code"`
	SalesmanNo string    `gorm:"primaryKey;size:50" json:"salesman_no"`

	TargetAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"target_amount"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DailySalesmanTarget) TableName() string {
	return "daily_salesman_targets"
}
