package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyStoreSales is the per-store daily sales rollup written by the sync
// pipeline and read by the performance dashboards.
//
// Grain: (sale_date, store_code).
//
// NOTE: This table is derived data and can be rebuilt by re-running the
// sales sync for the affected dates.
type DailyStoreSales struct {
	SaleDate  time.Time `gorm:"primaryKey;type:date" json:"sale_date"`
	StoreCode string    `gorm:"primaryKey;size:50" json:"store_code"`

	NetSales  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"net_sales"`
	Qty       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"qty"`
	BillCount int             `gorm:"not null;default:0" json:"bill_count"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DailyStoreSales) TableName() string {
	return "daily_store_sales"
}
