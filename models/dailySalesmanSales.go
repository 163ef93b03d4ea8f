package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailySalesmanSales is the per-salesman daily sales rollup. Rows only exist
// for source lines that carried a salesman number, so totals here can be a
// subset of the store rollup for the same day.
//
// Grain: (sale_date, store_code, salesman_no).
type DailySalesmanSales struct {
	SaleDate   time.Time `gorm:"primaryKey;type:date" json:"sale_date"`
	StoreCode  string    `gorm:"primaryKey;size:50" json:"store_code"`
	SalesmanNo string    `gorm:"primaryKey;size:50" json:"salesman_no"`

	SalesmanName string `gorm:"size:100" json:"salesman_name"`

	NetSales  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"net_sales"`
	Qty       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"qty"`
	BillCount int             `gorm:"not null;default:0" json:"bill_count"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DailySalesmanSales) TableName() string {
	return "daily_salesman_sales"
}
