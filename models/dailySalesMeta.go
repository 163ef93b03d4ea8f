package models

import "time"

// DailySalesMeta records bookkeeping about a synced sale date, currently the
// wall-clock time the last extract covering that date was processed. The
// dashboard shows this as "sales till".
type DailySalesMeta struct {
	SaleDate time.Time `gorm:"primaryKey;type:date" json:"sale_date"`

	SalesTill time.Time `json:"sales_till"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DailySalesMeta) TableName() string {
	return "daily_sales_meta"
}
