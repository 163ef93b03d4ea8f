package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SpecialTargetDimensionDept    = "dept"
	SpecialTargetDimensionSection = "section"
	SpecialTargetDimensionMark    = "mark"
	SpecialTargetDimensionStyleNo = "style_no"
	SpecialTargetDimensionBarcode = "barcode"
)

// SpecialTarget is a quantity goal scoped to a product dimension (department,
// section, brand, style or barcode) over an explicit date range. A nil store
// code means chain-wide. Unlike daily targets these are plain inserts, each
// creation is a new row.
type SpecialTarget struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Title     string    `gorm:"size:100;not null" json:"title" binding:"required"`
	StoreCode *string   `gorm:"size:50;index" json:"store_code"`
	StartDate time.Time `gorm:"type:date;not null" json:"start_date"`
	EndDate   time.Time `gorm:"type:date;not null" json:"end_date"`

	Dimension      string `gorm:"size:20;not null" json:"dimension"`
	DimensionValue string `gorm:"size:100;not null" json:"dimension_value"`
	Metric         string `gorm:"size:10;not null;default:qty" json:"metric"`

	TargetValue decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"target_value"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
