package targets

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/hq_backend/config"
	"bitbucket.org/mmdatafocus/hq_backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

// StoreSelectorAll addresses every active store in a bulk target write.
const StoreSelectorAll = "ALL"

const (
	GoalTypeStore    = "store"
	GoalTypeSalesman = "salesman"
)

type StoreTargetInput struct {
	TargetDate   string          `json:"target_date" binding:"required"`
	StoreCode    string          `json:"store_code" binding:"required"`
	TargetAmount decimal.Decimal `json:"target_amount"`
}

type SalesmanTargetInput struct {
	TargetDate   string          `json:"target_date" binding:"required"`
	StoreCode    string          `json:"store_code" binding:"required"`
	SalesmanNo   string          `json:"salesman_no"`
	TargetAmount decimal.Decimal `json:"target_amount"`
}

type PeriodTargetInput struct {
	GoalType   string          `json:"goal_type" binding:"required"`
	Period     string          `json:"period" binding:"required"`
	AnchorDate string          `json:"anchor_date" binding:"required"`
	StoreCode  string          `json:"store_code" binding:"required"`
	SalesmanNo string          `json:"salesman_no"`
	Amount     decimal.Decimal `json:"amount"`
}

type SpecialTargetInput struct {
	Title          string          `json:"title" binding:"required"`
	StoreCode      *string         `json:"store_code"`
	StartDate      string          `json:"start_date" binding:"required"`
	EndDate        string          `json:"end_date" binding:"required"`
	Dimension      string          `json:"dimension" binding:"required"`
	DimensionValue string          `json:"dimension_value"`
	TargetValue    decimal.Decimal `json:"target_value"`
}

// UpsertStoreTargets replaces the target amount for each (date, store) key.
// Validation runs over the whole batch before anything is written.
func UpsertStoreTargets(ctx context.Context, inputs []StoreTargetInput) (int, error) {
	rows := make([]models.DailyStoreTarget, 0, len(inputs))
	for _, in := range inputs {
		targetDate, err := parseDate(in.TargetDate)
		if err != nil {
			return 0, err
		}
		if strings.TrimSpace(in.StoreCode) == "" {
			return 0, errors.New("store code is required")
		}
		rows = append(rows, models.DailyStoreTarget{
			TargetDate:   targetDate,
			StoreCode:    strings.TrimSpace(in.StoreCode),
			TargetAmount: in.TargetAmount,
		})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	db := config.GetDB().WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "target_date"}, {Name: "store_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"target_amount", "updated_at"}),
	}).Create(&rows).Error; err != nil {
		return 0, err
	}

	invalidateReportCaches()
	return len(rows), nil
}

// UpsertSalesmanTargets replaces the target for each (date, store, salesman)
// key. A row without a salesman number fails the whole batch before any
// write, per-salesman targets are meaningless without one.
func UpsertSalesmanTargets(ctx context.Context, inputs []SalesmanTargetInput) (int, error) {
	rows := make([]models.DailySalesmanTarget, 0, len(inputs))
	for _, in := range inputs {
		targetDate, err := parseDate(in.TargetDate)
		if err != nil {
			return 0, err
		}
		if strings.TrimSpace(in.StoreCode) == "" {
			return 0, errors.New("store code is required")
		}
		if strings.TrimSpace(in.SalesmanNo) == "" {
			return 0, errors.New("salesman number is required for a salesman target")
		}
		rows = append(rows, models.DailySalesmanTarget{
			TargetDate:   targetDate,
			StoreCode:    strings.TrimSpace(in.StoreCode),
			SalesmanNo:   strings.TrimSpace(in.SalesmanNo),
			TargetAmount: in.TargetAmount,
		})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	db := config.GetDB().WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "target_date"}, {Name: "store_code"}, {Name: "salesman_no"}},
		DoUpdates: clause.AssignmentColumns([]string{"target_amount", "updated_at"}),
	}).Create(&rows).Error; err != nil {
		return 0, err
	}

	invalidateReportCaches()
	return len(rows), nil
}

// CreatePeriodTarget expands a period anchored at a base date into daily
// rows, one per day per selected store, each with the given amount. The
// "ALL" selector resolves to the active store list at write time. Re-running
// the same request replaces the same rows, never duplicates them.
func CreatePeriodTarget(ctx context.Context, input PeriodTargetInput) (int, error) {
	anchor, err := parseDate(input.AnchorDate)
	if err != nil {
		return 0, err
	}

	days, err := PeriodDays(input.Period, anchor)
	if err != nil {
		return 0, err
	}

	storeCodes, err := resolveStoreSelector(ctx, input.StoreCode)
	if err != nil {
		return 0, err
	}
	if len(storeCodes) == 0 {
		return 0, errors.New("no stores matched the selector")
	}

	switch input.GoalType {
	case GoalTypeStore:
		inputs := make([]StoreTargetInput, 0, len(days)*len(storeCodes))
		for _, store := range storeCodes {
			for _, day := range days {
				inputs = append(inputs, StoreTargetInput{
					TargetDate:   day.Format("2006-01-02"),
					StoreCode:    store,
					TargetAmount: input.Amount,
				})
			}
		}
		return UpsertStoreTargets(ctx, inputs)
	case GoalTypeSalesman:
		if strings.TrimSpace(input.SalesmanNo) == "" {
			return 0, errors.New("salesman number is required for a salesman target")
		}
		inputs := make([]SalesmanTargetInput, 0, len(days)*len(storeCodes))
		for _, store := range storeCodes {
			for _, day := range days {
				inputs = append(inputs, SalesmanTargetInput{
					TargetDate:   day.Format("2006-01-02"),
					StoreCode:    store,
					SalesmanNo:   input.SalesmanNo,
					TargetAmount: input.Amount,
				})
			}
		}
		return UpsertSalesmanTargets(ctx, inputs)
	default:
		return 0, errors.New("goal type must be store or salesman")
	}
}

// CreateSpecialTarget inserts a dimension-scoped quantity goal. These are
// plain inserts, each call creates a new row.
func CreateSpecialTarget(ctx context.Context, input SpecialTargetInput) (*models.SpecialTarget, error) {
	if strings.TrimSpace(input.DimensionValue) == "" {
		return nil, errors.New("dimension value is required for a special target")
	}
	switch input.Dimension {
	case models.SpecialTargetDimensionDept, models.SpecialTargetDimensionSection,
		models.SpecialTargetDimensionMark, models.SpecialTargetDimensionStyleNo,
		models.SpecialTargetDimensionBarcode:
	default:
		return nil, errors.New("unknown special target dimension")
	}

	startDate, err := parseDate(input.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate(input.EndDate)
	if err != nil {
		return nil, err
	}
	if endDate.Before(startDate) {
		return nil, errors.New("end date is before start date")
	}

	row := models.SpecialTarget{
		Title:          input.Title,
		StoreCode:      input.StoreCode,
		StartDate:      startDate,
		EndDate:        endDate,
		Dimension:      input.Dimension,
		DimensionValue: strings.TrimSpace(input.DimensionValue),
		Metric:         "qty",
		TargetValue:    input.TargetValue,
	}

	db := config.GetDB().WithContext(ctx)
	if err := db.Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func ListSpecialTargets(ctx context.Context, storeCode string) ([]models.SpecialTarget, error) {
	db := config.GetDB().WithContext(ctx)

	query := db.Model(&models.SpecialTarget{})
	if storeCode != "" {
		query = query.Where("store_code = ? OR store_code IS NULL", storeCode)
	}

	var rows []models.SpecialTarget
	if err := query.Order("start_date desc, id desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func resolveStoreSelector(ctx context.Context, selector string) ([]string, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return nil, errors.New("store selector is required")
	}
	if strings.EqualFold(selector, StoreSelectorAll) {
		return models.ActiveStoreCodes(ctx)
	}
	return []string{selector}, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, errors.New("date must be YYYY-MM-DD")
	}
	return t, nil
}

func invalidateReportCaches() {
	_ = config.RemoveRedisKey(
		"Report:TodayPerformance",
		"Report:Leaderboard",
		"Report:SalesmanPerformance",
	)
}
