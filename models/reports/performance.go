package reports

import (
	"context"
	"errors"
	"sort"
	"time"

	"bitbucket.org/mmdatafocus/hq_backend/config"
	"bitbucket.org/mmdatafocus/hq_backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TodayPerformance struct {
	SaleDate   string          `json:"sale_date"`
	StoreCode  string          `json:"store_code,omitempty"`
	NetSales   decimal.Decimal `json:"net_sales"`
	Qty        decimal.Decimal `json:"qty"`
	BillCount  int             `json:"bill_count"`
	Target     decimal.Decimal `json:"target"`
	Percentage int             `json:"percentage"`
	SalesTill  *string         `json:"sales_till"`
}

type LeaderboardEntry struct {
	StoreCode  string          `json:"store_code"`
	StoreName  string          `json:"store_name"`
	NetSales   decimal.Decimal `json:"net_sales"`
	Target     decimal.Decimal `json:"target"`
	Percentage int             `json:"percentage"`
	BillCount  int             `json:"bill_count"`
}

type SalesmanPerformance struct {
	SalesmanNo   string          `json:"salesman_no"`
	SalesmanName string          `json:"salesman_name"`
	StoreCode    string          `json:"store_code"`
	NetSales     decimal.Decimal `json:"net_sales"`
	Target       decimal.Decimal `json:"target"`
	Percentage   int             `json:"percentage"`
	BillCount    int             `json:"bill_count"`
}

// SalesmanPerformanceReport carries the per-salesman rows plus the store's
// own target, which is used for the aggregate team percentage rather than
// being folded into individual rows.
type SalesmanPerformanceReport struct {
	SaleDate       string                `json:"sale_date"`
	StoreCode      string                `json:"store_code,omitempty"`
	StoreTarget    decimal.Decimal       `json:"store_target"`
	TeamNetSales   decimal.Decimal       `json:"team_net_sales"`
	TeamPercentage int                   `json:"team_percentage"`
	Items          []SalesmanPerformance `json:"items"`
}

// SafePercent returns sales over target as a rounded whole percentage.
// A missing or zero target reads as 0, never a division error.
func SafePercent(sales decimal.Decimal, target decimal.Decimal) int {
	if target.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	return int(sales.Div(target).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

// GetCurrentSalesDate returns the latest synced sale date among the given
// stores, or nil when no rollup exists for them yet. Stores sync on their own
// schedules, so the date is resolved per scope, never from the whole table
// when a narrower scope is asked for. An empty rollup is a normal state, not
// an error.
func GetCurrentSalesDate(ctx context.Context, storeCodes ...string) (*time.Time, error) {
	return currentSalesDate(config.GetDB().WithContext(ctx), storeCodes)
}

func currentSalesDate(db *gorm.DB, storeCodes []string) (*time.Time, error) {
	query := db.Model(&models.DailyStoreSales{}).Order("sale_date desc")
	if len(storeCodes) > 0 {
		query = query.Where("store_code IN ?", storeCodes)
	}

	var row models.DailyStoreSales
	err := query.Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row.SaleDate, nil
}

// GetTodayPerformance reports company-wide (or one store's) sales against
// target for the latest synced date. Before the first sync it returns zeros.
func GetTodayPerformance(ctx context.Context, storeCode string) (*TodayPerformance, error) {
	started := time.Now()
	defer logSlowReport(ctx, "today_performance", started, map[string]any{"store": storeCode})

	cacheKey := "Report:TodayPerformance"
	if storeCode != "" {
		cacheKey += ":store:" + storeCode
	}
	if reportCacheEnabled() {
		var cached TodayPerformance
		if ok, err := cacheGet(cacheKey, &cached); err == nil && ok {
			return &cached, nil
		}
	}

	var scope []string
	if storeCode != "" {
		scope = append(scope, storeCode)
	}
	saleDate, err := GetCurrentSalesDate(ctx, scope...)
	if err != nil {
		return nil, err
	}
	if saleDate == nil {
		return &TodayPerformance{
			StoreCode: storeCode,
			NetSales:  decimal.Zero,
			Qty:       decimal.Zero,
			Target:    decimal.Zero,
		}, nil
	}

	db := config.GetDB().WithContext(ctx)

	salesQuery := db.Model(&models.DailyStoreSales{}).Where("sale_date = ?", *saleDate)
	targetQuery := db.Model(&models.DailyStoreTarget{}).Where("target_date = ?", *saleDate)
	if storeCode != "" {
		salesQuery = salesQuery.Where("store_code = ?", storeCode)
		targetQuery = targetQuery.Where("store_code = ?", storeCode)
	}

	var totals struct {
		NetSales  decimal.Decimal
		Qty       decimal.Decimal
		BillCount int
	}
	if err := salesQuery.
		Select("COALESCE(SUM(net_sales), 0) as net_sales, COALESCE(SUM(qty), 0) as qty, COALESCE(SUM(bill_count), 0) as bill_count").
		Scan(&totals).Error; err != nil {
		return nil, err
	}

	var target decimal.Decimal
	if err := targetQuery.
		Select("COALESCE(SUM(target_amount), 0)").
		Scan(&target).Error; err != nil {
		return nil, err
	}

	result := TodayPerformance{
		SaleDate:   saleDate.Format("2006-01-02"),
		StoreCode:  storeCode,
		NetSales:   totals.NetSales,
		Qty:        totals.Qty,
		BillCount:  totals.BillCount,
		Target:     target,
		Percentage: SafePercent(totals.NetSales, target),
		SalesTill:  salesTillForDate(ctx, *saleDate),
	}

	if reportCacheEnabled() {
		_ = cacheSet(cacheKey, &result, reportCacheTTL())
	}
	return &result, nil
}

// BuildLeaderboard ranks every known store against its target, ordered by
// achievement with ties falling back to absolute sales. Every store gets an
// entry. A store that has not sold yet still shows up at zero, its target
// standing, rather than silently dropping off the board.
func BuildLeaderboard(stores []models.Store, salesRows []models.DailyStoreSales, targets map[string]decimal.Decimal) []LeaderboardEntry {
	byCode := make(map[string]int, len(stores))
	entries := make([]LeaderboardEntry, 0, len(stores))
	for _, s := range stores {
		byCode[s.Code] = len(entries)
		entries = append(entries, LeaderboardEntry{
			StoreCode:  s.Code,
			StoreName:  s.Name,
			NetSales:   decimal.Zero,
			Target:     targets[s.Code],
			Percentage: 0,
		})
	}

	for _, row := range salesRows {
		idx, ok := byCode[row.StoreCode]
		if !ok {
			continue
		}
		entries[idx].NetSales = row.NetSales
		entries[idx].BillCount = row.BillCount
		entries[idx].Percentage = SafePercent(row.NetSales, entries[idx].Target)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Percentage != entries[j].Percentage {
			return entries[i].Percentage > entries[j].Percentage
		}
		return entries[i].NetSales.GreaterThan(entries[j].NetSales)
	})
	return entries
}

// GetStoreLeaderboard ranks every store for the latest synced date.
func GetStoreLeaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	started := time.Now()
	defer logSlowReport(ctx, "store_leaderboard", started, nil)

	cacheKey := "Report:Leaderboard"
	if reportCacheEnabled() {
		var cached []LeaderboardEntry
		if ok, err := cacheGet(cacheKey, &cached); err == nil && ok {
			return cached, nil
		}
	}

	stores, err := models.GetStores(ctx)
	if err != nil {
		return nil, err
	}
	storeCodes := make([]string, 0, len(stores))
	for _, s := range stores {
		storeCodes = append(storeCodes, s.Code)
	}

	saleDate, err := GetCurrentSalesDate(ctx, storeCodes...)
	if err != nil {
		return nil, err
	}
	if saleDate == nil {
		return []LeaderboardEntry{}, nil
	}

	db := config.GetDB().WithContext(ctx)

	var salesRows []models.DailyStoreSales
	if err := db.Model(&models.DailyStoreSales{}).
		Where("sale_date = ?", *saleDate).
		Find(&salesRows).Error; err != nil {
		return nil, err
	}

	var targetRows []models.DailyStoreTarget
	if err := db.Model(&models.DailyStoreTarget{}).
		Where("target_date = ?", *saleDate).
		Find(&targetRows).Error; err != nil {
		return nil, err
	}
	targets := make(map[string]decimal.Decimal, len(targetRows))
	for _, tr := range targetRows {
		targets[tr.StoreCode] = tr.TargetAmount
	}

	entries := BuildLeaderboard(stores, salesRows, targets)

	if reportCacheEnabled() {
		_ = cacheSet(cacheKey, &entries, reportCacheTTL())
	}
	return entries, nil
}

// BuildSalesmanPerformance joins salesman rollups with their targets and
// the store's own target. Rows sort by net sales descending, the team
// percentage is measured against the store target, not the sum of
// per-salesman targets.
func BuildSalesmanPerformance(saleDate time.Time, storeCode string, rows []models.DailySalesmanSales, targets map[string]decimal.Decimal, storeTarget decimal.Decimal) SalesmanPerformanceReport {
	items := make([]SalesmanPerformance, 0, len(rows))
	teamNetSales := decimal.Zero
	for _, row := range rows {
		target := targets[row.StoreCode+":"+row.SalesmanNo]
		teamNetSales = teamNetSales.Add(row.NetSales)
		items = append(items, SalesmanPerformance{
			SalesmanNo:   row.SalesmanNo,
			SalesmanName: row.SalesmanName,
			StoreCode:    row.StoreCode,
			NetSales:     row.NetSales,
			Target:       target,
			Percentage:   SafePercent(row.NetSales, target),
			BillCount:    row.BillCount,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].NetSales.GreaterThan(items[j].NetSales)
	})

	return SalesmanPerformanceReport{
		SaleDate:       saleDate.Format("2006-01-02"),
		StoreCode:      storeCode,
		StoreTarget:    storeTarget,
		TeamNetSales:   teamNetSales,
		TeamPercentage: SafePercent(teamNetSales, storeTarget),
		Items:          items,
	}
}

// GetSalesmanPerformance reports per-salesman achievement for the latest
// synced date, optionally narrowed to one store.
func GetSalesmanPerformance(ctx context.Context, storeCode string) (*SalesmanPerformanceReport, error) {
	started := time.Now()
	defer logSlowReport(ctx, "salesman_performance", started, map[string]any{"store": storeCode})

	cacheKey := "Report:SalesmanPerformance"
	if storeCode != "" {
		cacheKey += ":store:" + storeCode
	}
	if reportCacheEnabled() {
		var cached SalesmanPerformanceReport
		if ok, err := cacheGet(cacheKey, &cached); err == nil && ok {
			return &cached, nil
		}
	}

	var scope []string
	if storeCode != "" {
		scope = append(scope, storeCode)
	}
	saleDate, err := GetCurrentSalesDate(ctx, scope...)
	if err != nil {
		return nil, err
	}
	if saleDate == nil {
		return &SalesmanPerformanceReport{
			StoreCode:    storeCode,
			StoreTarget:  decimal.Zero,
			TeamNetSales: decimal.Zero,
			Items:        []SalesmanPerformance{},
		}, nil
	}

	db := config.GetDB().WithContext(ctx)

	salesQuery := db.Model(&models.DailySalesmanSales{}).Where("sale_date = ?", *saleDate)
	targetQuery := db.Model(&models.DailySalesmanTarget{}).Where("target_date = ?", *saleDate)
	storeTargetQuery := db.Model(&models.DailyStoreTarget{}).Where("target_date = ?", *saleDate)
	if storeCode != "" {
		salesQuery = salesQuery.Where("store_code = ?", storeCode)
		targetQuery = targetQuery.Where("store_code = ?", storeCode)
		storeTargetQuery = storeTargetQuery.Where("store_code = ?", storeCode)
	}

	var rows []models.DailySalesmanSales
	if err := salesQuery.Find(&rows).Error; err != nil {
		return nil, err
	}

	var targetRows []models.DailySalesmanTarget
	if err := targetQuery.Find(&targetRows).Error; err != nil {
		return nil, err
	}
	targets := make(map[string]decimal.Decimal, len(targetRows))
	for _, tr := range targetRows {
		targets[tr.StoreCode+":"+tr.SalesmanNo] = tr.TargetAmount
	}

	var storeTarget decimal.Decimal
	if err := storeTargetQuery.
		Select("COALESCE(SUM(target_amount), 0)").
		Scan(&storeTarget).Error; err != nil {
		return nil, err
	}

	report := BuildSalesmanPerformance(*saleDate, storeCode, rows, targets, storeTarget)

	if reportCacheEnabled() {
		_ = cacheSet(cacheKey, &report, reportCacheTTL())
	}
	return &report, nil
}

// GetSalesmenForStore lists salesmen seen in the rollups for a store,
// newest appearance first.
func GetSalesmenForStore(ctx context.Context, storeCode string) ([]SalesmanPerformance, error) {
	db := config.GetDB().WithContext(ctx)

	var rows []models.DailySalesmanSales
	if err := db.Model(&models.DailySalesmanSales{}).
		Select("salesman_no, salesman_name, store_code, MAX(sale_date) as sale_date").
		Where("store_code = ?", storeCode).
		Group("salesman_no, salesman_name, store_code").
		Order("sale_date desc").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]SalesmanPerformance, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, SalesmanPerformance{
			SalesmanNo:   row.SalesmanNo,
			SalesmanName: row.SalesmanName,
			StoreCode:    row.StoreCode,
		})
	}
	return entries, nil
}

func salesTillForDate(ctx context.Context, saleDate time.Time) *string {
	db := config.GetDB()

	var meta models.DailySalesMeta
	err := db.WithContext(ctx).Model(&models.DailySalesMeta{}).
		Where("sale_date = ?", saleDate).
		Take(&meta).Error
	if err != nil {
		return nil
	}
	s := meta.SalesTill.Format(time.RFC3339)
	return &s
}
