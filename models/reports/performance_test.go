package reports

import (
	"database/sql"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/hq_backend/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestSafePercent(t *testing.T) {
	tests := []struct {
		name   string
		sales  string
		target string
		want   int
	}{
		{"zero target reads as zero", "100", "0", 0},
		{"negative target reads as zero", "100", "-5", 0},
		{"zero sales", "0", "1000", 0},
		{"exact", "500", "1000", 50},
		{"over target", "1500", "1000", 150},
		{"rounds half up", "125", "1000", 13},
		{"rounds down", "124", "1000", 12},
		{"fractional amounts", "333.33", "1000", 33},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SafePercent(dec(tc.sales), dec(tc.target))
			if got != tc.want {
				t.Fatalf("SafePercent(%s, %s) = %d, want %d", tc.sales, tc.target, got, tc.want)
			}
		})
	}
}

func TestBuildLeaderboardOrdering(t *testing.T) {
	saleDate := time.Date(2024, 6, 19, 0, 0, 0, 0, time.UTC)
	stores := []models.Store{
		{Code: "S1", Name: "Downtown"},
		{Code: "S2", Name: "Airport"},
		{Code: "S3", Name: "Mall"},
	}
	salesRows := []models.DailyStoreSales{
		{SaleDate: saleDate, StoreCode: "S1", NetSales: dec("800"), BillCount: 10},
		{SaleDate: saleDate, StoreCode: "S2", NetSales: dec("900"), BillCount: 12},
		{SaleDate: saleDate, StoreCode: "S3", NetSales: dec("400"), BillCount: 5},
	}
	targets := map[string]decimal.Decimal{
		"S1": dec("1000"), // 80%
		"S2": dec("1000"), // 90%
		"S3": dec("1000"), // 40%
	}

	entries := BuildLeaderboard(stores, salesRows, targets)

	want := []string{"S2", "S1", "S3"}
	for i, code := range want {
		if entries[i].StoreCode != code {
			t.Fatalf("position %d: expected %s, got %s", i, code, entries[i].StoreCode)
		}
	}
	if entries[0].StoreName != "Airport" {
		t.Fatalf("store name join wrong: %+v", entries[0])
	}
	if entries[0].Percentage != 90 {
		t.Fatalf("expected 90%%, got %d", entries[0].Percentage)
	}
}

func TestBuildLeaderboardTieBreaksOnSales(t *testing.T) {
	saleDate := time.Date(2024, 6, 19, 0, 0, 0, 0, time.UTC)
	stores := []models.Store{{Code: "S1"}, {Code: "S2"}}
	salesRows := []models.DailyStoreSales{
		{SaleDate: saleDate, StoreCode: "S1", NetSales: dec("500")},
		{SaleDate: saleDate, StoreCode: "S2", NetSales: dec("750")},
	}
	// Both at 50%, S2 has more absolute sales.
	targets := map[string]decimal.Decimal{
		"S1": dec("1000"),
		"S2": dec("1500"),
	}

	entries := BuildLeaderboard(stores, salesRows, targets)
	if entries[0].StoreCode != "S2" {
		t.Fatalf("expected S2 to win the tie on sales, got %s", entries[0].StoreCode)
	}
}

func TestBuildLeaderboardNoTarget(t *testing.T) {
	saleDate := time.Date(2024, 6, 19, 0, 0, 0, 0, time.UTC)
	stores := []models.Store{{Code: "S1"}}
	salesRows := []models.DailyStoreSales{
		{SaleDate: saleDate, StoreCode: "S1", NetSales: dec("500")},
	}

	entries := BuildLeaderboard(stores, salesRows, map[string]decimal.Decimal{})
	if entries[0].Percentage != 0 {
		t.Fatalf("store without a target should read 0%%, got %d", entries[0].Percentage)
	}
	if !entries[0].Target.Equal(decimal.Zero) {
		t.Fatalf("missing target should surface as zero, got %s", entries[0].Target)
	}
}

func TestBuildLeaderboardIncludesStoresWithoutSales(t *testing.T) {
	saleDate := time.Date(2024, 6, 19, 0, 0, 0, 0, time.UTC)
	stores := []models.Store{
		{Code: "S1", Name: "Downtown"},
		{Code: "S2", Name: "Airport"},
	}
	salesRows := []models.DailyStoreSales{
		{SaleDate: saleDate, StoreCode: "S1", NetSales: dec("500"), BillCount: 6},
	}
	targets := map[string]decimal.Decimal{
		"S1": dec("1000"),
		"S2": dec("1000"),
	}

	entries := BuildLeaderboard(stores, salesRows, targets)
	if len(entries) != 2 {
		t.Fatalf("expected an entry per store, got %d", len(entries))
	}
	// S2 sold nothing today but still has a target to stand against.
	last := entries[len(entries)-1]
	if last.StoreCode != "S2" {
		t.Fatalf("expected S2 at the bottom, got %s", last.StoreCode)
	}
	if !last.NetSales.Equal(decimal.Zero) || last.Percentage != 0 || last.BillCount != 0 {
		t.Fatalf("store without sales should read zeros: %+v", last)
	}
	if !last.Target.Equal(dec("1000")) {
		t.Fatalf("target should still surface: %+v", last)
	}
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open gorm: %v", err)
	}
	return db, mock, sqlDB
}

func TestCurrentSalesDateScopedToStores(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	// A store that last synced 06-18 must resolve its own date even when
	// another store already has rows for 06-19.
	want := time.Date(2024, 6, 18, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM `daily_store_sales` WHERE store_code IN (.+) ORDER BY sale_date desc").
		WillReturnRows(sqlmock.NewRows([]string{"sale_date", "store_code"}).AddRow(want, "S2"))

	got, err := currentSalesDate(db, []string{"S2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || !got.Equal(want) {
		t.Fatalf("expected %s, got %v", want.Format("2006-01-02"), got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("date query not scoped to the requested stores: %v", err)
	}
}

func TestCurrentSalesDateUnscopedWithoutStores(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	want := time.Date(2024, 6, 19, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM `daily_store_sales` ORDER BY sale_date desc").
		WillReturnRows(sqlmock.NewRows([]string{"sale_date", "store_code"}).AddRow(want, "S1"))

	got, err := currentSalesDate(db, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || !got.Equal(want) {
		t.Fatalf("expected %s, got %v", want.Format("2006-01-02"), got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected query shape: %v", err)
	}
}

func TestCurrentSalesDateEmptyRollup(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	mock.ExpectQuery("SELECT (.+) FROM `daily_store_sales`").
		WillReturnRows(sqlmock.NewRows([]string{"sale_date", "store_code"}))

	got, err := currentSalesDate(db, []string{"S9"})
	if err != nil {
		t.Fatalf("empty rollup should not error: %v", err)
	}
	if got != nil {
		t.Fatalf("empty rollup should resolve to no date, got %v", got)
	}
}

func TestBuildSalesmanPerformance(t *testing.T) {
	saleDate := time.Date(2024, 6, 19, 0, 0, 0, 0, time.UTC)
	rows := []models.DailySalesmanSales{
		{SaleDate: saleDate, StoreCode: "S1", SalesmanNo: "SP-1", SalesmanName: "Aye Aye", NetSales: dec("300"), BillCount: 4},
		{SaleDate: saleDate, StoreCode: "S1", SalesmanNo: "SP-2", SalesmanName: "Mya Mya", NetSales: dec("600"), BillCount: 7},
	}
	targets := map[string]decimal.Decimal{
		"S1:SP-1": dec("300"),
		// SP-2 has sales but no target.
	}

	report := BuildSalesmanPerformance(saleDate, "S1", rows, targets, dec("1800"))

	// Sorted by net sales descending, not by achievement.
	if report.Items[0].SalesmanNo != "SP-2" {
		t.Fatalf("expected SP-2 with higher sales first, got %+v", report.Items[0])
	}
	if report.Items[0].Percentage != 0 || !report.Items[0].Target.Equal(decimal.Zero) {
		t.Fatalf("salesman without target should read 0%%: %+v", report.Items[0])
	}
	if report.Items[1].Percentage != 100 {
		t.Fatalf("expected SP-1 at 100%%, got %+v", report.Items[1])
	}

	if !report.TeamNetSales.Equal(dec("900")) {
		t.Fatalf("team net sales: expected 900, got %s", report.TeamNetSales)
	}
	// Team percentage measured against the store target, 900/1800.
	if report.TeamPercentage != 50 {
		t.Fatalf("team percentage: expected 50, got %d", report.TeamPercentage)
	}
	if report.SaleDate != "2024-06-19" {
		t.Fatalf("sale date: got %s", report.SaleDate)
	}
}

func TestBuildSalesmanPerformanceZeroStoreTarget(t *testing.T) {
	saleDate := time.Date(2024, 6, 19, 0, 0, 0, 0, time.UTC)
	rows := []models.DailySalesmanSales{
		{SaleDate: saleDate, StoreCode: "S1", SalesmanNo: "SP-1", NetSales: dec("300")},
	}

	report := BuildSalesmanPerformance(saleDate, "S1", rows, nil, decimal.Zero)
	if report.TeamPercentage != 0 {
		t.Fatalf("zero store target should give 0%% team percentage, got %d", report.TeamPercentage)
	}
}
