package salessync

import (
	"sort"
	"time"

	"bitbucket.org/mmdatafocus/hq_backend/models"
	"github.com/shopspring/decimal"
)

type storeKey struct {
	saleDate  string
	storeCode string
}

type salesmanKey struct {
	saleDate   string
	storeCode  string
	salesmanNo string
}

type storeAccum struct {
	saleDate  time.Time
	storeCode string
	netSales  decimal.Decimal
	qty       decimal.Decimal
	bills     map[string]struct{}
}

type salesmanAccum struct {
	saleDate     time.Time
	storeCode    string
	salesmanNo   string
	salesmanName string
	netSales     decimal.Decimal
	qty          decimal.Decimal
	bills        map[string]struct{}
}

// AggregateDaily rolls extract lines up to the (sale_date, store_code) and
// (sale_date, store_code, salesman_no) grains. Bill counts are distinct bill
// numbers, so a bill spread across several lines counts once. Lines with an
// empty bill number contribute to sums but not to the count. The output is
// sorted by date then store (then salesman) so runs are deterministic.
func AggregateDaily(lines []RawSalesLine) ([]models.DailyStoreSales, []models.DailySalesmanSales) {
	storeAccums := make(map[storeKey]*storeAccum)
	salesmanAccums := make(map[salesmanKey]*salesmanAccum)

	for _, line := range lines {
		dateKey := line.SaleDate.Format("2006-01-02")

		sk := storeKey{saleDate: dateKey, storeCode: line.StoreCode}
		sa, ok := storeAccums[sk]
		if !ok {
			sa = &storeAccum{
				saleDate:  line.SaleDate,
				storeCode: line.StoreCode,
				bills:     make(map[string]struct{}),
			}
			storeAccums[sk] = sa
		}
		sa.netSales = sa.netSales.Add(line.NetAmount)
		sa.qty = sa.qty.Add(line.Qty)
		if line.BillNo != "" {
			sa.bills[line.BillNo] = struct{}{}
		}

		if line.SalesmanNo == "" {
			continue
		}
		mk := salesmanKey{saleDate: dateKey, storeCode: line.StoreCode, salesmanNo: line.SalesmanNo}
		ma, ok := salesmanAccums[mk]
		if !ok {
			ma = &salesmanAccum{
				saleDate:   line.SaleDate,
				storeCode:  line.StoreCode,
				salesmanNo: line.SalesmanNo,
				bills:      make(map[string]struct{}),
			}
			salesmanAccums[mk] = ma
		}
		if line.SalesmanName != "" {
			ma.salesmanName = line.SalesmanName
		}
		ma.netSales = ma.netSales.Add(line.NetAmount)
		ma.qty = ma.qty.Add(line.Qty)
		if line.BillNo != "" {
			ma.bills[line.BillNo] = struct{}{}
		}
	}

	storeRows := make([]models.DailyStoreSales, 0, len(storeAccums))
	for _, sa := range storeAccums {
		storeRows = append(storeRows, models.DailyStoreSales{
			SaleDate:  sa.saleDate,
			StoreCode: sa.storeCode,
			NetSales:  sa.netSales,
			Qty:       sa.qty,
			BillCount: len(sa.bills),
		})
	}
	sort.Slice(storeRows, func(i, j int) bool {
		if !storeRows[i].SaleDate.Equal(storeRows[j].SaleDate) {
			return storeRows[i].SaleDate.Before(storeRows[j].SaleDate)
		}
		return storeRows[i].StoreCode < storeRows[j].StoreCode
	})

	salesmanRows := make([]models.DailySalesmanSales, 0, len(salesmanAccums))
	for _, ma := range salesmanAccums {
		salesmanRows = append(salesmanRows, models.DailySalesmanSales{
			SaleDate:     ma.saleDate,
			StoreCode:    ma.storeCode,
			SalesmanNo:   ma.salesmanNo,
			SalesmanName: ma.salesmanName,
			NetSales:     ma.netSales,
			Qty:          ma.qty,
			BillCount:    len(ma.bills),
		})
	}
	sort.Slice(salesmanRows, func(i, j int) bool {
		if !salesmanRows[i].SaleDate.Equal(salesmanRows[j].SaleDate) {
			return salesmanRows[i].SaleDate.Before(salesmanRows[j].SaleDate)
		}
		if salesmanRows[i].StoreCode != salesmanRows[j].StoreCode {
			return salesmanRows[i].StoreCode < salesmanRows[j].StoreCode
		}
		return salesmanRows[i].SalesmanNo < salesmanRows[j].SalesmanNo
	})

	return storeRows, salesmanRows
}

// MaxBillTimes returns the latest bill time seen per sale date, keyed by the
// date formatted as 2006-01-02. Lines without a bill time contribute nothing.
func MaxBillTimes(lines []RawSalesLine) map[string]time.Time {
	out := make(map[string]time.Time)
	for _, line := range lines {
		if line.BillTime == nil {
			continue
		}
		key := line.SaleDate.Format("2006-01-02")
		if cur, ok := out[key]; !ok || line.BillTime.After(cur) {
			out[key] = *line.BillTime
		}
	}
	return out
}

// SummaryDatesAndStores collects the distinct sale dates and store codes from
// aggregated store rows, both sorted ascending.
func SummaryDatesAndStores(storeRows []models.DailyStoreSales) ([]string, []string) {
	dateSet := make(map[string]struct{})
	storeSet := make(map[string]struct{})
	for _, row := range storeRows {
		dateSet[row.SaleDate.Format("2006-01-02")] = struct{}{}
		storeSet[row.StoreCode] = struct{}{}
	}

	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	stores := make([]string, 0, len(storeSet))
	for s := range storeSet {
		stores = append(stores, s)
	}
	sort.Strings(stores)

	return dates, stores
}
