package salessync

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func line(date, store, bill, net, qty string) RawSalesLine {
	return RawSalesLine{
		SaleDate:  day(date),
		StoreCode: store,
		BillNo:    bill,
		NetAmount: d(net),
		Qty:       d(qty),
	}
}

func timedLine(date, store, bill string, clock string) RawSalesLine {
	l := line(date, store, bill, "10", "1")
	if clock != "" {
		at, err := time.Parse("2006-01-02 15:04:05", date+" "+clock)
		if err != nil {
			panic(err)
		}
		l.BillTime = &at
	}
	return l
}

func TestMaxBillTimes(t *testing.T) {
	lines := []RawSalesLine{
		timedLine("2024-06-19", "S1", "B-001", "09:15:00"),
		timedLine("2024-06-19", "S2", "B-101", "17:42:30"),
		timedLine("2024-06-19", "S1", "B-002", "12:00:00"),
		timedLine("2024-06-18", "S1", "B-900", "20:05:00"),
		timedLine("2024-06-18", "S1", "B-901", ""),
	}

	got := MaxBillTimes(lines)
	if len(got) != 2 {
		t.Fatalf("expected 2 dates, got %d", len(got))
	}
	if got["2024-06-19"].Format("15:04:05") != "17:42:30" {
		t.Fatalf("2024-06-19: expected latest bill time 17:42:30, got %s", got["2024-06-19"])
	}
	if got["2024-06-18"].Format("15:04:05") != "20:05:00" {
		t.Fatalf("2024-06-18: expected 20:05:00, got %s", got["2024-06-18"])
	}
}

func TestMaxBillTimesNoColumn(t *testing.T) {
	lines := []RawSalesLine{
		line("2024-06-19", "S1", "B-001", "100", "2"),
		line("2024-06-19", "S2", "B-101", "75", "1"),
	}
	if got := MaxBillTimes(lines); len(got) != 0 {
		t.Fatalf("lines without bill times should roll up to nothing, got %v", got)
	}
}

func TestAggregateDailyBasic(t *testing.T) {
	lines := []RawSalesLine{
		line("2024-06-19", "S1", "B-001", "100", "2"),
		line("2024-06-19", "S1", "B-001", "50", "1"),
		line("2024-06-19", "S1", "B-002", "200", "3"),
		line("2024-06-19", "S2", "B-101", "75", "1"),
	}

	storeRows, _ := AggregateDaily(lines)
	if len(storeRows) != 2 {
		t.Fatalf("expected 2 store rows, got %d", len(storeRows))
	}

	s1 := storeRows[0]
	if s1.StoreCode != "S1" {
		t.Fatalf("expected S1 first, got %s", s1.StoreCode)
	}
	if !s1.NetSales.Equal(d("350")) {
		t.Fatalf("S1 net sales: expected 350, got %s", s1.NetSales)
	}
	if !s1.Qty.Equal(d("6")) {
		t.Fatalf("S1 qty: expected 6, got %s", s1.Qty)
	}
	if s1.BillCount != 2 {
		t.Fatalf("S1 bill count: expected 2 distinct bills, got %d", s1.BillCount)
	}

	s2 := storeRows[1]
	if s2.BillCount != 1 || !s2.NetSales.Equal(d("75")) {
		t.Fatalf("S2 row wrong: %+v", s2)
	}
}

func TestAggregateDailyOrderIndependent(t *testing.T) {
	lines := []RawSalesLine{
		line("2024-06-19", "S1", "B-001", "100", "2"),
		line("2024-06-19", "S2", "B-101", "75", "1"),
		line("2024-06-20", "S1", "B-003", "40", "1"),
		line("2024-06-19", "S1", "B-002", "200", "3"),
		line("2024-06-19", "S1", "B-001", "50", "1"),
	}

	want, _ := AggregateDaily(lines)

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 10; trial++ {
		shuffled := make([]RawSalesLine, len(lines))
		copy(shuffled, lines)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		got, _ := AggregateDaily(shuffled)
		if len(got) != len(want) {
			t.Fatalf("trial %d: row count changed: %d vs %d", trial, len(got), len(want))
		}
		for i := range want {
			if got[i].StoreCode != want[i].StoreCode ||
				!got[i].SaleDate.Equal(want[i].SaleDate) ||
				!got[i].NetSales.Equal(want[i].NetSales) ||
				got[i].BillCount != want[i].BillCount {
				t.Fatalf("trial %d row %d differs: %+v vs %+v", trial, i, got[i], want[i])
			}
		}
	}
}

func TestAggregateDailyDistinctBillsAcrossGaps(t *testing.T) {
	// The same bill number appearing in non-contiguous lines still counts once.
	lines := []RawSalesLine{
		line("2024-06-19", "S1", "B-001", "10", "1"),
		line("2024-06-19", "S1", "B-002", "10", "1"),
		line("2024-06-19", "S1", "B-001", "10", "1"),
	}

	storeRows, _ := AggregateDaily(lines)
	if storeRows[0].BillCount != 2 {
		t.Fatalf("expected 2 distinct bills, got %d", storeRows[0].BillCount)
	}
}

func TestAggregateDailyEmptyBillNo(t *testing.T) {
	// Lines without a bill number contribute to sums but not the bill count.
	lines := []RawSalesLine{
		line("2024-06-19", "S1", "", "10", "1"),
		line("2024-06-19", "S1", "B-001", "20", "2"),
	}

	storeRows, _ := AggregateDaily(lines)
	row := storeRows[0]
	if !row.NetSales.Equal(d("30")) {
		t.Fatalf("expected sums to include blank-bill line, got %s", row.NetSales)
	}
	if row.BillCount != 1 {
		t.Fatalf("expected blank bill excluded from count, got %d", row.BillCount)
	}
}

func TestAggregateDailySalesmanRollup(t *testing.T) {
	l1 := line("2024-06-19", "S1", "B-001", "100", "2")
	l1.SalesmanNo = "SP-7"
	l1.SalesmanName = "Aye Aye"
	l2 := line("2024-06-19", "S1", "B-002", "50", "1")
	l2.SalesmanNo = "SP-7"
	l3 := line("2024-06-19", "S1", "B-003", "30", "1")
	// l3 has no salesman; store rollup only.

	storeRows, salesmanRows := AggregateDaily([]RawSalesLine{l1, l2, l3})

	if !storeRows[0].NetSales.Equal(d("180")) {
		t.Fatalf("store net sales: expected 180, got %s", storeRows[0].NetSales)
	}

	if len(salesmanRows) != 1 {
		t.Fatalf("expected 1 salesman row, got %d", len(salesmanRows))
	}
	sp := salesmanRows[0]
	if sp.SalesmanNo != "SP-7" || sp.SalesmanName != "Aye Aye" {
		t.Fatalf("salesman identity wrong: %+v", sp)
	}
	if !sp.NetSales.Equal(d("150")) || sp.BillCount != 2 {
		t.Fatalf("salesman totals wrong: %+v", sp)
	}
}

func TestAggregateDailyIdempotent(t *testing.T) {
	lines := []RawSalesLine{
		line("2024-06-19", "S1", "B-001", "100", "2"),
		line("2024-06-20", "S2", "B-101", "75", "1"),
	}

	first, _ := AggregateDaily(lines)
	second, _ := AggregateDaily(lines)

	if len(first) != len(second) {
		t.Fatalf("row counts differ between runs")
	}
	for i := range first {
		if !first[i].NetSales.Equal(second[i].NetSales) || first[i].BillCount != second[i].BillCount {
			t.Fatalf("row %d differs between identical runs", i)
		}
	}
}

func TestSummaryDatesAndStores(t *testing.T) {
	lines := []RawSalesLine{
		line("2024-06-20", "S2", "B-2", "1", "1"),
		line("2024-06-19", "S1", "B-1", "1", "1"),
		line("2024-06-19", "S2", "B-3", "1", "1"),
	}

	storeRows, _ := AggregateDaily(lines)
	dates, stores := SummaryDatesAndStores(storeRows)

	if len(dates) != 2 || dates[0] != "2024-06-19" || dates[1] != "2024-06-20" {
		t.Fatalf("dates wrong: %v", dates)
	}
	if len(stores) != 2 || stores[0] != "S1" || stores[1] != "S2" {
		t.Fatalf("stores wrong: %v", stores)
	}
}
