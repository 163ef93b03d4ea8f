package salessync

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func extractHeader() []string {
	return []string{"Bill Date", "STORE", "Bill No", "Net Amt", "Qty", "Sales Person No", "Sales Person Name"}
}

func TestParseExtractRowsSkipsBadRows(t *testing.T) {
	rows := [][]string{
		extractHeader(),
		{"2024-06-19", "S1", "B-001", "100", "2", "SP-7", "Aye Aye"},
		{"not-a-date", "S1", "B-002", "50", "1", "", ""},
		{"2024-06-19", "", "B-003", "30", "1", "", ""},
		{"", "", "", "", "", "", ""},
		{"2024-06-19", "S2", "B-101", "75", "1", "", ""},
	}

	lines, skipped, err := ParseExtractRows(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 usable lines, got %d", len(lines))
	}
	// Blank rows are neither usable nor counted as skips.
	if skipped != 2 {
		t.Fatalf("expected 2 skipped rows, got %d", skipped)
	}

	if lines[0].StoreCode != "S1" || lines[0].SalesmanNo != "SP-7" || lines[0].SalesmanName != "Aye Aye" {
		t.Fatalf("first line wrong: %+v", lines[0])
	}
	if lines[1].StoreCode != "S2" || lines[1].SalesmanNo != "" {
		t.Fatalf("second line wrong: %+v", lines[1])
	}
}

func TestParseExtractRowsCoercesNumbers(t *testing.T) {
	tests := []struct {
		name    string
		netAmt  string
		qty     string
		wantNet string
		wantQty string
	}{
		{"plain", "100.50", "2", "100.50", "2"},
		{"thousands separators", "1,234.50", "10", "1234.50", "10"},
		{"garbage coerces to zero", "abc", "xyz", "0", "0"},
		{"blank coerces to zero", "", "", "0", "0"},
		{"negative return", "-50", "-1", "-50", "-1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rows := [][]string{
				extractHeader(),
				{"2024-06-19", "S1", "B-001", tc.netAmt, tc.qty, "", ""},
			}
			lines, _, err := ParseExtractRows(rows)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(lines) != 1 {
				t.Fatalf("expected 1 line, got %d", len(lines))
			}
			if !lines[0].NetAmount.Equal(mustDecimal(tc.wantNet)) {
				t.Fatalf("net amount: expected %s, got %s", tc.wantNet, lines[0].NetAmount)
			}
			if !lines[0].Qty.Equal(mustDecimal(tc.wantQty)) {
				t.Fatalf("qty: expected %s, got %s", tc.wantQty, lines[0].Qty)
			}
		})
	}
}

func TestParseExtractRowsMissingHeader(t *testing.T) {
	rows := [][]string{
		{"Date", "Shop", "Invoice", "Amount"},
		{"2024-06-19", "S1", "B-001", "100"},
	}

	_, _, err := ParseExtractRows(rows)
	if err == nil {
		t.Fatalf("expected error for missing header row")
	}
}

func TestParseExtractRowsHeaderAfterTitle(t *testing.T) {
	rows := [][]string{
		{"Daily Sales Extract"},
		{},
		extractHeader(),
		{"2024-06-19", "S1", "B-001", "100", "2", "", ""},
	}

	lines, skipped, err := ParseExtractRows(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 || skipped != 0 {
		t.Fatalf("expected 1 line and 0 skips, got %d lines %d skips", len(lines), skipped)
	}
}

func TestParseExtractRowsSerialDate(t *testing.T) {
	// 45462 is 2024-06-19 as an excel serial.
	rows := [][]string{
		extractHeader(),
		{"45462", "S1", "B-001", "100", "2", "", ""},
	}

	lines, _, err := ParseExtractRows(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected serial date to parse, got %d lines", len(lines))
	}
	if got := lines[0].SaleDate.Format("2006-01-02"); got != "2024-06-19" {
		t.Fatalf("serial date: expected 2024-06-19, got %s", got)
	}
}

func TestParseExtractRowsBillTime(t *testing.T) {
	rows := [][]string{
		{"Bill Date", "Bill Time", "STORE", "Bill No", "Net Amt", "Qty"},
		{"2024-06-19", "14:35:10", "S1", "B-001", "100", "2"},
		{"2024-06-19", "2:05 PM", "S1", "B-002", "50", "1"},
		{"2024-06-19", "0.75", "S1", "B-003", "30", "1"},
		{"2024-06-19", "", "S1", "B-004", "30", "1"},
		{"2024-06-19", "garbage", "S1", "B-005", "30", "1"},
	}

	lines, skipped, err := ParseExtractRows(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 5 || skipped != 0 {
		t.Fatalf("bill time must never cause a skip, got %d lines %d skips", len(lines), skipped)
	}

	wantClock := []string{"14:35:10", "14:05:00", "18:00:00", "", ""}
	for i, want := range wantClock {
		bt := lines[i].BillTime
		if want == "" {
			if bt != nil {
				t.Fatalf("line %d: expected no bill time, got %v", i, bt)
			}
			continue
		}
		if bt == nil {
			t.Fatalf("line %d: expected bill time %s, got none", i, want)
		}
		if got := bt.Format("15:04:05"); got != want {
			t.Fatalf("line %d: expected clock %s, got %s", i, want, got)
		}
		if got := bt.Format("2006-01-02"); got != "2024-06-19" {
			t.Fatalf("line %d: bill time must sit on the bill date, got %s", i, got)
		}
	}
}

func TestParseWorkbook(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	header := extractHeader()
	for i, name := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			t.Fatalf("set header: %v", err)
		}
	}
	data := [][]interface{}{
		{"2024-06-19", "S1", "B-001", 100.5, 2, "SP-7", "Aye Aye"},
		{"2024-06-19", "S1", "B-002", 200, 3, "", ""},
		{"bad-date", "S1", "B-003", 10, 1, "", ""},
	}
	for r, rowVals := range data {
		for c, v := range rowVals {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	lines, skipped, err := ParseWorkbook(buf.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if skipped != 1 {
		t.Fatalf("expected 1 skipped row, got %d", skipped)
	}
	if !lines[0].NetAmount.Equal(mustDecimal("100.5")) {
		t.Fatalf("net amount: expected 100.5, got %s", lines[0].NetAmount)
	}
}

func mustDecimal(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("bad decimal %q: %v", s, err))
	}
	return v
}
