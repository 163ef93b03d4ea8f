package salessync

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/hq_backend/utils"
	"github.com/xuri/excelize/v2"
)

var errNoHeaderRow = errors.New("header row not found in extract")

// Column headers expected in the extract. Matching is case-insensitive and
// ignores surrounding whitespace.
const (
	colBillDate     = "bill date"
	colBillTime     = "bill time"
	colStore        = "store"
	colBillNo       = "bill no"
	colNetAmt       = "net amt"
	colQty          = "qty"
	colSalesmanNo   = "sales person no"
	colSalesmanName = "sales person name"
)

var dateLayouts = []string{
	"2006-01-02",
	"01-02-06",
	"02-01-2006",
	"2/1/2006",
	"1/2/06",
	"2006-01-02 15:04:05",
	"02 Jan 2006",
}

var timeLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
	"2006-01-02 15:04:05",
}

// ParseWorkbook opens an xlsx extract from raw bytes and parses the first
// sheet into usable sales lines.
func ParseWorkbook(data []byte) ([]RawSalesLine, int, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, 0, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, 0, fmt.Errorf("read sheet %q: %v", sheets[0], err)
	}

	return ParseExtractRows(rows)
}

// ParseExtractRows maps the header row and coerces each data row into a
// RawSalesLine. Rows without a parsable bill date or with an empty store
// code are skipped and counted, never fatal. Unparsable amounts and
// quantities coerce to zero.
func ParseExtractRows(rows [][]string) ([]RawSalesLine, int, error) {
	headerIdx, cols, err := findHeaderRow(rows)
	if err != nil {
		return nil, 0, err
	}

	var lines []RawSalesLine
	skipped := 0

	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}

		saleDate, ok := parseExtractDate(cellAt(row, cols[colBillDate]))
		if !ok {
			skipped++
			continue
		}
		storeCode := strings.TrimSpace(cellAt(row, cols[colStore]))
		if storeCode == "" {
			skipped++
			continue
		}

		line := RawSalesLine{
			RowNumber: i + 1,
			SaleDate:  saleDate,
			StoreCode: storeCode,
			BillNo:    strings.TrimSpace(cellAt(row, cols[colBillNo])),
			NetAmount: utils.DecimalOrZero(cleanNumber(cellAt(row, cols[colNetAmt]))),
			Qty:       utils.DecimalOrZero(cleanNumber(cellAt(row, cols[colQty]))),
		}
		if idx, ok := cols[colBillTime]; ok {
			line.BillTime = parseExtractTime(cellAt(row, idx), saleDate)
		}
		if idx, ok := cols[colSalesmanNo]; ok {
			line.SalesmanNo = strings.TrimSpace(cellAt(row, idx))
		}
		if idx, ok := cols[colSalesmanName]; ok {
			line.SalesmanName = strings.TrimSpace(cellAt(row, idx))
		}

		lines = append(lines, line)
	}

	return lines, skipped, nil
}

// findHeaderRow scans for the first row containing all required columns.
// Extracts sometimes carry a title row or two before the header.
func findHeaderRow(rows [][]string) (int, map[string]int, error) {
	required := []string{colBillDate, colStore, colBillNo, colNetAmt, colQty}
	optional := []string{colBillTime, colSalesmanNo, colSalesmanName}

	for i, row := range rows {
		cols := make(map[string]int)
		for j, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name == "" {
				continue
			}
			if _, exists := cols[name]; !exists {
				cols[name] = j
			}
		}

		found := true
		for _, name := range required {
			if _, ok := cols[name]; !ok {
				found = false
				break
			}
		}
		if !found {
			continue
		}

		mapped := make(map[string]int)
		for _, name := range required {
			mapped[name] = cols[name]
		}
		for _, name := range optional {
			if idx, ok := cols[name]; ok {
				mapped[name] = idx
			}
		}
		return i, mapped, nil
	}

	return 0, nil, errNoHeaderRow
}

func parseExtractDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return utils.DateOnly(t), true
		}
	}

	// Cells formatted as numbers come through as excel serial dates.
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return utils.DateOnly(t), true
		}
	}

	return time.Time{}, false
}

// parseExtractTime reads the optional bill time column. The clock is pinned
// onto the bill date, the extract sometimes writes a stray date part of its
// own. Unreadable values read as no time at all, never a skip.
func parseExtractTime(s string, saleDate time.Time) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			at := atClock(saleDate, t)
			return &at
		}
	}

	// Cells formatted as times come through as excel serials, a day fraction
	// or a full datetime serial.
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			at := atClock(saleDate, t)
			return &at
		}
	}

	return nil
}

func atClock(day time.Time, clock time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, day.Location())
}

func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	return s
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
