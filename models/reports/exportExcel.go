package reports

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportLeaderboardHandler streams the current leaderboard as an xlsx file.
func ExportLeaderboardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := GetStoreLeaderboard(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		f := excelize.NewFile()
		sheetName := "Sheet1"
		_, err = f.NewSheet(sheetName)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		// Add headers
		f.SetCellValue(sheetName, "A1", "StoreCode")
		f.SetCellValue(sheetName, "B1", "StoreName")
		f.SetCellValue(sheetName, "C1", "NetSales")
		f.SetCellValue(sheetName, "D1", "Target")
		f.SetCellValue(sheetName, "E1", "Percentage")
		f.SetCellValue(sheetName, "F1", "BillCount")

		// Add data
		for i, e := range entries {
			rowNo := fmt.Sprint(i + 2)
			f.SetCellValue(sheetName, "A"+rowNo, e.StoreCode)
			f.SetCellValue(sheetName, "B"+rowNo, e.StoreName)
			f.SetCellValue(sheetName, "C"+rowNo, e.NetSales.String())
			f.SetCellValue(sheetName, "D"+rowNo, e.Target.String())
			f.SetCellValue(sheetName, "E"+rowNo, e.Percentage)
			f.SetCellValue(sheetName, "F"+rowNo, e.BillCount)
		}

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename=leaderboard.xlsx")
		if err := f.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write file"})
		}
	}
}
