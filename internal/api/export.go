package api

import (
	"fmt"
	"net/http"

	"chart-studio/internal/services/polygon"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportStockData writes the bar series for a symbol/timeframe as an xlsx
// workbook, one sheet per symbol.
func (h *APIHandler) ExportStockData(c *gin.Context) {
	symbols := polygon.SplitSymbols(c.Param("symbol"))
	timeframe := c.Param("timeframe")
	if len(symbols) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No symbol provided"})
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	headers := []string{"Date", "Open", "High", "Low", "Close", "Volume"}
	for i, symbol := range symbols {
		bars, err := h.stocks.GetBars(symbol, timeframe)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		sheet := symbol
		if i == 0 {
			f.SetSheetName("Sheet1", sheet)
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build workbook"})
				return
			}
		}

		for col, name := range headers {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			f.SetCellValue(sheet, cell, name)
		}
		for row, bar := range bars {
			values := []interface{}{bar.Date, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
				f.SetCellValue(sheet, cell, v)
			}
		}
	}

	filename := fmt.Sprintf("%s_%s.xlsx", symbols[0], timeframe)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to stream workbook"})
	}
}
