package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"trackify/database"
	"trackify/middleware"
	"trackify/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler serves transaction exports in CSV, JSON and Excel form.
type ExportHandler struct{}

// NewExportHandler creates an export handler.
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// exportRange loads the caller's transactions for the optional start/end
// date range (YYYY-MM-DD, end date inclusive), newest first.
func (h *ExportHandler) exportRange(c *gin.Context) ([]models.Transaction, bool) {
	userID := middleware.GetCurrentUserID(c)

	query := database.DB.Where("user_id = ?", userID)

	if s := c.Query("start"); s != "" {
		start, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			BadRequest(c, "Invalid start date, expected YYYY-MM-DD")
			return nil, false
		}
		query = query.Where("date >= ?", start)
	}
	if s := c.Query("end"); s != "" {
		end, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			BadRequest(c, "Invalid end date, expected YYYY-MM-DD")
			return nil, false
		}
		// include the whole end day
		end = end.Add(24*time.Hour - time.Second)
		query = query.Where("date <= ?", end)
	}

	var transactions []models.Transaction
	if err := query.Order("date DESC").Find(&transactions).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Failed to load transactions"))
		return nil, false
	}
	return transactions, true
}

// ExportCSV streams the caller's transactions as a CSV file.
// @Summary Export transactions as CSV
// @Tags export
// @Produce text/csv
// @Security BearerAuth
// @Param start query string false "start date (YYYY-MM-DD)"
// @Param end query string false "end date (YYYY-MM-DD)"
// @Success 200 {file} file "CSV file"
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Router /api/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	transactions, ok := h.exportRange(c)
	if !ok {
		return
	}

	buf := new(bytes.Buffer)
	// BOM so Excel detects UTF-8
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)
	headers := []string{"ID", "Amount", "Type", "Category", "Note", "Date", "Created At"}
	if err := writer.Write(headers); err != nil {
		InternalError(c, "Failed to generate CSV")
		return
	}
	for _, tx := range transactions {
		row := []string{
			fmt.Sprintf("%d", tx.ID),
			fmt.Sprintf("%.2f", tx.Amount),
			tx.Type,
			tx.Category,
			tx.Note,
			tx.Date.Format("2006-01-02 15:04:05"),
			tx.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(row); err != nil {
			InternalError(c, "Failed to generate CSV")
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "Failed to generate CSV")
		return
	}

	filename := fmt.Sprintf("transactions_%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportJSON returns the caller's transactions with summary totals.
// @Summary Export transactions as JSON
// @Tags export
// @Produce json
// @Security BearerAuth
// @Param start query string false "start date (YYYY-MM-DD)"
// @Param end query string false "end date (YYYY-MM-DD)"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Router /api/export/json [get]
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	transactions, ok := h.exportRange(c)
	if !ok {
		return
	}

	var income, expense float64
	for _, tx := range transactions {
		switch tx.Type {
		case models.TypeIncome:
			income += tx.Amount
		case models.TypeExpense:
			expense += tx.Amount
		}
	}

	Success(c, gin.H{
		"totalCount":   len(transactions),
		"totalIncome":  income,
		"totalExpense": expense,
		"transactions": transactions,
	})
}

// ExportExcel streams the caller's transactions as a styled xlsx workbook.
// @Summary Export transactions as Excel
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param start query string false "start date (YYYY-MM-DD)"
// @Param end query string false "end date (YYYY-MM-DD)"
// @Success 200 {file} file "xlsx file"
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Router /api/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	transactions, ok := h.exportRange(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Transactions"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	dataStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	f.SetColWidth(sheetName, "A", "A", 10)
	f.SetColWidth(sheetName, "B", "B", 15)
	f.SetColWidth(sheetName, "C", "C", 12)
	f.SetColWidth(sheetName, "D", "D", 22)
	f.SetColWidth(sheetName, "E", "E", 30)
	f.SetColWidth(sheetName, "F", "F", 20)

	headers := []string{"ID", "Amount", "Type", "Category", "Note", "Date"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	var income, expense float64
	for i, tx := range transactions {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), tx.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), tx.Amount)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), tx.Type)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), tx.Category)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), tx.Note)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), tx.Date.Format("2006-01-02 15:04:05"))
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("F%d", row), dataStyle)

		switch tx.Type {
		case models.TypeIncome:
			income += tx.Amount
		case models.TypeExpense:
			expense += tx.Amount
		}
	}

	// summary row
	summaryRow := len(transactions) + 2
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryRow), "Balance")
	f.MergeCell(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("B%d", summaryRow))
	f.SetCellValue(sheetName, fmt.Sprintf("C%d", summaryRow), income-expense)
	f.SetCellValue(sheetName, fmt.Sprintf("D%d", summaryRow), fmt.Sprintf("%d records", len(transactions)))
	f.MergeCell(sheetName, fmt.Sprintf("D%d", summaryRow), fmt.Sprintf("F%d", summaryRow))
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("F%d", summaryRow), summaryStyle)

	filename := fmt.Sprintf("transactions_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "Failed to generate Excel file")
		return
	}
}
