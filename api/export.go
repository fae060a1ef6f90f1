package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"time"

	"fintrack/database"
	"fintrack/middleware"
	"fintrack/models"
	"fintrack/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 导出处理器
type ExportHandler struct{}

// NewExportHandler 创建导出处理器
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// exportRange 解析必填的导出时间范围
func exportRange(c *gin.Context) (start, end time.Time, startStr, endStr string, ok bool) {
	startStr = c.Query("start_date")
	endStr = c.Query("end_date")
	if startStr == "" || endStr == "" {
		BadRequest(c, "请提供开始日期和结束日期")
		return
	}

	var err error
	start, err = time.ParseInLocation("2006-01-02", startStr, time.Local)
	if err != nil {
		BadRequest(c, "开始日期格式错误，应为: 2006-01-02")
		return
	}
	end, err = time.ParseInLocation("2006-01-02", endStr, time.Local)
	if err != nil {
		BadRequest(c, "结束日期格式错误，应为: 2006-01-02")
		return
	}
	end = end.Add(24*time.Hour - time.Second)
	ok = true
	return
}

// flowRows 查询时间范围内的收支明细，合并后按日期倒序
func flowRows(userID uint, start, end time.Time) ([]service.SummaryRow, error) {
	var incomes []models.Income
	if err := database.DB.Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Find(&incomes).Error; err != nil {
		return nil, err
	}
	var expenses []models.Expense
	if err := database.DB.Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Find(&expenses).Error; err != nil {
		return nil, err
	}

	rows := make([]service.SummaryRow, 0, len(incomes)+len(expenses))
	for _, inc := range incomes {
		rows = append(rows, service.SummaryRow{
			Type: "income", Amount: inc.Amount, Source: inc.Source, Date: inc.Date, Note: inc.Notes,
		})
	}
	for _, exp := range expenses {
		rows = append(rows, service.SummaryRow{
			Type: "expense", Amount: exp.Amount, Category: exp.Category, Date: exp.Date, Note: exp.Description,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Date.After(rows[j].Date)
	})
	return rows, nil
}

// ExportCSV 导出收支明细为 CSV
// @Summary 导出收支明细
// @Description 根据日期范围导出收支明细为 CSV 文件
// @Tags 导出
// @Produce text/csv
// @Security BearerAuth
// @Param start_date query string true "开始日期 (2024-01-01)"
// @Param end_date query string true "结束日期 (2024-12-31)"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	start, end, startStr, endStr, ok := exportRange(c)
	if !ok {
		return
	}

	rows, err := flowRows(userID, start, end)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return
	}

	buf := new(bytes.Buffer)
	// 添加 BOM 以支持 Excel 中文显示
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)
	headers := []string{"类型", "金额", "来源", "类别", "日期", "备注"}
	if err := writer.Write(headers); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}
	for _, row := range rows {
		record := []string{
			row.Type,
			row.Amount.StringFixed(2),
			row.Source,
			row.Category,
			row.Date.Format("2006-01-02"),
			row.Note,
		}
		if err := writer.Write(record); err != nil {
			InternalError(c, "生成 CSV 失败")
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	filename := fmt.Sprintf("flows_%s_%s.csv", startStr, endStr)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))

	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportJSON 导出收支明细为 JSON
// @Summary 导出收支明细为 JSON
// @Description 根据日期范围导出收支明细为 JSON 格式，附带收支合计
// @Tags 导出
// @Produce json
// @Security BearerAuth
// @Param start_date query string true "开始日期 (2024-01-01)"
// @Param end_date query string true "结束日期 (2024-12-31)"
// @Success 200 {object} Response{data=[]service.SummaryRow} "导出成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/json [get]
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	start, end, startStr, endStr, ok := exportRange(c)
	if !ok {
		return
	}

	rows, err := flowRows(userID, start, end)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return
	}

	totalIncome := decimal.Zero
	totalExpense := decimal.Zero
	for _, row := range rows {
		if row.Type == "income" {
			totalIncome = totalIncome.Add(row.Amount)
		} else {
			totalExpense = totalExpense.Add(row.Amount)
		}
	}

	Success(c, gin.H{
		"start_date":    startStr,
		"end_date":      endStr,
		"total_count":   len(rows),
		"total_income":  totalIncome,
		"total_expense": totalExpense,
		"flows":         rows,
	})
}

// ExportExcel 导出收支明细为 Excel
// @Summary 导出收支明细为 Excel
// @Description 根据日期范围导出收支明细为带样式的 xlsx 文件
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param start_date query string true "开始日期 (2024-01-01)"
// @Param end_date query string true "结束日期 (2024-12-31)"
// @Success 200 {file} file "Excel 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	start, end, startStr, endStr, ok := exportRange(c)
	if !ok {
		return
	}

	rows, err := flowRows(userID, start, end)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "收支明细"
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
	f.SetColWidth(sheetName, "C", "C", 15)
	f.SetColWidth(sheetName, "D", "D", 15)
	f.SetColWidth(sheetName, "E", "E", 15)
	f.SetColWidth(sheetName, "F", "F", 30)

	headers := []string{"类型", "金额", "来源", "类别", "日期", "备注"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	totalIncome := decimal.Zero
	totalExpense := decimal.Zero
	for i, row := range rows {
		r := i + 2
		typeName := "收入"
		if row.Type == "expense" {
			typeName = "支出"
		}
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", r), typeName)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", r), row.Amount.InexactFloat64())
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", r), row.Source)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", r), row.Category)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", r), row.Date.Format("2006-01-02"))
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", r), row.Note)
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", r), fmt.Sprintf("F%d", r), dataStyle)

		if row.Type == "income" {
			totalIncome = totalIncome.Add(row.Amount)
		} else {
			totalExpense = totalExpense.Add(row.Amount)
		}
	}

	summaryRow := len(rows) + 2
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

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryRow), "合计")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryRow),
		fmt.Sprintf("收入 %s / 支出 %s", totalIncome.StringFixed(2), totalExpense.StringFixed(2)))
	f.MergeCell(sheetName, fmt.Sprintf("B%d", summaryRow), fmt.Sprintf("D%d", summaryRow))
	f.SetCellValue(sheetName, fmt.Sprintf("E%d", summaryRow), fmt.Sprintf("共 %d 条记录", len(rows)))
	f.MergeCell(sheetName, fmt.Sprintf("E%d", summaryRow), fmt.Sprintf("F%d", summaryRow))
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("F%d", summaryRow), summaryStyle)

	filename := fmt.Sprintf("收支明细_%s_%s.xlsx", startStr, endStr)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", filename))

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "生成 Excel 失败")
		return
	}
}
