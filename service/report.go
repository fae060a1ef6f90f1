package service

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"fintrack/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Reports 报表服务：收支明细汇总与 CSV 报表文件生成。
// 工资入账后自动生成一份，也可随时手动触发
type Reports struct {
	db  *gorm.DB
	dir string
}

// NewReports 创建报表服务，dir 为报表文件输出目录
func NewReports(db *gorm.DB, dir string) *Reports {
	return &Reports{db: db, dir: dir}
}

// SummaryRow 报表明细行，收入与支出投影到同一结构
type SummaryRow struct {
	Type     string          `json:"type"` // income / expense
	Amount   decimal.Decimal `json:"amount"`
	Source   string          `json:"source,omitempty"`
	Category string          `json:"category,omitempty"`
	Date     time.Time       `json:"date"`
	Note     string          `json:"note,omitempty"`
}

// Summary 汇总当前用户全部收入与支出明细，按日期倒序
func (s *Reports) Summary(userID uint) ([]SummaryRow, error) {
	var incomes []models.Income
	if err := s.db.Where("user_id = ?", userID).Find(&incomes).Error; err != nil {
		return nil, err
	}
	var expenses []models.Expense
	if err := s.db.Where("user_id = ?", userID).Find(&expenses).Error; err != nil {
		return nil, err
	}

	rows := make([]SummaryRow, 0, len(incomes)+len(expenses))
	for _, inc := range incomes {
		rows = append(rows, SummaryRow{
			Type:   "income",
			Amount: inc.Amount,
			Source: inc.Source,
			Date:   inc.Date,
			Note:   inc.Notes,
		})
	}
	for _, exp := range expenses {
		rows = append(rows, SummaryRow{
			Type:     "expense",
			Amount:   exp.Amount,
			Category: exp.Category,
			Date:     exp.Date,
			Note:     exp.Description,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Date.After(rows[j].Date)
	})
	return rows, nil
}

// Generate 生成一份 CSV 报表文件并登记报表记录
//
// 文件名带 uuid 防止重名覆盖；写盘成功后才落 reports 行，
// 登记失败时删除已写出的文件，保证文件与记录一致
func (s *Reports) Generate(userID uint, reportType, reportRange string) (*models.Report, error) {
	if reportType == "" {
		reportType = "summary"
	}
	if reportRange == "" {
		reportRange = "all"
	}

	rows, err := s.Summary(userID)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建报表目录失败: %w", err)
	}

	filename := fmt.Sprintf("%s_%s_%s.csv", reportType, time.Now().Format("20060102"), uuid.NewString())
	path := filepath.Join(s.dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("创建报表文件失败: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"类型", "金额", "来源", "类别", "日期", "备注"}); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("写入报表失败: %w", err)
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
		if err := w.Write(record); err != nil {
			f.Close()
			os.Remove(path)
			return nil, fmt.Errorf("写入报表失败: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("写入报表失败: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("写入报表失败: %w", err)
	}

	report := &models.Report{
		UserID:   userID,
		Type:     reportType,
		Range:    reportRange,
		FilePath: path,
	}
	if err := s.db.Create(report).Error; err != nil {
		os.Remove(path)
		return nil, err
	}
	return report, nil
}

// ListByUser 查询当前用户的报表记录，按生成时间倒序
func (s *Reports) ListByUser(userID uint) ([]models.Report, error) {
	var reports []models.Report
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}
