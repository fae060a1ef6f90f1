package service

import (
	"fmt"
	"strings"
	"time"

	"fintrack/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Recorder 原始流水入账：收入、支出、储蓄的创建入口。
// 其他组件（债务、还款）的余额副作用最终也都分解为这些原始记录。
type Recorder struct {
	db *gorm.DB
}

// NewRecorder 创建入账服务
func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// IncomeInput 创建收入入参
type IncomeInput struct {
	Amount      decimal.Decimal
	Source      string
	Date        time.Time
	Destination string
	Notes       string
}

// IsSalary 工资类收入判断，大小写不敏感
func (in IncomeInput) IsSalary() bool {
	return strings.EqualFold(strings.TrimSpace(in.Source), models.IncomeSourceSalary)
}

// CreateIncome 创建收入。destination=savings 时同步生成等额的储蓄存入记录。
//
// 工资自动归集：source=salary 且入钱包、且当前钱包余额 > 0 时，
// 先以一条负数收入把既有钱包余额转出，并生成等额储蓄存入记录，
// 再写入本次工资收入。归集与入账在同一事务内完成，不可观察到中间状态。
func (s *Recorder) CreateIncome(userID uint, in IncomeInput) (*models.Income, error) {
	amount := models.Quantize(in.Amount)
	if amount.IsNegative() {
		return nil, invalidf("收入金额不能为负数")
	}
	if !models.IsValidPool(in.Destination) {
		return nil, invalidf("无效的资金池: %s，只支持 wallet / savings", in.Destination)
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	income := &models.Income{
		UserID:      userID,
		Amount:      amount,
		Source:      strings.TrimSpace(in.Source),
		Date:        in.Date,
		Destination: in.Destination,
		Notes:       in.Notes,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if in.IsSalary() && in.Destination == models.PoolWallet {
			balance, err := walletBalance(tx, userID, nil, nil)
			if err != nil {
				return err
			}
			if balance.IsPositive() {
				sweep := &models.Income{
					UserID:      userID,
					Amount:      balance.Neg(),
					Source:      models.IncomeSourceAutoTransfer,
					Date:        time.Now(),
					Destination: models.PoolWallet,
					Notes:       "工资到账前自动归集到储蓄",
				}
				if err := insertIncome(tx, sweep); err != nil {
					return err
				}
				if err := insertSaving(tx, &models.Saving{
					UserID: userID,
					Amount: balance,
					Type:   models.SavingTypeAuto,
					Status: models.SavingStatusSaved,
					Reason: "工资到账前自动归集",
					Date:   time.Now(),
				}); err != nil {
					return err
				}
			}
		}

		if err := insertIncome(tx, income); err != nil {
			return err
		}

		// 入储蓄池的收入同步生成一条储蓄存入记录，
		// 储蓄余额只从 savings 表推导，缺了这条记录存款就不计入余额
		if income.Destination == models.PoolSavings {
			return insertSaving(tx, &models.Saving{
				UserID: userID,
				Amount: amount,
				Type:   models.SavingTypeManual,
				Status: models.SavingStatusSaved,
				Reason: fmt.Sprintf("收入存入（%s）", income.Source),
				Date:   in.Date,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return income, nil
}

// ExpenseInput 创建支出入参
type ExpenseInput struct {
	Amount      decimal.Decimal
	Category    string
	Date        time.Time
	Description string
}

// CreateExpense 创建支出，要求钱包余额充足；余额在事务内重算，不信任缓存
func (s *Recorder) CreateExpense(userID uint, in ExpenseInput) (*models.Expense, error) {
	amount := models.Quantize(in.Amount)
	if !amount.IsPositive() {
		return nil, invalidf("支出金额必须大于 0")
	}
	if strings.TrimSpace(in.Category) == "" {
		return nil, invalidf("支出类别不能为空")
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	expense := &models.Expense{
		UserID:      userID,
		Amount:      amount,
		Category:    strings.TrimSpace(in.Category),
		Date:        in.Date,
		Description: in.Description,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		balance, err := walletBalance(tx, userID, nil, nil)
		if err != nil {
			return err
		}
		if balance.LessThan(amount) {
			return &InsufficientBalanceError{
				Pool:      models.PoolWallet,
				Available: balance,
				Required:  amount,
			}
		}
		return insertExpense(tx, expense)
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// SavingInput 创建储蓄流水入参
type SavingInput struct {
	Amount decimal.Decimal
	Type   string
	Reason string
	Date   time.Time
}

// CreateSaving 手工创建储蓄流水；spend 类型要求储蓄余额充足
func (s *Recorder) CreateSaving(userID uint, in SavingInput) (*models.Saving, error) {
	amount := models.Quantize(in.Amount)
	if !amount.IsPositive() {
		return nil, invalidf("储蓄金额必须大于 0")
	}

	var status string
	switch in.Type {
	case models.SavingTypeAuto, models.SavingTypeManual:
		status = models.SavingStatusSaved
	case models.SavingTypeSpend:
		status = models.SavingStatusSpent
	default:
		return nil, invalidf("无效的储蓄类型: %s，只支持 auto / manual / spend", in.Type)
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	saving := &models.Saving{
		UserID: userID,
		Amount: amount,
		Type:   in.Type,
		Status: status,
		Reason: in.Reason,
		Date:   in.Date,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if status == models.SavingStatusSpent {
			balance, err := savingsBalance(tx, userID)
			if err != nil {
				return err
			}
			if balance.LessThan(amount) {
				return &InsufficientBalanceError{
					Pool:      models.PoolSavings,
					Available: balance,
					Required:  amount,
				}
			}
		}
		return insertSaving(tx, saving)
	})
	if err != nil {
		return nil, err
	}
	return saving, nil
}
