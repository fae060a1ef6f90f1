package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 收入来源常量
const (
	// IncomeSourceSalary 工资收入，入钱包时触发自动归集（见 service.Recorder）
	IncomeSourceSalary = "salary"
	// IncomeSourceBorrow 借入时同步生成的审计收入记录，余额计算时排除，
	// 避免与 Borrow 本身的金额重复计入
	IncomeSourceBorrow = "borrow"
	// IncomeSourceRepayment 借出款被归还时生成的收入记录
	IncomeSourceRepayment = "repayment"
	// IncomeSourceAutoTransfer 工资到账前清空钱包的自动转出记录（金额为负）
	IncomeSourceAutoTransfer = "auto_transfer"
	// IncomeSourceAdjustment 债务记录修改/删除时退回钱包的冲销收入
	IncomeSourceAdjustment = "adjustment"
)

// Income 收入记录模型
// Amount 允许为负：自动归集时以负数收入记录钱包转出（同类型冲账，不是独立实体）
type Income struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	UserID      uint            `json:"user_id" gorm:"index;not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	Source      string          `json:"source" gorm:"size:100;not null"`
	Date        time.Time       `json:"date" gorm:"not null"`
	Destination string          `json:"destination" gorm:"size:50;not null"` // wallet / savings
	Notes       string          `json:"notes" gorm:"size:255"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`
	User        User            `json:"-" gorm:"foreignKey:UserID"`
}

func (Income) TableName() string {
	return "incomes"
}
