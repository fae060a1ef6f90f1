package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 系统生成支出的类别常量
const (
	// CategoryRepayment 偿还借入款时生成的支出类别
	CategoryRepayment = "repayment"
	// CategoryLend 借出款项时生成的支出类别
	CategoryLend = "lend"
)

// Expense 支出记录模型，支出只从钱包扣款，不直接触碰储蓄
type Expense struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	UserID      uint            `json:"user_id" gorm:"index;not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	Category    string          `json:"category" gorm:"size:100;not null"`
	Date        time.Time       `json:"date" gorm:"not null"`
	Description string          `json:"description" gorm:"size:255"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`
	User        User            `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Expense) TableName() string {
	return "expenses"
}
