package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repayment 还款记录，恰好挂在一笔借入或一笔借出上（BorrowID 与 LendID 二选一）
// Pool 字段对借入还款表示付款来源资金池，对借出还款表示收款去向资金池
type Repayment struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	Date      time.Time       `json:"date" gorm:"not null"`
	Pool      string          `json:"pool" gorm:"column:pool;size:50;not null;default:wallet"`
	BorrowID  *uint           `json:"borrow_id" gorm:"index"`
	LendID    *uint           `json:"lend_id" gorm:"index"`
	Notes     string          `json:"notes" gorm:"size:255"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `json:"-" gorm:"index"`
	Borrow    *Borrow         `json:"-" gorm:"foreignKey:BorrowID"`
	Lend      *Lend           `json:"-" gorm:"foreignKey:LendID"`
}

func (Repayment) TableName() string {
	return "repayments"
}
