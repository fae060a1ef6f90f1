package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 债务状态常量
const (
	// DebtStatusPending 未结清
	DebtStatusPending = "pending"
	// DebtStatusSettled 已结清，当且仅当 remaining_amount = 0
	DebtStatusSettled = "settled"
)

// Borrow 借入记录：从他人处收到的钱
// 不变量：0 <= remaining_amount <= amount；status = settled ⟺ remaining_amount = 0
type Borrow struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	UserID          uint            `json:"user_id" gorm:"index;not null"`
	Person          string          `json:"person" gorm:"size:100;not null"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	RemainingAmount decimal.Decimal `json:"remaining_amount" gorm:"type:decimal(10,2);not null"`
	Destination     string          `json:"destination" gorm:"size:50;not null"` // wallet / savings
	Status          string          `json:"status" gorm:"size:20;not null;default:pending"`
	Description     string          `json:"description" gorm:"size:255"`
	Date            time.Time       `json:"date" gorm:"not null"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `json:"-" gorm:"index"`
	User            User            `json:"-" gorm:"foreignKey:UserID"`
	Repayments      []Repayment     `json:"repayments,omitempty" gorm:"foreignKey:BorrowID"`
}

func (Borrow) TableName() string {
	return "borrows"
}
