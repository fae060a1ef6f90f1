package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Lend 借出记录：给他人的钱
// 不变量与 Borrow 相同：0 <= remaining_amount <= amount；status = settled ⟺ remaining_amount = 0
type Lend struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	UserID          uint            `json:"user_id" gorm:"index;not null"`
	Person          string          `json:"person" gorm:"size:100;not null"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	RemainingAmount decimal.Decimal `json:"remaining_amount" gorm:"type:decimal(10,2);not null"`
	Source          string          `json:"source" gorm:"size:50;not null"` // wallet / savings
	Status          string          `json:"status" gorm:"size:20;not null;default:pending"`
	Note            string          `json:"note" gorm:"size:255"`
	Date            time.Time       `json:"date" gorm:"not null"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `json:"-" gorm:"index"`
	User            User            `json:"-" gorm:"foreignKey:UserID"`
	Repayments      []Repayment     `json:"repayments,omitempty" gorm:"foreignKey:LendID"`
}

func (Lend) TableName() string {
	return "lends"
}
