package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 储蓄记录类型常量
const (
	// SavingTypeAuto 系统自动存入（工资归集、收回借出款等）
	SavingTypeAuto = "auto"
	// SavingTypeManual 用户手工存入
	SavingTypeManual = "manual"
	// SavingTypeSpend 储蓄支出
	SavingTypeSpend = "spend"
)

// 储蓄记录状态常量，储蓄余额 = sum(saved) - sum(spent)
const (
	SavingStatusSaved = "saved"
	SavingStatusSpent = "spent"
)

// Saving 储蓄流水，区别于 Income/Expense 的独立池账目
// 所有影响储蓄池的动作都恰好生成一条 Saving 记录，储蓄余额只从本表推导
type Saving struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	UserID    uint            `json:"user_id" gorm:"index;not null"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	Type      string          `json:"type" gorm:"size:50;not null"`   // auto / manual / spend
	Status    string          `json:"status" gorm:"size:20;not null"` // saved / spent
	Reason    string          `json:"reason" gorm:"size:255"`
	Date      time.Time       `json:"date" gorm:"not null"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `json:"-" gorm:"index"`
	User      User            `json:"-" gorm:"foreignKey:UserID"`
}

func (Saving) TableName() string {
	return "savings"
}
