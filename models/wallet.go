package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet 每用户一行的钱包余额缓存
// 只在写入原始流水的同一事务内增减，权威值始终以流水重算为准（见 service.Balance）
type Wallet struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	UserID    uint            `json:"user_id" gorm:"uniqueIndex;not null"`
	Balance   decimal.Decimal `json:"balance" gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	User      User            `json:"-" gorm:"foreignKey:UserID"`
}

func (Wallet) TableName() string {
	return "wallets"
}
