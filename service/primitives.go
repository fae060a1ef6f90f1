package service

import (
	"errors"

	"fintrack/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 原始流水写入工具：所有影响余额的动作最终都落到这三类原始记录上。
// 写入钱包相关流水时在同一事务内同步增减钱包余额缓存，
// 缓存永远不做先读后算再另起事务回写，避免并发下丢失更新。

// insertIncome 写入一条收入流水；destination 为钱包时同步增加钱包缓存
func insertIncome(tx *gorm.DB, inc *models.Income) error {
	inc.Amount = models.Quantize(inc.Amount)
	if err := tx.Create(inc).Error; err != nil {
		return err
	}
	if inc.Destination == models.PoolWallet {
		return adjustWalletCache(tx, inc.UserID, inc.Amount)
	}
	return nil
}

// insertExpense 写入一条支出流水并同步扣减钱包缓存（支出只走钱包）
func insertExpense(tx *gorm.DB, exp *models.Expense) error {
	exp.Amount = models.Quantize(exp.Amount)
	if err := tx.Create(exp).Error; err != nil {
		return err
	}
	return adjustWalletCache(tx, exp.UserID, exp.Amount.Neg())
}

// insertSaving 写入一条储蓄流水；储蓄余额只从 savings 表推导，无缓存
func insertSaving(tx *gorm.DB, s *models.Saving) error {
	s.Amount = models.Quantize(s.Amount)
	return tx.Create(s).Error
}

// adjustWalletCache 在当前事务内增减钱包余额缓存行，不存在时顺手创建
func adjustWalletCache(tx *gorm.DB, userID uint, delta decimal.Decimal) error {
	var w models.Wallet
	err := tx.Where("user_id = ?", userID).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		w = models.Wallet{UserID: userID, Balance: models.Quantize(delta)}
		return tx.Create(&w).Error
	}
	if err != nil {
		return err
	}
	return tx.Model(&w).Update("balance", models.Quantize(w.Balance.Add(delta))).Error
}
