package service

import (
	"time"

	"fintrack/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Balance 余额计算器：按需从全部原始流水推导钱包与储蓄余额。
// 钱包余额缓存只是写入时的快路径，权威值始终是这里的重算结果。
//
// 口径（全仓库唯一，所有调用点一致）：
//   - 钱包余额 = Σ收入(destination=wallet, source≠borrow) − Σ支出 + Σ借入(destination=wallet)
//     借入创建时生成的审计收入（source=borrow）排除在外，否则与借入项重复计入
//   - 储蓄余额 = Σ储蓄(status=saved) − Σ储蓄(status=spent)
type Balance struct {
	db *gorm.DB
}

// NewBalance 创建余额计算器
func NewBalance(db *gorm.DB) *Balance {
	return &Balance{db: db}
}

// sumAmount 对查询结果的 amount 求和，空集合计为 0
func sumAmount(q *gorm.DB) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := q.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// dateRange 为查询追加统一的日期范围过滤，三个求和项使用完全相同的范围
func dateRange(q *gorm.DB, from, to *time.Time) *gorm.DB {
	if from != nil {
		q = q.Where("date >= ?", *from)
	}
	if to != nil {
		q = q.Where("date <= ?", *to)
	}
	return q
}

// walletBalance 在给定连接/事务上重算钱包余额
func walletBalance(db *gorm.DB, userID uint, from, to *time.Time) (decimal.Decimal, error) {
	income, err := sumAmount(dateRange(db.Model(&models.Income{}).
		Where("user_id = ? AND destination = ? AND source <> ?",
			userID, models.PoolWallet, models.IncomeSourceBorrow), from, to))
	if err != nil {
		return decimal.Zero, err
	}

	expense, err := sumAmount(dateRange(db.Model(&models.Expense{}).
		Where("user_id = ?", userID), from, to))
	if err != nil {
		return decimal.Zero, err
	}

	borrow, err := sumAmount(dateRange(db.Model(&models.Borrow{}).
		Where("user_id = ? AND destination = ?", userID, models.PoolWallet), from, to))
	if err != nil {
		return decimal.Zero, err
	}

	return models.Quantize(income.Sub(expense).Add(borrow)), nil
}

// savingsBalance 在给定连接/事务上重算储蓄余额
func savingsBalance(db *gorm.DB, userID uint) (decimal.Decimal, error) {
	saved, err := sumAmount(db.Model(&models.Saving{}).
		Where("user_id = ? AND status = ?", userID, models.SavingStatusSaved))
	if err != nil {
		return decimal.Zero, err
	}

	spent, err := sumAmount(db.Model(&models.Saving{}).
		Where("user_id = ? AND status = ?", userID, models.SavingStatusSpent))
	if err != nil {
		return decimal.Zero, err
	}

	return models.Quantize(saved.Sub(spent)), nil
}

// WalletBalance 重算钱包余额，可选统一的日期范围
func (s *Balance) WalletBalance(userID uint, from, to *time.Time) (decimal.Decimal, error) {
	return walletBalance(s.db, userID, from, to)
}

// SavingsBalance 重算储蓄余额
func (s *Balance) SavingsBalance(userID uint) (decimal.Decimal, error) {
	return savingsBalance(s.db, userID)
}

// PoolBalance 按资金池名称重算余额
func (s *Balance) PoolBalance(userID uint, pool string) (decimal.Decimal, error) {
	switch pool {
	case models.PoolWallet:
		return walletBalance(s.db, userID, nil, nil)
	case models.PoolSavings:
		return savingsBalance(s.db, userID)
	}
	return decimal.Zero, invalidf("无效的资金池: %s，只支持 wallet / savings", pool)
}

// ReconcileWallet 以流水重算结果校正钱包余额缓存行，返回校正后的余额
func (s *Balance) ReconcileWallet(userID uint) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		b, err := walletBalance(tx, userID, nil, nil)
		if err != nil {
			return err
		}
		balance = b

		var w models.Wallet
		if err := tx.Where("user_id = ?", userID).First(&w).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return tx.Create(&models.Wallet{UserID: userID, Balance: b}).Error
			}
			return err
		}
		if !w.Balance.Equal(b) {
			return tx.Model(&w).Update("balance", b).Error
		}
		return nil
	})
	return balance, err
}

// Summary 首页汇总：两池余额与借入/借出在各池的总额
type Summary struct {
	WalletBalance  decimal.Decimal `json:"wallet_balance"`
	SavingsBalance decimal.Decimal `json:"savings_balance"`
	BorrowWallet   decimal.Decimal `json:"borrow_wallet"`
	BorrowSavings  decimal.Decimal `json:"borrow_savings"`
	LendWallet     decimal.Decimal `json:"lend_wallet"`
	LendSavings    decimal.Decimal `json:"lend_savings"`
}

// DashboardSummary 计算首页汇总
func (s *Balance) DashboardSummary(userID uint) (*Summary, error) {
	wallet, err := walletBalance(s.db, userID, nil, nil)
	if err != nil {
		return nil, err
	}
	savings, err := savingsBalance(s.db, userID)
	if err != nil {
		return nil, err
	}

	sums := make(map[string]decimal.Decimal, 4)
	for _, item := range []struct {
		key   string
		model interface{}
		col   string
		pool  string
	}{
		{"borrow_wallet", &models.Borrow{}, "destination", models.PoolWallet},
		{"borrow_savings", &models.Borrow{}, "destination", models.PoolSavings},
		{"lend_wallet", &models.Lend{}, "source", models.PoolWallet},
		{"lend_savings", &models.Lend{}, "source", models.PoolSavings},
	} {
		total, err := sumAmount(s.db.Model(item.model).
			Where("user_id = ? AND "+item.col+" = ?", userID, item.pool))
		if err != nil {
			return nil, err
		}
		sums[item.key] = models.Quantize(total)
	}

	return &Summary{
		WalletBalance:  wallet,
		SavingsBalance: savings,
		BorrowWallet:   sums["borrow_wallet"],
		BorrowSavings:  sums["borrow_savings"],
		LendWallet:     sums["lend_wallet"],
		LendSavings:    sums["lend_savings"],
	}, nil
}
