package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fintrack/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Debt 债务台账：借入/借出的创建、修改、删除。
// 创建时的资金池进出全部分解为原始流水（见 primitives.go），
// remaining_amount 只由还款引擎或金额修正逻辑变更。
type Debt struct {
	db *gorm.DB
}

// NewDebt 创建债务台账服务
func NewDebt(db *gorm.DB) *Debt {
	return &Debt{db: db}
}

// debtStatus 由剩余金额推导状态，settled ⟺ remaining = 0
func debtStatus(remaining decimal.Decimal) string {
	if remaining.IsPositive() {
		return models.DebtStatusPending
	}
	return models.DebtStatusSettled
}

// BorrowInput 创建借入入参
type BorrowInput struct {
	Person      string
	Amount      decimal.Decimal
	Destination string
	Date        time.Time
	Description string
}

// CreateBorrow 创建借入：入账资金池、生成审计收入记录、落借入行，单事务完成
func (s *Debt) CreateBorrow(userID uint, in BorrowInput) (*models.Borrow, error) {
	amount := models.Quantize(in.Amount)
	if !amount.IsPositive() {
		return nil, invalidf("借入金额必须大于 0")
	}
	if !models.IsValidPool(in.Destination) {
		return nil, invalidf("无效的资金池: %s，只支持 wallet / savings", in.Destination)
	}
	if strings.TrimSpace(in.Person) == "" {
		return nil, invalidf("出借人不能为空")
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	borrow := &models.Borrow{
		UserID:          userID,
		Person:          strings.TrimSpace(in.Person),
		Amount:          amount,
		RemainingAmount: amount,
		Destination:     in.Destination,
		Status:          models.DebtStatusPending,
		Description:     in.Description,
		Date:            in.Date,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(borrow).Error; err != nil {
			return err
		}

		switch in.Destination {
		case models.PoolWallet:
			// 钱包口径里借入以 borrows 表的金额项计入，这里只同步缓存
			if err := adjustWalletCache(tx, userID, amount); err != nil {
				return err
			}
		case models.PoolSavings:
			// 储蓄口径只认 savings 表，入池必须生成储蓄存入记录
			if err := insertSaving(tx, &models.Saving{
				UserID: userID,
				Amount: amount,
				Type:   models.SavingTypeManual,
				Status: models.SavingStatusSaved,
				Reason: fmt.Sprintf("借入 %s 的款项", borrow.Person),
				Date:   in.Date,
			}); err != nil {
				return err
			}
		}

		// 审计收入记录，source=borrow，余额计算时排除（与借入项互斥，防重复计入）
		audit := &models.Income{
			UserID:      userID,
			Amount:      amount,
			Source:      models.IncomeSourceBorrow,
			Date:        in.Date,
			Destination: in.Destination,
			Notes:       fmt.Sprintf("借入 %s 的款项", borrow.Person),
		}
		return tx.Create(audit).Error
	})
	if err != nil {
		return nil, err
	}
	return borrow, nil
}

// LendInput 创建借出入参
type LendInput struct {
	Person string
	Amount decimal.Decimal
	Source string
	Date   time.Time
	Note   string
}

// CreateLend 创建借出：从指定资金池出账（恰好一条支出或储蓄支出记录），落借出行
func (s *Debt) CreateLend(userID uint, in LendInput) (*models.Lend, error) {
	amount := models.Quantize(in.Amount)
	if !amount.IsPositive() {
		return nil, invalidf("借出金额必须大于 0")
	}
	if !models.IsValidPool(in.Source) {
		return nil, invalidf("无效的资金池: %s，只支持 wallet / savings", in.Source)
	}
	if strings.TrimSpace(in.Person) == "" {
		return nil, invalidf("借款人不能为空")
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	reason := fmt.Sprintf("借出给 %s", strings.TrimSpace(in.Person))
	if in.Note != "" {
		reason += ": " + in.Note
	}

	lend := &models.Lend{
		UserID:          userID,
		Person:          strings.TrimSpace(in.Person),
		Amount:          amount,
		RemainingAmount: amount,
		Source:          in.Source,
		Status:          models.DebtStatusPending,
		Note:            in.Note,
		Date:            in.Date,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if in.Source == models.PoolWallet {
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
		} else {
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

		if err := tx.Create(lend).Error; err != nil {
			return err
		}

		if in.Source == models.PoolWallet {
			return insertExpense(tx, &models.Expense{
				UserID:      userID,
				Amount:      amount,
				Category:    models.CategoryLend,
				Date:        in.Date,
				Description: reason,
			})
		}
		return insertSaving(tx, &models.Saving{
			UserID: userID,
			Amount: amount,
			Type:   models.SavingTypeSpend,
			Status: models.SavingStatusSpent,
			Reason: reason,
			Date:   in.Date,
		})
	})
	if err != nil {
		return nil, err
	}
	return lend, nil
}

// DebtUpdate 借入/借出的部分字段更新，nil 表示不修改
type DebtUpdate struct {
	Person      *string
	Amount      *decimal.Decimal
	Date        *time.Time
	Description *string
}

// UpdateBorrow 更新借入记录
//
// 金额变更时：repaid = 旧金额 − 旧剩余；新剩余 = max(新金额 − repaid, 0)，
// 状态随剩余金额重新推导；资金池按差额修正（钱包走缓存，储蓄补差额流水）
func (s *Debt) UpdateBorrow(userID, borrowID uint, upd DebtUpdate) (*models.Borrow, error) {
	var borrow models.Borrow
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", borrowID, userID).First(&borrow).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		updates := map[string]interface{}{}
		if upd.Person != nil {
			if strings.TrimSpace(*upd.Person) == "" {
				return invalidf("出借人不能为空")
			}
			updates["person"] = strings.TrimSpace(*upd.Person)
		}
		if upd.Date != nil {
			updates["date"] = *upd.Date
		}
		if upd.Description != nil {
			updates["description"] = *upd.Description
		}

		if upd.Amount != nil {
			newAmount := models.Quantize(*upd.Amount)
			if !newAmount.IsPositive() {
				return invalidf("借入金额必须大于 0")
			}
			if !newAmount.Equal(borrow.Amount) {
				repaid := borrow.Amount.Sub(borrow.RemainingAmount)
				remaining := models.Quantize(newAmount.Sub(repaid))
				if remaining.IsNegative() {
					remaining = decimal.Zero
				}
				delta := newAmount.Sub(borrow.Amount)

				if err := s.adjustDebtPool(tx, userID, borrow.Destination, delta, "借入金额调整"); err != nil {
					return err
				}

				updates["amount"] = newAmount
				updates["remaining_amount"] = remaining
				updates["status"] = debtStatus(remaining)
			}
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&borrow).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&borrow, borrow.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &borrow, nil
}

// UpdateLend 更新借出记录，金额变更的剩余金额修正规则与借入一致
func (s *Debt) UpdateLend(userID, lendID uint, upd DebtUpdate) (*models.Lend, error) {
	var lend models.Lend
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", lendID, userID).First(&lend).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		updates := map[string]interface{}{}
		if upd.Person != nil {
			if strings.TrimSpace(*upd.Person) == "" {
				return invalidf("借款人不能为空")
			}
			updates["person"] = strings.TrimSpace(*upd.Person)
		}
		if upd.Date != nil {
			updates["date"] = *upd.Date
		}
		if upd.Description != nil {
			updates["note"] = *upd.Description
		}

		if upd.Amount != nil {
			newAmount := models.Quantize(*upd.Amount)
			if !newAmount.IsPositive() {
				return invalidf("借出金额必须大于 0")
			}
			if !newAmount.Equal(lend.Amount) {
				repaid := lend.Amount.Sub(lend.RemainingAmount)
				remaining := models.Quantize(newAmount.Sub(repaid))
				if remaining.IsNegative() {
					remaining = decimal.Zero
				}
				// 借出是出账，金额调大意味着资金池再多扣差额
				delta := lend.Amount.Sub(newAmount)

				// 借出的钱包出账记在 expenses，差额必须落成流水才能与重算口径一致
				if lend.Source == models.PoolWallet {
					if delta.IsNegative() {
						if err := insertExpense(tx, &models.Expense{
							UserID:      userID,
							Amount:      delta.Abs(),
							Category:    models.CategoryLend,
							Date:        time.Now(),
							Description: fmt.Sprintf("借出金额调整（%s）", lend.Person),
						}); err != nil {
							return err
						}
					} else {
						if err := insertIncome(tx, &models.Income{
							UserID:      userID,
							Amount:      delta,
							Source:      models.IncomeSourceAdjustment,
							Date:        time.Now(),
							Destination: models.PoolWallet,
							Notes:       fmt.Sprintf("借出金额调整（%s）", lend.Person),
						}); err != nil {
							return err
						}
					}
				} else if err := s.adjustDebtPool(tx, userID, lend.Source, delta, "借出金额调整"); err != nil {
					return err
				}

				updates["amount"] = newAmount
				updates["remaining_amount"] = remaining
				updates["status"] = debtStatus(remaining)
			}
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&lend).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&lend, lend.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &lend, nil
}

// adjustDebtPool 按差额修正资金池：正数入池，负数出池
// 钱包口径中借入项直接随 borrows 行变化，这里只修缓存；储蓄一律补差额储蓄流水
func (s *Debt) adjustDebtPool(tx *gorm.DB, userID uint, pool string, delta decimal.Decimal, reason string) error {
	if delta.IsZero() {
		return nil
	}
	if pool == models.PoolWallet {
		return adjustWalletCache(tx, userID, delta)
	}
	saving := &models.Saving{
		UserID: userID,
		Amount: delta.Abs(),
		Date:   time.Now(),
		Reason: reason,
	}
	if delta.IsPositive() {
		saving.Type = models.SavingTypeManual
		saving.Status = models.SavingStatusSaved
	} else {
		saving.Type = models.SavingTypeSpend
		saving.Status = models.SavingStatusSpent
	}
	return insertSaving(tx, saving)
}

// DeleteBorrow 删除借入记录并冲销其余额影响
//
// 借入行删除后钱包口径的借入项自然回落（即为冲销），缓存同步扣减；
// 入储蓄的借入补一条储蓄支出冲销。子还款记录级联删除，
// 还款当时生成的原始流水保留（钱确实流动过）
func (s *Debt) DeleteBorrow(userID, borrowID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var borrow models.Borrow
		if err := tx.Where("id = ? AND user_id = ?", borrowID, userID).First(&borrow).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Where("borrow_id = ?", borrow.ID).Delete(&models.Repayment{}).Error; err != nil {
			return err
		}

		switch borrow.Destination {
		case models.PoolWallet:
			if err := adjustWalletCache(tx, userID, borrow.Amount.Neg()); err != nil {
				return err
			}
		case models.PoolSavings:
			if err := insertSaving(tx, &models.Saving{
				UserID: userID,
				Amount: borrow.Amount,
				Type:   models.SavingTypeSpend,
				Status: models.SavingStatusSpent,
				Reason: fmt.Sprintf("借入记录删除冲销（%s）", borrow.Person),
				Date:   time.Now(),
			}); err != nil {
				return err
			}
		}

		return tx.Delete(&borrow).Error
	})
}

// DeleteLend 删除借出记录并冲销其余额影响：把当初的出账退回资金池
func (s *Debt) DeleteLend(userID, lendID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var lend models.Lend
		if err := tx.Where("id = ? AND user_id = ?", lendID, userID).First(&lend).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Where("lend_id = ?", lend.ID).Delete(&models.Repayment{}).Error; err != nil {
			return err
		}

		reason := fmt.Sprintf("借出记录删除冲销（%s）", lend.Person)
		if lend.Source == models.PoolWallet {
			if err := insertIncome(tx, &models.Income{
				UserID:      userID,
				Amount:      lend.Amount,
				Source:      models.IncomeSourceAdjustment,
				Date:        time.Now(),
				Destination: models.PoolWallet,
				Notes:       reason,
			}); err != nil {
				return err
			}
		} else {
			if err := insertSaving(tx, &models.Saving{
				UserID: userID,
				Amount: lend.Amount,
				Type:   models.SavingTypeAuto,
				Status: models.SavingStatusSaved,
				Reason: reason,
				Date:   time.Now(),
			}); err != nil {
				return err
			}
		}

		return tx.Delete(&lend).Error
	})
}

// DebtFilter 债务列表过滤条件
type DebtFilter struct {
	Status string
	From   *time.Time
	To     *time.Time
}

// ListBorrows 查询当前用户的借入列表，按日期倒序
func (s *Debt) ListBorrows(userID uint, f DebtFilter) ([]models.Borrow, error) {
	q := s.db.Where("user_id = ?", userID)
	if f.Status != "" && f.Status != "all" {
		q = q.Where("status = ?", f.Status)
	}
	q = dateRange(q, f.From, f.To)

	var borrows []models.Borrow
	if err := q.Order("date DESC").Find(&borrows).Error; err != nil {
		return nil, err
	}
	return borrows, nil
}

// ListLends 查询当前用户的借出列表，按日期倒序
func (s *Debt) ListLends(userID uint, f DebtFilter) ([]models.Lend, error) {
	q := s.db.Where("user_id = ?", userID)
	if f.Status != "" && f.Status != "all" {
		q = q.Where("status = ?", f.Status)
	}
	q = dateRange(q, f.From, f.To)

	var lends []models.Lend
	if err := q.Order("date DESC").Find(&lends).Error; err != nil {
		return nil, err
	}
	return lends, nil
}

// GetBorrow 按 ID 查询借入记录，不属于当前用户视为不存在
func (s *Debt) GetBorrow(userID, borrowID uint) (*models.Borrow, error) {
	var borrow models.Borrow
	if err := s.db.Where("id = ? AND user_id = ?", borrowID, userID).First(&borrow).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &borrow, nil
}

// GetLend 按 ID 查询借出记录
func (s *Debt) GetLend(userID, lendID uint) (*models.Lend, error) {
	var lend models.Lend
	if err := s.db.Where("id = ? AND user_id = ?", lendID, userID).First(&lend).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &lend, nil
}
