package service

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"fintrack/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TargetKind 还款目标类型
type TargetKind string

const (
	// TargetBorrow 偿还自己的借入
	TargetBorrow TargetKind = "borrow"
	// TargetLend 收到借出款的归还
	TargetLend TargetKind = "lend"
)

// RepaymentTarget 还款目标：类型 + 对应表内的记录 ID
type RepaymentTarget struct {
	Kind TargetKind
	ID   uint
}

// RepaymentInput 执行还款入参
type RepaymentInput struct {
	Amount decimal.Decimal
	Pool   string
	Date   time.Time
	Notes  string
}

// Repayments 还款引擎：对一笔借入或借出执行部分/全额还款。
// 债务行加行锁后校验，校验全过才落资金流水并扣减剩余金额，
// 剩余金额降到 0 时自动置为 settled，全程单事务。
type Repayments struct {
	db *gorm.DB
}

// NewRepayments 创建还款引擎
func NewRepayments(db *gorm.DB) *Repayments {
	return &Repayments{db: db}
}

// Apply 对目标债务执行一次还款
//
// 校验顺序固定：目标类型 → 记录存在 → 金额为正 → 资金池合法 →
// 不超剩余未还 → （仅偿还借入时）付款资金池余额充足。
// 任一校验失败则整体回滚，不产生任何记录。
func (s *Repayments) Apply(userID uint, target RepaymentTarget, in RepaymentInput) (*models.Repayment, error) {
	if target.Kind != TargetBorrow && target.Kind != TargetLend {
		return nil, invalidf("无效的还款目标类型: %s", target.Kind)
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	var repayment *models.Repayment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var (
			person    string
			remaining decimal.Decimal
		)
		var borrow models.Borrow
		var lend models.Lend

		// 先锁债务行再读剩余金额，并发还款串行化，防止超还
		locked := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", target.ID, userID)
		if target.Kind == TargetBorrow {
			if err := locked.First(&borrow).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
			person, remaining = borrow.Person, borrow.RemainingAmount
		} else {
			if err := locked.First(&lend).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
			person, remaining = lend.Person, lend.RemainingAmount
		}

		amount := models.Quantize(in.Amount)
		if !amount.IsPositive() {
			return invalidf("还款金额必须大于 0")
		}
		if !models.IsValidPool(in.Pool) {
			return invalidf("无效的资金池: %s，只支持 wallet / savings", in.Pool)
		}
		if amount.GreaterThan(remaining) {
			return &OverpaymentError{Requested: amount, Remaining: remaining}
		}

		// 偿还借入要从自己的资金池出钱，余额必须够；收还款是进账，无此限制
		if target.Kind == TargetBorrow {
			var balance decimal.Decimal
			var err error
			if in.Pool == models.PoolWallet {
				balance, err = walletBalance(tx, userID, nil, nil)
			} else {
				balance, err = savingsBalance(tx, userID)
			}
			if err != nil {
				return err
			}
			if balance.LessThan(amount) {
				return &InsufficientBalanceError{
					Pool:      in.Pool,
					Available: balance,
					Required:  amount,
				}
			}
		}

		if err := s.applyFlow(tx, userID, target.Kind, person, amount, in.Pool, in.Date); err != nil {
			return err
		}

		newRemaining := models.Quantize(remaining.Sub(amount))
		if newRemaining.IsNegative() {
			newRemaining = decimal.Zero
		}
		updates := map[string]interface{}{
			"remaining_amount": newRemaining,
			"status":           debtStatus(newRemaining),
		}
		if target.Kind == TargetBorrow {
			if err := tx.Model(&borrow).Updates(updates).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Model(&lend).Updates(updates).Error; err != nil {
				return err
			}
		}

		notes := in.Notes
		if notes == "" {
			if target.Kind == TargetBorrow {
				notes = fmt.Sprintf("偿还 %s 的借款", person)
			} else {
				notes = fmt.Sprintf("收到 %s 的还款", person)
			}
		}
		repayment = &models.Repayment{
			Amount: amount,
			Date:   in.Date,
			Pool:   in.Pool,
			Notes:  notes,
		}
		if target.Kind == TargetBorrow {
			repayment.BorrowID = &borrow.ID
		} else {
			repayment.LendID = &lend.ID
		}
		return tx.Create(repayment).Error
	})
	if err != nil {
		return nil, err
	}
	return repayment, nil
}

// applyFlow 落还款对应的资金流水：
// 偿还借入 = 钱包支出或储蓄支出；收到还款 = 钱包收入或储蓄存入
func (s *Repayments) applyFlow(tx *gorm.DB, userID uint, kind TargetKind, person string, amount decimal.Decimal, pool string, date time.Time) error {
	if kind == TargetBorrow {
		if pool == models.PoolWallet {
			return insertExpense(tx, &models.Expense{
				UserID:      userID,
				Amount:      amount,
				Category:    models.CategoryRepayment,
				Date:        date,
				Description: fmt.Sprintf("偿还 %s 的借款", person),
			})
		}
		return insertSaving(tx, &models.Saving{
			UserID: userID,
			Amount: amount,
			Type:   models.SavingTypeSpend,
			Status: models.SavingStatusSpent,
			Reason: fmt.Sprintf("偿还 %s 的借款", person),
			Date:   date,
		})
	}

	if pool == models.PoolWallet {
		return insertIncome(tx, &models.Income{
			UserID:      userID,
			Amount:      amount,
			Source:      models.IncomeSourceRepayment,
			Date:        date,
			Destination: models.PoolWallet,
			Notes:       fmt.Sprintf("收到 %s 的还款", person),
		})
	}
	return insertSaving(tx, &models.Saving{
		UserID: userID,
		Amount: amount,
		Type:   models.SavingTypeAuto,
		Status: models.SavingStatusSaved,
		Reason: fmt.Sprintf("收到 %s 的还款", person),
		Date:   date,
	})
}

// RepaymentDetail 还款明细，附带目标债务的类型与对方
type RepaymentDetail struct {
	ID       uint            `json:"id"`
	Type     string          `json:"type"`
	TargetID uint            `json:"target_id"`
	Person   string          `json:"person"`
	Amount   decimal.Decimal `json:"amount"`
	Pool     string          `json:"pool"`
	Date     time.Time       `json:"date"`
	Notes    string          `json:"notes"`
	Settled  bool            `json:"settled"`
}

// ListByTarget 查询某笔借入/借出下的还款记录，按日期倒序
func (s *Repayments) ListByTarget(userID uint, target RepaymentTarget) ([]models.Repayment, error) {
	if target.Kind != TargetBorrow && target.Kind != TargetLend {
		return nil, invalidf("无效的还款目标类型: %s", target.Kind)
	}

	// 归属校验：目标不属于当前用户则视为不存在
	var err error
	if target.Kind == TargetBorrow {
		err = s.db.Where("id = ? AND user_id = ?", target.ID, userID).First(&models.Borrow{}).Error
	} else {
		err = s.db.Where("id = ? AND user_id = ?", target.ID, userID).First(&models.Lend{}).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var repayments []models.Repayment
	q := s.db.Order("date DESC")
	if target.Kind == TargetBorrow {
		q = q.Where("borrow_id = ?", target.ID)
	} else {
		q = q.Where("lend_id = ?", target.ID)
	}
	if err := q.Find(&repayments).Error; err != nil {
		return nil, err
	}
	return repayments, nil
}

// RepaymentFilter 还款总表过滤条件
type RepaymentFilter struct {
	Type   string // borrow / lend / 空=全部
	Status string // pending / settled / 空=全部，按目标债务当前状态过滤
	From   *time.Time
	To     *time.Time
}

// ListAll 查询当前用户全部还款明细，借入借出合并，按日期倒序
func (s *Repayments) ListAll(userID uint, f RepaymentFilter) ([]RepaymentDetail, error) {
	details := make([]RepaymentDetail, 0)

	if f.Type == "" || f.Type == string(TargetBorrow) {
		var repayments []models.Repayment
		q := s.db.Preload("Borrow").
			Joins("JOIN borrows ON borrows.id = repayments.borrow_id").
			Where("borrows.user_id = ? AND borrows.deleted_at IS NULL", userID)
		if f.Status != "" {
			q = q.Where("borrows.status = ?", f.Status)
		}
		if f.From != nil {
			q = q.Where("repayments.date >= ?", *f.From)
		}
		if f.To != nil {
			q = q.Where("repayments.date <= ?", *f.To)
		}
		if err := q.Find(&repayments).Error; err != nil {
			return nil, err
		}
		for _, r := range repayments {
			d := RepaymentDetail{
				ID:     r.ID,
				Type:   string(TargetBorrow),
				Amount: r.Amount,
				Pool:   r.Pool,
				Date:   r.Date,
				Notes:  r.Notes,
			}
			if r.Borrow != nil {
				d.TargetID = r.Borrow.ID
				d.Person = r.Borrow.Person
				d.Settled = r.Borrow.Status == models.DebtStatusSettled
			}
			details = append(details, d)
		}
	}

	if f.Type == "" || f.Type == string(TargetLend) {
		var repayments []models.Repayment
		q := s.db.Preload("Lend").
			Joins("JOIN lends ON lends.id = repayments.lend_id").
			Where("lends.user_id = ? AND lends.deleted_at IS NULL", userID)
		if f.Status != "" {
			q = q.Where("lends.status = ?", f.Status)
		}
		if f.From != nil {
			q = q.Where("repayments.date >= ?", *f.From)
		}
		if f.To != nil {
			q = q.Where("repayments.date <= ?", *f.To)
		}
		if err := q.Find(&repayments).Error; err != nil {
			return nil, err
		}
		for _, r := range repayments {
			d := RepaymentDetail{
				ID:     r.ID,
				Type:   string(TargetLend),
				Amount: r.Amount,
				Pool:   r.Pool,
				Date:   r.Date,
				Notes:  r.Notes,
			}
			if r.Lend != nil {
				d.TargetID = r.Lend.ID
				d.Person = r.Lend.Person
				d.Settled = r.Lend.Status == models.DebtStatusSettled
			}
			details = append(details, d)
		}
	}

	// 合并后统一按日期倒序
	sort.Slice(details, func(i, j int) bool {
		return details[i].Date.After(details[j].Date)
	})
	return details, nil
}
