package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"fintrack/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 通知类型常量
const (
	// NotificationBorrowDue 借入未结清，需要还款
	NotificationBorrowDue = "borrow_due"
	// NotificationLendDue 借出未收回
	NotificationLendDue = "lend_due"
	// NotificationLowSavings 储蓄余额低于阈值
	NotificationLowSavings = "low_savings"
)

// Notification 一条提醒，按需计算，不落库
type Notification struct {
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Amount  decimal.Decimal `json:"amount"`
	Person  string          `json:"person,omitempty"`
	Date    time.Time       `json:"date,omitempty"`
}

// Notifier 提醒服务：每次查询时从当前数据即时推导，
// 债务结清或储蓄回升后对应提醒自然消失
type Notifier struct {
	db        *gorm.DB
	threshold decimal.Decimal
	email     *EmailService
}

// NewNotifier 创建提醒服务，email 可为 nil（不发邮件）
func NewNotifier(db *gorm.DB, threshold decimal.Decimal, email *EmailService) *Notifier {
	return &Notifier{db: db, threshold: threshold, email: email}
}

// All 计算当前用户的全部提醒：未结清借入、未收回借出、储蓄低于阈值
func (s *Notifier) All(userID uint) ([]Notification, error) {
	notifications := make([]Notification, 0)

	var borrows []models.Borrow
	if err := s.db.Where("user_id = ? AND status = ?", userID, models.DebtStatusPending).
		Order("date ASC").Find(&borrows).Error; err != nil {
		return nil, err
	}
	for _, b := range borrows {
		if !b.RemainingAmount.IsPositive() {
			continue
		}
		notifications = append(notifications, Notification{
			Type:    NotificationBorrowDue,
			Message: fmt.Sprintf("您还欠 %s %s 元未还", b.Person, b.RemainingAmount.StringFixed(2)),
			Amount:  b.RemainingAmount,
			Person:  b.Person,
			Date:    b.Date,
		})
	}

	var lends []models.Lend
	if err := s.db.Where("user_id = ? AND status = ?", userID, models.DebtStatusPending).
		Order("date ASC").Find(&lends).Error; err != nil {
		return nil, err
	}
	for _, l := range lends {
		if !l.RemainingAmount.IsPositive() {
			continue
		}
		notifications = append(notifications, Notification{
			Type:    NotificationLendDue,
			Message: fmt.Sprintf("%s 还欠您 %s 元未还", l.Person, l.RemainingAmount.StringFixed(2)),
			Amount:  l.RemainingAmount,
			Person:  l.Person,
			Date:    l.Date,
		})
	}

	balance, err := savingsBalance(s.db, userID)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(s.threshold) {
		notifications = append(notifications, Notification{
			Type:    NotificationLowSavings,
			Message: fmt.Sprintf("储蓄余额 %s 元，已低于 %s 元", balance.StringFixed(2), s.threshold.StringFixed(2)),
			Amount:  balance,
		})
	}

	return notifications, nil
}

// CheckLowSavings 检查储蓄余额，低于阈值且用户配置了邮箱时发送提醒邮件。
// 发信失败只记日志，不影响调用方的主流程
func (s *Notifier) CheckLowSavings(userID uint) {
	if s.email == nil {
		return
	}

	balance, err := savingsBalance(s.db, userID)
	if err != nil {
		log.Printf("储蓄余额检查失败: user_id=%d, err=%v", userID, err)
		return
	}
	if balance.GreaterThanOrEqual(s.threshold) {
		return
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("查询用户失败: user_id=%d, err=%v", userID, err)
		}
		return
	}
	if user.Email == "" {
		return
	}

	if err := s.email.SendLowSavingsAlert(user.Email, user.Username, balance, s.threshold); err != nil {
		log.Printf("储蓄提醒邮件发送失败: user_id=%d, err=%v", userID, err)
	}
}
