package service

import (
	"errors"
	"fmt"

	"fintrack/models"

	"github.com/shopspring/decimal"
)

// ErrNotFound 目标记录不存在或不属于当前用户
var ErrNotFound = errors.New("记录不存在")

// ValidationError 输入校验失败，在任何写入发生之前拒绝
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func invalidf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// InsufficientBalanceError 资金池余额不足，携带可用与所需金额
type InsufficientBalanceError struct {
	Pool      string
	Available decimal.Decimal
	Required  decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	name := "钱包"
	if e.Pool == models.PoolSavings {
		name = "储蓄"
	}
	return fmt.Sprintf("%s余额不足：可用 %s，需要 %s",
		name, e.Available.StringFixed(2), e.Required.StringFixed(2))
}

// OverpaymentError 还款金额超出剩余未还金额
type OverpaymentError struct {
	Requested decimal.Decimal
	Remaining decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("还款金额 %s 超出剩余未还金额 %s",
		e.Requested.StringFixed(2), e.Remaining.StringFixed(2))
}
