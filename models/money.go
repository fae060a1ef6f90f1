package models

import "github.com/shopspring/decimal"

// 资金池常量：钱包（日常流动资金）与储蓄（专款专存）
const (
	PoolWallet  = "wallet"
	PoolSavings = "savings"
)

// IsValidPool 判断是否为合法资金池名称
func IsValidPool(pool string) bool {
	return pool == PoolWallet || pool == PoolSavings
}

// Quantize 金额统一量化为两位小数（四舍五入），比较和落库前必须先量化，
// 避免多次部分还款累积出分位误差
func Quantize(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
