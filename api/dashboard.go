package api

import (
	"fintrack/database"
	"fintrack/middleware"
	"fintrack/service"

	"github.com/gin-gonic/gin"
)

// DashboardHandler 首页汇总处理器
type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// Summary 获取首页汇总
// @Summary 获取首页汇总
// @Description 获取钱包与储蓄余额，以及借入/借出在两个资金池的总额
// @Tags 首页
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=service.Summary} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	summary, err := service.NewBalance(database.DB).DashboardSummary(userID)
	if err != nil {
		handleServiceError(c, err, "查询失败")
		return
	}
	Success(c, summary)
}

// WalletBalance 获取钱包余额
// @Summary 获取钱包余额
// @Description 从全部流水重算钱包余额，支持统一的日期范围
// @Tags 首页
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "开始日期 (2024-01-01)"
// @Param end_date query string false "结束日期 (2024-12-31)"
// @Success 200 {object} Response "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/dashboard/wallet [get]
func (h *DashboardHandler) WalletBalance(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	from, to := parseDateRange(c)
	balance, err := service.NewBalance(database.DB).WalletBalance(userID, from, to)
	if err != nil {
		handleServiceError(c, err, "查询失败")
		return
	}
	Success(c, gin.H{"balance": balance})
}

// SavingsBalance 获取储蓄余额
// @Summary 获取储蓄余额
// @Description 从储蓄流水重算储蓄余额
// @Tags 首页
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/dashboard/savings [get]
func (h *DashboardHandler) SavingsBalance(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	balance, err := service.NewBalance(database.DB).SavingsBalance(userID)
	if err != nil {
		handleServiceError(c, err, "查询失败")
		return
	}
	Success(c, gin.H{"balance": balance})
}

// Reconcile 校正钱包余额缓存
// @Summary 校正钱包余额缓存
// @Description 以流水重算结果校正钱包余额缓存行，返回校正后的余额
// @Tags 首页
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "校正成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/dashboard/reconcile [post]
func (h *DashboardHandler) Reconcile(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	balance, err := service.NewBalance(database.DB).ReconcileWallet(userID)
	if err != nil {
		handleServiceError(c, err, "校正失败")
		return
	}
	SuccessWithMessage(c, "校正完成", gin.H{"balance": balance})
}
