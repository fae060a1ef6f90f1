package api

import (
	"fintrack/database"
	"fintrack/middleware"
	"fintrack/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// RepaymentHandler 还款处理器
type RepaymentHandler struct{}

func NewRepaymentHandler() *RepaymentHandler {
	return &RepaymentHandler{}
}

// RepayRequest 还款请求
type RepayRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0" example:"100.00"`
	Pool   string  `json:"pool" binding:"required,oneof=wallet savings" example:"wallet"`
	Date   string  `json:"date" example:"2024-02-01"`
	Notes  string  `json:"notes" example:"部分还款"`
}

// applyRepayment 借入/借出还款的公共入口，目标 ID 取自路径参数
func applyRepayment(c *gin.Context, kind service.TargetKind) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req RepayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		BadRequest(c, "日期格式错误，应为: 2006-01-02")
		return
	}

	repayment, err := service.NewRepayments(database.DB).Apply(userID,
		service.RepaymentTarget{Kind: kind, ID: id},
		service.RepaymentInput{
			Amount: decimal.NewFromFloat(req.Amount),
			Pool:   req.Pool,
			Date:   date,
			Notes:  req.Notes,
		})
	if err != nil {
		handleServiceError(c, err, "还款失败")
		return
	}

	// 偿还借入是出账，顺带检查储蓄余额
	if kind == service.TargetBorrow {
		newNotifier().CheckLowSavings(userID)
	}

	SuccessWithMessage(c, "还款成功", repayment)
}

// listTargetRepayments 查询某笔债务下的还款记录
func listTargetRepayments(c *gin.Context, kind service.TargetKind) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}
	repayments, err := service.NewRepayments(database.DB).ListByTarget(userID,
		service.RepaymentTarget{Kind: kind, ID: id})
	if err != nil {
		handleServiceError(c, err, "查询失败")
		return
	}
	Success(c, repayments)
}

// List 获取还款总表
// @Summary 获取还款总表
// @Description 获取当前用户的全部还款明细，借入借出合并，支持按类型、目标状态与日期筛选
// @Tags 还款
// @Produce json
// @Security BearerAuth
// @Param type query string false "类型筛选 (borrow/lend)"
// @Param status query string false "目标债务状态筛选 (pending/settled)"
// @Param start_date query string false "开始日期 (2024-01-01)"
// @Param end_date query string false "结束日期 (2024-12-31)"
// @Success 200 {object} Response{data=[]service.RepaymentDetail} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/repayments [get]
func (h *RepaymentHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	from, to := parseDateRange(c)
	details, err := service.NewRepayments(database.DB).ListAll(userID, service.RepaymentFilter{
		Type:   c.Query("type"),
		Status: c.Query("status"),
		From:   from,
		To:     to,
	})
	if err != nil {
		handleServiceError(c, err, "查询失败")
		return
	}
	Success(c, details)
}
