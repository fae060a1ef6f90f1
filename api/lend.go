package api

import (
	"fintrack/database"
	"fintrack/middleware"
	"fintrack/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// LendHandler 借出处理器
type LendHandler struct{}

func NewLendHandler() *LendHandler {
	return &LendHandler{}
}

type CreateLendRequest struct {
	Person string  `json:"person" binding:"required" example:"李四"`
	Amount float64 `json:"amount" binding:"required,gt=0" example:"300.00"`
	Source string  `json:"source" binding:"required,oneof=wallet savings" example:"wallet"`
	Date   string  `json:"date" example:"2024-01-15"`
	Note   string  `json:"note" example:"应急"`
}

type UpdateLendRequest struct {
	Person *string  `json:"person"`
	Amount *float64 `json:"amount" binding:"omitempty,gt=0"`
	Date   *string  `json:"date"`
	Note   *string  `json:"note"`
}

// Create 创建借出
// @Summary 创建借出
// @Description 记录一笔借出，金额从指定资金池出账，余额不足时拒绝
// @Tags 借出
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateLendRequest true "借出信息"
// @Success 200 {object} Response{data=models.Lend} "创建成功"
// @Failure 400 {object} Response "请求参数错误或余额不足"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/lends [post]
func (h *LendHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	var req CreateLendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		BadRequest(c, "日期格式错误，应为: 2006-01-02")
		return
	}

	lend, err := service.NewDebt(database.DB).CreateLend(userID, service.LendInput{
		Person: req.Person,
		Amount: decimal.NewFromFloat(req.Amount),
		Source: req.Source,
		Date:   date,
		Note:   req.Note,
	})
	if err != nil {
		handleServiceError(c, err, "创建借出失败")
		return
	}
	SuccessWithMessage(c, "创建成功", lend)
}

// List 获取借出列表
// @Summary 获取借出列表
// @Description 获取当前用户的借出列表，支持按状态与日期筛选
// @Tags 借出
// @Produce json
// @Security BearerAuth
// @Param status query string false "状态筛选 (pending/settled/all)"
// @Param start_date query string false "开始日期 (2024-01-01)"
// @Param end_date query string false "结束日期 (2024-12-31)"
// @Success 200 {object} Response{data=[]models.Lend} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/lends [get]
func (h *LendHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	from, to := parseDateRange(c)
	lends, err := service.NewDebt(database.DB).ListLends(userID, service.DebtFilter{
		Status: c.Query("status"),
		From:   from,
		To:     to,
	})
	if err != nil {
		handleServiceError(c, err, "查询失败")
		return
	}
	Success(c, lends)
}

// Get 获取单条借出
// @Summary 获取单条借出
// @Description 根据ID获取借出详情
// @Tags 借出
// @Produce json
// @Security BearerAuth
// @Param id path int true "借出ID"
// @Success 200 {object} Response{data=models.Lend} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/lends/{id} [get]
func (h *LendHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}
	lend, err := service.NewDebt(database.DB).GetLend(userID, id)
	if err != nil {
		handleServiceError(c, err, "查询失败")
		return
	}
	Success(c, lend)
}

// Update 更新借出
// @Summary 更新借出
// @Description 更新借出记录；金额变更时剩余未收金额按已收金额重新推导，资金池按差额修正
// @Tags 借出
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "借出ID"
// @Param request body UpdateLendRequest true "借出信息"
// @Success 200 {object} Response{data=models.Lend} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/lends/{id} [put]
func (h *LendHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateLendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	upd := service.DebtUpdate{
		Person:      req.Person,
		Description: req.Note,
	}
	if req.Amount != nil {
		amount := decimal.NewFromFloat(*req.Amount)
		upd.Amount = &amount
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			BadRequest(c, "日期格式错误，应为: 2006-01-02")
			return
		}
		upd.Date = &date
	}

	lend, err := service.NewDebt(database.DB).UpdateLend(userID, id, upd)
	if err != nil {
		handleServiceError(c, err, "更新借出失败")
		return
	}
	SuccessWithMessage(c, "更新成功", lend)
}

// Delete 删除借出
// @Summary 删除借出
// @Description 删除借出记录并把当初的出账退回资金池，关联的还款记录一并删除
// @Tags 借出
// @Produce json
// @Security BearerAuth
// @Param id path int true "借出ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/lends/{id} [delete]
func (h *LendHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := service.NewDebt(database.DB).DeleteLend(userID, id); err != nil {
		handleServiceError(c, err, "删除借出失败")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}

// Repay 收到借出还款
// @Summary 收到借出还款
// @Description 记录借款人归还的一笔款项，进入指定资金池；收清后自动结清
// @Tags 借出
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "借出ID"
// @Param request body RepayRequest true "还款信息"
// @Success 200 {object} Response{data=models.Repayment} "还款成功"
// @Failure 400 {object} Response "请求参数错误或超额还款"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/lends/{id}/repayments [post]
func (h *LendHandler) Repay(c *gin.Context) {
	applyRepayment(c, service.TargetLend)
}

// ListRepayments 获取借出的还款记录
// @Summary 获取借出的还款记录
// @Description 获取指定借出下的全部还款记录
// @Tags 借出
// @Produce json
// @Security BearerAuth
// @Param id path int true "借出ID"
// @Success 200 {object} Response{data=[]models.Repayment} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/lends/{id}/repayments [get]
func (h *LendHandler) ListRepayments(c *gin.Context) {
	listTargetRepayments(c, service.TargetLend)
}
