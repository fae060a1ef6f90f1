package api

import (
	"fintrack/database"
	"fintrack/middleware"
	"fintrack/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// BorrowHandler 借入处理器
type BorrowHandler struct{}

func NewBorrowHandler() *BorrowHandler {
	return &BorrowHandler{}
}

type CreateBorrowRequest struct {
	Person      string  `json:"person" binding:"required" example:"张三"`
	Amount      float64 `json:"amount" binding:"required,gt=0" example:"500.00"`
	Destination string  `json:"destination" binding:"required,oneof=wallet savings" example:"wallet"`
	Date        string  `json:"date" example:"2024-01-15"`
	Description string  `json:"description" example:"周转"`
}

type UpdateBorrowRequest struct {
	Person      *string  `json:"person"`
	Amount      *float64 `json:"amount" binding:"omitempty,gt=0"`
	Date        *string  `json:"date"`
	Description *string  `json:"description"`
}

// Create 创建借入
// @Summary 创建借入
// @Description 记录一笔借入，金额进入指定资金池
// @Tags 借入
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBorrowRequest true "借入信息"
// @Success 200 {object} Response{data=models.Borrow} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/borrows [post]
func (h *BorrowHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	var req CreateBorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		BadRequest(c, "日期格式错误，应为: 2006-01-02")
		return
	}

	borrow, err := service.NewDebt(database.DB).CreateBorrow(userID, service.BorrowInput{
		Person:      req.Person,
		Amount:      decimal.NewFromFloat(req.Amount),
		Destination: req.Destination,
		Date:        date,
		Description: req.Description,
	})
	if err != nil {
		handleServiceError(c, err, "创建借入失败")
		return
	}
	SuccessWithMessage(c, "创建成功", borrow)
}

// List 获取借入列表
// @Summary 获取借入列表
// @Description 获取当前用户的借入列表，支持按状态与日期筛选
// @Tags 借入
// @Produce json
// @Security BearerAuth
// @Param status query string false "状态筛选 (pending/settled/all)"
// @Param start_date query string false "开始日期 (2024-01-01)"
// @Param end_date query string false "结束日期 (2024-12-31)"
// @Success 200 {object} Response{data=[]models.Borrow} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/borrows [get]
func (h *BorrowHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	from, to := parseDateRange(c)
	borrows, err := service.NewDebt(database.DB).ListBorrows(userID, service.DebtFilter{
		Status: c.Query("status"),
		From:   from,
		To:     to,
	})
	if err != nil {
		handleServiceError(c, err, "查询失败")
		return
	}
	Success(c, borrows)
}

// Get 获取单条借入
// @Summary 获取单条借入
// @Description 根据ID获取借入详情
// @Tags 借入
// @Produce json
// @Security BearerAuth
// @Param id path int true "借入ID"
// @Success 200 {object} Response{data=models.Borrow} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/borrows/{id} [get]
func (h *BorrowHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}
	borrow, err := service.NewDebt(database.DB).GetBorrow(userID, id)
	if err != nil {
		handleServiceError(c, err, "查询失败")
		return
	}
	Success(c, borrow)
}

// Update 更新借入
// @Summary 更新借入
// @Description 更新借入记录；金额变更时剩余未还金额按已还金额重新推导，资金池按差额修正
// @Tags 借入
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "借入ID"
// @Param request body UpdateBorrowRequest true "借入信息"
// @Success 200 {object} Response{data=models.Borrow} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/borrows/{id} [put]
func (h *BorrowHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateBorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	upd := service.DebtUpdate{
		Person:      req.Person,
		Description: req.Description,
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

	borrow, err := service.NewDebt(database.DB).UpdateBorrow(userID, id, upd)
	if err != nil {
		handleServiceError(c, err, "更新借入失败")
		return
	}
	SuccessWithMessage(c, "更新成功", borrow)
}

// Delete 删除借入
// @Summary 删除借入
// @Description 删除借入记录并冲销其余额影响，关联的还款记录一并删除
// @Tags 借入
// @Produce json
// @Security BearerAuth
// @Param id path int true "借入ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/borrows/{id} [delete]
func (h *BorrowHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := service.NewDebt(database.DB).DeleteBorrow(userID, id); err != nil {
		handleServiceError(c, err, "删除借入失败")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}

// Repay 偿还借入
// @Summary 偿还借入
// @Description 对指定借入执行一次还款，从指定资金池出账；还清后自动结清
// @Tags 借入
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "借入ID"
// @Param request body RepayRequest true "还款信息"
// @Success 200 {object} Response{data=models.Repayment} "还款成功"
// @Failure 400 {object} Response "请求参数错误、余额不足或超额还款"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/borrows/{id}/repayments [post]
func (h *BorrowHandler) Repay(c *gin.Context) {
	applyRepayment(c, service.TargetBorrow)
}

// ListRepayments 获取借入的还款记录
// @Summary 获取借入的还款记录
// @Description 获取指定借入下的全部还款记录
// @Tags 借入
// @Produce json
// @Security BearerAuth
// @Param id path int true "借入ID"
// @Success 200 {object} Response{data=[]models.Repayment} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/borrows/{id}/repayments [get]
func (h *BorrowHandler) ListRepayments(c *gin.Context) {
	listTargetRepayments(c, service.TargetBorrow)
}
