package api

import (
	"fintrack/config"
	"fintrack/database"
	"fintrack/middleware"
	"fintrack/models"
	"fintrack/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// SavingHandler 储蓄流水处理器
type SavingHandler struct{}

func NewSavingHandler() *SavingHandler {
	return &SavingHandler{}
}

type CreateSavingRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0" example:"500.00"`
	Type   string  `json:"type" binding:"required,oneof=auto manual spend" example:"manual"`
	Reason string  `json:"reason" example:"手动存入"`
	Date   string  `json:"date" example:"2024-01-15"`
}

// Create 创建储蓄流水
// @Summary 创建储蓄流水
// @Description 手工创建储蓄存入或支出记录；spend 类型要求储蓄余额充足。储蓄支出后余额低于阈值时会发送邮件提醒
// @Tags 储蓄
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateSavingRequest true "储蓄信息"
// @Success 200 {object} Response{data=models.Saving} "创建成功"
// @Failure 400 {object} Response "请求参数错误或余额不足"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/savings [post]
func (h *SavingHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	var req CreateSavingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		BadRequest(c, "日期格式错误，应为: 2006-01-02")
		return
	}

	saving, err := service.NewRecorder(database.DB).CreateSaving(userID, service.SavingInput{
		Amount: decimal.NewFromFloat(req.Amount),
		Type:   req.Type,
		Reason: req.Reason,
		Date:   date,
	})
	if err != nil {
		handleServiceError(c, err, "创建储蓄记录失败")
		return
	}

	// 储蓄支出后检查余额，低于阈值则发邮件提醒
	if saving.Status == models.SavingStatusSpent {
		newNotifier().CheckLowSavings(userID)
	}

	SuccessWithMessage(c, "创建成功", saving)
}

// List 获取储蓄流水列表
// @Summary 获取储蓄流水列表
// @Description 获取当前用户的储蓄流水，支持按类型、状态与日期筛选
// @Tags 储蓄
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param type query string false "类型筛选 (auto/manual/spend)"
// @Param status query string false "状态筛选 (saved/spent)"
// @Param start_date query string false "开始日期 (2024-01-01)"
// @Param end_date query string false "结束日期 (2024-12-31)"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Saving}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/savings [get]
func (h *SavingHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	page, pageSize := 1, 10
	var pq struct {
		Page     int `form:"page"`
		PageSize int `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&pq); err == nil {
		if pq.Page > 0 {
			page = pq.Page
		}
		if pq.PageSize > 0 && pq.PageSize <= 100 {
			pageSize = pq.PageSize
		}
	}

	query := database.DB.Model(&models.Saving{}).Where("user_id = ?", userID)
	if t := c.Query("type"); t != "" {
		query = query.Where("type = ?", t)
	}
	if s := c.Query("status"); s != "" {
		query = query.Where("status = ?", s)
	}
	from, to := parseDateRange(c)
	if from != nil {
		query = query.Where("date >= ?", *from)
	}
	if to != nil {
		query = query.Where("date <= ?", *to)
	}

	var total int64
	query.Count(&total)
	var list []models.Saving
	offset := (page - 1) * pageSize
	if err := query.Order("date DESC").Offset(offset).Limit(pageSize).Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, PageResponse{Total: total, Page: page, PageSize: pageSize, List: list})
}

// newNotifier 按当前配置构造提醒服务
func newNotifier() *service.Notifier {
	cfg := config.GetConfig()
	return service.NewNotifier(database.DB,
		decimal.NewFromFloat(cfg.Report.LowSavingsThreshold),
		service.NewEmailService(&cfg.Email))
}
