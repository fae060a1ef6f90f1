package api

import (
	"fintrack/config"
	"fintrack/database"
	"fintrack/middleware"
	"fintrack/service"

	"github.com/gin-gonic/gin"
)

// ReportHandler 报表处理器
type ReportHandler struct{}

func NewReportHandler() *ReportHandler {
	return &ReportHandler{}
}

type GenerateReportRequest struct {
	Type  string `json:"type" example:"summary"`
	Range string `json:"range" example:"2024-01"`
}

// Generate 生成报表
// @Summary 生成报表
// @Description 手动生成一份收支明细 CSV 报表并登记报表记录
// @Tags 报表
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GenerateReportRequest false "报表参数"
// @Success 200 {object} Response{data=models.Report} "生成成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/reports [post]
func (h *ReportHandler) Generate(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	var req GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	reports := service.NewReports(database.DB, config.GetConfig().Report.Dir)
	report, err := reports.Generate(userID, req.Type, req.Range)
	if err != nil {
		handleServiceError(c, err, "生成报表失败")
		return
	}
	SuccessWithMessage(c, "生成成功", report)
}

// List 获取报表记录列表
// @Summary 获取报表记录列表
// @Description 获取当前用户已生成的报表记录，按生成时间倒序
// @Tags 报表
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Report} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	reports := service.NewReports(database.DB, config.GetConfig().Report.Dir)
	list, err := reports.ListByUser(userID)
	if err != nil {
		handleServiceError(c, err, "查询失败")
		return
	}
	Success(c, list)
}

// Summary 获取收支明细汇总
// @Summary 获取收支明细汇总
// @Description 获取当前用户全部收入与支出明细的合并视图，按日期倒序
// @Tags 报表
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]service.SummaryRow} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	reports := service.NewReports(database.DB, config.GetConfig().Report.Dir)
	rows, err := reports.Summary(userID)
	if err != nil {
		handleServiceError(c, err, "查询失败")
		return
	}
	Success(c, rows)
}
