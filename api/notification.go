package api

import (
	"fintrack/middleware"

	"github.com/gin-gonic/gin"
)

// NotificationHandler 提醒处理器
type NotificationHandler struct{}

func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{}
}

// List 获取提醒列表
// @Summary 获取提醒列表
// @Description 获取当前用户的全部提醒：未结清借入、未收回借出、储蓄余额低于阈值。提醒即时计算，债务结清后自动消失
// @Tags 提醒
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]service.Notification} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	notifications, err := newNotifier().All(userID)
	if err != nil {
		handleServiceError(c, err, "查询失败")
		return
	}
	Success(c, notifications)
}
