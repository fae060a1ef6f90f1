package api

import (
	"errors"

	"fintrack/service"

	"github.com/gin-gonic/gin"
)

// handleServiceError 把服务层错误映射为统一响应：
// 校验类/余额类错误原样返回 400，记录不存在返回 404，
// 其余内部错误按运行模式决定是否暴露详情
func handleServiceError(c *gin.Context, err error, fallback string) {
	var verr *service.ValidationError
	var berr *service.InsufficientBalanceError
	var oerr *service.OverpaymentError

	switch {
	case errors.Is(err, service.ErrNotFound):
		NotFound(c, "记录不存在")
	case errors.As(err, &verr), errors.As(err, &berr), errors.As(err, &oerr):
		BadRequest(c, err.Error())
	default:
		InternalError(c, SafeErrorMessage(err, fallback))
	}
}
