package handler

import (
	"errors"
	"net/http"

	"srmdb/internal/service"
	"srmdb/pkg/logger"
	"srmdb/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// fail 将业务哨兵错误映射到HTTP状态码与统一响应
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrNotPartnered),
		errors.Is(err, service.ErrInvalidInvite),
		errors.Is(err, service.ErrNotWatched),
		errors.Is(err, service.ErrSelfReference):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredential):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrAlreadyPartnered),
		errors.Is(err, service.ErrDuplicateInvite):
		response.Conflict(c, err.Error())
	default:
		logger.Error("请求处理失败",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		response.ErrorWithDetails(c, http.StatusInternalServerError, "服务器内部错误", err)
	}
}
