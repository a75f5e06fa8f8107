package handler

import (
	"github.com/blues/cfp/internal/errs"
	"github.com/blues/cfp/internal/logger"
	"github.com/gin-gonic/gin"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// 分页信息结构
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

// NewPagination 计算分页信息
func NewPagination(page, pageSize int, total int64) Pagination {
	return Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
}

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
	})
}

// HandleError 业务错误统一转换为响应信封
// 内部错误只记日志，不向调用方泄露细节
func HandleError(c *gin.Context, err error) {
	if errs.KindOf(err) == errs.KindInternal {
		logger.Error("Internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	ErrorResponse(c, errs.HTTPStatus(err), errs.Message(err))
}
