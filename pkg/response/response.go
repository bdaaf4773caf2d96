package response

import (
	"errors"
	"net/http"

	apperrors "msp/pkg/errors"
	"msp/pkg/pagination"

	"github.com/gin-gonic/gin"
)

// Response 统一返回格式：调用方根据success分支，而不是仅看HTTP状态码
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// PageResponse 分页返回格式
type PageResponse struct {
	Success  bool                 `json:"success"`
	Data     interface{}          `json:"data,omitempty"`
	PageInfo *pagination.PageInfo `json:"page_info"`
}

// ========== 基础返回方法 ==========

// Success 成功返回
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// SuccessWithPage 分页成功返回
func SuccessWithPage(c *gin.Context, data interface{}, pageInfo *pagination.PageInfo) {
	c.JSON(http.StatusOK, PageResponse{
		Success:  true,
		Data:     data,
		PageInfo: pageInfo,
	})
}

// Fail 通用失败返回
func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, Response{
		Success: false,
		Error:   message,
		Errors:  []string{message},
	})
}

// FailWithErrors 多条错误返回（表单逐字段提示）
func FailWithErrors(c *gin.Context, status int, messages []string) {
	msg := ""
	if len(messages) > 0 {
		msg = messages[0]
	}
	c.JSON(status, Response{
		Success: false,
		Error:   msg,
		Errors:  messages,
	})
}

// FromError 按错误分类返回；非AppError一律按服务器内部错误处理，不泄露内部信息
func FromError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		FailWithErrors(c, appErr.HTTPCode(), appErr.Details())
		return
	}
	ServerError(c, "服务器内部错误")
}

// ========== HTTP错误快捷方法 ==========

func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	Fail(c, http.StatusUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	Fail(c, http.StatusForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	Fail(c, http.StatusNotFound, message)
}

func Conflict(c *gin.Context, message string) {
	Fail(c, http.StatusConflict, message)
}

func ServerError(c *gin.Context, message string) {
	Fail(c, http.StatusInternalServerError, message)
}
