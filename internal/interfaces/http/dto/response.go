// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sheetcode-ai-api/pkg/errors"
)

// ErrorResponse 错误响应结构
//
// 生成类错误带 retryable 与 suggestedDelay（毫秒），调用方据此安排自动重试。
type ErrorResponse struct {
	Error          string `json:"error"`
	Details        string `json:"details,omitempty"`
	Retryable      *bool  `json:"retryable,omitempty"`
	SuggestedDelay int64  `json:"suggestedDelay,omitempty"`
	TraceID        string `json:"traceId,omitempty"`
}

// Error 返回错误响应
func Error(c *gin.Context, httpCode int, message string) {
	c.JSON(httpCode, ErrorResponse{
		Error:   message,
		TraceID: c.GetString("trace_id"),
	})
}

// AbortError 返回错误响应并终止后续处理
func AbortError(c *gin.Context, httpCode int, message string) {
	c.AbortWithStatusJSON(httpCode, ErrorResponse{
		Error:   message,
		TraceID: c.GetString("trace_id"),
	})
}

// BadRequest 返回 400 错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// AppError 按应用错误写出响应
func AppError(c *gin.Context, err error) {
	status, body := NewErrorResponse(err)
	body.TraceID = c.GetString("trace_id")
	c.JSON(status, body)
}

// NewErrorResponse 将错误转换为状态码与响应体。
// 输入类错误（4xx）不带 retryable；其余未标记可重试的错误显式返回 retryable=false。
func NewErrorResponse(err error) (int, ErrorResponse) {
	if !errors.IsAppError(err) {
		return http.StatusInternalServerError, ErrorResponse{
			Error:     "Internal server error",
			Retryable: boolPtr(false),
		}
	}

	appErr := errors.AsAppError(err)
	body := ErrorResponse{
		Error:   appErr.Message,
		Details: appErr.Detail,
	}
	switch {
	case appErr.Retryable:
		body.Retryable = boolPtr(true)
		body.SuggestedDelay = appErr.SuggestedDelay.Milliseconds()
	case appErr.HTTPStatus >= http.StatusInternalServerError:
		body.Retryable = boolPtr(false)
	}
	return appErr.HTTPStatus, body
}

func boolPtr(b bool) *bool {
	return &b
}
