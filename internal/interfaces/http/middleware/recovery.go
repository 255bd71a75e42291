package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"sheetcode-ai-api/internal/interfaces/http/dto"
	"sheetcode-ai-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Recovery Panic 恢复中间件
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				// 获取堆栈信息
				stack := string(debug.Stack())

				// 记录错误日志
				logger.Error(c.Request.Context(), "panic recovered",
					fmt.Errorf("%v", err),
					"stack", stack,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)

				// 返回 500 错误
				retryable := false
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
					Error:     "Internal server error",
					Retryable: &retryable,
					TraceID:   c.GetString("trace_id"),
				})
			}
		}()

		c.Next()
	}
}
