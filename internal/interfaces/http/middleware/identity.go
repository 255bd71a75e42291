// Package middleware 提供 HTTP 中间件
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sheetcode-ai-api/internal/interfaces/http/dto"
	"sheetcode-ai-api/pkg/logger"
	"sheetcode-ai-api/pkg/utils"
)

const userEmailKey = "user_email"

// IdentityConfig 身份校验配置
type IdentityConfig struct {
	// Enabled 是否校验 Token；关闭时使用 DevEmail
	Enabled  bool
	Secret   string
	Issuer   string
	Audience string
	DevEmail string
	// SkipPaths 跳过校验的路径前缀
	SkipPaths []string
}

// DefaultSkipPaths 默认跳过校验的路径
var DefaultSkipPaths = []string{
	"/health",
	"/ready",
	"/live",
	"/metrics",
}

// Identity 校验外部身份提供方签发的 Token，注入请求者邮箱
func Identity(cfg IdentityConfig) gin.HandlerFunc {
	verifier := utils.NewIdentityVerifier(cfg.Secret, cfg.Issuer, cfg.Audience)

	return func(c *gin.Context) {
		if !cfg.Enabled {
			setUserEmail(c, cfg.DevEmail)
			c.Next()
			return
		}

		for _, path := range cfg.SkipPaths {
			if strings.HasPrefix(c.Request.URL.Path, path) {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			dto.AbortError(c, http.StatusUnauthorized, "missing authorization header")
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			dto.AbortError(c, http.StatusUnauthorized, "invalid authorization format")
			return
		}

		claims, err := verifier.Verify(parts[1])
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, utils.ErrExpiredToken) {
				msg = "token expired"
			}
			dto.AbortError(c, http.StatusUnauthorized, msg)
			return
		}

		setUserEmail(c, claims.Email)
		c.Next()
	}
}

// UserEmail 返回当前请求者邮箱
func UserEmail(c *gin.Context) string {
	return c.GetString(userEmailKey)
}

func setUserEmail(c *gin.Context, email string) {
	email = strings.TrimSpace(email)
	if email == "" {
		return
	}
	c.Set(userEmailKey, email)
	ctx := logger.WithContext(c.Request.Context(), logger.UserEmailKey, email)
	c.Request = c.Request.WithContext(ctx)
}
