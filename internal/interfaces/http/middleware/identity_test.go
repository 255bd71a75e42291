package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"sheetcode-ai-api/pkg/utils"
)

func identityEngine(cfg IdentityConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Identity(cfg))
	r.GET("/v1/me", func(c *gin.Context) { c.String(http.StatusOK, UserEmail(c)) })
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestIdentity_ValidToken(t *testing.T) {
	cfg := IdentityConfig{Enabled: true, Secret: "s3cret", Issuer: "idp", SkipPaths: DefaultSkipPaths}
	token, err := utils.NewIdentityVerifier(cfg.Secret, cfg.Issuer, "").Sign("a@b.com", "A", time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	identityEngine(cfg).ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "a@b.com" {
		t.Fatalf("unexpected response %d %q", w.Code, w.Body.String())
	}
}

func TestIdentity_Rejects(t *testing.T) {
	cfg := IdentityConfig{Enabled: true, Secret: "s3cret", SkipPaths: DefaultSkipPaths}
	r := identityEngine(cfg)

	for _, header := range []string{"", "Basic abc", "Bearer not-a-token"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, w.Code)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health should skip identity, got %d", w.Code)
	}
}

func TestIdentity_DisabledUsesDevEmail(t *testing.T) {
	w := httptest.NewRecorder()
	identityEngine(IdentityConfig{DevEmail: "dev@local"}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/me", nil))
	if w.Body.String() != "dev@local" {
		t.Fatalf("expected dev email, got %q", w.Body.String())
	}
}

type countingLimiter struct {
	allowed int
	keys    []string
}

func (l *countingLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	l.keys = append(l.keys, key)
	if l.allowed >= limit {
		return false, nil
	}
	l.allowed++
	return true, nil
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := &countingLimiter{}
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(userEmailKey, "a@b.com"); c.Next() })
	r.POST("/v1/lessons/outline", RateLimit(RateLimitConfig{Enabled: true, RequestsPerMinute: 2}, limiter), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/lessons/outline", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}
	if limiter.keys[0] != "ratelimit:/v1/lessons/outline:a@b.com" {
		t.Fatalf("unexpected key %q", limiter.keys[0])
	}
}
