package dto

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"sheetcode-ai-api/pkg/errors"
)

func TestNewErrorResponse(t *testing.T) {
	overloaded := errors.New(errors.CodeServiceOverloaded, "busy").WithDetail("d").WithRetry(time.Minute)
	status, body := NewErrorResponse(overloaded)
	if status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", status)
	}
	if body.Retryable == nil || !*body.Retryable || body.SuggestedDelay != 60000 || body.Details != "d" {
		t.Fatalf("unexpected body %+v", body)
	}

	status, body = NewErrorResponse(errors.New(errors.CodeValidation, "Topic is required"))
	if status != http.StatusBadRequest || body.Retryable != nil || body.Error != "Topic is required" {
		t.Fatalf("unexpected validation response %d %+v", status, body)
	}

	status, body = NewErrorResponse(errors.New(errors.CodePersistence, "save failed"))
	if status != http.StatusInternalServerError || body.Retryable == nil || *body.Retryable {
		t.Fatalf("expected retryable=false for persistence, got %d %+v", status, body)
	}

	status, body = NewErrorResponse(fmt.Errorf("boom"))
	if status != http.StatusInternalServerError || body.Retryable == nil || *body.Retryable {
		t.Fatalf("unexpected fallback response %d %+v", status, body)
	}
}

func TestAppError_TraceIDKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("trace_id", "abc123")

	AppError(c, errors.New(errors.CodeValidation, "Topic is required"))

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["traceId"] != "abc123" {
		t.Fatalf("want traceId=abc123 got=%v", body)
	}
	if _, ok := body["trace_id"]; ok {
		t.Fatalf("unexpected snake_case key: %v", body)
	}
}
