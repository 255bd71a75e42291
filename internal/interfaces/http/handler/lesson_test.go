package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"sheetcode-ai-api/internal/application/lesson"
	"sheetcode-ai-api/internal/domain/entity"
	"sheetcode-ai-api/pkg/errors"
)

type stubOutline struct {
	got lesson.OutlineRequest
	id  string
	err error
}

func (s *stubOutline) RequestOutline(_ context.Context, req lesson.OutlineRequest) (string, error) {
	s.got = req
	return s.id, s.err
}

type stubReader struct {
	courses []*entity.CourseOutline
	err     error
}

func (s *stubReader) List(context.Context) ([]*entity.CourseOutline, error) { return s.courses, s.err }
func (s *stubReader) Get(_ context.Context, id string) (*entity.CourseOutline, error) {
	for _, c := range s.courses {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, errors.New(errors.CodeCourseNotFound, "Lesson not found")
}
func (s *stubReader) Notes(context.Context, string) ([]*entity.ChapterNote, error) {
	return []*entity.ChapterNote{}, nil
}
func (s *stubReader) Delete(context.Context, string) error { return s.err }

func newLessonEngine(h *LessonHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_email", "a@b.com")
		c.Next()
	})
	r.POST("/v1/lessons/outline", h.RequestOutline)
	r.GET("/v1/lessons", h.ListLessons)
	r.GET("/v1/lessons/:id", h.GetLesson)
	r.DELETE("/v1/lessons/:id", h.DeleteLesson)
	return r
}

func postOutline(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/lessons/outline", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return m
}

func TestRequestOutline_ReturnsIDAsJSONString(t *testing.T) {
	stub := &stubOutline{id: "course-1"}
	r := newLessonEngine(&LessonHandler{outline: stub, query: &stubReader{}})

	w := postOutline(r, `{"topic":"Binary Search Trees","difficulty":"Medium","purpose":"Comprehensive"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var id string
	if err := json.Unmarshal(w.Body.Bytes(), &id); err != nil || id != "course-1" {
		t.Fatalf("expected JSON string id, got %q", w.Body.String())
	}
	if stub.got.RequesterEmail != "a@b.com" || stub.got.Topic != "Binary Search Trees" {
		t.Fatalf("unexpected request %+v", stub.got)
	}
}

func TestRequestOutline_Overloaded503(t *testing.T) {
	stub := &stubOutline{err: errors.New(errors.CodeServiceOverloaded, "AI service is currently overloaded. Please try again in a few minutes.").
		WithDetail("high demand").
		WithRetry(60 * time.Second)}
	r := newLessonEngine(&LessonHandler{outline: stub, query: &stubReader{}})

	w := postOutline(r, `{"topic":"Graphs"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["retryable"] != true || body["suggestedDelay"] != float64(60000) {
		t.Fatalf("unexpected body %v", body)
	}
	if body["error"] == "" || body["details"] != "high demand" {
		t.Fatalf("missing error fields %v", body)
	}
}

func TestRequestOutline_Validation400(t *testing.T) {
	stub := &stubOutline{err: errors.New(errors.CodeValidation, "Topic is required")}
	r := newLessonEngine(&LessonHandler{outline: stub, query: &stubReader{}})

	w := postOutline(r, `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["error"] != "Topic is required" {
		t.Fatalf("unexpected body %v", body)
	}
	if _, ok := body["retryable"]; ok {
		t.Fatalf("validation errors carry no retryable flag: %v", body)
	}
}

func TestRequestOutline_GenericFailure500(t *testing.T) {
	stub := &stubOutline{err: errors.New(errors.CodeGenerationFailed, "Failed to generate lesson outline. Please try again later.").WithRetry(0)}
	r := newLessonEngine(&LessonHandler{outline: stub, query: &stubReader{}})

	w := postOutline(r, `{"topic":"Graphs"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["retryable"] != true {
		t.Fatalf("expected retryable, got %v", body)
	}
	if _, ok := body["suggestedDelay"]; ok {
		t.Fatalf("no suggested delay expected: %v", body)
	}
}

func TestRequestOutline_UnclassifiedFailure(t *testing.T) {
	stub := &stubOutline{err: fmt.Errorf("boom")}
	r := newLessonEngine(&LessonHandler{outline: stub, query: &stubReader{}})

	w := postOutline(r, `{"topic":"Graphs"}`)
	body := decodeBody(t, w)
	if w.Code != http.StatusInternalServerError || body["retryable"] != false {
		t.Fatalf("expected 500 retryable=false, got %d %v", w.Code, body)
	}
}

func TestRequestOutline_InvalidJSON(t *testing.T) {
	r := newLessonEngine(&LessonHandler{outline: &stubOutline{}, query: &stubReader{}})
	if w := postOutline(r, `{"topic":`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestListLessons(t *testing.T) {
	reader := &stubReader{courses: []*entity.CourseOutline{{ID: "b"}, {ID: "a"}}}
	r := newLessonEngine(&LessonHandler{outline: &stubOutline{}, query: reader})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/lessons", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var list []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil || len(list) != 2 || list[0]["_id"] != "b" {
		t.Fatalf("unexpected list %s", w.Body.String())
	}
}

func TestListLessons_StoreFailure(t *testing.T) {
	reader := &stubReader{err: errors.New(errors.CodePersistence, "Failed to fetch lessons")}
	r := newLessonEngine(&LessonHandler{outline: &stubOutline{}, query: reader})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/lessons", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestGetLesson_NotFound(t *testing.T) {
	r := newLessonEngine(&LessonHandler{outline: &stubOutline{}, query: &stubReader{}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/lessons/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
