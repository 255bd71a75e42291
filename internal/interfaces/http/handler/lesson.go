package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"sheetcode-ai-api/internal/application/lesson"
	"sheetcode-ai-api/internal/domain/entity"
	"sheetcode-ai-api/internal/interfaces/http/dto"
	"sheetcode-ai-api/internal/interfaces/http/middleware"
	"sheetcode-ai-api/pkg/logger"
)

// OutlineRequester 大纲生成
type OutlineRequester interface {
	RequestOutline(ctx context.Context, req lesson.OutlineRequest) (string, error)
}

// LessonReader 课程查询与删除
type LessonReader interface {
	List(ctx context.Context) ([]*entity.CourseOutline, error)
	Get(ctx context.Context, id string) (*entity.CourseOutline, error)
	Notes(ctx context.Context, id string) ([]*entity.ChapterNote, error)
	Delete(ctx context.Context, id string) error
}

// LessonHandler 课程处理器
type LessonHandler struct {
	outline OutlineRequester
	query   LessonReader
}

// NewLessonHandler 创建课程处理器
func NewLessonHandler(outline *lesson.OutlineService, query *lesson.QueryService) *LessonHandler {
	return &LessonHandler{outline: outline, query: query}
}

// RequestOutline 生成课程大纲
// @Summary 生成课程大纲
// @Description 生成 10 章大纲并保存，异步触发章节笔记生成；成功时返回课程 ID 字符串
// @Tags Lessons
// @Accept json
// @Produce json
// @Param body body dto.OutlineRequest true "大纲请求"
// @Success 200 {string} string
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /v1/lessons/outline [post]
func (h *LessonHandler) RequestOutline(c *gin.Context) {
	var req dto.OutlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "Invalid request body")
		return
	}

	id, err := h.outline.RequestOutline(c.Request.Context(), lesson.OutlineRequest{
		Topic:          req.Topic,
		Difficulty:     req.Difficulty,
		Purpose:        req.Purpose,
		RequesterEmail: middleware.UserEmail(c),
	})
	if err != nil {
		logger.Error(c.Request.Context(), "outline request failed", err)
		dto.AppError(c, err)
		return
	}

	c.JSON(http.StatusOK, id)
}

// ListLessons 课程列表（按创建时间倒序）
// @Router /v1/lessons [get]
func (h *LessonHandler) ListLessons(c *gin.Context) {
	courses, err := h.query.List(c.Request.Context())
	if err != nil {
		logger.Error(c.Request.Context(), "failed to list lessons", err)
		dto.AppError(c, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

// GetLesson 课程详情
// @Router /v1/lessons/{id} [get]
func (h *LessonHandler) GetLesson(c *gin.Context) {
	course, err := h.query.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.AppError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// ListChapterNotes 课程的章节笔记
// @Router /v1/lessons/{id}/notes [get]
func (h *LessonHandler) ListChapterNotes(c *gin.Context) {
	notes, err := h.query.Notes(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.AppError(c, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

// DeleteLesson 删除课程及其章节笔记
// @Router /v1/lessons/{id} [delete]
func (h *LessonHandler) DeleteLesson(c *gin.Context) {
	if err := h.query.Delete(c.Request.Context(), c.Param("id")); err != nil {
		dto.AppError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Lesson deleted successfully"})
}
