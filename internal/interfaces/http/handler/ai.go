package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sheetcode-ai-api/internal/application/lesson"
	"sheetcode-ai-api/internal/interfaces/http/dto"
	"sheetcode-ai-api/pkg/logger"
)

// NotesPromptGenerator 以完整提示词生成笔记
type NotesPromptGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AIHandler 模型直连接口
type AIHandler struct {
	notes NotesPromptGenerator
}

// NewAIHandler 创建处理器
func NewAIHandler(notes *lesson.NotesGenerator) *AIHandler {
	return &AIHandler{notes: notes}
}

// GenerateNotes 生成单章笔记
// @Summary 生成章节笔记
// @Tags AI
// @Accept json
// @Produce json
// @Param body body dto.GenerateNotesRequest true "提示词"
// @Success 200 {object} dto.GenerateNotesResponse
// @Router /v1/ai/generate-notes [post]
func (h *AIHandler) GenerateNotes(c *gin.Context) {
	var req dto.GenerateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		dto.BadRequest(c, "Prompt is required")
		return
	}

	notes, err := h.notes.Generate(c.Request.Context(), req.Prompt)
	if err != nil {
		logger.Error(c.Request.Context(), "generate notes failed", err)
		dto.AppError(c, lesson.NotesError(err))
		return
	}
	c.JSON(http.StatusOK, dto.GenerateNotesResponse{Parsed: notes})
}
