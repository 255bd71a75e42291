package lesson

import (
	"context"
	stderrors "errors"
	"strings"

	"sheetcode-ai-api/internal/domain/entity"
	"sheetcode-ai-api/internal/domain/service"
	"sheetcode-ai-api/internal/workflow/node"
	"sheetcode-ai-api/internal/workflow/port"
	"sheetcode-ai-api/internal/workflow/prompt"
	"sheetcode-ai-api/pkg/errors"
)

// NotesGenerator 单章笔记生成：模型调用 + 笔记解码
type NotesGenerator struct {
	prompts *prompt.Builder
	model   port.TextGenerator
}

// NewNotesGenerator 创建笔记生成器
func NewNotesGenerator(prompts *prompt.Builder, model port.TextGenerator) *NotesGenerator {
	return &NotesGenerator{prompts: prompts, model: model}
}

// GenerateChapter 为一个章节生成 HTML 笔记
func (g *NotesGenerator) GenerateChapter(ctx context.Context, chapter entity.ChapterSpec) (string, error) {
	text, err := g.prompts.BuildChapterPrompt(chapter)
	if err != nil {
		return "", err
	}
	return g.Generate(ctx, text)
}

// Generate 以完整提示词生成笔记；空白输出与解码失败均返回错误
func (g *NotesGenerator) Generate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New(errors.CodeValidation, "Prompt is required")
	}

	raw, err := g.model.Generate(service.WithWorkflow(ctx, service.WorkflowChapterNotes), text)
	if err != nil {
		return "", err
	}
	notes, err := node.DecodeNotes(raw)
	if err != nil {
		return "", err
	}
	return notes, nil
}

// NotesError 将单章生成失败归类为对外错误
func NotesError(err error) *errors.AppError {
	if appErr, ok := err.(*errors.AppError); ok {
		return appErr
	}
	var oe overloadedError
	switch {
	case stderrors.As(err, &oe) && oe.Overloaded():
		return errors.Wrap(err, errors.CodeServiceOverloaded, msgOverloaded).WithDetail(detailOverloaded).WithRetry(DefaultOverloadRetryDelay)
	case stderrors.Is(err, node.ErrEmptyResponse):
		return errors.Wrap(err, errors.CodeEmptyResponse, msgEmptyResponse).WithRetry(0)
	case stderrors.Is(err, node.ErrDecode):
		return errors.Wrap(err, errors.CodeDecodeFailed, entity.InvalidOutputMessage).WithRetry(0)
	default:
		return errors.Wrap(err, errors.CodeGenerationFailed, "Failed to generate notes").WithDetail(detailGenerationFail).WithRetry(0)
	}
}
