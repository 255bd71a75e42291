package lesson

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"sheetcode-ai-api/internal/domain/entity"
	"sheetcode-ai-api/internal/domain/repository"
	"sheetcode-ai-api/internal/workflow/step"
	"sheetcode-ai-api/pkg/logger"
	"sheetcode-ai-api/pkg/metrics"
	"sheetcode-ai-api/pkg/tracer"
)

// 检查点名称
const (
	StepGenerateNotes      = "generate-notes"
	StepUpdateCourseStatus = "update-course-status"
)

// 任务结果文案
const (
	ResultMissingCourseID     = "Missing courseId"
	ResultNoChapters          = "No chapters to process."
	ResultNotesGenerated      = "Notes generated successfully"
	ResultStatusUpdated       = "Course status update successful"
	ResultStatusUpdateFailed  = "Course status update failed"
	ResultStatusUpdateSkipped = "Course status update skipped"
)

// ChapterGenerator 单章笔记生成
type ChapterGenerator interface {
	GenerateChapter(ctx context.Context, chapter entity.ChapterSpec) (string, error)
}

// GenerateNotesSummary generate-notes 检查点的结果
type GenerateNotesSummary struct {
	Message string `json:"message"`
	Total   int    `json:"total"`
	Ready   int    `json:"ready"`
	Failed  int    `json:"failed"`
}

// NotesTaskResult 笔记任务结果
type NotesTaskResult struct {
	CourseID string               `json:"courseId"`
	Notes    GenerateNotesSummary `json:"notes"`
	Status   string               `json:"status"`
}

// NotesTask 章节笔记任务，由 ai/generate-notes 事件触发。
// 两个检查点的结果按事件 ID 记录，重投递时已完成的检查点直接返回记录的结果。
type NotesTask struct {
	generator   ChapterGenerator
	courses     repository.CourseRepository
	notes       repository.ChapterNoteRepository
	checkpoints step.Store
	cache       ListCache
}

// NewNotesTask 创建笔记任务；cache 可为 nil
func NewNotesTask(
	generator ChapterGenerator,
	courses repository.CourseRepository,
	notes repository.ChapterNoteRepository,
	checkpoints step.Store,
	cache ListCache,
) *NotesTask {
	return &NotesTask{
		generator:   generator,
		courses:     courses,
		notes:       notes,
		checkpoints: checkpoints,
		cache:       cache,
	}
}

// Run 执行任务。返回错误表示应由任务执行器重投递。
func (t *NotesTask) Run(ctx context.Context, ev GenerateNotesEvent) (*NotesTaskResult, error) {
	if strings.TrimSpace(ev.EventID) == "" {
		return nil, fmt.Errorf("notes task requires an event id")
	}

	ctx, span := otelTracer.Start(ctx, "lesson.NotesTask.Run")
	defer span.End()

	courseID := ""
	if ev.Course != nil {
		courseID = strings.TrimSpace(ev.Course.ID)
	}
	ctx = logger.WithContext(ctx, logger.EventIDKey, ev.EventID)
	if courseID != "" {
		ctx = logger.WithContext(ctx, logger.CourseIDKey, courseID)
	}
	span.SetAttributes(
		attribute.String("lesson.event_id", ev.EventID),
		attribute.String("lesson.course_id", courseID),
	)

	runner := step.NewRunner(t.checkpoints, ev.EventID)

	summary, err := step.Run(ctx, runner, StepGenerateNotes, func(ctx context.Context) (GenerateNotesSummary, error) {
		return t.generateNotes(ctx, courseID, ev.Course.Chapters())
	})
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	res := &NotesTaskResult{CourseID: courseID, Notes: summary}
	if courseID == "" {
		res.Status = ResultStatusUpdateSkipped
		logger.Warn(ctx, "notes task skipped, event has no course id")
		return res, nil
	}

	status, err := step.Run(ctx, runner, StepUpdateCourseStatus, func(ctx context.Context) (string, error) {
		return t.updateCourseStatus(ctx, courseID), nil
	})
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}
	res.Status = status

	logger.Info(ctx, "notes task finished",
		"total", summary.Total,
		"ready", summary.Ready,
		"failed", summary.Failed,
		"status", status,
	)
	return res, nil
}

// generateNotes 按大纲顺序逐章生成；单章失败标记 Error 并继续。
// 存储写入失败返回错误，由重投递重跑整个检查点，按 (courseId, chapterId) 覆盖写入。
func (t *NotesTask) generateNotes(ctx context.Context, courseID string, chapters []entity.ChapterSpec) (GenerateNotesSummary, error) {
	if courseID == "" {
		return GenerateNotesSummary{Message: ResultMissingCourseID}, nil
	}
	if len(chapters) == 0 {
		return GenerateNotesSummary{Message: ResultNoChapters}, nil
	}

	summary := GenerateNotesSummary{Message: ResultNotesGenerated, Total: len(chapters)}
	for i, chapter := range chapters {
		chapterID := chapter.StableID(i)
		chCtx := logger.WithContext(ctx, logger.ChapterIDKey, chapterID)

		if err := t.notes.Upsert(chCtx, courseID, chapterID, entity.ChapterNotePatch{Status: entity.NoteStatusGenerating}); err != nil {
			return GenerateNotesSummary{}, fmt.Errorf("mark chapter %s generating: %w", chapterID, err)
		}

		notes, genErr := t.generator.GenerateChapter(chCtx, chapter)
		if genErr != nil {
			logger.Error(chCtx, "chapter notes generation failed", genErr, "chapter_title", chapter.ChapterTitle)
			if err := t.notes.Upsert(chCtx, courseID, chapterID, entity.ChapterNotePatch{Status: entity.NoteStatusError}); err != nil {
				return GenerateNotesSummary{}, fmt.Errorf("mark chapter %s error: %w", chapterID, err)
			}
			metrics.ChapterNotesTotal.WithLabelValues(string(entity.NoteStatusError)).Inc()
			summary.Failed++
			continue
		}

		if err := t.notes.Upsert(chCtx, courseID, chapterID, entity.ChapterNotePatch{
			Status: entity.NoteStatusReady,
			Notes:  &notes,
		}); err != nil {
			return GenerateNotesSummary{}, fmt.Errorf("save chapter %s notes: %w", chapterID, err)
		}
		metrics.ChapterNotesTotal.WithLabelValues(string(entity.NoteStatusReady)).Inc()
		summary.Ready++
		logger.Debug(chCtx, "chapter notes ready", "chars", len(notes))
	}
	return summary, nil
}

// updateCourseStatus 标记 Generating 后置为 Ready，与章节失败数无关。
// 失败转为结果文案，不让任务失败。
func (t *NotesTask) updateCourseStatus(ctx context.Context, courseID string) string {
	if err := t.courses.UpsertStatus(ctx, courseID, entity.CourseStatusGenerating); err != nil {
		logger.Warn(ctx, "failed to mark course generating", "error", err.Error())
	}
	if err := t.courses.UpsertStatus(ctx, courseID, entity.CourseStatusReady); err != nil {
		logger.Error(ctx, "failed to mark course ready", err)
		return ResultStatusUpdateFailed
	}
	invalidateList(ctx, t.cache)
	return ResultStatusUpdated
}
