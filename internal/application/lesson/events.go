// Package lesson 编排课程大纲生成与章节笔记任务
package lesson

import (
	"context"

	"sheetcode-ai-api/internal/domain/entity"
	"sheetcode-ai-api/pkg/logger"
)

// GenerateNotesEvent 章节笔记任务的输入事件
// EventID 在重投递之间保持不变，用作检查点的运行标识
type GenerateNotesEvent struct {
	EventID string
	Course  *entity.CourseOutline
}

// NotesPublisher 投递 ai/generate-notes 事件，返回事件 ID
type NotesPublisher interface {
	PublishGenerateNotes(ctx context.Context, course *entity.CourseOutline) (string, error)
}

// ListCache 课程列表缓存
type ListCache interface {
	GetOrLoad(ctx context.Context, loader func(ctx context.Context) ([]*entity.CourseOutline, error)) ([]*entity.CourseOutline, error)
	Invalidate(ctx context.Context) error
}

// invalidateList 写操作后使列表缓存失效，失败只记录日志
func invalidateList(ctx context.Context, cache ListCache) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx); err != nil {
		logger.Warn(ctx, "failed to invalidate lesson list cache", "error", err.Error())
	}
}
