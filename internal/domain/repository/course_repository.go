package repository

import (
	"context"
	"errors"

	"sheetcode-ai-api/internal/domain/entity"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// CourseRepository 课程记录仓储接口
// 所有写操作均为单文档原子操作
type CourseRepository interface {
	// Create 创建课程记录并回填 ID
	Create(ctx context.Context, course *entity.CourseOutline) error

	// FindByID 根据 ID 获取课程，不存在时返回 ErrNotFound
	FindByID(ctx context.Context, id string) (*entity.CourseOutline, error)

	// List 按创建时间倒序返回全部课程
	List(ctx context.Context) ([]*entity.CourseOutline, error)

	// UpsertStatus 设置课程状态；记录不存在时以该 ID 插入
	UpsertStatus(ctx context.Context, id string, status entity.CourseStatus) error

	// Delete 删除课程，不存在时返回 ErrNotFound
	Delete(ctx context.Context, id string) error
}

// ChapterNoteRepository 章节笔记仓储接口
type ChapterNoteRepository interface {
	// Upsert 以 (courseID, chapterID) 为唯一键写入笔记
	Upsert(ctx context.Context, courseID, chapterID string, patch entity.ChapterNotePatch) error

	// ListByCourse 按创建顺序（即大纲顺序）返回课程的全部笔记
	ListByCourse(ctx context.Context, courseID string) ([]*entity.ChapterNote, error)

	// DeleteByCourse 删除课程的全部笔记
	DeleteByCourse(ctx context.Context, courseID string) (int64, error)
}
