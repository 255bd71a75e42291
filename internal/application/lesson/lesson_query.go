package lesson

import (
	"context"
	stderrors "errors"
	"strings"

	"sheetcode-ai-api/internal/domain/entity"
	"sheetcode-ai-api/internal/domain/repository"
	"sheetcode-ai-api/pkg/errors"
	"sheetcode-ai-api/pkg/logger"
)

const msgLessonNotFound = "Lesson not found"

// QueryService 课程查询与删除
type QueryService struct {
	courses repository.CourseRepository
	notes   repository.ChapterNoteRepository
	cache   ListCache
}

// NewQueryService 创建查询服务；cache 可为 nil
func NewQueryService(courses repository.CourseRepository, notes repository.ChapterNoteRepository, cache ListCache) *QueryService {
	return &QueryService{courses: courses, notes: notes, cache: cache}
}

// List 按创建时间倒序返回全部课程
func (s *QueryService) List(ctx context.Context) ([]*entity.CourseOutline, error) {
	var (
		courses []*entity.CourseOutline
		err     error
	)
	if s.cache != nil {
		courses, err = s.cache.GetOrLoad(ctx, s.courses.List)
	} else {
		courses, err = s.courses.List(ctx)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodePersistence, "Failed to fetch lessons")
	}
	if courses == nil {
		courses = []*entity.CourseOutline{}
	}
	return courses, nil
}

// Get 获取单个课程
func (s *QueryService) Get(ctx context.Context, id string) (*entity.CourseOutline, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New(errors.CodeValidation, "Lesson id is required")
	}
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "Failed to fetch lesson")
	}
	return course, nil
}

// Notes 返回课程的全部章节笔记
func (s *QueryService) Notes(ctx context.Context, id string) ([]*entity.ChapterNote, error) {
	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	notes, err := s.notes.ListByCourse(ctx, course.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodePersistence, "Failed to fetch chapter notes")
	}
	if notes == nil {
		notes = []*entity.ChapterNote{}
	}
	return notes, nil
}

// Delete 删除课程及其章节笔记
func (s *QueryService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New(errors.CodeValidation, "Lesson id is required")
	}
	if err := s.courses.Delete(ctx, id); err != nil {
		return mapStoreError(err, "Failed to delete lesson")
	}
	removed, err := s.notes.DeleteByCourse(ctx, id)
	if err != nil {
		return errors.Wrap(err, errors.CodePersistence, "Failed to delete chapter notes")
	}
	invalidateList(ctx, s.cache)

	logger.Info(logger.WithContext(ctx, logger.CourseIDKey, id), "lesson deleted", "notes_removed", removed)
	return nil
}

func mapStoreError(err error, msg string) error {
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.Wrap(err, errors.CodeCourseNotFound, msgLessonNotFound)
	}
	return errors.Wrap(err, errors.CodePersistence, msg)
}
