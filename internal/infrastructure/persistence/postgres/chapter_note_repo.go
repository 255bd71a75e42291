package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"sheetcode-ai-api/internal/domain/entity"
	"sheetcode-ai-api/internal/domain/repository"
	pkgtracer "sheetcode-ai-api/pkg/tracer"
)

// ChapterNoteRepository 章节笔记仓储实现
type ChapterNoteRepository struct {
	client *Client
}

var _ repository.ChapterNoteRepository = (*ChapterNoteRepository)(nil)

// NewChapterNoteRepository 创建章节笔记仓储
func NewChapterNoteRepository(client *Client) *ChapterNoteRepository {
	return &ChapterNoteRepository{client: client}
}

// Upsert 以 (course_id, chapter_id) 为键写入，冲突时只更新 patch 中给出的列
func (r *ChapterNoteRepository) Upsert(ctx context.Context, courseID, chapterID string, patch entity.ChapterNotePatch) error {
	ctx, span := tracer.Start(ctx, "postgres.ChapterNoteRepository.Upsert")
	defer span.End()

	now := time.Now().UTC()
	rec := &chapterNoteRecord{
		CourseID:  courseID,
		ChapterID: chapterID,
		Status:    string(patch.Status),
		CreatedAt: now,
		UpdatedAt: now,
	}
	cols := []string{"status", "updated_at"}
	if patch.Notes != nil {
		rec.Notes = *patch.Notes
		cols = append(cols, "notes")
	}

	db := getDB(ctx, r.client.db)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "course_id"}, {Name: "chapter_id"}},
		DoUpdates: clause.AssignmentColumns(cols),
	}).Create(rec).Error
	if err != nil {
		pkgtracer.RecordError(span, err)
		return fmt.Errorf("failed to upsert chapter note: %w", err)
	}
	return nil
}

// ListByCourse 按创建顺序返回课程的全部笔记
func (r *ChapterNoteRepository) ListByCourse(ctx context.Context, courseID string) ([]*entity.ChapterNote, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChapterNoteRepository.ListByCourse")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var recs []chapterNoteRecord
	if err := db.Where("course_id = ?", courseID).Order("created_at ASC").Order("id ASC").Find(&recs).Error; err != nil {
		pkgtracer.RecordError(span, err)
		return nil, fmt.Errorf("failed to list chapter notes: %w", err)
	}

	notes := make([]*entity.ChapterNote, 0, len(recs))
	for i := range recs {
		notes = append(notes, recs[i].toEntity())
	}
	return notes, nil
}

// DeleteByCourse 删除课程的全部笔记
func (r *ChapterNoteRepository) DeleteByCourse(ctx context.Context, courseID string) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChapterNoteRepository.DeleteByCourse")
	defer span.End()

	db := getDB(ctx, r.client.db)
	res := db.Where("course_id = ?", courseID).Delete(&chapterNoteRecord{})
	if res.Error != nil {
		pkgtracer.RecordError(span, res.Error)
		return 0, fmt.Errorf("failed to delete chapter notes: %w", res.Error)
	}
	return res.RowsAffected, nil
}
