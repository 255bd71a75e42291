package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sheetcode-ai-api/internal/domain/entity"
	"sheetcode-ai-api/internal/domain/repository"
	pkgtracer "sheetcode-ai-api/pkg/tracer"
)

// CourseRepository 课程仓储实现
type CourseRepository struct {
	client *Client
}

var _ repository.CourseRepository = (*CourseRepository)(nil)

// NewCourseRepository 创建课程仓储
func NewCourseRepository(client *Client) *CourseRepository {
	return &CourseRepository{client: client}
}

// Create 创建课程记录
func (r *CourseRepository) Create(ctx context.Context, course *entity.CourseOutline) error {
	ctx, span := tracer.Start(ctx, "postgres.CourseRepository.Create")
	defer span.End()

	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	db := getDB(ctx, r.client.db)
	if err := db.Create(newCourseRecord(course)).Error; err != nil {
		pkgtracer.RecordError(span, err)
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

// FindByID 根据 ID 获取课程
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*entity.CourseOutline, error) {
	ctx, span := tracer.Start(ctx, "postgres.CourseRepository.FindByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var rec courseRecord
	if err := db.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		pkgtracer.RecordError(span, err)
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return rec.toEntity(), nil
}

// List 按创建时间倒序返回全部课程
func (r *CourseRepository) List(ctx context.Context) ([]*entity.CourseOutline, error) {
	ctx, span := tracer.Start(ctx, "postgres.CourseRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var recs []courseRecord
	if err := db.Order("created_at DESC").Order("id DESC").Find(&recs).Error; err != nil {
		pkgtracer.RecordError(span, err)
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	courses := make([]*entity.CourseOutline, 0, len(recs))
	for i := range recs {
		courses = append(courses, recs[i].toEntity())
	}
	return courses, nil
}

// UpsertStatus 设置课程状态
func (r *CourseRepository) UpsertStatus(ctx context.Context, id string, status entity.CourseStatus) error {
	ctx, span := tracer.Start(ctx, "postgres.CourseRepository.UpsertStatus")
	defer span.End()

	now := time.Now().UTC()
	rec := &courseRecord{
		ID:          id,
		AIAgentType: entity.AIAgentLesson,
		Status:      string(status),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	db := getDB(ctx, r.client.db)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(rec).Error
	if err != nil {
		pkgtracer.RecordError(span, err)
		return fmt.Errorf("failed to upsert course status: %w", err)
	}
	return nil
}

// Delete 删除课程
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.CourseRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	res := db.Delete(&courseRecord{}, "id = ?", id)
	if res.Error != nil {
		pkgtracer.RecordError(span, res.Error)
		return fmt.Errorf("failed to delete course: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
