package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sheetcode-ai-api/internal/domain/entity"
	"sheetcode-ai-api/internal/domain/repository"
	pkgtracer "sheetcode-ai-api/pkg/tracer"
)

// CourseRepository 课程仓储实现
type CourseRepository struct {
	coll *mongo.Collection
}

var _ repository.CourseRepository = (*CourseRepository)(nil)

// NewCourseRepository 创建课程仓储
func NewCourseRepository(client *Client) *CourseRepository {
	return &CourseRepository{coll: client.db.Collection(CollectionCourses)}
}

// Create 创建课程记录
func (r *CourseRepository) Create(ctx context.Context, course *entity.CourseOutline) error {
	ctx, span := tracer.Start(ctx, "mongo.CourseRepository.Create")
	defer span.End()

	if course.ID == "" {
		course.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.coll.InsertOne(ctx, course); err != nil {
		pkgtracer.RecordError(span, err)
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

// FindByID 根据 ID 获取课程
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*entity.CourseOutline, error) {
	ctx, span := tracer.Start(ctx, "mongo.CourseRepository.FindByID")
	defer span.End()

	var course entity.CourseOutline
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&course)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		pkgtracer.RecordError(span, err)
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return &course, nil
}

// List 按创建时间倒序返回全部课程
func (r *CourseRepository) List(ctx context.Context) ([]*entity.CourseOutline, error) {
	ctx, span := tracer.Start(ctx, "mongo.CourseRepository.List")
	defer span.End()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		pkgtracer.RecordError(span, err)
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer cur.Close(ctx)

	courses := make([]*entity.CourseOutline, 0)
	if err := cur.All(ctx, &courses); err != nil {
		pkgtracer.RecordError(span, err)
		return nil, fmt.Errorf("failed to decode courses: %w", err)
	}
	return courses, nil
}

// UpsertStatus 设置课程状态
func (r *CourseRepository) UpsertStatus(ctx context.Context, id string, status entity.CourseStatus) error {
	ctx, span := tracer.Start(ctx, "mongo.CourseRepository.UpsertStatus")
	defer span.End()

	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{"status": status, "updatedAt": now},
		"$setOnInsert": bson.M{
			"createdAt":   now,
			"aiAgentType": entity.AIAgentLesson,
		},
	}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true)); err != nil {
		pkgtracer.RecordError(span, err)
		return fmt.Errorf("failed to upsert course status: %w", err)
	}
	return nil
}

// Delete 删除课程
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "mongo.CourseRepository.Delete")
	defer span.End()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		pkgtracer.RecordError(span, err)
		return fmt.Errorf("failed to delete course: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
