package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sheetcode-ai-api/internal/domain/entity"
	"sheetcode-ai-api/internal/domain/repository"
	pkgtracer "sheetcode-ai-api/pkg/tracer"
)

// ChapterNoteRepository 章节笔记仓储实现，唯一键由 uk_course_chapter 索引保证
type ChapterNoteRepository struct {
	coll *mongo.Collection
}

var _ repository.ChapterNoteRepository = (*ChapterNoteRepository)(nil)

// NewChapterNoteRepository 创建章节笔记仓储
func NewChapterNoteRepository(client *Client) *ChapterNoteRepository {
	return &ChapterNoteRepository{coll: client.db.Collection(CollectionChapterNotes)}
}

// Upsert 以 (courseId, chapterId) 为键写入
func (r *ChapterNoteRepository) Upsert(ctx context.Context, courseID, chapterID string, patch entity.ChapterNotePatch) error {
	ctx, span := tracer.Start(ctx, "mongo.ChapterNoteRepository.Upsert")
	defer span.End()

	now := time.Now().UTC()
	set := bson.M{"status": patch.Status, "updatedAt": now}
	onInsert := bson.M{"createdAt": now}
	if patch.Notes != nil {
		set["notes"] = *patch.Notes
	} else {
		onInsert["notes"] = ""
	}

	filter := bson.M{"courseId": courseID, "chapterId": chapterID}
	update := bson.M{"$set": set, "$setOnInsert": onInsert}
	if _, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		pkgtracer.RecordError(span, err)
		return fmt.Errorf("failed to upsert chapter note: %w", err)
	}
	return nil
}

// ListByCourse 按创建顺序返回课程的全部笔记
func (r *ChapterNoteRepository) ListByCourse(ctx context.Context, courseID string) ([]*entity.ChapterNote, error) {
	ctx, span := tracer.Start(ctx, "mongo.ChapterNoteRepository.ListByCourse")
	defer span.End()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"courseId": courseID}, opts)
	if err != nil {
		pkgtracer.RecordError(span, err)
		return nil, fmt.Errorf("failed to list chapter notes: %w", err)
	}
	defer cur.Close(ctx)

	notes := make([]*entity.ChapterNote, 0)
	if err := cur.All(ctx, &notes); err != nil {
		pkgtracer.RecordError(span, err)
		return nil, fmt.Errorf("failed to decode chapter notes: %w", err)
	}
	return notes, nil
}

// DeleteByCourse 删除课程的全部笔记
func (r *ChapterNoteRepository) DeleteByCourse(ctx context.Context, courseID string) (int64, error) {
	ctx, span := tracer.Start(ctx, "mongo.ChapterNoteRepository.DeleteByCourse")
	defer span.End()

	res, err := r.coll.DeleteMany(ctx, bson.M{"courseId": courseID})
	if err != nil {
		pkgtracer.RecordError(span, err)
		return 0, fmt.Errorf("failed to delete chapter notes: %w", err)
	}
	return res.DeletedCount, nil
}
