package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sheetcode-ai-api/pkg/logger"
)

// EnsureIndexes 创建存储所需索引，可重复执行
func EnsureIndexes(ctx context.Context, c *Client) error {
	specs := []struct {
		collection string
		model      mongo.IndexModel
	}{
		{
			collection: CollectionChapterNotes,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "courseId", Value: 1}, {Key: "chapterId", Value: 1}},
				Options: options.Index().SetName("uk_course_chapter").SetUnique(true),
			},
		},
		{
			collection: CollectionCourses,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("idx_created_at"),
			},
		},
		{
			collection: CollectionCourses,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "userEmail", Value: 1}},
				Options: options.Index().SetName("idx_user_email"),
			},
		},
	}

	for _, s := range specs {
		name, err := c.db.Collection(s.collection).Indexes().CreateOne(ctx, s.model)
		if err != nil {
			return fmt.Errorf("create index on %s: %w", s.collection, err)
		}
		logger.Info(ctx, "mongo index ensured", "collection", s.collection, "index", name)
	}
	return nil
}
