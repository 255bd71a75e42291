// Package mongo 提供 MongoDB 课程存储实现
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/otel"

	"sheetcode-ai-api/internal/config"
)

var tracer = otel.Tracer("mongo")

// 集合名称
const (
	CollectionCourses      = "lessonmaterials"
	CollectionChapterNotes = "chapternodes"
)

// Client MongoDB 客户端
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewClient 连接 MongoDB 并校验连通性
func NewClient(ctx context.Context, cfg *config.MongoConfig) (*Client, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo uri is empty")
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &Client{client: client, db: client.Database(cfg.Database)}, nil
}

// Database 返回业务库
func (c *Client) Database() *mongo.Database {
	return c.db
}

// Ping 检查连接
func (c *Client) Ping(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "mongo.Ping")
	defer span.End()
	return c.client.Ping(ctx, readpref.Primary())
}

// Close 断开连接
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
