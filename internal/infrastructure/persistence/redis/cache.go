package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"sheetcode-ai-api/internal/domain/entity"
	"sheetcode-ai-api/pkg/logger"
	"sheetcode-ai-api/pkg/metrics"
)

var cacheTracer = otel.Tracer("redis.cache")

const lessonListKey = "lessons:list"

// LessonListCache 课程列表的读穿缓存，创建或删除课程后失效
type LessonListCache struct {
	client *Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewLessonListCache 创建课程列表缓存
func NewLessonListCache(client *Client, ttl time.Duration) *LessonListCache {
	return &LessonListCache{client: client, ttl: ttl}
}

// GetOrLoad 命中缓存直接返回，否则通过 singleflight 合并并发加载
func (c *LessonListCache) GetOrLoad(ctx context.Context, loader func(ctx context.Context) ([]*entity.CourseOutline, error)) ([]*entity.CourseOutline, error) {
	ctx, span := cacheTracer.Start(ctx, "cache.LessonList.GetOrLoad",
		trace.WithAttributes(attribute.String("cache.key", lessonListKey)))
	defer span.End()

	if courses, ok := c.get(ctx); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		metrics.CacheLookups.WithLabelValues("lesson_list", "hit").Inc()
		return courses, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))
	metrics.CacheLookups.WithLabelValues("lesson_list", "miss").Inc()

	result, err, shared := c.group.Do(lessonListKey, func() (interface{}, error) {
		courses, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		c.set(ctx, courses)
		return courses, nil
	})
	span.SetAttributes(attribute.Bool("cache.shared", shared))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return result.([]*entity.CourseOutline), nil
}

// Invalidate 使列表缓存失效
func (c *LessonListCache) Invalidate(ctx context.Context) error {
	ctx, span := cacheTracer.Start(ctx, "cache.LessonList.Invalidate")
	defer span.End()

	if err := c.client.rdb.Del(ctx, lessonListKey).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to invalidate lesson list cache: %w", err)
	}
	return nil
}

// get 读取缓存；Redis 异常按未命中处理
func (c *LessonListCache) get(ctx context.Context) ([]*entity.CourseOutline, bool) {
	val, err := c.client.rdb.Get(ctx, lessonListKey).Bytes()
	if err != nil {
		if !IsNil(err) {
			logger.Warn(ctx, "lesson list cache read failed", "error", err.Error())
		}
		return nil, false
	}
	var courses []*entity.CourseOutline
	if err := json.Unmarshal(val, &courses); err != nil {
		logger.Warn(ctx, "lesson list cache entry unreadable", "error", err.Error())
		return nil, false
	}
	return courses, true
}

func (c *LessonListCache) set(ctx context.Context, courses []*entity.CourseOutline) {
	b, err := json.Marshal(courses)
	if err != nil {
		return
	}
	if err := c.client.rdb.Set(ctx, lessonListKey, b, c.ttl).Err(); err != nil {
		// 缓存写入失败不影响返回结果
		logger.Warn(ctx, "lesson list cache write failed", "error", err.Error())
	}
}
