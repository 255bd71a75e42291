// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"sheetcode-ai-api/internal/application/lesson"
	"sheetcode-ai-api/internal/config"
	"sheetcode-ai-api/internal/domain/repository"
	"sheetcode-ai-api/internal/infrastructure/llm"
	"sheetcode-ai-api/internal/infrastructure/messaging"
	"sheetcode-ai-api/internal/infrastructure/persistence/mongo"
	"sheetcode-ai-api/internal/infrastructure/persistence/postgres"
	"sheetcode-ai-api/internal/infrastructure/persistence/redis"
	"sheetcode-ai-api/internal/interfaces/http/handler"
	"sheetcode-ai-api/internal/interfaces/http/middleware"
	"sheetcode-ai-api/internal/interfaces/http/router"
	"sheetcode-ai-api/internal/workflow/port"
	"sheetcode-ai-api/internal/workflow/prompt"
	"sheetcode-ai-api/internal/workflow/step"
	"sheetcode-ai-api/pkg/logger"
)

// Worker 笔记任务执行器依赖
type Worker struct {
	Task  *lesson.NotesTask
	Redis *redis.Client
}

// StoreSet 课程存储提供者集合，按配置选择驱动
var StoreSet = wire.NewSet(
	ProvideStore,
	ProvideCourseRepository,
	ProvideChapterNoteRepository,
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	ProvideLessonListCache,
	ProvideCheckpointStore,
	redis.NewRateLimiter,
	wire.Bind(new(lesson.ListCache), new(*redis.LessonListCache)),
	wire.Bind(new(step.Store), new(*redis.CheckpointStore)),
	wire.Bind(new(middleware.RateLimiter), new(*redis.RateLimiter)),
)

// MessagingSet 消息队列提供者集合
var MessagingSet = wire.NewSet(
	ProvideMessagingProducer,
	wire.Bind(new(lesson.NotesPublisher), new(*messaging.Producer)),
)

// LLMSet 模型调用提供者集合
var LLMSet = wire.NewSet(
	llm.NewEinoFactory,
	ProvideFallbackClient,
	ProvidePromptBuilder,
	wire.Bind(new(port.ChatModelFactory), new(*llm.EinoFactory)),
	wire.Bind(new(port.TextGenerator), new(*llm.FallbackClient)),
)

// LessonSet 课程应用服务集合
var LessonSet = wire.NewSet(
	ProvideOutlineService,
	lesson.NewQueryService,
	lesson.NewNotesGenerator,
	lesson.NewNotesTask,
	wire.Bind(new(lesson.ChapterGenerator), new(*lesson.NotesGenerator)),
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideHealthHandler,
	handler.NewLessonHandler,
	handler.NewAIHandler,
	wire.Struct(new(router.RouterHandlers), "*"),
	router.NewWithDeps,
)

// ProvideStore 按 database.driver 提供课程存储
func ProvideStore(ctx context.Context, cfg *config.Config) (repository.Store, func(), error) {
	var store repository.Store

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		client, err := postgres.NewClient(&cfg.Database.Postgres)
		if err != nil {
			return repository.Store{}, nil, err
		}
		store = repository.Store{
			Courses: postgres.NewCourseRepository(client),
			Notes:   postgres.NewChapterNoteRepository(client),
			Health:  client,
			Close:   client.Close,
		}
	default:
		client, err := mongo.NewClient(ctx, &cfg.Database.Mongo)
		if err != nil {
			return repository.Store{}, nil, err
		}
		store = repository.Store{
			Courses: mongo.NewCourseRepository(client),
			Notes:   mongo.NewChapterNoteRepository(client),
			Health:  client,
			Close:   client.Close,
		}
	}

	cleanup := func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Warn(ctx, "failed to close store", "error", err.Error())
		}
	}
	return store, cleanup, nil
}

// ProvideCourseRepository 提供课程仓储
func ProvideCourseRepository(store repository.Store) repository.CourseRepository {
	return store.Courses
}

// ProvideChapterNoteRepository 提供章节笔记仓储
func ProvideChapterNoteRepository(store repository.Store) repository.ChapterNoteRepository {
	return store.Notes
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideLessonListCache 提供课程列表缓存
func ProvideLessonListCache(client *redis.Client, cfg *config.Config) *redis.LessonListCache {
	return redis.NewLessonListCache(client, cfg.Cache.LessonsTTL)
}

// ProvideCheckpointStore 提供步骤检查点存储
func ProvideCheckpointStore(client *redis.Client, cfg *config.Config) *redis.CheckpointStore {
	return redis.NewCheckpointStore(client, cfg.Messaging.RedisStream.CheckpointTTL)
}

// ProvideMessagingProducer 提供消息生产者
func ProvideMessagingProducer(redisClient *redis.Client, cfg *config.Config) *messaging.Producer {
	maxLen := cfg.Messaging.RedisStream.MaxLen
	if maxLen <= 0 {
		maxLen = 100000
	}
	return messaging.NewProducer(redisClient.Redis(), int64(maxLen))
}

// ProvideFallbackClient 提供主备模型客户端
func ProvideFallbackClient(factory port.ChatModelFactory, cfg *config.Config) *llm.FallbackClient {
	return llm.NewFallbackClient(factory, cfg.LLM.Primary, cfg.LLM.Fallback)
}

// ProvidePromptBuilder 提供提示词渲染器；未配置覆盖文件时使用内置模板
func ProvidePromptBuilder(cfg *config.Config) (*prompt.Builder, error) {
	templates, err := prompt.LoadTemplates(cfg.Prompts.OutlineFile, cfg.Prompts.ChapterFile)
	if err != nil {
		return nil, err
	}
	return prompt.NewBuilder(templates), nil
}

// ProvideOutlineService 提供大纲服务
func ProvideOutlineService(
	prompts *prompt.Builder,
	model port.TextGenerator,
	courses repository.CourseRepository,
	publisher lesson.NotesPublisher,
	cache lesson.ListCache,
	cfg *config.Config,
) *lesson.OutlineService {
	return lesson.NewOutlineService(prompts, model, courses, publisher, cache, cfg.LLM.OverloadRetryDelay)
}

// ProvideHealthHandler 提供健康检查处理器
func ProvideHealthHandler(store repository.Store, redisClient *redis.Client, cfg *config.Config) *handler.HealthHandler {
	return handler.NewHealthHandler(store.Health, redisClient, cfg.App.Version)
}
