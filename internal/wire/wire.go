//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"sheetcode-ai-api/internal/config"
	"sheetcode-ai-api/internal/interfaces/http/router"
)

// InitializeApp 初始化 API 网关（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		StoreSet,
		RedisSet,
		MessagingSet,
		LLMSet,
		LessonSet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializeWorker 初始化笔记任务执行器
func InitializeWorker(ctx context.Context, cfg *config.Config) (*Worker, func(), error) {
	wire.Build(
		StoreSet,
		RedisSet,
		LLMSet,
		LessonSet,
		wire.Struct(new(Worker), "*"),
	)
	return nil, nil, nil
}
