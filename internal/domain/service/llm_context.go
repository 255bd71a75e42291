// Package service 定义跨层共享的领域服务上下文
package service

import (
	"context"
	"strings"
)

type llmCtxKey string

const (
	llmCtxKeyWorkflow llmCtxKey = "llm_workflow"
	llmCtxKeyBackend  llmCtxKey = "llm_backend"
	llmCtxKeyProvider llmCtxKey = "llm_provider"
)

// 生成流程名称
const (
	WorkflowOutline      = "outline"
	WorkflowChapterNotes = "chapter_notes"
)

// WithWorkflow 标记当前 LLM 调用所属流程
func WithWorkflow(ctx context.Context, workflow string) context.Context {
	w := strings.TrimSpace(workflow)
	if w == "" {
		return ctx
	}
	return context.WithValue(ctx, llmCtxKeyWorkflow, w)
}

// WithBackend 标记当前 LLM 调用使用的后端（primary/fallback）
func WithBackend(ctx context.Context, backend string) context.Context {
	b := strings.TrimSpace(backend)
	if b == "" {
		return ctx
	}
	return context.WithValue(ctx, llmCtxKeyBackend, b)
}

// WithProvider 标记当前 LLM 调用使用的 provider 配置名
func WithProvider(ctx context.Context, provider string) context.Context {
	p := strings.TrimSpace(provider)
	if p == "" {
		return ctx
	}
	return context.WithValue(ctx, llmCtxKeyProvider, p)
}

func WorkflowFromContext(ctx context.Context) string {
	return stringFromContext(ctx, llmCtxKeyWorkflow)
}

func BackendFromContext(ctx context.Context) string {
	return stringFromContext(ctx, llmCtxKeyBackend)
}

func ProviderFromContext(ctx context.Context) string {
	return stringFromContext(ctx, llmCtxKeyProvider)
}

func stringFromContext(ctx context.Context, key llmCtxKey) string {
	if ctx == nil {
		return "unknown"
	}
	s, ok := ctx.Value(key).(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}
