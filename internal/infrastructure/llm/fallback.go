package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel/attribute"

	llmctx "sheetcode-ai-api/internal/domain/service"
	"sheetcode-ai-api/internal/workflow/node"
	"sheetcode-ai-api/internal/workflow/port"
	"sheetcode-ai-api/pkg/logger"
	"sheetcode-ai-api/pkg/metrics"
	"sheetcode-ai-api/pkg/tracer"
)

// 后端标识
const (
	BackendPrimary  = "primary"
	BackendFallback = "fallback"
)

// GenerationError 主备后端均失败
type GenerationError struct {
	Primary  error
	Fallback error
	Kind     node.FailureKind
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("both models failed (%s): primary: %v; fallback: %v", e.Kind, e.Primary, e.Fallback)
}

func (e *GenerationError) Unwrap() []error {
	return []error{e.Primary, e.Fallback}
}

// Overloaded 是否因后端过载失败
func (e *GenerationError) Overloaded() bool {
	return e.Kind == node.FailureOverloaded
}

// AsGenerationError 从错误链中提取 GenerationError
func AsGenerationError(err error) (*GenerationError, bool) {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// FallbackClient 主后端失败时用同一提示词调用备用后端，仅此一跳，无内部重试。
// 主后端成功返回空白内容不触发回退，原样交给调用方判断。
type FallbackClient struct {
	factory  port.ChatModelFactory
	primary  string
	fallback string
}

var _ port.TextGenerator = (*FallbackClient)(nil)

// NewFallbackClient 创建主备客户端，primary/fallback 为 provider 名称
func NewFallbackClient(factory port.ChatModelFactory, primary, fallback string) *FallbackClient {
	return &FallbackClient{factory: factory, primary: primary, fallback: fallback}
}

// Generate 生成文本
func (c *FallbackClient) Generate(ctx context.Context, prompt string) (string, error) {
	out, primaryErr := c.call(ctx, BackendPrimary, c.primary, prompt)
	if primaryErr == nil {
		return out, nil
	}

	logger.Warn(ctx, "primary model failed, trying fallback",
		"provider", c.primary,
		"error", primaryErr.Error(),
	)
	metrics.LLMFallbackTotal.Inc()

	out, fallbackErr := c.call(ctx, BackendFallback, c.fallback, prompt)
	if fallbackErr == nil {
		return out, nil
	}

	genErr := &GenerationError{
		Primary:  primaryErr,
		Fallback: fallbackErr,
		Kind:     node.ClassifyFailure(primaryErr.Error(), fallbackErr.Error()),
	}
	logger.Error(ctx, "both primary and fallback models failed", genErr,
		"kind", string(genErr.Kind),
	)
	return "", genErr
}

func (c *FallbackClient) call(ctx context.Context, backend, provider, prompt string) (string, error) {
	ctx = llmctx.WithBackend(ctx, backend)
	ctx = llmctx.WithProvider(ctx, provider)
	ctx, span := tracer.Start(ctx, "llm.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.backend", backend),
		attribute.String("llm.provider", provider),
		attribute.String("llm.workflow", llmctx.WorkflowFromContext(ctx)),
	)

	start := time.Now()
	out, err := c.generate(ctx, provider, prompt)
	metrics.LLMCallDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(backend, "error").Inc()
		tracer.RecordError(span, err)
		return "", err
	}
	metrics.LLMCallTotal.WithLabelValues(backend, "success").Inc()
	span.SetAttributes(attribute.Int("llm.output_chars", len(out)))
	return out, nil
}

func (c *FallbackClient) generate(ctx context.Context, provider, prompt string) (string, error) {
	chatModel, err := c.factory.Get(ctx, provider)
	if err != nil {
		return "", err
	}
	msg, err := chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", err
	}
	if msg == nil {
		return "", fmt.Errorf("model %s returned no message", provider)
	}
	return msg.Content, nil
}
