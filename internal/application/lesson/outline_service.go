package lesson

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"sheetcode-ai-api/internal/domain/entity"
	"sheetcode-ai-api/internal/domain/repository"
	"sheetcode-ai-api/internal/domain/service"
	"sheetcode-ai-api/internal/workflow/node"
	"sheetcode-ai-api/internal/workflow/port"
	"sheetcode-ai-api/internal/workflow/prompt"
	"sheetcode-ai-api/pkg/errors"
	"sheetcode-ai-api/pkg/logger"
	"sheetcode-ai-api/pkg/metrics"
	"sheetcode-ai-api/pkg/tracer"
)

var otelTracer = otel.Tracer("lesson")

// 大纲接口对外返回的错误文案
const (
	msgTopicRequired     = "Topic is required"
	msgOverloaded        = "AI service is currently overloaded. Please try again in a few minutes."
	detailOverloaded     = "The AI service is experiencing high demand. We've automatically retried your request multiple times."
	msgGenerationFailed  = "Failed to generate lesson outline. Please try again later."
	detailGenerationFail = "We encountered an issue with the AI service. Please try again in a few minutes."
	msgEmptyResponse     = "Empty response from AI service"
	msgPersistFailed     = "Failed to save lesson outline"
	msgEnqueueFailed     = "Failed to schedule chapter notes generation"
)

// DefaultOverloadRetryDelay 过载时建议的重试间隔
const DefaultOverloadRetryDelay = 60 * time.Second

// OutlineRequest 大纲生成请求
type OutlineRequest struct {
	Topic          string
	Difficulty     string
	Purpose        string
	RequesterEmail string
}

// overloadedError 由模型客户端的复合错误实现
type overloadedError interface {
	Overloaded() bool
}

// OutlineService 大纲编排：提示词 -> 模型 -> 解码 -> 落库 -> 投递笔记任务
type OutlineService struct {
	prompts       *prompt.Builder
	model         port.TextGenerator
	courses       repository.CourseRepository
	publisher     NotesPublisher
	cache         ListCache
	overloadDelay time.Duration
}

// NewOutlineService 创建大纲服务；cache 可为 nil
func NewOutlineService(
	prompts *prompt.Builder,
	model port.TextGenerator,
	courses repository.CourseRepository,
	publisher NotesPublisher,
	cache ListCache,
	overloadDelay time.Duration,
) *OutlineService {
	if overloadDelay <= 0 {
		overloadDelay = DefaultOverloadRetryDelay
	}
	return &OutlineService{
		prompts:       prompts,
		model:         model,
		courses:       courses,
		publisher:     publisher,
		cache:         cache,
		overloadDelay: overloadDelay,
	}
}

// RequestOutline 生成并保存课程大纲，返回课程 ID。
// 笔记任务异步执行，不阻塞返回。
func (s *OutlineService) RequestOutline(ctx context.Context, req OutlineRequest) (courseID string, err error) {
	ctx, span := otelTracer.Start(ctx, "lesson.RequestOutline")
	defer span.End()

	start := time.Now()
	result := "created"
	defer func() {
		metrics.OutlineRequestsTotal.WithLabelValues(result).Inc()
		metrics.OutlineDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			tracer.RecordError(span, err)
		}
	}()

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		result = "invalid"
		return "", errors.New(errors.CodeValidation, msgTopicRequired)
	}
	difficulty := strings.TrimSpace(req.Difficulty)
	if difficulty == "" {
		difficulty = prompt.DefaultDifficulty
	}
	purpose := strings.TrimSpace(req.Purpose)
	if purpose == "" {
		purpose = prompt.DefaultPurpose
	}
	span.SetAttributes(
		attribute.String("lesson.topic", topic),
		attribute.String("lesson.difficulty", difficulty),
		attribute.String("lesson.purpose", purpose),
	)

	text, err := s.prompts.BuildOutlinePrompt(topic, difficulty, purpose)
	if err != nil {
		result = "invalid"
		return "", errors.Wrap(err, errors.CodeValidation, msgTopicRequired)
	}

	raw, err := s.model.Generate(service.WithWorkflow(ctx, service.WorkflowOutline), text)
	if err != nil {
		var oe overloadedError
		if stderrors.As(err, &oe) && oe.Overloaded() {
			result = "overloaded"
			return "", errors.Wrap(err, errors.CodeServiceOverloaded, msgOverloaded).
				WithDetail(detailOverloaded).
				WithRetry(s.overloadDelay)
		}
		result = "failed"
		return "", errors.Wrap(err, errors.CodeGenerationFailed, msgGenerationFailed).
			WithDetail(detailGenerationFail).
			WithRetry(0)
	}
	if node.IsEmptyResponse(raw) {
		result = "empty"
		return "", errors.Wrap(node.ErrEmptyResponse, errors.CodeEmptyResponse, msgEmptyResponse).WithRetry(0)
	}

	course := entity.NewCourseOutline(topic, difficulty, purpose, strings.TrimSpace(req.RequesterEmail))
	switch d := node.DecodeOutline(raw).(type) {
	case node.ValidOutline:
		course.Outline = d.Outline
	case node.MalformedOutline:
		// 无法解析的输出仍然落库，保留错误标记与原始文本
		result = "malformed"
		course.InvalidOutput = d.InvalidOutput()
		logger.Warn(ctx, "outline output is not valid JSON, persisting invalid marker",
			"reason", d.Reason,
			"preview", node.Preview(d.Raw),
		)
	}

	if err := s.courses.Create(ctx, course); err != nil {
		result = "persist_error"
		return "", errors.Wrap(err, errors.CodePersistence, msgPersistFailed)
	}
	ctx = logger.WithContext(ctx, logger.CourseIDKey, course.ID)
	span.SetAttributes(attribute.String("lesson.course_id", course.ID))
	invalidateList(ctx, s.cache)

	eventID, err := s.publisher.PublishGenerateNotes(ctx, course)
	if err != nil {
		result = "enqueue_error"
		return "", errors.Wrap(err, errors.CodeQueueError, msgEnqueueFailed)
	}

	logger.Info(ctx, "lesson outline created",
		"event_id", eventID,
		"chapters", len(course.Chapters()),
		"valid", course.HasValidOutline(),
	)
	return course.ID, nil
}
