package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"sheetcode-ai-api/pkg/logger"
	"sheetcode-ai-api/pkg/metrics"
)

// MessageHandler 消息处理函数
type MessageHandler func(ctx context.Context, msg *Message) error

// Consumer 消息消费者
type Consumer struct {
	client        *redis.Client
	stream        Stream
	group         ConsumerGroup
	consumerName  string
	blockTimeout  time.Duration
	claimInterval time.Duration
	reclaimIdle   time.Duration
	retryLimit    int
	backoff       BackoffConfig

	handlers map[string]MessageHandler
	mu       sync.RWMutex
	running  bool
	stopCh   chan struct{}
}

// ConsumerConfig 消费者配置
type ConsumerConfig struct {
	Stream        Stream
	Group         ConsumerGroup
	ConsumerName  string
	BlockTimeout  time.Duration
	ClaimInterval time.Duration
	RetryLimit    int
	Backoff       BackoffConfig
}

// NewConsumer 创建消息消费者
func NewConsumer(client *redis.Client, cfg ConsumerConfig) *Consumer {
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = 5 * time.Second
	}
	if cfg.ClaimInterval <= 0 {
		cfg.ClaimInterval = 30 * time.Second
	}
	if cfg.RetryLimit <= 0 {
		cfg.RetryLimit = 3
	}
	if cfg.Backoff.Initial <= 0 {
		cfg.Backoff = DefaultBackoffConfig()
	}

	return &Consumer{
		client:        client,
		stream:        cfg.Stream,
		group:         cfg.Group,
		consumerName:  cfg.ConsumerName,
		blockTimeout:  cfg.BlockTimeout,
		claimInterval: cfg.ClaimInterval,
		reclaimIdle:   maxDuration(5*time.Minute, cfg.Backoff.Max*2),
		retryLimit:    cfg.RetryLimit,
		backoff:       cfg.Backoff,
		handlers:      make(map[string]MessageHandler),
		stopCh:        make(chan struct{}),
	}
}

// RegisterHandler 注册消息处理器
func (c *Consumer) RegisterHandler(msgType string, handler MessageHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[msgType] = handler
}

// Start 启动消费者
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("consumer already running")
	}
	c.running = true
	c.mu.Unlock()

	// 确保消费者组存在
	err := c.client.XGroupCreateMkStream(ctx, string(c.stream), string(c.group), "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	go c.run(ctx)
	return nil
}

// Stop 停止消费者
func (c *Consumer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		close(c.stopCh)
		c.running = false
	}
}

// run 消费循环
func (c *Consumer) run(ctx context.Context) {
	log := logger.FromContext(ctx)
	log.Info("consumer started",
		"stream", c.stream,
		"group", c.group,
		"consumer", c.consumerName,
	)

	lastClaim := time.Now().Add(-c.claimInterval)

	for {
		select {
		case <-ctx.Done():
			log.Info("consumer stopped due to context cancellation")
			return
		case <-c.stopCh:
			log.Info("consumer stopped")
			return
		default:
		}

		c.processDuePending(ctx)
		if time.Since(lastClaim) >= c.claimInterval {
			c.reclaimStale(ctx)
			lastClaim = time.Now()
		}

		// 读取消息
		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    string(c.group),
			Consumer: c.consumerName,
			Streams:  []string{string(c.stream), ">"},
			Count:    10,
			Block:    c.blockTimeout,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			log.Error("failed to read from stream", "error", err)
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, xmsg := range stream.Messages {
				c.processMessage(ctx, xmsg)
			}
		}
	}
}

// decodeMessage 读取流条目中的 data 字段
func decodeMessage(xmsg redis.XMessage) (*Message, error) {
	raw, ok := xmsg.Values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("stream entry %s has no data field", xmsg.ID)
	}
	var msg Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return nil, fmt.Errorf("decode stream entry %s: %w", xmsg.ID, err)
	}
	return &msg, nil
}

// eventContext 把事件元数据注入日志上下文
func eventContext(ctx context.Context, msg *Message) context.Context {
	ctx = logger.WithContext(ctx, logger.EventIDKey, msg.ID)
	for key, ctxKey := range map[string]logger.ContextKey{
		"course_id":  logger.CourseIDKey,
		"request_id": logger.RequestIDKey,
		"trace_id":   logger.TraceIDKey,
	} {
		if v := msg.GetMetadata(key); v != "" {
			ctx = logger.WithContext(ctx, ctxKey, v)
		}
	}
	return ctx
}

// processMessage 处理单条消息；处理失败的消息保持 pending，由 processDuePending 按退避重投
func (c *Consumer) processMessage(ctx context.Context, xmsg redis.XMessage) {
	ctx, span := tracer.Start(ctx, "consumer.processMessage",
		trace.WithAttributes(
			attribute.String("stream", string(c.stream)),
			attribute.String("stream.message_id", xmsg.ID),
		))
	defer span.End()

	msg, err := decodeMessage(xmsg)
	if err != nil {
		// 无法解析的条目重投也不会成功
		logger.Error(ctx, "dropping undecodable stream entry", err)
		c.ack(ctx, xmsg.ID)
		return
	}
	ctx = eventContext(ctx, msg)
	span.SetAttributes(
		attribute.String("message.id", msg.ID),
		attribute.String("message.type", msg.Type),
	)

	c.mu.RLock()
	handler, exists := c.handlers[msg.Type]
	c.mu.RUnlock()
	if !exists {
		logger.Warn(ctx, "no handler for message type", "type", msg.Type)
		c.record("skipped")
		c.ack(ctx, xmsg.ID)
		return
	}

	metrics.RedisStreamLag.WithLabelValues(string(c.stream), string(c.group)).Set(time.Since(msg.CreatedAt).Seconds())

	if err := handler(ctx, msg); err != nil {
		span.RecordError(err)
		c.record("failed")
		c.handleFailure(ctx, xmsg.ID, msg, err)
		return
	}

	c.record("success")
	c.ack(ctx, xmsg.ID)
}

func (c *Consumer) record(result string) {
	metrics.RedisStreamProcessed.WithLabelValues(string(c.stream), result).Inc()
}

// ack 确认消息
func (c *Consumer) ack(ctx context.Context, id string) {
	if err := c.client.XAck(ctx, string(c.stream), string(c.group), id).Err(); err != nil {
		logger.Error(ctx, "failed to ack message", err, "message_id", id)
	}
}

// handleFailure 达到重试上限时移入死信队列，否则留在 pending 等待退避
func (c *Consumer) handleFailure(ctx context.Context, entryID string, msg *Message, err error) {
	deliveries := c.deliveryCount(ctx, entryID)
	if deliveries < c.retryLimit {
		logger.Warn(ctx, "notes event failed, will retry",
			"error", err.Error(),
			"deliveries", deliveries,
		)
		return
	}

	logger.Error(ctx, "notes event exhausted retries", err, "deliveries", deliveries)
	c.deadLetter(ctx, entryID, msg, err)
}

// deliveryCount 通过 XPENDING 读取条目的投递次数
func (c *Consumer) deliveryCount(ctx context.Context, entryID string) int {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: string(c.stream),
		Group:  string(c.group),
		Start:  entryID,
		End:    entryID,
		Count:  1,
	}).Result()
	if err != nil || len(pending) == 0 {
		return 0
	}
	return int(pending[0].RetryCount)
}

// DeadLetter 死信队列条目
type DeadLetter struct {
	SourceStream string   `json:"source_stream"`
	EntryID      string   `json:"entry_id"`
	Message      *Message `json:"message"`
	Error        string   `json:"error"`
	FailedAt     int64    `json:"failed_at"`
}

// deadLetter 写入死信队列并确认原条目；写入失败时保留 pending 以便下次再试
func (c *Consumer) deadLetter(ctx context.Context, entryID string, msg *Message, cause error) {
	data, err := json.Marshal(DeadLetter{
		SourceStream: string(c.stream),
		EntryID:      entryID,
		Message:      msg,
		Error:        cause.Error(),
		FailedAt:     time.Now().Unix(),
	})
	if err != nil {
		logger.Error(ctx, "failed to encode DLQ entry", err, "message_id", entryID)
		return
	}

	if err := c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: c.stream.DLQStream(),
		Values: map[string]interface{}{"data": string(data)},
	}).Err(); err != nil {
		logger.Error(ctx, "failed to write DLQ entry", err, "message_id", entryID)
		return
	}
	c.record("dead_lettered")
	c.ack(ctx, entryID)
}

// claim 把 pending 条目转到当前消费者
func (c *Consumer) claim(ctx context.Context, id string, minIdle time.Duration) []redis.XMessage {
	claimed, err := c.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   string(c.stream),
		Group:    string(c.group),
		Consumer: c.consumerName,
		MinIdle:  minIdle,
		Messages: []string{id},
	}).Result()
	if err != nil {
		logger.Error(ctx, "failed to claim pending message", err, "message_id", id)
		return nil
	}
	return claimed
}

// redeliver 认领并处理 pending 条目；超过重试上限的直接移入死信队列
func (c *Consumer) redeliver(ctx context.Context, p redis.XPendingExt, minIdle time.Duration) {
	exhausted := int(p.RetryCount) >= c.retryLimit
	for _, xmsg := range c.claim(ctx, p.ID, minIdle) {
		if !exhausted {
			c.processMessage(ctx, xmsg)
			continue
		}
		msg, err := decodeMessage(xmsg)
		if err != nil {
			c.ack(ctx, xmsg.ID)
			continue
		}
		c.deadLetter(eventContext(ctx, msg), xmsg.ID, msg, fmt.Errorf("message exceeded max retries"))
	}
}

// pendingEntries 查询 pending 列表；consumer 为空时查询整个消费者组
func (c *Consumer) pendingEntries(ctx context.Context, consumer string) []redis.XPendingExt {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream:   string(c.stream),
		Group:    string(c.group),
		Start:    "-",
		End:      "+",
		Count:    20,
		Consumer: consumer,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Error(ctx, "failed to query pending messages", err)
	}
	return pending
}

// processDuePending 重投本消费者名下退避期已过的条目
func (c *Consumer) processDuePending(ctx context.Context) {
	for _, p := range c.pendingEntries(ctx, c.consumerName) {
		backoff := c.backoff.CalculateBackoff(int(p.RetryCount))
		if int(p.RetryCount) < c.retryLimit && p.Idle < backoff {
			continue
		}
		c.redeliver(ctx, p, 0)
	}
}

// reclaimStale 接管其它消费者长时间未确认的条目（例如进程崩溃）
func (c *Consumer) reclaimStale(ctx context.Context) {
	if c.reclaimIdle <= 0 {
		return
	}
	for _, p := range c.pendingEntries(ctx, "") {
		if p.Consumer == c.consumerName || p.Idle < c.reclaimIdle {
			continue
		}
		c.redeliver(ctx, p, c.reclaimIdle)
	}
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}

// MonitorDLQ 监控死信队列
func (c *Consumer) MonitorDLQ(ctx context.Context, alertThreshold int64) {
	log := logger.FromContext(ctx)
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case <-ticker.C:
			dlqStream := c.stream.DLQStream()
			info, err := c.client.XInfoStream(ctx, dlqStream).Result()
			if err != nil {
				continue
			}

			if info.Length > alertThreshold {
				log.Warn("DLQ has pending messages",
					"stream", dlqStream,
					"count", info.Length,
				)
			}
		}
	}
}
