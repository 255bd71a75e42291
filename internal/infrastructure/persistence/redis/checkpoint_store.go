package redis

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CheckpointStore 任务检查点结果存储，键为 checkpoint:{runID}:{step}
type CheckpointStore struct {
	client *Client
	ttl    time.Duration
}

// NewCheckpointStore 创建检查点存储，ttl<=0 表示不过期
func NewCheckpointStore(client *Client, ttl time.Duration) *CheckpointStore {
	if ttl < 0 {
		ttl = 0
	}
	return &CheckpointStore{client: client, ttl: ttl}
}

func checkpointKey(runID, step string) string {
	return fmt.Sprintf("checkpoint:%s:%s", runID, step)
}

// Load 读取步骤结果
func (s *CheckpointStore) Load(ctx context.Context, runID, step string) ([]byte, bool, error) {
	key := checkpointKey(runID, step)
	ctx, span := tracer.Start(ctx, "redis.Checkpoint.Load", trace.WithAttributes(attribute.String("redis.key", key)))
	defer span.End()

	val, err := s.client.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if IsNil(err) {
			return nil, false, nil
		}
		span.RecordError(err)
		return nil, false, err
	}
	return val, true, nil
}

// Save 记录步骤结果
func (s *CheckpointStore) Save(ctx context.Context, runID, step string, result []byte) error {
	key := checkpointKey(runID, step)
	ctx, span := tracer.Start(ctx, "redis.Checkpoint.Save", trace.WithAttributes(attribute.String("redis.key", key)))
	defer span.End()

	if err := s.client.rdb.Set(ctx, key, result, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}
