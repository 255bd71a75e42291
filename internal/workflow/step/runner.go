// Package step 提供可重放的任务检查点：同一 runID 下已完成的步骤直接返回记录的结果
package step

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"sheetcode-ai-api/pkg/logger"
	"sheetcode-ai-api/pkg/metrics"
)

// Store 检查点结果存储
type Store interface {
	// Load 读取步骤结果，ok=false 表示尚未完成
	Load(ctx context.Context, runID, step string) (result []byte, ok bool, err error)
	// Save 记录步骤结果
	Save(ctx context.Context, runID, step string, result []byte) error
}

// Runner 绑定一次任务执行（runID 在重投递之间保持不变）
type Runner struct {
	store Store
	runID string
}

// NewRunner 创建检查点执行器
func NewRunner(store Store, runID string) *Runner {
	return &Runner{store: store, runID: runID}
}

// RunID 返回执行标识
func (r *Runner) RunID() string {
	return r.runID
}

// Run 执行一个检查点。已记录结果时不再调用 fn；fn 失败时不记录，交由任务重试。
func Run[T any](ctx context.Context, r *Runner, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	data, ok, err := r.store.Load(ctx, r.runID, name)
	if err != nil {
		return zero, fmt.Errorf("load checkpoint %s: %w", name, err)
	}
	if ok {
		var memo T
		if err := json.Unmarshal(data, &memo); err == nil {
			metrics.CheckpointsTotal.WithLabelValues(name, "replayed").Inc()
			logger.Debug(ctx, "checkpoint replayed", "run_id", r.runID, "step", name)
			return memo, nil
		}
		logger.Warn(ctx, "checkpoint memo unreadable, re-running step", "run_id", r.runID, "step", name)
	}

	out, err := fn(ctx)
	if err != nil {
		metrics.CheckpointsTotal.WithLabelValues(name, "failed").Inc()
		return zero, err
	}
	metrics.CheckpointsTotal.WithLabelValues(name, "executed").Inc()

	data, err = json.Marshal(out)
	if err != nil {
		return out, fmt.Errorf("encode checkpoint %s: %w", name, err)
	}
	if err := r.store.Save(ctx, r.runID, name, data); err != nil {
		// 结果已产生；记录失败只意味着重投递时会重跑该步骤
		logger.Warn(ctx, "failed to save checkpoint", "run_id", r.runID, "step", name, "error", err.Error())
	}
	return out, nil
}

// MemoryStore 进程内检查点存储
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryStore 创建进程内存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, runID, step string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.data[runID+"/"+step]
	return b, ok, nil
}

func (s *MemoryStore) Save(_ context.Context, runID, step string, result []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[runID+"/"+step] = append([]byte(nil), result...)
	return nil
}
