// Package port 定义工作流层对基础设施的最小依赖
package port

import (
	"context"

	"github.com/cloudwego/eino/components/model"
)

// ChatModelFactory 按 provider 名称获取 ChatModel
type ChatModelFactory interface {
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
}

// TextGenerator 单轮文本生成：输入完整提示词，返回模型输出文本
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
