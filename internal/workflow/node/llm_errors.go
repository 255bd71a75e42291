package node

import (
	"errors"
	"strings"
)

// FailureKind 模型调用失败分类
type FailureKind string

const (
	// FailureOverloaded 后端过载或不可用，调用方应延迟重试
	FailureOverloaded FailureKind = "overloaded"
	// FailureUpstream 其它上游失败
	FailureUpstream FailureKind = "upstream"
)

// ErrEmptyResponse 模型返回空白内容
var ErrEmptyResponse = errors.New("empty response from AI service")

var overloadSignatures = []string{
	"overloaded",
	"service unavailable",
}

// IsOverloadMessage 错误信息是否表明后端过载
func IsOverloadMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, sig := range overloadSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}

// ClassifyFailure 按错误信息归类；所有后端的信息都命中过载特征才为 Overloaded
func ClassifyFailure(messages ...string) FailureKind {
	if len(messages) == 0 {
		return FailureUpstream
	}
	for _, m := range messages {
		if !IsOverloadMessage(m) {
			return FailureUpstream
		}
	}
	return FailureOverloaded
}

// IsEmptyResponse 输出是否为空白
func IsEmptyResponse(s string) bool {
	return strings.TrimSpace(s) == ""
}
