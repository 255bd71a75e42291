package node

import (
	"encoding/json"

	"sheetcode-ai-api/internal/domain/entity"
)

// maxRawKept 解析失败时保留的原始输出长度（字符）
const maxRawKept = 4000

// DecodedOutline 大纲解析结果，只有 ValidOutline 与 MalformedOutline 两种实现
type DecodedOutline interface {
	decodedOutline()
}

// ValidOutline 解析成功的大纲
type ValidOutline struct {
	Outline *entity.Outline
}

// MalformedOutline 无法解析的模型输出
type MalformedOutline struct {
	Raw    string
	Reason string
}

func (ValidOutline) decodedOutline()     {}
func (MalformedOutline) decodedOutline() {}

// Payload 返回落库用的错误标记 {"error":"Invalid AI JSON output"}
func (m MalformedOutline) Payload() map[string]string {
	return map[string]string{"error": entity.InvalidOutputMessage}
}

// InvalidOutput 转换为课程记录上的错误标记
func (m MalformedOutline) InvalidOutput() *entity.InvalidOutput {
	return &entity.InvalidOutput{
		Error: entity.InvalidOutputMessage,
		Raw:   TruncateByRunes(m.Raw, maxRawKept),
	}
}

// DecodeOutline 解析大纲输出；从不返回错误。
// 只有 JSON 解析失败才得到 MalformedOutline。能解析但不符合大纲结构的输出按 ValidOutline 原样保留：
// 对象字段宽松转换，单元素数组取其元素，其余 JSON 值放在 Extra["value"]。
func DecodeOutline(raw string) DecodedOutline {
	v, err := DecodeJSON(raw)
	if err != nil {
		return MalformedOutline{Raw: raw, Reason: err.Error()}
	}

	if arr, ok := v.([]any); ok && len(arr) == 1 {
		if _, isObj := arr[0].(map[string]any); isObj {
			v = arr[0]
		}
	}
	if _, ok := v.(map[string]any); !ok {
		return ValidOutline{Outline: &entity.Outline{Extra: map[string]any{"value": v}}}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return MalformedOutline{Raw: raw, Reason: err.Error()}
	}
	var out entity.Outline
	if err := json.Unmarshal(b, &out); err != nil {
		return MalformedOutline{Raw: raw, Reason: err.Error()}
	}
	return ValidOutline{Outline: &out}
}
