package node

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// fencedJSON 匹配 ```json ... ``` 代码块，标签大小写不敏感
var fencedJSON = regexp.MustCompile("(?i)```json\\s*([\\s\\S]*?)\\s*```")

// fencedWhole 匹配包裹整段输出的代码块，正文中间嵌入的代码块不匹配
var fencedWhole = regexp.MustCompile("^```[A-Za-z]*\\s*([\\s\\S]*?)\\s*```$")

// ErrDecode 模型输出无法解析
var ErrDecode = errors.New("model output is not valid JSON")

// ExtractJSONCandidate 从模型输出中取出待解析文本：
// 存在 json 代码块时取第一个代码块内容，否则取去除首尾空白的全文。
func ExtractJSONCandidate(raw string) string {
	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return strings.TrimSpace(raw)
}

// DecodeJSON 解析模型输出中的 JSON 值，失败时返回包装了 ErrDecode 的错误
func DecodeJSON(raw string) (any, error) {
	candidate := ExtractJSONCandidate(raw)
	dec := json.NewDecoder(strings.NewReader(candidate))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	// 只允许单个 JSON 值
	if strings.TrimSpace(candidate[dec.InputOffset():]) != "" {
		return nil, fmt.Errorf("%w: trailing content after JSON value", ErrDecode)
	}
	return v, nil
}

// DecodeNotes 解析单章笔记输出。
// 仅当整段输出被代码块包裹时才剥离围栏，正文里的代码示例保持原样。
// 笔记本身是 HTML 文本；若输出呈 JSON 形态（字符串、或含 notes/content/html 字段的对象）
// 则必须能解析，否则返回 ErrDecode。
func DecodeNotes(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if m := fencedWhole.FindStringSubmatch(candidate); m != nil {
		candidate = strings.TrimSpace(m[1])
	}
	if candidate == "" {
		return "", ErrEmptyResponse
	}

	switch candidate[0] {
	case '{', '[', '"':
	default:
		return candidate, nil
	}

	v, err := DecodeJSON(candidate)
	if err != nil {
		return "", err
	}
	switch x := v.(type) {
	case string:
		return x, nil
	case map[string]any:
		for _, key := range []string{"notes", "content", "html"} {
			if s, ok := x[key].(string); ok {
				return s, nil
			}
		}
	}
	return "", fmt.Errorf("%w: no notes field in JSON output", ErrDecode)
}
