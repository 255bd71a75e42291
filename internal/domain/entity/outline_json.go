package entity

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// 大纲由模型生成，字段类型并不可靠：数字可能写成字符串，列表可能写成逗号分隔的文本。
// 这里的解码只要求输入是 JSON 对象，字段类型不符时尽量转换，无法转换时取零值。

type outlineFields Outline

// UnmarshalJSON 宽松解码大纲，未知字段进入 Extra
func (o *Outline) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*o = Outline{}
	for key, raw := range fields {
		switch key {
		case "courseTitle":
			o.CourseTitle = looseText(raw)
		case "category":
			o.Category = looseText(raw)
		case "difficulty":
			o.Difficulty = looseText(raw)
		case "duration":
			o.Duration = looseText(raw)
		case "courseSummary":
			o.CourseSummary = looseText(raw)
		case "thumbnail":
			o.Thumbnail = looseText(raw)
		case "lessons":
			o.Lessons = looseInt(raw)
		case "language":
			o.Language = looseText(raw)
		case "chapters":
			o.Chapters = looseChapters(raw)
		default:
			o.Extra = putExtra(o.Extra, key, raw)
		}
	}
	return nil
}

// MarshalJSON 输出已建模字段并合并 Extra
func (o Outline) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(outlineFields(o), o.Extra)
}

type chapterFields ChapterSpec

// UnmarshalJSON 宽松解码章节，未知字段进入 Extra
func (c *ChapterSpec) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*c = ChapterSpec{}
	for key, raw := range fields {
		switch key {
		case "_id":
			c.ObjectID = LooseString(looseText(raw))
		case "id":
			c.ID = LooseString(looseText(raw))
		case "chapterId":
			c.ChapterID = LooseString(looseText(raw))
		case "chapterNumber":
			c.ChapterNumber = looseInt(raw)
		case "chapterTitle":
			c.ChapterTitle = looseText(raw)
		case "chapterSummary":
			c.ChapterSummary = looseText(raw)
		case "emoji":
			c.Emoji = looseText(raw)
		case "topics":
			c.Topics = looseList(raw)
		case "estimatedLessonCount":
			c.EstimatedLessonCount = looseInt(raw)
		case "estimatedChapterDuration":
			c.EstimatedChapterDuration = looseText(raw)
		default:
			c.Extra = putExtra(c.Extra, key, raw)
		}
	}
	return nil
}

// MarshalJSON 输出已建模字段并合并 Extra
func (c ChapterSpec) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(chapterFields(c), c.Extra)
}

func marshalWithExtra(v any, extra map[string]any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for key, val := range extra {
		if _, ok := merged[key]; ok {
			continue
		}
		b, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		merged[key] = b
	}
	return json.Marshal(merged)
}

func putExtra(extra map[string]any, key string, raw json.RawMessage) map[string]any {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return extra
	}
	if extra == nil {
		extra = make(map[string]any)
	}
	extra[key] = v
	return extra
}

// looseChapters 接受章节对象数组；字符串元素视为章节标题，其余元素忽略
func looseChapters(raw json.RawMessage) []ChapterSpec {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	chapters := make([]ChapterSpec, 0, len(items))
	for _, item := range items {
		trimmed := bytes.TrimSpace(item)
		if len(trimmed) == 0 {
			continue
		}
		switch trimmed[0] {
		case '{':
			var ch ChapterSpec
			if err := json.Unmarshal(trimmed, &ch); err == nil {
				chapters = append(chapters, ch)
			}
		case '"':
			if title := looseText(trimmed); title != "" {
				chapters = append(chapters, ChapterSpec{ChapterTitle: title})
			}
		}
	}
	return chapters
}

// looseText 字符串原样返回，数字与布尔转为文本，null 为空，对象与数组保留紧凑 JSON
func looseText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed)
	}
	return buf.String()
}

// looseInt 接受整数、小数（四舍五入）与数字字符串，其余为 0
func looseInt(raw json.RawMessage) int {
	text := strings.TrimSpace(looseText(raw))
	if text == "" {
		return 0
	}
	if n, err := strconv.Atoi(text); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Round(f))
}

// looseList 接受数组或逗号/换行分隔的字符串
func looseList(raw json.RawMessage) []string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil
	}

	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s := strings.TrimSpace(looseText(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	}

	text := looseText(trimmed)
	parts := strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == '\n' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
