// Package prompt 渲染大纲与章节笔记的提示词
package prompt

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

//go:embed templates/*.txt
var templatesFS embed.FS

// 模板占位符
const (
	PlaceholderTopic      = "[Topic Name]"
	PlaceholderDifficulty = "[difficulty_level]"
	PlaceholderStudyType  = "[study_type]"
	PlaceholderChapter    = "[Chapter Details]"
)

// 缺省输入
const (
	DefaultDifficulty = "Medium"
	DefaultPurpose    = "Comprehensive"
)

// ErrTopicRequired topic 为空
var ErrTopicRequired = errors.New("topic is required")

// Templates 提示词模板
type Templates struct {
	Outline string
	Chapter string
}

// DefaultTemplates 返回内置模板
func DefaultTemplates() (Templates, error) {
	outline, err := readEmbedded("templates/outline.txt")
	if err != nil {
		return Templates{}, err
	}
	chapter, err := readEmbedded("templates/chapter.txt")
	if err != nil {
		return Templates{}, err
	}
	return Templates{Outline: outline, Chapter: chapter}, nil
}

// LoadTemplates 以内置模板为基础，按路径覆盖；空路径保持内置版本
func LoadTemplates(outlineFile, chapterFile string) (Templates, error) {
	t, err := DefaultTemplates()
	if err != nil {
		return Templates{}, err
	}
	if outlineFile != "" {
		if t.Outline, err = readFile(outlineFile); err != nil {
			return Templates{}, err
		}
	}
	if chapterFile != "" {
		if t.Chapter, err = readFile(chapterFile); err != nil {
			return Templates{}, err
		}
	}
	return t, t.validate()
}

func (t Templates) validate() error {
	if !strings.Contains(t.Outline, PlaceholderTopic) {
		return fmt.Errorf("outline template must contain %s", PlaceholderTopic)
	}
	if !strings.Contains(t.Chapter, PlaceholderChapter) {
		return fmt.Errorf("chapter template must contain %s", PlaceholderChapter)
	}
	return nil
}

// Builder 无副作用的提示词渲染器
type Builder struct {
	templates Templates
}

// NewBuilder 创建渲染器
func NewBuilder(t Templates) *Builder {
	return &Builder{templates: t}
}

// BuildOutlinePrompt 渲染大纲提示词
// difficulty 缺省为 Medium，purpose 缺省为 Comprehensive
func (b *Builder) BuildOutlinePrompt(topic, difficulty, purpose string) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", ErrTopicRequired
	}
	if strings.TrimSpace(difficulty) == "" {
		difficulty = DefaultDifficulty
	}
	if strings.TrimSpace(purpose) == "" {
		purpose = DefaultPurpose
	}

	// 单遍替换，输入中出现的占位符文本不会被再次展开
	r := strings.NewReplacer(
		PlaceholderTopic, topic,
		PlaceholderDifficulty, difficulty,
		PlaceholderStudyType, purpose,
	)
	return r.Replace(b.templates.Outline), nil
}

// BuildChapterPrompt 将章节数据按 JSON 原样嵌入笔记模板
func (b *Builder) BuildChapterPrompt(chapter any) (string, error) {
	data, err := json.Marshal(chapter)
	if err != nil {
		return "", fmt.Errorf("marshal chapter: %w", err)
	}
	return strings.Replace(b.templates.Chapter, PlaceholderChapter, string(data), 1), nil
}

func readEmbedded(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func readFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read prompt template %s: %w", path, err)
	}
	return strings.TrimSpace(string(b)), nil
}
