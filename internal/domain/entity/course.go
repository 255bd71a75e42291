// Package entity 定义领域实体
package entity

import (
	"strconv"
	"strings"
	"time"
)

// CourseStatus 课程状态；空值表示已创建但笔记任务尚未开始
type CourseStatus string

const (
	CourseStatusPending    CourseStatus = ""
	CourseStatusGenerating CourseStatus = "Generating"
	CourseStatusReady      CourseStatus = "Ready"
	CourseStatusError      CourseStatus = "Error"
)

// AIAgentLesson 课程记录的生成来源标识
const AIAgentLesson = "ai-lesson-agent"

// InvalidOutputMessage 大纲无法解析时落库的错误标记
const InvalidOutputMessage = "Invalid AI JSON output"

// CourseOutline 一次课程生成请求对应的课程记录
type CourseOutline struct {
	ID          string    `json:"_id" bson:"_id,omitempty"`
	Topic       string    `json:"topic" bson:"topic"`
	Difficulty  string    `json:"difficulty" bson:"difficulty"`
	Purpose     string    `json:"purpose" bson:"purpose"`
	UserEmail   string    `json:"userEmail,omitempty" bson:"userEmail,omitempty"`
	AIAgentType string    `json:"aiAgentType" bson:"aiAgentType"`
	Outline     *Outline  `json:"lessons,omitempty" bson:"lessons,omitempty"`
	// InvalidOutput 模型输出无法解析时保留的错误标记与原始文本
	InvalidOutput *InvalidOutput `json:"invalidOutput,omitempty" bson:"invalidOutput,omitempty"`
	Status        CourseStatus   `json:"status,omitempty" bson:"status,omitempty"`
	CreatedAt     time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// InvalidOutput 解析失败的大纲
type InvalidOutput struct {
	Error string `json:"error" bson:"error"`
	Raw   string `json:"raw,omitempty" bson:"raw,omitempty"`
}

// NewCourseOutline 创建课程记录；状态保持 Pending，由笔记任务推进
func NewCourseOutline(topic, difficulty, purpose, userEmail string) *CourseOutline {
	now := time.Now().UTC()
	return &CourseOutline{
		Topic:       topic,
		Difficulty:  difficulty,
		Purpose:     purpose,
		UserEmail:   userEmail,
		AIAgentType: AIAgentLesson,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Chapters 返回大纲中的章节；大纲无效时为空
func (c *CourseOutline) Chapters() []ChapterSpec {
	if c == nil || c.Outline == nil {
		return nil
	}
	return c.Outline.Chapters
}

// HasValidOutline 大纲是否解析成功
func (c *CourseOutline) HasValidOutline() bool {
	return c != nil && c.Outline != nil && c.InvalidOutput == nil
}

// Outline 模型生成的课程大纲
type Outline struct {
	CourseTitle   string        `json:"courseTitle" bson:"courseTitle"`
	Category      string        `json:"category,omitempty" bson:"category,omitempty"`
	Difficulty    string        `json:"difficulty,omitempty" bson:"difficulty,omitempty"`
	Duration      string        `json:"duration,omitempty" bson:"duration,omitempty"`
	CourseSummary string        `json:"courseSummary,omitempty" bson:"courseSummary,omitempty"`
	Thumbnail     string        `json:"thumbnail,omitempty" bson:"thumbnail,omitempty"`
	Lessons       int           `json:"lessons,omitempty" bson:"lessons,omitempty"`
	Language      string        `json:"language,omitempty" bson:"language,omitempty"`
	Chapters      []ChapterSpec `json:"chapters" bson:"chapters"`
	// Extra 模型输出中未建模的字段，原样保留
	Extra map[string]any `json:"-" bson:",inline"`
}

// ChapterSpec 大纲中的单个章节
type ChapterSpec struct {
	// 模型或上游可能携带的显式标识，用于推导稳定的 chapterId
	ObjectID  LooseString `json:"_id,omitempty" bson:"_id,omitempty"`
	ID        LooseString `json:"id,omitempty" bson:"id,omitempty"`
	ChapterID LooseString `json:"chapterId,omitempty" bson:"chapterId,omitempty"`

	ChapterNumber            int      `json:"chapterNumber" bson:"chapterNumber"`
	ChapterTitle             string   `json:"chapterTitle" bson:"chapterTitle"`
	ChapterSummary           string   `json:"chapterSummary,omitempty" bson:"chapterSummary,omitempty"`
	Emoji                    string   `json:"emoji,omitempty" bson:"emoji,omitempty"`
	Topics                   []string `json:"topics" bson:"topics"`
	EstimatedLessonCount     int      `json:"estimatedLessonCount,omitempty" bson:"estimatedLessonCount,omitempty"`
	EstimatedChapterDuration string   `json:"estimatedChapterDuration,omitempty" bson:"estimatedChapterDuration,omitempty"`

	Extra map[string]any `json:"-" bson:",inline"`
}

// StableID 推导章节标识：_id -> id -> chapterId -> 位置序号
// 同一章节在重试中得到相同结果
func (c ChapterSpec) StableID(index int) string {
	for _, v := range []LooseString{c.ObjectID, c.ID, c.ChapterID} {
		if s := strings.TrimSpace(string(v)); s != "" {
			return s
		}
	}
	return strconv.Itoa(index)
}

// LooseString 章节标识；模型可能给出字符串或数字，解码时统一转为文本
type LooseString string
