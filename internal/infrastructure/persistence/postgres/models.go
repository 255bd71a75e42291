package postgres

import (
	"time"

	"sheetcode-ai-api/internal/domain/entity"
)

// courseRecord 课程表
type courseRecord struct {
	ID            string                `gorm:"type:varchar(64);primaryKey"`
	Topic         string                `gorm:"type:text;not null"`
	Difficulty    string                `gorm:"type:varchar(64)"`
	Purpose       string                `gorm:"type:varchar(64)"`
	UserEmail     string                `gorm:"type:varchar(255);index"`
	AIAgentType   string                `gorm:"column:ai_agent_type;type:varchar(64)"`
	Outline       *entity.Outline       `gorm:"type:jsonb;serializer:json"`
	InvalidOutput *entity.InvalidOutput `gorm:"type:jsonb;serializer:json"`
	Status        string                `gorm:"type:varchar(32)"`
	CreatedAt     time.Time             `gorm:"index"`
	UpdatedAt     time.Time
}

func (courseRecord) TableName() string {
	return "lesson_courses"
}

func newCourseRecord(c *entity.CourseOutline) *courseRecord {
	return &courseRecord{
		ID:            c.ID,
		Topic:         c.Topic,
		Difficulty:    c.Difficulty,
		Purpose:       c.Purpose,
		UserEmail:     c.UserEmail,
		AIAgentType:   c.AIAgentType,
		Outline:       c.Outline,
		InvalidOutput: c.InvalidOutput,
		Status:        string(c.Status),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func (r *courseRecord) toEntity() *entity.CourseOutline {
	return &entity.CourseOutline{
		ID:            r.ID,
		Topic:         r.Topic,
		Difficulty:    r.Difficulty,
		Purpose:       r.Purpose,
		UserEmail:     r.UserEmail,
		AIAgentType:   r.AIAgentType,
		Outline:       r.Outline,
		InvalidOutput: r.InvalidOutput,
		Status:        entity.CourseStatus(r.Status),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// chapterNoteRecord 章节笔记表，(course_id, chapter_id) 唯一
type chapterNoteRecord struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	CourseID  string    `gorm:"type:varchar(64);not null;uniqueIndex:uk_chapter_notes_course_chapter,priority:1"`
	ChapterID string    `gorm:"type:varchar(128);not null;uniqueIndex:uk_chapter_notes_course_chapter,priority:2"`
	Notes     string    `gorm:"type:text"`
	Status    string    `gorm:"type:varchar(32);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (chapterNoteRecord) TableName() string {
	return "chapter_notes"
}

func (r *chapterNoteRecord) toEntity() *entity.ChapterNote {
	return &entity.ChapterNote{
		CourseID:  r.CourseID,
		ChapterID: r.ChapterID,
		Notes:     r.Notes,
		Status:    entity.NoteStatus(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// AutoMigrate 创建或更新表结构
func AutoMigrate(c *Client) error {
	return c.db.AutoMigrate(&courseRecord{}, &chapterNoteRecord{})
}
