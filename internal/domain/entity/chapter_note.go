package entity

import "time"

// NoteStatus 章节笔记状态
type NoteStatus string

const (
	NoteStatusGenerating NoteStatus = "Generating"
	NoteStatusReady      NoteStatus = "Ready"
	NoteStatusError      NoteStatus = "Error"
)

// ChapterNote 单个 (courseId, chapterId) 的生成笔记
type ChapterNote struct {
	CourseID  string     `json:"courseId" bson:"courseId"`
	ChapterID string     `json:"chapterId" bson:"chapterId"`
	Notes     string     `json:"notes" bson:"notes"`
	Status    NoteStatus `json:"status" bson:"status"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// ChapterNotePatch 笔记 upsert 的变更集；Notes 为 nil 时保留原值
type ChapterNotePatch struct {
	Status NoteStatus
	Notes  *string
}
