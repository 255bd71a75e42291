package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"sheetcode-ai-api/internal/domain/entity"
	"sheetcode-ai-api/internal/domain/repository"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: newGormLogger()})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// 内存库按连接隔离，固定单连接
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	c := NewClientWithDB(db)
	if err := AutoMigrate(c); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return c
}

func strPtr(s string) *string { return &s }

func TestCourseRepository_CreateFindList(t *testing.T) {
	ctx := context.Background()
	repo := NewCourseRepository(newTestClient(t))

	older := entity.NewCourseOutline("Graphs", "Hard", "Deep Dive", "a@b.com")
	older.CreatedAt = time.Now().Add(-time.Hour).UTC()
	older.Outline = &entity.Outline{CourseTitle: "Graphs", Chapters: []entity.ChapterSpec{{ChapterNumber: 1, ChapterTitle: "Intro"}}}
	if err := repo.Create(ctx, older); err != nil {
		t.Fatalf("Create: %v", err)
	}
	newer := entity.NewCourseOutline("Heaps", "Medium", "Comprehensive", "a@b.com")
	newer.InvalidOutput = &entity.InvalidOutput{Error: entity.InvalidOutputMessage, Raw: "oops"}
	if err := repo.Create(ctx, newer); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if older.ID == "" || newer.ID == "" {
		t.Fatalf("ids should be assigned")
	}

	got, err := repo.FindByID(ctx, older.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Outline == nil || len(got.Outline.Chapters) != 1 || got.Status != entity.CourseStatusPending {
		t.Fatalf("unexpected course: %+v", got)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Fatalf("list should be createdAt desc: %+v", list)
	}
	if list[0].InvalidOutput == nil || list[0].InvalidOutput.Error != entity.InvalidOutputMessage {
		t.Fatalf("invalid output marker lost: %+v", list[0].InvalidOutput)
	}
}

func TestCourseRepository_UpsertStatusAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewCourseRepository(newTestClient(t))

	c := entity.NewCourseOutline("Tries", "Easy", "Comprehensive", "")
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, s := range []entity.CourseStatus{entity.CourseStatusGenerating, entity.CourseStatusReady} {
		if err := repo.UpsertStatus(ctx, c.ID, s); err != nil {
			t.Fatalf("UpsertStatus: %v", err)
		}
	}
	got, err := repo.FindByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Status != entity.CourseStatusReady || got.Topic != "Tries" {
		t.Fatalf("status upsert must keep other fields: %+v", got)
	}

	if err := repo.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, c.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("want ErrNotFound got=%v", err)
	}
	if err := repo.Delete(ctx, c.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound got=%v", err)
	}
}

func TestChapterNoteRepository_UpsertIsKeyed(t *testing.T) {
	ctx := context.Background()
	repo := NewChapterNoteRepository(newTestClient(t))

	steps := []entity.ChapterNotePatch{
		{Status: entity.NoteStatusGenerating},
		{Status: entity.NoteStatusReady, Notes: strPtr("<h2>A</h2>")},
		{Status: entity.NoteStatusGenerating},
		{Status: entity.NoteStatusError},
	}
	for _, p := range steps {
		if err := repo.Upsert(ctx, "c1", "0", p); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}
	if err := repo.Upsert(ctx, "c1", "1", entity.ChapterNotePatch{Status: entity.NoteStatusGenerating}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	notes, err := repo.ListByCourse(ctx, "c1")
	if err != nil {
		t.Fatalf("ListByCourse: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("want 2 notes got=%d", len(notes))
	}
	first := notes[0]
	if first.ChapterID != "0" || first.Status != entity.NoteStatusError {
		t.Fatalf("unexpected first note: %+v", first)
	}
	if first.Notes != "<h2>A</h2>" {
		t.Fatalf("error status must leave notes untouched: %q", first.Notes)
	}

	n, err := repo.DeleteByCourse(ctx, "c1")
	if err != nil || n != 2 {
		t.Fatalf("DeleteByCourse: n=%d err=%v", n, err)
	}
}
