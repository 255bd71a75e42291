package lesson

import (
	"context"
	"testing"

	"sheetcode-ai-api/internal/domain/entity"
	"sheetcode-ai-api/pkg/errors"
)

func seedCourse(t *testing.T, courses *fakeCourses, notes *fakeNotes) string {
	t.Helper()
	c := entity.NewCourseOutline("Graphs", "Medium", "Comprehensive", "a@b.com")
	if err := courses.Create(context.Background(), c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	html := "<p>x</p>"
	_ = notes.Upsert(context.Background(), c.ID, "0", entity.ChapterNotePatch{Status: entity.NoteStatusReady, Notes: &html})
	_ = notes.Upsert(context.Background(), c.ID, "1", entity.ChapterNotePatch{Status: entity.NoteStatusError})
	return c.ID
}

func TestQueryService_ListUsesCache(t *testing.T) {
	courses, notes, cache := newFakeCourses(), newFakeNotes(), &fakeCache{}
	seedCourse(t, courses, notes)
	svc := NewQueryService(courses, notes, cache)

	for i := 0; i < 3; i++ {
		list, err := svc.List(context.Background())
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("expected 1 lesson, got %d", len(list))
		}
	}
	if cache.loads != 1 {
		t.Fatalf("expected a single store load, got %d", cache.loads)
	}
}

func TestQueryService_NotesExposeChapterErrors(t *testing.T) {
	courses, notes := newFakeCourses(), newFakeNotes()
	id := seedCourse(t, courses, notes)
	svc := NewQueryService(courses, notes, nil)

	list, err := svc.Notes(context.Background(), id)
	if err != nil {
		t.Fatalf("Notes: %v", err)
	}
	if len(list) != 2 || list[0].Status != entity.NoteStatusReady || list[1].Status != entity.NoteStatusError {
		t.Fatalf("unexpected notes %+v", list)
	}
}

func TestQueryService_GetMissing(t *testing.T) {
	svc := NewQueryService(newFakeCourses(), newFakeNotes(), nil)
	_, err := svc.Get(context.Background(), "nope")
	if !errors.HasCode(err, errors.CodeCourseNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestQueryService_DeleteRemovesNotes(t *testing.T) {
	courses, notes, cache := newFakeCourses(), newFakeNotes(), &fakeCache{}
	id := seedCourse(t, courses, notes)
	svc := NewQueryService(courses, notes, cache)

	if err := svc.Delete(context.Background(), id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if left, _ := notes.ListByCourse(context.Background(), id); len(left) != 0 {
		t.Fatalf("notes not removed")
	}
	if cache.invalidated != 1 {
		t.Fatalf("expected cache invalidation")
	}
	if err := svc.Delete(context.Background(), id); !errors.HasCode(err, errors.CodeCourseNotFound) {
		t.Fatalf("second delete should be not found, got %v", err)
	}
}
