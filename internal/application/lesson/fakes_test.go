package lesson

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"sheetcode-ai-api/internal/domain/entity"
	"sheetcode-ai-api/internal/domain/repository"
)

type fakeCourses struct {
	mu        sync.Mutex
	seq       int
	byID      map[string]*entity.CourseOutline
	statuses  []entity.CourseStatus
	createErr error
	statusErr error
}

func newFakeCourses() *fakeCourses {
	return &fakeCourses{byID: make(map[string]*entity.CourseOutline)}
}

func (f *fakeCourses) Create(_ context.Context, c *entity.CourseOutline) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.seq++
	c.ID = fmt.Sprintf("course-%d", f.seq)
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCourses) FindByID(_ context.Context, id string) (*entity.CourseOutline, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCourses) List(_ context.Context) ([]*entity.CourseOutline, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.CourseOutline, 0, len(f.byID))
	for _, c := range f.byID {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeCourses) UpsertStatus(_ context.Context, id string, status entity.CourseStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return f.statusErr
	}
	f.statuses = append(f.statuses, status)
	c, ok := f.byID[id]
	if !ok {
		c = &entity.CourseOutline{ID: id}
		f.byID[id] = c
	}
	c.Status = status
	return nil
}

func (f *fakeCourses) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeNotes struct {
	mu      sync.Mutex
	rows    map[string]*entity.ChapterNote
	order   []string
	upserts int
	failOn  entity.NoteStatus
}

func newFakeNotes() *fakeNotes {
	return &fakeNotes{rows: make(map[string]*entity.ChapterNote)}
}

func (f *fakeNotes) Upsert(_ context.Context, courseID, chapterID string, patch entity.ChapterNotePatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != "" && patch.Status == f.failOn {
		return fmt.Errorf("store unavailable")
	}
	f.upserts++
	key := courseID + "/" + chapterID
	row, ok := f.rows[key]
	if !ok {
		row = &entity.ChapterNote{CourseID: courseID, ChapterID: chapterID, CreatedAt: time.Now()}
		f.rows[key] = row
		f.order = append(f.order, key)
	}
	row.Status = patch.Status
	if patch.Notes != nil {
		row.Notes = *patch.Notes
	}
	row.UpdatedAt = time.Now()
	return nil
}

func (f *fakeNotes) ListByCourse(_ context.Context, courseID string) ([]*entity.ChapterNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.ChapterNote
	for _, key := range f.order {
		if row := f.rows[key]; row.CourseID == courseID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeNotes) DeleteByCourse(_ context.Context, courseID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	kept := f.order[:0]
	for _, key := range f.order {
		if f.rows[key].CourseID == courseID {
			delete(f.rows, key)
			n++
			continue
		}
		kept = append(kept, key)
	}
	f.order = kept
	return n, nil
}

func (f *fakeNotes) get(courseID, chapterID string) *entity.ChapterNote {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[courseID+"/"+chapterID]
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*entity.CourseOutline
	err    error
}

func (p *fakePublisher) PublishGenerateNotes(_ context.Context, course *entity.CourseOutline) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.events = append(p.events, course)
	return fmt.Sprintf("evt-%d", len(p.events)), nil
}

// scriptedModel 按调用序号返回预设输出
type scriptedModel struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	reply   func(call int, prompt string) (string, error)
}

func (m *scriptedModel) Generate(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	return m.reply(call, prompt)
}

type overloadErr struct{}

func (overloadErr) Error() string    { return "both models failed: 503 Service Unavailable" }
func (overloadErr) Overloaded() bool { return true }

type fakeCache struct {
	mu          sync.Mutex
	cached      []*entity.CourseOutline
	loads       int
	invalidated int
}

func (c *fakeCache) GetOrLoad(ctx context.Context, loader func(ctx context.Context) ([]*entity.CourseOutline, error)) ([]*entity.CourseOutline, error) {
	c.mu.Lock()
	if c.cached != nil {
		defer c.mu.Unlock()
		return c.cached, nil
	}
	c.mu.Unlock()
	out, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.loads++
	c.cached = out
	c.mu.Unlock()
	return out, nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = nil
	c.invalidated++
	return nil
}
