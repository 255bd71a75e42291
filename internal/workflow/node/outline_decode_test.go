package node

import (
	"encoding/json"
	"testing"

	"sheetcode-ai-api/internal/domain/entity"
)

const sampleOutline = `{
  "courseTitle": "Binary Search Trees in Depth",
  "category": "Computer Science",
  "difficulty": "Medium",
  "lessons": 5,
  "chapters": [
    {"chapterNumber": 1, "chapterTitle": "Intro", "topics": ["a", "b"], "estimatedLessonCount": 2},
    {"chapterNumber": 2, "chapterTitle": "Balancing", "topics": ["avl"], "estimatedLessonCount": 3, "id": 7}
  ]
}`

func TestDecodeOutline_Valid(t *testing.T) {
	got := DecodeOutline("```json\n" + sampleOutline + "\n```")
	v, ok := got.(ValidOutline)
	if !ok {
		t.Fatalf("want ValidOutline got=%#v", got)
	}
	if v.Outline.CourseTitle != "Binary Search Trees in Depth" {
		t.Fatalf("title: got=%q", v.Outline.CourseTitle)
	}
	if len(v.Outline.Chapters) != 2 {
		t.Fatalf("chapters: want=2 got=%d", len(v.Outline.Chapters))
	}
	if id := v.Outline.Chapters[1].StableID(1); id != "7" {
		t.Fatalf("numeric id: want=%q got=%q", "7", id)
	}
	if id := v.Outline.Chapters[0].StableID(0); id != "0" {
		t.Fatalf("index fallback: want=%q got=%q", "0", id)
	}
}

func TestDecodeOutline_ArrayWrapped(t *testing.T) {
	got := DecodeOutline("[" + sampleOutline + "]")
	if _, ok := got.(ValidOutline); !ok {
		t.Fatalf("want ValidOutline got=%#v", got)
	}
}

func TestDecodeOutline_Malformed(t *testing.T) {
	for _, raw := range []string{"Sorry, I cannot help.", `{"chapters": [`, "```json\n{oops}\n```"} {
		got := DecodeOutline(raw)
		m, ok := got.(MalformedOutline)
		if !ok {
			t.Fatalf("raw %q: want MalformedOutline got=%#v", raw, got)
		}
		if m.Payload()["error"] != entity.InvalidOutputMessage {
			t.Fatalf("payload: got=%v", m.Payload())
		}
		if m.InvalidOutput().Raw != raw {
			t.Fatalf("raw not preserved: got=%q", m.InvalidOutput().Raw)
		}
	}
}

func TestDecodeOutline_LooseFieldTypes(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		check func(t *testing.T, o *entity.Outline)
	}{
		{
			name: "lessons as string",
			raw:  `{"courseTitle":"Graphs","lessons":"20","chapters":[{"chapterTitle":"Intro","topics":["bfs"]}]}`,
			check: func(t *testing.T, o *entity.Outline) {
				if o.Lessons != 20 || len(o.Chapters) != 1 {
					t.Fatalf("want lessons=20 chapters=1 got=%d/%d", o.Lessons, len(o.Chapters))
				}
			},
		},
		{
			name: "chapterNumber as string",
			raw:  `{"courseTitle":"Graphs","chapters":[{"chapterNumber":"1","chapterTitle":"Intro"},{"chapterNumber":"2","chapterTitle":"DFS"}]}`,
			check: func(t *testing.T, o *entity.Outline) {
				if len(o.Chapters) != 2 || o.Chapters[1].ChapterNumber != 2 {
					t.Fatalf("unexpected chapters %+v", o.Chapters)
				}
			},
		},
		{
			name: "fractional estimatedLessonCount",
			raw:  `{"courseTitle":"Graphs","chapters":[{"chapterTitle":"Intro","estimatedLessonCount":2.5}]}`,
			check: func(t *testing.T, o *entity.Outline) {
				if len(o.Chapters) != 1 || o.Chapters[0].EstimatedLessonCount != 3 {
					t.Fatalf("unexpected chapters %+v", o.Chapters)
				}
			},
		},
		{
			name: "topics as comma separated text",
			raw:  `{"courseTitle":"Graphs","chapters":[{"chapterTitle":"Intro","topics":"a, b"}]}`,
			check: func(t *testing.T, o *entity.Outline) {
				topics := o.Chapters[0].Topics
				if len(topics) != 2 || topics[0] != "a" || topics[1] != "b" {
					t.Fatalf("topics: got=%q", topics)
				}
			},
		},
		{
			name: "unknown schema keeps fields",
			raw:  `{"title":"Graphs","modules":[1,2]}`,
			check: func(t *testing.T, o *entity.Outline) {
				if o.Extra["title"] != "Graphs" || len(o.Chapters) != 0 {
					t.Fatalf("unexpected outline %+v", o)
				}
			},
		},
		{
			name: "empty object",
			raw:  `{}`,
			check: func(t *testing.T, o *entity.Outline) {
				if len(o.Chapters) != 0 {
					t.Fatalf("unexpected chapters %+v", o.Chapters)
				}
			},
		},
		{
			name: "scalar value",
			raw:  `42`,
			check: func(t *testing.T, o *entity.Outline) {
				if o.Extra["value"] == nil {
					t.Fatalf("scalar not preserved: %+v", o)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeOutline(tt.raw)
			v, ok := got.(ValidOutline)
			if !ok {
				t.Fatalf("want ValidOutline got=%#v", got)
			}
			tt.check(t, v.Outline)
		})
	}
}

func TestOutline_JSONKeepsUnknownFields(t *testing.T) {
	v, ok := DecodeOutline(`{"courseTitle":"Graphs","level":"pro","chapters":[{"chapterTitle":"Intro","subtopics":["x"]}]}`).(ValidOutline)
	if !ok {
		t.Fatalf("want ValidOutline")
	}
	b, err := json.Marshal(v.Outline)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back["level"] != "pro" || back["courseTitle"] != "Graphs" {
		t.Fatalf("outline fields lost: %s", b)
	}
	chapter := back["chapters"].([]any)[0].(map[string]any)
	if _, ok := chapter["subtopics"]; !ok {
		t.Fatalf("chapter fields lost: %s", b)
	}
}
