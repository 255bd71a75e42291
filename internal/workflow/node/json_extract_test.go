package node

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestDecodeJSON_FencedBlock(t *testing.T) {
	raw := "Here is your outline:\n```JSON\n{\"courseTitle\":\"Trees\"}\n```\nGood luck!"
	v, err := DecodeJSON(raw)
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	m, ok := v.(map[string]any)
	if !ok || m["courseTitle"] != "Trees" {
		t.Fatalf("unexpected value: %#v", v)
	}
}

func TestDecodeJSON_BareWithWhitespace(t *testing.T) {
	v, err := DecodeJSON("  \n [1, 2, 3]\n\t")
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if arr, ok := v.([]any); !ok || len(arr) != 3 {
		t.Fatalf("unexpected value: %#v", v)
	}
}

func TestDecodeJSON_Invalid(t *testing.T) {
	for _, raw := range []string{"", "not json", "{\"a\":1} trailing", "```json\n{broken\n```"} {
		if _, err := DecodeJSON(raw); !errors.Is(err, ErrDecode) {
			t.Fatalf("raw %q: want ErrDecode got=%v", raw, err)
		}
	}
}

// 任意前后缀文本都不影响 json 代码块的解析
func TestDecodeJSON_FencedIgnoresProse(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		prefix := rapid.StringMatching(`[A-Za-z .,!\n]{0,40}`).Draw(rt, "prefix")
		suffix := rapid.StringMatching(`[A-Za-z .,!\n{}]{0,40}`).Draw(rt, "suffix")
		tag := rapid.SampledFrom([]string{"json", "JSON", "Json"}).Draw(rt, "tag")
		payload := map[string]any{
			"title": rapid.StringMatching(`[A-Za-z ]{1,20}`).Draw(rt, "title"),
			"count": rapid.IntRange(0, 1000).Draw(rt, "count"),
		}
		body, _ := json.Marshal(payload)
		raw := fmt.Sprintf("%s```%s\n%s\n```%s", prefix, tag, body, suffix)

		v, err := DecodeJSON(raw)
		if err != nil {
			rt.Fatalf("DecodeJSON(%q): %v", raw, err)
		}
		m := v.(map[string]any)
		if m["title"] != payload["title"] {
			rt.Fatalf("title: want=%v got=%v", payload["title"], m["title"])
		}
		if m["count"].(json.Number).String() != fmt.Sprint(payload["count"]) {
			rt.Fatalf("count: want=%v got=%v", payload["count"], m["count"])
		}
	})
}

// 无代码块时解析去空白后的全文，失败只返回错误而不 panic
func TestDecodeJSON_UnfencedNeverPanics(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		raw := rapid.String().Draw(rt, "raw")
		if strings.Contains(raw, "```") {
			rt.Skip("fenced input covered elsewhere")
		}
		v, err := DecodeJSON(raw)
		var want any
		wantErr := json.Unmarshal([]byte(strings.TrimSpace(raw)), &want)
		if wantErr == nil && err != nil {
			rt.Fatalf("raw %q: stdlib parses but decode failed: %v", raw, err)
		}
		if err != nil && v != nil {
			rt.Fatalf("value must be nil on error")
		}
	})
}

func TestDecodeNotes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
		err  error
	}{
		{name: "html", raw: "\n<h2>Intro</h2><p>x</p>\n", want: "<h2>Intro</h2><p>x</p>"},
		{name: "fenced html", raw: "```html\n<h2>Intro</h2>\n```", want: "<h2>Intro</h2>"},
		{
			name: "inline code sample",
			raw:  "<h2>Binary Search Trees</h2><p>Insert:</p>\n```python\ndef insert(root, k): ...\n```\n<h3>Deletion</h3><p>d</p>",
			want: "<h2>Binary Search Trees</h2><p>Insert:</p>\n```python\ndef insert(root, k): ...\n```\n<h3>Deletion</h3><p>d</p>",
		},
		{
			name: "fenced html with inner sample",
			raw:  "```html\n<h2>A</h2>\n```go\nx := 1\n```\n<p>b</p>\n```",
			want: "<h2>A</h2>\n```go\nx := 1\n```\n<p>b</p>",
		},
		{name: "json string", raw: "\"<h2>A</h2>\"", want: "<h2>A</h2>"},
		{name: "json object", raw: "```json\n{\"notes\":\"<p>n</p>\"}\n```", want: "<p>n</p>"},
		{name: "broken json", raw: "{\"notes\": ", err: ErrDecode},
		{name: "json without notes", raw: "{\"other\":1}", err: ErrDecode},
		{name: "blank", raw: "  ", err: ErrEmptyResponse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeNotes(tc.raw)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("want err=%v got=%v", tc.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeNotes: %v", err)
			}
			if got != tc.want {
				t.Fatalf("want=%q got=%q", tc.want, got)
			}
		})
	}
}
