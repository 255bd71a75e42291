package messaging

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/redis/go-redis/v9"

	"sheetcode-ai-api/pkg/logger"
)

func TestDecodeMessage(t *testing.T) {
	msg, err := NewMessage("evt-1", TypeGenerateNotes, map[string]string{"k": "v"})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	data, _ := json.Marshal(msg)

	got, err := decodeMessage(redis.XMessage{ID: "1-0", Values: map[string]interface{}{"data": string(data)}})
	if err != nil {
		t.Fatalf("decodeMessage: %v", err)
	}
	if got.ID != "evt-1" || got.Type != TypeGenerateNotes {
		t.Fatalf("unexpected message: %+v", got)
	}

	bad := []redis.XMessage{
		{ID: "2-0", Values: map[string]interface{}{}},
		{ID: "3-0", Values: map[string]interface{}{"data": "{not json"}},
	}
	for _, x := range bad {
		if _, err := decodeMessage(x); err == nil {
			t.Fatalf("entry %s: expected error", x.ID)
		}
	}
}

func TestEventContext(t *testing.T) {
	msg := &Message{ID: "evt-9"}
	msg.SetMetadata("course_id", "c1")
	msg.SetMetadata("request_id", "r1")

	ctx := eventContext(context.Background(), msg)
	want := map[logger.ContextKey]string{
		logger.EventIDKey:   "evt-9",
		logger.CourseIDKey:  "c1",
		logger.RequestIDKey: "r1",
	}
	for k, v := range want {
		if got, _ := ctx.Value(k).(string); got != v {
			t.Fatalf("%s: expected %q, got %q", k, v, got)
		}
	}
	if ctx.Value(logger.TraceIDKey) != nil {
		t.Fatal("missing metadata should not be injected")
	}
}
