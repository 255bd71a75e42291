package step

import (
	"context"
	"errors"
	"testing"
)

func TestRun_ReplaysCompletedStep(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	calls := 0
	fn := func(context.Context) (string, error) {
		calls++
		return "done", nil
	}

	for i := 0; i < 3; i++ {
		out, err := Run(ctx, NewRunner(store, "evt-1"), "generate-notes", fn)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if out != "done" {
			t.Fatalf("want=%q got=%q", "done", out)
		}
	}
	if calls != 1 {
		t.Fatalf("step body should run once: calls=%d", calls)
	}
}

func TestRun_FailedStepIsNotRecorded(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	r := NewRunner(store, "evt-2")
	boom := errors.New("boom")

	if _, err := Run(ctx, r, "s", func(context.Context) (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("want boom got=%v", err)
	}
	out, err := Run(ctx, r, "s", func(context.Context) (int, error) { return 7, nil })
	if err != nil || out != 7 {
		t.Fatalf("retry: out=%d err=%v", out, err)
	}
}

func TestRun_StepsAreIndependentPerRun(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	a, _ := Run(ctx, NewRunner(store, "run-a"), "s", func(context.Context) (string, error) { return "a", nil })
	b, _ := Run(ctx, NewRunner(store, "run-b"), "s", func(context.Context) (string, error) { return "b", nil })
	if a != "a" || b != "b" {
		t.Fatalf("runs leaked into each other: a=%q b=%q", a, b)
	}
}

type failingStore struct{ MemoryStore }

func (*failingStore) Load(context.Context, string, string) ([]byte, bool, error) {
	return nil, false, errors.New("redis down")
}

func TestRun_LoadErrorSurfaces(t *testing.T) {
	called := false
	_, err := Run(context.Background(), NewRunner(&failingStore{}, "x"), "s", func(context.Context) (int, error) {
		called = true
		return 1, nil
	})
	if err == nil || called {
		t.Fatalf("load failure should stop the step: err=%v called=%v", err, called)
	}
}
