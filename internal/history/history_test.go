package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAppendAndTail(t *testing.T) {
	t.Parallel()
	l := New(filepath.Join(t.TempDir(), "history.jsonl"))

	base := time.Date(2024, 12, 25, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		e := Entry{Time: base.Add(time.Duration(i) * time.Minute), Config: "daily", OK: i%2 == 0}
		if err := l.Append(e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := l.Tail(3)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	// newest first
	if !got[0].Time.After(got[1].Time) || !got[1].Time.After(got[2].Time) {
		t.Fatalf("entries not newest-first: %v", got)
	}
}

func TestTailMissingFile(t *testing.T) {
	t.Parallel()
	l := New(filepath.Join(t.TempDir(), "none.jsonl"))
	got, err := l.Tail(10)
	if err != nil || got != nil {
		t.Fatalf("Tail = %v, %v; want nil, nil", got, err)
	}
}

func TestTailSkipsTornLines(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "history.jsonl")
	l := New(path)
	if err := l.Append(Entry{Config: "ok-line", OK: true}); err != nil {
		t.Fatal(err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(`{"config":"torn`); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	got, err := l.Tail(10)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(got) != 1 || got[0].Config != "ok-line" {
		t.Fatalf("Tail = %+v, want single ok-line entry", got)
	}
}
