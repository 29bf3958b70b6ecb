package discord

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSendPostsContentJSON(t *testing.T) {
	t.Parallel()

	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.Client())
	if err := c.Send(context.Background(), srv.URL, "Report for 25/12"); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if got.Content != "Report for 25/12" {
		t.Fatalf("content = %q", got.Content)
	}
}

func TestSendNonSuccessStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Unknown Webhook"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	err := New(srv.Client()).Send(context.Background(), srv.URL, "hi")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if se.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", se.StatusCode)
	}
	if !strings.Contains(se.Body, "Unknown Webhook") {
		t.Fatalf("body excerpt missing: %q", se.Body)
	}
}

func TestSendEmptyURL(t *testing.T) {
	t.Parallel()
	if err := New(nil).Send(context.Background(), "  ", "hi"); err == nil {
		t.Fatal("expected error for empty webhook url")
	}
}

func TestSendTruncatesLongContent(t *testing.T) {
	t.Parallel()

	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	long := strings.Repeat("a", MaxContentLen+500)
	if err := New(srv.Client()).Send(context.Background(), srv.URL, long); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if n := utf8.RuneCountInString(got.Content); n > MaxContentLen {
		t.Fatalf("content = %d chars, want <= %d", n, MaxContentLen)
	}
	if !strings.HasSuffix(got.Content, "…") {
		t.Fatal("expected truncation marker")
	}
}

func TestSendTruncatesOnRuneBoundary(t *testing.T) {
	t.Parallel()

	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	long := strings.Repeat("é", MaxContentLen+10)
	if err := New(srv.Client()).Send(context.Background(), srv.URL, long); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if !utf8.ValidString(got.Content) {
		t.Fatal("truncation split a rune")
	}
	if n := utf8.RuneCountInString(got.Content); n != MaxContentLen {
		t.Fatalf("content = %d chars, want %d", n, MaxContentLen)
	}
	if strings.ContainsRune(got.Content, utf8.RuneError) {
		t.Fatalf("mangled tail: %q", got.Content[len(got.Content)-12:])
	}
}
