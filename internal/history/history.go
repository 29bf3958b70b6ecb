// Package history keeps an append-only JSON Lines log of send outcomes.
//
// Both the cron-invoked CLI and the dashboard's test sends append here, so the
// file is opened per write (O_APPEND) instead of held open; single-line
// appends are atomic enough for two short-lived writers on one host.
package history

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry is one send outcome.
type Entry struct {
	Time    time.Time `json:"time"`
	Config  string    `json:"config"`
	OK      bool      `json:"ok"`
	Kind    string    `json:"kind,omitempty"` // "config" | "send" on failure
	Error   string    `json:"error,omitempty"`
	Preview string    `json:"preview,omitempty"`
	Test    bool      `json:"test,omitempty"`
}

// Log appends entries to a JSONL file and reads recent ones back.
type Log struct {
	mu   sync.Mutex
	path string
}

func New(path string) *Log { return &Log{path: path} }

func (l *Log) Path() string { return l.path }

// Append writes one entry. Failures are returned but callers treat history as
// best-effort; a full disk must not fail a send.
func (l *Log) Append(e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(e)
}

// Tail returns up to n most recent entries, newest first. Lines that fail to
// decode (e.g. a torn write) are skipped.
func (l *Log) Tail(n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	// Ring over the last n entries; history files stay small enough that a
	// forward scan is fine.
	ring := make([]Entry, 0, n)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue
		}
		if len(ring) == n {
			copy(ring, ring[1:])
			ring = ring[:n-1]
		}
		ring = append(ring, e)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	// newest first
	for i, j := 0, len(ring)-1; i < j; i, j = i+1, j-1 {
		ring[i], ring[j] = ring[j], ring[i]
	}
	return ring, nil
}
