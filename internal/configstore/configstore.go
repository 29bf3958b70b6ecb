// Package configstore manages the directory of notification YAML files.
//
// Each notification is one file, <dir>/<name>.yaml, holding a webhook URL and
// a message template. The directory is the source of truth shared between the
// web dashboard and cron-invoked CLI sends; nothing is cached, every read
// hits the filesystem so separate processes never disagree.
package configstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	yaml "go.yaml.in/yaml/v3"
)

// ErrorWebhookFile is the conventional filename for the error-webhook config,
// stored beside (not inside) the notification configs directory.
const ErrorWebhookFile = "error_webhook.yaml"

var ErrNotFound = errors.New("notification config not found")

// reName restricts config names to crontab- and URL-safe characters.
var reName = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Notification is a single notification config file.
type Notification struct {
	WebhookURL string `yaml:"webhook_url"`
	Message    string `yaml:"message"`
}

// Item is a listed notification with its identity attached.
type Item struct {
	Name string
	Path string
	Notification
}

// Store performs CRUD over a configs directory.
type Store struct {
	dir              string
	errorWebhookPath string
}

// New returns a Store over dir. errorWebhookPath may be empty, in which case
// the error-webhook file defaults to ErrorWebhookFile in dir's parent.
func New(dir, errorWebhookPath string) *Store {
	if strings.TrimSpace(errorWebhookPath) == "" {
		errorWebhookPath = filepath.Join(filepath.Dir(filepath.Clean(dir)), ErrorWebhookFile)
	}
	return &Store{dir: dir, errorWebhookPath: errorWebhookPath}
}

func (s *Store) Dir() string              { return s.dir }
func (s *Store) ErrorWebhookPath() string { return s.errorWebhookPath }

// ValidName reports whether name is acceptable as a config identity.
func ValidName(name string) bool { return reName.MatchString(name) }

// Path returns the file path a config name maps to, or an error for names
// that would escape the directory.
func (s *Store) Path(name string) (string, error) {
	if !ValidName(name) {
		return "", fmt.Errorf("invalid config name %q (letters, numbers, dashes, underscores)", name)
	}
	return filepath.Join(s.dir, name+".yaml"), nil
}

// List returns all notification configs, sorted by name. Files that fail to
// parse are skipped; they surface as errors at send time instead.
func (s *Store) List() ([]Item, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read configs dir: %w", err)
	}

	var items []Item
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		fn := e.Name()
		if !strings.HasSuffix(fn, ".yaml") || strings.Contains(fn, ".example") {
			continue
		}
		name := strings.TrimSuffix(fn, ".yaml")
		if !ValidName(name) {
			continue
		}
		n, err := LoadFile(filepath.Join(s.dir, fn))
		if err != nil {
			continue
		}
		items = append(items, Item{Name: name, Path: filepath.Join(s.dir, fn), Notification: n})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

// Read loads one config by name.
func (s *Store) Read(name string) (Notification, error) {
	p, err := s.Path(name)
	if err != nil {
		return Notification{}, err
	}
	n, err := LoadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return Notification{}, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return Notification{}, err
	}
	return n, nil
}

// Exists reports whether a config file is present for name.
func (s *Store) Exists(name string) bool {
	p, err := s.Path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Write persists a config atomically (tmp file + rename).
func (s *Store) Write(name string, n Notification) error {
	p, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create configs dir: %w", err)
	}
	return writeYAML(p, n)
}

// Delete removes a config file. Deleting a missing config returns ErrNotFound.
func (s *Store) Delete(name string) error {
	p, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return err
	}
	return nil
}

// ReadErrorWebhook returns the configured error-webhook URL, or "" when the
// file is absent or unreadable. The error webhook is strictly best-effort;
// a broken file must never fail a send.
func (s *Store) ReadErrorWebhook() string {
	n, err := LoadFile(s.errorWebhookPath)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(n.WebhookURL)
}

// WriteErrorWebhook persists the error-webhook URL.
func (s *Store) WriteErrorWebhook(url string) error {
	return writeYAML(s.errorWebhookPath, Notification{WebhookURL: strings.TrimSpace(url)})
}

// LoadFile parses a notification config from an arbitrary path. The CLI uses
// this directly: cron hands it a path, not a name.
func LoadFile(path string) (Notification, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Notification{}, err
	}
	var n Notification
	if err := yaml.Unmarshal(b, &n); err != nil {
		return Notification{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return n, nil
}

func writeYAML(path string, v any) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
