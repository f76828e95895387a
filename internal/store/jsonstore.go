package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"teakeys/internal/models"
)

// ErrNilMapping is returned when asked to persist a nil mapping.
var ErrNilMapping = errors.New("mapping is nil")

// JSONStore writes mappings as indented JSON objects in key order.
type JSONStore struct {
	layout Layout
	backup bool
}

// Option configures a JSONStore.
type Option func(*JSONStore)

// WithBackup keeps the previous file as "<path>.bak" before overwriting it.
func WithBackup(enabled bool) Option {
	return func(s *JSONStore) { s.backup = enabled }
}

// NewJSONStore creates a store rooted at layout.
func NewJSONStore(layout Layout, opts ...Option) *JSONStore {
	s := &JSONStore{layout: layout}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Layout returns the store layout.
func (s *JSONStore) Layout() Layout {
	return s.layout
}

// SaveGenerated writes a freshly extracted mapping and returns its path.
func (s *JSONStore) SaveGenerated(m *models.KeyMapping) (string, error) {
	if m == nil {
		return "", ErrNilMapping
	}

	path := s.layout.GeneratedPath(m.Title())

	return path, s.SaveMapping(path, m)
}

// SaveProcessed writes a cleaned mapping and returns its path.
func (s *JSONStore) SaveProcessed(m *models.KeyMapping) (string, error) {
	if m == nil {
		return "", ErrNilMapping
	}

	path := s.layout.ProcessedPath(m.Title())

	return path, s.SaveMapping(path, m)
}

// SaveMapping writes m to path with two-space indentation and a trailing newline.
// A failed save leaves any existing file at path untouched.
func (s *JSONStore) SaveMapping(path string, m *models.KeyMapping) error {
	if m == nil {
		return ErrNilMapping
	}

	compact, err := m.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal mapping: %w", err)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return fmt.Errorf("indent mapping: %w", err)
	}

	buf.WriteByte('\n')

	// The directory must exist already; see Layout.Bootstrap.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}

	if s.backup {
		if err := backupFile(path); err != nil {
			_ = os.Remove(tmp)

			return err
		}
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)

		return fmt.Errorf("rename %s: %w", path, err)
	}

	return nil
}

// LoadMapping reads a mapping file. The title is recovered from the file name.
func (s *JSONStore) LoadMapping(path string) (*models.KeyMapping, error) {
	return LoadMapping(path)
}

// LoadMapping reads a mapping file written by SaveMapping (or any flat JSON
// object of strings).
func LoadMapping(path string) (*models.KeyMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping: %w", err)
	}

	m := &models.KeyMapping{}
	if err := m.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("decode mapping %s: %w", path, err)
	}

	return m.WithTitle(TitleFromPath(path)), nil
}

// backupFile copies the current content of path to "<path>.bak". The
// original stays in place until the new content is renamed over it.
func backupFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("read %s for backup: %w", path, err)
	}

	if err := os.WriteFile(path+".bak", data, 0o644); err != nil {
		return fmt.Errorf("backup %s: %w", path, err)
	}

	return nil
}
