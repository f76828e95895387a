// Package models defines the artifacts passed between the extraction, normalization and remapping stages.
package models

import (
	"bytes"
	"errors"
	"fmt"
	"iter"

	"github.com/goccy/go-json"
)

// ErrInvalidMappingJSON is returned when a persisted mapping is not a flat JSON object of strings.
var ErrInvalidMappingJSON = errors.New("mapping JSON must be an object of string values")

// Pair is a single key/description entry.
type Pair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// KeyMapping is an ordered, read-only key -> description mapping.
// Keys are unique and ordered by first insertion.
type KeyMapping struct {
	title  string
	keys   []string
	values map[string]string
}

// MappingBuilder accumulates pairs for a KeyMapping.
type MappingBuilder struct {
	title  string
	keys   []string
	values map[string]string
}

// NewMappingBuilder creates an empty builder for a mapping titled title.
func NewMappingBuilder(title string) *MappingBuilder {
	return &MappingBuilder{
		title:  title,
		values: make(map[string]string),
	}
}

// Set stores value under key. A repeated key keeps its first position and takes the latest value.
func (b *MappingBuilder) Set(key, value string) {
	if _, ok := b.values[key]; !ok {
		b.keys = append(b.keys, key)
	}

	b.values[key] = value
}

// Len returns the number of distinct keys set so far.
func (b *MappingBuilder) Len() int {
	return len(b.keys)
}

// Build returns an independent KeyMapping. The builder may keep being used afterwards.
func (b *MappingBuilder) Build() *KeyMapping {
	m := &KeyMapping{
		title:  b.title,
		keys:   make([]string, len(b.keys)),
		values: make(map[string]string, len(b.values)),
	}

	copy(m.keys, b.keys)

	for k, v := range b.values {
		m.values[k] = v
	}

	return m
}

// MappingFromPairs builds a mapping from pairs in order.
func MappingFromPairs(title string, pairs ...Pair) *KeyMapping {
	b := NewMappingBuilder(title)
	for _, p := range pairs {
		b.Set(p.Key, p.Value)
	}

	return b.Build()
}

// Title returns the title of the document the mapping was extracted from.
func (m *KeyMapping) Title() string {
	return m.title
}

// Len returns the number of keys.
func (m *KeyMapping) Len() int {
	return len(m.keys)
}

// Get returns the value stored under key.
func (m *KeyMapping) Get(key string) (string, bool) {
	v, ok := m.values[key]

	return v, ok
}

// Keys returns a copy of the keys in order.
func (m *KeyMapping) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)

	return out
}

// Pairs returns a copy of the entries in order.
func (m *KeyMapping) Pairs() []Pair {
	out := make([]Pair, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, Pair{Key: k, Value: m.values[k]})
	}

	return out
}

// All iterates over the entries in order.
func (m *KeyMapping) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// WithTitle returns a copy of the mapping carrying a different title.
func (m *KeyMapping) WithTitle(title string) *KeyMapping {
	b := NewMappingBuilder(title)
	for k, v := range m.All() {
		b.Set(k, v)
	}

	return b.Build()
}

// MarshalJSON encodes the mapping as a JSON object in key order. HTML
// characters are written as-is.
func (m *KeyMapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	var scratch bytes.Buffer

	enc := json.NewEncoder(&scratch)
	enc.SetEscapeHTML(false)

	encode := func(s string) error {
		scratch.Reset()

		if err := enc.Encode(s); err != nil {
			return err
		}

		// Encode terminates every value with a newline.
		buf.Write(bytes.TrimSuffix(scratch.Bytes(), []byte("\n")))

		return nil
	}

	buf.WriteByte('{')

	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		if err := encode(k); err != nil {
			return nil, fmt.Errorf("failed to encode key %q: %w", k, err)
		}

		buf.WriteByte(':')

		if err := encode(m.values[k]); err != nil {
			return nil, fmt.Errorf("failed to encode value for key %q: %w", k, err)
		}
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a flat JSON object of strings, keeping the document order.
// The title is left untouched.
func (m *KeyMapping) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to read mapping: %w", err)
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return ErrInvalidMappingJSON
	}

	b := NewMappingBuilder(m.title)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to read mapping key: %w", err)
		}

		key, ok := keyTok.(string)
		if !ok {
			return ErrInvalidMappingJSON
		}

		valTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to read value for key %q: %w", key, err)
		}

		value, ok := valTok.(string)
		if !ok {
			return fmt.Errorf("%w: key %q", ErrInvalidMappingJSON, key)
		}

		b.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to read mapping end: %w", err)
	}

	built := b.Build()
	m.keys = built.keys
	m.values = built.values

	return nil
}
