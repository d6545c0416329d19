// Package model defines the documents of a site search index and the
// per-query results derived from them
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
)

// ErrNotArray is returned when the index document is not a JSON array
var ErrNotArray = errors.New("search index is not a JSON array")

// Document is one unit of indexable site content.
// Documents are read-only once a corpus is loaded.
type Document struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
	Categories  []string `json:"categories"`
	Section     string   `json:"section"` // e.g. "blog", "project"
	URL         string   `json:"url"`
	Date        string   `json:"date"` // ISO-8601, only used for recency ordering
	ReadingTime *int     `json:"readingTime,omitempty"`
	Image       string   `json:"image,omitempty"`
}

// UnmarshalJSON decodes a document, dropping display-only metadata
// (date, readingTime, image) that has the wrong JSON type instead of
// rejecting the whole entry
func (d *Document) UnmarshalJSON(data []byte) error {
	type plain Document
	aux := struct {
		*plain
		Date        json.RawMessage `json:"date"`
		ReadingTime json.RawMessage `json:"readingTime"`
		Image       json.RawMessage `json:"image"`
	}{plain: (*plain)(d)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	d.Date = lenientString(aux.Date)
	d.ReadingTime = lenientMinutes(aux.ReadingTime)
	d.Image = lenientString(aux.Image)
	return nil
}

// lenientString keeps raw only when it is a JSON string
func lenientString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// lenientMinutes keeps raw only when it is a non-negative JSON number
func lenientMinutes(raw json.RawMessage) *int {
	var f float64
	if len(raw) == 0 || json.Unmarshal(raw, &f) != nil || f < 0 || f > math.MaxInt32 {
		return nil
	}
	n := int(math.Round(f))
	return &n
}

// dateLayouts are tried in order when parsing Document.Date
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Time parses Date. ok is false when the date is missing or malformed.
func (d Document) Time() (t time.Time, ok bool) {
	raw := strings.TrimSpace(d.Date)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// HasTag reports whether the document carries the exact tag
func (d Document) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SharedTags counts the tags of d that also appear on other
func (d Document) SharedTags(other Document) int {
	n := 0
	for _, t := range d.Tags {
		if other.HasTag(t) {
			n++
		}
	}
	return n
}

// DecodeStats describes what DecodeDocuments did with the raw entries
type DecodeStats struct {
	Total   int      // Entries in the array
	Skipped int      // Entries that could not be decoded
	Reasons []string // One reason per skipped entry
}

// DecodeDocuments reads a JSON array of documents.
// Unknown fields are ignored, missing text fields become empty strings,
// and entries that cannot be decoded are skipped rather than failing the load.
func DecodeDocuments(r io.Reader) ([]Document, DecodeStats, error) {
	var stats DecodeStats

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read search index: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, stats, ErrNotArray
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, stats, fmt.Errorf("failed to parse search index: %w", err)
	}

	stats.Total = len(raw)
	docs := make([]Document, 0, len(raw))
	for i, entry := range raw {
		entry = bytes.TrimSpace(entry)
		if len(entry) == 0 || entry[0] != '{' {
			stats.Skipped++
			stats.Reasons = append(stats.Reasons, fmt.Sprintf("entry %d: not an object", i))
			continue
		}

		var doc Document
		if err := json.Unmarshal(entry, &doc); err != nil {
			stats.Skipped++
			stats.Reasons = append(stats.Reasons, fmt.Sprintf("entry %d: %v", i, err))
			continue
		}
		docs = append(docs, doc)
	}

	return docs, stats, nil
}

// Searchable field names
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldContent     = "content"
	FieldTags        = "tags"
	FieldCategories  = "categories"
)

// Range is an inclusive span of rune offsets inside a field value
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Match records which field value matched a query and where
type Match struct {
	Field  string  `json:"field"`
	Index  int     `json:"index"` // Element index for tags/categories, -1 for text fields
	Value  string  `json:"value"`
	Ranges []Range `json:"ranges"`
}

// Highlight is a field value with matched spans wrapped in markers
type Highlight struct {
	Field string `json:"field"`
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Result wraps a Document for the lifetime of a single query.
// Score is in [0, 1], lower is more relevant.
type Result struct {
	Document   Document    `json:"document"`
	Score      float64     `json:"score"`
	Matches    []Match     `json:"matches,omitempty"`
	Snippet    string      `json:"snippet,omitempty"`
	Highlights []Highlight `json:"highlights,omitempty"`
}

// Confidence is the match confidence as a percentage: round((1 - score) * 100)
func (r Result) Confidence() int {
	return int(math.Round((1 - r.Score) * 100))
}

// Highlighted returns the first highlight for field
func (r Result) Highlighted(field string) (string, bool) {
	for _, h := range r.Highlights {
		if h.Field == field {
			return h.Text, true
		}
	}
	return "", false
}

// HighlightedTitle prefers the highlighted title over the raw one
func (r Result) HighlightedTitle() string {
	if title, ok := r.Highlighted(FieldTitle); ok {
		return title
	}
	return r.Document.Title
}
