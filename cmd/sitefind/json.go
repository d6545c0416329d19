package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/igusev/sitefind/internal/config"
	"github.com/igusev/sitefind/internal/model"
)

// JSONResult is one ranked result in --json output
type JSONResult struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	URL        string            `json:"url"`
	Section    string            `json:"section,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
	Score      float64           `json:"score"`
	Confidence int               `json:"confidence"`
	Snippet    string            `json:"snippet,omitempty"`
	Highlights []model.Highlight `json:"highlights,omitempty"`
}

// JSONSearchResult is the --json output of a ranked query
type JSONSearchResult struct {
	Query   string       `json:"query"`
	Results []JSONResult `json:"results"`
	Total   int          `json:"total"`
	Limit   int          `json:"limit,omitempty"`
}

// JSONDocument is one unranked document in --json output
type JSONDocument struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Section     string   `json:"section,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Date        string   `json:"date,omitempty"`
}

// JSONDocumentList is the --json output of tags, recent and related
type JSONDocumentList struct {
	Documents []JSONDocument `json:"documents"`
	Total     int            `json:"total"`
}

func newJSONSearchResult(query string, results []model.Result, cfg *config.Config) JSONSearchResult {
	out := JSONSearchResult{
		Query:   query,
		Results: make([]JSONResult, 0, len(results)),
		Total:   len(results),
		Limit:   cfg.Search.Limit,
	}
	for _, r := range results {
		out.Results = append(out.Results, JSONResult{
			ID:         r.Document.ID,
			Title:      r.Document.Title,
			URL:        cfg.Site.Resolve(r.Document.URL),
			Section:    r.Document.Section,
			Tags:       r.Document.Tags,
			Score:      r.Score,
			Confidence: r.Confidence(),
			Snippet:    r.Snippet,
			Highlights: r.Highlights,
		})
	}
	return out
}

func newJSONDocumentList(docs []model.Document, cfg *config.Config) JSONDocumentList {
	out := JSONDocumentList{
		Documents: make([]JSONDocument, 0, len(docs)),
		Total:     len(docs),
	}
	for _, d := range docs {
		out.Documents = append(out.Documents, JSONDocument{
			ID:          d.ID,
			Title:       d.Title,
			URL:         cfg.Site.Resolve(d.URL),
			Section:     d.Section,
			Description: d.Description,
			Tags:        d.Tags,
			Date:        d.Date,
		})
	}
	return out
}

// outputJSON writes v as indented JSON
func outputJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
