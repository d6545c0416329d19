// Package index provides the exact-match facet index (section, tags) for a
// loaded corpus using an in-memory Bleve index, plus Markdown-to-text cleanup
// for document content
package index

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/igusev/sitefind/internal/model"
)

const (
	fieldSection = "section"
	fieldTags    = "tags"
)

// FacetIndex answers exact section and tag lookups for one corpus generation.
// Hits are returned as corpus ordinals in ascending order.
type FacetIndex struct {
	index bleve.Index
	count int
}

// NewFacetIndex builds an in-memory facet index over docs.
// Document ordinals are used as Bleve IDs so duplicate document IDs can't collide.
func NewFacetIndex(docs []model.Document) (*FacetIndex, error) {
	idx, err := bleve.NewMemOnly(buildFacetMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create facet index: %w", err)
	}

	batch := idx.NewBatch()
	for i, doc := range docs {
		fd := map[string]interface{}{
			fieldSection: doc.Section,
			fieldTags:    doc.Tags,
		}
		if err := batch.Index(strconv.Itoa(i), fd); err != nil {
			_ = idx.Close() // Ignore close error on error path
			return nil, fmt.Errorf("failed to add document %d to batch: %w", i, err)
		}
	}

	if err := idx.Batch(batch); err != nil {
		_ = idx.Close() // Ignore close error on error path
		return nil, fmt.Errorf("failed to index documents: %w", err)
	}

	return &FacetIndex{index: idx, count: len(docs)}, nil
}

// buildFacetMapping maps section and tags as untokenized keywords
func buildFacetMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = keyword.Name

	docMapping := bleve.NewDocumentMapping()

	sectionMapping := bleve.NewKeywordFieldMapping()
	sectionMapping.Store = false
	docMapping.AddFieldMappingsAt(fieldSection, sectionMapping)

	tagsMapping := bleve.NewKeywordFieldMapping()
	tagsMapping.Store = false
	docMapping.AddFieldMappingsAt(fieldTags, tagsMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// Section returns the ordinals of documents whose section equals section
func (fi *FacetIndex) Section(section string) ([]int, error) {
	if section == "" {
		return []int{}, nil
	}

	q := bleve.NewTermQuery(section)
	q.SetField(fieldSection)
	return fi.run(q)
}

// Tags returns the ordinals of documents carrying at least one of tags
func (fi *FacetIndex) Tags(tags []string) ([]int, error) {
	terms := make([]query.Query, 0, len(tags))
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			continue
		}
		q := bleve.NewTermQuery(tag)
		q.SetField(fieldTags)
		terms = append(terms, q)
	}

	if len(terms) == 0 {
		return []int{}, nil
	}
	return fi.run(bleve.NewDisjunctionQuery(terms...))
}

func (fi *FacetIndex) run(q query.Query) ([]int, error) {
	if fi.count == 0 {
		return []int{}, nil
	}

	size := fi.count
	if size > math.MaxInt32 {
		size = math.MaxInt32
	}
	req := bleve.NewSearchRequestOptions(q, size, 0, false)

	res, err := fi.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("facet search failed: %w", err)
	}

	ordinals := make([]int, 0, len(res.Hits))
	for _, hit := range res.Hits {
		n, err := strconv.Atoi(hit.ID)
		if err != nil {
			continue
		}
		ordinals = append(ordinals, n)
	}

	// Bleve orders by relevance; callers want corpus order
	sort.Ints(ordinals)
	return ordinals, nil
}

// Count returns the number of indexed documents
func (fi *FacetIndex) Count() (uint64, error) {
	return fi.index.DocCount()
}

// Close releases the index
func (fi *FacetIndex) Close() error {
	return fi.index.Close()
}
