// Package engine loads a site's search index once and answers ranked fuzzy
// queries, facet filters and browsing queries against it in memory.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/igusev/sitefind/internal/fuzzy"
	"github.com/igusev/sitefind/internal/index"
	"github.com/igusev/sitefind/internal/logger"
	"github.com/igusev/sitefind/internal/model"
	"github.com/igusev/sitefind/internal/source"
)

// Default result caps
const (
	DefaultLimit           = 10
	DefaultSuggestionLimit = 5
	DefaultRecentLimit     = 5
	DefaultRelatedLimit    = 3
)

// Options tunes matching and result enrichment
type Options struct {
	Threshold          float64
	Distance           int
	MinMatchCharLength int
	SnippetRadius      int
	Ellipsis           string
	HighlightPre       string
	HighlightPost      string
	LoadTimeout        time.Duration
	// StripMarkdown reduces document content to plain text at load time
	StripMarkdown bool
}

// DefaultOptions returns the stock engine settings
func DefaultOptions() Options {
	return Options{
		Threshold:          0.3,
		Distance:           100,
		MinMatchCharLength: 2,
		SnippetRadius:      75,
		Ellipsis:           "...",
		HighlightPre:       "<mark>",
		HighlightPost:      "</mark>",
		LoadTimeout:        10 * time.Second,
	}
}

// generation is one immutable loaded corpus
type generation struct {
	entries []entry
	facets  *index.FacetIndex
}

func (g *generation) count() int {
	return len(g.entries)
}

// Engine is safe for concurrent use. Queries run against the corpus
// generation current when they started; Reload swaps generations.
type Engine struct {
	src  source.Source
	opts Options

	group singleflight.Group

	mu      sync.RWMutex
	gen     *generation
	loadErr error
}

// New creates an engine reading from src. Nothing is fetched until
// Initialize or the first query.
func New(src source.Source, opts Options) *Engine {
	def := DefaultOptions()
	if opts.Threshold <= 0 {
		opts.Threshold = def.Threshold
	}
	if opts.Distance <= 0 {
		opts.Distance = def.Distance
	}
	if opts.MinMatchCharLength <= 0 {
		opts.MinMatchCharLength = def.MinMatchCharLength
	}
	if opts.SnippetRadius <= 0 {
		opts.SnippetRadius = def.SnippetRadius
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = def.LoadTimeout
	}
	return &Engine{src: src, opts: opts}
}

// Initialize fetches and indexes the corpus. It is a no-op once loaded;
// concurrent callers share a single fetch. A failed load is reported as a
// *LoadError and may be retried by calling Initialize again.
func (e *Engine) Initialize(ctx context.Context) error {
	if e.Ready() {
		return nil
	}

	_, err, _ := e.group.Do("load", func() (interface{}, error) {
		if e.Ready() {
			return nil, nil
		}

		gen, err := e.load(ctx)

		e.mu.Lock()
		defer e.mu.Unlock()
		if err != nil {
			// A caller giving up is not a verdict on the index
			if ctx.Err() == nil {
				e.loadErr = err
			}
			return nil, err
		}
		e.gen = gen
		e.loadErr = nil
		return nil, nil
	})
	return err
}

// Reload fetches the corpus again and replaces the current one. On failure
// the previous corpus stays in place.
func (e *Engine) Reload(ctx context.Context) error {
	_, err, _ := e.group.Do("load", func() (interface{}, error) {
		gen, err := e.load(ctx)
		if err != nil {
			return nil, err
		}

		e.mu.Lock()
		old := e.gen
		e.gen = gen
		e.loadErr = nil
		e.mu.Unlock()

		if old != nil {
			if err := old.facets.Close(); err != nil {
				logger.Debug("Failed to close previous facet index: %v", err)
			}
		}
		logger.Debug("Search index reloaded: %d documents", gen.count())
		return nil, nil
	})
	return err
}

// Ready reports whether a corpus is loaded
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.gen != nil
}

// Err returns the latched load error, if the last load failed
func (e *Engine) Err() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loadErr
}

// Close releases the facet index
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen == nil {
		return nil
	}
	err := e.gen.facets.Close()
	e.gen = nil
	return err
}

func (e *Engine) load(ctx context.Context) (*generation, error) {
	ctx, cancel := context.WithTimeout(ctx, e.opts.LoadTimeout)
	defer cancel()

	start := time.Now()
	loadErr := func(err error) error {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", e.opts.LoadTimeout, err)
		}
		return &LoadError{Source: e.src.String(), Err: err}
	}

	rc, err := e.src.Fetch(ctx)
	if err != nil {
		return nil, loadErr(err)
	}
	defer rc.Close()

	docs, stats, err := model.DecodeDocuments(rc)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, loadErr(ctxErr)
		}
		return nil, loadErr(err)
	}
	if stats.Skipped > 0 {
		logger.Warn("Skipped %d malformed documents in %s", stats.Skipped, e.src)
		for _, reason := range stats.Reasons {
			logger.Debug("  %s", reason)
		}
	}

	entries := make([]entry, len(docs))
	for i, doc := range docs {
		if e.opts.StripMarkdown {
			doc.Content = index.PlainText(doc.Content)
		}
		entries[i] = newEntry(doc)
	}

	facets, err := index.NewFacetIndex(docs)
	if err != nil {
		return nil, loadErr(err)
	}

	logger.Debug("Loaded %d documents from %s in %v", len(entries), e.src, time.Since(start))
	return &generation{entries: entries, facets: facets}, nil
}

// snapshot returns the current generation with its read lock held.
// Query methods load lazily; a latched load failure is not retried here.
func (e *Engine) snapshot(ctx context.Context) (*generation, func()) {
	e.mu.RLock()
	latched := e.gen == nil && e.loadErr != nil
	e.mu.RUnlock()

	if !latched {
		if err := e.Initialize(ctx); err != nil {
			logger.Debug("Search unavailable: %v", err)
		}
	}

	e.mu.RLock()
	if e.gen == nil {
		e.mu.RUnlock()
		return nil, func() {}
	}
	return e.gen, e.mu.RUnlock
}

func (e *Engine) compile(query string) *fuzzy.Pattern {
	return fuzzy.Compile(query, fuzzy.Options{
		Threshold:          e.opts.Threshold,
		Distance:           e.opts.Distance,
		MinMatchCharLength: e.opts.MinMatchCharLength,
	})
}

// rank scores the entries selected by ordinals (all entries when nil) and
// returns them best first. Equal scores keep corpus order.
func (e *Engine) rank(gen *generation, query string, ordinals []int) []model.Result {
	pattern := e.compile(query)

	results := []model.Result{}
	consider := func(i int) {
		ent := &gen.entries[i]
		score, matches, ok := ent.score(pattern)
		if !ok {
			return
		}
		results = append(results, model.Result{
			Document: ent.doc,
			Score:    score,
			Matches:  matches,
		})
	}

	if ordinals == nil {
		for i := range gen.entries {
			consider(i)
		}
	} else {
		for _, i := range ordinals {
			consider(i)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	})
	return results
}

// Search returns up to limit results for query, best match first, with
// snippets and highlights. A blank query or an unavailable corpus yields
// no results.
func (e *Engine) Search(ctx context.Context, query string, limit int) []model.Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Result{}
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	gen, release := e.snapshot(ctx)
	defer release()
	if gen == nil || ctx.Err() != nil {
		return []model.Result{}
	}

	results := e.rank(gen, query, nil)
	if len(results) > limit {
		results = results[:limit]
	}

	for i := range results {
		r := &results[i]
		r.Snippet = snippet(r.Document.Content, query, e.opts.SnippetRadius, e.opts.Ellipsis)
		r.Highlights = make([]model.Highlight, 0, len(r.Matches))
		for _, m := range r.Matches {
			r.Highlights = append(r.Highlights, highlight(m, e.opts.HighlightPre, e.opts.HighlightPost))
		}
	}

	logger.Debug("Search %q: %d results", query, len(results))
	return results
}

// SearchBySection ranks only documents whose section equals section.
// Results carry matches but no snippet or highlights, and are not capped.
func (e *Engine) SearchBySection(ctx context.Context, section, query string) []model.Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Result{}
	}

	gen, release := e.snapshot(ctx)
	defer release()
	if gen == nil {
		return []model.Result{}
	}

	ordinals, err := gen.facets.Section(section)
	if err != nil {
		logger.Debug("Section lookup %q failed: %v", section, err)
		return []model.Result{}
	}
	if len(ordinals) == 0 {
		return []model.Result{}
	}
	return e.rank(gen, query, ordinals)
}

// SearchByTags returns every document carrying any of tags, in corpus order
func (e *Engine) SearchByTags(ctx context.Context, tags []string) []model.Document {
	gen, release := e.snapshot(ctx)
	defer release()
	if gen == nil {
		return []model.Document{}
	}

	ordinals, err := gen.facets.Tags(tags)
	if err != nil {
		logger.Debug("Tag lookup %v failed: %v", tags, err)
		return []model.Document{}
	}
	return gen.documents(ordinals)
}

// Suggestions returns distinct titles and tags containing partial,
// case-insensitively, in corpus order
func (e *Engine) Suggestions(ctx context.Context, partial string, limit int) []string {
	if limit < 1 {
		limit = DefaultSuggestionLimit
	}
	needle := strings.ToLower(strings.TrimSpace(partial))
	if needle == "" {
		return []string{}
	}

	gen, release := e.snapshot(ctx)
	defer release()
	if gen == nil {
		return []string{}
	}

	seen := make(map[string]bool)
	suggestions := []string{}
	add := func(s string) bool {
		if s == "" || seen[s] || !strings.Contains(strings.ToLower(s), needle) {
			return false
		}
		seen[s] = true
		suggestions = append(suggestions, s)
		return len(suggestions) >= limit
	}

	for _, ent := range gen.entries {
		if add(ent.doc.Title) {
			return suggestions
		}
		for _, tag := range ent.doc.Tags {
			if add(tag) {
				return suggestions
			}
		}
	}
	return suggestions
}

// RecentDocuments returns up to limit documents, newest first. Documents
// without a parseable date sort last.
func (e *Engine) RecentDocuments(ctx context.Context, limit int) []model.Document {
	if limit < 1 {
		limit = DefaultRecentLimit
	}

	gen, release := e.snapshot(ctx)
	defer release()
	if gen == nil {
		return []model.Document{}
	}

	type dated struct {
		doc model.Document
		t   time.Time
		ok  bool
	}
	docs := make([]dated, len(gen.entries))
	for i, ent := range gen.entries {
		t, ok := ent.doc.Time()
		docs[i] = dated{doc: ent.doc, t: t, ok: ok}
	}

	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i], docs[j]
		if a.ok != b.ok {
			return a.ok
		}
		return a.t.After(b.t)
	})

	n := min(limit, len(docs))
	recent := make([]model.Document, n)
	for i := 0; i < n; i++ {
		recent[i] = docs[i].doc
	}
	return recent
}

// RelatedDocuments returns up to limit other documents sharing tags with
// the document id, most shared tags first
func (e *Engine) RelatedDocuments(ctx context.Context, id string, limit int) []model.Document {
	if limit < 1 {
		limit = DefaultRelatedLimit
	}

	gen, release := e.snapshot(ctx)
	defer release()
	if gen == nil {
		return []model.Document{}
	}

	target := -1
	for i, ent := range gen.entries {
		if ent.doc.ID == id {
			target = i
			break
		}
	}
	if target < 0 {
		return []model.Document{}
	}
	ref := gen.entries[target].doc

	type scored struct {
		doc    model.Document
		shared int
	}
	var candidates []scored
	for i, ent := range gen.entries {
		if i == target || ent.doc.ID == ref.ID {
			continue
		}
		if shared := ref.SharedTags(ent.doc); shared > 0 {
			candidates = append(candidates, scored{doc: ent.doc, shared: shared})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].shared > candidates[j].shared
	})

	n := min(limit, len(candidates))
	related := make([]model.Document, n)
	for i := 0; i < n; i++ {
		related[i] = candidates[i].doc
	}
	return related
}

// DocumentCount returns the size of the loaded corpus, 0 when unavailable
func (e *Engine) DocumentCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.gen == nil {
		return 0
	}
	return e.gen.count()
}

// Document looks up a document by id
func (e *Engine) Document(ctx context.Context, id string) (model.Document, bool) {
	gen, release := e.snapshot(ctx)
	defer release()
	if gen == nil {
		return model.Document{}, false
	}
	for _, ent := range gen.entries {
		if ent.doc.ID == id {
			return ent.doc, true
		}
	}
	return model.Document{}, false
}

func (g *generation) documents(ordinals []int) []model.Document {
	docs := make([]model.Document, 0, len(ordinals))
	for _, i := range ordinals {
		if i >= 0 && i < len(g.entries) {
			docs = append(docs, g.entries[i].doc)
		}
	}
	return docs
}
