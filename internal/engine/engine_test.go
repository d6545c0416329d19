package engine

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igusev/sitefind/internal/model"
	"github.com/igusev/sitefind/internal/source"
)

// countingSource serves a corpus and counts fetches
type countingSource struct {
	mu      sync.Mutex
	data    []byte
	err     error
	delay   time.Duration
	fetches int32
}

func newCountingSource(t *testing.T, docs []model.Document) *countingSource {
	t.Helper()
	s := &countingSource{}
	s.set(t, docs)
	return s
}

func (s *countingSource) set(t *testing.T, docs []model.Document) {
	t.Helper()
	data, err := json.Marshal(docs)
	require.NoError(t, err)
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
}

func (s *countingSource) Fetch(ctx context.Context) (io.ReadCloser, error) {
	atomic.AddInt32(&s.fetches, 1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader(string(s.data))), nil
}

func (s *countingSource) String() string { return "test source" }

func (s *countingSource) count() int { return int(atomic.LoadInt32(&s.fetches)) }

func scenarioCorpus() []model.Document {
	return []model.Document{
		{
			ID:          "1",
			Title:       "React Dashboard",
			Section:     "project",
			Tags:        []string{"react", "dashboard"},
			Content:     "A modern dashboard built with React and TypeScript",
			Date:        "2024-01-01",
			Description: "",
			Categories:  []string{},
			URL:         "/p/1",
		},
		{
			ID:          "2",
			Title:       "Vue Blog",
			Section:     "project",
			Tags:        []string{"vue"},
			Content:     "A blog platform using Vue.js",
			Date:        "2024-02-01",
			Description: "",
			Categories:  []string{},
			URL:         "/p/2",
		},
	}
}

func mixedCorpus() []model.Document {
	return []model.Document{
		{ID: "a", Title: "Learning React", Section: "blog", Tags: []string{"react", "ai"}, Date: "2024-03-01", URL: "/blog/a/"},
		{ID: "b", Title: "React Native App", Section: "project", Tags: []string{"react", "mobile"}, Date: "2024-05-01", URL: "/projects/b/"},
		{ID: "c", Title: "Training Models", Section: "blog", Tags: []string{"ai", "python"}, Date: "2023-12-24", URL: "/blog/c/"},
		{ID: "d", Title: "Reactive Streams", Section: "blog", Tags: []string{"rx"}, Date: "2024-04-10", URL: "/blog/d/"},
		{ID: "e", Title: "Garden Notes", Section: "notes", Tags: []string{"life"}, Date: "not a date", URL: "/notes/e/"},
		{ID: "f", Title: "React and AI", Section: "blog", Tags: []string{"react", "ai", "python"}, Date: "2024-06-01", URL: "/blog/f/"},
	}
}

func newEngine(t *testing.T, docs []model.Document) *Engine {
	t.Helper()
	e := New(newCountingSource(t, docs), DefaultOptions())
	require.NoError(t, e.Initialize(context.Background()))
	t.Cleanup(func() { e.Close() })
	return e
}

func ids(docs []model.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func resultIDs(results []model.Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Document.ID
	}
	return out
}

func TestInitialize_Concurrent(t *testing.T) {
	src := newCountingSource(t, scenarioCorpus())
	src.delay = 50 * time.Millisecond
	e := New(src, DefaultOptions())
	defer e.Close()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = e.Initialize(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, src.count())
	assert.True(t, e.Ready())
	assert.Equal(t, 2, e.DocumentCount())
}

func TestInitialize_Idempotent(t *testing.T) {
	src := newCountingSource(t, scenarioCorpus())
	e := New(src, DefaultOptions())
	defer e.Close()

	require.NoError(t, e.Initialize(context.Background()))
	require.NoError(t, e.Initialize(context.Background()))
	assert.Equal(t, 1, src.count())
}

func TestInitialize_LazyOnFirstQuery(t *testing.T) {
	src := newCountingSource(t, scenarioCorpus())
	e := New(src, DefaultOptions())
	defer e.Close()

	assert.False(t, e.Ready())
	results := e.Search(context.Background(), "react", 10)
	assert.Len(t, results, 1)
	assert.Equal(t, 1, src.count())
}

func TestInitialize_FetchFailure(t *testing.T) {
	src := newCountingSource(t, nil)
	src.err = errors.New("connection refused")
	e := New(src, DefaultOptions())

	err := e.Initialize(context.Background())
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "test source", loadErr.Source)
	assert.Contains(t, err.Error(), "connection refused")
	assert.False(t, e.Ready())
	assert.Equal(t, err, e.Err())

	// Query methods never fail and do not refetch after a failed load
	ctx := context.Background()
	assert.Empty(t, e.Search(ctx, "react", 10))
	assert.Empty(t, e.SearchBySection(ctx, "blog", "react"))
	assert.Empty(t, e.SearchByTags(ctx, []string{"react"}))
	assert.Empty(t, e.Suggestions(ctx, "re", 5))
	assert.Empty(t, e.RecentDocuments(ctx, 5))
	assert.Empty(t, e.RelatedDocuments(ctx, "1", 3))
	assert.Equal(t, 0, e.DocumentCount())
	assert.Equal(t, 1, src.count())

	// An explicit Initialize retries
	src.mu.Lock()
	src.err = nil
	src.mu.Unlock()
	src.set(t, scenarioCorpus())
	require.NoError(t, e.Initialize(ctx))
	assert.Equal(t, 2, src.count())
	assert.NoError(t, e.Err())
	assert.Len(t, e.Search(ctx, "react", 10), 1)
	e.Close()
}

func TestInitialize_ParseFailure(t *testing.T) {
	e := New(source.Static(`{"not": "an array"}`), DefaultOptions())

	err := e.Initialize(context.Background())
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, model.ErrNotArray)
}

func TestInitialize_Timeout(t *testing.T) {
	src := newCountingSource(t, scenarioCorpus())
	src.delay = time.Second
	opts := DefaultOptions()
	opts.LoadTimeout = 20 * time.Millisecond
	e := New(src, opts)

	err := e.Initialize(context.Background())
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "timed out")
}

func TestInitialize_CallerCancelNotLatched(t *testing.T) {
	src := newCountingSource(t, scenarioCorpus())
	e := New(src, DefaultOptions())
	defer e.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Empty(t, e.Search(ctx, "react", 10))
	assert.NoError(t, e.Err())

	assert.Len(t, e.Search(context.Background(), "react", 10), 1)
}

func TestInitialize_SkipsMalformedEntries(t *testing.T) {
	data := `[{"id":"1","title":"React Dashboard","tags":["react"]}, 42, {"id":"2","title":["bad"]}, {"id":"3","title":"Go Tips","extra":{"ignored":true}}]`
	e := New(source.Static(data), DefaultOptions())
	defer e.Close()

	require.NoError(t, e.Initialize(context.Background()))
	assert.Equal(t, 2, e.DocumentCount())
}

func TestSearch_EmptyQuery(t *testing.T) {
	e := newEngine(t, scenarioCorpus())

	for _, q := range []string{"", "   ", "\t\n"} {
		results := e.Search(context.Background(), q, 10)
		assert.NotNil(t, results)
		assert.Empty(t, results, "query %q", q)
	}
}

func TestSearch_EndToEnd(t *testing.T) {
	e := newEngine(t, scenarioCorpus())

	results := e.Search(context.Background(), "react", 10)
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].Document.ID)
	assert.Contains(t, results[0].Snippet, "React")
	assert.Equal(t, "<mark>React</mark> Dashboard", results[0].HighlightedTitle())
	assert.GreaterOrEqual(t, results[0].Score, 0.0)
	assert.LessOrEqual(t, results[0].Score, 1.0)
}

func TestSearch_LimitHonored(t *testing.T) {
	var docs []model.Document
	for i := 0; i < 15; i++ {
		docs = append(docs, model.Document{ID: string(rune('a' + i)), Title: "Go notes"})
	}
	e := newEngine(t, docs)

	for _, limit := range []int{1, 5, 10} {
		assert.Len(t, e.Search(context.Background(), "notes", limit), limit)
	}
	assert.Len(t, e.Search(context.Background(), "notes", 0), DefaultLimit)
}

func TestSearch_ScoreOrdering(t *testing.T) {
	e := newEngine(t, mixedCorpus())

	results := e.Search(context.Background(), "react", 10)
	require.GreaterOrEqual(t, len(results), 2)
	assert.True(t, sort.SliceIsSorted(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	}))
	assert.NotContains(t, resultIDs(results), "c")
	assert.NotContains(t, resultIDs(results), "e")
}

func TestSearch_TiesKeepCorpusOrder(t *testing.T) {
	docs := []model.Document{
		{ID: "x", Title: "Kubernetes Guide"},
		{ID: "y", Title: "Kubernetes Guide"},
		{ID: "z", Title: "Kubernetes Guide"},
	}
	e := newEngine(t, docs)

	results := e.Search(context.Background(), "kubernetes", 10)
	assert.Equal(t, []string{"x", "y", "z"}, resultIDs(results))
}

func TestSearch_ExactTitleFirst(t *testing.T) {
	docs := []model.Document{
		{ID: "long", Title: "Notes about golang tooling and more"},
		{ID: "exact", Title: "Golang"},
	}
	e := newEngine(t, docs)

	results := e.Search(context.Background(), "golang", 10)
	require.Len(t, results, 2)
	assert.Equal(t, "exact", results[0].Document.ID)
}

func TestSearch_TypoTolerance(t *testing.T) {
	e := newEngine(t, scenarioCorpus())

	results := e.Search(context.Background(), "reakt", 10)
	require.NotEmpty(t, results)
	assert.Equal(t, "1", results[0].Document.ID)
}

func TestSearch_ArrayFieldMatches(t *testing.T) {
	e := newEngine(t, scenarioCorpus())

	results := e.Search(context.Background(), "dashboard", 10)
	require.Len(t, results, 1)

	var tagMatch *model.Match
	for i, m := range results[0].Matches {
		if m.Field == model.FieldTags {
			tagMatch = &results[0].Matches[i]
		}
	}
	require.NotNil(t, tagMatch)
	assert.Equal(t, 1, tagMatch.Index)
	assert.Equal(t, "dashboard", tagMatch.Value)
}

func TestSearchBySection(t *testing.T) {
	e := newEngine(t, mixedCorpus())

	results := e.SearchBySection(context.Background(), "blog", "react")
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Equal(t, "blog", r.Document.Section)
		// Section search does not enrich results
		assert.Empty(t, r.Snippet)
		assert.Empty(t, r.Highlights)
		assert.NotEmpty(t, r.Matches)
	}
	assert.NotContains(t, resultIDs(results), "b")

	assert.Empty(t, e.SearchBySection(context.Background(), "missing", "react"))
	assert.Empty(t, e.SearchBySection(context.Background(), "blog", " "))
}

func TestSearchByTags(t *testing.T) {
	e := newEngine(t, mixedCorpus())
	ctx := context.Background()

	assert.Equal(t, []string{"a", "c", "f"}, ids(e.SearchByTags(ctx, []string{"ai"})))
	assert.Equal(t, []string{"c", "d", "f"}, ids(e.SearchByTags(ctx, []string{"rx", "python"})))
	assert.Empty(t, e.SearchByTags(ctx, []string{"AI"}))
	assert.Empty(t, e.SearchByTags(ctx, nil))
}

func TestSuggestions(t *testing.T) {
	e := newEngine(t, mixedCorpus())
	ctx := context.Background()

	assert.Equal(t,
		[]string{"Learning React", "react", "React Native App", "Reactive Streams", "React and AI"},
		e.Suggestions(ctx, "REACT", 5))
	assert.Equal(t, []string{"Learning React", "react"}, e.Suggestions(ctx, "react", 2))
	assert.Equal(t, []string{"python"}, e.Suggestions(ctx, "pyth", 5))
	assert.Empty(t, e.Suggestions(ctx, "  ", 5))
	assert.Len(t, e.Suggestions(ctx, "a", 0), DefaultSuggestionLimit)
}

func TestRecentDocuments(t *testing.T) {
	e := newEngine(t, mixedCorpus())
	ctx := context.Background()

	assert.Equal(t, []string{"f", "b", "d"}, ids(e.RecentDocuments(ctx, 3)))
	assert.Equal(t, []string{"f", "b", "d", "a", "c", "e"}, ids(e.RecentDocuments(ctx, 10)))
	assert.Len(t, e.RecentDocuments(ctx, 0), DefaultRecentLimit)
}

func TestRelatedDocuments(t *testing.T) {
	e := newEngine(t, mixedCorpus())
	ctx := context.Background()

	// f shares react+ai with a, ai+python with c, react with b
	related := ids(e.RelatedDocuments(ctx, "f", 3))
	assert.Equal(t, []string{"a", "c", "b"}, related)
	assert.NotContains(t, related, "f")

	assert.Equal(t, []string{"a"}, ids(e.RelatedDocuments(ctx, "f", 1)))
	assert.Empty(t, e.RelatedDocuments(ctx, "e", 3))
	assert.Empty(t, e.RelatedDocuments(ctx, "missing", 3))
}

func TestDocument(t *testing.T) {
	e := newEngine(t, mixedCorpus())

	doc, ok := e.Document(context.Background(), "d")
	require.True(t, ok)
	assert.Equal(t, "Reactive Streams", doc.Title)

	_, ok = e.Document(context.Background(), "zz")
	assert.False(t, ok)
}

func TestReload(t *testing.T) {
	src := newCountingSource(t, scenarioCorpus())
	e := New(src, DefaultOptions())
	defer e.Close()
	ctx := context.Background()

	require.NoError(t, e.Initialize(ctx))
	assert.Equal(t, 2, e.DocumentCount())

	src.set(t, mixedCorpus())
	require.NoError(t, e.Reload(ctx))
	assert.Equal(t, 6, e.DocumentCount())
	assert.Equal(t, []string{"a", "c", "f"}, ids(e.SearchByTags(ctx, []string{"ai"})))

	// A failed reload keeps the previous corpus
	src.mu.Lock()
	src.err = errors.New("gone")
	src.mu.Unlock()
	require.Error(t, e.Reload(ctx))
	assert.Equal(t, 6, e.DocumentCount())
}

func TestStripMarkdown(t *testing.T) {
	docs := []model.Document{
		{ID: "1", Title: "Notes", Content: "Built with **React** and [hooks](https://react.dev)"},
	}
	opts := DefaultOptions()
	opts.StripMarkdown = true
	e := New(newCountingSource(t, docs), opts)
	defer e.Close()

	results := e.Search(context.Background(), "react", 10)
	require.Len(t, results, 1)
	assert.Equal(t, "Built with React and hooks", results[0].Document.Content)
}

func TestConcurrentQueries(t *testing.T) {
	e := newEngine(t, mixedCorpus())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				assert.NotEmpty(t, e.Search(context.Background(), "react", 10))
			} else {
				assert.NotEmpty(t, e.SearchBySection(context.Background(), "blog", "react"))
			}
		}(i)
	}
	wg.Wait()
}
