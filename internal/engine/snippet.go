package engine

import (
	"sort"
	"strings"

	"github.com/igusev/sitefind/internal/fuzzy"
	"github.com/igusev/sitefind/internal/model"
)

// snippet cuts a window of radius runes either side of the first
// case-insensitive occurrence of query in content. Without a literal
// occurrence it falls back to the first 2*radius runes.
func snippet(content, query string, radius int, ellipsis string) string {
	if content == "" {
		return ""
	}

	runes := []rune(content)
	q := fuzzy.Lower(query)
	idx := indexFold(fuzzy.Lower(content), q)

	if idx < 0 {
		n := min(len(runes), 2*radius)
		return string(runes[:n]) + ellipsis
	}

	start := max(0, idx-radius)
	end := min(len(runes), idx+len(q)+radius)

	var b strings.Builder
	if start > 0 {
		b.WriteString(ellipsis)
	}
	b.WriteString(string(runes[start:end]))
	if end < len(runes) {
		b.WriteString(ellipsis)
	}
	return b.String()
}

func indexFold(text, pattern []rune) int {
	if len(pattern) == 0 {
		return -1
	}
outer:
	for i := 0; i+len(pattern) <= len(text); i++ {
		for j, r := range pattern {
			if text[i+j] != r {
				continue outer
			}
		}
		return i
	}
	return -1
}

// highlight wraps each matched range of m.Value in pre/post markers.
// Ranges are spliced from the last to the first so earlier offsets stay valid.
func highlight(m model.Match, pre, post string) model.Highlight {
	runes := []rune(m.Value)
	ranges := mergeRanges(m.Ranges, len(runes))

	out := runes
	for i := len(ranges) - 1; i >= 0; i-- {
		r := ranges[i]
		spliced := make([]rune, 0, len(out)+len(pre)+len(post))
		spliced = append(spliced, out[:r.Start]...)
		spliced = append(spliced, []rune(pre)...)
		spliced = append(spliced, out[r.Start:r.End+1]...)
		spliced = append(spliced, []rune(post)...)
		spliced = append(spliced, out[r.End+1:]...)
		out = spliced
	}

	return model.Highlight{
		Field: m.Field,
		Index: m.Index,
		Text:  string(out),
	}
}

// mergeRanges sorts ranges, clamps them to n runes and joins overlaps
func mergeRanges(ranges []model.Range, n int) []model.Range {
	sorted := make([]model.Range, 0, len(ranges))
	for _, r := range ranges {
		if r.Start < 0 || r.Start >= n || r.End < r.Start {
			continue
		}
		r.End = min(r.End, n-1)
		sorted = append(sorted, r)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var merged []model.Range
	for _, r := range sorted {
		if last := len(merged) - 1; last >= 0 && r.Start <= merged[last].End+1 {
			merged[last].End = max(merged[last].End, r.End)
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
