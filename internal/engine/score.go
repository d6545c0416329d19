package engine

import (
	"math"
	"strings"

	"github.com/igusev/sitefind/internal/fuzzy"
	"github.com/igusev/sitefind/internal/model"
)

// epsilon replaces an exact score of 0 so it still contributes to the product
const epsilon = 2.220446049250313e-16

// fieldWeights are the relative importance of each searchable field
var fieldWeights = normalizeWeights([]weightedField{
	{model.FieldTitle, 0.4},
	{model.FieldDescription, 0.3},
	{model.FieldContent, 0.2},
	{model.FieldTags, 0.05},
	{model.FieldCategories, 0.05},
})

type weightedField struct {
	name   string
	weight float64
}

func normalizeWeights(fields []weightedField) map[string]float64 {
	var total float64
	for _, f := range fields {
		total += f.weight
	}
	weights := make(map[string]float64, len(fields))
	for _, f := range fields {
		weights[f.name] = f.weight / total
	}
	return weights
}

// fieldValue is one searchable string of a document, prepared once per load
type fieldValue struct {
	field string
	index int // element index for list fields, -1 otherwise
	value string
	lower []rune
	// weight already multiplied by the value's length norm
	exponent float64
}

// entry is a document with its prepared field values
type entry struct {
	doc    model.Document
	values []fieldValue
}

func newEntry(doc model.Document) entry {
	e := entry{doc: doc}
	e.addText(model.FieldTitle, doc.Title)
	e.addText(model.FieldDescription, doc.Description)
	e.addText(model.FieldContent, doc.Content)
	e.addList(model.FieldTags, doc.Tags)
	e.addList(model.FieldCategories, doc.Categories)
	return e
}

func (e *entry) addText(field, value string) {
	e.add(field, -1, value)
}

func (e *entry) addList(field string, values []string) {
	for i, v := range values {
		e.add(field, i, v)
	}
}

func (e *entry) add(field string, index int, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	e.values = append(e.values, fieldValue{
		field:    field,
		index:    index,
		value:    value,
		lower:    fuzzy.Lower(value),
		exponent: fieldWeights[field] * lengthNorm(value),
	})
}

// lengthNorm favours short values: 1/sqrt(token count), rounded to 3 places
func lengthNorm(value string) float64 {
	tokens := 0
	for _, t := range strings.Split(value, " ") {
		if t != "" {
			tokens++
		}
	}
	if tokens == 0 {
		return 1
	}
	return math.Round(1/math.Sqrt(float64(tokens))*1000) / 1000
}

// score matches every prepared value of e against pattern. The document
// score is the product of value scores raised to their weighted norms.
// ok is false when no value matched.
func (e *entry) score(pattern *fuzzy.Pattern) (score float64, matches []model.Match, ok bool) {
	score = 1
	for _, v := range e.values {
		res := pattern.MatchLower(v.lower)
		if !res.IsMatch {
			continue
		}

		s := res.Score
		if s == 0 {
			s = epsilon
		}
		score *= math.Pow(s, v.exponent)

		ranges := make([]model.Range, len(res.Indices))
		for i, r := range res.Indices {
			ranges[i] = model.Range{Start: r.Start, End: r.End}
		}
		matches = append(matches, model.Match{
			Field:  v.field,
			Index:  v.index,
			Value:  v.value,
			Ranges: ranges,
		})
	}
	return score, matches, len(matches) > 0
}
