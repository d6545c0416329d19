package index

import (
	"reflect"
	"testing"

	"github.com/igusev/sitefind/internal/model"
)

func testCorpus() []model.Document {
	return []model.Document{
		{ID: "1", Section: "blog", Tags: []string{"ai", "go"}},
		{ID: "2", Section: "project", Tags: []string{"react"}},
		{ID: "3", Section: "blog", Tags: []string{"AI"}},
		{ID: "4", Section: "project", Tags: []string{"ai", "react"}},
		{ID: "5", Section: "blog/archive", Tags: nil},
	}
}

func TestNewFacetIndex(t *testing.T) {
	fi, err := NewFacetIndex(testCorpus())
	if err != nil {
		t.Fatalf("NewFacetIndex() error = %v", err)
	}
	defer fi.Close()

	count, err := fi.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 5 {
		t.Errorf("Count() = %d, want 5", count)
	}
}

func TestFacetIndex_Section(t *testing.T) {
	fi, err := NewFacetIndex(testCorpus())
	if err != nil {
		t.Fatalf("NewFacetIndex() error = %v", err)
	}
	defer fi.Close()

	tests := []struct {
		name    string
		section string
		want    []int
	}{
		{name: "blog", section: "blog", want: []int{0, 2}},
		{name: "project", section: "project", want: []int{1, 3}},
		{name: "no prefix matching", section: "blog/archive", want: []int{4}},
		{name: "case sensitive", section: "Blog", want: []int{}},
		{name: "empty", section: "", want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fi.Section(tt.section)
			if err != nil {
				t.Fatalf("Section(%q) error = %v", tt.section, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Section(%q) = %v, want %v", tt.section, got, tt.want)
			}
		})
	}
}

func TestFacetIndex_Tags(t *testing.T) {
	fi, err := NewFacetIndex(testCorpus())
	if err != nil {
		t.Fatalf("NewFacetIndex() error = %v", err)
	}
	defer fi.Close()

	tests := []struct {
		name string
		tags []string
		want []int
	}{
		{name: "single tag", tags: []string{"ai"}, want: []int{0, 3}},
		{name: "union in corpus order", tags: []string{"react", "go"}, want: []int{0, 1, 3}},
		{name: "exact case", tags: []string{"AI"}, want: []int{2}},
		{name: "unknown", tags: []string{"rust"}, want: []int{}},
		{name: "blank tags ignored", tags: []string{"", "  "}, want: []int{}},
		{name: "nil", tags: nil, want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fi.Tags(tt.tags)
			if err != nil {
				t.Fatalf("Tags(%v) error = %v", tt.tags, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tags(%v) = %v, want %v", tt.tags, got, tt.want)
			}
		})
	}
}

func TestFacetIndex_Empty(t *testing.T) {
	fi, err := NewFacetIndex(nil)
	if err != nil {
		t.Fatalf("NewFacetIndex(nil) error = %v", err)
	}
	defer fi.Close()

	got, err := fi.Section("blog")
	if err != nil {
		t.Fatalf("Section() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no hits on empty index, got %v", got)
	}
}
