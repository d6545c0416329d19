package searchui

import (
	"fmt"

	"github.com/igusev/sitefind/internal/model"
)

// NoResultsHint accompanies the no-results notice
const NoResultsHint = "Try different keywords or check the spelling"

// Item is one rendered entry of the result or recent list
type Item struct {
	ID      string
	URL     string
	Section string
	// Title is the highlighted title when available
	Title         string
	Confidence    int
	HasConfidence bool
	Snippet       string
	Tags          []string
	Active        bool
}

// Notice is a message shown instead of a list
type Notice struct {
	Message string
	Hint    string
}

// ViewModel is everything a host needs to draw the overlay
type ViewModel struct {
	Open  bool
	State State
	Query string
	Focus Focus
	// ScrollLocked and FocusTrapped hold while the overlay is open
	ScrollLocked bool
	FocusTrapped bool
	// Loading is true until the engine reports its load outcome
	Loading bool

	Items  []Item
	Recent bool
	Active int
	Status string

	// Empty is set when a query produced no results
	Empty *Notice
	// Unavailable is set when the index failed to load
	Unavailable string
	// Error is set when the last query was abandoned
	Error string
}

// View renders the current state
func (c *Controller) View() ViewModel {
	vm := ViewModel{
		Open:         c.state != Closed,
		State:        c.state,
		Query:        c.query,
		Focus:        c.focus,
		ScrollLocked: c.state != Closed,
		FocusTrapped: c.state != Closed,
		Active:       c.active,
	}
	if !vm.Open {
		return vm
	}

	vm.Loading = !c.ready
	if c.unavailable != nil {
		vm.Unavailable = fmt.Sprintf("Search is unavailable: %v", c.unavailable)
		return vm
	}

	if c.showingRecent() {
		vm.Recent = true
		vm.Items = make([]Item, len(c.recent))
		for i, doc := range c.recent {
			vm.Items[i] = documentItem(doc)
			vm.Items[i].Active = i == c.active
		}
		return vm
	}

	vm.Items = make([]Item, len(c.results))
	for i, r := range c.results {
		vm.Items[i] = resultItem(r)
		vm.Items[i].Active = i == c.active
	}

	if c.state == OpenResults {
		switch {
		case c.queryErr != nil:
			vm.Error = c.queryErr.Error()
		case len(c.results) == 0:
			vm.Empty = &Notice{
				Message: fmt.Sprintf("No results for «%s»", c.shown),
				Hint:    NoResultsHint,
			}
		default:
			vm.Status = StatusMessage(len(c.results), c.shown)
		}
	}
	return vm
}

// StatusMessage is the result count announcement
func StatusMessage(n int, query string) string {
	if n == 1 {
		return fmt.Sprintf("1 result for «%s»", query)
	}
	return fmt.Sprintf("%d results for «%s»", n, query)
}

func resultItem(r model.Result) Item {
	item := documentItem(r.Document)
	item.Title = r.HighlightedTitle()
	item.Confidence = r.Confidence()
	item.HasConfidence = true
	item.Snippet = r.Snippet
	return item
}

func documentItem(doc model.Document) Item {
	return Item{
		ID:      doc.ID,
		URL:     doc.URL,
		Section: doc.Section,
		Title:   doc.Title,
		Snippet: doc.Description,
		Tags:    doc.Tags,
	}
}
