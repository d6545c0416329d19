// Package searchui is the interactive search overlay as a pure state
// machine. A host (terminal UI, web bridge) feeds it input, keys and
// engine responses, and renders the ViewModel it produces.
package searchui

// State of the overlay
type State int

const (
	Closed State = iota
	// OpenEmpty shows recent documents, no query typed
	OpenEmpty
	// OpenQuerying has a debounce ticket or engine request outstanding
	OpenQuerying
	// OpenResults shows the results of the latest query
	OpenResults
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case OpenEmpty:
		return "open-empty"
	case OpenQuerying:
		return "open-querying"
	case OpenResults:
		return "open-results"
	}
	return "unknown"
}

// Trigger is the control that opened the overlay. Focus returns to it on close.
type Trigger int

const (
	TriggerNone Trigger = iota
	TriggerButton
	TriggerShortcut
)

// Focus is the focused element inside the overlay
type Focus int

const (
	FocusNone Focus = iota
	FocusInput
	FocusResults
	FocusClose
)

func (f Focus) String() string {
	switch f {
	case FocusInput:
		return "input"
	case FocusResults:
		return "results"
	case FocusClose:
		return "close"
	}
	return "none"
}

// Key is a navigation key the overlay reacts to
type Key int

const (
	KeyShortcut Key = iota
	KeyEscape
	KeyUp
	KeyDown
	KeyEnter
	KeyTab
	KeyShiftTab
)

// Effect tells the host what a key or pointer event did
type Effect struct {
	// Handled is true when the host should not process the event further
	Handled bool
	Opened  bool
	Closed  bool
	// Restore is the trigger to refocus after a close
	Restore Trigger
	// Navigate is the URL to visit, if any
	Navigate string
}
