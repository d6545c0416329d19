package searchui

import (
	"context"
	"strings"
	"time"

	"github.com/igusev/sitefind/internal/engine"
	"github.com/igusev/sitefind/internal/model"
)

// Searcher runs a ranked query. *engine.Engine satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) []model.Result
}

// Options configures the overlay
type Options struct {
	Limit    int
	Debounce time.Duration
}

// DefaultOptions returns 10 results and a 200ms debounce
func DefaultOptions() Options {
	return Options{
		Limit:    engine.DefaultLimit,
		Debounce: 200 * time.Millisecond,
	}
}

// Ticket asks the host to call Fire(Seq) after Delay. Earlier tickets are
// invalidated by later ones, so the host can simply let stale timers fire.
type Ticket struct {
	Seq   uint64
	Query string
	Delay time.Duration
}

// Request is a query ready to be sent to the engine
type Request struct {
	Seq   uint64
	Query string
	Limit int
}

// Response carries engine results back to the controller
type Response struct {
	Seq     uint64
	Query   string
	Results []model.Result
	Err     error
}

// Execute runs req against s. It may be called from any goroutine.
// A context that ends before the engine answers yields a *engine.QueryError.
func Execute(ctx context.Context, s Searcher, req Request) Response {
	resp := Response{Seq: req.Seq, Query: req.Query}
	if err := ctx.Err(); err != nil {
		resp.Err = &engine.QueryError{Query: req.Query, Err: err}
		return resp
	}

	results := s.Search(ctx, req.Query, req.Limit)
	if err := ctx.Err(); err != nil {
		resp.Err = &engine.QueryError{Query: req.Query, Err: err}
		return resp
	}
	resp.Results = results
	return resp
}

// Controller owns the overlay state. It is not safe for concurrent use;
// the host's event loop owns it and hands Requests to Execute.
type Controller struct {
	opts Options

	state   State
	query   string
	shown   string // query the current results belong to
	results []model.Result
	recent  []model.Document
	active  int
	focus   Focus
	trigger Trigger

	seq        uint64 // last issued ticket
	pending    uint64 // ticket awaiting its debounce, 0 if none
	dispatched uint64 // request awaiting its response, 0 if none

	ready       bool
	unavailable error
	queryErr    error
}

// New creates a closed overlay
func New(opts Options) *Controller {
	def := DefaultOptions()
	if opts.Limit < 1 {
		opts.Limit = def.Limit
	}
	if opts.Debounce < 0 {
		opts.Debounce = def.Debounce
	}
	return &Controller{opts: opts}
}

// Ready records the engine's load outcome. A non-nil err puts the overlay
// in the unavailable state, which is distinct from zero results.
func (c *Controller) Ready(recent []model.Document, err error) {
	c.ready = true
	c.unavailable = err
	if err != nil {
		c.recent = nil
		return
	}
	c.recent = recent
	c.clampActive()
}

// Open shows the overlay with focus on the input. It returns false when
// the overlay was already open.
func (c *Controller) Open(t Trigger) bool {
	if c.state != Closed {
		return false
	}
	c.state = OpenEmpty
	c.focus = FocusInput
	c.trigger = t
	c.active = 0
	return true
}

// Close hides the overlay, drops the query, results and any outstanding
// ticket or request, and returns the trigger that opened it.
func (c *Controller) Close() Trigger {
	if c.state == Closed {
		return TriggerNone
	}
	t := c.trigger

	c.state = Closed
	c.query = ""
	c.shown = ""
	c.results = nil
	c.active = 0
	c.focus = FocusNone
	c.trigger = TriggerNone
	c.pending = 0
	c.dispatched = 0
	c.queryErr = nil
	return t
}

// Input records the query field value. A non-blank value returns a debounce
// ticket; a blank one returns to the recent documents view.
func (c *Controller) Input(value string) (Ticket, bool) {
	if c.state == Closed {
		return Ticket{}, false
	}

	c.query = value
	c.seq++
	c.pending = 0
	c.dispatched = 0

	trimmed := strings.TrimSpace(value)
	if trimmed == "" || c.unavailable != nil {
		c.state = OpenEmpty
		c.results = nil
		c.shown = ""
		c.queryErr = nil
		c.active = 0
		return Ticket{}, false
	}

	c.state = OpenQuerying
	c.pending = c.seq
	return Ticket{Seq: c.seq, Query: trimmed, Delay: c.opts.Debounce}, true
}

// Fire turns the ticket seq into a Request when it is still the latest
// one and the overlay is open
func (c *Controller) Fire(seq uint64) (Request, bool) {
	if c.state == Closed || c.pending == 0 || seq != c.pending {
		return Request{}, false
	}
	c.pending = 0
	c.dispatched = seq
	return Request{
		Seq:   seq,
		Query: strings.TrimSpace(c.query),
		Limit: c.opts.Limit,
	}, true
}

// Apply renders resp if it answers the latest dispatched request of an
// open overlay. It returns false for stale or late responses.
func (c *Controller) Apply(resp Response) bool {
	if c.state == Closed || c.dispatched == 0 || resp.Seq != c.dispatched {
		return false
	}
	c.dispatched = 0
	c.state = OpenResults
	c.shown = resp.Query
	c.active = 0
	c.queryErr = resp.Err
	if resp.Err != nil {
		c.results = nil
	} else {
		c.results = resp.Results
	}
	if c.focus == FocusResults && len(c.results) == 0 {
		c.focus = FocusInput
	}
	return true
}

// HandleKey applies a navigation key
func (c *Controller) HandleKey(k Key) Effect {
	if k == KeyShortcut {
		// The shortcut is always swallowed; it never reopens an open overlay
		return Effect{Handled: true, Opened: c.Open(TriggerShortcut)}
	}
	if c.state == Closed {
		return Effect{}
	}

	switch k {
	case KeyEscape:
		return c.closeEffect()

	case KeyDown:
		c.move(1)
		return Effect{Handled: true}

	case KeyUp:
		c.move(-1)
		return Effect{Handled: true}

	case KeyEnter:
		if c.focus == FocusClose {
			return c.closeEffect()
		}
		if url, ok := c.activeURL(); ok {
			return Effect{Handled: true, Navigate: url}
		}
		return Effect{Handled: true}

	case KeyTab:
		c.cycleFocus(1)
		return Effect{Handled: true}

	case KeyShiftTab:
		c.cycleFocus(-1)
		return Effect{Handled: true}
	}
	return Effect{}
}

// PointerDown closes the overlay for presses outside its content
func (c *Controller) PointerDown(inside bool) Effect {
	if c.state == Closed || inside {
		return Effect{}
	}
	return c.closeEffect()
}

// Select makes item i active, e.g. on hover or click
func (c *Controller) Select(i int) bool {
	if i < 0 || i >= c.itemCount() {
		return false
	}
	c.active = i
	return true
}

func (c *Controller) closeEffect() Effect {
	return Effect{Handled: true, Closed: true, Restore: c.Close()}
}

// move shifts the active item circularly
func (c *Controller) move(delta int) {
	n := c.itemCount()
	if n == 0 {
		return
	}
	c.active = ((c.active+delta)%n + n) % n
}

// cycleFocus moves focus among the overlay's focusable elements only
func (c *Controller) cycleFocus(delta int) {
	order := []Focus{FocusInput}
	if c.itemCount() > 0 {
		order = append(order, FocusResults)
	}
	order = append(order, FocusClose)

	cur := 0
	for i, f := range order {
		if f == c.focus {
			cur = i
			break
		}
	}
	n := len(order)
	c.focus = order[((cur+delta)%n+n)%n]
}

// showingRecent reports whether the list holds recent documents rather
// than query results
func (c *Controller) showingRecent() bool {
	return c.state == OpenEmpty && c.unavailable == nil
}

func (c *Controller) itemCount() int {
	if c.showingRecent() {
		return len(c.recent)
	}
	return len(c.results)
}

func (c *Controller) clampActive() {
	if n := c.itemCount(); c.active >= n {
		c.active = max(0, n-1)
	}
}

func (c *Controller) activeURL() (string, bool) {
	if c.active < 0 || c.active >= c.itemCount() {
		return "", false
	}
	if c.showingRecent() {
		return c.recent[c.active].URL, true
	}
	return c.results[c.active].Document.URL, true
}

// State returns the current state
func (c *Controller) State() State { return c.state }

// IsOpen reports whether the overlay is visible
func (c *Controller) IsOpen() bool { return c.state != Closed }

// Query returns the raw input value
func (c *Controller) Query() string { return c.query }

// Active returns the active item index
func (c *Controller) Active() int { return c.active }

// Focus returns the focused element
func (c *Controller) Focus() Focus { return c.focus }

// Results returns the rendered results
func (c *Controller) Results() []model.Result { return c.results }

// Unavailable returns the engine load error, if any
func (c *Controller) Unavailable() error { return c.unavailable }
