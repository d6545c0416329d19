package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/igusev/sitefind/internal/engine"
	"github.com/igusev/sitefind/internal/model"
	"github.com/igusev/sitefind/internal/searchui"
)

// Engine is what the overlay needs from the search engine
type Engine interface {
	searchui.Searcher
	Initialize(ctx context.Context) error
	RecentDocuments(ctx context.Context, limit int) []model.Document
	DocumentCount() int
}

// Options configures the terminal overlay
type Options struct {
	Query    string // Pre-filled query, opens the overlay immediately
	Limit    int
	Recent   int
	Debounce time.Duration
	// StartOpen shows the overlay instead of the launcher on start
	StartOpen     bool
	SourceName    string
	Version       string
	HighlightPre  string
	HighlightPost string
}

// engineReadyMsg reports the engine load outcome
type engineReadyMsg struct {
	recent []model.Document
	count  int
	err    error
}

// debounceMsg fires a debounce ticket
type debounceMsg struct {
	seq uint64
}

// resultsMsg carries an executed query back to the event loop
type resultsMsg struct {
	resp searchui.Response
}

// IndexChangedMsg tells the overlay the engine reloaded its corpus
type IndexChangedMsg struct{}

// Model is the bubbletea host for searchui.Controller
type Model struct {
	engine      Engine
	ctrl        *searchui.Controller
	opts        Options
	keys        KeyMap
	textInput   textinput.Model
	styles      Styles
	colorScheme *ColorScheme

	count    int
	loaded   bool
	loadErr  error
	selected string
	width    int
	height   int
	quitting bool
	showHelp bool
}

// New creates the overlay host
func New(eng Engine, opts Options) Model {
	def := engine.DefaultOptions()
	if opts.Limit < 1 {
		opts.Limit = engine.DefaultLimit
	}
	if opts.Recent < 1 {
		opts.Recent = engine.DefaultRecentLimit
	}
	if opts.HighlightPre == "" || opts.HighlightPost == "" {
		opts.HighlightPre, opts.HighlightPost = def.HighlightPre, def.HighlightPost
	}

	colorScheme := NewColorScheme()
	styles := colorScheme.GetStyles()

	ti := textinput.New()
	ti.Placeholder = "Search the site..."
	ti.CharLimit = 156
	ti.Width = 50
	ti.Prompt = "⌕ "
	ti.PromptStyle = styles.Prompt

	m := Model{
		engine:      eng,
		ctrl:        searchui.New(searchui.Options{Limit: opts.Limit, Debounce: opts.Debounce}),
		opts:        opts,
		keys:        DefaultKeyMap(),
		textInput:   ti,
		styles:      styles,
		colorScheme: colorScheme,
	}

	if opts.StartOpen || strings.TrimSpace(opts.Query) != "" {
		m.open(searchui.TriggerShortcut)
		m.textInput.SetValue(opts.Query)
	}
	return m
}

// Init starts the engine load and runs the pre-filled query, if any
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.loadCmd(true)}
	if q := m.textInput.Value(); strings.TrimSpace(q) != "" {
		cmds = append(cmds, m.input(q))
	}
	return tea.Batch(cmds...)
}

// loadCmd initializes the engine (when init is set) and fetches recent documents
func (m Model) loadCmd(init bool) tea.Cmd {
	eng, limit := m.engine, m.opts.Recent
	return func() tea.Msg {
		ctx := context.Background()
		if init {
			if err := eng.Initialize(ctx); err != nil {
				return engineReadyMsg{err: err}
			}
		}
		return engineReadyMsg{
			recent: eng.RecentDocuments(ctx, limit),
			count:  eng.DocumentCount(),
		}
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m.quit()
		}
		if m.ctrl.IsOpen() {
			return m.updateOverlay(msg)
		}
		return m.updateLauncher(msg)

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		inside := msg.Y < lipgloss.Height(m.header())+lipgloss.Height(m.overlayView())
		if effect := m.ctrl.PointerDown(inside); effect.Closed {
			m.closed()
		}

	case engineReadyMsg:
		m.loaded = true
		m.loadErr = msg.err
		m.count = msg.count
		m.ctrl.Ready(msg.recent, msg.err)

	case IndexChangedMsg:
		cmds := []tea.Cmd{m.loadCmd(false)}
		if m.ctrl.IsOpen() && strings.TrimSpace(m.textInput.Value()) != "" {
			cmds = append(cmds, m.input(m.textInput.Value()))
		}
		return m, tea.Batch(cmds...)

	case debounceMsg:
		req, ok := m.ctrl.Fire(msg.seq)
		if !ok {
			return m, nil
		}
		eng := m.engine
		return m, func() tea.Msg {
			return resultsMsg{resp: searchui.Execute(context.Background(), eng, req)}
		}

	case resultsMsg:
		m.ctrl.Apply(msg.resp)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = max(10, msg.Width-8)
	}

	return m, nil
}

func (m Model) updateLauncher(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Open):
		m.open(searchui.TriggerShortcut)
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Launch):
		m.open(searchui.TriggerButton)
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m Model) updateOverlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var k searchui.Key
	switch {
	case key.Matches(msg, m.keys.Open):
		k = searchui.KeyShortcut
	case key.Matches(msg, m.keys.Close):
		k = searchui.KeyEscape
	case key.Matches(msg, m.keys.Up):
		k = searchui.KeyUp
	case key.Matches(msg, m.keys.Down):
		k = searchui.KeyDown
	case key.Matches(msg, m.keys.Select):
		k = searchui.KeyEnter
	case key.Matches(msg, m.keys.Next):
		k = searchui.KeyTab
	case key.Matches(msg, m.keys.Prev):
		k = searchui.KeyShiftTab
	default:
		return m.updateInput(msg)
	}

	effect := m.ctrl.HandleKey(k)
	switch {
	case effect.Navigate != "":
		m.selected = effect.Navigate
		return m.quit()
	case effect.Closed:
		m.closed()
	default:
		m.syncFocus()
	}
	return m, nil
}

// updateInput forwards typing to the text field while it has focus
func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ctrl.Focus() != searchui.FocusInput {
		return m, nil
	}

	before := m.textInput.Value()
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	if after := m.textInput.Value(); after != before {
		return m, tea.Batch(cmd, m.input(after))
	}
	return m, cmd
}

// input hands the field value to the controller and schedules its ticket
func (m Model) input(value string) tea.Cmd {
	ticket, ok := m.ctrl.Input(value)
	if !ok {
		return nil
	}
	seq := ticket.Seq
	if ticket.Delay <= 0 {
		return func() tea.Msg { return debounceMsg{seq: seq} }
	}
	return tea.Tick(ticket.Delay, func(time.Time) tea.Msg {
		return debounceMsg{seq: seq}
	})
}

func (m *Model) open(t searchui.Trigger) {
	if m.ctrl.Open(t) {
		m.textInput.Reset()
		m.textInput.Focus()
	}
}

// closed resets the field after the controller closed the overlay
func (m *Model) closed() {
	m.textInput.Reset()
	m.textInput.Blur()
}

func (m *Model) syncFocus() {
	if m.ctrl.Focus() == searchui.FocusInput {
		m.textInput.Focus()
	} else {
		m.textInput.Blur()
	}
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

// Selected returns the URL the user chose, or "" when none
func (m Model) Selected() string {
	return m.selected
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.header())
	if m.ctrl.IsOpen() {
		b.WriteString(m.overlayView())
	} else {
		b.WriteString(m.launcherView())
	}
	return b.String()
}

// header renders the title line and separator
func (m Model) header() string {
	var status string
	switch {
	case m.loadErr != nil:
		status = m.styles.StatusError.Render("●")
	case !m.loaded:
		status = m.styles.StatusActive.Render("●")
	default:
		status = m.styles.StatusIdle.Render("○")
	}

	left := fmt.Sprintf("%s %s", m.colorScheme.Wave, m.styles.Title.Render("sitefind"))
	if m.opts.Version != "" {
		left += " " + m.styles.Version.Render(m.opts.Version)
	}

	right := fmt.Sprintf("%s %s", m.styles.Count.Render(formatNumber(m.count)+" documents"), status)
	if m.opts.SourceName != "" && m.width >= lipgloss.Width(left)+lipgloss.Width(right)+len(m.opts.SourceName)+10 {
		right = m.styles.Source.Render("[ "+m.opts.SourceName+" ]") + " " + right
	}

	spacing := " "
	if gap := m.width - lipgloss.Width(left) - lipgloss.Width(right); gap > 0 {
		spacing = strings.Repeat(" ", gap)
	}

	var b strings.Builder
	b.WriteString(left + spacing + right + "\n")
	if m.width > 0 {
		b.WriteString(m.styles.Help.Render(strings.Repeat("─", m.width)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) launcherView() string {
	var b strings.Builder
	b.WriteString("\n")
	if m.loadErr != nil {
		b.WriteString(m.styles.Error.Render("Search is unavailable: " + m.loadErr.Error()))
		b.WriteString("\n\n")
	}
	b.WriteString(m.styles.Normal.Render("Press "))
	b.WriteString(m.styles.Highlight.Render("ctrl+k"))
	b.WriteString(m.styles.Normal.Render(" or "))
	b.WriteString(m.styles.Highlight.Render("/"))
	b.WriteString(m.styles.Normal.Render(" to search"))
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(m.helpLine(m.keys.LauncherHelp()))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) helpLine(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return m.styles.Help.Render(strings.Join(parts, " • "))
}

// overlayView renders the open overlay: input, status, items, close button
func (m Model) overlayView() string {
	vm := m.ctrl.View()

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	switch {
	case vm.Unavailable != "":
		b.WriteString(m.styles.Error.Render(vm.Unavailable))
		b.WriteString("\n")
	case vm.Loading:
		b.WriteString(m.styles.Help.Render("Loading search index..."))
		b.WriteString("\n")
	case vm.Error != "":
		b.WriteString(m.styles.Error.Render(vm.Error))
		b.WriteString("\n")
	case vm.Empty != nil:
		b.WriteString(m.styles.Notice.Render(vm.Empty.Message))
		b.WriteString("\n")
		b.WriteString(m.styles.Help.Render(vm.Empty.Hint))
		b.WriteString("\n")
	case vm.Recent && len(vm.Items) > 0:
		b.WriteString(m.styles.Help.Render("Recent"))
		b.WriteString("\n")
	case vm.Status != "":
		b.WriteString(m.styles.Count.Render(vm.Status))
		b.WriteString("\n")
	}

	b.WriteString(m.renderItems(vm))

	b.WriteString("\n")
	closeStyle := m.styles.Button
	if vm.Focus == searchui.FocusClose {
		closeStyle = m.styles.ButtonFocus
	}
	b.WriteString(closeStyle.Render("close"))
	b.WriteString("  ")
	b.WriteString(m.helpLine(m.keys.OverlayHelp()))
	b.WriteString("\n")
	return b.String()
}

// itemLines returns the rendered line count of an item
func itemLines(item searchui.Item) int {
	lines := 1
	if item.Snippet != "" {
		lines++
	}
	if len(item.Tags) > 0 {
		lines++
	}
	return lines
}

func (m Model) renderItems(vm searchui.ViewModel) string {
	items := vm.Items
	if len(items) == 0 {
		return ""
	}

	available := len(items) * 3
	if m.height > 0 {
		// header(2) + input block(3) + status(2) + close line(2)
		available = max(1, m.height-9)
	}

	// Scroll so the active item stays visible
	start := 0
	if vm.Active > 0 && vm.Active < len(items) {
		used := itemLines(items[vm.Active])
		for i := vm.Active - 1; i >= 0; i-- {
			if used+itemLines(items[i]) > available {
				start = i + 1
				break
			}
			used += itemLines(items[i])
		}
	}

	var b strings.Builder
	rendered := 0
	for i := start; i < len(items); i++ {
		item := items[i]
		if rendered+itemLines(item) > available {
			break
		}
		b.WriteString(m.renderItem(item, vm.Focus == searchui.FocusResults))
		rendered += itemLines(item)
	}
	return b.String()
}

func (m Model) renderItem(item searchui.Item, listFocused bool) string {
	lineStyle := m.styles.Normal
	if item.Active {
		lineStyle = m.styles.Selected
	}

	cursor := " "
	if item.Active {
		cursor = m.styles.Cursor.Render("▌")
		if listFocused {
			cursor = m.styles.Cursor.Render("▶")
		}
	}

	var b strings.Builder
	b.WriteString(cursor)
	b.WriteString(" ")
	if item.Section != "" {
		b.WriteString(m.styles.Section.Render(strings.ToUpper(item.Section)))
		b.WriteString(" ")
	}
	b.WriteString(renderMarked(item.Title, m.opts.HighlightPre, m.opts.HighlightPost, lineStyle, m.styles.Highlight))
	if item.HasConfidence {
		b.WriteString(" ")
		b.WriteString(m.styles.Confidence.Render(fmt.Sprintf("%d%%", item.Confidence)))
	}
	b.WriteString("\n")

	width := 80
	if m.width > 10 {
		width = m.width - 6
	}
	if item.Snippet != "" {
		b.WriteString("    ")
		b.WriteString(m.styles.Snippet.Render(truncateSnippet(stripMarks(item.Snippet, m.opts.HighlightPre, m.opts.HighlightPost), width)))
		b.WriteString("\n")
	}
	if len(item.Tags) > 0 {
		b.WriteString("    ")
		b.WriteString(renderTags(item.Tags, m.styles.Tag))
		b.WriteString("\n")
	}
	return b.String()
}
