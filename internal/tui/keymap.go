package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the terminal bindings for the search overlay
type KeyMap struct {
	// Open shows the overlay from the launcher; it never reopens an open overlay
	Open key.Binding
	// Launch opens the overlay from the launcher screen only
	Launch    key.Binding
	Close     key.Binding
	Up        key.Binding
	Down      key.Binding
	Select    key.Binding
	Next      key.Binding
	Prev      key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap returns the default bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Open: key.NewBinding(
			key.WithKeys("ctrl+k"),
			key.WithHelp("ctrl+k", "search"),
		),
		Launch: key.NewBinding(
			key.WithKeys("/", "enter"),
			key.WithHelp("/", "search"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// OverlayHelp lists the bindings active while the overlay is open
func (k KeyMap) OverlayHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Next, k.Close}
}

// LauncherHelp lists the bindings active on the launcher screen
func (k KeyMap) LauncherHelp() []key.Binding {
	return []key.Binding{k.Open, k.Launch, k.Help, k.Quit}
}
