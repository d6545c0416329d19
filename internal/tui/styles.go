package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// ColorScheme holds the adaptive colors of the search overlay
type ColorScheme struct {
	Title   lipgloss.AdaptiveColor
	Wave    string // Pre-rendered gradient mark
	Version lipgloss.AdaptiveColor
	Source  lipgloss.AdaptiveColor

	Prompt lipgloss.AdaptiveColor

	// Result list
	Normal     lipgloss.AdaptiveColor
	Selected   lipgloss.AdaptiveColor
	SelectedBg lipgloss.AdaptiveColor
	Highlight  lipgloss.AdaptiveColor
	Snippet    lipgloss.AdaptiveColor
	Section    lipgloss.AdaptiveColor
	Tag        lipgloss.AdaptiveColor
	Confidence lipgloss.AdaptiveColor
	Cursor     lipgloss.AdaptiveColor

	Count  lipgloss.AdaptiveColor
	Notice lipgloss.AdaptiveColor
	Error  lipgloss.AdaptiveColor

	StatusActive lipgloss.AdaptiveColor
	StatusIdle   lipgloss.AdaptiveColor

	Help lipgloss.AdaptiveColor
}

// NewColorScheme creates the color scheme, adapting to light and dark terminals
func NewColorScheme() *ColorScheme {
	muted := lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6967A3"}
	accent := lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FCE566"}

	return &ColorScheme{
		Title:   lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#5EEAD4"},
		Wave:    renderWave(),
		Version: muted,
		Source:  muted,

		Prompt: lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"},

		Normal:     lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F7F1FF"},
		Selected:   lipgloss.AdaptiveColor{Light: "#000000", Dark: "#E4E4E4"},
		SelectedBg: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#303030"},
		Highlight:  accent,
		Snippet:    lipgloss.AdaptiveColor{Light: "#737373", Dark: "#999999"},
		Section:    lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#5EEAD4"},
		Tag:        lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"},
		Confidence: muted,
		Cursor:     lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"},

		Count:  muted,
		Notice: accent,
		Error:  lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#FC618D"},

		StatusActive: lipgloss.AdaptiveColor{Light: "#16A34A", Dark: "#7BD88F"},
		StatusIdle:   lipgloss.AdaptiveColor{Light: "#737373", Dark: "#666666"},

		Help: lipgloss.AdaptiveColor{Light: "#737373", Dark: "#666666"},
	}
}

// renderWave draws a teal to violet gradient mark █▓▒░
func renderWave() string {
	from := [3]int{0x14, 0xB8, 0xA6}
	to := [3]int{0x8B, 0x5C, 0xF6}
	chars := []string{"█", "▓", "▒", "░"}

	var result string
	for i, char := range chars {
		t := float64(i) / float64(len(chars)-1)
		var rgb [3]int
		for c := range rgb {
			rgb[c] = int(float64(from[c]) + float64(to[c]-from[c])*t)
		}
		color := lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", rgb[0], rgb[1], rgb[2]))
		result += lipgloss.NewStyle().Foreground(color).Render(char)
	}
	return result
}

// Styles holds pre-configured lipgloss styles
type Styles struct {
	Title        lipgloss.Style
	Version      lipgloss.Style
	Source       lipgloss.Style
	Prompt       lipgloss.Style
	Normal       lipgloss.Style
	Selected     lipgloss.Style
	Highlight    lipgloss.Style
	Snippet      lipgloss.Style
	Section      lipgloss.Style
	Tag          lipgloss.Style
	Confidence   lipgloss.Style
	Cursor       lipgloss.Style
	Count        lipgloss.Style
	Notice       lipgloss.Style
	Error        lipgloss.Style
	Button       lipgloss.Style
	ButtonFocus  lipgloss.Style
	StatusActive lipgloss.Style
	StatusError  lipgloss.Style
	StatusIdle   lipgloss.Style
	Help         lipgloss.Style
}

// GetStyles returns styles built from the color scheme
func (cs *ColorScheme) GetStyles() Styles {
	return Styles{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(cs.Title),
		Version:    lipgloss.NewStyle().Foreground(cs.Version),
		Source:     lipgloss.NewStyle().Foreground(cs.Source),
		Prompt:     lipgloss.NewStyle().Foreground(cs.Prompt),
		Normal:     lipgloss.NewStyle().Foreground(cs.Normal),
		Highlight:  lipgloss.NewStyle().Foreground(cs.Highlight).Bold(true),
		Snippet:    lipgloss.NewStyle().Foreground(cs.Snippet).Italic(true),
		Section:    lipgloss.NewStyle().Foreground(cs.Section).Bold(true),
		Tag:        lipgloss.NewStyle().Foreground(cs.Tag),
		Confidence: lipgloss.NewStyle().Foreground(cs.Confidence),
		Count:      lipgloss.NewStyle().Foreground(cs.Count),
		Notice:     lipgloss.NewStyle().Foreground(cs.Notice),
		Error:      lipgloss.NewStyle().Foreground(cs.Error).Bold(true),
		Help:       lipgloss.NewStyle().Foreground(cs.Help),

		Selected: lipgloss.NewStyle().
			Foreground(cs.Selected).
			Background(cs.SelectedBg),

		Cursor: lipgloss.NewStyle().
			Foreground(cs.Cursor).
			Bold(true),

		Button: lipgloss.NewStyle().
			Foreground(cs.Help).
			Padding(0, 1),

		ButtonFocus: lipgloss.NewStyle().
			Foreground(cs.Selected).
			Background(cs.SelectedBg).
			Bold(true).
			Padding(0, 1),

		StatusActive: lipgloss.NewStyle().Foreground(cs.StatusActive),
		StatusError:  lipgloss.NewStyle().Foreground(cs.Error),
		StatusIdle:   lipgloss.NewStyle().Foreground(cs.StatusIdle),
	}
}
