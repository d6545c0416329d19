package tui

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
)

// renderMarked styles text, rendering spans between pre and post markers
// with hl and everything else with style
func renderMarked(text, pre, post string, style, hl lipgloss.Style) string {
	if pre == "" || post == "" || !strings.Contains(text, pre) {
		return style.Render(text)
	}

	var b strings.Builder
	rest := text
	for rest != "" {
		open := strings.Index(rest, pre)
		if open < 0 {
			b.WriteString(style.Render(rest))
			break
		}
		if open > 0 {
			b.WriteString(style.Render(rest[:open]))
		}
		rest = rest[open+len(pre):]

		end := strings.Index(rest, post)
		if end < 0 {
			b.WriteString(hl.Render(rest))
			break
		}
		b.WriteString(hl.Render(rest[:end]))
		rest = rest[end+len(post):]
	}
	return b.String()
}

// stripMarks removes highlight markers, for width calculations
func stripMarks(text, pre, post string) string {
	if pre == "" || post == "" {
		return text
	}
	return strings.ReplaceAll(strings.ReplaceAll(text, pre, ""), post, "")
}

// renderTags renders tags as small #labels
func renderTags(tags []string, style lipgloss.Style) string {
	labels := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			labels = append(labels, style.Render("#"+tag))
		}
	}
	return strings.Join(labels, " ")
}

// truncateSnippet truncates text at word boundary respecting UTF-8
func truncateSnippet(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	if maxRunes < 0 {
		maxRunes = 0
	}

	truncated := runes[:maxRunes]

	lastSpace := -1
	for i := len(truncated) - 1; i >= 0; i-- {
		if unicode.IsSpace(truncated[i]) || truncated[i] == ',' || truncated[i] == '.' || truncated[i] == ';' {
			lastSpace = i
			break
		}
	}

	// Only back up to a boundary inside the last 20%
	if lastSpace > int(float64(maxRunes)*0.8) {
		truncated = truncated[:lastSpace]
	}

	return strings.TrimRight(string(truncated), " ") + "..."
}

// formatNumber groups thousands with commas
func formatNumber(n int) string {
	s := strconv.Itoa(n)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}

	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}
