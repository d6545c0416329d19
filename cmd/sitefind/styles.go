package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/igusev/sitefind/internal/config"
	"github.com/igusev/sitefind/internal/model"
)

var (
	// Teal accent of the TUI title
	accentTeal = lipgloss.Color("#14B8A6")
	// Violet used for tags
	tagViolet = lipgloss.Color("#8B5CF6")
	// Highlighted match text
	matchYellow = lipgloss.Color("#FCE566")
	// Success green
	successGreen = lipgloss.Color("#00C853")
	// Info blue
	infoBlue = lipgloss.Color("#2196F3")
	// Muted gray
	mutedGray = lipgloss.Color("#9E9E9E")
)

// Style definitions
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(accentTeal).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(accentTeal)

	matchStyle = lipgloss.NewStyle().
			Foreground(matchYellow).
			Bold(true)

	tagStyle = lipgloss.NewStyle().
			Foreground(tagViolet)

	successStyle = lipgloss.NewStyle().
			Foreground(successGreen).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	snippetStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Italic(true)

	urlStyle = lipgloss.NewStyle().
			Foreground(infoBlue)
)

// renderHighlighted renders <mark> spans of text with matchStyle
func renderHighlighted(text string, base lipgloss.Style) string {
	const pre, post = "<mark>", "</mark>"

	var b strings.Builder
	for text != "" {
		open := strings.Index(text, pre)
		if open < 0 {
			b.WriteString(base.Render(text))
			break
		}
		if open > 0 {
			b.WriteString(base.Render(text[:open]))
		}
		text = text[open+len(pre):]

		end := strings.Index(text, post)
		if end < 0 {
			b.WriteString(matchStyle.Render(text))
			break
		}
		b.WriteString(matchStyle.Render(text[:end]))
		text = text[end+len(post):]
	}
	return b.String()
}

// printResults prints ranked results in a compact, styled list
func printResults(out io.Writer, query string, results []model.Result, cfg *config.Config) {
	if len(results) == 0 {
		fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("No results for «%s»", query)))
		fmt.Fprintln(out, mutedStyle.Render("Try different keywords or check the spelling"))
		return
	}

	for i, r := range results {
		header := fmt.Sprintf("%2d. ", i+1)
		if r.Document.Section != "" {
			header += sectionStyle.Render("["+r.Document.Section+"]") + " "
		}
		header += renderHighlighted(r.HighlightedTitle(), titleStyle)
		header += " " + mutedStyle.Render(fmt.Sprintf("%d%%", r.Confidence()))
		fmt.Fprintln(out, header)

		fmt.Fprintln(out, "    "+urlStyle.Render(cfg.Site.Resolve(r.Document.URL)))
		if r.Snippet != "" {
			fmt.Fprintln(out, "    "+renderHighlighted(r.Snippet, snippetStyle))
		}
		if tags := formatTags(r.Document.Tags); tags != "" {
			fmt.Fprintln(out, "    "+tags)
		}
	}
}

// printDocuments prints unranked documents
func printDocuments(out io.Writer, docs []model.Document, cfg *config.Config) {
	if len(docs) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No documents"))
		return
	}

	for i, d := range docs {
		header := fmt.Sprintf("%2d. ", i+1)
		if d.Section != "" {
			header += sectionStyle.Render("["+d.Section+"]") + " "
		}
		header += titleStyle.Render(d.Title)
		if d.Date != "" {
			header += " " + mutedStyle.Render(d.Date)
		}
		fmt.Fprintln(out, header)
		fmt.Fprintln(out, "    "+urlStyle.Render(cfg.Site.Resolve(d.URL)))
		if d.Description != "" {
			fmt.Fprintln(out, "    "+snippetStyle.Render(d.Description))
		}
		if tags := formatTags(d.Tags); tags != "" {
			fmt.Fprintln(out, "    "+tags)
		}
	}
}

func formatTags(tags []string) string {
	labels := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			labels = append(labels, tagStyle.Render("#"+t))
		}
	}
	return strings.Join(labels, " ")
}
