package main

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/microcosm-cc/bluemonday"

	"github.com/yanqian/ai-tarot/internal/domain/account"
	"github.com/yanqian/ai-tarot/internal/domain/history"
	"github.com/yanqian/ai-tarot/internal/domain/reading"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#B388FF"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#69F0AE"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5252"))

	headingTag   = regexp.MustCompile(`(?s)<h3>(.*?)</h3>`)
	paragraphTag = regexp.MustCompile(`(?s)<p>(.*?)</p>`)
	stripAll     = bluemonday.StrictPolicy()
)

// interpretationMarkdown turns stored interpretation HTML back into markdown.
func interpretationMarkdown(htmlText string) string {
	text := headingTag.ReplaceAllString(htmlText, "\n\n### $1\n\n")
	text = paragraphTag.ReplaceAllString(text, "$1\n\n")
	text = html.UnescapeString(stripAll.Sanitize(text))
	lines := strings.Split(strings.TrimSpace(text), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func readingMarkdown(r history.Reading) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Name)
	if r.Date != "" {
		fmt.Fprintf(&b, "_%s %s_\n\n", r.Date, r.Time)
	}
	if r.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", r.Description)
	}
	if len(r.Data.Cards) > 0 {
		b.WriteString("## Cards\n\n")
		for _, card := range r.Data.Cards {
			fmt.Fprintf(&b, "- %s\n", card.Name)
		}
		b.WriteString("\n")
	}
	if answered := nonEmpty(r.Data.Questions); len(answered) > 0 {
		b.WriteString("## Your answers\n\n")
		for i, q := range answered {
			fmt.Fprintf(&b, "%d. %s\n", i+1, q)
		}
		b.WriteString("\n")
	}
	interpretation := r.Data.Interpretation
	if interpretation == "" {
		interpretation = reading.FormatInterpretation(r.Data.InterpretationText)
	}
	if interpretation != "" {
		b.WriteString("## Interpretation\n\n")
		b.WriteString(interpretationMarkdown(interpretation))
		b.WriteString("\n")
	}
	return b.String()
}

func renderReadingList(page history.Page) string {
	if len(page.Readings) == 0 {
		return mutedStyle.Render("No saved readings yet.")
	}
	ai, personal := history.Split(page.Readings)
	var b strings.Builder
	writeGroup := func(title string, readings []history.Reading) {
		if len(readings) == 0 {
			return
		}
		b.WriteString(titleStyle.Render(title))
		b.WriteString("\n")
		for _, r := range readings {
			fmt.Fprintf(&b, "  %-6d %s %s\n", r.ID, r.Name, mutedStyle.Render(strings.TrimSpace(r.Date+" "+r.Time)))
			if r.Description != "" {
				fmt.Fprintf(&b, "         %s\n", mutedStyle.Render(r.Description))
			}
		}
		b.WriteString("\n")
	}
	writeGroup("AI readings", ai)
	writeGroup("Personal readings", personal)
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Showing %d-%d of %d", page.Offset+1, page.Offset+len(page.Readings), page.Total)))
	return b.String()
}

func renderProfile(user account.User) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(user.Name))
	b.WriteString(" ")
	b.WriteString(mutedStyle.Render("<" + user.Email + ">"))
	b.WriteString("\n")
	if user.CreatedAt != "" {
		fmt.Fprintf(&b, "Member since %s\n", user.CreatedAt)
	}
	fmt.Fprintf(&b, "Readings: %d total, %d this month\n", user.TotalReadings, user.MonthReadings)
	fmt.Fprintf(&b, "Saved layouts: %d", user.SavedLayouts)
	return b.String()
}

func renderCards(cards []reading.Card) string {
	if len(cards) == 0 {
		return mutedStyle.Render("No cards match.")
	}
	var b strings.Builder
	for _, card := range cards {
		kind := card.Type
		if card.Suit != nil && *card.Suit != "" {
			kind = strings.TrimSpace(kind + " " + *card.Suit)
		}
		fmt.Fprintf(&b, "%-28s %s\n", card.Name, mutedStyle.Render(kind))
	}
	return strings.TrimRight(b.String(), "\n")
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
