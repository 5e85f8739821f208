// Package report renders evaluation results for terminals and plain text.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/guiperry/promptfeedback/evaluator"
	"github.com/guiperry/promptfeedback/history"
)

const (
	IconStrength   = "✅"
	IconWeakness   = "🔍"
	IconSuggestion = "💡"
)

// Band is the colour class of a score.
type Band int

const (
	BandRed Band = iota
	BandOrange
	BandGreen
)

// BandFor classifies score: below 50 is red, below 75 orange, otherwise green.
func BandFor(score int) Band {
	switch {
	case score < 50:
		return BandRed
	case score < 75:
		return BandOrange
	default:
		return BandGreen
	}
}

func (b Band) String() string {
	switch b {
	case BandRed:
		return "red"
	case BandOrange:
		return "orange"
	default:
		return "green"
	}
}

func (b Band) Color() lipgloss.Color {
	switch b {
	case BandRed:
		return ColorRed
	case BandOrange:
		return ColorOrange
	default:
		return ColorGreen
	}
}

var (
	ColorRed    = lipgloss.Color("#E74C3C")
	ColorOrange = lipgloss.Color("#F39C12")
	ColorGreen  = lipgloss.Color("#2ECC71")
	ColorMuted  = lipgloss.Color("#7F8C8D")
	ColorAccent = lipgloss.Color("#20B9B4")
)

var styles = struct {
	Title    lipgloss.Style
	Heading  lipgloss.Style
	Muted    lipgloss.Style
	Improved lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorAccent),
	Heading: lipgloss.NewStyle().Bold(true),
	Muted:   lipgloss.NewStyle().Foreground(ColorMuted),
	Improved: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorAccent).
		Padding(0, 1),
}

// Score renders "Score: N/100" in the band colour.
func Score(score int) string {
	return lipgloss.NewStyle().Bold(true).Foreground(BandFor(score).Color()).
		Render(fmt.Sprintf("Score: %d/100", score))
}

// Render formats r for a terminal.
func Render(r evaluator.Result) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Prompt Evaluation"))
	b.WriteString("\n")
	b.WriteString(Score(r.Score))
	b.WriteString("\n")

	section(&b, "Strengths", IconStrength, r.Strengths)
	section(&b, "Areas for Improvement", IconWeakness, r.Weaknesses)
	section(&b, "Suggestions", IconSuggestion, r.Suggestions)

	if r.ImprovedPrompt != "" {
		b.WriteString("\n")
		b.WriteString(styles.Heading.Render("Improved Prompt"))
		b.WriteString("\n")
		b.WriteString(styles.Improved.Render(r.ImprovedPrompt))
		b.WriteString("\n")
	}
	return b.String()
}

func section(b *strings.Builder, title, icon string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString(styles.Heading.Render(title))
	b.WriteString("\n")
	for _, item := range items {
		fmt.Fprintf(b, "%s %s\n", icon, item)
	}
}

// Markdown formats r without terminal styling.
func Markdown(r evaluator.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Score:** %d/100 (%s)\n", r.Score, BandFor(r.Score))
	for _, s := range []struct {
		title string
		icon  string
		items []string
	}{
		{"Strengths", IconStrength, r.Strengths},
		{"Areas for Improvement", IconWeakness, r.Weaknesses},
		{"Suggestions", IconSuggestion, r.Suggestions},
	} {
		if len(s.items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n### %s\n", s.title)
		for _, item := range s.items {
			fmt.Fprintf(&b, "- %s %s\n", s.icon, item)
		}
	}
	if r.ImprovedPrompt != "" {
		fmt.Fprintf(&b, "\n### Improved Prompt\n```\n%s\n```\n", r.ImprovedPrompt)
	}
	return b.String()
}

// History lists items newest first with a preview of each prompt.
func History(items []history.Item) string {
	if len(items) == 0 {
		return styles.Muted.Render("No evaluations yet.") + "\n"
	}
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. [%s] %s  %s\n", i+1,
			item.Timestamp.Format("2006-01-02 15:04:05"),
			Score(item.Score),
			item.Preview())
		fmt.Fprintf(&b, "   %s\n", styles.Muted.Render("id: "+item.ID))
	}
	return b.String()
}
