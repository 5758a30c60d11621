package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examly/internal/assessment"
	"github.com/abhisek/examly/internal/ui/theme"
)

// OptionList shows the options of a question with a movable cursor. The
// option recorded in the ledger is marked separately from the cursor.
type OptionList struct {
	Options []assessment.Option
	Cursor  int

	// Chosen is the id of the recorded option, or "".
	Chosen string

	// Locked disables cursor movement, e.g. after the session closed.
	Locked bool
}

// NewOptionList creates an option list with the cursor on the chosen
// option, or on the first one.
func NewOptionList(options []assessment.Option, chosen string) OptionList {
	l := OptionList{Options: options, Chosen: chosen}
	for i, o := range options {
		if o.ID == chosen {
			l.Cursor = i
			break
		}
	}
	return l
}

// Update moves the cursor.
func (l OptionList) Update(msg tea.Msg) (OptionList, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || l.Locked {
		return l, nil
	}
	switch kmsg.String() {
	case "up", "k":
		if l.Cursor > 0 {
			l.Cursor--
		}
	case "down", "j":
		if l.Cursor < len(l.Options)-1 {
			l.Cursor++
		}
	}
	return l, nil
}

// Label returns the key label of option i: A, B, C...
func Label(i int) string {
	if i < 0 || i >= 26 {
		return "?"
	}
	return string(rune('A' + i))
}

// IndexOfKey maps "1".."9" to an option index.
func IndexOfKey(key string) (int, bool) {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return 0, false
	}
	return int(key[0] - '1'), true
}

// View renders the options, one per line, wrapped to width.
func (l OptionList) View(width int) string {
	var b strings.Builder
	textWidth := max(width-8, 10)
	for i, o := range l.Options {
		prefix := "  "
		if i == l.Cursor && !l.Locked {
			prefix = "▸ "
		}
		mark := " "
		if o.ID == l.Chosen {
			mark = "●"
		}

		body := lipgloss.NewStyle().Width(textWidth).Render(o.Text)
		line := lipgloss.JoinHorizontal(lipgloss.Top,
			fmt.Sprintf("%s%s %s) ", prefix, mark, Label(i)), body)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case i == l.Cursor && !l.Locked:
			style = theme.Selected
		case o.ID == l.Chosen:
			style = theme.Answered
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
