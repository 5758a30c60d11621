package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examly/internal/ui/theme"
)

// Confirm is a yes/no dialog.
type Confirm struct {
	Question string
	Detail   string
	Yes      string
	No       string
}

// ConfirmAnswer is the outcome of a key press on a Confirm dialog.
type ConfirmAnswer int

const (
	ConfirmNone ConfirmAnswer = iota
	ConfirmYes
	ConfirmNo
)

// Answer maps a key press to a dialog answer.
func (c Confirm) Answer(msg tea.KeyMsg) ConfirmAnswer {
	switch msg.String() {
	case "y", "Y":
		return ConfirmYes
	case "n", "N", "esc":
		return ConfirmNo
	}
	return ConfirmNone
}

// View renders the dialog centered in width.
func (c Confirm) View(width int) string {
	center := func(s lipgloss.Style, text string) string {
		return s.Width(width).Align(lipgloss.Center).Render(text)
	}

	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Text).Bold(true), c.Question))
	b.WriteString("\n")
	if c.Detail != "" {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), c.Detail))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	buttons := lipgloss.JoinHorizontal(lipgloss.Center,
		theme.ButtonActive.Render("[Y] "+c.Yes),
		"   ",
		theme.ButtonInactive.Render("[N] "+c.No))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, buttons))
	return b.String()
}
