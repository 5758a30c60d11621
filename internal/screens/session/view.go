package session

import (
	"errors"
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examly/internal/assessment"
	"github.com/abhisek/examly/internal/calculator"
	"github.com/abhisek/examly/internal/countdown"
	sess "github.com/abhisek/examly/internal/session"
	"github.com/abhisek/examly/internal/ui/components"
	"github.com/abhisek/examly/internal/ui/layout"
	"github.com/abhisek/examly/internal/ui/theme"
)

const (
	sidebarWidth        = 30
	sidebarWidthCompact = 24
)

func (s *SessionScreen) View(width, height int) string {
	if s.startErr != nil {
		return renderStartError(width, s.startErr)
	}
	if s.ctrl.Status() != sess.InProgress {
		return renderLoading(width)
	}
	if s.dialog != noDialog {
		return s.confirmFor(s.dialog).View(width)
	}

	sw := sidebarWidth
	if layout.IsCompactWidth(width) {
		sw = sidebarWidthCompact
	}
	mw := max(width-sw-3, 20)

	main := lipgloss.NewStyle().Width(mw).Padding(0, 1).Render(s.renderQuestion(mw - 2))
	side := s.renderSidebar(sw)
	return lipgloss.JoinHorizontal(lipgloss.Top, main, " ", side)
}

// renderQuestion renders the current question with its options and the
// overall progress bar.
func (s *SessionScreen) renderQuestion(width int) string {
	q, ok := s.ctrl.CurrentQuestion()
	if !ok {
		return lipgloss.NewStyle().Foreground(theme.TextDim).Render("\n  This session has no questions.")
	}
	total := s.ctrl.Catalog().Len()

	var b strings.Builder

	left := lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("Question %d of %d", s.ctrl.CurrentIndex()+1, total))
	right := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(q.SubjectName)
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	b.WriteString(left + strings.Repeat(" ", gap) + right)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", width)))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().Width(width).Foreground(theme.Text).Bold(true).Render(q.Text))
	b.WriteString("\n")
	if q.ImageURL != "" {
		b.WriteString(theme.Hint.Render("Image: " + q.ImageURL))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(s.options.View(width))
	b.WriteString("\n")

	nav := []string{}
	if s.ctrl.CanPrevious() {
		nav = append(nav, "← previous")
	}
	if s.ctrl.CanNext() {
		nav = append(nav, "next →")
	}
	b.WriteString(theme.Hint.Render(strings.Join(nav, "   ")))
	b.WriteString("\n\n")

	b.WriteString(components.NewProgressBar("Answered", s.ctrl.AnsweredCount(), total, true, width).View())
	return b.String()
}

// renderSidebar renders the subject groups, the clock and the calculator.
func (s *SessionScreen) renderSidebar(width int) string {
	inner := width - 4
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render("Time left"))
	b.WriteString("\n")
	b.WriteString(clockStyle(s.ctrl.RemainingSeconds()).Render(countdown.Format(s.ctrl.RemainingSeconds())))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render("Subjects"))
	b.WriteString("\n")
	current := -1
	if cat := s.ctrl.Catalog(); cat != nil {
		current = cat.GroupOf(s.ctrl.CurrentIndex())
	}
	for i, g := range s.ctrl.Progress() {
		count := fmt.Sprintf("%d/%d", g.Answered, g.Total)
		name := truncate(g.Subject, inner-len(count)-3)
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == current {
			prefix = "▸ "
			style = theme.Selected
		}
		if g.Answered == g.Total {
			count = lipgloss.NewStyle().Foreground(theme.Success).Render(count)
		}
		line := style.Render(prefix + name)
		gap := max(inner-lipgloss.Width(line)-lipgloss.Width(count), 1)
		b.WriteString(line + strings.Repeat(" ", gap) + count + "\n")
	}

	if s.calcOpen {
		b.WriteString("\n")
		b.WriteString(renderCalculator(s.calc, inner))
	}

	return theme.Card.Padding(0, 1).Width(width).Render(b.String())
}

// renderCalculator renders the scratch calculator panel.
func renderCalculator(c *calculator.Calculator, width int) string {
	pending := ""
	if prev, ok := c.Previous(); ok && c.PendingOperator() != calculator.None {
		pending = calculator.Format(prev) + " " + c.PendingOperator().String()
	}

	title := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render("Calculator")
	pendingLine := lipgloss.NewStyle().Width(width - 2).Align(lipgloss.Right).
		Foreground(theme.TextDim).Render(pending)
	display := lipgloss.NewStyle().Width(width - 2).Align(lipgloss.Right).
		Foreground(theme.Text).Bold(true).Render(c.Display())

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Accent).
		Render(pendingLine + "\n" + display)
	return title + "\n" + box
}

func clockStyle(remaining int) lipgloss.Style {
	switch {
	case remaining < 60:
		return theme.ClockDanger
	case remaining < 5*60:
		return theme.ClockWarning
	}
	return theme.ClockNormal
}

func truncate(s string, n int) string {
	if n <= 1 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func renderLoading(width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("\n\n\n  Starting your session...")
}

func renderStartError(width int, err error) string {
	msg := "Could not start the session."
	hint := "Press Esc to go back."
	switch {
	case errors.Is(err, assessment.ErrSelectionInvalid):
		msg = "The service rejected this subject selection."
	case errors.Is(err, sess.ErrInvalidSelection):
		msg = "This subject selection is not valid for the mode."
	case assessment.Retryable(err):
		hint = "Press R to retry or Esc to go back."
	}
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n%s\n\n%s\n\n%s", msg, err.Error(), hint))
}
