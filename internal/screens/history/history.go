package history

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examly/internal/router"
	"github.com/abhisek/examly/internal/screen"
	"github.com/abhisek/examly/internal/store"
	"github.com/abhisek/examly/internal/ui/layout"
	"github.com/abhisek/examly/internal/ui/theme"
)

// historyLimit caps how many past sessions are listed.
const historyLimit = 50

type historyLoadedMsg struct {
	Sessions []store.SessionRecord
	Err      error
}

// HistoryScreen lists past sessions with their outcome and score.
type HistoryScreen struct {
	eventRepo store.EventRepo
	sessions  []store.SessionRecord
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.eventRepo
	return func() tea.Msg {
		sessions, err := repo.QuerySessions(context.Background(), store.QueryOpts{Limit: historyLimit})
		return historyLoadedMsg{Sessions: sessions, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No sessions yet. Start one from the home screen!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, rec := range s.sessions {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		line := prefix + SummaryLine(rec)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			for _, d := range detailLines(rec) {
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
					lipgloss.NewStyle().Foreground(theme.TextDim).Render("    "+d)))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

// SummaryLine renders one session as a single history line. The CLI
// history command prints the same line.
func SummaryLine(rec store.SessionRecord) string {
	return fmt.Sprintf("%s  %-7s  %-24s  %-10s  %s",
		rec.StartedAt.Local().Format("Jan 02, 2006 15:04"),
		rec.Mode,
		strings.Join(rec.SubjectIDs, ", "),
		OutcomeLabel(rec),
		ScoreLabel(rec))
}

// OutcomeLabel names how a session ended.
func OutcomeLabel(rec store.SessionRecord) string {
	switch rec.Outcome {
	case store.ActionFinalize:
		if rec.Reason == "expired" {
			return "time up"
		}
		return "finished"
	case store.ActionAbandon:
		return "abandoned"
	}
	return "unfinished"
}

// ScoreLabel renders the score, or a dash for an unscored session.
func ScoreLabel(rec store.SessionRecord) string {
	if rec.Result == nil {
		return "—"
	}
	return fmt.Sprintf("%.2f%%", rec.Result.Score)
}

func detailLines(rec store.SessionRecord) []string {
	lines := []string{
		"Session " + rec.SessionID,
		fmt.Sprintf("Answered %d of %d", rec.Answered, rec.Questions),
	}
	if rec.TopicID != "" {
		lines = append(lines, "Topic "+rec.TopicID)
	}
	if r := rec.Result; r != nil {
		lines = append(lines, lipgloss.NewStyle().Foreground(scoreColor(r.Score)).
			Render(fmt.Sprintf("Correct %d  Wrong %d  Total %d", r.CorrectAnswers, r.WrongAnswers, r.TotalQuestions)))
	}
	return lines
}

func scoreColor(score float64) color.Color {
	switch {
	case score >= 80:
		return theme.Success
	case score >= 50:
		return theme.Accent
	}
	return theme.Error
}
