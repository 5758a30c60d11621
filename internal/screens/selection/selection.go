// Package selection is the screen where the user picks the mode, the
// subjects and, in mixed mode, an optional topic before a session starts.
package selection

import (
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examly/internal/assessment"
	"github.com/abhisek/examly/internal/router"
	"github.com/abhisek/examly/internal/screen"
	sessionscreen "github.com/abhisek/examly/internal/screens/session"
	"github.com/abhisek/examly/internal/session"
	"github.com/abhisek/examly/internal/ui/components"
	"github.com/abhisek/examly/internal/ui/layout"
	"github.com/abhisek/examly/internal/ui/theme"
)

type step int

const (
	stepMode step = iota
	stepSubjects
	stepTopic
)

type subjectsLoadedMsg struct {
	Subjects []assessment.Subject
	Err      error
}

type topicsLoadedMsg struct {
	SubjectID string
	Topics    []assessment.Topic
	Err       error
}

type modeChosenMsg struct {
	Mode assessment.Mode
}

// SelectionScreen collects a session.Selection and starts the session.
type SelectionScreen struct {
	env  screen.Env
	step step

	modes components.Menu
	mode  assessment.Mode

	subjects []assessment.Subject
	filter   components.TextInput
	cursor   int
	picked   []string

	topicsFor string
	topics    []assessment.Topic
	topicIdx  int

	loading bool
	errMsg  string
	notice  string
}

var _ screen.Screen = (*SelectionScreen)(nil)
var _ screen.KeyHintProvider = (*SelectionScreen)(nil)
var _ screen.BackHandler = (*SelectionScreen)(nil)

// New creates a SelectionScreen.
func New(env screen.Env) *SelectionScreen {
	choose := func(m assessment.Mode) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return modeChosenMsg{Mode: m} }
		}
	}
	return &SelectionScreen{
		env: env,
		modes: components.NewMenu([]components.MenuItem{
			{Label: "Grouped", Hint: "2 subjects · 3 hours", Action: choose(assessment.ModeGrouped)},
			{Label: "Mixed", Hint: "1 subject · 30 minutes", Action: choose(assessment.ModeMixed)},
		}),
		filter: components.NewTextInput("type to filter subjects", 40),
	}
}

func (s *SelectionScreen) Init() tea.Cmd {
	s.loading = true
	return tea.Batch(s.loadSubjects(), s.filter.Init())
}

func (s *SelectionScreen) Title() string {
	return "New Session"
}

// HandlesBack makes Esc step back through the wizard before leaving it.
func (s *SelectionScreen) HandlesBack() bool {
	return s.step != stepMode
}

func (s *SelectionScreen) KeyHints() []layout.KeyHint {
	switch s.step {
	case stepSubjects:
		if s.mode == assessment.ModeGrouped {
			return []layout.KeyHint{
				{Key: "↑↓", Description: "Navigate"},
				{Key: "Space", Description: "Pick"},
				{Key: "Enter", Description: "Continue"},
				{Key: "Esc", Description: "Back"},
			}
		}
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Choose"},
			{Key: "Esc", Description: "Back"},
		}
	case stepTopic:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Start"},
			{Key: "Esc", Description: "Back"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Home"},
	}
	if s.errMsg != "" {
		hints = append(hints, layout.KeyHint{Key: "R", Description: "Reload"})
	}
	return hints
}

func (s *SelectionScreen) loadSubjects() tea.Cmd {
	env := s.env
	return func() tea.Msg {
		ctx, cancel := env.CallContext()
		defer cancel()
		subjects, err := env.Service.FetchSubjects(ctx)
		return subjectsLoadedMsg{Subjects: subjects, Err: err}
	}
}

func (s *SelectionScreen) loadTopics(subjectID string) tea.Cmd {
	env := s.env
	return func() tea.Msg {
		ctx, cancel := env.CallContext()
		defer cancel()
		topics, err := env.Service.FetchTopics(ctx, subjectID)
		return topicsLoadedMsg{SubjectID: subjectID, Topics: topics, Err: err}
	}
}

func (s *SelectionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case subjectsLoadedMsg:
		s.loading = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.subjects = msg.Subjects
		return s, nil

	case topicsLoadedMsg:
		if msg.SubjectID != s.topicsFor {
			return s, nil
		}
		s.loading = false
		if msg.Err != nil {
			s.notice = "Could not load topics: " + msg.Err.Error()
			s.step = stepSubjects
			return s, nil
		}
		if len(msg.Topics) == 0 {
			return s, s.begin(session.Selection{Mode: s.mode, SubjectIDs: []string{msg.SubjectID}})
		}
		s.topics = msg.Topics
		s.topicIdx = 0
		return s, nil

	case modeChosenMsg:
		s.mode = msg.Mode
		s.step = stepSubjects
		s.picked = nil
		s.cursor = 0
		s.notice = ""
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.step == stepSubjects {
		var cmd tea.Cmd
		s.filter, cmd = s.filter.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SelectionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch s.step {
	case stepMode:
		if s.errMsg != "" && (msg.String() == "r" || msg.String() == "R") {
			s.errMsg = ""
			s.loading = true
			return s, s.loadSubjects()
		}
		if s.loading || s.errMsg != "" {
			return s, nil
		}
		var cmd tea.Cmd
		s.modes, cmd = s.modes.Update(msg)
		return s, cmd

	case stepSubjects:
		return s.handleSubjectKey(msg)

	case stepTopic:
		switch msg.String() {
		case "esc":
			s.step = stepSubjects
			s.topicsFor = ""
			s.loading = false
		case "up", "k":
			if s.topicIdx > 0 {
				s.topicIdx--
			}
		case "down", "j":
			// Index 0 is "any topic".
			if s.topicIdx < len(s.topics) {
				s.topicIdx++
			}
		case "enter":
			if s.loading {
				return s, nil
			}
			sel := session.Selection{Mode: s.mode, SubjectIDs: []string{s.topicsFor}}
			if s.topicIdx > 0 {
				sel.TopicID = s.topics[s.topicIdx-1].ID
			}
			return s, s.begin(sel)
		}
	}
	return s, nil
}

func (s *SelectionScreen) handleSubjectKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	visible := s.visible()
	switch msg.String() {
	case "esc":
		s.step = stepMode
		s.notice = ""
		return s, nil
	case "up":
		if s.cursor > 0 {
			s.cursor--
		}
		return s, nil
	case "down":
		if s.cursor < len(visible)-1 {
			s.cursor++
		}
		return s, nil
	case "space", " ":
		if s.mode == assessment.ModeGrouped && len(visible) > 0 {
			s.toggle(visible[s.cursor].ID)
			return s, nil
		}
	case "enter":
		return s, s.confirmSubjects(visible)
	}

	var cmd tea.Cmd
	s.filter, cmd = s.filter.Update(msg)
	if s.cursor >= len(s.visible()) {
		s.cursor = max(len(s.visible())-1, 0)
	}
	return s, cmd
}

func (s *SelectionScreen) confirmSubjects(visible []assessment.Subject) tea.Cmd {
	if s.mode == assessment.ModeGrouped {
		if len(s.picked) != 2 {
			s.notice = fmt.Sprintf("Pick exactly 2 subjects (%d picked).", len(s.picked))
			return nil
		}
		return s.begin(session.Selection{Mode: s.mode, SubjectIDs: slices.Clone(s.picked)})
	}

	if len(visible) == 0 {
		return nil
	}
	id := visible[s.cursor].ID
	s.step = stepTopic
	s.topicsFor = id
	s.topics = nil
	s.loading = true
	return s.loadTopics(id)
}

func (s *SelectionScreen) toggle(id string) {
	if i := slices.Index(s.picked, id); i >= 0 {
		s.picked = slices.Delete(s.picked, i, i+1)
		s.notice = ""
		return
	}
	if len(s.picked) == 2 {
		s.notice = "Grouped mode takes exactly 2 subjects."
		return
	}
	s.picked = append(s.picked, id)
	s.notice = ""
}

// begin validates sel and opens the session screen.
func (s *SelectionScreen) begin(sel session.Selection) tea.Cmd {
	if err := sel.Validate(); err != nil {
		s.notice = err.Error()
		return nil
	}
	s.env.Log.Info().Str("mode", string(sel.Mode)).Strs("subject_ids", sel.SubjectIDs).
		Str("topic_id", sel.TopicID).Msg("selection confirmed")
	next := sessionscreen.New(s.env, sel)
	return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
}

// visible returns the subjects matching the filter.
func (s *SelectionScreen) visible() []assessment.Subject {
	var out []assessment.Subject
	for _, sub := range s.subjects {
		if s.filter.Matches(sub.Name) || s.filter.Matches(sub.ID) {
			out = append(out, sub)
		}
	}
	return out
}

func (s *SelectionScreen) View(width, height int) string {
	center := func(block string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, block)
	}
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString("\n")

	switch {
	case s.errMsg != "":
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Error).
			Render("Could not load subjects: " + s.errMsg)))
		b.WriteString("\n\n")
		b.WriteString(center(dim.Render("Press R to try again.")))
		return b.String()

	case s.step == stepMode:
		b.WriteString(center(theme.Title.Render("Choose a mode")))
		b.WriteString("\n\n")
		if s.loading {
			b.WriteString(center(dim.Render("Loading subjects...")))
			return b.String()
		}
		b.WriteString(center(components.ArcadeCard(s.modes.View(), cw)))

	case s.step == stepSubjects:
		title := "Choose a subject"
		if s.mode == assessment.ModeGrouped {
			title = fmt.Sprintf("Choose 2 subjects (%d/2)", len(s.picked))
		}
		b.WriteString(center(theme.Title.Render(title)))
		b.WriteString("\n\n")
		b.WriteString(center(s.filter.View()))
		b.WriteString("\n\n")
		b.WriteString(center(components.ArcadeCard(s.renderSubjects(cw-6), cw)))

	case s.step == stepTopic:
		b.WriteString(center(theme.Title.Render("Choose a topic")))
		b.WriteString("\n\n")
		if s.loading {
			b.WriteString(center(dim.Render("Loading topics...")))
			return b.String()
		}
		b.WriteString(center(components.ArcadeCard(s.renderTopics(), cw)))
	}

	if s.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Accent).Render(s.notice)))
	}
	return b.String()
}

func (s *SelectionScreen) renderSubjects(width int) string {
	visible := s.visible()
	if len(visible) == 0 {
		return lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("No matching subjects")
	}
	var lines []string
	for i, sub := range visible {
		mark := "  "
		if s.mode == assessment.ModeGrouped {
			mark = "[ ]"
			if n := slices.Index(s.picked, sub.ID); n >= 0 {
				mark = fmt.Sprintf("[%d]", n+1)
			}
		}
		line := fmt.Sprintf("%s %s", mark, sub.Name)
		style := theme.Unselected
		if i == s.cursor {
			line = "▸ " + line
			style = theme.Selected
		} else {
			line = "  " + line
		}
		lines = append(lines, style.Width(width).Render(line))
	}
	return strings.Join(lines, "\n")
}

func (s *SelectionScreen) renderTopics() string {
	labels := []string{"Any topic"}
	for _, t := range s.topics {
		labels = append(labels, t.Name)
	}
	var lines []string
	for i, l := range labels {
		if i == s.topicIdx {
			lines = append(lines, theme.Selected.Render("▸ "+l))
		} else {
			lines = append(lines, theme.Unselected.Render("  "+l))
		}
	}
	return strings.Join(lines, "\n")
}
