package result

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examly/internal/assessment"
	"github.com/abhisek/examly/internal/countdown"
	"github.com/abhisek/examly/internal/router"
	"github.com/abhisek/examly/internal/screen"
	"github.com/abhisek/examly/internal/session"
	"github.com/abhisek/examly/internal/ui/components"
	"github.com/abhisek/examly/internal/ui/layout"
	"github.com/abhisek/examly/internal/ui/theme"
)

// ResultScreen submits a finalized session and shows its score. A failed
// submission can be retried; the answers stay with the controller.
type ResultScreen struct {
	env  screen.Env
	ctrl *session.Controller
	sub  *session.Submission

	confirmLeave bool
}

var _ screen.Screen = (*ResultScreen)(nil)
var _ screen.KeyHintProvider = (*ResultScreen)(nil)
var _ screen.BackHandler = (*ResultScreen)(nil)

// New creates a ResultScreen for the finalized session of ctrl.
func New(env screen.Env, ctrl *session.Controller, sub *session.Submission) *ResultScreen {
	return &ResultScreen{env: env, ctrl: ctrl, sub: sub}
}

func (s *ResultScreen) Init() tea.Cmd {
	return s.send(s.sub)
}

func (s *ResultScreen) Title() string {
	return "Session Result"
}

// HandlesBack always keeps Esc here: leaving must dismiss the session.
func (s *ResultScreen) HandlesBack() bool { return true }

func (s *ResultScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.confirmLeave:
		return []layout.KeyHint{{Key: "Y", Description: "Leave"}, {Key: "N", Description: "Stay"}}
	case s.ctrl.Result() != nil:
		return []layout.KeyHint{{Key: "Enter", Description: "Home"}}
	case s.failed():
		return []layout.KeyHint{{Key: "R", Description: "Retry submission"}, {Key: "Esc", Description: "Leave"}}
	}
	return nil
}

func (s *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case submittedMsg:
		s.ctrl.CompleteSubmission(msg.Result, msg.Err)
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *ResultScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.confirmLeave {
		switch leaveConfirm.Answer(msg) {
		case components.ConfirmYes:
			return s, popToRoot
		case components.ConfirmNo:
			s.confirmLeave = false
		}
		return s, nil
	}

	switch msg.String() {
	case "enter", "esc", "q":
		if s.ctrl.Result() != nil {
			if err := s.ctrl.Dismiss(); err != nil {
				s.env.Log.Warn().Err(err).Msg("dismiss failed")
			}
			return s, popToRoot
		}
		if msg.String() == "esc" && s.failed() {
			s.confirmLeave = true
		}
	case "r", "R":
		sub, err := s.ctrl.RetrySubmission()
		if err != nil {
			return s, nil
		}
		return s, s.send(sub)
	}
	return s, nil
}

func (s *ResultScreen) send(sub *session.Submission) tea.Cmd {
	if sub == nil {
		return nil
	}
	env := s.env
	return func() tea.Msg {
		ctx, cancel := env.CallContext()
		defer cancel()
		result, err := env.Service.FinishSession(ctx, sub.SessionID, sub.Answers)
		return submittedMsg{Result: result, Err: err}
	}
}

func (s *ResultScreen) failed() bool {
	return !s.ctrl.Submitting() && s.ctrl.SubmitErr() != nil
}

func popToRoot() tea.Msg { return router.PopToRootMsg{} }

var leaveConfirm = components.Confirm{
	Question: "Leave without a score?",
	Detail:   "The session stays unscored and its answers are discarded.",
	Yes:      "Yes, leave",
	No:       "No, stay",
}

func (s *ResultScreen) View(width, height int) string {
	if s.confirmLeave {
		return leaveConfirm.View(width)
	}
	sum := s.ctrl.Summary()
	if sum == nil {
		return ""
	}

	cw := components.ContentWidth(width)
	center := func(block string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, block)
	}

	var b strings.Builder

	heading := "Session complete!"
	if sum.Reason == session.ReasonExpired {
		heading = "Time's up!"
	}
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(heading)))
	b.WriteString("\n\n")

	b.WriteString(center(components.ArcadeCard(s.renderScore(sum, cw-4), cw)))
	b.WriteString("\n\n")

	b.WriteString(center(theme.Subtitle.Render("Subjects")))
	b.WriteString("\n")
	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw))
	b.WriteString(center(divider))
	b.WriteString("\n")
	for _, g := range sum.Groups {
		line := fmt.Sprintf("%-*s %3d/%-3d answered", max(cw-16, 8), g.Subject, g.Answered, g.Total)
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Text).Render(line)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	meta := fmt.Sprintf("Time used %s  ·  %d of %d answered  ·  session %s",
		formatElapsed(sum.Elapsed), sum.Answered, sum.Info.Questions, sum.Info.SessionID)
	b.WriteString(center(theme.Hint.Render(meta)))

	return b.String()
}

// renderScore renders the score card body: a waiting note, the failure
// with its retry hint, or the scored result.
func (s *ResultScreen) renderScore(sum *session.Summary, width int) string {
	switch {
	case s.ctrl.Submitting():
		return lipgloss.NewStyle().Foreground(theme.TextDim).Render("Submitting your answers...")
	case sum.Result == nil:
		msg := "Submission failed."
		if err := s.ctrl.SubmitErr(); err != nil {
			msg += "\n" + err.Error()
		}
		return lipgloss.NewStyle().Foreground(theme.Error).Render(msg) +
			"\n\n" + theme.Hint.Render("Your answers are kept. Press R to retry.")
	}

	r := sum.Result
	score := lipgloss.NewStyle().Foreground(scoreColor(r)).Bold(true).
		Render(fmt.Sprintf("%.2f%%", r.Score))
	stats := theme.Correct.Render(fmt.Sprintf("Correct %d", r.CorrectAnswers)) + "   " +
		theme.Incorrect.Render(fmt.Sprintf("Wrong %d", r.WrongAnswers)) + "   " +
		theme.Body.Render(fmt.Sprintf("Total %d", r.TotalQuestions))
	bar := components.NewProgressBar("", r.CorrectAnswers, r.TotalQuestions, false, width).View()
	return score + "\n\n" + stats + "\n\n" + bar
}

func scoreColor(r *assessment.Result) color.Color {
	switch {
	case r.Score >= 80:
		return theme.Success
	case r.Score >= 50:
		return theme.Accent
	}
	return theme.Error
}

func formatElapsed(d time.Duration) string {
	return countdown.Format(int(d / time.Second))
}
