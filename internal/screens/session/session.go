package session

import (
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examly/internal/assessment"
	"github.com/abhisek/examly/internal/calculator"
	"github.com/abhisek/examly/internal/countdown"
	"github.com/abhisek/examly/internal/router"
	"github.com/abhisek/examly/internal/screen"
	"github.com/abhisek/examly/internal/screens/result"
	sess "github.com/abhisek/examly/internal/session"
	"github.com/abhisek/examly/internal/ui/components"
	"github.com/abhisek/examly/internal/ui/layout"
)

type dialog int

const (
	noDialog dialog = iota
	finishDialog
	abandonDialog
)

// SessionScreen runs one timed session: it starts it, shows the questions
// and hands the finalized session to the result screen.
type SessionScreen struct {
	env  screen.Env
	sel  sess.Selection
	ctrl *sess.Controller

	options    components.OptionList
	optionsFor string
	calc       *calculator.Calculator
	calcOpen   bool
	dialog     dialog

	startErr error
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.BackHandler = (*SessionScreen)(nil)
var _ screen.StatusProvider = (*SessionScreen)(nil)

// New creates a SessionScreen for sel. The session starts in Init.
func New(env screen.Env, sel sess.Selection) *SessionScreen {
	return &SessionScreen{
		env:  env,
		sel:  sel,
		ctrl: env.NewController(),
		calc: calculator.New(),
	}
}

// Controller exposes the session controller, mainly for tests.
func (s *SessionScreen) Controller() *sess.Controller { return s.ctrl }

func (s *SessionScreen) Init() tea.Cmd {
	return s.start()
}

func (s *SessionScreen) Title() string {
	if s.sel.Mode == assessment.ModeGrouped {
		return "Grouped Session"
	}
	return "Mixed Session"
}

func (s *SessionScreen) Status() string {
	if s.ctrl.Status() != sess.InProgress {
		return s.env.Backend
	}
	return countdown.Format(s.ctrl.RemainingSeconds())
}

// HandlesBack keeps Esc inside the screen while a session is starting or
// running: there Esc asks before abandoning.
func (s *SessionScreen) HandlesBack() bool {
	return s.startErr == nil
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.startErr != nil:
		if assessment.Retryable(s.startErr) {
			return []layout.KeyHint{{Key: "R", Description: "Retry"}, {Key: "Esc", Description: "Back"}}
		}
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	case s.ctrl.Status() != sess.InProgress:
		return nil
	case s.dialog != noDialog:
		return []layout.KeyHint{{Key: "Y", Description: "Yes"}, {Key: "N", Description: "No"}}
	case s.calcOpen:
		return []layout.KeyHint{
			{Key: "0-9 . + - * /", Description: "Input"},
			{Key: "Enter", Description: "="},
			{Key: "Del", Description: "Clear"},
			{Key: "C", Description: "Close"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Option"},
		{Key: "Enter/1-9", Description: "Answer"},
		{Key: "←→", Description: "Prev/Next"},
		{Key: "S", Description: "Skip"},
		{Key: "Tab", Description: "Subject"},
		{Key: "C", Description: "Calculator"},
		{Key: "F", Description: "Finish"},
	}
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		return s.handleStarted(msg)

	case countdown.TickMsg:
		sub, next := s.ctrl.HandleTick(msg)
		if sub != nil {
			return s, s.toResult(sub)
		}
		return s, next

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *SessionScreen) start() tea.Cmd {
	req, err := s.ctrl.BeginStart(s.sel)
	if err != nil {
		s.startErr = err
		return nil
	}
	s.startErr = nil

	env := s.env
	return func() tea.Msg {
		ctx, cancel := env.CallContext()
		defer cancel()
		resp, err := env.Service.StartSession(ctx, req)
		return startedMsg{Resp: resp, Err: err}
	}
}

func (s *SessionScreen) handleStarted(msg startedMsg) (screen.Screen, tea.Cmd) {
	if err := s.ctrl.CompleteStart(msg.Resp, msg.Err); err != nil {
		if !errors.Is(err, sess.ErrNoStartPending) {
			s.startErr = err
		}
		return s, nil
	}
	s.syncOptions()
	return s, s.ctrl.TimerCmd()
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.startErr != nil {
		switch key {
		case "r", "R":
			if assessment.Retryable(s.startErr) {
				return s, s.start()
			}
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil
	}

	if s.ctrl.Status() != sess.InProgress {
		return s, nil
	}

	if s.dialog != noDialog {
		return s.handleDialog(msg)
	}

	if s.calcOpen {
		s.handleCalcKey(key)
		return s, nil
	}

	switch key {
	case "esc":
		s.dialog = abandonDialog
	case "f", "F":
		s.dialog = finishDialog
	case "c", "C":
		s.calcOpen = true
	case "enter", "space", " ":
		s.answer(s.options.Cursor)
	case "right", "l", "n":
		s.ctrl.Next()
		s.syncOptions()
	case "left", "h", "p":
		s.ctrl.Previous()
		s.syncOptions()
	case "s", "S":
		s.ctrl.Skip()
		s.syncOptions()
	case "tab":
		s.jumpGroup(1)
	case "shift+tab":
		s.jumpGroup(-1)
	default:
		if i, ok := components.IndexOfKey(key); ok {
			s.answer(i)
			return s, nil
		}
		s.options, _ = s.options.Update(msg)
	}
	return s, nil
}

func (s *SessionScreen) handleDialog(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	d := s.dialog
	switch s.confirmFor(d).Answer(msg) {
	case components.ConfirmNo:
		s.dialog = noDialog
	case components.ConfirmYes:
		s.dialog = noDialog
		if d == abandonDialog {
			if err := s.ctrl.Abandon(); err != nil {
				s.env.Log.Warn().Err(err).Msg("abandon failed")
				return s, nil
			}
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
		if sub, ok := s.ctrl.Finish(); ok {
			return s, s.toResult(sub)
		}
	}
	return s, nil
}

func (s *SessionScreen) handleCalcKey(key string) {
	switch key {
	case "c", "C", "esc":
		s.calcOpen = false
	case "enter", "=":
		s.calc.InputEquals()
	case "backspace":
		s.calc.Backspace()
	case "delete":
		s.calc.Clear()
	case ".", ",":
		s.calc.InputDecimal()
	default:
		if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
			s.calc.InputDigit(rune(key[0]))
			return
		}
		if op, ok := calculator.ParseOperator(key); ok {
			s.calc.InputOperator(op)
		}
	}
}

// answer records option i of the current question.
func (s *SessionScreen) answer(i int) {
	if err := s.ctrl.SelectCurrent(i); err != nil {
		s.env.Log.Debug().Err(err).Int("option", i).Msg("answer ignored")
		return
	}
	s.options.Cursor = i
	s.syncOptions()
}

// jumpGroup moves to the first question of the next or previous subject.
func (s *SessionScreen) jumpGroup(d int) {
	cat := s.ctrl.Catalog()
	if cat == nil {
		return
	}
	groups := cat.Groups()
	if len(groups) < 2 {
		return
	}
	g := cat.GroupOf(s.ctrl.CurrentIndex())
	g = (g + d + len(groups)) % len(groups)
	s.ctrl.GoTo(groups[g].Indices[0])
	s.syncOptions()
}

// syncOptions points the option list at the current question. The cursor
// survives while the question stays the same.
func (s *SessionScreen) syncOptions() {
	q, ok := s.ctrl.CurrentQuestion()
	if !ok {
		s.options, s.optionsFor = components.OptionList{}, ""
		return
	}
	chosen, _ := s.ctrl.Selected(q.ID)
	if q.ID == s.optionsFor {
		s.options.Chosen = chosen
		return
	}
	s.options = components.NewOptionList(q.Options, chosen)
	s.optionsFor = q.ID
}

// toResult replaces this screen with the result screen, which submits the
// finalized session.
func (s *SessionScreen) toResult(sub *sess.Submission) tea.Cmd {
	rs := result.New(s.env, s.ctrl, sub)
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: rs} }
}

func (s *SessionScreen) confirmFor(d dialog) components.Confirm {
	if d == abandonDialog {
		return components.Confirm{
			Question: "Abandon this session?",
			Detail:   "Your answers will be discarded and nothing is submitted.",
			Yes:      "Yes, abandon",
			No:       "No, keep going",
		}
	}
	answered, total := s.ctrl.AnsweredCount(), 0
	if cat := s.ctrl.Catalog(); cat != nil {
		total = cat.Len()
	}
	detail := "All questions are answered."
	if answered < total {
		detail = fmt.Sprintf("%d question(s) are still unanswered.", total-answered)
	}
	return components.Confirm{
		Question: "Finish and submit?",
		Detail:   detail,
		Yes:      "Yes, submit",
		No:       "No, keep going",
	}
}
