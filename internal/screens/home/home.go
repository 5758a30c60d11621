package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examly/internal/router"
	"github.com/abhisek/examly/internal/screen"
	"github.com/abhisek/examly/internal/screens/history"
	"github.com/abhisek/examly/internal/screens/selection"
	"github.com/abhisek/examly/internal/store"
	"github.com/abhisek/examly/internal/ui/components"
)

// celebrateScore is the last score at or above which the mascot cheers.
const celebrateScore = 80

type stats struct {
	loaded    bool
	sessions  int
	lastScore *float64

	// lastUnscored is set when the most recent session ended without a
	// score: abandoned, or its submission never went through.
	lastUnscored bool
}

type statsLoadedMsg struct {
	Stats stats
	Err   error
}

// HomeScreen is the main home screen of the application.
type HomeScreen struct {
	env        screen.Env
	menu       components.Menu
	menuLabels []string
	disabled   map[int]bool
	stats      stats
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(env screen.Env) *HomeScreen {
	menuLabels := []string{"START SESSION", "HISTORY", "QUIT"}
	disabled := map[int]bool{1: env.Repo == nil}

	items := []components.MenuItem{
		{Label: menuLabels[0], Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: selection.New(env)}
			}
		}},
		{Label: menuLabels[1], Disabled: disabled[1], Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(env.Repo)}
			}
		}},
		{Label: menuLabels[2], Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	return &HomeScreen{
		env:        env,
		menu:       components.NewMenu(items),
		menuLabels: menuLabels,
		disabled:   disabled,
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadStats()
}

// Resume reloads the stats when the user comes back from a session.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.loadStats()
}

func (h *HomeScreen) loadStats() tea.Cmd {
	repo := h.env.Repo
	if repo == nil {
		h.stats = stats{loaded: true}
		return nil
	}
	return func() tea.Msg {
		recs, err := repo.QuerySessions(context.Background(), store.QueryOpts{})
		if err != nil {
			return statsLoadedMsg{Err: err}
		}
		return statsLoadedMsg{Stats: computeStats(recs)}
	}
}

// computeStats summarizes session history, newest first.
func computeStats(recs []store.SessionRecord) stats {
	st := stats{loaded: true, sessions: len(recs)}
	for _, rec := range recs {
		if rec.Result != nil {
			score := rec.Result.Score
			st.lastScore = &score
			break
		}
	}
	if len(recs) > 0 && recs[0].Outcome != "" && recs[0].Result == nil {
		st.lastUnscored = true
	}
	return st
}

func (h *HomeScreen) mascot() MascotVariant {
	switch {
	case h.stats.lastUnscored:
		return MascotAlert
	case h.stats.lastScore != nil && *h.stats.lastScore >= celebrateScore:
		return MascotCelebrating
	}
	return MascotIdle
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(statsLoadedMsg); ok {
		if msg.Err != nil {
			h.env.Log.Warn().Err(msg.Err).Msg("load session stats failed")
			h.stats = stats{loaded: true}
			return h, nil
		}
		h.stats = msg.Stats
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; estimate full terminal height
	// by adding back header (3) + footer (3) + frame gaps
	termHeight := height + 8
	compact := termHeight < 30 || width < 100
	tiny := termHeight < 22

	// All sections share a uniform content width so they line up.
	cw := components.ContentWidth(width)

	var sections []string

	sections = append(sections, renderTitle(cw, compact))

	if !compact {
		sections = append(sections, renderMascotBox(h.mascot(), cw))
	}

	sections = append(sections, renderStatsBar(h.stats, h.env.Backend, cw, compact))

	if h.env.Repo == nil {
		sections = append(sections, renderBackendNote("History is off: no database", cw))
	}

	if tiny {
		sections = append(sections, renderArcadeMenuCompact(
			h.menuLabels, h.menu.Selected, cw, h.disabled))
	} else {
		sections = append(sections, renderArcadeMenu(
			h.menuLabels, h.menu.Selected, cw, h.disabled))
	}

	content := strings.Join(sections, "\n\n")

	return components.CabinetFrame(content, width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
