package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examly/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// BackHandler is implemented by screens that handle Esc themselves. While
// HandlesBack returns true the app forwards Esc to the screen instead of
// popping it.
type BackHandler interface {
	HandlesBack() bool
}

// StatusProvider is implemented by screens that show a status string on
// the right of the header, such as a running clock.
type StatusProvider interface {
	Status() string
}

// Resumer is implemented by screens that refresh themselves when they
// become active again after the screens above them are popped.
type Resumer interface {
	Resume() tea.Cmd
}
