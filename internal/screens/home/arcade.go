package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examly/internal/ui/components"
	"github.com/abhisek/examly/internal/ui/theme"
)

// Block-letter title.
const arcadeTitleFull = `███████╗██╗  ██╗ █████╗ ███╗   ███╗██╗  ██╗   ██╗
██╔════╝╚██╗██╔╝██╔══██╗████╗ ████║██║  ╚██╗ ██╔╝
█████╗   ╚███╔╝ ███████║██╔████╔██║██║   ╚████╔╝
██╔══╝   ██╔██╗ ██╔══██║██║╚██╔╝██║██║    ╚██╔╝
███████╗██╔╝ ██╗██║  ██║██║ ╚═╝ ██║███████╗██║
╚══════╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝     ╚═╝╚══════╝╚═╝`

const arcadeTitleCompact = "E · X · A · M · L · Y"

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.ArcadeYellow).
		Bold(true)

	title := arcadeTitleFull
	if compact || lipgloss.Width(arcadeTitleFull) > cw {
		title = arcadeTitleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(title))
}

// renderStatsBar renders the dashboard stats in a bordered box matching content width.
func renderStatsBar(st stats, backend string, cw int, compact bool) string {
	countStyle := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true)
	scoreStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	backendStyle := lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	var text string
	switch {
	case !st.loaded:
		text = dimStyle.Render("loading...")
	case compact:
		text = fmt.Sprintf("%s %s %s",
			countStyle.Render(fmt.Sprintf("#%d", st.sessions)),
			scoreText(st, true, scoreStyle, dimStyle),
			backendStyle.Render(backend),
		)
	default:
		text = fmt.Sprintf("%s  %s  %s",
			countStyle.Render(fmt.Sprintf("★ %d SESSIONS", st.sessions)),
			scoreText(st, false, scoreStyle, dimStyle),
			backendStyle.Render("⚡ "+strings.ToUpper(backend)),
		)
	}

	// Wrap in a double-border box at the same content width
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.ArcadeCyan).
		Width(cw - 2). // account for border chars
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(text)
}

func scoreText(st stats, compact bool, active, dim lipgloss.Style) string {
	if st.lastScore == nil {
		if compact {
			return dim.Render("◆—")
		}
		return dim.Render("◆ NO SCORE YET")
	}
	if compact {
		return active.Render(fmt.Sprintf("◆%.0f%%", *st.lastScore))
	}
	return active.Render(fmt.Sprintf("◆ LAST %.2f%%", *st.lastScore))
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 22

// renderArcadeMenu renders each menu item as a fixed-width button.
func renderArcadeMenu(items []string, selected int, cw int, disabled map[int]bool) string {
	disabledBtn := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	var buttons []string
	for i, label := range items {
		if disabled[i] {
			buttons = append(buttons, disabledBtn.Render(label))
			continue
		}
		buttons = append(buttons, components.ArcadeButton(label, i == selected, buttonWidth))
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

// renderArcadeMenuCompact renders menu items as simple text lines (no borders)
// for very small terminals where bordered buttons would overflow.
func renderArcadeMenuCompact(items []string, selected int, cw int, disabled map[int]bool) string {
	var lines []string
	for i, label := range items {
		var line string
		switch {
		case disabled[i]:
			line = lipgloss.NewStyle().
				Foreground(theme.TextDim).
				Render("   " + label)
		case i == selected:
			line = lipgloss.NewStyle().
				Foreground(theme.BgDark).
				Background(theme.ArcadeYellow).
				Bold(true).
				Render(" ▸ " + label + " ")
		default:
			line = lipgloss.NewStyle().
				Foreground(theme.Text).
				Render("   " + label)
		}
		lines = append(lines, line)
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

// renderBackendNote renders a dim note when the service is unreachable.
func renderBackendNote(note string, cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render("⚠ " + note)
}

// renderMascotBox renders the mascot centered in a box matching content width.
func renderMascotBox(variant MascotVariant, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(RenderMascot(variant))
}
