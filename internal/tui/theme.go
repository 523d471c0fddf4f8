package tui

import (
	"os"
	"strconv"
	"strings"

	"gigtrack-cli/internal/statusutil"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The palette must read on light and dark terminals alike, so every colour is
// adaptive.
func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted      lipgloss.TerminalColor = ac("240", "245")
	colorAccent     lipgloss.TerminalColor = ac("27", "69")
	colorAccentFg   lipgloss.TerminalColor = ac("255", "235")
	colorSurfaceFg  lipgloss.TerminalColor = ac("235", "252")
	colorControlBg  lipgloss.TerminalColor = ac("252", "237")
	colorSelectedBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg lipgloss.TerminalColor = ac("235", "255")
	colorModalBg    lipgloss.TerminalColor = ac("255", "235")
	colorDanger     lipgloss.TerminalColor = ac("160", "203")
	colorNotice     lipgloss.TerminalColor = ac("130", "179")
)

var statusColors = map[statusutil.Category]lipgloss.AdaptiveColor{
	statusutil.CategoryDelivered: ac("28", "71"),
	statusutil.CategoryOverdue:   ac("160", "203"),
	statusutil.CategoryActive:    ac("166", "215"),
	statusutil.CategoryCompleted: ac("25", "75"),
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleTitle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
}

func styleNotice() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorNotice)
}

func styleError() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
}

// renderBadge renders a status as a coloured pill.
func renderBadge(s statusutil.Status) string {
	c, ok := statusColors[s.Category]
	if !ok {
		c = ac("240", "245")
	}
	return lipgloss.NewStyle().
		Foreground(colorAccentFg).
		Background(c).
		Padding(0, 1).
		Render(s.Label)
}

// applyColorProfilePreference honours NO_COLOR and otherwise trusts termenv.
// CLICOLOR is ignored on purpose; it would disable colours inside the TUI.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.ColorProfile()
	colorterm := strings.ToLower(os.Getenv("COLORTERM"))
	if profile != termenv.Ascii && (strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit")) {
		profile = termenv.TrueColor
	}
	lipgloss.SetColorProfile(profile)
}

// applyThemePreference fixes the background guess when the terminal cannot
// report it: GIGTRACK_THEME=light|dark first, then the COLORFGBG convention.
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("GIGTRACK_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}
