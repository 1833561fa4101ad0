package tui

import (
	"os"
	"strconv"
	"strings"

	"moodboard/internal/render"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The canvas must stay readable on light and dark terminals, so every color
// is an AdaptiveColor.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted          = ac("240", "243")
	colorSurfaceFg      = ac("235", "252")
	colorControlBg      = ac("252", "235")
	colorInputBg        = ac("254", "234")
	colorAccent         = ac("27", "62")
	colorAccentFg       = ac("255", "235")
	colorSelectedBorder = ac("232", "255")
	colorSectionBorder  = ac("250", "243")
	colorImageFill      = ac("248", "239")
	colorLink           = ac("27", "75")
	colorError          = ac("160", "203")
)

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

// roleStyle maps a canvas cell style to terminal colors.
func roleStyle(st render.Style) lipgloss.Style {
	base := lipgloss.NewStyle()
	switch st.Role {
	case render.RoleSection:
		base = base.Foreground(colorSectionBorder)
	case render.RoleTitle:
		base = base.Foreground(colorSurfaceFg).Bold(true)
	case render.RoleText:
		base = base.Foreground(colorSurfaceFg)
	case render.RoleLink:
		base = base.Foreground(colorLink).Underline(true)
	case render.RoleImage:
		base = base.Foreground(colorImageFill)
	case render.RoleCaption:
		base = styleMuted()
	default:
		return base
	}
	if st.Selected {
		base = base.Foreground(colorSelectedBorder).Bold(true)
	}
	return base
}

// applyColorProfilePreference honors NO_COLOR and otherwise trusts
// TERM/COLORTERM when they claim more than termenv detects.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") && (profile == termenv.Ascii || profile == termenv.ANSI) {
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}

// themeName resolves the light/dark preference.
//
// Priority:
// 1) MOODBOARD_TUI_THEME=light|dark|auto
// 2) the configured theme (tui.theme)
// 3) COLORFGBG heuristic ("fg;bg", bg >= 7 is light)
// 4) lipgloss background detection
func themeName(configured string) string {
	for _, v := range []string{os.Getenv("MOODBOARD_TUI_THEME"), configured} {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "light":
			return "light"
		case "dark":
			return "dark"
		}
	}
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			if bg >= 7 {
				return "light"
			}
			return "dark"
		}
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

func applyThemePreference(configured string) string {
	name := themeName(configured)
	lipgloss.SetHasDarkBackground(name == "dark")
	return name
}
