package manager

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme provides optional colorized rendering for the TUI.
// All hooks are safe to call when theming is disabled; they return the input
// unchanged.
//
// Palette names: auto | dark | light | catppuccin-mocha | none.
// Resolution order is NO_COLOR, then $SSH_MANAGER_THEME, then the settings
// file (see Settings.ThemeName).
type Theme struct {
	Name    string
	Enabled bool

	Header    lipgloss.Style
	Accent    lipgloss.Style
	Selected  lipgloss.Style
	Dim       lipgloss.Style
	Separator lipgloss.Style
	Help      lipgloss.Style
	Error     lipgloss.Style
	Border    lipgloss.Style
}

// LoadTheme returns the palette for name. Unknown names fall back to auto.
func LoadTheme(name string) Theme {
	canon, _ := canonicalThemeName(name)
	switch canon {
	case "none":
		return NoTheme()
	case "catppuccin-mocha":
		return CatppuccinMochaTheme()
	case "light":
		return LightTheme()
	case "dark":
		return DarkTheme()
	default:
		return AutoTheme()
	}
}

// canonicalThemeName maps a theme name or alias to its canonical spelling
// and reports whether it is known.
func canonicalThemeName(name string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return "auto", true
	case "none", "off", "disabled":
		return "none", true
	case "catppuccin", "catppuccin-mocha", "mocha":
		return "catppuccin-mocha", true
	case "light":
		return "light", true
	case "dark":
		return "dark", true
	default:
		return "auto", false
	}
}

// NoTheme disables all styling.
func NoTheme() Theme {
	return Theme{Name: "none", Enabled: false}
}

// AutoTheme enables theming whenever the terminal likely supports color.
func AutoTheme() Theme {
	if !terminalSupportsColor() {
		return NoTheme()
	}
	if !lipgloss.HasDarkBackground() {
		return LightTheme()
	}
	return DarkTheme()
}

// DarkTheme provides a sane default palette for dark terminals.
func DarkTheme() Theme {
	return newPalette("dark", paletteColors{
		header:    "",
		accent:    "6",  // cyan
		selected:  "15", // bright white
		dim:       "8",
		separator: "8",
		help:      "6",
		err:       "1",
	})
}

// LightTheme provides a default palette for light terminals.
func LightTheme() Theme {
	return newPalette("light", paletteColors{
		header:    "",
		accent:    "4", // blue
		selected:  "0", // black
		dim:       "8",
		separator: "8",
		help:      "4",
		err:       "1",
	})
}

// CatppuccinMochaTheme approximates Catppuccin Mocha colors.
func CatppuccinMochaTheme() Theme {
	return newPalette("catppuccin-mocha", paletteColors{
		header:    "#cba6f7", // mauve
		accent:    "#94e2d5", // teal
		selected:  "#fab387", // peach
		dim:       "#6c7086", // overlay0
		separator: "#45475a", // surface1
		help:      "#94e2d5",
		err:       "#f38ba8", // red
	})
}

type paletteColors struct {
	header, accent, selected, dim, separator, help, err string
}

func newPalette(name string, c paletteColors) Theme {
	fg := func(color string) lipgloss.Style {
		s := lipgloss.NewStyle()
		if color != "" {
			s = s.Foreground(lipgloss.Color(color))
		}
		return s
	}
	return Theme{
		Name:      name,
		Enabled:   true,
		Header:    fg(c.header).Bold(true),
		Accent:    fg(c.accent),
		Selected:  fg(c.selected).Bold(true),
		Dim:       fg(c.dim).Faint(c.dim == ""),
		Separator: fg(c.separator),
		Help:      fg(c.help),
		Error:     fg(c.err),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(orDefault(c.accent, "6"))).
			Padding(0, 1),
	}
}

func (t Theme) HeaderLine(s string) string   { return t.apply(t.Header, s) }
func (t Theme) AccentText(s string) string   { return t.apply(t.Accent, s) }
func (t Theme) SelectedText(s string) string { return t.apply(t.Selected, s) }
func (t Theme) DimText(s string) string      { return t.apply(t.Dim, s) }
func (t Theme) ErrorText(s string) string    { return t.apply(t.Error, s) }

// SelectedPrefix returns a colored " > " or "   " prefix.
func (t Theme) SelectedPrefix(selected bool) string {
	if !selected {
		return "   "
	}
	return t.apply(t.Selected, " > ")
}

// Rule renders a horizontal separator of width w.
func (t Theme) Rule(w int) string {
	return t.apply(t.Separator, strings.Repeat("─", maxInt(3, w)))
}

// Box frames content for modal screens.
func (t Theme) Box(content string) string {
	if !t.Enabled {
		return lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1).Render(content)
	}
	return t.Border.Render(content)
}

func (t Theme) apply(style lipgloss.Style, s string) string {
	if !t.Enabled || s == "" {
		return s
	}
	return style.Render(s)
}

func terminalSupportsColor() bool {
	// https://no-color.org/
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	return term != "" && term != "dumb"
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
