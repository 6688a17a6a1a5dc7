package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds all lipgloss styles for the TUI.
type Styles struct {
	App          lipgloss.Style
	Title        lipgloss.Style
	Item         lipgloss.Style
	ItemSelected lipgloss.Style
	URL          lipgloss.Style
	Date         lipgloss.Style
	Dead         lipgloss.Style
	Unknown      lipgloss.Style
	Modal        lipgloss.Style
	FieldError   lipgloss.Style
	Match        lipgloss.Style
	Success      lipgloss.Style
	Warning      lipgloss.Style
	Error        lipgloss.Style
	Help         lipgloss.Style
	HintKey      lipgloss.Style
	HintDesc     lipgloss.Style
	Empty        lipgloss.Style
}

// palette holds the theme colors. Dark mode is an explicit user
// preference, not a terminal guess, so both variants are spelled out.
type palette struct {
	primary lipgloss.Color
	subtle  lipgloss.Color
	accent  lipgloss.Color
	invert  lipgloss.Color
	success lipgloss.Color
	warning lipgloss.Color
	danger  lipgloss.Color
}

func lightPalette() palette {
	return palette{
		primary: lipgloss.Color("#3A3A3A"),
		subtle:  lipgloss.Color("#888888"),
		accent:  lipgloss.Color("#4A7070"),
		invert:  lipgloss.Color("#FAFAFA"),
		success: lipgloss.Color("#3A6A3A"),
		warning: lipgloss.Color("#8A6A2A"),
		danger:  lipgloss.Color("#8A3A3A"),
	}
}

func darkPalette() palette {
	return palette{
		primary: lipgloss.Color("#A0A0A0"),
		subtle:  lipgloss.Color("#606060"),
		accent:  lipgloss.Color("#5F8787"),
		invert:  lipgloss.Color("#1A1A1A"),
		success: lipgloss.Color("#7AA77A"),
		warning: lipgloss.Color("#C7A768"),
		danger:  lipgloss.Color("#C77A7A"),
	}
}

// NewStyles builds the style set for the given theme.
func NewStyles(dark bool) Styles {
	p := lightPalette()
	if dark {
		p = darkPalette()
	}

	return Styles{
		App: lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(2),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.accent),

		Item: lipgloss.NewStyle().
			Foreground(p.primary).
			PaddingLeft(1),

		ItemSelected: lipgloss.NewStyle().
			PaddingLeft(1).
			Background(p.accent).
			Foreground(p.invert),

		URL: lipgloss.NewStyle().
			Foreground(p.subtle),

		Date: lipgloss.NewStyle().
			Foreground(p.subtle),

		Dead: lipgloss.NewStyle().
			Foreground(p.danger),

		Unknown: lipgloss.NewStyle().
			Foreground(p.warning),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(p.accent).
			Padding(1, 2),

		FieldError: lipgloss.NewStyle().
			Foreground(p.danger),

		Match: lipgloss.NewStyle().
			Foreground(p.accent).
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(p.success),

		Warning: lipgloss.NewStyle().
			Foreground(p.warning),

		Error: lipgloss.NewStyle().
			Foreground(p.danger),

		Help: lipgloss.NewStyle().
			Foreground(p.subtle).
			Padding(1, 0),

		HintKey: lipgloss.NewStyle().
			Foreground(p.primary),

		HintDesc: lipgloss.NewStyle().
			Foreground(p.subtle),

		Empty: lipgloss.NewStyle().
			Foreground(p.subtle),
	}
}
