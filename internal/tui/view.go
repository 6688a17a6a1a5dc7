package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/marks/internal/search"
	"github.com/nikbrunner/marks/internal/session"
	"github.com/nikbrunner/marks/internal/tui/layout"
)

func (a App) renderView() string {
	switch a.mode {
	case ModeAdd, ModeEdit:
		return a.renderFormModal()
	case ModeConfirmDelete:
		return a.renderConfirmModal()
	case ModeHelp:
		return a.renderHelp()
	}

	var b strings.Builder

	b.WriteString(a.renderHeader() + "\n\n")
	b.WriteString(a.renderList() + "\n")
	b.WriteString(a.renderNotice() + "\n")

	if a.mode == ModeFilter {
		b.WriteString("/" + a.filterInput.View() + "\n")
	} else {
		b.WriteString(a.renderHelpBar() + "\n")
	}

	content := a.styles.App.Render(b.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

func (a App) renderHeader() string {
	title := a.styles.Title.Render("marks")

	var flags []string
	if a.prefs != nil {
		f := a.prefs.Flags()
		if f.StrictMode {
			flags = append(flags, "strict")
		}
		if f.DarkMode {
			flags = append(flags, "dark")
		}
	}
	if a.filterQuery != "" {
		flags = append(flags, "filter: "+a.filterQuery)
	}

	if len(flags) == 0 {
		return title
	}
	return title + "  " + a.styles.Empty.Render("["+strings.Join(flags, " | ")+"]")
}

func (a App) renderList() string {
	rows := a.matches()
	if len(rows) == 0 {
		if a.filterQuery != "" {
			return a.styles.Empty.Render("(no matches)")
		}
		return a.styles.Empty.Render("(no bookmarks yet; press a to add one)")
	}

	cursor := a.session.Cursor()
	if a.filterQuery != "" {
		cursor = a.filterCursor
	}

	visibleHeight := layout.CalculateListHeight(a.height, a.cfg.List)
	rowWidth := layout.CalculateRowWidth(a.width, a.cfg.List)
	offset := layout.CalculateViewportOffset(cursor, len(rows), visibleHeight)

	var b strings.Builder
	for i := offset; i < len(rows) && i < offset+visibleHeight; i++ {
		b.WriteString(a.renderRow(rows[i], i == cursor, rowWidth))
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderRow renders one bookmark: verification marker, title (with match
// highlighting while filtering) and the URL dimmed behind it.
func (a App) renderRow(row search.Result, selectedRow bool, maxWidth int) string {
	bm := row.Bookmark

	marker := "? "
	markerStyle := a.styles.Unknown
	if bm.Verified != nil {
		if *bm.Verified {
			marker = "+ "
			markerStyle = a.styles.Success
		} else {
			marker = "x "
			markerStyle = a.styles.Dead
		}
	}

	titleWidth := maxWidth / 2
	title, _ := layout.TruncateText(bm.Title, titleWidth, a.cfg.Text)

	urlWidth := maxWidth - layout.VisibleLength(marker+title) - 2
	url, _ := layout.TruncateText(bm.URL, urlWidth, a.cfg.Text)

	if selectedRow {
		line := marker + title + "  " + url
		for layout.VisibleLength(line) < maxWidth {
			line += " "
		}
		return a.styles.ItemSelected.Render(line)
	}

	styledTitle := title
	if a.filterQuery != "" && len(row.MatchedIndexes) > 0 {
		styledTitle = highlightMatches(title, row.MatchedIndexes, a.styles.Match)
	}

	return a.styles.Item.Render(
		markerStyle.Render(marker) + styledTitle + "  " + a.styles.URL.Render(url))
}

// highlightMatches styles the matched rune positions of a fuzzy result.
func highlightMatches(text string, indexes []int, style lipgloss.Style) string {
	matched := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		matched[i] = true
	}

	var b strings.Builder
	for i, r := range []rune(text) {
		if matched[i] {
			b.WriteString(style.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (a App) renderNotice() string {
	n, ok := a.session.Notice()
	if !ok {
		return ""
	}
	switch n.Level {
	case session.NoticeSuccess:
		return a.styles.Success.Render(n.Message)
	case session.NoticeWarning:
		return a.styles.Warning.Render(n.Message)
	default:
		return a.styles.Error.Render(n.Message)
	}
}

func (a App) renderHelpBar() string {
	hints := []struct{ key, desc string }{
		{"j/k", "move"},
		{"a", "add"},
		{"e", "edit"},
		{"d", "delete"},
		{"/", "filter"},
		{"?", "help"},
		{"q", "quit"},
	}

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = a.styles.HintKey.Render(h.key) + " " + a.styles.HintDesc.Render(h.desc)
	}
	return a.styles.Help.Render(strings.Join(parts, "   "))
}

func (a App) renderFormModal() string {
	width := layout.CalculateModalWidth(a.width, a.cfg.Modal)

	heading := "Add Bookmark"
	if a.mode == ModeEdit {
		heading = "Edit Bookmark"
	}

	var b strings.Builder
	b.WriteString(a.styles.Title.Render(heading) + "\n\n")

	b.WriteString("Title\n")
	b.WriteString(a.form.titleInput.View() + "\n")
	if a.form.titleErr != "" {
		b.WriteString(a.styles.FieldError.Render(a.form.titleErr) + "\n")
	}
	b.WriteString("\nURL\n")
	b.WriteString(a.form.urlInput.View() + "\n")
	if a.form.urlErr != "" {
		b.WriteString(a.styles.FieldError.Render(a.form.urlErr) + "\n")
	}

	b.WriteString("\n")
	if a.form.submitting {
		if a.session.Verifying() {
			b.WriteString(a.styles.Warning.Render("Verifying URL..."))
		} else {
			b.WriteString(a.styles.Empty.Render("Saving..."))
		}
	} else {
		b.WriteString(a.styles.HintDesc.Render("enter save   tab switch field   esc cancel"))
	}

	modal := a.styles.Modal.Width(width).Render(b.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, modal)
}

func (a App) renderConfirmModal() string {
	width := layout.CalculateModalWidth(a.width, a.cfg.Modal)

	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Delete Bookmark") + "\n\n")
	b.WriteString(fmt.Sprintf("Delete %q?\n\n", a.confirmTitle))
	b.WriteString(a.styles.HintDesc.Render("y/enter confirm   n/esc cancel"))

	modal := a.styles.Modal.Width(width).Render(b.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, modal)
}

func (a App) renderHelp() string {
	width := layout.CalculateModalWidth(a.width, a.cfg.Modal)

	bindings := []struct{ key, desc string }{
		{"j/k, down/up", "move selection (wraps around)"},
		{"gg / G", "go to top / bottom"},
		{"a", "add bookmark"},
		{"e", "edit selected bookmark"},
		{"d", "delete selected bookmark"},
		{"/", "fuzzy filter by title"},
		{"Y", "copy URL to clipboard"},
		{"o, enter", "open in browser"},
		{"D", "toggle dark mode"},
		{"S", "toggle strict mode"},
		{"q", "quit"},
	}

	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Keybindings") + "\n\n")
	for _, bind := range bindings {
		b.WriteString(fmt.Sprintf("%s %s\n",
			a.styles.HintKey.Render(fmt.Sprintf("%-14s", bind.key)),
			a.styles.HintDesc.Render(bind.desc)))
	}
	b.WriteString("\n" + a.styles.HintDesc.Render("press any key to close"))

	modal := a.styles.Modal.Width(width).Render(b.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, modal)
}
