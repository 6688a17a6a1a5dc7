// Package tui is the terminal front end: a single bookmark list with
// add/edit modals, fuzzy filtering and a transient notice bar. All state
// changes flow through the session; the TUI only renders and dispatches.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/prefs"
	"github.com/nikbrunner/marks/internal/search"
	"github.com/nikbrunner/marks/internal/session"
	"github.com/nikbrunner/marks/internal/tui/layout"
	"github.com/nikbrunner/marks/internal/urlcheck"
)

// Mode is the current interaction mode.
type Mode int

const (
	ModeList Mode = iota
	ModeAdd
	ModeEdit
	ModeConfirmDelete
	ModeFilter
	ModeHelp
)

// RefreshMsg tells the program that session state changed and the view
// must re-render. The session's change callback sends it via Program.Send.
type RefreshMsg struct{}

type mutationDoneMsg struct{ err error }

// App is the main bubbletea model.
type App struct {
	session *session.Session
	prefs   *prefs.Store
	keys    KeyMap
	styles  Styles
	cfg     layout.Config

	mode Mode
	form formState

	// Local filter; persists until cleared with esc.
	filterInput  textinput.Model
	filterQuery  string
	filterCursor int

	// Delete confirmation target.
	confirmID    int64
	confirmTitle string

	lastKeyWasG bool

	width  int
	height int
}

// formState holds the add/edit modal inputs and inline field errors.
type formState struct {
	titleInput textinput.Model
	urlInput   textinput.Model
	focus      int // 0 = title, 1 = url
	editID     int64
	titleErr   string
	urlErr     string
	submitting bool
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Session *session.Session
	Prefs   *prefs.Store
	Keys    *KeyMap // optional, uses default if nil
}

// NewApp creates a new App.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	cfg := layout.DefaultConfig()

	titleInput := textinput.New()
	titleInput.Placeholder = "Title"
	titleInput.CharLimit = cfg.Input.TitleCharLimit
	titleInput.Width = cfg.Input.StandardWidth

	urlInput := textinput.New()
	urlInput.Placeholder = "https://..."
	urlInput.CharLimit = cfg.Input.URLCharLimit
	urlInput.Width = cfg.Input.StandardWidth

	filterInput := textinput.New()
	filterInput.Placeholder = "Filter..."
	filterInput.CharLimit = cfg.Input.FilterCharLimit
	filterInput.Width = cfg.Input.FilterWidth

	dark := false
	if params.Prefs != nil {
		dark = params.Prefs.Flags().DarkMode
	}

	return App{
		session:     params.Session,
		prefs:       params.Prefs,
		keys:        keys,
		styles:      NewStyles(dark),
		cfg:         cfg,
		form:        formState{titleInput: titleInput, urlInput: urlInput},
		filterInput: filterInput,
		width:       80,
		height:      24,
	}
}

// Mode returns the current interaction mode.
func (a App) Mode() Mode { return a.mode }

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case RefreshMsg:
		if a.prefs != nil {
			a.styles = NewStyles(a.prefs.Flags().DarkMode)
		}
		a.clampFilterCursor()
		return a, nil

	case mutationDoneMsg:
		return a.handleMutationDone(msg)

	case tea.KeyMsg:
		switch a.mode {
		case ModeAdd, ModeEdit:
			return a.updateForm(msg)
		case ModeConfirmDelete:
			return a.updateConfirm(msg)
		case ModeFilter:
			return a.updateFilter(msg)
		case ModeHelp:
			a.mode = ModeList
			return a, nil
		default:
			return a.updateList(msg)
		}
	}

	return a, nil
}

func (a App) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// gg goes to top, like the pager it imitates.
	if key.Matches(msg, a.keys.Top) {
		if a.lastKeyWasG {
			a.lastKeyWasG = false
			a.moveTop()
			return a, nil
		}
		a.lastKeyWasG = true
		return a, nil
	}
	a.lastKeyWasG = false

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case msg.String() == "esc" && a.filterQuery != "":
		a.filterQuery = ""
		a.filterInput.Reset()
		a.filterCursor = 0
		return a, nil

	case key.Matches(msg, a.keys.Down):
		a.moveDown()

	case key.Matches(msg, a.keys.Up):
		a.moveUp()

	case key.Matches(msg, a.keys.Bottom):
		a.moveBottom()

	case key.Matches(msg, a.keys.Add):
		a.openForm(ModeAdd, model.Bookmark{})
		return a, textinput.Blink

	case key.Matches(msg, a.keys.Edit):
		if b, ok := a.selected(); ok {
			a.openForm(ModeEdit, b)
			return a, textinput.Blink
		}

	case key.Matches(msg, a.keys.Delete):
		if b, ok := a.selected(); ok {
			a.confirmID = b.ID
			a.confirmTitle = b.Title
			a.mode = ModeConfirmDelete
		}

	case key.Matches(msg, a.keys.Filter):
		a.mode = ModeFilter
		a.filterInput.SetValue(a.filterQuery)
		a.filterInput.Focus()
		return a, textinput.Blink

	case key.Matches(msg, a.keys.YankURL):
		if b, ok := a.selected(); ok {
			return a, yankCmd(b.URL)
		}

	case key.Matches(msg, a.keys.Open):
		if b, ok := a.selected(); ok {
			return a, openCmd(b.URL)
		}

	case key.Matches(msg, a.keys.ToggleDark):
		if a.prefs != nil {
			_ = a.prefs.SetDarkMode(!a.prefs.Flags().DarkMode)
			a.styles = NewStyles(a.prefs.Flags().DarkMode)
		}

	case key.Matches(msg, a.keys.ToggleStrict):
		if a.prefs != nil {
			_ = a.prefs.SetStrictMode(!a.prefs.Flags().StrictMode)
		}

	case key.Matches(msg, a.keys.Help):
		a.mode = ModeHelp
	}

	return a, nil
}

func (a App) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Reject input while a blocking verification runs; the modal shows a
	// spinner-style hint instead.
	if a.form.submitting {
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, nil
	}

	switch msg.String() {
	case "esc":
		a.mode = ModeList
		a.resetForm()
		return a, nil

	case "tab", "shift+tab", "up", "down":
		a.form.focus = 1 - a.form.focus
		if a.form.focus == 0 {
			a.form.titleInput.Focus()
			a.form.urlInput.Blur()
		} else {
			a.form.urlInput.Focus()
			a.form.titleInput.Blur()
		}
		return a, textinput.Blink

	case "enter":
		return a.submitForm()
	}

	var cmd tea.Cmd
	if a.form.focus == 0 {
		a.form.titleInput, cmd = a.form.titleInput.Update(msg)
		a.form.titleErr = ""
	} else {
		a.form.urlInput, cmd = a.form.urlInput.Update(msg)
		a.validateURLLive()
	}
	return a, cmd
}

// validateURLLive re-checks the URL field on every keystroke so the user
// sees well-formedness problems before submitting.
func (a *App) validateURLLive() {
	value := a.form.urlInput.Value()
	if value == "" {
		a.form.urlErr = ""
		return
	}
	if err := urlcheck.Validate(value); err != nil {
		a.form.urlErr = err.Error()
	} else {
		a.form.urlErr = ""
	}
}

func (a App) submitForm() (tea.Model, tea.Cmd) {
	title := a.form.titleInput.Value()
	url := a.form.urlInput.Value()

	a.form.submitting = true

	sess := a.session
	isEdit := a.mode == ModeEdit
	editID := a.form.editID

	return a, func() tea.Msg {
		var err error
		if isEdit {
			err = sess.Edit(context.Background(), editID, title, url)
		} else {
			err = sess.Add(context.Background(), title, url)
		}
		return mutationDoneMsg{err: err}
	}
}

func (a App) handleMutationDone(msg mutationDoneMsg) (tea.Model, tea.Cmd) {
	a.form.submitting = false

	if msg.err == nil {
		a.mode = ModeList
		a.resetForm()
		return a, nil
	}

	var verr *session.ValidationError
	if errors.As(msg.err, &verr) {
		switch verr.Field {
		case "title":
			a.form.titleErr = verr.Message
		default:
			a.form.urlErr = verr.Message
		}
		return a, nil
	}

	// Probe or persistence failure: the session already raised a notice.
	// Keep the modal open so the input is not lost.
	return a, nil
}

func (a App) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		id := a.confirmID
		sess := a.session
		a.mode = ModeList
		a.confirmID = 0
		a.confirmTitle = ""
		return a, func() tea.Msg {
			_ = sess.Remove(context.Background(), id)
			return RefreshMsg{}
		}
	case "n", "esc":
		a.mode = ModeList
		a.confirmID = 0
		a.confirmTitle = ""
	}
	return a, nil
}

func (a App) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = ModeList
		a.filterQuery = ""
		a.filterInput.Reset()
		a.filterCursor = 0
		return a, nil
	case "enter":
		// Keep the query active and return to list navigation.
		a.mode = ModeList
		a.filterQuery = a.filterInput.Value()
		a.filterInput.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.filterInput, cmd = a.filterInput.Update(msg)
	a.filterQuery = a.filterInput.Value()
	a.clampFilterCursor()
	return a, cmd
}

// --- selection helpers ------------------------------------------------

// matches returns the rows currently displayed: the fuzzy-filtered subset
// when a query is active, otherwise the whole list.
func (a App) matches() []search.Result {
	bookmarks := a.session.Bookmarks()
	if a.filterQuery != "" {
		return search.Filter(bookmarks, a.filterQuery)
	}
	results := make([]search.Result, len(bookmarks))
	for i, b := range bookmarks {
		results[i] = search.Result{Index: i, Bookmark: b}
	}
	return results
}

func (a App) selected() (model.Bookmark, bool) {
	if a.filterQuery != "" {
		rows := a.matches()
		if len(rows) == 0 || a.filterCursor >= len(rows) {
			return model.Bookmark{}, false
		}
		return rows[a.filterCursor].Bookmark, true
	}
	return a.session.Selected()
}

func (a *App) moveDown() {
	if a.filterQuery != "" {
		if n := len(a.matches()); n > 0 {
			a.filterCursor = (a.filterCursor + 1) % n
		}
		return
	}
	a.session.MoveNext()
}

func (a *App) moveUp() {
	if a.filterQuery != "" {
		if n := len(a.matches()); n > 0 {
			a.filterCursor = (a.filterCursor - 1 + n) % n
		}
		return
	}
	a.session.MovePrev()
}

func (a *App) moveTop() {
	if a.filterQuery != "" {
		a.filterCursor = 0
		return
	}
	a.session.Select(0)
}

func (a *App) moveBottom() {
	if a.filterQuery != "" {
		if n := len(a.matches()); n > 0 {
			a.filterCursor = n - 1
		}
		return
	}
	a.session.Select(len(a.session.Bookmarks()) - 1)
}

func (a *App) clampFilterCursor() {
	if a.filterQuery == "" {
		a.filterCursor = 0
		return
	}
	n := len(a.matches())
	if n == 0 {
		a.filterCursor = 0
	} else if a.filterCursor >= n {
		a.filterCursor = n - 1
	}
}

func (a *App) openForm(mode Mode, b model.Bookmark) {
	a.mode = mode
	a.form.titleInput.SetValue(b.Title)
	a.form.urlInput.SetValue(b.URL)
	a.form.editID = b.ID
	a.form.titleErr = ""
	a.form.urlErr = ""
	a.form.focus = 0
	a.form.titleInput.Focus()
	a.form.urlInput.Blur()
}

func (a *App) resetForm() {
	a.form.titleInput.Reset()
	a.form.urlInput.Reset()
	a.form.editID = 0
	a.form.titleErr = ""
	a.form.urlErr = ""
	a.form.focus = 0
}

// --- commands ---------------------------------------------------------

func yankCmd(url string) tea.Cmd {
	return func() tea.Msg {
		_ = clipboard.WriteAll(url)
		return RefreshMsg{}
	}
}

// openCmd opens the URL in the system default browser.
func openCmd(url string) tea.Cmd {
	return func() tea.Msg {
		var cmd *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("open", url)
		case "windows":
			cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
		default:
			cmd = exec.Command("xdg-open", url)
		}
		_ = cmd.Start()
		return RefreshMsg{}
	}
}

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}

// Run starts the bubbletea program and bridges session change
// notifications into it.
func Run(app App) error {
	p := tea.NewProgram(app, tea.WithAltScreen())
	app.session.SetOnChange(func() {
		p.Send(RefreshMsg{})
	})
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
