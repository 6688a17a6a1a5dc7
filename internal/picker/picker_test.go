package picker

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/search"
)

func twoResults() []search.Result {
	return []search.Result{
		{Bookmark: model.Bookmark{ID: 1, Title: "GitHub", URL: "https://github.com"}},
		{Bookmark: model.Bookmark{ID: 2, Title: "GitLab", URL: "https://gitlab.com"}},
	}
}

func TestPicker_Navigate(t *testing.T) {
	p := New(twoResults(), "git")

	if p.cursor != 0 {
		t.Fatalf("expected cursor at 0, got %d", p.cursor)
	}

	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
	newModel, _ := p.Update(msg)
	p = newModel.(Picker)
	if p.cursor != 1 {
		t.Errorf("expected cursor at 1 after j, got %d", p.cursor)
	}

	msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}
	newModel, _ = p.Update(msg)
	p = newModel.(Picker)
	if p.cursor != 0 {
		t.Errorf("expected cursor at 0 after k, got %d", p.cursor)
	}
}

func TestPicker_CursorWraps(t *testing.T) {
	p := New(twoResults(), "git")

	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}
	newModel, _ := p.Update(msg)
	p = newModel.(Picker)
	if p.cursor != 1 {
		t.Errorf("up from first should wrap to last, got %d", p.cursor)
	}

	msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
	newModel, _ = p.Update(msg)
	p = newModel.(Picker)
	if p.cursor != 0 {
		t.Errorf("down from last should wrap to first, got %d", p.cursor)
	}
}

func TestPicker_SelectItem(t *testing.T) {
	p := New(twoResults(), "git")
	p.cursor = 1

	msg := tea.KeyMsg{Type: tea.KeyEnter}
	newModel, cmd := p.Update(msg)
	p = newModel.(Picker)

	got, ok := p.Selected()
	if !ok || got.Title != "GitLab" {
		t.Errorf("Selected() = %+v, %v; want GitLab", got, ok)
	}
	if cmd == nil {
		t.Error("expected quit command after selection")
	}
}

func TestPicker_Cancel(t *testing.T) {
	p := New(twoResults(), "git")

	msg := tea.KeyMsg{Type: tea.KeyEsc}
	newModel, cmd := p.Update(msg)
	p = newModel.(Picker)

	if !p.Cancelled() {
		t.Error("expected cancelled after Esc")
	}
	if cmd == nil {
		t.Error("expected quit command after cancel")
	}
	if _, ok := p.Selected(); ok {
		t.Error("Selected() should report nothing after cancel")
	}
}

func TestPicker_ArrowKeys(t *testing.T) {
	p := New(twoResults(), "git")

	msg := tea.KeyMsg{Type: tea.KeyDown}
	newModel, _ := p.Update(msg)
	p = newModel.(Picker)
	if p.cursor != 1 {
		t.Errorf("expected cursor at 1 after down arrow, got %d", p.cursor)
	}

	msg = tea.KeyMsg{Type: tea.KeyUp}
	newModel, _ = p.Update(msg)
	p = newModel.(Picker)
	if p.cursor != 0 {
		t.Errorf("expected cursor at 0 after up arrow, got %d", p.cursor)
	}
}

func TestPicker_ViewListsResults(t *testing.T) {
	p := New(twoResults(), "git")
	out := p.View()

	for _, want := range []string{"GitHub", "GitLab", "https://github.com", "2 results"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
