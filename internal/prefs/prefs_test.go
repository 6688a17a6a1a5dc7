package prefs_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nikbrunner/marks/internal/logger"
	"github.com/nikbrunner/marks/internal/prefs"
)

func TestStore_DefaultsAndPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	s, err := prefs.Open(path, logger.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	flags := s.Flags()
	if flags.DarkMode || flags.StrictMode {
		t.Errorf("expected defaults off, got %+v", flags)
	}

	if err := s.SetStrictMode(true); err != nil {
		t.Fatalf("set strict: %v", err)
	}

	// Flags are string-encoded booleans on disk.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw["strictMode"] != "true" || raw["darkMode"] != "false" {
		t.Errorf("unexpected file contents: %v", raw)
	}

	// A fresh store sees the persisted value.
	s2, err := prefs.Open(path, logger.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	if !s2.Flags().StrictMode {
		t.Error("strict mode not persisted")
	}
}

func TestStore_SubscribeNotifiesInProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	s, err := prefs.Open(path, logger.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	got := make(chan prefs.Flags, 1)
	unsubscribe := s.Subscribe(func(f prefs.Flags) { got <- f })

	if err := s.SetDarkMode(true); err != nil {
		t.Fatalf("set: %v", err)
	}

	select {
	case f := <-got:
		if !f.DarkMode {
			t.Errorf("expected dark mode on, got %+v", f)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber not notified")
	}

	unsubscribe()
	if err := s.SetDarkMode(false); err != nil {
		t.Fatalf("set: %v", err)
	}
	select {
	case <-got:
		t.Fatal("unsubscribed handler must not be notified")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStore_CrossViewPropagation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	// Two stores on the same file play the role of two open views.
	first, err := prefs.Open(path, logger.Nop())
	if err != nil {
		t.Fatalf("open first: %v", err)
	}
	defer first.Close()

	second, err := prefs.Open(path, logger.Nop())
	if err != nil {
		t.Fatalf("open second: %v", err)
	}
	defer second.Close()

	got := make(chan prefs.Flags, 1)
	defer second.Subscribe(func(f prefs.Flags) { got <- f })()

	if err := first.SetDarkMode(true); err != nil {
		t.Fatalf("set: %v", err)
	}

	select {
	case f := <-got:
		if !f.DarkMode {
			t.Errorf("expected dark mode on in second view, got %+v", f)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("second view never observed the change")
	}
	if !second.Flags().DarkMode {
		t.Error("second view flags not updated")
	}
}
