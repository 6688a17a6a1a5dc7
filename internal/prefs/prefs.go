// Package prefs persists the small per-profile flags (theme, strict
// verification) and propagates changes to every open view. Views in the
// same process get a direct callback; other running processes pick the
// change up through a file watch - the desktop analog of a browser's
// cross-tab broadcast.
package prefs

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/nikbrunner/marks/internal/logger"
)

// Flags holds the shared preference flags. Last writer wins.
type Flags struct {
	DarkMode   bool
	StrictMode bool
}

// fileFormat is the on-disk shape: string-encoded booleans.
type fileFormat struct {
	DarkMode   string `json:"darkMode"`
	StrictMode string `json:"strictMode"`
}

// Store owns the preference file and the subscriber registry.
type Store struct {
	path string
	log  logger.Logger

	mu     sync.Mutex
	flags  Flags
	subs   map[int]func(Flags)
	nextID int

	watcher *fsnotify.Watcher
}

// Open loads the preference file at path, creating it with defaults if
// missing, and starts watching it for writes by other processes.
func Open(path string, log logger.Logger) (*Store, error) {
	s := &Store{
		path: path,
		log:  log,
		subs: make(map[int]func(Flags)),
	}

	flags, err := load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if saveErr := save(path, flags); saveErr != nil {
			log.Warn("prefs: writing defaults", logger.Error(saveErr))
		}
	}
	s.flags = flags

	if err := s.watch(); err != nil {
		// Cross-process propagation degrades, in-process still works.
		log.Warn("prefs: file watch unavailable", logger.Error(err))
	}

	return s, nil
}

// DefaultPath returns the default preference file path:
// ~/.config/marks/prefs.json
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "marks", "prefs.json"), nil
}

// Flags returns the current flag values.
func (s *Store) Flags() Flags {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags
}

// SetDarkMode persists the theme flag and notifies subscribers.
func (s *Store) SetDarkMode(on bool) error {
	return s.set(func(f *Flags) { f.DarkMode = on })
}

// SetStrictMode persists the strict-verification flag and notifies
// subscribers.
func (s *Store) SetStrictMode(on bool) error {
	return s.set(func(f *Flags) { f.StrictMode = on })
}

// Subscribe registers fn for flag changes and returns its unsubscribe
// func. Views subscribe on mount and unsubscribe on unmount.
func (s *Store) Subscribe(fn func(Flags)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Close stops the file watcher. Subscribers receive nothing afterwards.
func (s *Store) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

func (s *Store) set(mutate func(*Flags)) error {
	s.mu.Lock()
	mutate(&s.flags)
	flags := s.flags
	subs := s.snapshotSubsLocked()
	s.mu.Unlock()

	if err := save(s.path, flags); err != nil {
		return err
	}
	for _, fn := range subs {
		fn(flags)
	}
	return nil
}

func (s *Store) snapshotSubsLocked() []func(Flags) {
	subs := make([]func(Flags), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

// watch observes the preference file's directory. Watching the directory
// instead of the file survives atomic replace-by-rename writes.
func (s *Store) watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return err
	}
	s.watcher = watcher

	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Name != s.path || !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
					continue
				}
				s.reload()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Warn("prefs: watch error", logger.Error(err))
			}
		}
	}()

	return nil
}

// reload re-reads the file and notifies subscribers if the flags changed.
// A reload after our own save is a no-op because the values already match.
func (s *Store) reload() {
	flags, err := load(s.path)
	if err != nil {
		s.log.Warn("prefs: reloading file", logger.Error(err))
		return
	}

	s.mu.Lock()
	if flags == s.flags {
		s.mu.Unlock()
		return
	}
	s.flags = flags
	subs := s.snapshotSubsLocked()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(flags)
	}
}

func load(path string) (Flags, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Flags{}, err
	}

	var raw fileFormat
	if err := json.Unmarshal(data, &raw); err != nil {
		return Flags{}, err
	}

	return Flags{
		DarkMode:   parseBool(raw.DarkMode),
		StrictMode: parseBool(raw.StrictMode),
	}, nil
}

func save(path string, flags Flags) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(fileFormat{
		DarkMode:   strconv.FormatBool(flags.DarkMode),
		StrictMode: strconv.FormatBool(flags.StrictMode),
	}, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}
