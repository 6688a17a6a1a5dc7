// Package session coordinates one user's view of the bookmark list: it owns
// the in-memory list, the selection cursor, transient notices, and decides
// for every mutation the order of validation, optional blocking
// verification, persistence and background enrichment.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nikbrunner/marks/internal/feed"
	"github.com/nikbrunner/marks/internal/logger"
	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/prefs"
	"github.com/nikbrunner/marks/internal/probe"
	"github.com/nikbrunner/marks/internal/preview"
	"github.com/nikbrunner/marks/internal/store"
	"github.com/nikbrunner/marks/internal/urlcheck"
)

// NoticeTTL is how long a transient notice stays visible.
var NoticeTTL = 4 * time.Second

// ErrBusy is returned when a mutation arrives while a blocking
// verification is still in flight. Submissions are rejected, not queued.
var ErrBusy = errors.New("verification in progress")

// ValidationError is a field-level input error. It surfaces inline next to
// the offending input and never reaches the network.
type ValidationError struct {
	Field   string // "title" or "url"
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Prober is the reachability check the session runs before or after saving.
type Prober interface {
	Probe(ctx context.Context, url string) probe.Result
}

// PreviewFetcher loads link-preview metadata for a saved bookmark.
type PreviewFetcher interface {
	Fetch(ctx context.Context, url string) (preview.Preview, error)
}

// NoticeLevel classifies a transient notice.
type NoticeLevel int

const (
	NoticeSuccess NoticeLevel = iota
	NoticeWarning
	NoticeError
)

// Notice is a transient user-facing message. The latest notice replaces
// any visible one; there is no stacking.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// Params holds the collaborators for a new Session.
type Params struct {
	Store    store.Store
	Prober   Prober
	Previews PreviewFetcher
	Prefs    *prefs.Store
	Log      logger.Logger
	OwnerID  string
}

// Session is one authenticated view onto the bookmark list. All methods
// are safe for concurrent use; background enrichment runs on internal
// goroutines tracked in an in-flight set.
type Session struct {
	store    store.Store
	prober   Prober
	previews PreviewFetcher
	prefs    *prefs.Store
	log      logger.Logger
	ownerID  string

	mu        sync.Mutex
	bookmarks []model.Bookmark
	cursor    int
	notice    *Notice
	noticeSeq int
	verifying bool
	closed    bool
	inflight  map[string]struct{}

	listener   *feed.Listener
	unsubPrefs func()

	// onChange is invoked (outside the lock) after any observable state
	// change. The TUI uses it to trigger a re-render.
	cbMu     sync.Mutex
	onChange func()
}

// New creates a Session. It does not load data; call Load first.
func New(p Params) *Session {
	s := &Session{
		store:    p.Store,
		prober:   p.Prober,
		previews: p.Previews,
		prefs:    p.Prefs,
		log:      p.Log,
		ownerID:  p.OwnerID,
		inflight: make(map[string]struct{}),
	}

	if p.Prefs != nil {
		s.unsubPrefs = p.Prefs.Subscribe(func(prefs.Flags) { s.changed() })
	}

	return s
}

// SetOnChange registers the change callback.
func (s *Session) SetOnChange(fn func()) {
	s.cbMu.Lock()
	s.onChange = fn
	s.cbMu.Unlock()
}

// OwnerID returns the authenticated owner this session is scoped to.
func (s *Session) OwnerID() string { return s.ownerID }

// StrictMode reports whether saves require a successful blocking probe.
func (s *Session) StrictMode() bool {
	if s.prefs == nil {
		return false
	}
	return s.prefs.Flags().StrictMode
}

// Verifying reports whether a blocking probe is in flight. The UI disables
// submission while true.
func (s *Session) Verifying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verifying
}

// Bookmarks returns a copy of the current list, newest first.
func (s *Session) Bookmarks() []model.Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Bookmark, len(s.bookmarks))
	copy(out, s.bookmarks)
	return out
}

// Notice returns the currently visible notice, if any.
func (s *Session) Notice() (Notice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notice == nil {
		return Notice{}, false
	}
	return *s.notice, true
}

// Load refreshes the list from the store. It is the single source of truth
// for what is displayed; feed events funnel into it.
func (s *Session) Load(ctx context.Context) error {
	bookmarks, err := s.store.List(ctx, s.ownerID)
	if err != nil {
		s.setNotice(NoticeError, err.Error())
		return err
	}

	s.mu.Lock()
	s.bookmarks = bookmarks
	s.clampCursorLocked()
	s.mu.Unlock()

	s.changed()
	return nil
}

// Add creates a bookmark. See the mutation protocol in the package docs:
// validate, optionally probe (strict mode), persist, then enrich in the
// background.
func (s *Session) Add(ctx context.Context, title, url string) error {
	title, url, err := s.prepare(title, url)
	if err != nil {
		return err
	}

	var verification *probe.Result
	if s.StrictMode() {
		res, err := s.blockingProbe(ctx, url)
		if err != nil {
			return err
		}
		verification = &res
	}

	created, err := s.store.Insert(ctx, s.ownerID, model.NewBookmarkParams{Title: title, URL: url})
	if err != nil {
		s.setNotice(NoticeError, err.Error())
		return err
	}

	s.applyInsert(created)
	s.scheduleVerification(created.ID, url, verification)
	s.schedulePreview(created.ID, url)

	s.setNotice(NoticeSuccess, fmt.Sprintf("Added %q", title))
	return nil
}

// Edit updates a bookmark's title and URL using the same protocol as Add,
// except no preview fetch is scheduled.
func (s *Session) Edit(ctx context.Context, id int64, title, url string) error {
	title, url, err := s.prepare(title, url)
	if err != nil {
		return err
	}

	var verification *probe.Result
	if s.StrictMode() {
		res, err := s.blockingProbe(ctx, url)
		if err != nil {
			return err
		}
		verification = &res
	}

	if err := s.store.Update(ctx, s.ownerID, id, store.Fields{Title: &title, URL: &url}); err != nil {
		s.setNotice(NoticeError, err.Error())
		return err
	}

	s.applyEdit(id, title, url)
	s.scheduleVerification(id, url, verification)

	s.setNotice(NoticeSuccess, fmt.Sprintf("Updated %q", title))
	return nil
}

// Remove deletes a bookmark. Callers confirm with the user first - the
// confirmation prompt names the bookmark's title. The in-memory list is
// not mutated here; the reload triggered by the change feed (or an
// explicit Load) decides what is displayed.
func (s *Session) Remove(ctx context.Context, id int64) error {
	title := s.titleOf(id)

	if err := s.store.Delete(ctx, s.ownerID, id); err != nil {
		s.setNotice(NoticeError, err.Error())
		return err
	}

	s.setNotice(NoticeSuccess, fmt.Sprintf("Deleted %q", title))
	return nil
}

// prepare trims and validates input, and rejects concurrent submissions
// while a blocking probe is outstanding.
func (s *Session) prepare(title, url string) (string, string, error) {
	s.mu.Lock()
	busy := s.verifying
	s.mu.Unlock()
	if busy {
		return "", "", ErrBusy
	}

	title = strings.TrimSpace(title)
	url = strings.TrimSpace(url)

	if title == "" {
		return "", "", &ValidationError{Field: "title", Message: "Title is required"}
	}
	if err := urlcheck.Validate(url); err != nil {
		return "", "", &ValidationError{Field: "url", Message: err.Error()}
	}

	return title, url, nil
}

// blockingProbe runs the strict-mode reachability check. Both confirmed
// and ambiguous failures block the save (fail-closed).
func (s *Session) blockingProbe(ctx context.Context, url string) (probe.Result, error) {
	s.setVerifying(true)
	res := s.prober.Probe(ctx, url)
	s.setVerifying(false)

	if !res.Reachable {
		s.setNotice(NoticeError, res.Message)
		return res, fmt.Errorf("url not reachable: %s", res.Message)
	}
	return res, nil
}

// scheduleVerification records reachability metadata in the background.
// With a strict-mode result in hand only the write-back remains; in
// passive mode the probe itself runs in the background too. Failures are
// logged and never disturb the user-visible flow.
func (s *Session) scheduleVerification(id int64, url string, known *probe.Result) {
	s.spawn(fmt.Sprintf("verify:%d", id), func(ctx context.Context) {
		res := probe.Result{}
		if known != nil {
			res = *known
		} else {
			res = s.prober.Probe(ctx, url)
		}

		now := time.Now().UTC()
		fields := store.Fields{
			Verified:            &res.Reachable,
			VerificationMessage: &res.Message,
			VerifiedAt:          &now,
		}
		if err := s.store.Update(ctx, s.ownerID, id, fields); err != nil {
			s.log.Warn("background verification write failed",
				logger.Int64("id", id), logger.Error(err))
			return
		}

		s.applyFields(id, func(b *model.Bookmark) {
			b.Verified = &res.Reachable
			b.VerificationMessage = res.Message
			b.VerifiedAt = &now
		})
	})
}

// schedulePreview fetches link-preview metadata for a freshly added
// bookmark and writes it back via a metadata-only update. Always
// best-effort: a failure surfaces as a soft notice at most.
func (s *Session) schedulePreview(id int64, url string) {
	s.spawn(fmt.Sprintf("preview:%d", id), func(ctx context.Context) {
		p, err := s.previews.Fetch(ctx, url)
		if err != nil {
			s.log.Warn("preview fetch failed", logger.Int64("id", id), logger.Error(err))
			s.setNotice(NoticeWarning, "Could not load preview")
			return
		}

		now := time.Now().UTC()
		fields := store.Fields{
			PreviewImage:       &p.Image,
			PreviewTitle:       &p.Title,
			PreviewDescription: &p.Description,
			Favicon:            &p.Favicon,
			LastPreviewFetch:   &now,
		}
		if err := s.store.Update(ctx, s.ownerID, id, fields); err != nil {
			s.log.Warn("preview write failed", logger.Int64("id", id), logger.Error(err))
			return
		}

		s.applyFields(id, func(b *model.Bookmark) {
			b.PreviewImage = p.Image
			b.PreviewTitle = p.Title
			b.PreviewDescription = p.Description
			b.Favicon = p.Favicon
			b.LastPreviewFetch = &now
		})
	})
}

// spawn runs job on its own goroutine, tracked in the in-flight set. Jobs
// finishing after Close still write to the store (last write wins) but
// their UI effects become no-ops.
func (s *Session) spawn(key string, job func(context.Context)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.inflight[key] = struct{}{}
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.inflight, key)
			s.mu.Unlock()
		}()
		job(context.Background())
	}()
}

// InflightJobs returns the number of tracked background jobs.
func (s *Session) InflightJobs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight)
}

// AttachFeed subscribes this session to its owner's change feed. Relevant
// events trigger a full reload. At most one subscription is active; calling
// AttachFeed again replaces the previous one.
func (s *Session) AttachFeed(ctx context.Context, source feed.Source) error {
	s.mu.Lock()
	if s.listener == nil {
		s.listener = feed.NewListener(source, s.ownerID, func() {
			if err := s.Load(context.Background()); err != nil {
				s.log.Warn("feed-triggered reload failed", logger.Error(err))
			}
		}, s.log)
	}
	listener := s.listener
	s.mu.Unlock()

	return listener.Start(ctx)
}

// Close tears down the feed subscription and the prefs subscription, and
// marks the session so late background jobs stop touching view state.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	listener := s.listener
	unsub := s.unsubPrefs
	s.mu.Unlock()

	if listener != nil {
		listener.Stop()
	}
	if unsub != nil {
		unsub()
	}
}

// --- cursor -----------------------------------------------------------

// Cursor returns the selection index. Zero on an empty list.
func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Selected returns the bookmark under the cursor.
func (s *Session) Selected() (model.Bookmark, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.bookmarks) == 0 || s.cursor >= len(s.bookmarks) {
		return model.Bookmark{}, false
	}
	return s.bookmarks[s.cursor], true
}

// Select moves the cursor to index i, clamped to the list bounds.
func (s *Session) Select(i int) {
	s.mu.Lock()
	if n := len(s.bookmarks); n > 0 {
		if i < 0 {
			i = 0
		}
		if i >= n {
			i = n - 1
		}
		s.cursor = i
	}
	s.mu.Unlock()
	s.changed()
}

// MoveNext advances the cursor, wrapping past the end to the start.
func (s *Session) MoveNext() {
	s.moveCursor(1)
}

// MovePrev moves the cursor back, wrapping past the start to the end.
func (s *Session) MovePrev() {
	s.moveCursor(-1)
}

func (s *Session) moveCursor(delta int) {
	s.mu.Lock()
	n := len(s.bookmarks)
	if n > 0 {
		s.cursor = ((s.cursor+delta)%n + n) % n
	}
	s.mu.Unlock()
	s.changed()
}

// clampCursorLocked re-pins the cursor after the list shrank.
func (s *Session) clampCursorLocked() {
	if len(s.bookmarks) == 0 {
		s.cursor = 0
		return
	}
	if s.cursor >= len(s.bookmarks) {
		s.cursor = len(s.bookmarks) - 1
	}
}

// --- optimistic list updates ------------------------------------------

// applyInsert places a freshly created bookmark at the top of the list
// without waiting for the feed-triggered reload.
func (s *Session) applyInsert(b model.Bookmark) {
	s.mu.Lock()
	if !s.closed {
		s.bookmarks = append([]model.Bookmark{b}, s.bookmarks...)
	}
	s.mu.Unlock()
	s.changed()
}

func (s *Session) applyEdit(id int64, title, url string) {
	s.applyFields(id, func(b *model.Bookmark) {
		b.Title = title
		b.URL = url
	})
}

// applyFields mutates the in-memory copy of one bookmark, if it is still
// present and the session is still open.
func (s *Session) applyFields(id int64, mutate func(*model.Bookmark)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	for i := range s.bookmarks {
		if s.bookmarks[i].ID == id {
			mutate(&s.bookmarks[i])
			break
		}
	}
	s.mu.Unlock()
	s.changed()
}

func (s *Session) titleOf(id int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bookmarks {
		if s.bookmarks[i].ID == id {
			return s.bookmarks[i].Title
		}
	}
	return ""
}

// --- notices ----------------------------------------------------------

// setNotice replaces any visible notice and arms its auto-dismissal.
func (s *Session) setNotice(level NoticeLevel, message string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.noticeSeq++
	seq := s.noticeSeq
	s.notice = &Notice{Level: level, Message: message}
	s.mu.Unlock()
	s.changed()

	time.AfterFunc(NoticeTTL, func() {
		s.mu.Lock()
		// A newer notice already replaced this one.
		if s.noticeSeq != seq || s.notice == nil {
			s.mu.Unlock()
			return
		}
		s.notice = nil
		s.mu.Unlock()
		s.changed()
	})
}

func (s *Session) setVerifying(v bool) {
	s.mu.Lock()
	s.verifying = v
	s.mu.Unlock()
	s.changed()
}

func (s *Session) changed() {
	s.cbMu.Lock()
	fn := s.onChange
	s.cbMu.Unlock()
	if fn != nil {
		fn()
	}
}

