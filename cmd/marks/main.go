package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"

	"github.com/nikbrunner/marks/internal/api"
	"github.com/nikbrunner/marks/internal/config"
	"github.com/nikbrunner/marks/internal/exporter"
	"github.com/nikbrunner/marks/internal/feed"
	"github.com/nikbrunner/marks/internal/importer"
	"github.com/nikbrunner/marks/internal/logger"
	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/picker"
	"github.com/nikbrunner/marks/internal/prefs"
	"github.com/nikbrunner/marks/internal/preview"
	"github.com/nikbrunner/marks/internal/probe"
	"github.com/nikbrunner/marks/internal/search"
	"github.com/nikbrunner/marks/internal/session"
	"github.com/nikbrunner/marks/internal/store"
	"github.com/nikbrunner/marks/internal/tui"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "help", "--help", "-h":
			printHelp()
			return
		case "serve":
			runServe()
			return
		case "import":
			if len(os.Args) < 3 {
				fmt.Fprintf(os.Stderr, "Usage: marks import <file.html>\n")
				os.Exit(1)
			}
			runImport(os.Args[2])
			return
		case "export":
			var outputPath string
			if len(os.Args) >= 3 {
				outputPath = os.Args[2]
			}
			runExport(outputPath)
			return
		default:
			// Treat as search query (join all remaining args)
			runQuickSearch(strings.Join(os.Args[1:], " "))
			return
		}
	}

	runTUI()
}

func printHelp() {
	help := `marks - synced bookmark manager

Usage:
  marks                 Open interactive TUI
  marks <query>         Quick search, then open in browser
  marks serve           Run the verification/preview HTTP service
  marks import <file>   Import bookmarks from Netscape HTML
  marks export [path]   Export bookmarks to Netscape HTML
  marks help            Show this help

TUI Keybindings:
  Navigation:
    j/k         Move down/up (wraps around)
    gg/G        Jump to top/bottom

  Actions:
    o/Enter     Open bookmark in browser
    Y           Copy URL to clipboard
    /           Fuzzy filter by title

  Editing:
    a           Add bookmark
    e           Edit selected bookmark
    d           Delete (with confirmation)

  Preferences:
    D           Toggle dark mode
    S           Toggle strict mode (verify URLs before saving)

  Other:
    ?           Show help overlay
    q           Quit

Configuration:
  ~/.config/marks/config.yaml (override with MARKS_CONFIG)
`
	fmt.Print(help)
}

// runTUI runs the full interactive TUI.
func runTUI() {
	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}

	// Terminal output would corrupt the alt screen, so TUI logs go to a
	// file or nowhere.
	log := logger.Nop()
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fatal(fmt.Errorf("open log file: %w", err))
		}
		defer f.Close()
		log = logger.NewFile(f, cfg.Log.Level)
	}

	ctx := context.Background()

	st, err := openStore(ctx, cfg)
	if err != nil {
		fatal(err)
	}
	defer st.Close()

	pub, source, closeFeed, err := openFeed(cfg, log)
	if err != nil {
		fatal(err)
	}
	defer closeFeed()

	// All local mutations publish to the feed; the session's listener
	// turns those events back into list reloads.
	fs := store.WithFeed(st, pub, log)

	prefsPath, err := prefs.DefaultPath()
	if err != nil {
		fatal(err)
	}
	pstore, err := prefs.Open(prefsPath, log)
	if err != nil {
		fatal(err)
	}
	defer pstore.Close()

	sess := session.New(session.Params{
		Store:    fs,
		Prober:   probe.New(),
		Previews: preview.NewFetcher(),
		Prefs:    pstore,
		Log:      log,
		OwnerID:  cfg.OwnerID,
	})
	defer sess.Close()

	if err := sess.Load(ctx); err != nil {
		fatal(err)
	}
	if err := sess.AttachFeed(ctx, source); err != nil {
		fatal(err)
	}

	app := tui.NewApp(tui.AppParams{Session: sess, Prefs: pstore})
	if err := tui.Run(app); err != nil {
		fatal(err)
	}
}

// runServe runs the HTTP verification/preview service.
func runServe() {
	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}

	log := logger.New(cfg.Log.Level, false)
	defer func() { _ = log.Sync() }()

	srv := api.New(cfg.Server.Addr, api.Deps{
		Prober:   probe.New(),
		Previews: preview.NewFetcher(),
		Log:      log,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			fatal(err)
		}
	case <-stop:
		timeout := 10 * time.Second
		if d, err := time.ParseDuration(cfg.Server.ShutdownTimeout); err == nil {
			timeout = d
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			fatal(err)
		}
	}
}

// openStore opens the configured bookmark store backend.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "postgres":
		return store.NewPostgresStore(ctx, cfg.Store.PostgresDSN)
	default:
		path := cfg.Store.SQLitePath
		if path == "" {
			var err error
			path, err = store.DefaultSQLitePath()
			if err != nil {
				return nil, err
			}
		}
		return store.NewSQLiteStore(path)
	}
}

// openFeed picks the change-feed backend: Redis pub/sub when configured,
// otherwise an in-process broker (single-process setups still get reload
// coalescing and the same event flow).
func openFeed(cfg *config.Config, log logger.Logger) (feed.Publisher, feed.Source, func(), error) {
	if cfg.Redis.Addr == "" {
		broker := feed.NewBroker()
		return broker, broker, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	rf := feed.NewRedisFeed(client, log)
	return rf, rf, func() { _ = client.Close() }, nil
}

// runQuickSearch fuzzy-searches titles and opens the chosen bookmark.
func runQuickSearch(query string) {
	ctx := context.Background()

	st, cfg, err := openStoreFromConfig(ctx)
	if err != nil {
		fatal(err)
	}
	defer st.Close()

	bookmarks, err := st.List(ctx, cfg.OwnerID)
	if err != nil {
		fatal(err)
	}

	results := search.Filter(bookmarks, query)
	if len(results) == 0 {
		fmt.Printf("No bookmarks found for %q\n", query)
		return
	}

	var chosen model.Bookmark
	if len(results) == 1 {
		chosen = results[0].Bookmark
		fmt.Printf("Opening: %s\n", chosen.Title)
	} else {
		p := picker.New(results, query)
		finalModel, err := tea.NewProgram(p).Run()
		if err != nil {
			fatal(err)
		}
		final := finalModel.(picker.Picker)
		b, ok := final.Selected()
		if !ok {
			return
		}
		chosen = b
	}

	openURL(chosen.URL)
}

// runImport merges a Netscape bookmark HTML file into the store.
func runImport(filePath string) {
	ctx := context.Background()

	st, cfg, err := openStoreFromConfig(ctx)
	if err != nil {
		fatal(err)
	}
	defer st.Close()

	f, err := os.Open(filePath)
	if err != nil {
		fatal(err)
	}
	defer f.Close()

	res, err := importer.Parse(f)
	if err != nil {
		fatal(err)
	}

	existing, err := st.List(ctx, cfg.OwnerID)
	if err != nil {
		fatal(err)
	}
	known := make(map[string]bool, len(existing))
	for _, b := range existing {
		known[b.URL] = true
	}

	var added, duplicates int
	for _, e := range res.Entries {
		if known[e.URL] {
			duplicates++
			continue
		}
		if _, err := st.Insert(ctx, cfg.OwnerID, e.Params()); err != nil {
			fatal(err)
		}
		added++
	}

	fmt.Printf("Imported %d bookmarks", added)
	if duplicates > 0 {
		fmt.Printf(" (%d duplicates skipped)", duplicates)
	}
	if res.Skipped > 0 {
		fmt.Printf(" (%d unusable entries dropped)", res.Skipped)
	}
	fmt.Println()
}

// runExport writes all bookmarks to a Netscape bookmark HTML file.
func runExport(outputPath string) {
	ctx := context.Background()

	if outputPath == "" {
		var err error
		outputPath, err = exporter.DefaultExportPath()
		if err != nil {
			fatal(err)
		}
	}

	st, cfg, err := openStoreFromConfig(ctx)
	if err != nil {
		fatal(err)
	}
	defer st.Close()

	bookmarks, err := st.List(ctx, cfg.OwnerID)
	if err != nil {
		fatal(err)
	}

	out := exporter.ExportHTML(bookmarks)
	if err := os.WriteFile(outputPath, []byte(out), 0o644); err != nil {
		fatal(err)
	}

	fmt.Printf("Exported %d bookmarks to %s\n", len(bookmarks), outputPath)
}

// openStoreFromConfig loads config and opens the plain store, without the
// feed wrapping that the TUI uses.
func openStoreFromConfig(ctx context.Context) (store.Store, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return st, cfg, nil
}

// openURL opens a URL in the default browser.
func openURL(url string) {
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
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
