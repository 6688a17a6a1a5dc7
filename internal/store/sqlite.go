package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/marks/internal/model"
)

const currentSchemaVersion = 1

// SQLiteStore implements Store using a local SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (and if needed creates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the initial schema.
func (s *SQLiteStore) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS bookmarks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			url TEXT NOT NULL,
			created_at TEXT NOT NULL,
			verified INTEGER,
			verification_message TEXT NOT NULL DEFAULT '',
			verified_at TEXT,
			preview_image TEXT NOT NULL DEFAULT '',
			preview_title TEXT NOT NULL DEFAULT '',
			preview_description TEXT NOT NULL DEFAULT '',
			favicon TEXT NOT NULL DEFAULT '',
			last_preview_fetch TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_bookmarks_owner_created
			ON bookmarks(user_id, created_at DESC);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

const sqliteColumns = `id, user_id, title, url, created_at,
	verified, verification_message, verified_at,
	preview_image, preview_title, preview_description, favicon, last_preview_fetch`

// List returns the owner's bookmarks, newest first.
func (s *SQLiteStore) List(ctx context.Context, ownerID string) ([]model.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sqliteColumns+`
		FROM bookmarks
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookmarks := []model.Bookmark{}
	for rows.Next() {
		b, err := scanSQLiteBookmark(rows.Scan)
		if err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, b)
	}

	return bookmarks, rows.Err()
}

// Get returns a single bookmark owned by ownerID.
func (s *SQLiteStore) Get(ctx context.Context, ownerID string, id int64) (model.Bookmark, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sqliteColumns+`
		FROM bookmarks
		WHERE id = ? AND user_id = ?
	`, id, ownerID)

	b, err := scanSQLiteBookmark(row.Scan)
	if err == sql.ErrNoRows {
		return model.Bookmark{}, ErrNotFound
	}
	return b, err
}

// Insert creates a bookmark and returns it with the assigned id.
func (s *SQLiteStore) Insert(ctx context.Context, ownerID string, params model.NewBookmarkParams) (model.Bookmark, error) {
	createdAt := time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO bookmarks (user_id, title, url, created_at)
		VALUES (?, ?, ?, ?)
	`, ownerID, params.Title, params.URL, createdAt.Format(time.RFC3339Nano))
	if err != nil {
		return model.Bookmark{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.Bookmark{}, err
	}

	return model.Bookmark{
		ID:        id,
		UserID:    ownerID,
		Title:     params.Title,
		URL:       params.URL,
		CreatedAt: createdAt,
	}, nil
}

// Update applies a partial update to the owner's bookmark.
func (s *SQLiteStore) Update(ctx context.Context, ownerID string, id int64, fields Fields) error {
	if fields.Empty() {
		return nil
	}

	set := []string{}
	args := []any{}
	add := func(column string, value any) {
		set = append(set, column+" = ?")
		args = append(args, value)
	}

	if fields.Title != nil {
		add("title", *fields.Title)
	}
	if fields.URL != nil {
		add("url", *fields.URL)
	}
	if fields.Verified != nil {
		add("verified", boolToInt(*fields.Verified))
	}
	if fields.VerificationMessage != nil {
		add("verification_message", *fields.VerificationMessage)
	}
	if fields.VerifiedAt != nil {
		add("verified_at", fields.VerifiedAt.UTC().Format(time.RFC3339Nano))
	}
	if fields.PreviewImage != nil {
		add("preview_image", *fields.PreviewImage)
	}
	if fields.PreviewTitle != nil {
		add("preview_title", *fields.PreviewTitle)
	}
	if fields.PreviewDescription != nil {
		add("preview_description", *fields.PreviewDescription)
	}
	if fields.Favicon != nil {
		add("favicon", *fields.Favicon)
	}
	if fields.LastPreviewFetch != nil {
		add("last_preview_fetch", fields.LastPreviewFetch.UTC().Format(time.RFC3339Nano))
	}

	args = append(args, id, ownerID)
	query := fmt.Sprintf("UPDATE bookmarks SET %s WHERE id = ? AND user_id = ?", strings.Join(set, ", "))

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// Delete removes the owner's bookmark.
func (s *SQLiteStore) Delete(ctx context.Context, ownerID string, id int64) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM bookmarks WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// scanSQLiteBookmark reads one row in column order.
func scanSQLiteBookmark(scan func(...any) error) (model.Bookmark, error) {
	var b model.Bookmark
	var createdAt string
	var verified sql.NullInt64
	var verifiedAt, lastFetch sql.NullString

	err := scan(
		&b.ID, &b.UserID, &b.Title, &b.URL, &createdAt,
		&verified, &b.VerificationMessage, &verifiedAt,
		&b.PreviewImage, &b.PreviewTitle, &b.PreviewDescription, &b.Favicon, &lastFetch,
	)
	if err != nil {
		return model.Bookmark{}, err
	}

	b.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	if verified.Valid {
		v := verified.Int64 == 1
		b.Verified = &v
	}
	if verifiedAt.Valid {
		if t, err := time.Parse(time.RFC3339Nano, verifiedAt.String); err == nil {
			b.VerifiedAt = &t
		}
	}
	if lastFetch.Valid {
		if t, err := time.Parse(time.RFC3339Nano, lastFetch.String); err == nil {
			b.LastPreviewFetch = &t
		}
	}

	return b, nil
}

// DefaultSQLitePath returns the default database path: ~/.config/marks/marks.db
func DefaultSQLitePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "marks", "marks.db"), nil
}
