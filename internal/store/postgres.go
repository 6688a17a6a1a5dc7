package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/nikbrunner/marks/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// psql builds queries with $N placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var pgColumns = []string{
	"id", "user_id", "title", "url", "created_at",
	"verified", "verification_message", "verified_at",
	"preview_image", "preview_title", "preview_description", "favicon", "last_preview_fetch",
}

// PostgresStore implements Store on a shared PostgreSQL database, the
// backend used when several devices sync against the same account.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn, runs pending migrations and returns a
// ready store.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if err := migratePostgres(dsn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// migratePostgres applies the embedded goose migrations. goose wants a
// database/sql handle, so this uses the pgx stdlib driver.
func migratePostgres(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, "migrations")
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// List returns the owner's bookmarks, newest first.
func (s *PostgresStore) List(ctx context.Context, ownerID string) ([]model.Bookmark, error) {
	query, args, err := psql.
		Select(pgColumns...).
		From("bookmarks").
		Where(sq.Eq{"user_id": ownerID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookmarks := []model.Bookmark{}
	for rows.Next() {
		var b model.Bookmark
		if err := scanPgBookmark(rows.Scan, &b); err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, b)
	}

	return bookmarks, rows.Err()
}

// Get returns a single bookmark owned by ownerID.
func (s *PostgresStore) Get(ctx context.Context, ownerID string, id int64) (model.Bookmark, error) {
	query, args, err := psql.
		Select(pgColumns...).
		From("bookmarks").
		Where(sq.Eq{"id": id, "user_id": ownerID}).
		ToSql()
	if err != nil {
		return model.Bookmark{}, err
	}

	var b model.Bookmark
	err = scanPgBookmark(s.pool.QueryRow(ctx, query, args...).Scan, &b)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Bookmark{}, ErrNotFound
	}
	return b, err
}

// Insert creates a bookmark and returns it with the assigned id.
func (s *PostgresStore) Insert(ctx context.Context, ownerID string, params model.NewBookmarkParams) (model.Bookmark, error) {
	query, args, err := psql.
		Insert("bookmarks").
		Columns("user_id", "title", "url").
		Values(ownerID, params.Title, params.URL).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return model.Bookmark{}, err
	}

	b := model.Bookmark{
		UserID: ownerID,
		Title:  params.Title,
		URL:    params.URL,
	}
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt); err != nil {
		return model.Bookmark{}, err
	}
	return b, nil
}

// Update applies a partial update to the owner's bookmark.
func (s *PostgresStore) Update(ctx context.Context, ownerID string, id int64, fields Fields) error {
	if fields.Empty() {
		return nil
	}

	update := psql.Update("bookmarks").Where(sq.Eq{"id": id, "user_id": ownerID})

	if fields.Title != nil {
		update = update.Set("title", *fields.Title)
	}
	if fields.URL != nil {
		update = update.Set("url", *fields.URL)
	}
	if fields.Verified != nil {
		update = update.Set("verified", *fields.Verified)
	}
	if fields.VerificationMessage != nil {
		update = update.Set("verification_message", *fields.VerificationMessage)
	}
	if fields.VerifiedAt != nil {
		update = update.Set("verified_at", *fields.VerifiedAt)
	}
	if fields.PreviewImage != nil {
		update = update.Set("preview_image", *fields.PreviewImage)
	}
	if fields.PreviewTitle != nil {
		update = update.Set("preview_title", *fields.PreviewTitle)
	}
	if fields.PreviewDescription != nil {
		update = update.Set("preview_description", *fields.PreviewDescription)
	}
	if fields.Favicon != nil {
		update = update.Set("favicon", *fields.Favicon)
	}
	if fields.LastPreviewFetch != nil {
		update = update.Set("last_preview_fetch", *fields.LastPreviewFetch)
	}

	query, args, err := update.ToSql()
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the owner's bookmark.
func (s *PostgresStore) Delete(ctx context.Context, ownerID string, id int64) error {
	query, args, err := psql.
		Delete("bookmarks").
		Where(sq.Eq{"id": id, "user_id": ownerID}).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPgBookmark(scan func(...any) error, b *model.Bookmark) error {
	return scan(
		&b.ID, &b.UserID, &b.Title, &b.URL, &b.CreatedAt,
		&b.Verified, &b.VerificationMessage, &b.VerifiedAt,
		&b.PreviewImage, &b.PreviewTitle, &b.PreviewDescription, &b.Favicon, &b.LastPreviewFetch,
	)
}
