// Package gallerysql stores gallery items in a local SQLite database.
package gallerysql

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/styleai/styleai/internal/gallery"
	"github.com/styleai/styleai/internal/serviceerr"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Open opens (creating if needed) the SQLite database at path and applies
// pending migrations.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// The sqlite driver serializes writes per connection; a single
	// connection avoids SQLITE_BUSY on concurrent writers.
	db.SetMaxOpenConns(1)

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate applies all pending schema migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	return nil
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) Upsert(ctx context.Context, item gallery.Item) error {
	if _, err := r.db.ExecContext(
		ctx, `INSERT INTO items (id, filename, original_filename, style, url, taken_at, local_path, synced_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id)
	DO UPDATE SET (filename, original_filename, style, url, taken_at, local_path, synced_at) =
		(excluded.filename, excluded.original_filename, excluded.style, excluded.url, excluded.taken_at, excluded.local_path, excluded.synced_at);`,
		item.ID, item.Filename, item.OriginalFilename, item.Style, item.URL,
		encodeTime(item.TakenAt), item.LocalPath, encodeTime(item.SyncedAt),
	); err != nil {
		return fmt.Errorf("upserting into items: %w", err)
	}

	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (gallery.Item, error) {
	row := r.db.QueryRowContext(
		ctx, `SELECT id, filename, original_filename, style, url, taken_at, local_path, synced_at
	FROM items
	WHERE id = ?;`,
		id,
	)

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return gallery.Item{}, serviceerr.ErrNotFound
		}

		return gallery.Item{}, fmt.Errorf("selecting from items: %w", err)
	}

	return item, nil
}

func (r *Repository) List(ctx context.Context) ([]gallery.Item, error) {
	rows, err := r.db.QueryContext(
		ctx, `SELECT id, filename, original_filename, style, url, taken_at, local_path, synced_at
	FROM items
	ORDER BY taken_at DESC, id;`,
	)
	if err != nil {
		return nil, fmt.Errorf("selecting from items: %w", err)
	}
	defer rows.Close()

	var items []gallery.Item

	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item row: %w", err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating item rows: %w", err)
	}

	return items, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("deleting from items: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if affected == 0 {
		return serviceerr.ErrNotFound
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (gallery.Item, error) {
	var (
		item     gallery.Item
		takenAt  string
		syncedAt string
	)

	if err := row.Scan(
		&item.ID, &item.Filename, &item.OriginalFilename, &item.Style,
		&item.URL, &takenAt, &item.LocalPath, &syncedAt,
	); err != nil {
		return gallery.Item{}, err
	}

	item.TakenAt = decodeTime(takenAt)
	item.SyncedAt = decodeTime(syncedAt)

	return item, nil
}

// Times are stored as RFC 3339 strings so lexical ordering in SQL matches
// chronological ordering. The zero time is stored as the empty string.
func encodeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}

	return t
}
