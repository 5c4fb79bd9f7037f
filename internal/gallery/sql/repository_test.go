package gallerysql_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/styleai/styleai/internal/gallery"
	gallerysql "github.com/styleai/styleai/internal/gallery/sql"
	"github.com/styleai/styleai/internal/serviceerr"
)

func newRepository(t *testing.T) *gallerysql.Repository {
	t.Helper()

	db, err := gallerysql.Open(context.Background(), filepath.Join(t.TempDir(), "gallery.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return gallerysql.NewRepository(db)
}

func sampleItem(id string, takenAt time.Time) gallery.Item {
	return gallery.Item{
		ID:               id,
		Filename:         "enhanced_" + id + ".jpg",
		OriginalFilename: id + ".jpg",
		Style:            "enhanced",
		URL:              "/uploads/enhanced_" + id + ".jpg",
		TakenAt:          takenAt,
		SyncedAt:         time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
	}
}

func TestRepository_UpsertGet(t *testing.T) {
	repo := newRepository(t)
	ctx := context.Background()

	want := sampleItem("a", time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Upsert(ctx, want))

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(want, got))

	// Upsert with the same ID replaces the row.
	want.Style = "vivid"
	want.LocalPath = "/tmp/a.jpg"
	require.NoError(t, repo.Upsert(ctx, want))

	got, err = repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(want, got))
}

func TestRepository_Get_NotFound(t *testing.T) {
	repo := newRepository(t)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, serviceerr.ErrNotFound)
}

func TestRepository_List_NewestFirst(t *testing.T) {
	repo := newRepository(t)
	ctx := context.Background()

	older := sampleItem("old", time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
	newer := sampleItem("new", time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC))
	undated := sampleItem("undated", time.Time{})

	for _, item := range []gallery.Item{older, newer, undated} {
		require.NoError(t, repo.Upsert(ctx, item))
	}

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "new", items[0].ID)
	assert.Equal(t, "old", items[1].ID)
	assert.Equal(t, "undated", items[2].ID)
}

func TestRepository_Delete(t *testing.T) {
	repo := newRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, sampleItem("a", time.Now())))
	require.NoError(t, repo.Delete(ctx, "a"))

	_, err := repo.Get(ctx, "a")
	assert.ErrorIs(t, err, serviceerr.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "a"), serviceerr.ErrNotFound)
}
