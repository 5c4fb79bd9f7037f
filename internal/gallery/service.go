package gallery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/styleai/styleai/internal/apiclient"
	"github.com/styleai/styleai/internal/serviceerr"
)

// RemoteSource is the slice of the backend API the gallery needs.
type RemoteSource interface {
	ListImages(ctx context.Context) ([]apiclient.RemoteImage, error)
	FetchImage(ctx context.Context, filename string) ([]byte, error)
}

// Service reconciles the local gallery store against the backend listing
// and manages downloaded copies on disk.
type Service struct {
	remote RemoteSource
	repo   Repository
	dir    string

	now func() time.Time
}

// NewService creates a gallery service. Downloaded images are written
// under dir.
func NewService(remote RemoteSource, repo Repository, dir string) *Service {
	return &Service{
		remote: remote,
		repo:   repo,
		dir:    dir,
		now:    time.Now,
	}
}

// Sync pulls the backend listing and upserts every entry into the local
// store. Local-only fields such as the downloaded path survive the merge.
// It returns the number of remote entries seen.
func (s *Service) Sync(ctx context.Context) (int, error) {
	remote, err := s.remote.ListImages(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing remote images: %w", err)
	}

	syncedAt := s.now()

	for _, img := range remote {
		item := Item{
			ID:               img.ID,
			Filename:         img.Filename,
			OriginalFilename: img.OriginalFilename,
			Style:            img.Style,
			URL:              img.URL,
			TakenAt:          parseTimestamp(img.Timestamp),
			SyncedAt:         syncedAt,
		}

		existing, err := s.repo.Get(ctx, img.ID)
		switch {
		case err == nil:
			item.LocalPath = existing.LocalPath
		case errors.Is(err, serviceerr.ErrNotFound):
		default:
			return 0, fmt.Errorf("looking up item %s: %w", img.ID, err)
		}

		if err := s.repo.Upsert(ctx, item); err != nil {
			return 0, fmt.Errorf("storing item %s: %w", img.ID, err)
		}
	}

	slogctx.Debug(ctx, "Synced gallery", "count", len(remote))

	return len(remote), nil
}

// Record stores a freshly processed image in the local gallery without
// waiting for the next sync.
func (s *Service) Record(ctx context.Context, res apiclient.UploadResult) error {
	item := Item{
		ID:               res.ID,
		Filename:         res.Filename,
		OriginalFilename: res.OriginalFilename,
		Style:            res.Style,
		URL:              res.URL,
		TakenAt:          parseTimestamp(res.Timestamp),
		SyncedAt:         s.now(),
	}

	if err := s.repo.Upsert(ctx, item); err != nil {
		return fmt.Errorf("storing item %s: %w", res.ID, err)
	}

	return nil
}

// Items returns the local gallery, newest first.
func (s *Service) Items(ctx context.Context) ([]Item, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing gallery items: %w", err)
	}

	return items, nil
}

// Download fetches the image bytes for the given item and writes them under
// the gallery directory. It records the resulting path and returns it.
// Downloading an already downloaded item overwrites the file.
func (s *Service) Download(ctx context.Context, id string) (string, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", fmt.Errorf("looking up item %s: %w", id, err)
	}

	data, err := s.remote.FetchImage(ctx, item.Filename)
	if err != nil {
		return "", fmt.Errorf("fetching image %s: %w", item.Filename, err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating gallery directory: %w", err)
	}

	path := filepath.Join(s.dir, filepath.Base(item.Filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing image file: %w", err)
	}

	item.LocalPath = path
	if err := s.repo.Upsert(ctx, item); err != nil {
		return "", fmt.Errorf("recording download path: %w", err)
	}

	slogctx.Info(ctx, "Downloaded image", "id", id, "path", path)

	return path, nil
}

// Remove deletes the item from the local store and removes its downloaded
// file if one exists. The backend copy is untouched.
func (s *Service) Remove(ctx context.Context, id string) error {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("looking up item %s: %w", id, err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting item %s: %w", id, err)
	}

	if item.LocalPath != "" {
		if err := os.Remove(item.LocalPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing downloaded file: %w", err)
		}
	}

	return nil
}

// parseTimestamp accepts the timestamp formats the backend has emitted over
// time. Unparseable values come back as the zero time rather than failing
// the sync.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	return time.Time{}
}
