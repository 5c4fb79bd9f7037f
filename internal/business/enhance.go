package business

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	slogctx "github.com/veqryn/slog-context"

	"github.com/styleai/styleai/internal/apiclient"
	"github.com/styleai/styleai/internal/imaging"
	"github.com/styleai/styleai/internal/serviceerr"
)

// Enhance reads an image file, compresses it to the upload budget, submits
// it for processing and records the result locally. It requires an
// authenticated session.
func (a *App) Enhance(ctx context.Context, path string, opts imaging.Options) (apiclient.UploadResult, error) {
	tracer := otel.Tracer("styleai/enhance")

	ctx, span := tracer.Start(ctx, "enhance", trace.WithAttributes(
		attribute.String("file", path),
	))
	defer span.End()

	if !a.Sessions.Current().Authenticated() {
		return apiclient.UploadResult{}, fmt.Errorf("enhancing requires a login: %w", serviceerr.ErrInvalidCredentials)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return apiclient.UploadResult{}, fmt.Errorf("reading image file: %w", err)
	}

	compressed, err := imaging.Compress(data, opts)
	if err != nil {
		return apiclient.UploadResult{}, fmt.Errorf("compressing image: %w", err)
	}

	slogctx.Debug(ctx, "Compressed image",
		"width", compressed.Width,
		"height", compressed.Height,
		"quality", compressed.Quality,
		"size_kb", compressed.SizeKB,
	)

	result, err := a.Client.Upload(ctx, imaging.ToDataURL(compressed.Data))
	if err != nil {
		return apiclient.UploadResult{}, fmt.Errorf("uploading image: %w", err)
	}

	// The upload consumed a credit or trial slot.
	a.Usage.Invalidate()

	if err := a.Gallery.Record(ctx, result); err != nil {
		slogctx.Error(ctx, "Failed to record result locally", "error", err)
	}

	slogctx.Info(ctx, "Image enhanced", "id", result.ID, "filename", result.Filename)

	return result, nil
}
