package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jo-hoe/muralfolio/internal/backend/storage"
)

const (
	muralMediaPrefix      = "murals"
	submissionMediaPrefix = "submissions/murals"
	thumbnailPrefix       = "submissions/murals/thumbs"
	maxParallelUploads    = 4
)

// Upload is a single file received from a form.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (u Upload) detectedContentType() string {
	if u.ContentType != "" && u.ContentType != "application/octet-stream" {
		return u.ContentType
	}
	return http.DetectContentType(u.Data)
}

func isImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

func (service *CoreService) checkSizes(uploads []Upload) error {
	var messages []string
	for _, upload := range uploads {
		if int64(len(upload.Data)) > service.config.Media.MaxUploadBytes {
			messages = append(messages, fmt.Sprintf("File %s exceeds the maximum upload size", upload.Filename))
		}
	}
	if len(messages) > 0 {
		return fmt.Errorf("%w: %w", ErrMediaTooLarge, newValidationError(messages...))
	}
	return nil
}

// storeAll uploads every file concurrently and returns URLs in input order.
func (service *CoreService) storeAll(ctx context.Context, uploads []Upload, key func(index int, upload Upload) string) ([]string, error) {
	urls := make([]string, len(uploads))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxParallelUploads)

	for i, upload := range uploads {
		group.Go(func() error {
			url, err := service.mediaStore.Put(groupCtx, key(i, upload), upload.detectedContentType(), upload.Data)
			if err != nil {
				return fmt.Errorf("failed to store %s: %w", upload.Filename, err)
			}
			urls[i] = url
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

// UploadMuralMedia optimises images with the configured pipeline and stores all files
// under murals/. Videos and other files are stored unchanged.
func (service *CoreService) UploadMuralMedia(ctx context.Context, uploads []Upload) ([]string, error) {
	if len(uploads) == 0 {
		return nil, newValidationError("No files provided")
	}
	if err := service.checkSizes(uploads); err != nil {
		return nil, err
	}

	processed := make([]Upload, len(uploads))
	for i, upload := range uploads {
		processed[i] = service.optimize(upload)
	}

	now := service.now()
	urls, err := service.storeAll(ctx, processed, func(i int, upload Upload) string {
		return storage.ObjectKey(muralMediaPrefix, now, i, upload.Filename)
	})
	if err != nil {
		return nil, err
	}
	slog.Info("mural media uploaded", "count", len(urls))
	return urls, nil
}

// optimize runs the pipeline on images. On failure the original file is kept.
func (service *CoreService) optimize(upload Upload) Upload {
	contentType := upload.detectedContentType()
	if !isImage(contentType) || service.pipeline.Len() == 0 {
		return upload
	}

	out, err := service.pipeline.Execute(upload.Data)
	if err != nil {
		slog.Warn("media optimisation failed, storing original", "file", upload.Filename, "error", err)
		return upload
	}

	outType := http.DetectContentType(out)
	return Upload{
		Filename:    withExtension(upload.Filename, outType),
		ContentType: outType,
		Data:        out,
	}
}

func withExtension(filename, contentType string) string {
	var ext string
	switch contentType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	default:
		return filename
	}
	current := path.Ext(filename)
	if strings.EqualFold(current, ext) || (ext == ".jpg" && strings.EqualFold(current, ".jpeg")) {
		return filename
	}
	return strings.TrimSuffix(filename, current) + ext
}

// storeThumbnails is best effort. Failed or non-image files are skipped.
func (service *CoreService) storeThumbnails(ctx context.Context, uploads []Upload, key func(index int, filename string) string) []string {
	thumbs := make([]string, 0, len(uploads))
	if service.thumbnail == nil {
		return thumbs
	}
	for i, upload := range uploads {
		if !isImage(upload.detectedContentType()) {
			continue
		}
		data, err := service.thumbnail.Execute(upload.Data)
		if err != nil {
			slog.Warn("thumbnail generation failed", "file", upload.Filename, "error", err)
			continue
		}
		contentType := http.DetectContentType(data)
		url, err := service.mediaStore.Put(ctx, key(i, withExtension(upload.Filename, contentType)), contentType, data)
		if err != nil {
			slog.Warn("thumbnail upload failed", "file", upload.Filename, "error", err)
			continue
		}
		thumbs = append(thumbs, url)
	}
	return thumbs
}
