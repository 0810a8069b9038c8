package catalog

import (
	"context"
	"regexp"

	"github.com/tunedex/tunedex/internal/models"
)

// unsafeChars matches everything not allowed in a derived asset filename.
var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// materializeAsset downloads the image at url and stores it as a media
// asset named after label, returning the media ID or "" on any failure.
//
// The filename is derived from the label (unsafe characters replaced with
// underscores) with a fixed .jpg extension regardless of the actual content
// type. There is no content-hash dedup: the same remote image stored under
// two labels occupies two files. A failed fetch or store yields no asset,
// never an error; the enclosing node creation proceeds without the image.
func (e *Engine) materializeAsset(ctx context.Context, url, label string) string {
	if e.fetcher == nil || e.assets == nil {
		return ""
	}

	data, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		e.logger.Warn("failed to fetch image", "url", url, "error", err)
		return ""
	}

	filename := unsafeChars.ReplaceAllString(label, "_") + ".jpg"
	asset := &models.MediaAsset{Name: label, Alt: label}

	if err := e.assets.Create(asset, data, filename); err != nil {
		e.logger.Warn("failed to store image asset", "label", label, "error", err)
		return ""
	}

	e.logger.Debug("stored image asset", "label", label, "path", asset.Path)
	return asset.ID
}
