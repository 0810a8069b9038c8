package repositories

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tunedex/tunedex/internal/models"
	"github.com/tunedex/tunedex/internal/shared"
)

// MediaRepository persists downloaded image assets: the raw bytes go to a
// directory on disk, and a media row records the stored path.
//
// Files are addressed by name only. A name collision is resolved by
// renaming (name_1.jpg, name_2.jpg, ...), never by overwriting, and there
// is no content-hash dedup: the same remote image stored under two names
// occupies two files.
type MediaRepository struct {
	db  *sql.DB
	dir string
}

// NewMediaRepository creates a new MediaRepository writing files under dir.
func NewMediaRepository(db *sql.DB, dir string) *MediaRepository {
	return &MediaRepository{db: db, dir: dir}
}

// Create writes the asset bytes under the requested filename (renaming on
// collision) and inserts the media row. The asset's Path is set to the
// stored location.
func (r *MediaRepository) Create(asset *models.MediaAsset, data []byte, filename string) error {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("failed to create media directory: %w", err)
	}

	path, err := r.writeData(data, filename)
	if err != nil {
		return err
	}
	asset.Path = path

	sequence, err := NextSequence(r.db, "media")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	asset.ID = shared.GenerateID()
	asset.Sequence = sequence
	asset.CreatedAt = time.Now().UTC()

	if err := asset.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	_, err = r.db.Exec(
		"INSERT INTO media (id, sequence, name, path, alt, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		asset.ID, asset.Sequence, asset.Name, asset.Path, asset.Alt, asset.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert media: %w", err)
	}

	return nil
}

// Get retrieves a media row by ID.
func (r *MediaRepository) Get(id string) (*models.MediaAsset, error) {
	var asset models.MediaAsset
	err := r.db.QueryRow(
		"SELECT id, sequence, name, path, alt, created_at FROM media WHERE id = ?",
		id,
	).Scan(&asset.ID, &asset.Sequence, &asset.Name, &asset.Path, &asset.Alt, &asset.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: media %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan media: %w", err)
	}

	return &asset, nil
}

// writeData stores data under filename inside the media directory, appending
// a numeric suffix while the target exists.
func (r *MediaRepository) writeData(data []byte, filename string) (string, error) {
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)

	candidate := filepath.Join(r.dir, filename)
	for i := 1; ; i++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			break
		}
		candidate = filepath.Join(r.dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
	}

	if err := os.WriteFile(candidate, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write media file: %w", err)
	}

	return candidate, nil
}
