package repositories

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tunedex/tunedex/internal/models"
	"github.com/tunedex/tunedex/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// A second pooled connection would see a fresh empty in-memory database.
	shared.ConfigureDatabase(db, 1, 1)

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestNodeRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewNodeRepository(db)

		node := &models.Node{Bundle: models.BundleArtist, Title: "The Example", Status: true}
		if err := repo.Create(node); err != nil {
			t.Fatalf("failed to create node: %v", err)
		}

		if node.ID == "" {
			t.Error("node ID should be set after creation")
		}
		if node.Sequence == 0 {
			t.Error("node sequence should be set after creation")
		}
	})

	t.Run("Create Invalid", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewNodeRepository(db)

		if err := repo.Create(&models.Node{Bundle: "playlist", Title: "x"}); err == nil {
			t.Error("expected validation error for unknown bundle")
		}
		if err := repo.Create(&models.Node{Bundle: models.BundleArtist, Title: "  "}); err == nil {
			t.Error("expected validation error for blank title")
		}
	})

	t.Run("FindByTitle", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewNodeRepository(db)

		node := &models.Node{Bundle: models.BundleArtist, Title: "The Example", Status: true}
		if err := repo.Create(node); err != nil {
			t.Fatalf("failed to create node: %v", err)
		}

		found, err := repo.FindByTitle(models.BundleArtist, "The Example")
		if err != nil {
			t.Fatalf("failed to find node: %v", err)
		}
		if found == nil || found.ID != node.ID {
			t.Errorf("expected node %s, got %v", node.ID, found)
		}

		// Same title under a different bundle is a different identity.
		missing, err := repo.FindByTitle(models.BundleBand, "The Example")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if missing != nil {
			t.Errorf("expected nil for band lookup, got %v", missing)
		}
	})

	t.Run("Update With Links", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewNodeRepository(db)
		terms := NewTermRepository(db)

		term := &models.Term{Vocabulary: "music_genre", Name: "Rock"}
		if err := terms.Create(term); err != nil {
			t.Fatalf("failed to create term: %v", err)
		}

		node := &models.Node{Bundle: models.BundleArtist, Title: "The Example", Status: true}
		if err := repo.Create(node); err != nil {
			t.Fatalf("failed to create node: %v", err)
		}

		node.Description = "A band from somewhere."
		node.GenreTermIDs = []string{term.ID}
		if err := repo.Update(node); err != nil {
			t.Fatalf("failed to update node: %v", err)
		}

		got, err := repo.Get(node.ID)
		if err != nil {
			t.Fatalf("failed to get node: %v", err)
		}
		if got.Description != "A band from somewhere." {
			t.Errorf("expected updated description, got %q", got.Description)
		}
		if len(got.GenreTermIDs) != 1 || got.GenreTermIDs[0] != term.ID {
			t.Errorf("expected genre link, got %v", got.GenreTermIDs)
		}
	})

	t.Run("Update Missing", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewNodeRepository(db)

		node := &models.Node{ID: "nope", Bundle: models.BundleArtist, Title: "X"}
		if err := repo.Update(node); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewNodeRepository(db)

		node := &models.Node{Bundle: models.BundleArtist, Title: "The Example", Status: true}
		if err := repo.Create(node); err != nil {
			t.Fatalf("failed to create node: %v", err)
		}

		if err := repo.Delete(node.ID); err != nil {
			t.Fatalf("failed to delete node: %v", err)
		}

		if _, err := repo.Get(node.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("SongsByArtist And Repoint", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewNodeRepository(db)

		artist := &models.Node{Bundle: models.BundleArtist, Title: "The Example", Status: true}
		band := &models.Node{Bundle: models.BundleBand, Title: "The Example", Status: true}
		for _, n := range []*models.Node{artist, band} {
			if err := repo.Create(n); err != nil {
				t.Fatalf("failed to create node: %v", err)
			}
		}

		for _, title := range []string{"Song One", "Song Two"} {
			song := &models.Node{
				Bundle:       models.BundleSong,
				Title:        title,
				Status:       true,
				ArtistNodeID: artist.ID,
			}
			if err := repo.Create(song); err != nil {
				t.Fatalf("failed to create song: %v", err)
			}
		}

		songs, err := repo.SongsByArtist(artist.ID)
		if err != nil {
			t.Fatalf("failed to list songs: %v", err)
		}
		if len(songs) != 2 {
			t.Fatalf("expected 2 songs, got %d", len(songs))
		}

		moved, err := repo.RepointSongs(artist.ID, band.ID)
		if err != nil {
			t.Fatalf("failed to repoint songs: %v", err)
		}
		if moved != 2 {
			t.Errorf("expected 2 songs repointed, got %d", moved)
		}

		remaining, err := repo.SongsByArtist(artist.ID)
		if err != nil {
			t.Fatalf("failed to list songs: %v", err)
		}
		if len(remaining) != 0 {
			t.Errorf("expected no songs left on artist, got %d", len(remaining))
		}

		rewired, err := repo.SongsByArtist(band.ID)
		if err != nil {
			t.Fatalf("failed to list songs: %v", err)
		}
		if len(rewired) != 2 {
			t.Errorf("expected 2 songs on band, got %d", len(rewired))
		}
	})

	t.Run("RepointMembers", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewNodeRepository(db)

		artist := &models.Node{Bundle: models.BundleArtist, Title: "A", Status: true}
		if err := repo.Create(artist); err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}
		band := &models.Node{
			Bundle: models.BundleBand, Title: "The Example", Status: true,
			MemberNodeIDs: []string{artist.ID},
		}
		if err := repo.Create(band); err != nil {
			t.Fatalf("failed to create band: %v", err)
		}
		replacement := &models.Node{Bundle: models.BundleBand, Title: "A", Status: true}
		if err := repo.Create(replacement); err != nil {
			t.Fatalf("failed to create replacement band: %v", err)
		}

		moved, err := repo.RepointMembers(artist.ID, replacement.ID)
		if err != nil {
			t.Fatalf("failed to repoint members: %v", err)
		}
		if moved != 1 {
			t.Errorf("expected 1 membership repointed, got %d", moved)
		}

		// The membership no longer blocks deleting the artist node.
		if err := repo.Delete(artist.ID); err != nil {
			t.Errorf("expected artist delete to succeed after repoint: %v", err)
		}

		reloaded, err := repo.Get(band.ID)
		if err != nil {
			t.Fatalf("failed to reload band: %v", err)
		}
		if len(reloaded.MemberNodeIDs) != 1 || reloaded.MemberNodeIDs[0] != replacement.ID {
			t.Errorf("expected membership on %s, got %v", replacement.ID, reloaded.MemberNodeIDs)
		}
	})
}

func TestTermRepository(t *testing.T) {
	t.Run("Create And FindByName", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTermRepository(db)

		term := &models.Term{Vocabulary: "music_genre", Name: "Rock"}
		if err := repo.Create(term); err != nil {
			t.Fatalf("failed to create term: %v", err)
		}

		found, err := repo.FindByName("music_genre", "Rock")
		if err != nil {
			t.Fatalf("failed to find term: %v", err)
		}
		if found == nil || found.ID != term.ID {
			t.Errorf("expected term %s, got %v", term.ID, found)
		}

		missing, err := repo.FindByName("music_genre", "Jazz")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if missing != nil {
			t.Errorf("expected nil for unknown term, got %v", missing)
		}
	})

	t.Run("Duplicate Name Rejected", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTermRepository(db)

		if err := repo.Create(&models.Term{Vocabulary: "music_genre", Name: "Rock"}); err != nil {
			t.Fatalf("failed to create term: %v", err)
		}
		if err := repo.Create(&models.Term{Vocabulary: "music_genre", Name: "Rock"}); err == nil {
			t.Error("expected unique constraint violation")
		}
	})
}

func TestMediaRepository(t *testing.T) {
	t.Run("Create Writes File", func(t *testing.T) {
		db := setupTestDB(t)
		dir := t.TempDir()
		repo := NewMediaRepository(db, dir)

		asset := &models.MediaAsset{Name: "The Example", Alt: "The Example"}
		if err := repo.Create(asset, []byte("fake image bytes"), "The_Example.jpg"); err != nil {
			t.Fatalf("failed to create media: %v", err)
		}

		if asset.Path != filepath.Join(dir, "The_Example.jpg") {
			t.Errorf("unexpected path %s", asset.Path)
		}
		if _, err := os.Stat(asset.Path); err != nil {
			t.Errorf("expected stored file: %v", err)
		}

		got, err := repo.Get(asset.ID)
		if err != nil {
			t.Fatalf("failed to get media: %v", err)
		}
		if got.Name != "The Example" {
			t.Errorf("unexpected media name %s", got.Name)
		}
	})

	t.Run("Collision Renames", func(t *testing.T) {
		db := setupTestDB(t)
		dir := t.TempDir()
		repo := NewMediaRepository(db, dir)

		first := &models.MediaAsset{Name: "Cover"}
		second := &models.MediaAsset{Name: "Cover"}

		if err := repo.Create(first, []byte("one"), "Cover.jpg"); err != nil {
			t.Fatalf("failed to create first asset: %v", err)
		}
		if err := repo.Create(second, []byte("two"), "Cover.jpg"); err != nil {
			t.Fatalf("failed to create second asset: %v", err)
		}

		if second.Path != filepath.Join(dir, "Cover_1.jpg") {
			t.Errorf("expected renamed file, got %s", second.Path)
		}

		// Both files exist; identical content is stored twice by design.
		for _, path := range []string{first.Path, second.Path} {
			if _, err := os.Stat(path); err != nil {
				t.Errorf("expected file %s: %v", path, err)
			}
		}
	})
}
