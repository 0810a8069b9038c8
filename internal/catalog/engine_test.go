package catalog

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/tunedex/tunedex/internal/models"
	"github.com/tunedex/tunedex/internal/providers"
	"github.com/tunedex/tunedex/internal/repositories"
	"github.com/tunedex/tunedex/internal/shared"
)

// fakeDiscogs is a configurable stand-in for the Discogs client used by the
// speculative band membership check.
type fakeDiscogs struct {
	results     []providers.Result
	details     *providers.Details
	searchErr   error
	detailsErr  error
	searchCalls int
}

func (f *fakeDiscogs) Search(ctx context.Context, query, kind string) ([]providers.Result, error) {
	f.searchCalls++
	return f.results, f.searchErr
}

func (f *fakeDiscogs) Details(ctx context.Context, id, kind string) (*providers.Details, error) {
	return f.details, f.detailsErr
}

func (f *fakeDiscogs) Name() string { return providers.NameDiscogs }

type fakeFetcher struct {
	data []byte
	err  error
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f.data, f.err
}

type engineEnv struct {
	engine   *Engine
	nodes    *repositories.NodeRepository
	terms    *repositories.TermRepository
	discogs  *fakeDiscogs
	fetcher  *fakeFetcher
	mediaDir string
}

// setupEngine wires an Engine against an in-memory database with fake
// provider and fetcher collaborators.
func setupEngine(t *testing.T) *engineEnv {
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

	env := &engineEnv{
		nodes:    repositories.NewNodeRepository(db),
		terms:    repositories.NewTermRepository(db),
		discogs:  &fakeDiscogs{},
		fetcher:  &fakeFetcher{},
		mediaDir: t.TempDir(),
	}
	env.engine = NewEngine(
		env.nodes,
		env.terms,
		repositories.NewMediaRepository(db, env.mediaDir),
		env.fetcher,
		env.discogs,
		shared.NewLogger(io.Discard),
	)

	return env
}

func TestCreateContent(t *testing.T) {
	ctx := context.Background()

	t.Run("Artist", func(t *testing.T) {
		env := setupEngine(t)

		node := env.engine.CreateContent(ctx, &models.MergedRecord{
			Name:        "Miles Davis",
			Profile:     "Trumpeter and bandleader.",
			URL:         "https://example.com/miles",
			Genres:      []string{"Jazz"},
			ProviderIDs: map[string]string{providers.NameSpotify: "sp1", providers.NameDiscogs: "dc1"},
		}, models.KindArtist)
		if node == nil {
			t.Fatal("expected a created node")
		}

		if node.Bundle != models.BundleArtist {
			t.Errorf("expected artist bundle, got %q", node.Bundle)
		}
		if node.SpotifyID != "sp1" || node.DiscogsID != "dc1" {
			t.Errorf("expected both provider IDs recorded, got %q / %q", node.SpotifyID, node.DiscogsID)
		}
		if len(node.GenreTermIDs) != 1 {
			t.Errorf("expected one genre term, got %d", len(node.GenreTermIDs))
		}
	})

	t.Run("Artist Idempotent", func(t *testing.T) {
		env := setupEngine(t)
		rec := &models.MergedRecord{Name: "Miles Davis", Profile: "Trumpeter."}

		first := env.engine.CreateContent(ctx, rec, models.KindArtist)
		second := env.engine.CreateContent(ctx, rec, models.KindArtist)
		if first == nil || second == nil {
			t.Fatal("expected both upserts to succeed")
		}

		if first.ID != second.ID {
			t.Errorf("expected second upsert to reuse node %s, got %s", first.ID, second.ID)
		}

		all, err := env.nodes.List(models.BundleArtist)
		if err != nil {
			t.Fatalf("failed to list artists: %v", err)
		}
		if len(all) != 1 {
			t.Errorf("expected exactly one artist node, got %d", len(all))
		}
	})

	t.Run("Artist Partial Update", func(t *testing.T) {
		env := setupEngine(t)

		env.engine.CreateContent(ctx, &models.MergedRecord{
			Name:    "Miles Davis",
			Profile: "Trumpeter.",
		}, models.KindArtist)

		// An empty incoming profile must not clear the stored one.
		node := env.engine.CreateContent(ctx, &models.MergedRecord{
			Name:    "Miles Davis",
			Profile: "  ",
			URL:     "https://example.com/miles",
		}, models.KindArtist)
		if node == nil {
			t.Fatal("expected the update to succeed")
		}

		if node.Description != "Trumpeter." {
			t.Errorf("expected profile preserved, got %q", node.Description)
		}
		if node.Website != "https://example.com/miles" {
			t.Errorf("expected website updated, got %q", node.Website)
		}
	})

	t.Run("Band Resolves Members", func(t *testing.T) {
		env := setupEngine(t)

		node := env.engine.CreateContent(ctx, &models.MergedRecord{
			Name:    "The Example",
			Members: []string{"A", "B", "A"},
		}, models.KindArtist)
		if node == nil {
			t.Fatal("expected a created band")
		}

		if node.Bundle != models.BundleBand {
			t.Errorf("expected band bundle for record with members, got %q", node.Bundle)
		}
		if len(node.MemberNodeIDs) != 2 {
			t.Errorf("expected two distinct members, got %d", len(node.MemberNodeIDs))
		}

		for _, name := range []string{"A", "B"} {
			member, err := env.nodes.FindByTitle(models.BundleArtist, name)
			if err != nil {
				t.Fatalf("failed to look up member %q: %v", name, err)
			}
			if member == nil {
				t.Errorf("expected member artist %q to be created", name)
			}
		}
	})

	t.Run("Reclassification", func(t *testing.T) {
		env := setupEngine(t)

		artist := &models.Node{Bundle: models.BundleArtist, Title: "The Example", Status: true}
		if err := env.nodes.Create(artist); err != nil {
			t.Fatalf("failed to seed artist: %v", err)
		}
		song := &models.Node{
			Bundle: models.BundleSong, Title: "Opening Track", Status: true,
			ArtistNodeID: artist.ID,
		}
		if err := env.nodes.Create(song); err != nil {
			t.Fatalf("failed to seed song: %v", err)
		}

		band := env.engine.CreateContent(ctx, &models.MergedRecord{
			Name:    "The Example",
			Members: []string{"A", "B"},
		}, models.KindArtist)
		if band == nil {
			t.Fatal("expected band to be created")
		}
		if band.Bundle != models.BundleBand {
			t.Fatalf("expected band bundle, got %q", band.Bundle)
		}

		repointed, err := env.nodes.Get(song.ID)
		if err != nil {
			t.Fatalf("failed to reload song: %v", err)
		}
		if repointed.ArtistNodeID != band.ID {
			t.Errorf("expected song repointed to band %s, got %s", band.ID, repointed.ArtistNodeID)
		}

		gone, err := env.nodes.FindByTitle(models.BundleArtist, "The Example")
		if err != nil {
			t.Fatalf("failed to check for absorbed artist: %v", err)
		}
		if gone != nil {
			t.Error("expected the artist node to be deleted after reclassification")
		}
	})

	t.Run("Reclassification Of Band Member", func(t *testing.T) {
		env := setupEngine(t)

		member := &models.Node{Bundle: models.BundleArtist, Title: "A", Status: true}
		if err := env.nodes.Create(member); err != nil {
			t.Fatalf("failed to seed member artist: %v", err)
		}
		other := &models.Node{
			Bundle: models.BundleBand, Title: "The Example", Status: true,
			MemberNodeIDs: []string{member.ID},
		}
		if err := env.nodes.Create(other); err != nil {
			t.Fatalf("failed to seed band: %v", err)
		}

		band := env.engine.CreateContent(ctx, &models.MergedRecord{
			Name:    "A",
			Members: []string{"X", "Y"},
		}, models.KindArtist)
		if band == nil {
			t.Fatal("expected band to be created")
		}

		gone, err := env.nodes.FindByTitle(models.BundleArtist, "A")
		if err != nil {
			t.Fatalf("failed to check for absorbed artist: %v", err)
		}
		if gone != nil {
			t.Error("expected the member artist to be deleted after reclassification")
		}

		reloaded, err := env.nodes.Get(other.ID)
		if err != nil {
			t.Fatalf("failed to reload band: %v", err)
		}
		if len(reloaded.MemberNodeIDs) != 1 || reloaded.MemberNodeIDs[0] != band.ID {
			t.Errorf("expected membership repointed to band %s, got %v", band.ID, reloaded.MemberNodeIDs)
		}
	})

	t.Run("Album", func(t *testing.T) {
		env := setupEngine(t)

		node := env.engine.CreateContent(ctx, &models.MergedRecord{
			Name:   "Kind of Blue",
			Artist: "Miles Davis",
			Year:   "1959",
			Genres: []string{"Jazz"},
		}, models.KindAlbum)
		if node == nil {
			t.Fatal("expected a created album")
		}

		if node.ArtistName != "Miles Davis" {
			t.Errorf("expected artist name stored as text, got %q", node.ArtistName)
		}
		if node.Year != "1959" {
			t.Errorf("expected year 1959, got %q", node.Year)
		}

		// Albums are not deduplicated: a second submission creates a new node.
		again := env.engine.CreateContent(ctx, &models.MergedRecord{Name: "Kind of Blue"}, models.KindAlbum)
		if again == nil || again.ID == node.ID {
			t.Error("expected a second album submission to create a distinct node")
		}
	})

	t.Run("Song", func(t *testing.T) {
		env := setupEngine(t)

		node := env.engine.CreateContent(ctx, &models.MergedRecord{
			Name:   "So What",
			Artist: "Miles Davis",
			Album:  "Kind of Blue",
			Length: "3:05",
		}, models.KindSong)
		if node == nil {
			t.Fatal("expected a created song")
		}

		if node.LengthSeconds != 185 {
			t.Errorf("expected 185 seconds, got %d", node.LengthSeconds)
		}
		if node.Album != "Kind of Blue" {
			t.Errorf("expected album name stored, got %q", node.Album)
		}

		artist, err := env.nodes.FindByTitle(models.BundleArtist, "Miles Davis")
		if err != nil {
			t.Fatalf("failed to look up artist: %v", err)
		}
		if artist == nil {
			t.Fatal("expected the song's artist to be created lazily")
		}
		if node.ArtistNodeID != artist.ID {
			t.Errorf("expected song to reference artist %s, got %s", artist.ID, node.ArtistNodeID)
		}
	})

	t.Run("Missing Name", func(t *testing.T) {
		env := setupEngine(t)
		if node := env.engine.CreateContent(ctx, &models.MergedRecord{Name: "  "}, models.KindArtist); node != nil {
			t.Error("expected nil for a record without a name")
		}
	})

	t.Run("Unknown Kind", func(t *testing.T) {
		env := setupEngine(t)
		if node := env.engine.CreateContent(ctx, &models.MergedRecord{Name: "X"}, "playlist"); node != nil {
			t.Error("expected nil for an unknown kind")
		}
	})
}

func TestSpeculativePromotion(t *testing.T) {
	ctx := context.Background()

	t.Run("Promotes Existing Artist", func(t *testing.T) {
		env := setupEngine(t)

		artist := &models.Node{Bundle: models.BundleArtist, Title: "The Example", Status: true}
		if err := env.nodes.Create(artist); err != nil {
			t.Fatalf("failed to seed artist: %v", err)
		}

		env.discogs.results = []providers.Result{{ID: "42", Name: "The Example", Provider: providers.NameDiscogs}}
		env.discogs.details = &providers.Details{
			Result:  providers.Result{ID: "42", Name: "The Example", Provider: providers.NameDiscogs},
			Members: []string{"A", "B"},
		}

		song := env.engine.CreateContent(ctx, &models.MergedRecord{
			Name:   "Opening Track",
			Artist: "The Example",
		}, models.KindSong)
		if song == nil {
			t.Fatal("expected the song to be created")
		}

		band, err := env.nodes.FindByTitle(models.BundleBand, "The Example")
		if err != nil {
			t.Fatalf("failed to look up band: %v", err)
		}
		if band == nil {
			t.Fatal("expected the artist to be promoted to a band")
		}
		if song.ArtistNodeID != band.ID {
			t.Errorf("expected song to reference the band %s, got %s", band.ID, song.ArtistNodeID)
		}

		gone, err := env.nodes.FindByTitle(models.BundleArtist, "The Example")
		if err != nil {
			t.Fatalf("failed to check for absorbed artist: %v", err)
		}
		if gone != nil {
			t.Error("expected the plain artist to be deleted after promotion")
		}
	})

	t.Run("Skips Freshly Created Artist", func(t *testing.T) {
		env := setupEngine(t)

		env.discogs.results = []providers.Result{{ID: "42", Name: "The Example", Provider: providers.NameDiscogs}}
		env.discogs.details = &providers.Details{
			Result:  providers.Result{ID: "42", Name: "The Example", Provider: providers.NameDiscogs},
			Members: []string{"A", "B"},
		}

		song := env.engine.CreateContent(ctx, &models.MergedRecord{
			Name:   "Opening Track",
			Artist: "The Example",
		}, models.KindSong)
		if song == nil {
			t.Fatal("expected the song to be created")
		}
		if env.discogs.searchCalls != 0 {
			t.Errorf("expected no membership check for a fresh artist, got %d calls", env.discogs.searchCalls)
		}

		artist, err := env.nodes.FindByTitle(models.BundleArtist, "The Example")
		if err != nil {
			t.Fatalf("failed to look up artist: %v", err)
		}
		if artist == nil {
			t.Fatal("expected the lazily created artist to survive")
		}
		if song.ArtistNodeID != artist.ID {
			t.Errorf("expected song to reference the artist %s, got %s", artist.ID, song.ArtistNodeID)
		}
	})

	t.Run("No Members Keeps Artist", func(t *testing.T) {
		env := setupEngine(t)

		artist := &models.Node{Bundle: models.BundleArtist, Title: "Miles Davis", Status: true}
		if err := env.nodes.Create(artist); err != nil {
			t.Fatalf("failed to seed artist: %v", err)
		}

		env.discogs.results = []providers.Result{{ID: "7", Name: "Miles Davis", Provider: providers.NameDiscogs}}
		env.discogs.details = &providers.Details{
			Result: providers.Result{ID: "7", Name: "Miles Davis", Provider: providers.NameDiscogs},
		}

		song := env.engine.CreateContent(ctx, &models.MergedRecord{
			Name:   "So What",
			Artist: "Miles Davis",
		}, models.KindSong)
		if song == nil {
			t.Fatal("expected the song to be created")
		}
		if song.ArtistNodeID != artist.ID {
			t.Errorf("expected song to keep the plain artist %s, got %s", artist.ID, song.ArtistNodeID)
		}
	})

	t.Run("Provider Error Swallowed", func(t *testing.T) {
		env := setupEngine(t)

		artist := &models.Node{Bundle: models.BundleArtist, Title: "Miles Davis", Status: true}
		if err := env.nodes.Create(artist); err != nil {
			t.Fatalf("failed to seed artist: %v", err)
		}

		env.discogs.searchErr = shared.ErrAPIRequest

		song := env.engine.CreateContent(ctx, &models.MergedRecord{
			Name:   "So What",
			Artist: "Miles Davis",
		}, models.KindSong)
		if song == nil {
			t.Fatal("expected the song to be created despite provider failure")
		}
		if song.ArtistNodeID != artist.ID {
			t.Errorf("expected song to fall back to the plain artist %s, got %s", artist.ID, song.ArtistNodeID)
		}
	})
}

func TestTermDedup(t *testing.T) {
	env := setupEngine(t)

	first, err := env.engine.ensureTerms([]string{"Rock", "Jazz"})
	if err != nil {
		t.Fatalf("failed to ensure terms: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected two term IDs, got %d", len(first))
	}

	second, err := env.engine.ensureTerms([]string{"Rock"})
	if err != nil {
		t.Fatalf("failed to ensure terms: %v", err)
	}
	if len(second) != 1 || second[0] != first[0] {
		t.Errorf("expected Rock to resolve to the same term %s, got %v", first[0], second)
	}

	t.Run("Repeated Name Within Call", func(t *testing.T) {
		ids, err := env.engine.ensureTerms([]string{"Blues", "Blues"})
		if err != nil {
			t.Fatalf("failed to ensure terms: %v", err)
		}
		if len(ids) != 2 || ids[0] != ids[1] {
			t.Errorf("expected the repeated name to reuse one ID, got %v", ids)
		}
	})
}

func TestMaterializeAsset(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores Sanitized Filename", func(t *testing.T) {
		env := setupEngine(t)
		env.fetcher.data = []byte("image-bytes")

		node := env.engine.CreateContent(ctx, &models.MergedRecord{
			Name:  "Miles Davis",
			Image: "https://example.com/miles.jpg",
		}, models.KindArtist)
		if node == nil {
			t.Fatal("expected the artist to be created")
		}
		if node.ImageMediaID == "" {
			t.Fatal("expected an image asset to be attached")
		}

		stored := filepath.Join(env.mediaDir, "Miles_Davis.jpg")
		if _, err := os.Stat(stored); err != nil {
			t.Errorf("expected %s to exist: %v", stored, err)
		}
	})

	t.Run("Fetch Failure Skips Asset", func(t *testing.T) {
		env := setupEngine(t)
		env.fetcher.err = shared.ErrAPIRequest

		node := env.engine.CreateContent(ctx, &models.MergedRecord{
			Name:  "Miles Davis",
			Image: "https://example.com/miles.jpg",
		}, models.KindArtist)
		if node == nil {
			t.Fatal("expected the artist to be created despite the failed download")
		}
		if node.ImageMediaID != "" {
			t.Error("expected no asset to be attached after a failed fetch")
		}
	})
}
