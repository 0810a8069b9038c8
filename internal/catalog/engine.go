// package catalog resolves merged provider records into persisted content
// nodes: artists, bands, albums, and songs, plus their genre terms and
// image assets.
//
// The engine owns the artist/band reclassification rule: a record destined
// for "artist" that carries band members is stored as a band, and an
// existing artist node sharing the title is absorbed into it.
package catalog

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/tunedex/tunedex/internal/models"
	"github.com/tunedex/tunedex/internal/providers"
	"github.com/tunedex/tunedex/internal/search"
	"github.com/tunedex/tunedex/internal/shared"
)

// NodeStore is the subset of the node repository the engine depends on.
type NodeStore interface {
	Create(node *models.Node) error
	Update(node *models.Node) error
	Delete(id string) error
	FindByTitle(bundle, title string) (*models.Node, error)
	RepointSongs(fromID, toID string) (int, error)
	RepointMembers(fromID, toID string) (int, error)
}

// TermStore is the subset of the term repository the engine depends on.
type TermStore interface {
	Create(term *models.Term) error
	FindByName(vocabulary, name string) (*models.Term, error)
}

// AssetStore is the subset of the media repository the engine depends on.
type AssetStore interface {
	Create(asset *models.MediaAsset, data []byte, filename string) error
}

// Engine turns [models.MergedRecord] values into content nodes.
//
// Identity is title-within-bundle: every upsert loads by title before
// creating. Provider IDs are recorded but never used for lookup, so two
// distinct artists sharing a name will collide on the same node.
type Engine struct {
	nodes   NodeStore
	terms   TermStore
	assets  AssetStore
	fetcher shared.Fetcher
	discogs providers.Provider
	logger  *log.Logger
}

// NewEngine creates an Engine. discogs powers the speculative band-member
// check during song artist resolution and may be nil to disable it; fetcher
// powers image downloads and may be nil to skip asset materialization.
func NewEngine(
	nodes NodeStore,
	terms TermStore,
	assets AssetStore,
	fetcher shared.Fetcher,
	discogs providers.Provider,
	logger *log.Logger,
) *Engine {
	return &Engine{
		nodes:   nodes,
		terms:   terms,
		assets:  assets,
		fetcher: fetcher,
		discogs: discogs,
		logger:  logger,
	}
}

// CreateContent materializes rec as a content node of the given kind.
//
// This is the engine's outermost boundary: every storage error is caught
// here, logged, and surfaced as nil. Callers translate nil into user-facing
// messaging.
func (e *Engine) CreateContent(ctx context.Context, rec *models.MergedRecord, kind string) *models.Node {
	if rec == nil || search.IsEmptyString(rec.Name) {
		e.logger.Error("cannot create content without a name", "kind", kind)
		return nil
	}

	var (
		node *models.Node
		err  error
	)

	switch kind {
	case models.KindArtist:
		if len(rec.Members) > 0 {
			node, err = e.upsertBand(ctx, rec)
		} else {
			node, err = e.upsertArtist(ctx, rec)
		}
	case models.KindAlbum:
		node, err = e.upsertAlbum(ctx, rec)
	case models.KindSong:
		node, err = e.upsertSong(ctx, rec)
	default:
		e.logger.Error("unknown content kind", "kind", kind)
		return nil
	}

	if err != nil {
		e.logger.Error("failed to create content", "kind", kind, "name", rec.Name, "error", err)
		return nil
	}

	e.logger.Info("content created", "bundle", node.Bundle, "title", node.Title, "id", node.ID)
	return node
}

// upsertArtist creates or partially updates an artist node. Fields with no
// incoming value are left untouched; the node is never deleted here.
func (e *Engine) upsertArtist(ctx context.Context, rec *models.MergedRecord) (*models.Node, error) {
	node, err := e.nodes.FindByTitle(models.BundleArtist, rec.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up artist: %w", err)
	}

	fresh := node == nil
	if fresh {
		node = &models.Node{Bundle: models.BundleArtist, Title: rec.Name, Status: true}
	}

	if err := e.applyProfileFields(ctx, node, rec); err != nil {
		return nil, err
	}

	if fresh {
		if err := e.nodes.Create(node); err != nil {
			return nil, fmt.Errorf("failed to create artist: %w", err)
		}
		return node, nil
	}

	if err := e.nodes.Update(node); err != nil {
		return nil, fmt.Errorf("failed to update artist: %w", err)
	}
	return node, nil
}

// upsertBand creates or partially updates a band node, resolves its member
// names to artist/band nodes, and then absorbs any artist node sharing the
// band's title.
func (e *Engine) upsertBand(ctx context.Context, rec *models.MergedRecord) (*models.Node, error) {
	node, err := e.nodes.FindByTitle(models.BundleBand, rec.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up band: %w", err)
	}

	fresh := node == nil
	if fresh {
		node = &models.Node{Bundle: models.BundleBand, Title: rec.Name, Status: true}
	}

	if err := e.applyProfileFields(ctx, node, rec); err != nil {
		return nil, err
	}

	if memberIDs := e.resolveMembers(rec.Members); len(memberIDs) > 0 {
		node.MemberNodeIDs = memberIDs
	}

	if fresh {
		if err := e.nodes.Create(node); err != nil {
			return nil, fmt.Errorf("failed to create band: %w", err)
		}
	} else if err := e.nodes.Update(node); err != nil {
		return nil, fmt.Errorf("failed to update band: %w", err)
	}

	e.adoptArtist(node)
	return node, nil
}

// upsertAlbum creates an album node. Albums are not deduplicated by title:
// every submission creates a new node. The album's artist is stored as
// plain text, not a node reference.
func (e *Engine) upsertAlbum(ctx context.Context, rec *models.MergedRecord) (*models.Node, error) {
	node := &models.Node{
		Bundle: models.BundleAlbum,
		Title:  rec.Name,
		Status: true,
	}

	if !search.IsEmptyString(rec.Artist) {
		node.ArtistName = rec.Artist
	}
	if !search.IsEmptyString(rec.Year) {
		node.Year = rec.Year
	}

	if err := e.applyProfileFields(ctx, node, rec); err != nil {
		return nil, err
	}

	if err := e.nodes.Create(node); err != nil {
		return nil, fmt.Errorf("failed to create album: %w", err)
	}
	return node, nil
}

// upsertSong creates a song node. Like albums, songs are never deduplicated
// by title. The song's artist name is resolved to an artist or band node,
// with a speculative Discogs member check that may promote a plain artist
// to a band along the way.
func (e *Engine) upsertSong(ctx context.Context, rec *models.MergedRecord) (*models.Node, error) {
	node := &models.Node{
		Bundle: models.BundleSong,
		Title:  rec.Name,
		Status: true,
	}

	if !search.IsEmptyString(rec.Artist) {
		artist, existed, err := e.resolveIdentity(rec.Artist)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve song artist: %w", err)
		}
		// The speculative check only applies to artists that were already
		// catalogued; a node created from this very reference has nothing
		// to reclassify yet.
		if existed && artist.Bundle == models.BundleArtist {
			artist = e.maybePromoteToBand(ctx, artist)
		}
		node.ArtistNodeID = artist.ID
	}

	if !search.IsEmptyString(rec.Album) {
		node.Album = rec.Album
	}
	if !search.IsEmptyString(rec.Length) {
		seconds, err := providers.ParseDuration(rec.Length)
		if err != nil {
			e.logger.Debug("ignoring unparseable song length", "length", rec.Length, "error", err)
		} else {
			node.LengthSeconds = seconds
		}
	}

	if err := e.applyProfileFields(ctx, node, rec); err != nil {
		return nil, err
	}

	if err := e.nodes.Create(node); err != nil {
		return nil, fmt.Errorf("failed to create song: %w", err)
	}
	return node, nil
}

// applyProfileFields merges the record's non-empty descriptive fields into
// the node: provider IDs, profile text, website, image asset, genre terms.
// Empty incoming values leave the existing node values untouched.
func (e *Engine) applyProfileFields(ctx context.Context, node *models.Node, rec *models.MergedRecord) error {
	if id := rec.ProviderID(providers.NameSpotify); id != "" {
		node.SpotifyID = id
	}
	if id := rec.ProviderID(providers.NameDiscogs); id != "" {
		node.DiscogsID = id
	}
	if !search.IsEmptyString(rec.Profile) {
		node.Description = rec.Profile
	}
	if !search.IsEmptyString(rec.URL) {
		node.Website = rec.URL
	}

	if !search.IsEmptyString(rec.Image) {
		if mediaID := e.materializeAsset(ctx, rec.Image, rec.Name); mediaID != "" {
			node.ImageMediaID = mediaID
		}
	}

	if len(rec.Genres) > 0 {
		termIDs, err := e.ensureTerms(rec.Genres)
		if err != nil {
			return fmt.Errorf("failed to resolve genre terms: %w", err)
		}
		if len(termIDs) > 0 {
			node.GenreTermIDs = termIDs
		}
	}

	return nil
}

// resolveMembers resolves each member name to a node ID, creating artist
// nodes lazily. Resolution failures drop the member with a log entry rather
// than failing the band.
func (e *Engine) resolveMembers(names []string) []string {
	var ids []string
	seen := make(map[string]bool)

	for _, name := range names {
		if search.IsEmptyString(name) || seen[name] {
			continue
		}
		seen[name] = true

		member, _, err := e.resolveIdentity(name)
		if err != nil {
			e.logger.Warn("failed to resolve band member", "member", name, "error", err)
			continue
		}
		ids = append(ids, member.ID)
	}

	return ids
}

// resolveIdentity is the name-based identity rule: find an existing band or
// artist node with the given title, or lazily create a bare artist node.
// The second return reports whether the node already existed. This is a
// pure repository lookup; the speculative provider check lives in
// maybePromoteToBand.
func (e *Engine) resolveIdentity(name string) (*models.Node, bool, error) {
	band, err := e.nodes.FindByTitle(models.BundleBand, name)
	if err != nil {
		return nil, false, err
	}
	if band != nil {
		return band, true, nil
	}

	artist, err := e.nodes.FindByTitle(models.BundleArtist, name)
	if err != nil {
		return nil, false, err
	}
	if artist != nil {
		return artist, true, nil
	}

	artist = &models.Node{Bundle: models.BundleArtist, Title: name, Status: true}
	if err := e.nodes.Create(artist); err != nil {
		return nil, false, fmt.Errorf("failed to create artist %q: %w", name, err)
	}

	e.logger.Debug("created artist from reference", "title", name, "id", artist.ID)
	return artist, false, nil
}

// maybePromoteToBand asks Discogs whether the resolved artist is actually a
// band. When Discogs reports members, the artist is converted through the
// normal band upsert (which repoints songs and deletes the artist node).
// Any provider error is swallowed and the plain artist kept.
func (e *Engine) maybePromoteToBand(ctx context.Context, artist *models.Node) *models.Node {
	if e.discogs == nil {
		return artist
	}

	results, err := e.discogs.Search(ctx, artist.Title, models.KindArtist)
	if err != nil || len(results) == 0 {
		if err != nil {
			e.logger.Debug("band membership check failed", "artist", artist.Title, "error", err)
		}
		return artist
	}

	details, err := e.discogs.Details(ctx, results[0].ID, models.KindArtist)
	if err != nil || details == nil || len(details.Members) == 0 {
		if err != nil {
			e.logger.Debug("band membership check failed", "artist", artist.Title, "error", err)
		}
		return artist
	}

	rec := &models.MergedRecord{
		Name:        artist.Title,
		Image:       details.Image,
		Profile:     details.Profile,
		URL:         details.URL,
		Genres:      details.Genres,
		Members:     details.Members,
		ProviderIDs: map[string]string{providers.NameDiscogs: details.ID},
	}

	band, err := e.upsertBand(ctx, rec)
	if err != nil {
		e.logger.Warn("failed to promote artist to band", "artist", artist.Title, "error", err)
		return artist
	}

	e.logger.Info("promoted artist to band", "title", artist.Title, "band_id", band.ID)
	return band
}

// adoptArtist absorbs an artist node sharing the band's title: every song
// and band membership referencing the artist is repointed to the band, then
// the artist node is deleted. Failures are logged but never roll back the
// band write; a failed repoint skips the deletion so no reference is
// orphaned.
func (e *Engine) adoptArtist(band *models.Node) {
	artist, err := e.nodes.FindByTitle(models.BundleArtist, band.Title)
	if err != nil {
		e.logger.Warn("failed to check for artist to absorb", "title", band.Title, "error", err)
		return
	}
	if artist == nil {
		return
	}

	repointed, err := e.nodes.RepointSongs(artist.ID, band.ID)
	if err != nil {
		e.logger.Error("failed to repoint songs to band", "title", band.Title, "error", err)
		return
	}

	// The artist may itself be listed as a member of another band; those
	// membership rows reference the node and would block the delete.
	if _, err := e.nodes.RepointMembers(artist.ID, band.ID); err != nil {
		e.logger.Error("failed to repoint band memberships", "title", band.Title, "error", err)
		return
	}

	if err := e.nodes.Delete(artist.ID); err != nil {
		e.logger.Error("failed to delete absorbed artist", "title", band.Title, "error", err)
		return
	}

	e.logger.Info("absorbed artist into band",
		"title", band.Title, "band_id", band.ID, "songs_repointed", repointed)
}
