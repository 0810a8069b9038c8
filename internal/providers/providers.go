// package providers defines interface Provider for music metadata APIs
//
// Spotify, Discogs
package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/tunedex/tunedex/internal/models"
)

// Provider names as reported by [Provider.Name] and used for routing.
const (
	NameSpotify = "spotify"
	NameDiscogs = "discogs"
)

// Provider defines the interface for music metadata providers (Spotify, Discogs)
// that can search their catalog and look up details for a single item.
type Provider interface {
	// Search executes a catalog search for the given kind (artist, album, song).
	// Failures are returned as wrapped shared sentinels; callers at the
	// aggregation boundary convert them to empty result lists.
	Search(ctx context.Context, query, kind string) ([]Result, error)

	// Details retrieves the full record for a single item by provider ID.
	Details(ctx context.Context, id, kind string) (*Details, error)

	// Name returns the provider name (e.g. "spotify", "discogs").
	Name() string
}

// Result is the normalized shape of one search hit, provider-agnostic.
// Identity is the (Provider, ID) pair; IDs are not unique across providers.
type Result struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Image    string   `json:"image,omitempty"`
	Artist   string   `json:"artist,omitempty"`
	ArtistID string   `json:"artist_id,omitempty"`
	Album    string   `json:"album,omitempty"`
	AlbumID  string   `json:"album_id,omitempty"`
	Year     string   `json:"year,omitempty"`
	Length   string   `json:"length,omitempty"` // "M:SS"
	Genres   []string `json:"genres,omitempty"`
	Provider string   `json:"provider"`
}

// TrackRef is one entry of an album's tracklist.
type TrackRef struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Position string `json:"position,omitempty"`
	Length   string `json:"length,omitempty"`
}

// Details is the normalized shape of a detail lookup: a superset of [Result]
// with provider-specific extras.
type Details struct {
	Result

	Profile     string     `json:"profile,omitempty"`
	URL         string     `json:"url,omitempty"` // provider profile/release page
	Members     []string   `json:"members,omitempty"`
	Labels      []string   `json:"labels,omitempty"`
	Tracklist   []TrackRef `json:"tracklist,omitempty"`
	TotalTracks int        `json:"total_tracks,omitempty"`
	DurationMS  int        `json:"duration_ms,omitempty"`
}

// FormatDuration converts milliseconds to an "M:SS" display string using
// floor division, matching what every provider mapping stores in Length.
func FormatDuration(ms int) string {
	minutes := ms / 60000
	seconds := (ms % 60000) / 1000
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// ParseDuration converts an "M:SS" display string back to whole seconds.
func ParseDuration(length string) (int, error) {
	parts := strings.SplitN(length, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid duration %q", length)
	}

	var minutes, seconds int
	if _, err := fmt.Sscanf(parts[0], "%d", &minutes); err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", length, err)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &seconds); err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", length, err)
	}

	return minutes*60 + seconds, nil
}

// YearFromReleaseDate derives a year from a release date string by taking
// its first four characters ("1969-09-26" -> "1969").
func YearFromReleaseDate(date string) string {
	if len(date) < 4 {
		return date
	}
	return date[:4]
}

// spotifyKind maps the shared content kind to Spotify's search vocabulary.
func spotifyKind(kind string) string {
	if kind == models.KindSong {
		return "track"
	}
	return kind
}

// discogsKind maps the shared content kind to Discogs' search vocabulary.
// Discogs has no per-track search; songs search against releases.
func discogsKind(kind string) string {
	if kind == models.KindSong {
		return "release"
	}
	return kind
}
