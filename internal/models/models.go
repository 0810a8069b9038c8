// package models defines the data model for the tunedex catalog
package models

import (
	"fmt"
	"strings"
	"time"
)

// Content kinds accepted at the search/create boundary.
const (
	KindArtist = "artist"
	KindAlbum  = "album"
	KindSong   = "song"
)

// Node bundles. KindArtist records are stored as either BundleArtist or
// BundleBand depending on whether band members are known.
const (
	BundleArtist = "artist"
	BundleBand   = "band"
	BundleAlbum  = "album"
	BundleSong   = "song"
)

// ValidKind reports whether kind is one of artist, album, or song.
func ValidKind(kind string) bool {
	return kind == KindArtist || kind == KindAlbum || kind == KindSong
}

// Node represents one catalog content node: an artist, band, album, or song.
//
// Title within a bundle is the natural key used for reconciliation. Two
// distinct real-world artists sharing a title will collide; provider IDs are
// stored but deliberately not used for identity.
type Node struct {
	ID            string
	Sequence      int
	Bundle        string
	Title         string
	Status        bool
	SpotifyID     string
	DiscogsID     string
	Description   string
	Website       string
	ImageMediaID  string
	ArtistNodeID  string // song reference to an artist or band node
	ArtistName    string // album's artist, stored as plain text
	Album         string // song's album name, stored as plain text
	Year          string
	LengthSeconds int
	GenreTermIDs  []string
	MemberNodeIDs []string // band membership, ordered
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks that the node has a title and a known bundle.
func (n *Node) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("node title is required")
	}
	switch n.Bundle {
	case BundleArtist, BundleBand, BundleAlbum, BundleSong:
		return nil
	default:
		return fmt.Errorf("unknown bundle %q", n.Bundle)
	}
}

// Term represents a taxonomy term, deduplicated by (vocabulary, name).
type Term struct {
	ID         string
	Sequence   int
	Vocabulary string
	Name       string
	CreatedAt  time.Time
}

// Validate checks that the term has a vocabulary and a name.
func (t *Term) Validate() error {
	if t.Vocabulary == "" {
		return fmt.Errorf("term vocabulary is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("term name is required")
	}
	return nil
}

// MediaAsset represents a downloaded image wrapped as a media row.
// Assets are addressed by derived filename only; the same remote image
// fetched under two labels is stored twice.
type MediaAsset struct {
	ID        string
	Sequence  int
	Name      string
	Path      string
	Alt       string
	CreatedAt time.Time
}

// Validate checks that the asset has a name and a storage path.
func (m *MediaAsset) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("media name is required")
	}
	if m.Path == "" {
		return fmt.Errorf("media path is required")
	}
	return nil
}

// MergedRecord is a single record assembled from one or more providers'
// detail payloads via per-field selection. ProviderIDs always carries every
// contributing provider's ID, independent of which fields were chosen.
type MergedRecord struct {
	Name        string
	Image       string
	Profile     string
	URL         string
	Artist      string
	Album       string
	Year        string
	Length      string // "M:SS"
	Genres      []string
	Members     []string
	ProviderIDs map[string]string
}

// ProviderID returns the recorded ID for the named provider, or "".
func (r *MergedRecord) ProviderID(provider string) string {
	if r.ProviderIDs == nil {
		return ""
	}
	return r.ProviderIDs[provider]
}
