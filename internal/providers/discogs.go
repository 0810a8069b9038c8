// Discogs API implementation of [Provider]
//
// Discogs API response types based on https://www.discogs.com/developers/
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tunedex/tunedex/internal/models"
	"github.com/tunedex/tunedex/internal/shared"
	"golang.org/x/time/rate"
)

const (
	discogsBaseURL   = "https://api.discogs.com"
	discogsUserAgent = "tunedex/1.0"
)

// DiscogsSearchResult represents one entry of a Discogs database search.
type DiscogsSearchResult struct {
	ID         int64    `json:"id"`
	Title      string   `json:"title"`
	Type       string   `json:"type"`
	Thumb      string   `json:"thumb"`
	CoverImage string   `json:"cover_image"`
	Year       string   `json:"year"`
	Format     []string `json:"format"`
	Label      []string `json:"label"`
}

type discogsSearchResponse struct {
	Results []DiscogsSearchResult `json:"results"`
}

// DiscogsImage represents an image resource on an artist or release.
type DiscogsImage struct {
	URI string `json:"uri"`
}

// DiscogsMember represents one member of a band on an artist payload.
type DiscogsMember struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// DiscogsArtist represents a Discogs artist payload.
type DiscogsArtist struct {
	ID      int64           `json:"id"`
	Name    string          `json:"name"`
	Profile string          `json:"profile"`
	Images  []DiscogsImage  `json:"images"`
	Members []DiscogsMember `json:"members"`
	URI     string          `json:"uri"`
}

// DiscogsTrack represents one tracklist entry on a release.
type DiscogsTrack struct {
	Position string `json:"position"`
	Title    string `json:"title"`
	Duration string `json:"duration"` // already "M:SS"
}

// DiscogsLabel represents a record label reference on a release.
type DiscogsLabel struct {
	Name string `json:"name"`
}

// DiscogsRelease represents a Discogs release payload (albums and songs both resolve here).
type DiscogsRelease struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	ArtistsSort string         `json:"artists_sort"`
	Year        int            `json:"year"`
	Genres      []string       `json:"genres"`
	Styles      []string       `json:"styles"`
	Images      []DiscogsImage `json:"images"`
	Tracklist   []DiscogsTrack `json:"tracklist"`
	Labels      []DiscogsLabel `json:"labels"`
	URI         string         `json:"uri"`
}

// DiscogsClient implements [Provider] for the Discogs API.
//
// There is no token flow: the key/secret pair is passed as query parameters
// on every call. Requests go through a rate limiter because Discogs enforces
// 60 requests per minute per key.
type DiscogsClient struct {
	apiKey     string
	apiSecret  string
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	timeout    time.Duration
	logger     *log.Logger
}

// NewDiscogsClient creates a Discogs provider client. Missing credentials are
// not an error here; they are detected before the first network call.
func NewDiscogsClient(cfg shared.DiscogsConfig, httpClient *http.Client, timeout time.Duration, logger *log.Logger) *DiscogsClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &DiscogsClient{
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
		baseURL:    discogsBaseURL,
		timeout:    timeout,
		logger:     logger.With("provider", NameDiscogs),
	}
}

// Name returns the provider name.
func (d *DiscogsClient) Name() string {
	return NameDiscogs
}

// doRequest performs a key-authenticated GET against the Discogs API and decodes the JSON response.
func (d *DiscogsClient) doRequest(ctx context.Context, endpoint string, query url.Values, result any) error {
	if d.apiKey == "" || d.apiSecret == "" {
		return fmt.Errorf("%w: discogs key/secret not configured", shared.ErrMissingCredentials)
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTimeout, err)
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("key", d.apiKey)
	query.Set("secret", d.apiSecret)

	apiURL := d.baseURL + endpoint + "?" + query.Encode()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", discogsUserAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: discogs status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Search executes a database search. The song kind maps to Discogs' release
// vocabulary, since Discogs has no per-track search.
func (d *DiscogsClient) Search(ctx context.Context, query, kind string) ([]Result, error) {
	if !models.ValidKind(kind) {
		return nil, fmt.Errorf("%w: kind %q", shared.ErrInvalidInput, kind)
	}

	params := url.Values{
		"q":    {query},
		"type": {discogsKind(kind)},
	}

	var response discogsSearchResponse
	if err := d.doRequest(ctx, "/database/search", params, &response); err != nil {
		return nil, err
	}

	return d.formatResults(response.Results, kind), nil
}

// Details retrieves a single artist or release by ID. Albums and songs both
// resolve against the releases endpoint.
func (d *DiscogsClient) Details(ctx context.Context, id, kind string) (*Details, error) {
	if !models.ValidKind(kind) {
		return nil, fmt.Errorf("%w: kind %q", shared.ErrInvalidInput, kind)
	}

	if kind == models.KindArtist {
		var artist DiscogsArtist
		if err := d.doRequest(ctx, "/artists/"+url.PathEscape(id), nil, &artist); err != nil {
			return nil, err
		}
		return d.artistDetails(&artist), nil
	}

	var release DiscogsRelease
	if err := d.doRequest(ctx, "/releases/"+url.PathEscape(id), nil, &release); err != nil {
		return nil, err
	}
	return d.releaseDetails(&release), nil
}

// formatResults normalizes search entries into the common result shape.
func (d *DiscogsClient) formatResults(items []DiscogsSearchResult, kind string) []Result {
	results := []Result{}

	for _, item := range items {
		result := Result{
			ID:       strconv.FormatInt(item.ID, 10),
			Name:     orUnknown(item.Title),
			Provider: NameDiscogs,
		}

		switch kind {
		case models.KindArtist:
			result.Image = coverOrThumb(item)
		case models.KindAlbum:
			result.Image = coverOrThumb(item)
			result.Year = item.Year
		case models.KindSong:
			// Release hits stand in for songs; no per-track data in search.
			result.Year = item.Year
		}

		results = append(results, result)
	}

	return results
}

func (d *DiscogsClient) artistDetails(artist *DiscogsArtist) *Details {
	members := make([]string, 0, len(artist.Members))
	for _, member := range artist.Members {
		members = append(members, member.Name)
	}

	return &Details{
		Result: Result{
			ID:       strconv.FormatInt(artist.ID, 10),
			Name:     orUnknown(artist.Name),
			Image:    firstDiscogsImage(artist.Images),
			Provider: NameDiscogs,
		},
		Profile: artist.Profile,
		Members: members,
		URL:     artist.URI,
	}
}

func (d *DiscogsClient) releaseDetails(release *DiscogsRelease) *Details {
	tracklist := make([]TrackRef, 0, len(release.Tracklist))
	for _, track := range release.Tracklist {
		tracklist = append(tracklist, TrackRef{
			Name:     track.Title,
			Position: track.Position,
			Length:   track.Duration,
		})
	}

	labels := make([]string, 0, len(release.Labels))
	for _, label := range release.Labels {
		labels = append(labels, label.Name)
	}

	year := ""
	if release.Year > 0 {
		year = strconv.Itoa(release.Year)
	}

	return &Details{
		Result: Result{
			ID:       strconv.FormatInt(release.ID, 10),
			Name:     orUnknown(release.Title),
			Artist:   orUnknown(release.ArtistsSort),
			Image:    firstDiscogsImage(release.Images),
			Year:     year,
			Genres:   append(append([]string{}, release.Genres...), release.Styles...),
			Provider: NameDiscogs,
		},
		URL:       release.URI,
		Tracklist: tracklist,
		Labels:    labels,
	}
}

func firstDiscogsImage(images []DiscogsImage) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URI
}

func coverOrThumb(item DiscogsSearchResult) string {
	if item.CoverImage != "" {
		return item.CoverImage
	}
	return item.Thumb
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
