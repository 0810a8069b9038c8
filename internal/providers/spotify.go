// Spotify API implementation of [Provider]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tunedex/tunedex/internal/models"
	"github.com/tunedex/tunedex/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyArtist represents a Spotify artist object.
type SpotifyArtist struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Genres       []string       `json:"genres"`
	Images       []SpotifyImage `json:"images"`
	ExternalURLs externalURLs   `json:"external_urls"`
}

// SpotifyAlbumTrack represents a track inside an album's tracklist.
type SpotifyAlbumTrack struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TrackNumber int    `json:"track_number"`
	DurationMS  int    `json:"duration_ms"`
}

type albumTracks struct {
	Items []SpotifyAlbumTrack `json:"items"`
}

// SpotifyAlbum represents a Spotify album object.
type SpotifyAlbum struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []SpotifyArtist `json:"artists"`
	ReleaseDate  string          `json:"release_date"`
	TotalTracks  int             `json:"total_tracks"`
	Images       []SpotifyImage  `json:"images"`
	Genres       []string        `json:"genres"`
	Label        string          `json:"label"`
	Tracks       albumTracks     `json:"tracks"`
	ExternalURLs externalURLs    `json:"external_urls"`
}

// SpotifyTrack represents a Spotify track object.
type SpotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []SpotifyArtist `json:"artists"`
	Album        SpotifyAlbum    `json:"album"`
	DurationMS   int             `json:"duration_ms"`
	TrackNumber  int             `json:"track_number"`
	ExternalURLs externalURLs    `json:"external_urls"`
}

type spotifySearchResponse struct {
	Artists *struct {
		Items []SpotifyArtist `json:"items"`
	} `json:"artists"`
	Albums *struct {
		Items []SpotifyAlbum `json:"items"`
	} `json:"albums"`
	Tracks *struct {
		Items []SpotifyTrack `json:"items"`
	} `json:"tracks"`
}

// SpotifyClient implements [Provider] for the Spotify Web API.
//
// Authentication uses the OAuth2 client credentials flow via
// [clientcredentials.Config]: the token source caches the access token and
// re-fetches it transparently when it expires.
type SpotifyClient struct {
	auth        *clientcredentials.Config
	tokenSource oauth2.TokenSource
	httpClient  *http.Client
	baseURL     string
	timeout     time.Duration
	logger      *log.Logger
}

// NewSpotifyClient creates a Spotify provider client. Missing credentials are
// not an error here; they are detected before the first network call.
func NewSpotifyClient(cfg shared.SpotifyConfig, httpClient *http.Client, timeout time.Duration, logger *log.Logger) *SpotifyClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &SpotifyClient{
		auth: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     spotifyTokenURL,
		},
		httpClient: httpClient,
		baseURL:    spotifyBaseURL,
		timeout:    timeout,
		logger:     logger.With("provider", NameSpotify),
	}
}

// Name returns the provider name.
func (s *SpotifyClient) Name() string {
	return NameSpotify
}

// token returns a valid access token, fetching or refreshing as needed.
func (s *SpotifyClient) token(ctx context.Context) (*oauth2.Token, error) {
	if s.auth.ClientID == "" || s.auth.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client id/secret not configured", shared.ErrMissingCredentials)
	}

	if s.tokenSource == nil {
		// The token source keeps its own context for refresh requests, so it
		// must not be tied to a single call's deadline.
		authCtx := context.WithValue(context.Background(), oauth2.HTTPClient, s.httpClient)
		s.tokenSource = s.auth.TokenSource(authCtx)
	}

	token, err := s.tokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	return token, nil
}

// doRequest performs an authenticated GET against the Spotify API and decodes the JSON response.
func (s *SpotifyClient) doRequest(ctx context.Context, endpoint string, query url.Values, result any) error {
	token, err := s.token(ctx)
	if err != nil {
		return err
	}

	apiURL := s.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: spotify status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Search executes a catalog search. The song kind maps to Spotify's track vocabulary.
func (s *SpotifyClient) Search(ctx context.Context, query, kind string) ([]Result, error) {
	if !models.ValidKind(kind) {
		return nil, fmt.Errorf("%w: kind %q", shared.ErrInvalidInput, kind)
	}

	spotifyType := spotifyKind(kind)
	params := url.Values{
		"q":     {query},
		"type":  {spotifyType},
		"limit": {"10"},
	}

	var response spotifySearchResponse
	if err := s.doRequest(ctx, "/search", params, &response); err != nil {
		return nil, err
	}

	return s.formatResults(&response, kind), nil
}

// Details retrieves a single artist, album, or track by ID.
func (s *SpotifyClient) Details(ctx context.Context, id, kind string) (*Details, error) {
	if !models.ValidKind(kind) {
		return nil, fmt.Errorf("%w: kind %q", shared.ErrInvalidInput, kind)
	}

	switch kind {
	case models.KindArtist:
		var artist SpotifyArtist
		if err := s.doRequest(ctx, "/artists/"+url.PathEscape(id), nil, &artist); err != nil {
			return nil, err
		}
		return s.artistDetails(&artist), nil

	case models.KindAlbum:
		var album SpotifyAlbum
		if err := s.doRequest(ctx, "/albums/"+url.PathEscape(id), nil, &album); err != nil {
			return nil, err
		}
		return s.albumDetails(&album), nil

	default:
		var track SpotifyTrack
		if err := s.doRequest(ctx, "/tracks/"+url.PathEscape(id), nil, &track); err != nil {
			return nil, err
		}
		return s.trackDetails(&track), nil
	}
}

// formatResults normalizes a search response into the common result shape.
func (s *SpotifyClient) formatResults(data *spotifySearchResponse, kind string) []Result {
	results := []Result{}

	switch {
	case kind == models.KindArtist && data.Artists != nil:
		for _, item := range data.Artists.Items {
			results = append(results, Result{
				ID:       item.ID,
				Name:     item.Name,
				Image:    firstImage(item.Images),
				Genres:   item.Genres,
				Provider: NameSpotify,
			})
		}

	case kind == models.KindAlbum && data.Albums != nil:
		for _, item := range data.Albums.Items {
			results = append(results, Result{
				ID:       item.ID,
				Name:     item.Name,
				Artist:   firstArtistName(item.Artists),
				ArtistID: firstArtistID(item.Artists),
				Image:    firstImage(item.Images),
				Year:     YearFromReleaseDate(item.ReleaseDate),
				Provider: NameSpotify,
			})
		}

	case kind == models.KindSong && data.Tracks != nil:
		for _, item := range data.Tracks.Items {
			results = append(results, Result{
				ID:       item.ID,
				Name:     item.Name,
				Artist:   firstArtistName(item.Artists),
				ArtistID: firstArtistID(item.Artists),
				Album:    item.Album.Name,
				AlbumID:  item.Album.ID,
				Image:    firstImage(item.Album.Images),
				Length:   FormatDuration(item.DurationMS),
				Provider: NameSpotify,
			})
		}
	}

	return results
}

func (s *SpotifyClient) artistDetails(artist *SpotifyArtist) *Details {
	return &Details{
		Result: Result{
			ID:       artist.ID,
			Name:     artist.Name,
			Image:    firstImage(artist.Images),
			Genres:   artist.Genres,
			Provider: NameSpotify,
		},
		URL: artist.ExternalURLs.Spotify,
	}
}

func (s *SpotifyClient) albumDetails(album *SpotifyAlbum) *Details {
	tracklist := make([]TrackRef, 0, len(album.Tracks.Items))
	for _, track := range album.Tracks.Items {
		tracklist = append(tracklist, TrackRef{
			ID:       track.ID,
			Name:     track.Name,
			Position: fmt.Sprintf("%d", track.TrackNumber),
			Length:   FormatDuration(track.DurationMS),
		})
	}

	details := &Details{
		Result: Result{
			ID:       album.ID,
			Name:     album.Name,
			Artist:   firstArtistName(album.Artists),
			ArtistID: firstArtistID(album.Artists),
			Image:    firstImage(album.Images),
			Year:     YearFromReleaseDate(album.ReleaseDate),
			Genres:   album.Genres,
			Provider: NameSpotify,
		},
		URL:         album.ExternalURLs.Spotify,
		Tracklist:   tracklist,
		TotalTracks: album.TotalTracks,
	}

	if album.Label != "" {
		details.Labels = []string{album.Label}
	}

	return details
}

func (s *SpotifyClient) trackDetails(track *SpotifyTrack) *Details {
	return &Details{
		Result: Result{
			ID:       track.ID,
			Name:     track.Name,
			Artist:   firstArtistName(track.Artists),
			ArtistID: firstArtistID(track.Artists),
			Album:    track.Album.Name,
			AlbumID:  track.Album.ID,
			Image:    firstImage(track.Album.Images),
			Length:   FormatDuration(track.DurationMS),
			Provider: NameSpotify,
		},
		URL:        track.ExternalURLs.Spotify,
		DurationMS: track.DurationMS,
	}
}

func firstImage(images []SpotifyImage) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}

func firstArtistName(artists []SpotifyArtist) string {
	if len(artists) == 0 {
		return "Unknown"
	}
	return artists[0].Name
}

func firstArtistID(artists []SpotifyArtist) string {
	if len(artists) == 0 {
		return ""
	}
	return artists[0].ID
}
