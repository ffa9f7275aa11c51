package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"tunequiz/internal/cache"
	"tunequiz/internal/catalog"
	"tunequiz/internal/game"
)

var ErrNoTracks = errors.New("no playable tracks found")

// demoTrack keeps rooms playable when the catalog is empty, for local
// development without seeded data.
var demoTrack = game.Track{
	Title:      "Demo Song",
	Answer:     "Demo Song",
	PreviewURL: "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-1.mp3",
	ImageURL:   "",
}

// SaavnClient wraps the JioSaavn search API.
type SaavnClient struct {
	searchURL  string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewSaavnClient creates a new JioSaavn API client.
func NewSaavnClient(searchURL string, logger zerolog.Logger) *SaavnClient {
	return &SaavnClient{
		searchURL: searchURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: logger.With().Str("component", "saavn_client").Logger(),
	}
}

type saavnSearchResponse struct {
	Data struct {
		Results []struct {
			Name  string `json:"name"`
			Album struct {
				Name string `json:"name"`
			} `json:"album"`
			Image []struct {
				Quality string `json:"quality"`
				URL     string `json:"url"`
			} `json:"image"`
			DownloadURL []struct {
				Quality string `json:"quality"`
				URL     string `json:"url"`
			} `json:"downloadUrl"`
		} `json:"results"`
	} `json:"data"`
}

// SearchSongs returns playable tracks matching the query. Tracks without a
// stream URL are dropped; the highest available bitrate is picked.
func (c *SaavnClient) SearchSongs(ctx context.Context, query string, limit int) ([]game.Track, error) {
	u := fmt.Sprintf("%s?query=%s&limit=%d", c.searchURL, url.QueryEscape(query), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("track search returned status %d", resp.StatusCode)
	}

	var parsed saavnSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	tracks := make([]game.Track, 0, len(parsed.Data.Results))
	for _, r := range parsed.Data.Results {
		streamURL := ""
		for _, d := range r.DownloadURL {
			streamURL = d.URL // entries are ordered low to high quality
		}
		if streamURL == "" {
			continue
		}
		imageURL := ""
		for _, img := range r.Image {
			imageURL = img.URL
		}
		tracks = append(tracks, game.Track{
			Title:      r.Name,
			Answer:     r.Album.Name,
			PreviewURL: streamURL,
			ImageURL:   imageURL,
		})
	}
	return tracks, nil
}

// TrackService picks quiz tracks: a random catalog title is searched against
// the track API, with results cached per title. Implements game.TrackProvider.
type TrackService struct {
	movies catalog.MovieRepo
	client *SaavnClient
	cache  cache.TrackCache
	log    zerolog.Logger
}

// NewTrackService creates a new track service.
func NewTrackService(movies catalog.MovieRepo, client *SaavnClient, trackCache cache.TrackCache, logger zerolog.Logger) *TrackService {
	return &TrackService{
		movies: movies,
		client: client,
		cache:  trackCache,
		log:    logger.With().Str("component", "track_service").Logger(),
	}
}

// QuizTrack returns one track for a round. The answer is the catalog title
// the track was found under, so every track in a round has a well-defined
// correct answer regardless of the song's own name.
func (s *TrackService) QuizTrack(ctx context.Context) (game.Track, error) {
	title, err := s.movies.RandomTitle(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("catalog empty or unreachable, serving demo track")
		return demoTrack, nil
	}

	tracks, err := s.cache.Get(ctx, title)
	if err != nil {
		s.log.Warn().Err(err).Str("title", title).Msg("track cache read failed")
	}

	if len(tracks) == 0 {
		tracks, err = s.client.SearchSongs(ctx, title, 10)
		if err != nil {
			return game.Track{}, err
		}
		if len(tracks) == 0 {
			return game.Track{}, fmt.Errorf("%w for %q", ErrNoTracks, title)
		}
		if err := s.cache.Set(ctx, title, tracks); err != nil {
			s.log.Warn().Err(err).Str("title", title).Msg("track cache write failed")
		}
	}

	track := tracks[rand.IntN(len(tracks))]
	track.Answer = title
	return track, nil
}

// SuggestionService serves title autocomplete against the catalog.
// Implements game.SuggestionIndex.
type SuggestionService struct {
	movies catalog.MovieRepo
}

// NewSuggestionService creates a new suggestion service.
func NewSuggestionService(movies catalog.MovieRepo) *SuggestionService {
	return &SuggestionService{movies: movies}
}

// Suggest returns up to 10 catalog titles containing the query. Queries
// outside 2 to 50 characters return no suggestions rather than an error.
func (s *SuggestionService) Suggest(ctx context.Context, query string) ([]string, error) {
	query = game.SanitizeText(query)
	if len(query) < 2 || len(query) > 50 {
		return nil, nil
	}
	return s.movies.Search(ctx, query, 10)
}
