// YouTube Data API v3 implementation of [Service]
//
// API response types based on https://developers.google.com/youtube/v3/docs
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/likesync/internal/shared"
)

const (
	googleAuthURL  = "https://accounts.google.com/o/oauth2/auth"
	googleTokenURL = "https://oauth2.googleapis.com/token"
	youtubeBaseURL = "https://www.googleapis.com/youtube/v3"

	youtubeScope = "https://www.googleapis.com/auth/youtube"

	// maxPageSize is the largest page the videos.list endpoint accepts.
	maxPageSize = 50

	defaultRateLimit = 5.0
)

// YouTubeThumbnail represents one thumbnail variant in API responses.
type YouTubeThumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type youtubeThumbnails struct {
	Default  *YouTubeThumbnail `json:"default"`
	Medium   *YouTubeThumbnail `json:"medium"`
	High     *YouTubeThumbnail `json:"high"`
	Standard *YouTubeThumbnail `json:"standard"`
}

// pick returns the default thumbnail URL, falling back to larger variants.
func (t youtubeThumbnails) pick() string {
	for _, thumb := range []*YouTubeThumbnail{t.Default, t.Medium, t.High, t.Standard} {
		if thumb != nil && thumb.URL != "" {
			return thumb.URL
		}
	}
	return ""
}

// YouTubeVideo represents a video resource from the videos.list endpoint.
type YouTubeVideo struct {
	ID      string `json:"id"`
	Etag    string `json:"etag"`
	Snippet struct {
		Title       string            `json:"title"`
		Description string            `json:"description"`
		Thumbnails  youtubeThumbnails `json:"thumbnails"`
		CategoryID  string            `json:"categoryId"`
	} `json:"snippet"`
}

// YouTubeService implements the Service interface for the YouTube Data API.
// Uses [oauth2] for authentication and a shared [rate.Limiter] across all calls.
type YouTubeService struct {
	baseURL    string
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	limiter    *rate.Limiter
	pageSize   int
}

// NewYouTubeService creates a new YouTube service with the given OAuth2
// credentials. rateLimit is the maximum number of API calls per second and
// pageSize the number of liked videos fetched per page; zero or negative
// values select the defaults, and pageSize is capped at the API maximum.
func NewYouTubeService(credentials map[string]string, rateLimit float64, pageSize int) (*YouTubeService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:3000/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       []string{youtubeScope},
		Endpoint: oauth2.Endpoint{
			AuthURL:  googleAuthURL,
			TokenURL: googleTokenURL,
		},
	}

	if rateLimit <= 0 {
		rateLimit = defaultRateLimit
	}

	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return &YouTubeService{
		baseURL:    youtubeBaseURL,
		config:     config,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(rateLimit), 1),
		pageSize:   pageSize,
	}, nil
}

func (y *YouTubeService) Name() string {
	return "YouTube"
}

// GetOAuthConfig returns the underlying OAuth2 configuration for callback handling.
func (y *YouTubeService) GetOAuthConfig() *oauth2.Config {
	return y.config
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (y *YouTubeService) GetAuthURL(state string) string {
	return y.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token without storing it.
func (y *YouTubeService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := y.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return token, nil
}

// SetToken installs a previously persisted token. The underlying client
// refreshes it via the refresh token when it expires.
func (y *YouTubeService) SetToken(ctx context.Context, token *oauth2.Token) {
	y.token = token
	y.httpClient = y.config.Client(ctx, token)
}

// Authenticate performs OAuth2 authentication. Expects either an
// "access_token" or an "auth_code" in credentials.
func (y *YouTubeService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		y.SetToken(ctx, &oauth2.Token{
			AccessToken:  accessToken,
			RefreshToken: credentials["refresh_token"],
		})
		return nil
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := y.Exchange(ctx, authCode)
		if err != nil {
			return err
		}
		y.SetToken(ctx, token)
		return nil
	}

	return fmt.Errorf("%w: access_token or auth_code", shared.ErrMissingCredentials)
}

// doRequest performs a rate-limited, authenticated request to the API.
func (y *YouTubeService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	if y.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	if err := y.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	apiURL := y.baseURL + endpoint

	var reqBody *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error.Message != "" {
			return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, errResp.Error.Message)
		}
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// LikedVideos retrieves the owner's entire liked feed, following nextPageToken
// until the API stops returning one. A failed page fetch aborts the whole read.
func (y *YouTubeService) LikedVideos(ctx context.Context) ([]LikedVideo, error) {
	var videos []LikedVideo
	pageToken := ""

	for {
		endpoint := fmt.Sprintf("/videos?part=snippet&myRating=like&maxResults=%d", y.pageSize)
		if pageToken != "" {
			endpoint += "&pageToken=" + url.QueryEscape(pageToken)
		}

		var page struct {
			Items         []YouTubeVideo `json:"items"`
			NextPageToken string         `json:"nextPageToken"`
		}

		if err := y.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, fmt.Errorf("failed to fetch liked videos page: %w", err)
		}

		for _, item := range page.Items {
			videos = append(videos, LikedVideo{
				ID:          item.ID,
				Title:       item.Snippet.Title,
				Description: item.Snippet.Description,
				ImageURL:    item.Snippet.Thumbnails.pick(),
				Etag:        item.Etag,
				CategoryID:  item.Snippet.CategoryID,
			})
		}

		if page.NextPageToken == "" {
			return videos, nil
		}
		pageToken = page.NextPageToken
	}
}

// CreatePlaylist creates an empty public playlist with the given title.
func (y *YouTubeService) CreatePlaylist(ctx context.Context, title string) (*PlaylistResource, error) {
	createReq := map[string]any{
		"snippet": map[string]any{
			"title": title,
		},
		"status": map[string]any{
			"privacyStatus": "public",
		},
	}

	var created struct {
		ID      string `json:"id"`
		Etag    string `json:"etag"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
	}

	endpoint := "/playlists?part=snippet,status"
	if err := y.doRequest(ctx, http.MethodPost, endpoint, createReq, &created); err != nil {
		return nil, fmt.Errorf("failed to create playlist %q: %w", title, err)
	}

	return &PlaylistResource{
		ID:    created.ID,
		Etag:  created.Etag,
		Title: created.Snippet.Title,
	}, nil
}

// InsertPlaylistItem adds a video to a playlist and returns the membership
// item id the API assigns.
func (y *YouTubeService) InsertPlaylistItem(ctx context.Context, playlistID, videoID string) (string, error) {
	insertReq := map[string]any{
		"snippet": map[string]any{
			"playlistId": playlistID,
			"resourceId": map[string]any{
				"kind":    "youtube#video",
				"videoId": videoID,
			},
		},
	}

	var inserted struct {
		ID string `json:"id"`
	}

	endpoint := "/playlistItems?part=snippet"
	if err := y.doRequest(ctx, http.MethodPost, endpoint, insertReq, &inserted); err != nil {
		return "", fmt.Errorf("failed to insert video %s into playlist %s: %w", videoID, playlistID, err)
	}

	return inserted.ID, nil
}

// DeletePlaylistItem removes a playlist membership by item id.
func (y *YouTubeService) DeletePlaylistItem(ctx context.Context, itemID string) error {
	endpoint := "/playlistItems?id=" + url.QueryEscape(itemID)
	if err := y.doRequest(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
		return fmt.Errorf("failed to delete playlist item %s: %w", itemID, err)
	}
	return nil
}
