// package services defines interface Service for the remote video platform API
package services

import (
	"context"
)

// Service defines the interface for the video platform the sync pipelines run
// against. The pull pipeline reads the owner's liked feed; the push pipeline
// mutates remote playlists one item at a time.
type Service interface {
	// LikedVideos retrieves the owner's full liked feed, following page
	// tokens until the feed is exhausted.
	LikedVideos(ctx context.Context) ([]LikedVideo, error)

	// CreatePlaylist creates an empty remote playlist with the given title.
	CreatePlaylist(ctx context.Context, title string) (*PlaylistResource, error)

	// InsertPlaylistItem adds a video to a remote playlist and returns the
	// membership item id needed to remove it later.
	InsertPlaylistItem(ctx context.Context, playlistID, videoID string) (string, error)

	// DeletePlaylistItem removes a playlist membership by its item id.
	DeletePlaylistItem(ctx context.Context, itemID string) error

	// Name returns the name of the service (e.g., "YouTube")
	Name() string
}

// LikedVideo represents one item of the owner's remote liked feed
type LikedVideo struct {
	ID          string
	Title       string
	Description string
	ImageURL    string
	Etag        string
	CategoryID  string
}

// PlaylistResource represents a remote playlist created by the publisher
type PlaylistResource struct {
	ID    string
	Etag  string
	Title string
}
