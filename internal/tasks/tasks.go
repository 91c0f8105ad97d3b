// package tasks implements the sync pipelines between the remote liked feed
// and the local song catalog.
//
// The core abstraction is Engine, which orchestrates the pull pipeline
// (read liked feed, reconcile the catalog, allocate songs to playlists) and
// the push pipeline (publish playlists and memberships to the remote
// service). Operations emit progress updates via channels for non-blocking
// status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/repositories"
	"github.com/desertthunder/likesync/internal/services"
	"github.com/desertthunder/likesync/internal/shared"
)

const (
	// MaxSongsPerPlaylist is the remote playlist capacity cap.
	MaxSongsPerPlaylist = 200

	// musicCategoryID is the remote category id for music videos. Only
	// liked items in this category enter the catalog.
	musicCategoryID = "10"
)

// PullResult contains all data from one pull pipeline pass.
type PullResult struct {
	Liked            int      // Items in the remote liked feed
	Music            int      // Liked items in the music category
	Created          int      // New songs added to the catalog
	CreatedIDs       []string // Remote ids of the new songs
	Stale            int      // Songs no longer liked remotely
	StaleIDs         []string // Remote ids of the stale songs
	Deleted          int64    // Stale songs hard deleted (never published)
	Flagged          int64    // Stale songs flagged for remote removal
	Assigned         int      // Songs given a playlist slot
	PlaylistsCreated int      // New local playlists created to hold overflow
}

// Engine orchestrates the pull and push pipelines for one owner at a time.
// All persistence goes through the repositories; all remote access goes
// through a [services.Service].
type Engine struct {
	catalogs  *repositories.CatalogRepository
	playlists *repositories.PlaylistRepository
	songs     *repositories.SongRepository
	logger    *log.Logger
}

// NewEngine creates an Engine over the given database connection.
func NewEngine(db *sql.DB, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Engine{
		catalogs:  repositories.NewCatalogRepository(db),
		playlists: repositories.NewPlaylistRepository(db),
		songs:     repositories.NewSongRepository(db),
		logger:    logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Pull runs the pull pipeline for one owner: read the liked feed, reconcile
// the catalog against it, then allocate unassigned songs to playlists.
//
// Any error aborts the pass; a partial liked feed is never reconciled.
func (e *Engine) Pull(ctx context.Context, user *models.User, svc services.Service, progress chan<- ProgressUpdate) (*PullResult, error) {
	if svc == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, fetchLikedUpdate(svc.Name()))

	liked, err := svc.LikedVideos(ctx)
	if err != nil {
		e.logger.Error("failed to fetch liked videos", "user", user.Username(), "error", err)
		return nil, fmt.Errorf("failed to fetch liked videos: %w", err)
	}

	result, err := e.reconcile(user, liked)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, reconcileUpdate(result.Created, result.Stale))

	assigned, created, err := e.allocate(user)
	if err != nil {
		return nil, err
	}
	result.Assigned = assigned
	result.PlaylistsCreated = created
	e.sendProgress(progress, allocateUpdate(assigned, created))

	return result, nil
}

// reconcile aligns the owner's catalog with the liked feed: new music items
// become songs, items no longer liked become stale. Stale songs that never
// reached a remote playlist are hard deleted; published ones are flagged so
// the publisher removes the remote membership first.
func (e *Engine) reconcile(user *models.User, liked []services.LikedVideo) (*PullResult, error) {
	catalog, err := e.catalogs.GetOrCreate(user.ID())
	if err != nil {
		return nil, err
	}

	var music []services.LikedVideo
	for _, video := range liked {
		if video.CategoryID == musicCategoryID {
			music = append(music, video)
		}
	}

	existing, err := e.songs.ThirdPartyIDs(user.ID())
	if err != nil {
		return nil, err
	}

	result := &PullResult{Liked: len(liked), Music: len(music)}

	likedIDs := make(map[string]bool, len(music))
	var toCreate []*models.Song
	for _, video := range music {
		likedIDs[video.ID] = true
		if !existing[video.ID] {
			toCreate = append(toCreate, models.NewSong(
				user.ID(), catalog.ID(),
				video.Title, video.Description, video.ImageURL,
				video.ID, video.Etag,
			))
		}
	}

	if err := e.songs.BulkCreate(toCreate); err != nil {
		return nil, fmt.Errorf("failed to create songs: %w", err)
	}

	for _, song := range toCreate {
		existing[song.ThirdPartyID()] = true
		result.CreatedIDs = append(result.CreatedIDs, song.ThirdPartyID())
	}
	result.Created = len(toCreate)

	e.logger.Info("created songs",
		"user", user.Username(),
		"count", result.Created,
		"ids", strings.Join(result.CreatedIDs, ","))

	for id := range existing {
		if !likedIDs[id] {
			result.StaleIDs = append(result.StaleIDs, id)
		}
	}
	result.Stale = len(result.StaleIDs)

	result.Deleted, err = e.songs.DeleteStaleUnsynched(user.ID(), result.StaleIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to delete stale songs: %w", err)
	}

	result.Flagged, err = e.songs.FlagStaleSynched(user.ID(), result.StaleIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to flag stale songs: %w", err)
	}

	e.logger.Info("removed stale songs",
		"user", user.Username(),
		"count", result.Stale,
		"deleted", result.Deleted,
		"flagged", result.Flagged,
		"ids", strings.Join(result.StaleIDs, ","))

	return result, nil
}

// allocate gives every unassigned eligible song a playlist slot. Existing
// playlists with free capacity fill first, oldest first; overflow spawns just
// enough new local playlists to hold the rest. The pool of unassigned songs
// carries no ordering, so placement within a pass is arbitrary.
func (e *Engine) allocate(user *models.User) (int, int, error) {
	catalog, err := e.catalogs.GetOrCreate(user.ID())
	if err != nil {
		return 0, 0, err
	}

	open, err := e.playlists.ListUnderCapacity(catalog.ID(), MaxSongsPerPlaylist)
	if err != nil {
		return 0, 0, err
	}

	unassigned, err := e.songs.ListUnassigned(catalog.ID())
	if err != nil {
		return 0, 0, err
	}

	pool := make(map[string]*models.Song, len(unassigned))
	for _, song := range unassigned {
		pool[song.ID()] = song
	}

	var toUpdate []*models.Song
	fill := func(playlist *models.RemotePlaylist, seats int) {
		for id, song := range pool {
			if seats == 0 {
				return
			}
			song.SetRemotePlaylistID(playlist.ID())
			toUpdate = append(toUpdate, song)
			delete(pool, id)
			seats--
		}
	}

	for _, playlist := range open {
		fill(playlist, MaxSongsPerPlaylist-playlist.NumSongs())
	}

	playlistsCreated := 0
	if len(pool) > 0 {
		playlistsCreated = int(math.Ceil(float64(len(pool)) / float64(MaxSongsPerPlaylist)))

		existingCount, err := e.playlists.CountByCatalog(catalog.ID())
		if err != nil {
			return 0, 0, err
		}

		created := make([]*models.RemotePlaylist, playlistsCreated)
		for i := range created {
			title := models.PlaylistTitle(user.Username(), existingCount+i+1)
			created[i] = models.NewRemotePlaylist(0, catalog.ID(), title)
		}

		if err := e.playlists.BulkCreate(created); err != nil {
			return 0, 0, fmt.Errorf("failed to create playlists: %w", err)
		}

		for _, playlist := range created {
			fill(playlist, MaxSongsPerPlaylist)
		}
	}

	if err := e.songs.BulkAssign(toUpdate); err != nil {
		return 0, 0, fmt.Errorf("failed to assign songs: %w", err)
	}

	return len(toUpdate), playlistsCreated, nil
}

// Sync runs a pull followed by a push for one owner.
func (e *Engine) Sync(ctx context.Context, user *models.User, svc services.Service, progress chan<- ProgressUpdate) (*PullResult, *PushResult, error) {
	pull, err := e.Pull(ctx, user, svc, progress)
	if err != nil {
		return nil, nil, err
	}

	push, err := e.Push(ctx, user, svc, progress)
	if err != nil {
		return pull, nil, err
	}

	return pull, push, nil
}
