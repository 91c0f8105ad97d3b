package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/services"
	"github.com/desertthunder/likesync/internal/shared"
)

// PushResult contains all data from one push pipeline pass.
type PushResult struct {
	PlaylistsCreated int // Playlists created remotely this pass
	Added            int // Memberships inserted remotely
	Removed          int // Memberships deleted and rows hard deleted
	Unpublished      int // Memberships deleted with the row kept
	Failed           int // Remote operations that failed and were skipped
}

// Push runs the push pipeline for one owner: create missing remote playlists,
// then add, remove, and unpublish memberships.
//
// Remote failures are isolated per item: the failed playlist or song is
// logged and skipped, and local state for it stays untouched so the next
// pass retries it. Persistence errors abort the pass.
func (e *Engine) Push(ctx context.Context, user *models.User, svc services.Service, progress chan<- ProgressUpdate) (*PushResult, error) {
	if svc == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}

	catalog, err := e.catalogs.GetOrCreate(user.ID())
	if err != nil {
		return nil, err
	}

	result := &PushResult{}

	if err := e.createPlaylists(ctx, catalog.ID(), svc, progress, result); err != nil {
		return nil, err
	}
	if err := e.addSongs(ctx, user, catalog.ID(), svc, progress, result); err != nil {
		return nil, err
	}
	if err := e.removeSongs(ctx, user, catalog.ID(), svc, progress, result); err != nil {
		return nil, err
	}
	if err := e.unpublishSongs(ctx, user, catalog.ID(), svc, progress, result); err != nil {
		return nil, err
	}

	return result, nil
}

// createPlaylists publishes local playlists that have no remote counterpart
// yet. Songs assigned to a playlist whose creation fails stay pending until
// a later pass succeeds.
func (e *Engine) createPlaylists(ctx context.Context, catalogID string, svc services.Service, progress chan<- ProgressUpdate, result *PushResult) error {
	pending, err := e.playlists.List(map[string]any{"catalog_id": catalogID, "is_synched": false})
	if err != nil {
		return err
	}

	for i, playlist := range pending {
		e.sendProgress(progress, createPlaylistUpdate(i+1, len(pending), playlist.Title()))

		created, err := svc.CreatePlaylist(ctx, playlist.Title())
		if err != nil {
			e.logger.Error("failed to create remote playlist",
				"playlist", playlist.ID(), "title", playlist.Title(), "error", err)
			result.Failed++
			continue
		}

		playlist.SetRemote(created.ID, created.Etag)
		if err := e.playlists.Update(playlist); err != nil {
			return fmt.Errorf("failed to persist playlist %s: %w", playlist.ID(), err)
		}

		result.PlaylistsCreated++
		e.logger.Info("created remote playlist",
			"playlist", playlist.ID(), "remote_id", created.ID)
	}

	return nil
}

// addSongs inserts pending memberships into playlists that exist remotely.
func (e *Engine) addSongs(ctx context.Context, user *models.User, catalogID string, svc services.Service, progress chan<- ProgressUpdate, result *PushResult) error {
	toAdd, err := e.songs.ListToAdd(catalogID)
	if err != nil {
		return err
	}

	remoteIDs, err := e.remotePlaylistIDs(catalogID)
	if err != nil {
		return err
	}

	var addedIDs []string
	for i, song := range toAdd {
		e.sendProgress(progress, addSongUpdate(i+1, len(toAdd), song.Title()))

		itemID, err := svc.InsertPlaylistItem(ctx, remoteIDs[song.RemotePlaylistID()], song.ThirdPartyID())
		if err != nil {
			e.logger.Error("failed to add song",
				"song", song.ID(), "title", song.Title(), "error", err)
			result.Failed++
			continue
		}

		song.SetThirdPartyItemID(itemID)
		song.SetSynched(true)
		if err := e.songs.Update(song); err != nil {
			return fmt.Errorf("failed to persist song %s: %w", song.ID(), err)
		}

		result.Added++
		addedIDs = append(addedIDs, song.ThirdPartyID())
	}

	e.logger.Info("added songs to remote playlists",
		"user", user.Username(),
		"count", result.Added,
		"ids", strings.Join(addedIDs, ","))

	return nil
}

// removeSongs deletes remote memberships for songs flagged should_not_exist.
// Only songs whose remote delete succeeded are hard deleted locally; the rest
// stay flagged for the next pass.
func (e *Engine) removeSongs(ctx context.Context, user *models.User, catalogID string, svc services.Service, progress chan<- ProgressUpdate, result *PushResult) error {
	toRemove, err := e.songs.ListToRemove(catalogID)
	if err != nil {
		return err
	}

	var removedIDs []string
	for i, song := range toRemove {
		e.sendProgress(progress, removeSongUpdate(i+1, len(toRemove), song.Title()))

		if err := svc.DeletePlaylistItem(ctx, song.ThirdPartyItemID()); err != nil {
			e.logger.Error("failed to remove song",
				"song", song.ID(), "title", song.Title(), "error", err)
			result.Failed++
			continue
		}

		if err := e.songs.Delete(song.ID()); err != nil {
			return fmt.Errorf("failed to delete song %s: %w", song.ID(), err)
		}

		result.Removed++
		removedIDs = append(removedIDs, song.ThirdPartyID())
	}

	e.logger.Info("removed songs from remote playlists",
		"user", user.Username(),
		"count", result.Removed,
		"ids", strings.Join(removedIDs, ","))

	return nil
}

// unpublishSongs deletes remote memberships for songs the owner hid. The row
// is kept with is_synched cleared; the playlist assignment stays in place.
func (e *Engine) unpublishSongs(ctx context.Context, user *models.User, catalogID string, svc services.Service, progress chan<- ProgressUpdate, result *PushResult) error {
	toUnpublish, err := e.songs.ListToUnpublish(catalogID)
	if err != nil {
		return err
	}

	var unpublishedIDs []string
	for i, song := range toUnpublish {
		e.sendProgress(progress, unpublishSongUpdate(i+1, len(toUnpublish), song.Title()))

		if err := svc.DeletePlaylistItem(ctx, song.ThirdPartyItemID()); err != nil {
			e.logger.Error("failed to unpublish song",
				"song", song.ID(), "title", song.Title(), "error", err)
			result.Failed++
			continue
		}

		song.SetSynched(false)
		if err := e.songs.Update(song); err != nil {
			return fmt.Errorf("failed to persist song %s: %w", song.ID(), err)
		}

		result.Unpublished++
		unpublishedIDs = append(unpublishedIDs, song.ThirdPartyID())
	}

	e.logger.Info("unpublished songs from remote playlists",
		"user", user.Username(),
		"count", result.Unpublished,
		"ids", strings.Join(unpublishedIDs, ","))

	return nil
}

// remotePlaylistIDs maps local playlist ids to their remote counterparts for
// playlists that exist remotely.
func (e *Engine) remotePlaylistIDs(catalogID string) (map[string]string, error) {
	synched, err := e.playlists.List(map[string]any{"catalog_id": catalogID, "is_synched": true})
	if err != nil {
		return nil, err
	}

	ids := make(map[string]string, len(synched))
	for _, playlist := range synched {
		ids[playlist.ID()] = playlist.ThirdPartyID()
	}

	return ids, nil
}
