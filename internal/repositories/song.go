package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
)

// SongRepository persists [models.Song] rows mirroring the owner's liked videos.
//
// Beyond CRUD it implements the bulk operations the reconciler and allocator
// are built on: bulk create, stale-set deletion/flagging by third-party id,
// and bulk playlist assignment.
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

const songColumns = `id, user_id, catalog_id, remote_playlist_id, title, description, image_url,
	third_party_id, third_party_etag, third_party_item_id,
	is_synched, should_not_exist, should_not_be_published, created_at, updated_at`

// Create inserts a new song into the database with a generated ID
func (r *SongRepository) Create(song *models.Song) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertSong(tx, song); err != nil {
		return err
	}

	return tx.Commit()
}

// BulkCreate inserts all songs in a single transaction, generating IDs.
//
// A uniqueness violation on (user_id, third_party_id) aborts the whole batch.
func (r *SongRepository) BulkCreate(songs []*models.Song) error {
	if len(songs) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, song := range songs {
		if err := insertSong(tx, song); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertSong(tx *sql.Tx, song *models.Song) error {
	id := shared.GenerateID()
	song.SetID(id)

	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO songs (` + songColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.Exec(query,
		id,
		song.UserID(),
		nullableString(song.CatalogID()),
		nullableString(song.RemotePlaylistID()),
		song.Title(),
		song.Description(),
		song.ImageURL(),
		song.ThirdPartyID(),
		song.ThirdPartyEtag(),
		nullableString(song.ThirdPartyItemID()),
		song.IsSynched(),
		song.ShouldNotExist(),
		song.ShouldNotBePublished(),
		song.CreatedAt(),
		song.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}

	return nil
}

// Get retrieves a song by ID
func (r *SongRepository) Get(id string) (*models.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE id = ?`

	song, err := scanSong(r.db.QueryRow(query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}
	return song, err
}

// Update persists the mutable song fields: playlist assignment, remote
// membership id and the three state flags.
func (r *SongRepository) Update(song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	song.SetUpdatedAt(now)

	query := `
		UPDATE songs
		SET remote_playlist_id = ?, third_party_item_id = ?,
			is_synched = ?, should_not_exist = ?, should_not_be_published = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		nullableString(song.RemotePlaylistID()),
		nullableString(song.ThirdPartyItemID()),
		song.IsSynched(),
		song.ShouldNotExist(),
		song.ShouldNotBePublished(),
		now,
		song.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSongNotFound, song.ID())
	}

	return nil
}

// Delete hard-deletes a song by ID.
//
// Songs are removed outright: either they were never published, or their
// remote membership was already removed by the publisher.
func (r *SongRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM songs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}

	return nil
}

// List retrieves all songs matching the given criteria.
//
// Supported criteria: user_id, catalog_id, remote_playlist_id (string),
// is_synched, should_not_exist, should_not_be_published (bool).
func (r *SongRepository) List(criteria map[string]any) ([]*models.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE 1=1`

	args := []any{}

	for _, field := range []string{"user_id", "catalog_id", "remote_playlist_id"} {
		if v, ok := criteria[field].(string); ok && v != "" {
			query += " AND " + field + " = ?"
			args = append(args, v)
		}
	}

	for _, field := range []string{"is_synched", "should_not_exist", "should_not_be_published"} {
		if v, ok := criteria[field].(bool); ok {
			query += " AND " + field + " = ?"
			args = append(args, v)
		}
	}

	query += " ORDER BY created_at ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	return collectSongs(rows)
}

// ThirdPartyIDs returns the set of remote item identifiers already known
// locally for the given owner.
func (r *SongRepository) ThirdPartyIDs(userID string) (map[string]bool, error) {
	rows, err := r.db.Query("SELECT third_party_id FROM songs WHERE user_id = ?", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query song ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan song id: %w", err)
		}
		ids[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ids, nil
}

// DeleteStaleUnsynched hard-deletes the owner's songs in the stale id set
// that never reached a remote playlist. Returns the number of rows deleted.
func (r *SongRepository) DeleteStaleUnsynched(userID string, thirdPartyIDs []string) (int64, error) {
	if len(thirdPartyIDs) == 0 {
		return 0, nil
	}

	marks, args := placeholders(thirdPartyIDs)
	query := fmt.Sprintf(
		"DELETE FROM songs WHERE user_id = ? AND is_synched = 0 AND third_party_id IN (%s)", marks)

	result, err := r.db.Exec(query, append([]any{userID}, args...)...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale songs: %w", err)
	}

	return result.RowsAffected()
}

// FlagStaleSynched marks the owner's already-published songs in the stale id
// set for remote removal. Returns the number of rows flagged.
func (r *SongRepository) FlagStaleSynched(userID string, thirdPartyIDs []string) (int64, error) {
	if len(thirdPartyIDs) == 0 {
		return 0, nil
	}

	marks, args := placeholders(thirdPartyIDs)
	query := fmt.Sprintf(
		"UPDATE songs SET should_not_exist = 1, updated_at = ? WHERE user_id = ? AND is_synched = 1 AND third_party_id IN (%s)", marks)

	result, err := r.db.Exec(query, append([]any{time.Now(), userID}, args...)...)
	if err != nil {
		return 0, fmt.Errorf("failed to flag stale songs: %w", err)
	}

	return result.RowsAffected()
}

// ListUnassigned retrieves the catalog's eligible songs lacking a playlist
// assignment. Result order is not defined; callers must not rely on it.
func (r *SongRepository) ListUnassigned(catalogID string) ([]*models.Song, error) {
	query := `
		SELECT ` + songColumns + ` FROM songs
		WHERE catalog_id = ? AND remote_playlist_id IS NULL
			AND should_not_exist = 0 AND should_not_be_published = 0
	`

	rows, err := r.db.Query(query, catalogID)
	if err != nil {
		return nil, fmt.Errorf("failed to query unassigned songs: %w", err)
	}
	defer rows.Close()

	return collectSongs(rows)
}

// BulkAssign persists the playlist assignment of all given songs in one transaction.
func (r *SongRepository) BulkAssign(songs []*models.Song) error {
	if len(songs) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, song := range songs {
		song.SetUpdatedAt(now)
		_, err := tx.Exec(
			"UPDATE songs SET remote_playlist_id = ?, updated_at = ? WHERE id = ?",
			nullableString(song.RemotePlaylistID()), now, song.ID(),
		)
		if err != nil {
			return fmt.Errorf("failed to assign song %s: %w", song.ID(), err)
		}
	}

	return tx.Commit()
}

// ListToAdd retrieves songs ready to be pushed: unsynched, unflagged, and
// assigned to a playlist that exists remotely.
func (r *SongRepository) ListToAdd(catalogID string) ([]*models.Song, error) {
	return r.listInSynchedPlaylists(catalogID,
		"s.is_synched = 0 AND s.should_not_exist = 0 AND s.should_not_be_published = 0")
}

// ListToRemove retrieves published songs flagged for removal from remote playlists.
func (r *SongRepository) ListToRemove(catalogID string) ([]*models.Song, error) {
	return r.listInSynchedPlaylists(catalogID, "s.is_synched = 1 AND s.should_not_exist = 1")
}

// ListToUnpublish retrieves published songs the owner opted to hide.
func (r *SongRepository) ListToUnpublish(catalogID string) ([]*models.Song, error) {
	return r.listInSynchedPlaylists(catalogID, "s.is_synched = 1 AND s.should_not_be_published = 1")
}

func (r *SongRepository) listInSynchedPlaylists(catalogID, predicate string) ([]*models.Song, error) {
	query := `
		SELECT s.id, s.user_id, s.catalog_id, s.remote_playlist_id, s.title, s.description, s.image_url,
			s.third_party_id, s.third_party_etag, s.third_party_item_id,
			s.is_synched, s.should_not_exist, s.should_not_be_published, s.created_at, s.updated_at
		FROM songs s
		JOIN playlists p ON p.id = s.remote_playlist_id
		WHERE p.catalog_id = ? AND p.is_synched = 1 AND ` + predicate + `
		ORDER BY s.created_at ASC
	`

	rows, err := r.db.Query(query, catalogID)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	return collectSongs(rows)
}

// StateCounts summarizes an owner's songs by lifecycle state.
type StateCounts struct {
	Total          int
	Synched        int
	Unsynched      int
	PendingRemoval int
	Hidden         int
	Unassigned     int
}

// CountByState returns grouped song counts for an owner's catalog.
func (r *SongRepository) CountByState(userID string) (*StateCounts, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(is_synched), 0),
			COALESCE(SUM(CASE WHEN is_synched = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(should_not_exist), 0),
			COALESCE(SUM(should_not_be_published), 0),
			COALESCE(SUM(CASE WHEN remote_playlist_id IS NULL THEN 1 ELSE 0 END), 0)
		FROM songs
		WHERE user_id = ?
	`

	counts := &StateCounts{}
	err := r.db.QueryRow(query, userID).Scan(
		&counts.Total,
		&counts.Synched,
		&counts.Unsynched,
		&counts.PendingRemoval,
		&counts.Hidden,
		&counts.Unassigned,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count songs: %w", err)
	}

	return counts, nil
}

func collectSongs(rows *sql.Rows) ([]*models.Song, error) {
	var songs []*models.Song
	for rows.Next() {
		song, err := scanSong(rows.Scan)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return songs, nil
}

func scanSong(scan func(...any) error) (*models.Song, error) {
	var (
		id                   string
		userID               string
		catalogID            sql.NullString
		remotePlaylistID     sql.NullString
		title                string
		description          string
		imageURL             string
		thirdPartyID         string
		thirdPartyEtag       string
		thirdPartyItemID     sql.NullString
		isSynched            bool
		shouldNotExist       bool
		shouldNotBePublished bool
		createdAt            time.Time
		updatedAt            time.Time
	)

	err := scan(&id, &userID, &catalogID, &remotePlaylistID, &title, &description, &imageURL,
		&thirdPartyID, &thirdPartyEtag, &thirdPartyItemID,
		&isSynched, &shouldNotExist, &shouldNotBePublished, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}

	song := models.NewSong(userID, catalogID.String, title, description, imageURL, thirdPartyID, thirdPartyEtag)
	song.SetID(id)
	song.SetRemotePlaylistID(remotePlaylistID.String)
	song.SetThirdPartyItemID(thirdPartyItemID.String)
	song.SetSynched(isSynched)
	song.SetShouldNotExist(shouldNotExist)
	song.SetShouldNotBePublished(shouldNotBePublished)
	song.SetCreatedAt(createdAt)
	song.SetUpdatedAt(updatedAt)

	return song, nil
}
