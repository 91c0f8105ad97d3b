package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
)

// PlaylistRepository persists [models.RemotePlaylist] containers.
//
// Besides CRUD it serves the allocator's grouped-count query (distinct songs
// per playlist) and the publisher's unsynched-playlist selection.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

const playlistColumns = "id, sequence, catalog_id, title, third_party_id, third_party_etag, is_synched, created_at, updated_at"

// Create inserts a new playlist into the database with generated ID and sequence
func (r *PlaylistRepository) Create(playlist *models.RemotePlaylist) error {
	sequence, err := NextSequence(r.db, "playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	return r.insert(playlist, sequence)
}

// BulkCreate inserts multiple playlists in a single transaction, each with a
// generated ID and sequence.
func (r *PlaylistRepository) BulkCreate(playlists []*models.RemotePlaylist) error {
	for _, playlist := range playlists {
		sequence, err := NextSequence(r.db, "playlists")
		if err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}
		if err := r.insert(playlist, sequence); err != nil {
			return err
		}
	}
	return nil
}

func (r *PlaylistRepository) insert(playlist *models.RemotePlaylist, sequence int) error {
	id := shared.GenerateID()
	playlist.SetID(id)
	playlist.SetSequence(sequence)

	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO playlists (id, sequence, catalog_id, title, third_party_id, third_party_etag, is_synched, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		id,
		sequence,
		playlist.CatalogID(),
		playlist.Title(),
		nullableString(playlist.ThirdPartyID()),
		nullableString(playlist.ThirdPartyEtag()),
		playlist.IsSynched(),
		playlist.CreatedAt(),
		playlist.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	return nil
}

// Get retrieves a playlist by ID
func (r *PlaylistRepository) Get(id string) (*models.RemotePlaylist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE id = ?`

	playlist, err := scanPlaylist(r.db.QueryRow(query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	return playlist, err
}

// Update persists remote identifiers and the synched flag of an existing playlist
func (r *PlaylistRepository) Update(playlist *models.RemotePlaylist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	playlist.SetUpdatedAt(now)

	query := `
		UPDATE playlists
		SET third_party_id = ?, third_party_etag = ?, is_synched = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		nullableString(playlist.ThirdPartyID()),
		nullableString(playlist.ThirdPartyEtag()),
		playlist.IsSynched(),
		now,
		playlist.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlist.ID())
	}

	return nil
}

// Delete is not supported: the pipeline never deletes remote playlists.
func (r *PlaylistRepository) Delete(id string) error {
	return fmt.Errorf("%w: playlists are never deleted", shared.ErrNotImplemented)
}

// List retrieves all playlists matching the given criteria.
//
// Supported criteria: catalog_id (string), is_synched (bool).
func (r *PlaylistRepository) List(criteria map[string]any) ([]*models.RemotePlaylist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE 1=1`

	args := []any{}

	if catalogID, ok := criteria["catalog_id"].(string); ok && catalogID != "" {
		query += " AND catalog_id = ?"
		args = append(args, catalogID)
	}

	if isSynched, ok := criteria["is_synched"].(bool); ok {
		query += " AND is_synched = ?"
		args = append(args, isSynched)
	}

	query += " ORDER BY created_at ASC, sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	return collectPlaylists(rows)
}

// ListUnderCapacity retrieves the catalog's playlists holding fewer than max
// distinct songs, oldest first, each annotated with its current song count.
func (r *PlaylistRepository) ListUnderCapacity(catalogID string, max int) ([]*models.RemotePlaylist, error) {
	query := `
		SELECT p.id, p.sequence, p.catalog_id, p.title, p.third_party_id, p.third_party_etag, p.is_synched, p.created_at, p.updated_at,
			COUNT(DISTINCT s.id) AS num_songs
		FROM playlists p
		LEFT JOIN songs s ON s.remote_playlist_id = p.id
		WHERE p.catalog_id = ?
		GROUP BY p.id
		HAVING num_songs < ?
		ORDER BY p.created_at ASC, p.sequence ASC
	`

	rows, err := r.db.Query(query, catalogID, max)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.RemotePlaylist
	for rows.Next() {
		var numSongs int
		playlist, err := scanPlaylist(func(dest ...any) error {
			return rows.Scan(append(dest, &numSongs)...)
		})
		if err != nil {
			return nil, err
		}
		playlist.SetNumSongs(numSongs)
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// ListWithCounts retrieves all of the catalog's playlists, oldest first,
// each annotated with its current song count.
func (r *PlaylistRepository) ListWithCounts(catalogID string) ([]*models.RemotePlaylist, error) {
	query := `
		SELECT p.id, p.sequence, p.catalog_id, p.title, p.third_party_id, p.third_party_etag, p.is_synched, p.created_at, p.updated_at,
			COUNT(DISTINCT s.id) AS num_songs
		FROM playlists p
		LEFT JOIN songs s ON s.remote_playlist_id = p.id
		WHERE p.catalog_id = ?
		GROUP BY p.id
		ORDER BY p.created_at ASC, p.sequence ASC
	`

	rows, err := r.db.Query(query, catalogID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.RemotePlaylist
	for rows.Next() {
		var numSongs int
		playlist, err := scanPlaylist(func(dest ...any) error {
			return rows.Scan(append(dest, &numSongs)...)
		})
		if err != nil {
			return nil, err
		}
		playlist.SetNumSongs(numSongs)
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// CountByCatalog returns how many playlists exist for a catalog, synched or not.
func (r *PlaylistRepository) CountByCatalog(catalogID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM playlists WHERE catalog_id = ?", catalogID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count playlists: %w", err)
	}
	return count, nil
}

func collectPlaylists(rows *sql.Rows) ([]*models.RemotePlaylist, error) {
	var playlists []*models.RemotePlaylist
	for rows.Next() {
		playlist, err := scanPlaylist(rows.Scan)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

func scanPlaylist(scan func(...any) error) (*models.RemotePlaylist, error) {
	var (
		id             string
		sequence       int
		catalogID      string
		title          string
		thirdPartyID   sql.NullString
		thirdPartyEtag sql.NullString
		isSynched      bool
		createdAt      time.Time
		updatedAt      time.Time
	)

	err := scan(&id, &sequence, &catalogID, &title, &thirdPartyID, &thirdPartyEtag, &isSynched, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	playlist := models.NewRemotePlaylist(sequence, catalogID, title)
	playlist.SetID(id)
	playlist.SetCreatedAt(createdAt)
	playlist.SetUpdatedAt(updatedAt)
	if isSynched {
		playlist.SetRemote(thirdPartyID.String, thirdPartyEtag.String)
	}

	return playlist, nil
}
