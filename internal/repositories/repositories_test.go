package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// seedOwner creates a user with a catalog and returns both.
func seedOwner(t *testing.T, db *sql.DB, username string) (*models.User, *models.Catalog) {
	t.Helper()

	users := NewUserRepository(db)
	user := models.NewUser(0, username, username+"@example.com")
	if err := users.Create(user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	catalogs := NewCatalogRepository(db)
	catalog, err := catalogs.GetOrCreate(user.ID())
	if err != nil {
		t.Fatalf("failed to create catalog: %v", err)
	}

	return user, catalog
}

// seedSong creates a song for the owner with the given remote id.
func seedSong(t *testing.T, db *sql.DB, user *models.User, catalog *models.Catalog, thirdPartyID string) *models.Song {
	t.Helper()

	repo := NewSongRepository(db)
	song := models.NewSong(user.ID(), catalog.ID(), "Song "+thirdPartyID, "", "", thirdPartyID, "etag-"+thirdPartyID)
	if err := repo.Create(song); err != nil {
		t.Fatalf("failed to create song: %v", err)
	}

	return song
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	first, err := NextSequence(db, "users")
	if err != nil {
		t.Fatalf("failed to get sequence: %v", err)
	}

	second, err := NextSequence(db, "users")
	if err != nil {
		t.Fatalf("failed to get sequence: %v", err)
	}

	if second != first+1 {
		t.Errorf("expected consecutive sequences, got %d then %d", first, second)
	}
}

func TestUserRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewUserRepository(db)
		user := models.NewUser(0, "ada", "ada@example.com")

		if err := repo.Create(user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		if user.ID() == "" {
			t.Error("user ID should be set after creation")
		}

		if user.Sequence() == 0 {
			t.Error("user sequence should be assigned on creation")
		}
	})

	t.Run("CreateDuplicateUsername", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewUserRepository(db)
		if err := repo.Create(models.NewUser(0, "ada", "ada@example.com")); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		err := repo.Create(models.NewUser(0, "ada", "other@example.com"))
		if err == nil {
			t.Error("expected error for duplicate username")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewUserRepository(db)
		user := models.NewUser(0, "ada", "ada@example.com")

		if err := repo.Create(user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		retrieved, err := repo.Get(user.ID())
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}

		if retrieved.Username() != "ada" {
			t.Errorf("expected username ada, got %s", retrieved.Username())
		}

		if retrieved.Email() != user.Email() {
			t.Errorf("expected email %s, got %s", user.Email(), retrieved.Email())
		}
	})

	t.Run("GetByUsername", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewUserRepository(db)
		user := models.NewUser(0, "ada", "ada@example.com")

		if err := repo.Create(user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		retrieved, err := repo.GetByUsername("ada")
		if err != nil {
			t.Fatalf("failed to get user by username: %v", err)
		}

		if retrieved.ID() != user.ID() {
			t.Errorf("expected ID %s, got %s", user.ID(), retrieved.ID())
		}

		if _, err := repo.GetByUsername("nobody"); !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("UpdatePersistsTokens", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewUserRepository(db)
		user := models.NewUser(0, "ada", "ada@example.com")

		if err := repo.Create(user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		expiry := time.Now().Add(time.Hour)
		user.SetToken("access-token", "refresh-token", expiry)

		if err := repo.Update(user); err != nil {
			t.Fatalf("failed to update user: %v", err)
		}

		retrieved, err := repo.Get(user.ID())
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}

		if !retrieved.HasToken() {
			t.Error("expected user to have a token after update")
		}

		if retrieved.RefreshToken() != "refresh-token" {
			t.Errorf("expected refresh token to round-trip, got %q", retrieved.RefreshToken())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewUserRepository(db)
		user := models.NewUser(0, "ada", "ada@example.com")

		if err := repo.Create(user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		if err := repo.Delete(user.ID()); err != nil {
			t.Fatalf("failed to delete user: %v", err)
		}

		if _, err := repo.Get(user.ID()); err == nil {
			t.Error("expected error when getting deleted user")
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewUserRepository(db)
		for _, name := range []string{"ada", "grace"} {
			if err := repo.Create(models.NewUser(0, name, name+"@example.com")); err != nil {
				t.Fatalf("failed to create user: %v", err)
			}
		}

		users, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list users: %v", err)
		}

		if len(users) != 2 {
			t.Errorf("expected 2 users, got %d", len(users))
		}

		filtered, err := repo.List(map[string]any{"username": "grace"})
		if err != nil {
			t.Fatalf("failed to list users: %v", err)
		}

		if len(filtered) != 1 || filtered[0].Username() != "grace" {
			t.Errorf("expected only grace, got %d users", len(filtered))
		}
	})
}

func TestCatalogRepository(t *testing.T) {
	t.Run("GetOrCreate", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		users := NewUserRepository(db)
		user := models.NewUser(0, "ada", "ada@example.com")
		if err := users.Create(user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		repo := NewCatalogRepository(db)
		catalog, err := repo.GetOrCreate(user.ID())
		if err != nil {
			t.Fatalf("failed to create catalog: %v", err)
		}

		if !catalog.ShouldUpdate() {
			t.Error("new catalogs should be opted in to updates")
		}

		again, err := repo.GetOrCreate(user.ID())
		if err != nil {
			t.Fatalf("failed to get catalog: %v", err)
		}

		if again.ID() != catalog.ID() {
			t.Errorf("expected same catalog, got %s and %s", catalog.ID(), again.ID())
		}
	})

	t.Run("UpdateShouldUpdate", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		_, catalog := seedOwner(t, db, "ada")

		repo := NewCatalogRepository(db)
		catalog.SetShouldUpdate(false)
		if err := repo.Update(catalog); err != nil {
			t.Fatalf("failed to update catalog: %v", err)
		}

		retrieved, err := repo.Get(catalog.ID())
		if err != nil {
			t.Fatalf("failed to get catalog: %v", err)
		}

		if retrieved.ShouldUpdate() {
			t.Error("expected catalog to be opted out")
		}
	})

	t.Run("ListByShouldUpdate", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		_, optedIn := seedOwner(t, db, "ada")
		_, optedOut := seedOwner(t, db, "grace")

		repo := NewCatalogRepository(db)
		optedOut.SetShouldUpdate(false)
		if err := repo.Update(optedOut); err != nil {
			t.Fatalf("failed to update catalog: %v", err)
		}

		catalogs, err := repo.List(map[string]any{"should_update": true})
		if err != nil {
			t.Fatalf("failed to list catalogs: %v", err)
		}

		if len(catalogs) != 1 || catalogs[0].ID() != optedIn.ID() {
			t.Errorf("expected only the opted-in catalog, got %d", len(catalogs))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		_, catalog := seedOwner(t, db, "ada")

		repo := NewCatalogRepository(db)
		if err := repo.Delete(catalog.ID()); !errors.Is(err, shared.ErrNotImplemented) {
			t.Errorf("expected ErrNotImplemented, got %v", err)
		}
	})
}

func TestPlaylistRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user, catalog := seedOwner(t, db, "ada")

		repo := NewPlaylistRepository(db)
		playlist := models.NewRemotePlaylist(0, catalog.ID(), models.PlaylistTitle(user.Username(), 1))

		if err := repo.Create(playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		if playlist.ID() == "" {
			t.Error("playlist ID should be set after creation")
		}

		if playlist.Sequence() == 0 {
			t.Error("playlist sequence should be set after creation")
		}

		retrieved, err := repo.Get(playlist.ID())
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}

		if retrieved.Title() != "ada's shared - 1" {
			t.Errorf("unexpected title %q", retrieved.Title())
		}

		if retrieved.Sequence() != playlist.Sequence() {
			t.Errorf("expected persisted sequence %d, got %d", playlist.Sequence(), retrieved.Sequence())
		}

		if retrieved.IsSynched() {
			t.Error("new playlists should not be marked synched")
		}
	})

	t.Run("BulkCreate", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user, catalog := seedOwner(t, db, "ada")

		repo := NewPlaylistRepository(db)
		var playlists []*models.RemotePlaylist
		for i := 1; i <= 3; i++ {
			playlists = append(playlists, models.NewRemotePlaylist(0, catalog.ID(), models.PlaylistTitle(user.Username(), i)))
		}

		if err := repo.BulkCreate(playlists); err != nil {
			t.Fatalf("failed to bulk create playlists: %v", err)
		}

		count, err := repo.CountByCatalog(catalog.ID())
		if err != nil {
			t.Fatalf("failed to count playlists: %v", err)
		}

		if count != 3 {
			t.Errorf("expected 3 playlists, got %d", count)
		}
	})

	t.Run("UpdatePersistsRemoteState", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user, catalog := seedOwner(t, db, "ada")

		repo := NewPlaylistRepository(db)
		playlist := models.NewRemotePlaylist(0, catalog.ID(), models.PlaylistTitle(user.Username(), 1))
		if err := repo.Create(playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		playlist.SetRemote("PL123", "etag-abc")
		if err := repo.Update(playlist); err != nil {
			t.Fatalf("failed to update playlist: %v", err)
		}

		retrieved, err := repo.Get(playlist.ID())
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}

		if !retrieved.IsSynched() {
			t.Error("expected playlist to be synched")
		}

		if retrieved.ThirdPartyID() != "PL123" {
			t.Errorf("expected third party id PL123, got %q", retrieved.ThirdPartyID())
		}
	})

	t.Run("ListOrdersOldestFirst", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user, catalog := seedOwner(t, db, "ada")

		repo := NewPlaylistRepository(db)
		for i := 1; i <= 3; i++ {
			playlist := models.NewRemotePlaylist(0, catalog.ID(), models.PlaylistTitle(user.Username(), i))
			if err := repo.Create(playlist); err != nil {
				t.Fatalf("failed to create playlist: %v", err)
			}
		}

		playlists, err := repo.List(map[string]any{"catalog_id": catalog.ID()})
		if err != nil {
			t.Fatalf("failed to list playlists: %v", err)
		}

		if len(playlists) != 3 {
			t.Fatalf("expected 3 playlists, got %d", len(playlists))
		}

		for i := 1; i < len(playlists); i++ {
			if playlists[i].Sequence() < playlists[i-1].Sequence() {
				t.Error("expected playlists ordered oldest first")
			}
		}
	})

	t.Run("ListUnderCapacity", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user, catalog := seedOwner(t, db, "ada")

		repo := NewPlaylistRepository(db)
		full := models.NewRemotePlaylist(0, catalog.ID(), models.PlaylistTitle(user.Username(), 1))
		open := models.NewRemotePlaylist(0, catalog.ID(), models.PlaylistTitle(user.Username(), 2))
		for _, p := range []*models.RemotePlaylist{full, open} {
			if err := repo.Create(p); err != nil {
				t.Fatalf("failed to create playlist: %v", err)
			}
		}

		songs := NewSongRepository(db)
		for i := 0; i < 3; i++ {
			song := seedSong(t, db, user, catalog, fmt.Sprintf("vid-full-%d", i))
			song.SetRemotePlaylistID(full.ID())
			if err := songs.Update(song); err != nil {
				t.Fatalf("failed to assign song: %v", err)
			}
		}

		song := seedSong(t, db, user, catalog, "vid-open-0")
		song.SetRemotePlaylistID(open.ID())
		if err := songs.Update(song); err != nil {
			t.Fatalf("failed to assign song: %v", err)
		}

		available, err := repo.ListUnderCapacity(catalog.ID(), 3)
		if err != nil {
			t.Fatalf("failed to list playlists under capacity: %v", err)
		}

		if len(available) != 1 {
			t.Fatalf("expected 1 playlist under capacity, got %d", len(available))
		}

		if available[0].ID() != open.ID() {
			t.Errorf("expected playlist %s, got %s", open.ID(), available[0].ID())
		}

		if available[0].NumSongs() != 1 {
			t.Errorf("expected 1 song annotated, got %d", available[0].NumSongs())
		}
	})

	t.Run("ListWithCounts", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user, catalog := seedOwner(t, db, "ada")

		repo := NewPlaylistRepository(db)
		first := models.NewRemotePlaylist(0, catalog.ID(), models.PlaylistTitle(user.Username(), 1))
		second := models.NewRemotePlaylist(0, catalog.ID(), models.PlaylistTitle(user.Username(), 2))
		for _, p := range []*models.RemotePlaylist{first, second} {
			if err := repo.Create(p); err != nil {
				t.Fatalf("failed to create playlist: %v", err)
			}
		}

		songs := NewSongRepository(db)
		for i := 0; i < 2; i++ {
			song := seedSong(t, db, user, catalog, fmt.Sprintf("vid-%d", i))
			song.SetRemotePlaylistID(first.ID())
			if err := songs.Update(song); err != nil {
				t.Fatalf("failed to assign song: %v", err)
			}
		}

		playlists, err := repo.ListWithCounts(catalog.ID())
		if err != nil {
			t.Fatalf("failed to list playlists with counts: %v", err)
		}

		if len(playlists) != 2 {
			t.Fatalf("expected both playlists, got %d", len(playlists))
		}

		if playlists[0].NumSongs() != 2 || playlists[1].NumSongs() != 0 {
			t.Errorf("unexpected counts: %d, %d", playlists[0].NumSongs(), playlists[1].NumSongs())
		}
	})

	t.Run("ListUnderCapacityIncludesEmpty", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user, catalog := seedOwner(t, db, "ada")

		repo := NewPlaylistRepository(db)
		playlist := models.NewRemotePlaylist(0, catalog.ID(), models.PlaylistTitle(user.Username(), 1))
		if err := repo.Create(playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		available, err := repo.ListUnderCapacity(catalog.ID(), 200)
		if err != nil {
			t.Fatalf("failed to list playlists under capacity: %v", err)
		}

		if len(available) != 1 {
			t.Fatalf("expected the empty playlist, got %d", len(available))
		}

		if available[0].NumSongs() != 0 {
			t.Errorf("expected 0 songs annotated, got %d", available[0].NumSongs())
		}
	})
}

func TestSongRepository(t *testing.T) {
	t.Run("CreateAndGet", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user, catalog := seedOwner(t, db, "ada")
		song := seedSong(t, db, user, catalog, "vid-1")

		repo := NewSongRepository(db)
		retrieved, err := repo.Get(song.ID())
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}

		if retrieved.ThirdPartyID() != "vid-1" {
			t.Errorf("expected third party id vid-1, got %q", retrieved.ThirdPartyID())
		}

		if !retrieved.Eligible() {
			t.Error("new songs should be eligible for allocation")
		}
	})

	t.Run("BulkCreateRejectsDuplicates", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user, catalog := seedOwner(t, db, "ada")
		seedSong(t, db, user, catalog, "vid-1")

		repo := NewSongRepository(db)
		dupe := models.NewSong(user.ID(), catalog.ID(), "Song vid-1", "", "", "vid-1", "etag")

		if err := repo.BulkCreate([]*models.Song{dupe}); err == nil {
			t.Error("expected error for duplicate (user, third party id) pair")
		}
	})

	t.Run("ThirdPartyIDs", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user, catalog := seedOwner(t, db, "ada")
		other, otherCatalog := seedOwner(t, db, "grace")

		seedSong(t, db, user, catalog, "vid-1")
		seedSong(t, db, user, catalog, "vid-2")
		seedSong(t, db, other, otherCatalog, "vid-3")

		repo := NewSongRepository(db)
		ids, err := repo.ThirdPartyIDs(user.ID())
		if err != nil {
			t.Fatalf("failed to get third party ids: %v", err)
		}

		if len(ids) != 2 || !ids["vid-1"] || !ids["vid-2"] {
			t.Errorf("expected ids vid-1 and vid-2, got %v", ids)
		}
	})

	t.Run("DeleteStaleUnsynched", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user, catalog := seedOwner(t, db, "ada")
		stale := seedSong(t, db, user, catalog, "vid-stale")
		kept := seedSong(t, db, user, catalog, "vid-kept")

		repo := NewSongRepository(db)
		deleted, err := repo.DeleteStaleUnsynched(user.ID(), []string{"vid-stale"})
		if err != nil {
			t.Fatalf("failed to delete stale songs: %v", err)
		}

		if deleted != 1 {
			t.Errorf("expected 1 deletion, got %d", deleted)
		}

		if _, err := repo.Get(stale.ID()); !errors.Is(err, shared.ErrSongNotFound) {
			t.Errorf("expected stale song gone, got %v", err)
		}

		if _, err := repo.Get(kept.ID()); err != nil {
			t.Errorf("expected kept song to remain: %v", err)
		}
	})

	t.Run("DeleteStaleUnsynchedSkipsPublished", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user, catalog := seedOwner(t, db, "ada")
		published := seedSong(t, db, user, catalog, "vid-pub")

		repo := NewSongRepository(db)
		published.SetSynched(true)
		if err := repo.Update(published); err != nil {
			t.Fatalf("failed to update song: %v", err)
		}

		deleted, err := repo.DeleteStaleUnsynched(user.ID(), []string{"vid-pub"})
		if err != nil {
			t.Fatalf("failed to delete stale songs: %v", err)
		}

		if deleted != 0 {
			t.Errorf("published songs must not be hard deleted, got %d deletions", deleted)
		}
	})

	t.Run("FlagStaleSynched", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user, catalog := seedOwner(t, db, "ada")
		published := seedSong(t, db, user, catalog, "vid-pub")
		unpublished := seedSong(t, db, user, catalog, "vid-new")

		repo := NewSongRepository(db)
		published.SetSynched(true)
		if err := repo.Update(published); err != nil {
			t.Fatalf("failed to update song: %v", err)
		}

		flagged, err := repo.FlagStaleSynched(user.ID(), []string{"vid-pub", "vid-new"})
		if err != nil {
			t.Fatalf("failed to flag stale songs: %v", err)
		}

		if flagged != 1 {
			t.Errorf("expected 1 flagged song, got %d", flagged)
		}

		retrieved, err := repo.Get(published.ID())
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}

		if !retrieved.ShouldNotExist() {
			t.Error("expected published stale song to be flagged for removal")
		}

		retrieved, err = repo.Get(unpublished.ID())
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}

		if retrieved.ShouldNotExist() {
			t.Error("unsynched songs must not be flagged")
		}
	})

	t.Run("ListUnassigned", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user, catalog := seedOwner(t, db, "ada")

		playlists := NewPlaylistRepository(db)
		playlist := models.NewRemotePlaylist(0, catalog.ID(), models.PlaylistTitle(user.Username(), 1))
		if err := playlists.Create(playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		repo := NewSongRepository(db)

		assigned := seedSong(t, db, user, catalog, "vid-assigned")
		assigned.SetRemotePlaylistID(playlist.ID())
		if err := repo.Update(assigned); err != nil {
			t.Fatalf("failed to assign song: %v", err)
		}

		hidden := seedSong(t, db, user, catalog, "vid-hidden")
		hidden.SetShouldNotBePublished(true)
		if err := repo.Update(hidden); err != nil {
			t.Fatalf("failed to hide song: %v", err)
		}

		eligible := seedSong(t, db, user, catalog, "vid-eligible")

		unassigned, err := repo.ListUnassigned(catalog.ID())
		if err != nil {
			t.Fatalf("failed to list unassigned songs: %v", err)
		}

		if len(unassigned) != 1 || unassigned[0].ID() != eligible.ID() {
			t.Errorf("expected only the eligible song, got %d", len(unassigned))
		}
	})

	t.Run("BulkAssign", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user, catalog := seedOwner(t, db, "ada")

		playlists := NewPlaylistRepository(db)
		playlist := models.NewRemotePlaylist(0, catalog.ID(), models.PlaylistTitle(user.Username(), 1))
		if err := playlists.Create(playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		repo := NewSongRepository(db)
		var batch []*models.Song
		for i := 0; i < 3; i++ {
			song := seedSong(t, db, user, catalog, fmt.Sprintf("vid-%d", i))
			song.SetRemotePlaylistID(playlist.ID())
			batch = append(batch, song)
		}

		if err := repo.BulkAssign(batch); err != nil {
			t.Fatalf("failed to bulk assign songs: %v", err)
		}

		remaining, err := repo.ListUnassigned(catalog.ID())
		if err != nil {
			t.Fatalf("failed to list unassigned songs: %v", err)
		}

		if len(remaining) != 0 {
			t.Errorf("expected no unassigned songs, got %d", len(remaining))
		}
	})

	t.Run("PublisherSelections", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user, catalog := seedOwner(t, db, "ada")

		playlists := NewPlaylistRepository(db)
		synched := models.NewRemotePlaylist(0, catalog.ID(), models.PlaylistTitle(user.Username(), 1))
		pending := models.NewRemotePlaylist(0, catalog.ID(), models.PlaylistTitle(user.Username(), 2))
		for _, p := range []*models.RemotePlaylist{synched, pending} {
			if err := playlists.Create(p); err != nil {
				t.Fatalf("failed to create playlist: %v", err)
			}
		}
		synched.SetRemote("PL123", "etag")
		if err := playlists.Update(synched); err != nil {
			t.Fatalf("failed to update playlist: %v", err)
		}

		repo := NewSongRepository(db)

		toAdd := seedSong(t, db, user, catalog, "vid-add")
		toAdd.SetRemotePlaylistID(synched.ID())
		if err := repo.Update(toAdd); err != nil {
			t.Fatalf("failed to update song: %v", err)
		}

		inPending := seedSong(t, db, user, catalog, "vid-pending")
		inPending.SetRemotePlaylistID(pending.ID())
		if err := repo.Update(inPending); err != nil {
			t.Fatalf("failed to update song: %v", err)
		}

		toRemove := seedSong(t, db, user, catalog, "vid-remove")
		toRemove.SetRemotePlaylistID(synched.ID())
		toRemove.SetSynched(true)
		toRemove.SetShouldNotExist(true)
		if err := repo.Update(toRemove); err != nil {
			t.Fatalf("failed to update song: %v", err)
		}

		toUnpublish := seedSong(t, db, user, catalog, "vid-hide")
		toUnpublish.SetRemotePlaylistID(synched.ID())
		toUnpublish.SetSynched(true)
		toUnpublish.SetShouldNotBePublished(true)
		if err := repo.Update(toUnpublish); err != nil {
			t.Fatalf("failed to update song: %v", err)
		}

		adds, err := repo.ListToAdd(catalog.ID())
		if err != nil {
			t.Fatalf("failed to list songs to add: %v", err)
		}
		if len(adds) != 1 || adds[0].ID() != toAdd.ID() {
			t.Errorf("expected only vid-add in adds, got %d", len(adds))
		}

		removals, err := repo.ListToRemove(catalog.ID())
		if err != nil {
			t.Fatalf("failed to list songs to remove: %v", err)
		}
		if len(removals) != 1 || removals[0].ID() != toRemove.ID() {
			t.Errorf("expected only vid-remove in removals, got %d", len(removals))
		}

		hides, err := repo.ListToUnpublish(catalog.ID())
		if err != nil {
			t.Fatalf("failed to list songs to unpublish: %v", err)
		}
		if len(hides) != 1 || hides[0].ID() != toUnpublish.ID() {
			t.Errorf("expected only vid-hide in unpublish set, got %d", len(hides))
		}
	})

	t.Run("UpdatePersistsMembership", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user, catalog := seedOwner(t, db, "ada")
		song := seedSong(t, db, user, catalog, "vid-1")

		repo := NewSongRepository(db)
		song.SetThirdPartyItemID("item-99")
		song.SetSynched(true)
		if err := repo.Update(song); err != nil {
			t.Fatalf("failed to update song: %v", err)
		}

		retrieved, err := repo.Get(song.ID())
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}

		if retrieved.ThirdPartyItemID() != "item-99" {
			t.Errorf("expected membership id item-99, got %q", retrieved.ThirdPartyItemID())
		}

		if !retrieved.IsSynched() {
			t.Error("expected song to be synched")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user, catalog := seedOwner(t, db, "ada")
		song := seedSong(t, db, user, catalog, "vid-1")

		repo := NewSongRepository(db)
		if err := repo.Delete(song.ID()); err != nil {
			t.Fatalf("failed to delete song: %v", err)
		}

		if _, err := repo.Get(song.ID()); !errors.Is(err, shared.ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound, got %v", err)
		}

		if err := repo.Delete(song.ID()); !errors.Is(err, shared.ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound on second delete, got %v", err)
		}
	})

	t.Run("CountByState", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		user, catalog := seedOwner(t, db, "ada")

		repo := NewSongRepository(db)

		seedSong(t, db, user, catalog, "vid-1")

		published := seedSong(t, db, user, catalog, "vid-2")
		published.SetSynched(true)
		if err := repo.Update(published); err != nil {
			t.Fatalf("failed to update song: %v", err)
		}

		flagged := seedSong(t, db, user, catalog, "vid-3")
		flagged.SetSynched(true)
		flagged.SetShouldNotExist(true)
		if err := repo.Update(flagged); err != nil {
			t.Fatalf("failed to update song: %v", err)
		}

		counts, err := repo.CountByState(user.ID())
		if err != nil {
			t.Fatalf("failed to count songs: %v", err)
		}

		if counts.Total != 3 {
			t.Errorf("expected 3 total, got %d", counts.Total)
		}
		if counts.Synched != 2 {
			t.Errorf("expected 2 synched, got %d", counts.Synched)
		}
		if counts.Unsynched != 1 {
			t.Errorf("expected 1 unsynched, got %d", counts.Unsynched)
		}
		if counts.PendingRemoval != 1 {
			t.Errorf("expected 1 pending removal, got %d", counts.PendingRemoval)
		}
	})
}
