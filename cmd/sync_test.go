package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/likesync/internal/formatter"
	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/repositories"
	"github.com/desertthunder/likesync/internal/services"
	"github.com/desertthunder/likesync/internal/shared"
	tu "github.com/desertthunder/likesync/internal/testing"
	"github.com/urfave/cli/v3"
)

func newTestRunner(t *testing.T, svc services.Service) (*Runner, *sql.DB, *bytes.Buffer) {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		DB:      db,
		YouTube: svc,
		Logger:  shared.NewLogger(io.Discard),
		Output:  output,
	})

	return runner, db, output
}

func registerOwner(t *testing.T, db *sql.DB, username string) *models.User {
	t.Helper()

	user := models.NewUser(0, username, username+"@example.com")
	if err := repositories.NewUserRepository(db).Create(user); err != nil {
		t.Fatalf("failed to create owner: %v", err)
	}
	return user
}

func runApp(t *testing.T, runner *Runner, args ...string) error {
	t.Helper()

	app := &cli.Command{Name: "likesync", Commands: runner.register()}
	return app.Run(context.Background(), append([]string{"likesync"}, args...))
}

func musicVideo(id string) services.LikedVideo {
	return services.LikedVideo{
		ID:         id,
		Title:      "Song " + id,
		Etag:       "etag-" + id,
		CategoryID: "10",
	}
}

func TestPullCommand(t *testing.T) {
	t.Run("writes a pull report without publishing", func(t *testing.T) {
		svc := &tu.MockService{Liked: []services.LikedVideo{musicVideo("vid-1"), musicVideo("vid-2")}}
		runner, db, output := newTestRunner(t, svc)
		registerOwner(t, db, "ada")

		if err := runApp(t, runner, "pull", "--user", "ada", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var report formatter.SyncReport
		if err := json.Unmarshal(output.Bytes(), &report); err != nil {
			t.Fatalf("failed to decode report: %v", err)
		}

		if report.Pull == nil || report.Pull.Created != 2 || report.Pull.Assigned != 2 {
			t.Errorf("unexpected pull report: %+v", report.Pull)
		}
		if report.Push != nil {
			t.Error("expected no push half in a pull report")
		}
		if len(svc.Ops) != 0 {
			t.Errorf("expected no remote writes during pull, got %v", svc.Ops)
		}
	})

	t.Run("renders a markdown report", func(t *testing.T) {
		svc := &tu.MockService{Liked: []services.LikedVideo{musicVideo("vid-1"), musicVideo("vid-2")}}
		runner, db, output := newTestRunner(t, svc)
		registerOwner(t, db, "ada")

		if err := runApp(t, runner, "pull", "--user", "ada", "--format", "markdown"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		rendered := output.String()
		if !strings.Contains(rendered, "# Sync report for ada") {
			t.Errorf("expected markdown heading, got %q", rendered)
		}
		if !strings.Contains(rendered, "| Created | 2 |") {
			t.Errorf("expected created row, got %q", rendered)
		}
	})

	t.Run("saves the report to a file", func(t *testing.T) {
		svc := &tu.MockService{Liked: []services.LikedVideo{musicVideo("vid-1")}}
		runner, db, output := newTestRunner(t, svc)
		registerOwner(t, db, "ada")

		path := filepath.Join(t.TempDir(), "report.md")
		if err := runApp(t, runner, "pull", "--user", "ada", "--format", "markdown", "--save", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		saved, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("expected saved report: %v", err)
		}
		if !bytes.Equal(saved, output.Bytes()) {
			t.Error("expected saved report to match printed output")
		}
	})

	t.Run("rejects an unknown format", func(t *testing.T) {
		svc := &tu.MockService{Liked: []services.LikedVideo{musicVideo("vid-1")}}
		runner, db, _ := newTestRunner(t, svc)
		registerOwner(t, db, "ada")

		err := runApp(t, runner, "pull", "--user", "ada", "--format", "yaml")
		if err == nil || !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected invalid argument, got %v", err)
		}
	})

	t.Run("fails for an unknown owner", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, &tu.MockService{})

		err := runApp(t, runner, "pull", "--user", "nobody")
		if err == nil || !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("expected user not found, got %v", err)
		}
	})
}

func TestPushCommand(t *testing.T) {
	t.Run("publishes previously pulled songs", func(t *testing.T) {
		svc := &tu.MockService{Liked: []services.LikedVideo{musicVideo("vid-1")}}
		runner, db, output := newTestRunner(t, svc)
		registerOwner(t, db, "ada")

		if err := runApp(t, runner, "pull", "--user", "ada"); err != nil {
			t.Fatalf("pull failed: %v", err)
		}

		output.Reset()
		if err := runApp(t, runner, "push", "--user", "ada", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var report formatter.SyncReport
		if err := json.Unmarshal(output.Bytes(), &report); err != nil {
			t.Fatalf("failed to decode report: %v", err)
		}

		if report.Push == nil || report.Push.PlaylistsCreated != 1 || report.Push.Added != 1 {
			t.Errorf("unexpected push report: %+v", report.Push)
		}
	})
}

func TestSyncCommand(t *testing.T) {
	t.Run("runs pull then push for one owner", func(t *testing.T) {
		svc := &tu.MockService{Liked: []services.LikedVideo{musicVideo("vid-1"), musicVideo("vid-2")}}
		runner, db, output := newTestRunner(t, svc)
		registerOwner(t, db, "ada")

		if err := runApp(t, runner, "sync", "--user", "ada", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var report formatter.SyncReport
		if err := json.Unmarshal(output.Bytes(), &report); err != nil {
			t.Fatalf("failed to decode report: %v", err)
		}

		if report.Pull == nil || report.Pull.Created != 2 {
			t.Errorf("unexpected pull half: %+v", report.Pull)
		}
		if report.Push == nil || report.Push.Added != 2 {
			t.Errorf("unexpected push half: %+v", report.Push)
		}
	})

	t.Run("requires exactly one of --user and --all", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, &tu.MockService{})

		if err := runApp(t, runner, "sync"); err == nil {
			t.Error("expected error without a target")
		}
		if err := runApp(t, runner, "sync", "--user", "ada", "--all"); err == nil {
			t.Error("expected error with both targets")
		}
	})

	t.Run("syncs every opted-in catalog", func(t *testing.T) {
		svc := &tu.MockService{Liked: []services.LikedVideo{musicVideo("vid-1")}}
		runner, db, _ := newTestRunner(t, svc)

		catalogs := repositories.NewCatalogRepository(db)
		songs := repositories.NewSongRepository(db)
		for _, name := range []string{"ada", "grace"} {
			user := registerOwner(t, db, name)
			if _, err := catalogs.GetOrCreate(user.ID()); err != nil {
				t.Fatalf("failed to create catalog: %v", err)
			}
		}

		if err := runApp(t, runner, "sync", "--all"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		users := repositories.NewUserRepository(db)
		for _, name := range []string{"ada", "grace"} {
			user, err := users.GetByUsername(name)
			if err != nil {
				t.Fatalf("failed to load owner: %v", err)
			}
			counts, err := songs.CountByState(user.ID())
			if err != nil {
				t.Fatalf("failed to count songs: %v", err)
			}
			if counts.Total != 1 || counts.Synched != 1 {
				t.Errorf("expected %s to be synched, got %+v", name, counts)
			}
		}
	})

	t.Run("skips catalogs opted out of updates", func(t *testing.T) {
		svc := &tu.MockService{Liked: []services.LikedVideo{musicVideo("vid-1")}}
		runner, db, _ := newTestRunner(t, svc)

		user := registerOwner(t, db, "ada")
		catalogs := repositories.NewCatalogRepository(db)
		catalog, err := catalogs.GetOrCreate(user.ID())
		if err != nil {
			t.Fatalf("failed to create catalog: %v", err)
		}
		catalog.SetShouldUpdate(false)
		if err := catalogs.Update(catalog); err != nil {
			t.Fatalf("failed to update catalog: %v", err)
		}

		if err := runApp(t, runner, "sync", "--all"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		counts, err := repositories.NewSongRepository(db).CountByState(user.ID())
		if err != nil {
			t.Fatalf("failed to count songs: %v", err)
		}
		if counts.Total != 0 {
			t.Errorf("expected opted-out catalog to be skipped, got %+v", counts)
		}
	})

	t.Run("continues past failing owners in the all loop", func(t *testing.T) {
		svc := &tu.MockService{LikedErr: errors.New("remote down")}
		runner, db, _ := newTestRunner(t, svc)

		user := registerOwner(t, db, "ada")
		if _, err := repositories.NewCatalogRepository(db).GetOrCreate(user.ID()); err != nil {
			t.Fatalf("failed to create catalog: %v", err)
		}

		if err := runApp(t, runner, "sync", "--all"); err != nil {
			t.Errorf("expected per-owner errors to be swallowed, got %v", err)
		}
	})
}

func TestStatusCommand(t *testing.T) {
	svc := &tu.MockService{Liked: []services.LikedVideo{musicVideo("vid-1")}}
	runner, db, output := newTestRunner(t, svc)
	registerOwner(t, db, "ada")

	if err := runApp(t, runner, "sync", "--user", "ada"); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	t.Run("plain", func(t *testing.T) {
		output.Reset()
		if err := runApp(t, runner, "status", "--user", "ada"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Synched: 1") {
			t.Errorf("unexpected status output:\n%s", output.String())
		}
	})

	t.Run("markdown", func(t *testing.T) {
		output.Reset()
		if err := runApp(t, runner, "status", "--user", "ada", "--format", "markdown"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "| Synched | 1 |") {
			t.Errorf("unexpected status output:\n%s", output.String())
		}
	})

	t.Run("rejects unknown formats", func(t *testing.T) {
		if err := runApp(t, runner, "status", "--user", "ada", "--format", "yaml"); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}

func TestUserCommands(t *testing.T) {
	runner, db, output := newTestRunner(t, &tu.MockService{})

	t.Run("add registers an owner", func(t *testing.T) {
		if err := runApp(t, runner, "user", "add", "--email", "ada@example.com", "ada"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		user, err := repositories.NewUserRepository(db).GetByUsername("ada")
		if err != nil {
			t.Fatalf("expected owner to exist: %v", err)
		}
		if user.Email() != "ada@example.com" {
			t.Errorf("unexpected email: %s", user.Email())
		}
	})

	t.Run("add requires a username", func(t *testing.T) {
		err := runApp(t, runner, "user", "add")
		if err == nil || !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected missing argument error, got %v", err)
		}
	})

	t.Run("list reports authorization state", func(t *testing.T) {
		output.Reset()
		if err := runApp(t, runner, "user", "list", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var rows []userRow
		if err := json.Unmarshal(output.Bytes(), &rows); err != nil {
			t.Fatalf("failed to decode rows: %v", err)
		}

		if len(rows) != 1 || rows[0].Username != "ada" || rows[0].Authorized {
			t.Errorf("unexpected rows: %+v", rows)
		}
	})
}
