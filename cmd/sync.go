package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/likesync/internal/formatter"
	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/repositories"
	"github.com/desertthunder/likesync/internal/shared"
	"github.com/desertthunder/likesync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Pull runs the read half of the pipeline for one owner.
func (r *Runner) Pull(ctx context.Context, cmd *cli.Command) error {
	db, cleanup, err := r.openDB()
	if err != nil {
		return err
	}
	defer cleanup()

	user, err := r.lookupOwner(db, cmd.String("user"))
	if err != nil {
		return err
	}

	svc, err := r.serviceFor(ctx, user)
	if err != nil {
		return err
	}

	engine := tasks.NewEngine(db, r.logger)
	result, err := engine.Pull(ctx, user, svc, nil)
	if err != nil {
		return fmt.Errorf("pull failed for %s: %w", user.Username(), err)
	}

	return r.writeSyncReport(cmd, &formatter.SyncReport{
		Username: user.Username(),
		RanAt:    time.Now(),
		Pull:     result,
	})
}

// Push runs the write half of the pipeline for one owner.
func (r *Runner) Push(ctx context.Context, cmd *cli.Command) error {
	db, cleanup, err := r.openDB()
	if err != nil {
		return err
	}
	defer cleanup()

	user, err := r.lookupOwner(db, cmd.String("user"))
	if err != nil {
		return err
	}

	svc, err := r.serviceFor(ctx, user)
	if err != nil {
		return err
	}

	engine := tasks.NewEngine(db, r.logger)
	result, err := engine.Push(ctx, user, svc, nil)
	if err != nil {
		return fmt.Errorf("push failed for %s: %w", user.Username(), err)
	}

	return r.writeSyncReport(cmd, &formatter.SyncReport{
		Username: user.Username(),
		RanAt:    time.Now(),
		Push:     result,
	})
}

// Sync runs pull then push for one owner, or for every catalog opted into
// updates when --all is set. In the --all loop a failing owner is logged
// and the loop continues.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	username := cmd.String("user")
	all := cmd.Bool("all")

	if all == (username != "") {
		return fmt.Errorf("%w: exactly one of --user or --all", shared.ErrInvalidArgument)
	}

	db, cleanup, err := r.openDB()
	if err != nil {
		return err
	}
	defer cleanup()

	engine := tasks.NewEngine(db, r.logger)

	if !all {
		user, err := r.lookupOwner(db, username)
		if err != nil {
			return err
		}
		return r.syncOne(ctx, cmd, engine, user)
	}

	catalogs, err := repositories.NewCatalogRepository(db).List(map[string]any{"should_update": true})
	if err != nil {
		return fmt.Errorf("failed to list catalogs: %w", err)
	}

	users := repositories.NewUserRepository(db)
	for _, catalog := range catalogs {
		user, err := users.Get(catalog.UserID())
		if err != nil {
			r.logger.Error("failed to load catalog owner", "catalog", catalog.ID(), "error", err)
			continue
		}

		if err := r.syncOne(ctx, cmd, engine, user); err != nil {
			r.logger.Error("sync failed", "user", user.Username(), "error", err)
			continue
		}
	}

	return nil
}

func (r *Runner) syncOne(ctx context.Context, cmd *cli.Command, engine *tasks.Engine, user *models.User) error {
	svc, err := r.serviceFor(ctx, user)
	if err != nil {
		return err
	}

	pull, push, err := engine.Sync(ctx, user, svc, nil)
	if err != nil {
		return fmt.Errorf("sync failed for %s: %w", user.Username(), err)
	}

	return r.writeSyncReport(cmd, &formatter.SyncReport{
		Username: user.Username(),
		RanAt:    time.Now(),
		Pull:     pull,
		Push:     push,
	})
}

// Status prints an owner's song counts by sync state.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")

	db, cleanup, err := r.openDB()
	if err != nil {
		return err
	}
	defer cleanup()

	user, err := r.lookupOwner(db, cmd.String("user"))
	if err != nil {
		return err
	}

	counts, err := repositories.NewSongRepository(db).CountByState(user.ID())
	if err != nil {
		return fmt.Errorf("failed to count songs: %w", err)
	}

	report := &formatter.StatusReport{Username: user.Username(), Counts: counts}

	switch format {
	case "json":
		return r.writeJSON(report, true)
	case "markdown", "md":
		return r.writePlain("%s", formatter.StatusToMarkdown(report))
	case "plain", "":
		return r.writePlain("%s", formatter.StatusToText(report))
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

func (r *Runner) lookupOwner(db *sql.DB, username string) (*models.User, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: --user", shared.ErrMissingArgument)
	}

	user, err := repositories.NewUserRepository(db).GetByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up owner %q: %w", username, err)
	}

	return user, nil
}

func (r *Runner) writeSyncReport(cmd *cli.Command, report *formatter.SyncReport) error {
	rendered, err := r.renderSyncReport(cmd, report)
	if err != nil {
		return err
	}

	if path := cmd.String("save"); path != "" {
		if err := os.WriteFile(path, rendered, 0o644); err != nil {
			return fmt.Errorf("failed to save report to %s: %w", path, err)
		}
		r.logger.Info("report saved", "path", path)
	}

	return r.writePlain("%s", rendered)
}

func (r *Runner) renderSyncReport(cmd *cli.Command, report *formatter.SyncReport) ([]byte, error) {
	format := cmd.String("format")
	if cmd.Bool("json") {
		format = "json"
	}

	switch format {
	case "json":
		rendered, err := formatter.ToJSON(report, cmd.Bool("pretty"))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return append(rendered, '\n'), nil
	case "markdown", "md":
		return formatter.SyncToMarkdown(report), nil
	case "plain", "":
		return formatter.SyncToText(report), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}
