package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/likesync/internal/repositories"
	"github.com/desertthunder/likesync/internal/shared"
	"github.com/desertthunder/likesync/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive read-only catalog browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	db, cleanup, err := r.openDB()
	if err != nil {
		return err
	}
	defer cleanup()

	user, err := r.lookupOwner(db, cmd.String("user"))
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/likesync-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(
		user,
		repositories.NewCatalogRepository(db),
		repositories.NewPlaylistRepository(db),
		repositories.NewSongRepository(db),
	)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
