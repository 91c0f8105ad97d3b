package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/likesync/internal/repositories"
	"github.com/desertthunder/likesync/internal/server"
	"github.com/desertthunder/likesync/internal/shared"
	"github.com/desertthunder/likesync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Serve starts the HTTP trigger surface.
//
// Blocks until the listener fails or the context is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	db, cleanup, err := r.openDB()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	engine := tasks.NewEngine(db, r.logger)
	users := repositories.NewUserRepository(db)
	songs := repositories.NewSongRepository(db)

	handler := server.NewSyncHandler(engine, users, songs, r.serviceFor, r.logger)

	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(r.logger))
	router.Handler(handler)

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Info("listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		r.logger.Info("shutting down")
		return httpServer.Shutdown(context.Background())
	}
}
