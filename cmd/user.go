package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/repositories"
	"github.com/desertthunder/likesync/internal/shared"
	"github.com/urfave/cli/v3"
)

// UserAdd registers a new owner.
func (r *Runner) UserAdd(ctx context.Context, cmd *cli.Command) error {
	username := cmd.StringArg("username")
	email := cmd.String("email")

	if username == "" {
		return fmt.Errorf("%w: username", shared.ErrMissingArgument)
	}
	if email == "" {
		return fmt.Errorf("%w: --email", shared.ErrMissingArgument)
	}

	db, cleanup, err := r.openDB()
	if err != nil {
		return err
	}
	defer cleanup()

	users := repositories.NewUserRepository(db)
	user := models.NewUser(0, username, email)
	if err := users.Create(user); err != nil {
		return fmt.Errorf("failed to create owner: %w", err)
	}

	r.logger.Info("owner registered", "username", username, "id", user.ID())
	r.writePlain("✓ Registered %s\n", username)

	return nil
}

// userRow is the JSON shape for 'user list'.
type userRow struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email,omitempty"`
	Authorized bool   `json:"authorized"`
}

// UserList prints registered owners.
func (r *Runner) UserList(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	db, cleanup, err := r.openDB()
	if err != nil {
		return err
	}
	defer cleanup()

	users, err := repositories.NewUserRepository(db).List(map[string]any{})
	if err != nil {
		return fmt.Errorf("failed to list owners: %w", err)
	}

	if useJSON {
		rows := make([]userRow, len(users))
		for i, user := range users {
			rows[i] = userRow{
				ID:         user.ID(),
				Username:   user.Username(),
				Email:      user.Email(),
				Authorized: user.HasToken(),
			}
		}
		return r.writeJSON(rows, pretty)
	}

	r.writePlain("Found %d owners:\n\n", len(users))
	for i, user := range users {
		r.writePlain("%d. %s\n", i+1, user.Username())
		if user.Email() != "" {
			r.writePlain("   Email: %s\n", user.Email())
		}
		if user.HasToken() {
			r.writePlain("   Authorized: yes\n")
		} else {
			r.writePlain("   Authorized: no\n")
		}
	}

	return nil
}
