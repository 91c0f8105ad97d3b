package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/likesync/internal/repositories"
	"github.com/desertthunder/likesync/internal/server"
	"github.com/desertthunder/likesync/internal/services"
	"github.com/desertthunder/likesync/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Auth performs the OAuth2 authorization flow for an owner and stores the
// resulting token on their row.
//
// Starts a local HTTP server, opens the browser for authorization, and
// exchanges the auth code for tokens.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	username := cmd.String("user")

	if r.config.Credentials.Google.ClientID == "" || r.config.Credentials.Google.ClientSecret == "" {
		return fmt.Errorf("%w: Google client_id and client_secret must be set in config.toml or .env", shared.ErrMissingCredentials)
	}

	db, cleanup, err := r.openDB()
	if err != nil {
		return err
	}
	defer cleanup()

	users := repositories.NewUserRepository(db)
	user, err := users.GetByUsername(username)
	if err != nil {
		return fmt.Errorf("failed to look up owner %q: %w", username, err)
	}

	svc, err := services.NewYouTubeService(map[string]string{
		"client_id":     r.config.Credentials.Google.ClientID,
		"client_secret": r.config.Credentials.Google.ClientSecret,
		"redirect_uri":  r.config.Credentials.Google.RedirectURI,
	}, r.config.Sync.RateLimit, r.config.Sync.PageSize)
	if err != nil {
		return fmt.Errorf("failed to create YouTube service: %w", err)
	}

	token, err := r.doOAuth(svc, "authorization")
	if err != nil {
		return err
	}

	user.SetToken(token.AccessToken, token.RefreshToken, token.Expiry)
	if err := users.Update(user); err != nil {
		return fmt.Errorf("failed to store tokens: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens stored for %s\n\n", username)
	r.writePlain("You can now use: likesync sync --user %s\n", username)

	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(svc *services.YouTubeService, prefix string) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := svc.GetAuthURL(state)
	oauthHandler := server.NewOAuthHandler(svc.GetOAuthConfig(), state)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth server for %s at %v", prefix, serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Google %s...\n", prefix)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}

	return result.Token, nil
}
