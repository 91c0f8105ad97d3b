package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/repositories"
	"github.com/desertthunder/likesync/internal/services"
	"github.com/desertthunder/likesync/internal/shared"
	"github.com/desertthunder/likesync/internal/tasks"
)

// ServiceFactory builds an authenticated remote client for one owner,
// typically from the tokens stored on the user row.
type ServiceFactory func(ctx context.Context, user *models.User) (services.Service, error)

// SyncHandler exposes the pull and push pipelines over HTTP. Pipelines run
// synchronously within the request and the result summary is returned as JSON.
type SyncHandler struct {
	engine  *tasks.Engine
	users   *repositories.UserRepository
	songs   *repositories.SongRepository
	factory ServiceFactory
	logger  *log.Logger
}

// NewSyncHandler creates a SyncHandler over the given engine and repositories.
func NewSyncHandler(engine *tasks.Engine, users *repositories.UserRepository, songs *repositories.SongRepository, factory ServiceFactory, logger *log.Logger) *SyncHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &SyncHandler{
		engine:  engine,
		users:   users,
		songs:   songs,
		factory: factory,
		logger:  logger,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *SyncHandler) Routes() []string {
	return []string{
		"POST /users/{username}/pull",
		"POST /users/{username}/push",
		"POST /users/{username}/sync",
		"GET /users/{username}/status",
	}
}

// pullResponse is the JSON shape of a pull pipeline summary.
type pullResponse struct {
	Liked            int   `json:"liked"`
	Music            int   `json:"music"`
	Created          int   `json:"created"`
	Stale            int   `json:"stale"`
	Deleted          int64 `json:"deleted"`
	Flagged          int64 `json:"flagged"`
	Assigned         int   `json:"assigned"`
	PlaylistsCreated int   `json:"playlists_created"`
}

// pushResponse is the JSON shape of a push pipeline summary.
type pushResponse struct {
	PlaylistsCreated int `json:"playlists_created"`
	Added            int `json:"added"`
	Removed          int `json:"removed"`
	Unpublished      int `json:"unpublished"`
	Failed           int `json:"failed"`
}

// statusResponse summarizes the owner's catalog by lifecycle state.
type statusResponse struct {
	Username       string `json:"username"`
	Total          int    `json:"total"`
	Synched        int    `json:"synched"`
	Unsynched      int    `json:"unsynched"`
	PendingRemoval int    `json:"pending_removal"`
	Hidden         int    `json:"hidden"`
	Unassigned     int    `json:"unassigned"`
}

func (h *SyncHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByUsername(r.PathValue("username"))
	if err != nil {
		if errors.Is(err, shared.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	switch {
	case r.Method == http.MethodGet:
		h.status(w, user)
	default:
		h.runPipeline(w, r, user)
	}
}

// runPipeline dispatches pull, push or sync for the owner.
func (h *SyncHandler) runPipeline(w http.ResponseWriter, r *http.Request, user *models.User) {
	svc, err := h.factory(r.Context(), user)
	if err != nil {
		h.logger.Error("failed to build service", "user", user.Username(), "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	var payload any
	switch {
	case pathEndsWith(r, "/pull"):
		result, err := h.engine.Pull(r.Context(), user, svc, nil)
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		payload = newPullResponse(result)

	case pathEndsWith(r, "/push"):
		result, err := h.engine.Push(r.Context(), user, svc, nil)
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		payload = newPushResponse(result)

	case pathEndsWith(r, "/sync"):
		pull, push, err := h.engine.Sync(r.Context(), user, svc, nil)
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		payload = map[string]any{
			"pull": newPullResponse(pull),
			"push": newPushResponse(push),
		}

	default:
		writeError(w, http.StatusNotFound, "unknown pipeline")
		return
	}

	writeJSON(w, http.StatusOK, payload)
}

// status returns the owner's song counts by state.
func (h *SyncHandler) status(w http.ResponseWriter, user *models.User) {
	counts, err := h.songs.CountByState(user.ID())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Username:       user.Username(),
		Total:          counts.Total,
		Synched:        counts.Synched,
		Unsynched:      counts.Unsynched,
		PendingRemoval: counts.PendingRemoval,
		Hidden:         counts.Hidden,
		Unassigned:     counts.Unassigned,
	})
}

func newPullResponse(result *tasks.PullResult) pullResponse {
	return pullResponse{
		Liked:            result.Liked,
		Music:            result.Music,
		Created:          result.Created,
		Stale:            result.Stale,
		Deleted:          result.Deleted,
		Flagged:          result.Flagged,
		Assigned:         result.Assigned,
		PlaylistsCreated: result.PlaylistsCreated,
	}
}

func newPushResponse(result *tasks.PushResult) pushResponse {
	return pushResponse{
		PlaylistsCreated: result.PlaylistsCreated,
		Added:            result.Added,
		Removed:          result.Removed,
		Unpublished:      result.Unpublished,
		Failed:           result.Failed,
	}
}

func pathEndsWith(r *http.Request, suffix string) bool {
	path := r.URL.Path
	return len(path) >= len(suffix) && path[len(path)-len(suffix):] == suffix
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
