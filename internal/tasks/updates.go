package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchLiked Phase = iota
	Reconcile
	Allocate
	CreatePlaylists
	AddSongs
	RemoveSongs
	UnpublishSongs
)

func (p Phase) String() string {
	switch p {
	case FetchLiked:
		return "fetch_liked"
	case Reconcile:
		return "reconcile"
	case Allocate:
		return "allocate"
	case CreatePlaylists:
		return "create_playlists"
	case AddSongs:
		return "add_songs"
	case RemoveSongs:
		return "remove_songs"
	case UnpublishSongs:
		return "unpublish_songs"
	default:
		return ""
	}
}

func fetchLikedUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLiked,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching liked videos from %s...", name),
	}
}

func reconcileUpdate(created, stale int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Reconcile,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Reconciled liked feed: %d new, %d stale", created, stale),
	}
}

func allocateUpdate(assigned, playlists int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Allocate,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Assigned %d songs (%d new playlists)", assigned, playlists),
	}
}

func createPlaylistUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Creating playlist: %s", step, total, title),
	}
}

func addSongUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Adding: %s", step, total, title),
	}
}

func removeSongUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RemoveSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Removing: %s", step, total, title),
	}
}

func unpublishSongUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UnpublishSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Unpublishing: %s", step, total, title),
	}
}
