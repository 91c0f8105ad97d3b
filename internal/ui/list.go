package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/likesync/internal/models"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = songItem{}
)

// playlistItem wraps [models.RemotePlaylist] to implement [list.Item].
type playlistItem struct {
	playlist *models.RemotePlaylist
}

func (i playlistItem) FilterValue() string { return i.playlist.Title() }
func (i playlistItem) Title() string       { return i.playlist.Title() }
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d songs", i.playlist.NumSongs())
	if i.playlist.IsSynched() {
		return fmt.Sprintf("%s • published", desc)
	}
	return fmt.Sprintf("%s • local only", desc)
}

// songItem wraps [models.Song] to implement [list.Item].
type songItem struct {
	song *models.Song
}

func (i songItem) FilterValue() string { return i.song.Title() }

func (i songItem) Title() string {
	return fmt.Sprintf("%s %s", songGlyph(i.song), i.song.Title())
}

func (i songItem) Description() string {
	switch {
	case i.song.ShouldNotExist():
		return "pending removal"
	case i.song.ShouldNotBePublished():
		return "hidden"
	case i.song.IsSynched():
		return "synched"
	default:
		return "not yet published"
	}
}

// songGlyph marks a song's sync state in list rows.
func songGlyph(song *models.Song) string {
	switch {
	case song.ShouldNotExist():
		return "✗"
	case song.ShouldNotBePublished():
		return "⊘"
	case song.IsSynched():
		return "✓"
	default:
		return "○"
	}
}
