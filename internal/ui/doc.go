// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a read-only status view of an owner's catalog:
//  1. [PlaylistListView] : Browse the owner's local playlists
//  2. [SongListView] : Inspect a playlist's songs with sync-state glyphs
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// All data comes from the local database via repositories; no remote calls are made.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
