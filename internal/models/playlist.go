package models

import (
	"fmt"
	"time"
)

// RemotePlaylist represents one playlist container on the remote platform,
// or a pending-creation placeholder when not yet synched.
//
// Titles are globally unique and derived from the owner's username plus a
// per-catalog sequence number.
type RemotePlaylist struct {
	id             string
	sequence       int
	catalogID      string
	title          string
	thirdPartyID   string // empty until created remotely
	thirdPartyEtag string
	isSynched      bool
	numSongs       int // annotation from grouped count queries, not persisted
	createdAt      time.Time
	updatedAt      time.Time
}

// NewRemotePlaylist creates an unsynched playlist placeholder for a catalog.
func NewRemotePlaylist(sequence int, catalogID, title string) *RemotePlaylist {
	now := time.Now()
	return &RemotePlaylist{
		sequence:  sequence,
		catalogID: catalogID,
		title:     title,
		createdAt: now,
		updatedAt: now,
	}
}

// PlaylistTitle derives the globally unique playlist title for an owner's
// n-th playlist (1-based).
func PlaylistTitle(username string, n int) string {
	return fmt.Sprintf("%s's shared - %d", username, n)
}

func (p *RemotePlaylist) ID() string             { return p.id }
func (p *RemotePlaylist) Sequence() int          { return p.sequence }
func (p *RemotePlaylist) CatalogID() string      { return p.catalogID }
func (p *RemotePlaylist) Title() string          { return p.title }
func (p *RemotePlaylist) ThirdPartyID() string   { return p.thirdPartyID }
func (p *RemotePlaylist) ThirdPartyEtag() string { return p.thirdPartyEtag }
func (p *RemotePlaylist) IsSynched() bool        { return p.isSynched }
func (p *RemotePlaylist) NumSongs() int          { return p.numSongs }
func (p *RemotePlaylist) CreatedAt() time.Time   { return p.createdAt }
func (p *RemotePlaylist) UpdatedAt() time.Time   { return p.updatedAt }

func (p *RemotePlaylist) SetID(id string)          { p.id = id }
func (p *RemotePlaylist) SetSequence(n int)        { p.sequence = n }
func (p *RemotePlaylist) SetNumSongs(n int)        { p.numSongs = n }
func (p *RemotePlaylist) SetCreatedAt(t time.Time) { p.createdAt = t }
func (p *RemotePlaylist) SetUpdatedAt(t time.Time) { p.updatedAt = t }

// SetRemote records the identifiers returned by the remote create call and
// marks the playlist synched.
func (p *RemotePlaylist) SetRemote(thirdPartyID, etag string) {
	p.thirdPartyID = thirdPartyID
	p.thirdPartyEtag = etag
	p.isSynched = true
}

// Validate checks that required playlist fields are set.
func (p *RemotePlaylist) Validate() error {
	if p.catalogID == "" {
		return fmt.Errorf("catalog id is required")
	}
	if p.title == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}
