package models

import (
	"fmt"
	"time"
)

// Song represents one liked video mirrored locally.
//
// (userID, thirdPartyID) is unique per owner. The three state flags encode
// the song's position in the publish lifecycle:
//
//   - isSynched: the song has been pushed into a remote playlist
//   - shouldNotExist: no longer liked remotely but already published, so the
//     remote membership must be removed before the row is deleted
//   - shouldNotBePublished: hidden by the owner without being unliked
type Song struct {
	id                   string
	userID               string
	catalogID            string
	remotePlaylistID     string // empty until the allocator assigns a slot
	title                string
	description          string
	imageURL             string
	thirdPartyID         string
	thirdPartyEtag       string
	thirdPartyItemID     string // remote playlist membership id, set on publish
	isSynched            bool
	shouldNotExist       bool
	shouldNotBePublished bool
	createdAt            time.Time
	updatedAt            time.Time
}

// NewSong creates a song from a remote liked item, attached to the owner's catalog.
func NewSong(userID, catalogID, title, description, imageURL, thirdPartyID, thirdPartyEtag string) *Song {
	now := time.Now()
	return &Song{
		userID:         userID,
		catalogID:      catalogID,
		title:          title,
		description:    description,
		imageURL:       imageURL,
		thirdPartyID:   thirdPartyID,
		thirdPartyEtag: thirdPartyEtag,
		createdAt:      now,
		updatedAt:      now,
	}
}

func (s *Song) ID() string                 { return s.id }
func (s *Song) UserID() string             { return s.userID }
func (s *Song) CatalogID() string          { return s.catalogID }
func (s *Song) RemotePlaylistID() string   { return s.remotePlaylistID }
func (s *Song) Title() string              { return s.title }
func (s *Song) Description() string        { return s.description }
func (s *Song) ImageURL() string           { return s.imageURL }
func (s *Song) ThirdPartyID() string       { return s.thirdPartyID }
func (s *Song) ThirdPartyEtag() string     { return s.thirdPartyEtag }
func (s *Song) ThirdPartyItemID() string   { return s.thirdPartyItemID }
func (s *Song) IsSynched() bool            { return s.isSynched }
func (s *Song) ShouldNotExist() bool       { return s.shouldNotExist }
func (s *Song) ShouldNotBePublished() bool { return s.shouldNotBePublished }
func (s *Song) CreatedAt() time.Time       { return s.createdAt }
func (s *Song) UpdatedAt() time.Time       { return s.updatedAt }

func (s *Song) SetID(id string)                 { s.id = id }
func (s *Song) SetRemotePlaylistID(id string)   { s.remotePlaylistID = id }
func (s *Song) SetThirdPartyItemID(id string)   { s.thirdPartyItemID = id }
func (s *Song) SetSynched(v bool)               { s.isSynched = v }
func (s *Song) SetShouldNotExist(v bool)        { s.shouldNotExist = v }
func (s *Song) SetShouldNotBePublished(v bool)  { s.shouldNotBePublished = v }
func (s *Song) SetCreatedAt(t time.Time)        { s.createdAt = t }
func (s *Song) SetUpdatedAt(t time.Time)        { s.updatedAt = t }

// Eligible reports whether the song is a candidate for playlist allocation:
// unassigned, not pending removal, not hidden.
func (s *Song) Eligible() bool {
	return s.remotePlaylistID == "" && !s.shouldNotExist && !s.shouldNotBePublished
}

// Validate checks that required song fields are set.
func (s *Song) Validate() error {
	if s.userID == "" {
		return fmt.Errorf("user id is required")
	}
	if s.thirdPartyID == "" {
		return fmt.Errorf("third party id is required")
	}
	if s.title == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}
