package models

import (
	"fmt"
	"time"
)

// User represents an owner whose liked videos are mirrored locally.
//
// OAuth tokens for the remote platform are stored on the user row; a user
// without an access token cannot acquire a remote session.
type User struct {
	id           string
	sequence     int
	username     string
	email        string
	accessToken  string
	refreshToken string
	tokenExpiry  time.Time
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// NewUser creates a new User with the given sequence, username and email.
func NewUser(sequence int, username, email string) *User {
	now := time.Now()
	return &User{
		sequence:  sequence,
		username:  username,
		email:     email,
		createdAt: now,
		updatedAt: now,
	}
}

func (u *User) ID() string            { return u.id }
func (u *User) Sequence() int         { return u.sequence }
func (u *User) Username() string      { return u.username }
func (u *User) Email() string         { return u.email }
func (u *User) AccessToken() string   { return u.accessToken }
func (u *User) RefreshToken() string  { return u.refreshToken }
func (u *User) TokenExpiry() time.Time { return u.tokenExpiry }
func (u *User) CreatedAt() time.Time  { return u.createdAt }
func (u *User) UpdatedAt() time.Time  { return u.updatedAt }
func (u *User) DeletedAt() *time.Time { return u.deletedAt }

func (u *User) SetID(id string)              { u.id = id }
func (u *User) SetEmail(email string)        { u.email = email }
func (u *User) SetUpdatedAt(t time.Time)     { u.updatedAt = t }
func (u *User) SetDeletedAt(t *time.Time)    { u.deletedAt = t }

// SetToken stores the OAuth token triple used for remote session acquisition.
func (u *User) SetToken(access, refresh string, expiry time.Time) {
	u.accessToken = access
	u.refreshToken = refresh
	u.tokenExpiry = expiry
}

// HasToken reports whether the user has stored remote credentials.
func (u *User) HasToken() bool {
	return u.accessToken != ""
}

// Validate checks that required user fields are set.
func (u *User) Validate() error {
	if u.username == "" {
		return fmt.Errorf("username is required")
	}
	if u.email == "" {
		return fmt.Errorf("email is required")
	}
	return nil
}
