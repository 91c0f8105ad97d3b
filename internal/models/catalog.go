package models

import (
	"fmt"
	"time"
)

// Catalog is the per-owner anchor grouping songs and remote playlists.
//
// Created lazily on an owner's first pull and never deleted. The
// shouldUpdate flag marks owners that opted in to scheduled syncs.
type Catalog struct {
	id           string
	userID       string
	shouldUpdate bool
	createdAt    time.Time
	updatedAt    time.Time
}

// NewCatalog creates a catalog for the given owner, opted in by default.
func NewCatalog(userID string) *Catalog {
	now := time.Now()
	return &Catalog{
		userID:       userID,
		shouldUpdate: true,
		createdAt:    now,
		updatedAt:    now,
	}
}

func (c *Catalog) ID() string           { return c.id }
func (c *Catalog) UserID() string       { return c.userID }
func (c *Catalog) ShouldUpdate() bool   { return c.shouldUpdate }
func (c *Catalog) CreatedAt() time.Time { return c.createdAt }
func (c *Catalog) UpdatedAt() time.Time { return c.updatedAt }

func (c *Catalog) SetID(id string)          { c.id = id }
func (c *Catalog) SetShouldUpdate(v bool)   { c.shouldUpdate = v }
func (c *Catalog) SetUpdatedAt(t time.Time) { c.updatedAt = t }

// Validate checks that required catalog fields are set.
func (c *Catalog) Validate() error {
	if c.userID == "" {
		return fmt.Errorf("user id is required")
	}
	return nil
}
