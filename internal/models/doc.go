// Package models contains the persistent entities of the sync pipeline.
//
// A User owns one Catalog, the per-owner anchor created on the first pull.
// Songs mirror the owner's liked videos; each belongs to the catalog and is
// assigned to at most one RemotePlaylist by the allocator. RemotePlaylists
// are local rows first and become remote containers once the publisher
// creates them on the platform.
//
// Entities follow a uniform shape: unexported fields, a constructor, getters
// and SetX mutators, and a Validate method enforcing required fields.
package models
