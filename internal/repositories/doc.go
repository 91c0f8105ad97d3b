// Package repositories implements sqlite persistence for users, catalogs,
// songs and remote playlists.
//
// Statement-level atomicity is the contract: bulk creates and updates run in
// a single transaction, but callers compose multi-step pipelines without an
// enclosing transaction, relying on idempotent re-runs to converge.
package repositories
