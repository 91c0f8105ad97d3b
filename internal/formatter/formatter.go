// package formatter renders sync reports and status tables in various formats (JSON, Markdown, plain text)
package formatter

import (
	"bytes"
	"fmt"
	"time"

	"github.com/desertthunder/likesync/internal/repositories"
	"github.com/desertthunder/likesync/internal/shared"
	"github.com/desertthunder/likesync/internal/tasks"
)

// SyncReport bundles the results of a sync pass for a single owner.
//
// Pull and Push may each be nil when only half the pipeline ran.
type SyncReport struct {
	Username string            `json:"username"`
	RanAt    time.Time         `json:"ran_at"`
	Pull     *tasks.PullResult `json:"pull,omitempty"`
	Push     *tasks.PushResult `json:"push,omitempty"`
}

// StatusReport describes an owner's catalog state by song counts.
type StatusReport struct {
	Username string                    `json:"username"`
	Counts   *repositories.StateCounts `json:"counts"`
}

// ToJSON renders a report as JSON, optionally indented.
func ToJSON(report any, pretty bool) ([]byte, error) {
	data, err := shared.MarshalJSON(report, pretty)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return data, nil
}

// SyncToMarkdown renders a sync report as a Markdown summary.
func SyncToMarkdown(report *SyncReport) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Sync report for %s\n\n", report.Username))
	if !report.RanAt.IsZero() {
		buf.WriteString(fmt.Sprintf("**Ran at**: %s\n\n", report.RanAt.Format(time.RFC3339)))
	}

	if report.Pull != nil {
		buf.WriteString("## Pull\n\n")
		buf.WriteString("| Metric | Count |\n")
		buf.WriteString("| --- | --- |\n")
		buf.WriteString(fmt.Sprintf("| Liked | %d |\n", report.Pull.Liked))
		buf.WriteString(fmt.Sprintf("| Music | %d |\n", report.Pull.Music))
		buf.WriteString(fmt.Sprintf("| Created | %d |\n", report.Pull.Created))
		buf.WriteString(fmt.Sprintf("| Stale | %d |\n", report.Pull.Stale))
		buf.WriteString(fmt.Sprintf("| Deleted | %d |\n", report.Pull.Deleted))
		buf.WriteString(fmt.Sprintf("| Flagged | %d |\n", report.Pull.Flagged))
		buf.WriteString(fmt.Sprintf("| Assigned | %d |\n", report.Pull.Assigned))
		buf.WriteString(fmt.Sprintf("| Playlists created | %d |\n", report.Pull.PlaylistsCreated))
		buf.WriteString("\n")
	}

	if report.Push != nil {
		buf.WriteString("## Push\n\n")
		buf.WriteString("| Metric | Count |\n")
		buf.WriteString("| --- | --- |\n")
		buf.WriteString(fmt.Sprintf("| Playlists created | %d |\n", report.Push.PlaylistsCreated))
		buf.WriteString(fmt.Sprintf("| Added | %d |\n", report.Push.Added))
		buf.WriteString(fmt.Sprintf("| Removed | %d |\n", report.Push.Removed))
		buf.WriteString(fmt.Sprintf("| Unpublished | %d |\n", report.Push.Unpublished))
		buf.WriteString(fmt.Sprintf("| Failed | %d |\n", report.Push.Failed))
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// SyncToText renders a sync report as plain text.
func SyncToText(report *SyncReport) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Sync report for %s\n", report.Username))

	if report.Pull != nil {
		buf.WriteString("\nPull:\n")
		buf.WriteString(fmt.Sprintf("  Liked: %d (music: %d)\n", report.Pull.Liked, report.Pull.Music))
		buf.WriteString(fmt.Sprintf("  Created: %d\n", report.Pull.Created))
		buf.WriteString(fmt.Sprintf("  Stale: %d (deleted: %d, flagged: %d)\n", report.Pull.Stale, report.Pull.Deleted, report.Pull.Flagged))
		buf.WriteString(fmt.Sprintf("  Assigned: %d (new playlists: %d)\n", report.Pull.Assigned, report.Pull.PlaylistsCreated))
	}

	if report.Push != nil {
		buf.WriteString("\nPush:\n")
		buf.WriteString(fmt.Sprintf("  Playlists created: %d\n", report.Push.PlaylistsCreated))
		buf.WriteString(fmt.Sprintf("  Added: %d\n", report.Push.Added))
		buf.WriteString(fmt.Sprintf("  Removed: %d\n", report.Push.Removed))
		buf.WriteString(fmt.Sprintf("  Unpublished: %d\n", report.Push.Unpublished))
		if report.Push.Failed > 0 {
			buf.WriteString(fmt.Sprintf("  Failed: %d\n", report.Push.Failed))
		}
	}

	return buf.Bytes()
}

// StatusToMarkdown renders a status report as a Markdown table.
func StatusToMarkdown(report *StatusReport) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Catalog status for %s\n\n", report.Username))
	buf.WriteString("| State | Count |\n")
	buf.WriteString("| --- | --- |\n")
	buf.WriteString(fmt.Sprintf("| Total | %d |\n", report.Counts.Total))
	buf.WriteString(fmt.Sprintf("| Synched | %d |\n", report.Counts.Synched))
	buf.WriteString(fmt.Sprintf("| Unsynched | %d |\n", report.Counts.Unsynched))
	buf.WriteString(fmt.Sprintf("| Pending removal | %d |\n", report.Counts.PendingRemoval))
	buf.WriteString(fmt.Sprintf("| Hidden | %d |\n", report.Counts.Hidden))
	buf.WriteString(fmt.Sprintf("| Unassigned | %d |\n", report.Counts.Unassigned))

	return buf.Bytes()
}

// StatusToText renders a status report as plain text.
func StatusToText(report *StatusReport) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Catalog status for %s\n", report.Username))
	buf.WriteString(fmt.Sprintf("  Total: %d\n", report.Counts.Total))
	buf.WriteString(fmt.Sprintf("  Synched: %d\n", report.Counts.Synched))
	buf.WriteString(fmt.Sprintf("  Unsynched: %d\n", report.Counts.Unsynched))
	buf.WriteString(fmt.Sprintf("  Pending removal: %d\n", report.Counts.PendingRemoval))
	buf.WriteString(fmt.Sprintf("  Hidden: %d\n", report.Counts.Hidden))
	buf.WriteString(fmt.Sprintf("  Unassigned: %d\n", report.Counts.Unassigned))

	return buf.Bytes()
}
