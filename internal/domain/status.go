// Package domain holds the core types of the content plan: plan rows,
// knowledge entries, generated posts, and their workflow statuses.
package domain

import "strings"

// Status is the workflow status of a plan row.
//
// Lifecycle within one run:
//
//	READY → RUNNING → PUBLISHED
//
// Rows are created externally in READY. A failed run leaves the row in
// RUNNING with the error noted (or back in READY when the revert policy is
// enabled); rows are never deleted by this service.
type Status string

const (
	// StatusReady marks a row waiting to be picked up.
	StatusReady Status = "READY"

	// StatusRunning marks the row claimed by the current run.
	StatusRunning Status = "RUNNING"

	// StatusPublished marks a row whose post was created in WordPress.
	StatusPublished Status = "PUBLISHED"
)

// Matches reports whether a raw cell value denotes this status, comparing
// case-insensitively after trimming.
func (s Status) Matches(cell string) bool {
	return strings.EqualFold(strings.TrimSpace(cell), string(s))
}
