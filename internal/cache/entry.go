package cache

import "time"

// Slot statuses recorded in the index
const (
	StatusClean  = "clean"
	StatusFailed = "failed"
)

// Entry describes a finalized slot in the index
type Entry struct {
	// Key is the fingerprint string of the slot
	Key string `json:"key"`

	// Dir is the slot directory
	Dir string `json:"dir"`

	// Kind is "file" or "database"
	Kind string `json:"kind"`

	// Input is the file path or server/database the slot was built from
	Input string `json:"input"`

	// Status is StatusClean when no checks failed
	Status string `json:"status"`

	// Failures lists the failed check identifiers
	Failures []string `json:"failures,omitempty"`

	// Timestamp of the last finalization
	Timestamp time.Time `json:"timestamp"`
}
