package models

import "time"

// HistoryEntry is one immutable record in an entity's audit trail.
// Entries are never edited or removed once appended; corrections are
// made by appending a new entry.
type HistoryEntry struct {
	Label     string    `json:"label"`
	Note      string    `json:"note,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Common history labels shared by objects and gaps.
const (
	HistoryCreated    = "Created"
	HistoryUpdated    = "Updated"
	HistoryTriaged    = "Triaged"
	HistoryEnriched   = "Enriched"
	HistoryPromoted   = "Promoted"
	HistoryReopened   = "Reopened"
	HistoryStatusSet  = "Status"
	HistoryHealthSet  = "Health"
	HistoryClassified = "Classification"
	HistoryOwnership  = "Ownership"
)

// AppendHistory returns a new slice with the entry appended. The input
// slice is never mutated, which keeps snapshot transitions pure even
// when histories are shared between snapshot copies.
func AppendHistory(history []HistoryEntry, entry HistoryEntry) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(history)+1)
	out = append(out, history...)
	out = append(out, entry)
	return out
}

// NewHistoryEntry creates a history entry stamped with the given time.
func NewHistoryEntry(label, note string, at time.Time) HistoryEntry {
	return HistoryEntry{Label: label, Note: note, Timestamp: at}
}
