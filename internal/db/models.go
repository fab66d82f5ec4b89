package db

import "time"

// SaveEntry records one completed save.
type SaveEntry struct {
	ID          string    `db:"id" json:"id"`
	SessionID   string    `db:"session_id" json:"session_id"`
	Tester      string    `db:"tester" json:"tester"`
	User        string    `db:"user_name" json:"user"`
	Model       string    `db:"model" json:"model"`
	Filename    string    `db:"filename" json:"filename"`
	Path        string    `db:"path" json:"path"`
	RowCount    int64     `db:"row_count" json:"row_count"`
	ScoredCount int64     `db:"scored_count" json:"scored_count"`
	ObjectRef   string    `db:"object_ref" json:"object_ref,omitempty"`
	SavedAt     time.Time `db:"saved_at" json:"saved_at"`
}
