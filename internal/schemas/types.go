package schemas

import (
	"time"

	"scoresheet/internal/db"
	"scoresheet/internal/scores"
)

// SessionState is the UI shell state of one reviewer session.
type SessionState string

const (
	StateEmpty  SessionState = "empty"
	StateLoaded SessionState = "loaded"
	StateDirty  SessionState = "dirty"
	StateSaved  SessionState = "saved"
)

// SessionOut is returned by upload, edit and get.
type SessionOut struct {
	SessionID  string       `json:"session_id"`
	State      SessionState `json:"state"`
	Status     string       `json:"status"`
	Meta       scores.Meta  `json:"meta"`
	Filename   string       `json:"filename"`
	MinID      string       `json:"min_id"`
	MaxID      string       `json:"max_id"`
	Merged     int          `json:"merged"`
	OutputPath string       `json:"output_path"`
	Grid       scores.Grid  `json:"grid"`
	// OutputHTML holds the rendered markdown of each row's output, in row order.
	OutputHTML  []string  `json:"output_html"`
	DownloadURL string    `json:"download_url,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EditRequest carries the reviewer's grid plus identifiers whose score
// should be erased. A blank score in the grid never erases.
type EditRequest struct {
	Grid  scores.Grid `json:"grid"`
	Clear []string    `json:"clear,omitempty"`
}

type SaveOut struct {
	SessionOut
	Saved  *scores.SaveResult `json:"saved"`
	Edits  scores.EditStats   `json:"edits"`
	Mirror string             `json:"mirror,omitempty"`
}

type EditOut struct {
	SessionOut
	Edits scores.EditStats `json:"edits"`
}

type HistoryOut struct {
	Saves []db.SaveEntry `json:"saves"`
}

type ErrorOut struct {
	Error string `json:"error"`
	// Missing lists absent columns or metadata fields on validation errors.
	Missing []string `json:"missing,omitempty"`
}
