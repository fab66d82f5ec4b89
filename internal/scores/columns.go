package scores

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"

	"scoresheet/internal/config"
)

// Columns holds the header index of each canonical column; -1 when absent.
type Columns struct {
	ID     int
	Input  int
	Output int
	Score  int
}

// MissingColumnsError reports required columns that no header matched.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.Missing, ", ")
}

// headerIndex maps case-folded header text to its first position.
type headerIndex map[string]int

func newHeaderIndex(header []string) headerIndex {
	fold := cases.Fold()
	idx := make(headerIndex, len(header))
	for i, h := range header {
		key := fold.String(strings.TrimSpace(h))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

// find returns the position of the first alias present, or -1.
func (h headerIndex) find(aliases []string) int {
	fold := cases.Fold()
	for _, name := range aliases {
		if i, ok := h[fold.String(strings.TrimSpace(name))]; ok {
			return i
		}
	}
	return -1
}

// ResolveColumns maps a header row onto canonical columns. For each column
// the configured aliases are tried in order and the first one present in the
// header (compared case-insensitively) wins. Score is optional.
func ResolveColumns(header []string, aliases config.Columns) (Columns, error) {
	h := newHeaderIndex(header)
	cols := Columns{
		ID:     h.find(aliases.ID),
		Input:  h.find(aliases.Input),
		Output: h.find(aliases.Output),
		Score:  h.find(aliases.Score),
	}
	var missing []string
	if cols.ID < 0 {
		missing = append(missing, "ID")
	}
	if cols.Input < 0 {
		missing = append(missing, "input")
	}
	if cols.Output < 0 {
		missing = append(missing, "output")
	}
	if len(missing) > 0 {
		return cols, &MissingColumnsError{Missing: missing}
	}
	return cols, nil
}

var errSavedNoID = errors.New("saved scores have no ID column")

// resolveSaved finds the identifier and score columns of a previously saved
// output file. Saved files carry the display labels, but files written by
// older versions of the tool may use any configured alias.
func resolveSaved(header []string, aliases config.Columns) (id, score int, err error) {
	h := newHeaderIndex(header)
	id = h.find(append([]string{LabelID}, aliases.ID...))
	if id < 0 {
		return -1, -1, errSavedNoID
	}
	score = h.find(append([]string{LabelScore}, aliases.Score...))
	return id, score, nil
}
