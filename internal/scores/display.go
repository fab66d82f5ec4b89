package scores

import "strings"

// Grid is the labeled table the reviewer sees and edits. Every row has one
// cell per header.
type Grid struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// RowEdit is one reviewer change. A blank Score leaves the record untouched;
// Clear erases the score and takes precedence over Score.
type RowEdit struct {
	ID    string `json:"id"`
	Score string `json:"score"`
	Clear bool   `json:"clear,omitempty"`
}

// EditStats summarizes an ApplyEdits call.
type EditStats struct {
	Updated int `json:"updated"`
	Cleared int `json:"cleared"`
	Unknown int `json:"unknown"`
}

func (r Record) field(label string) string {
	switch label {
	case LabelID:
		return r.ID
	case LabelInput:
		return r.Input
	case LabelOutput:
		return r.Output
	case LabelScore:
		return r.Score
	}
	return ""
}

// ToDisplay renders records as a grid with exactly the display labels.
func ToDisplay(records []Record) Grid {
	g := Grid{
		Headers: append([]string(nil), Labels...),
		Rows:    make([][]string, len(records)),
	}
	for i, r := range records {
		row := make([]string, len(Labels))
		for j, label := range Labels {
			row[j] = r.field(label)
		}
		g.Rows[i] = row
	}
	return g
}

// EditsFromGrid reads identifier/score pairs out of an edited grid. Header
// order is taken from the grid itself. A grid without ID or Score columns
// yields no edits.
func EditsFromGrid(g Grid) []RowEdit {
	idCol, scoreCol := -1, -1
	for i, h := range g.Headers {
		switch strings.TrimSpace(h) {
		case LabelID:
			idCol = i
		case LabelScore:
			scoreCol = i
		}
	}
	if idCol < 0 || scoreCol < 0 {
		return nil
	}
	edits := make([]RowEdit, 0, len(g.Rows))
	for _, row := range g.Rows {
		if idCol >= len(row) {
			continue
		}
		id := strings.TrimSpace(row[idCol])
		if id == "" {
			continue
		}
		var score string
		if scoreCol < len(row) {
			score = strings.TrimSpace(row[scoreCol])
		}
		edits = append(edits, RowEdit{ID: id, Score: score})
	}
	return edits
}

// ClearEdits turns a list of identifiers into explicit clear edits.
func ClearEdits(ids []string) []RowEdit {
	edits := make([]RowEdit, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			edits = append(edits, RowEdit{ID: id, Clear: true})
		}
	}
	return edits
}

// ApplyEdits returns a copy of records with edits applied by identifier.
// Edits are applied in order, so a later edit for the same identifier wins.
func ApplyEdits(records []Record, edits []RowEdit) ([]Record, EditStats) {
	out := Clone(records)
	byID := make(map[string][]int, len(out))
	for i, r := range out {
		byID[r.ID] = append(byID[r.ID], i)
	}

	var stats EditStats
	for _, e := range edits {
		rows, ok := byID[strings.TrimSpace(e.ID)]
		if !ok {
			stats.Unknown++
			continue
		}
		score := strings.TrimSpace(e.Score)
		for _, i := range rows {
			switch {
			case e.Clear:
				if out[i].Score != "" {
					stats.Cleared++
				}
				out[i].Score = ""
			case score != "":
				if out[i].Score != score {
					stats.Updated++
				}
				out[i].Score = score
			}
		}
	}
	return out, stats
}
