// Package scores holds the scoring pipeline: resolving flexible spreadsheet
// headers into canonical records, adapting records to and from the labeled
// grid the reviewer edits, and persisting identifier/score pairs under a
// path derived from reviewer metadata.
package scores

import (
	"fmt"
	"sort"
	"strconv"
)

// Display labels, in grid order.
const (
	LabelID     = "ID"
	LabelInput  = "Input"
	LabelOutput = "Output (markdown)"
	LabelScore  = "Score"
)

// Labels is the exact set of columns shown to the reviewer.
var Labels = []string{LabelID, LabelInput, LabelOutput, LabelScore}

// Record is one spreadsheet row in canonical form.
type Record struct {
	ID     string `json:"id"`
	Input  string `json:"input"`
	Output string `json:"output"`
	Score  string `json:"score"`
}

// Meta identifies who reviewed what. Together with the source filename it
// determines where scores are saved.
type Meta struct {
	Tester string `json:"tester"`
	User   string `json:"user"`
	Model  string `json:"model"`
}

// Dataset is the result of loading one file.
type Dataset struct {
	Records  []Record
	Filename string
	MinID    string
	MaxID    string
	// Merged counts rows whose score was restored from a prior save.
	Merged    int
	PriorPath string
}

const unknownID = "unknown"

// DefaultFilename names the output file when the upload carried no name.
func (d *Dataset) DefaultFilename() string {
	return fmt.Sprintf("%s--%s.xlsx", d.MinID, d.MaxID)
}

// Scored counts records with a nonblank score.
func Scored(records []Record) int {
	n := 0
	for _, r := range records {
		if r.Score != "" {
			n++
		}
	}
	return n
}

// Clone returns a copy of records that shares no backing array.
func Clone(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	return out
}

// idRange returns the smallest and largest identifier. Identifiers compare
// numerically when all of them parse as numbers, lexically otherwise.
func idRange(records []Record) (string, string) {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		if r.ID != "" {
			ids = append(ids, r.ID)
		}
	}
	if len(ids) == 0 {
		return unknownID, unknownID
	}

	nums := make([]float64, len(ids))
	numeric := true
	for i, id := range ids {
		n, err := strconv.ParseFloat(id, 64)
		if err != nil {
			numeric = false
			break
		}
		nums[i] = n
	}
	if numeric {
		lo, hi := 0, 0
		for i := range nums {
			if nums[i] < nums[lo] {
				lo = i
			}
			if nums[i] > nums[hi] {
				hi = i
			}
		}
		return ids[lo], ids[hi]
	}
	sort.Strings(ids)
	return ids[0], ids[len(ids)-1]
}
