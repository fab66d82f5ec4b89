package scores

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"scoresheet/internal/logging"
	"scoresheet/internal/sheet"
)

// ErrNoRecords is returned when there is nothing to save.
var ErrNoRecords = errors.New("no data to save")

// SaveResult describes a completed save.
type SaveResult struct {
	Message  string `json:"message"`
	Path     string `json:"path"`
	Relative string `json:"relative"`
	Rows     int    `json:"rows"`
	Scored   int    `json:"scored"`
}

// Persister writes identifier/score pairs to disk.
type Persister struct {
	log *zap.Logger
}

func NewPersister(log *zap.Logger) *Persister {
	return &Persister{log: logging.OrNop(log)}
}

// Save writes the ID and Score columns of records to
// base/tester/user/model/filename, replacing any existing file. Intermediate
// directories are created. The write is atomic: on failure the previous file,
// if any, is left as it was.
func (p *Persister) Save(base string, meta Meta, filename string, records []Record) (*SaveResult, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	rel := RelativePath(meta, filename)
	path, err := filepath.Abs(filepath.Join(base, rel))
	if err != nil {
		return nil, fmt.Errorf("resolve output path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	table := &sheet.Table{
		Header: []string{LabelID, LabelScore},
		Rows:   make([][]string, len(records)),
	}
	for i, r := range records {
		table.Rows[i] = []string{r.ID, r.Score}
	}
	if err := sheet.Write(path, table); err != nil {
		p.log.Error("save failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	res := &SaveResult{
		Path:     path,
		Relative: filepath.ToSlash(rel),
		Rows:     len(records),
		Scored:   Scored(records),
	}
	res.Message = fmt.Sprintf("Saved %s (%d rows, ID + score only)", res.Relative, res.Rows)
	p.log.Info("saved scores",
		zap.String("path", path),
		zap.Int("rows", res.Rows),
		zap.Int("scored", res.Scored),
	)
	return res, nil
}
