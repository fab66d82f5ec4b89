package scores

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"scoresheet/internal/config"
	"scoresheet/internal/logging"
	"scoresheet/internal/sheet"
)

// Loader turns uploaded spreadsheets into records.
type Loader struct {
	aliases config.Columns
	log     *zap.Logger
}

// LoadOptions carries the context needed to find previously saved scores.
// An empty BaseDir skips the merge.
type LoadOptions struct {
	Meta    Meta
	BaseDir string
}

func NewLoader(aliases config.Columns, log *zap.Logger) *Loader {
	return &Loader{aliases: aliases, log: logging.OrNop(log)}
}

// Load reads the table at path. name is the original filename, used for
// format detection and for the output path. Nothing is returned unless every
// required column resolves.
func (l *Loader) Load(path, name string, opts LoadOptions) (*Dataset, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) {
		name = ""
	}
	formatName := name
	if formatName == "" {
		formatName = path
	}

	table, err := sheet.Read(path, formatName)
	if err != nil {
		return nil, err
	}
	cols, err := ResolveColumns(table.Header, l.aliases)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(table.Rows))
	for _, row := range table.Rows {
		records = append(records, Record{
			ID:     strings.TrimSpace(sheet.Cell(row, cols.ID)),
			Input:  sheet.Cell(row, cols.Input),
			Output: sheet.Cell(row, cols.Output),
			Score:  strings.TrimSpace(sheet.Cell(row, cols.Score)),
		})
	}

	ds := &Dataset{Records: records, Filename: name}
	ds.MinID, ds.MaxID = idRange(records)
	if ds.Filename == "" {
		ds.Filename = ds.DefaultFilename()
	}

	if opts.BaseDir != "" {
		prior := OutputPath(opts.BaseDir, opts.Meta, ds.Filename)
		merged, err := l.mergeSaved(prior, ds.Records)
		if err != nil {
			return nil, err
		}
		if merged >= 0 {
			ds.Merged = merged
			ds.PriorPath = prior
		}
	}

	l.log.Info("loaded spreadsheet",
		zap.String("file", ds.Filename),
		zap.Int("rows", len(ds.Records)),
		zap.Int("merged", ds.Merged),
		zap.String("min_id", ds.MinID),
		zap.String("max_id", ds.MaxID),
	)
	return ds, nil
}

// mergeSaved restores scores from a previous save at path into records, by
// identifier. A nonblank saved score replaces the loaded one; rows without a
// saved score are left alone. It returns the number of rows restored, or -1
// when no saved file exists.
func (l *Loader) mergeSaved(path string, records []Record) (int, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return -1, nil
		}
		return 0, fmt.Errorf("stat saved scores: %w", err)
	}
	table, err := sheet.Read(path, path)
	if err != nil {
		return 0, fmt.Errorf("saved scores: %w", err)
	}
	idCol, scoreCol, err := resolveSaved(table.Header, l.aliases)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	if scoreCol < 0 {
		l.log.Warn("saved file has no score column", zap.String("path", path))
		return 0, nil
	}

	saved := make(map[string]string, len(table.Rows))
	for _, row := range table.Rows {
		id := strings.TrimSpace(sheet.Cell(row, idCol))
		score := strings.TrimSpace(sheet.Cell(row, scoreCol))
		if id != "" && score != "" {
			saved[id] = score
		}
	}

	merged := 0
	for i := range records {
		if score, ok := saved[records[i].ID]; ok {
			records[i].Score = score
			merged++
		}
	}
	l.log.Debug("merged saved scores", zap.String("path", path), zap.Int("merged", merged))
	return merged, nil
}
