package scores

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"scoresheet/internal/config"
	"scoresheet/internal/sheet"
)

func writeTable(t *testing.T, dir, name string, header []string, rows ...[]string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, sheet.Write(path, &sheet.Table{Header: header, Rows: rows}))
	return path
}

func newTestLoader() *Loader {
	return NewLoader(config.Default().Columns, nil)
}

func scoresOf(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Score
	}
	return out
}
