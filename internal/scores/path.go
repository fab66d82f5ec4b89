package scores

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Placeholders for blank path segments.
const (
	DefaultTester   = "tester"
	DefaultUser     = "user"
	DefaultModel    = "model"
	DefaultFilename = "scores.xlsx"
)

const unsafeChars = `<>:"/\|?*`

// SanitizeSegment makes s safe to use as a single path component. Unsafe
// characters, control characters and whitespace runs become one underscore,
// repeated underscores collapse and leading or trailing ones are dropped.
// An empty result, "." or ".." yields fallback.
func SanitizeSegment(s, fallback string) string {
	s = norm.NFC.String(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range s {
		if r == '_' || unicode.IsSpace(r) || unicode.IsControl(r) || strings.ContainsRune(unsafeChars, r) {
			pending = true
			continue
		}
		if pending && b.Len() > 0 {
			b.WriteByte('_')
		}
		pending = false
		b.WriteRune(r)
	}

	out := b.String()
	if out == "" || out == "." || out == ".." {
		return fallback
	}
	return out
}

// Segments returns the sanitized tester, user and model folder names.
func (m Meta) Segments() (tester, user, model string) {
	return SanitizeSegment(m.Tester, DefaultTester),
		SanitizeSegment(m.User, DefaultUser),
		SanitizeSegment(m.Model, DefaultModel)
}

// Missing lists the metadata fields that are blank.
func (m Meta) Missing() []string {
	var out []string
	if strings.TrimSpace(m.Tester) == "" {
		out = append(out, "tester")
	}
	if strings.TrimSpace(m.User) == "" {
		out = append(out, "user")
	}
	if strings.TrimSpace(m.Model) == "" {
		out = append(out, "model")
	}
	return out
}

// RelativePath is the output location below the base directory.
func RelativePath(meta Meta, filename string) string {
	tester, user, model := meta.Segments()
	return filepath.Join(tester, user, model, SanitizeSegment(filename, DefaultFilename))
}

// OutputPath is base/tester/user/model/filename, each segment sanitized.
func OutputPath(base string, meta Meta, filename string) string {
	return filepath.Join(base, RelativePath(meta, filename))
}
