package scores

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeSegment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"alice", "alice"},
		{"  alice  ", "alice"},
		{"Nguyen Van  Danh", "Nguyen_Van_Danh"},
		{`a<b>c:d"e/f\g|h?i*j`, "a_b_c_d_e_f_g_h_i_j"},
		{"gpt-4o / mini: v2   ", "gpt-4o_mini_v2"},
		{"__x__", "x"},
		{"tab\tand\nnewline", "tab_and_newline"},
		{"report v2.xlsx", "report_v2.xlsx"},
		{"", "fallback"},
		{"   ", "fallback"},
		{"///", "fallback"},
		{".", "fallback"},
		{"..", "fallback"},
		{"../..", ".._.."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeSegment(tt.in, "fallback"), "input %q", tt.in)
	}
}

func TestSanitizeSegmentHasNoArtifacts(t *testing.T) {
	got := SanitizeSegment("team/a: reviewer   ", "x")
	assert.NotContains(t, got, "/")
	assert.NotContains(t, got, ":")
	assert.NotContains(t, got, " ")
	assert.NotContains(t, got, "__")
	assert.False(t, strings.HasSuffix(got, "_"))
	assert.Equal(t, "team_a_reviewer", got)
}

func TestSanitizeSegmentNormalizesUnicode(t *testing.T) {
	// the same name typed precomposed and with combining marks
	decomposed := "D\u0323o\u0302\u0303"
	composed := "\u1e0c\u1ed7"
	assert.Equal(t, composed, SanitizeSegment(decomposed, "x"))
	assert.Equal(t, SanitizeSegment(composed, "x"), SanitizeSegment(decomposed, "x"))
}

func TestOutputPath(t *testing.T) {
	meta := Meta{Tester: "Danh ", User: "user A", Model: "gpt:4o"}
	got := OutputPath("base", meta, "batch 1.xlsx")
	assert.Equal(t, filepath.Join("base", "Danh", "user_A", "gpt_4o", "batch_1.xlsx"), got)
}

func TestOutputPathDefaults(t *testing.T) {
	got := OutputPath("base", Meta{}, "")
	assert.Equal(t, filepath.Join("base", DefaultTester, DefaultUser, DefaultModel, DefaultFilename), got)
}

func TestOutputPathStaysUnderBase(t *testing.T) {
	meta := Meta{Tester: "..", User: "../../etc", Model: "/"}
	got := OutputPath("/srv/scores", meta, "../passwd.csv")
	rel, err := filepath.Rel("/srv/scores", got)
	assert.NoError(t, err)
	assert.False(t, strings.HasPrefix(rel, ".."), "escaped base: %s", got)
	assert.Len(t, strings.Split(filepath.ToSlash(rel), "/"), 4)
}

func TestMetaMissing(t *testing.T) {
	assert.Empty(t, Meta{Tester: "a", User: "b", Model: "c"}.Missing())
	assert.Equal(t, []string{"tester", "model"}, Meta{Tester: " ", User: "b"}.Missing())
}
