package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoresheet/internal/schemas"
)

func TestSessionStoreEvictsLeastRecentlyUsed(t *testing.T) {
	st := newSessionStore(2)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	st.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	a := st.create()
	b := st.create()
	assert.Equal(t, schemas.StateEmpty, a.state)

	_, ok := st.get(a.id)
	require.True(t, ok)

	c := st.create()
	assert.Equal(t, 2, st.len())

	_, ok = st.get(b.id)
	assert.False(t, ok, "b was least recently used")
	_, ok = st.get(a.id)
	assert.True(t, ok)
	_, ok = st.get(c.id)
	assert.True(t, ok)
}

func TestRenderMarkdown(t *testing.T) {
	assert.Equal(t, "", renderMarkdown(""))
	assert.Contains(t, renderMarkdown("**hi**"), "<strong>hi</strong>")

	out := renderMarkdown("<script>alert(1)</script>")
	assert.NotContains(t, out, "<script>")
}
