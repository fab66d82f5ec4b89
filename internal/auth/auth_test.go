package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashToken(t *testing.T) {
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", HashToken("hello"))
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	tok, ok = BearerToken("bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	for _, bad := range []string{"", "Bearer ", "Basic abc", "Bear"} {
		_, ok := BearerToken(bad)
		assert.False(t, ok, bad)
	}
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches("secret", "secret"))
	assert.False(t, Matches("secret", "other"))
	assert.False(t, Matches("", ""))
}
