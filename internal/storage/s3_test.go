package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcfg "scoresheet/internal/config"
)

func TestObjectKey(t *testing.T) {
	rel := filepath.Join("alexk", "userA", "m1", "batch.xlsx")
	assert.Equal(t, "scores/alexk/userA/m1/batch.xlsx", ObjectKey("scores", rel))
	assert.Equal(t, "scores/alexk/userA/m1/batch.xlsx", ObjectKey("/scores/", rel))
	assert.Equal(t, "alexk/userA/m1/batch.xlsx", ObjectKey("", rel))
}

func TestParseRef(t *testing.T) {
	bucket, key, err := ParseRef("s3://reviews/scores/a/b.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "reviews", bucket)
	assert.Equal(t, "scores/a/b.xlsx", key)

	for _, bad := range []string{"reviews/a", "s3://reviews", "s3://reviews/", "s3:///key"} {
		_, _, err := ParseRef(bad)
		assert.Error(t, err, bad)
	}
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(context.Background(), appcfg.Mirror{}, nil)
	require.Error(t, err)
}

func TestRefRoundTrip(t *testing.T) {
	c := &Client{bucket: "reviews"}
	bucket, key, err := ParseRef(c.Ref("scores/x.csv"))
	require.NoError(t, err)
	assert.Equal(t, "reviews", bucket)
	assert.Equal(t, "scores/x.csv", key)
}
