package caching

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	c, err := NewCache(t.TempDir(), time.Hour)
	require.NoError(t, err)

	key := Key("body", "config")
	_, err = c.Get(key)
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(key, []byte("report")))
	got, err := c.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("report"), got)
	assert.Equal(t, 1, c.Len())
}

func TestCache_FileTierSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	first, err := NewCache(dir, time.Hour)
	require.NoError(t, err)
	require.NoError(t, first.Set("k", []byte("v")))

	second, err := NewCache(dir, time.Hour)
	require.NoError(t, err)
	got, err := second.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestCache_ExpiredFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old"), []byte("stale"), 0644))
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old"), past, past))

	c, err := NewCache(dir, time.Hour)
	require.NoError(t, err)
	_, err = c.Get("old")
	assert.ErrorIs(t, err, ErrMiss)

	forever, err := NewCache(dir, 0)
	require.NoError(t, err)
	got, err := forever.Get("old")
	require.NoError(t, err)
	assert.Equal(t, []byte("stale"), got)
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("a", "b"), Key("a", "b"))
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
	assert.NotEmpty(t, Key())
}
