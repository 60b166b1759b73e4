package nativelog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodayFilename(t *testing.T) {
	ts := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "stdout_3-7-26.log", TodayFilename(ts))
}

func TestResolveDirEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvLogDir, dir)
	assert.Equal(t, dir, ResolveDir())
}

func TestWriterAppendsAcrossWrites(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvLogDir, dir)

	w, err := NewWriter()
	require.NoError(t, err)

	_, err = w.Write([]byte("first\n"))
	require.NoError(t, err)
	_, err = w.Write([]byte("second\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, TodayFilename(time.Now())))
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))
}

func TestWriterSurvivesFileRemoval(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvLogDir, dir)

	w, err := NewWriter()
	require.NoError(t, err)

	_, err = w.Write([]byte("before\n"))
	require.NoError(t, err)

	path := filepath.Join(dir, TodayFilename(time.Now()))
	require.NoError(t, os.Remove(path))

	_, err = w.Write([]byte("after\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "after\n", string(data))
}
