package applog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodayFilename(t *testing.T) {
	day := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "stdout_3-7-26.log", TodayFilename(day))
}

func TestWriterAppendsToDailyFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvLogDir, dir)

	w, err := NewWriter()
	require.NoError(t, err)

	_, err = w.Write([]byte("first line\n"))
	require.NoError(t, err)
	_, err = w.Write([]byte("second line\n"))
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, TodayFilename(time.Now())))
	require.NoError(t, err)
	assert.Equal(t, "first line\nsecond line\n", string(content))
}

func TestResolveDirPrefersEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvLogDir, dir)
	assert.Equal(t, dir, ResolveDir())
}
