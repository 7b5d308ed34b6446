package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewMultiLogger_RequiresDir(t *testing.T) {
	_, err := NewMultiLogger(MultiLoggerConfig{Level: "info"})
	assert.Error(t, err)
}

func TestMultiLogger_WritesCategoryFiles(t *testing.T) {
	dir := t.TempDir()
	ml, err := NewMultiLogger(MultiLoggerConfig{Level: "info", LogsDir: dir})
	require.NoError(t, err)

	ml.LogLifecycleEvent("asset_downloaded", zap.String("uid", "u1"))
	ml.LogQueueEvent("job_added", zap.String("id", "j1"))
	ml.LogAppError("write failed", zap.String("path", "/data/en-us"))
	require.NoError(t, ml.Close())

	date := time.Now().Format("20060102")
	for _, category := range Categories {
		path := filepath.Join(dir, string(category)+"-"+date+".log")
		data, err := os.ReadFile(path)
		require.NoError(t, err, path)
		assert.Equal(t, 1, strings.Count(string(data), "\n"), category)
	}
}

func TestMultiLogger_ErrorCategoryIgnoresInfo(t *testing.T) {
	dir := t.TempDir()
	ml, err := NewMultiLogger(MultiLoggerConfig{Level: "debug", LogsDir: dir})
	require.NoError(t, err)

	ml.Error().Info("not an error")
	require.NoError(t, ml.Close())

	entries, err := NewLogReader(dir).ReadTodayLogs(CategoryError, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLogReader_ReadAndSearch(t *testing.T) {
	dir := t.TempDir()
	ml, err := NewMultiLogger(MultiLoggerConfig{Level: "info", LogsDir: dir})
	require.NoError(t, err)

	ml.LogLifecycleEvent("asset_downloaded", zap.String("uid", "u1"), zap.Int64("bytes", 42))
	ml.LogLifecycleEvent("asset_deleted", zap.String("uid", "u2"))
	ml.LogLifecycleEvent("asset_unpublished", zap.String("uid", "u1"))
	require.NoError(t, ml.Sync())

	reader := NewLogReader(dir)

	all, err := reader.ReadTodayLogs(CategoryLifecycle, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "asset_downloaded", all[0].Message)
	assert.Equal(t, "info", all[0].Level)
	assert.Equal(t, "lifecycle", all[0].Category)
	assert.NotEmpty(t, all[0].Timestamp)
	assert.Equal(t, "u1", all[0].Fields["uid"])
	assert.EqualValues(t, 42, all[0].Fields["bytes"])

	last, err := reader.ReadTodayLogs(CategoryLifecycle, 1)
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, "asset_unpublished", last[0].Message)

	found, err := reader.SearchLogs(CategoryLifecycle, time.Now(), "U1", 0)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = reader.SearchLogs(CategoryLifecycle, time.Now(), "deleted", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "asset_deleted", found[0].Message)

	require.NoError(t, ml.Close())
}

func TestLogReader_MissingFileAndPlainLines(t *testing.T) {
	dir := t.TempDir()
	reader := NewLogReader(dir)

	entries, err := reader.ReadTodayLogs(CategoryQueue, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)

	path := reader.GetLogPath(CategoryQueue, time.Now())
	require.NoError(t, os.WriteFile(path, []byte("plain text line\n\n"), 0644))

	entries, err = reader.ReadTodayLogs(CategoryQueue, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "plain text line", entries[0].Message)
}

func TestValidCategory(t *testing.T) {
	assert.True(t, ValidCategory("lifecycle"))
	assert.True(t, ValidCategory("queue"))
	assert.False(t, ValidCategory("web"))
}
