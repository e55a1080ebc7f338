package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/belmontdev/mailbot/internal/logger"
)

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

func TestFileLedger_LoadMissingFile(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "processed_message_ids.json")
	l := NewFileLedger(path, getLogger())

	// Act
	err := l.Load()

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 0, l.Size())
	assert.False(t, l.Contains("msg-1"))
}

func TestFileLedger_LoadCorruptFileFallsBackToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_message_ids.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	l := NewFileLedger(path, getLogger())
	err := l.Load()

	assert.NoError(t, err)
	assert.Equal(t, 0, l.Size())
}

func TestFileLedger_AddFlushesSynchronously(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_message_ids.json")
	l := NewFileLedger(path, getLogger())
	require.NoError(t, l.Load())

	l.Add("msg-1")
	l.Add("msg-2")

	assert.True(t, l.Contains("msg-1"))
	assert.True(t, l.Contains("msg-2"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var stored []string
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Equal(t, []string{"msg-1", "msg-2"}, stored)
}

func TestFileLedger_AddIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_message_ids.json")
	l := NewFileLedger(path, getLogger())
	require.NoError(t, l.Load())

	l.Add("msg-1")
	l.Add("msg-1")

	assert.Equal(t, 1, l.Size())
}

func TestFileLedger_RoundTripIsByteIdentical(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_message_ids.json")

	first := NewFileLedger(path, getLogger())
	require.NoError(t, first.Load())
	first.Add("msg-1")
	first.Add("msg-2")
	first.Add("msg-3")

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	// Load followed by Flush with no intervening Add must reproduce the
	// stored content exactly.
	second := NewFileLedger(path, getLogger())
	require.NoError(t, second.Load())
	require.NoError(t, second.Flush())

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestFileLedger_SurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_message_ids.json")

	first := NewFileLedger(path, getLogger())
	require.NoError(t, first.Load())
	first.Add("<msg-1>")

	second := NewFileLedger(path, getLogger())
	require.NoError(t, second.Load())

	assert.True(t, second.Contains("<msg-1>"))
	assert.False(t, second.Contains("<msg-2>"))
}

func TestFileLedger_FlushFailureDoesNotRollBack(t *testing.T) {
	// Point the ledger at a path whose parent directory does not exist so
	// every flush fails.
	path := filepath.Join(t.TempDir(), "missing", "processed_message_ids.json")
	l := NewFileLedger(path, getLogger())
	require.NoError(t, l.Load())

	l.Add("msg-1")

	// The in-memory addition stands even though the write failed.
	assert.True(t, l.Contains("msg-1"))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
