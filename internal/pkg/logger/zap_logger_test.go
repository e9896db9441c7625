package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogs_FiltersAndPaginates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	lines := []string{
		`{"level":"INFO","timestamp":"2026-01-01T00:00:00Z","message":"first","module":"PAYWALL"}`,
		`not json`,
		`{"level":"WARN","timestamp":"2026-01-01T00:00:01Z","message":"second","module":"SECURITY"}`,
		`{"level":"INFO","timestamp":"2026-01-01T00:00:02Z","message":"third","module":"PAYWALL"}`,
	}
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))

	l := &ZapLogger{filePath: path}

	all, err := l.GetLogs("", 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Message)

	warns, err := l.GetLogs("WARN", 10, 0)
	require.NoError(t, err)
	require.Len(t, warns, 1)
	assert.Equal(t, "SECURITY", warns[0].Module)

	page, err := l.GetLogs("", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "second", page[0].Message)

	found, err := l.GetLogById(all[2].Id)
	require.NoError(t, err)
	assert.Equal(t, "first", found.Message)

	_, err = l.GetLogById("missing")
	assert.ErrorIs(t, err, ErrLogNotFound)
}

func TestGetLogs_MissingFile(t *testing.T) {
	l := &ZapLogger{filePath: filepath.Join(t.TempDir(), "nope.log")}
	logs, err := l.GetLogs("", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, logs)
}
