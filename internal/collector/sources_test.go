package collector_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JulianoL13/app-node-engine/internal/collector"
	"github.com/JulianoL13/app-node-engine/internal/common/logs/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSources(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSource_Resolve(t *testing.T) {
	at := time.Date(2025, 1, 22, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"no placeholders", "https://a.example.com/sub", "https://a.example.com/sub"},
		{"month and day", "https://a.example.com/wl{MMDD}u.txt", "https://a.example.com/wl0122u.txt"},
		{"full date path", "https://a.example.com/{YYYY}/{MM}/0-{YYYYMMDD}.txt", "https://a.example.com/2025/01/0-20250122.txt"},
		{"day only", "https://a.example.com/{DD}.yaml", "https://a.example.com/22.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, collector.Source{URL: tt.url}.Resolve(at))
		})
	}
}

func TestLoadSources(t *testing.T) {
	logger := mocks.LoggerMock{}

	t.Run("empty path falls back to defaults", func(t *testing.T) {
		sources, err := collector.LoadSources("", logger)
		require.NoError(t, err)
		assert.Equal(t, collector.DefaultSources(), sources)
	})

	t.Run("missing file falls back to defaults", func(t *testing.T) {
		sources, err := collector.LoadSources(filepath.Join(t.TempDir(), "nope.yaml"), logger)
		require.NoError(t, err)
		assert.Len(t, sources, len(collector.DefaultSources()))
	})

	t.Run("reads file and drops unusable entries", func(t *testing.T) {
		path := writeSources(t, `
sources:
  - name: daily
    url: https://raw.example.com/wl{MMDD}u.txt
  - url: https://sub.example.com/api/v1/client/subscribe?token=abc
  - name: blog
    url: https://blog.example.com/free-nodes.html
  - name: off
    url: https://off.example.com/sub.txt
    disabled: true
  - name: ftp
    url: ftp://files.example.com/sub.txt
`)

		sources, err := collector.LoadSources(path, logger)
		require.NoError(t, err)
		require.Len(t, sources, 2)
		assert.Equal(t, "daily", sources[0].Name)
		assert.Equal(t, "sub.example.com", sources[1].Name)
	})

	t.Run("empty list falls back to defaults", func(t *testing.T) {
		sources, err := collector.LoadSources(writeSources(t, "sources: []\n"), logger)
		require.NoError(t, err)
		assert.Len(t, sources, len(collector.DefaultSources()))
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := collector.LoadSources(writeSources(t, "sources: [\n"), logger)
		assert.ErrorIs(t, err, collector.ErrInvalidSources)
	})
}
