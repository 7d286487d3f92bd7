package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPrefersFileAndTrims(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "api-key")
	require.NoError(t, os.WriteFile(path, []byte("AIza-test-key\n"), 0o600))

	got, err := Load(Source{Name: "gemini api key", Value: "inline-key", File: path})
	require.NoError(t, err)
	assert.Equal(t, "AIza-test-key", got)
}

func TestLoadInlineValue(t *testing.T) {
	t.Parallel()

	got, err := Load(Source{Name: "browser password", Value: "  hunter2  "})
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	empty := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(empty, []byte("  \n"), 0o600))

	_, err := Load(Source{Name: "browser email", File: empty})
	assert.ErrorContains(t, err, "browser email")
	assert.ErrorContains(t, err, "is empty")

	_, err = Load(Source{Name: "gemini api key"})
	assert.ErrorContains(t, err, "gemini api key is not configured")

	_, err = Load(Source{File: filepath.Join(t.TempDir(), "missing")})
	assert.ErrorContains(t, err, "reading secret from file")
}
