package workflow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rapidaai/fitcoach/pkg/commons"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFileIsMemoized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":"1.0"}`), 0o644))

	loader := NewLoader(path, commons.NewNopLogger())
	first, err := loader.Load(context.Background())
	require.NoError(t, err)

	// a rewrite after the first load must not show through the cache
	require.NoError(t, os.WriteFile(path, []byte(`{"version":"2.0"}`), 0o644))
	second, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))
	assert.JSONEq(t, `{"version":"1.0"}`, string(second))
}

func TestLoadFromURL(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{"steps":[]}`))
	}))
	defer server.Close()

	loader := NewLoader(server.URL+"/spec.json", commons.NewNopLogger())
	for i := 0; i < 3; i++ {
		spec, err := loader.Load(context.Background())
		require.NoError(t, err)
		assert.JSONEq(t, `{"steps":[]}`, string(spec))
	}
	assert.Equal(t, 1, hits)
}

func TestLoadFailureIsRetriedNotCached(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.json")

	loader := NewLoader(path, commons.NewNopLogger())
	_, err := loader.Load(context.Background())
	require.Error(t, err)

	// the file appears later; the next load succeeds
	require.NoError(t, os.WriteFile(path, []byte(`{"version":"1.0"}`), 0o644))
	spec, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.0"}`, string(spec))
}

func TestLoadRejectsInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.json")
	require.NoError(t, os.WriteFile(path, []byte(`not json at all`), 0o644))

	loader := NewLoader(path, commons.NewNopLogger())
	_, err := loader.Load(context.Background())
	require.Error(t, err)
}
