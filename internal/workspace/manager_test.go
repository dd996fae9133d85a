package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"owldlv/internal/config"
	"owldlv/internal/failure"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.BasePath = t.TempDir()
	return NewManager(cfg)
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
}

func TestManager_EnsureClean(t *testing.T) {
	m := newTestManager(t)
	key, err := Resolve(filepath.Join(t.TempDir(), "tbox"))
	require.NoError(t, err)

	dir, err := m.EnsureClean(key, "tbox")
	require.NoError(t, err)
	writeFiles(t, dir, map[string]string{"stale.rul": "old"})

	dir2, err := m.EnsureClean(key, "tbox")
	require.NoError(t, err)
	assert.Equal(t, dir, dir2)

	entries, err := os.ReadDir(dir2)
	require.NoError(t, err)
	assert.Empty(t, entries, "EnsureClean must leave an empty folder")
}

func TestManager_EnsureExists(t *testing.T) {
	m := newTestManager(t)
	src := filepath.Join(t.TempDir(), "tbox")
	writeFiles(t, src, map[string]string{"a.rul": "p(X) :- q(X).\n", "b.rul": "r(X) :- p(X).\n"})
	require.NoError(t, os.MkdirAll(filepath.Join(src, "nested"), 0755))

	key, err := Resolve(src)
	require.NoError(t, err)

	dir, reused, err := m.EnsureExists(key, "tbox", src)
	require.NoError(t, err)
	assert.False(t, reused)

	data, err := os.ReadFile(filepath.Join(dir, "a.rul"))
	require.NoError(t, err)
	assert.Equal(t, "p(X) :- q(X).\n", string(data))
	_, err = os.Stat(filepath.Join(dir, "nested"))
	assert.True(t, os.IsNotExist(err), "directories are not copied")

	// Second call reuses staged content even if the source changed.
	writeFiles(t, src, map[string]string{"c.rul": "new"})
	_, reused, err = m.EnsureExists(key, "tbox", src)
	require.NoError(t, err)
	assert.True(t, reused)
	_, err = os.Stat(filepath.Join(dir, "c.rul"))
	assert.True(t, os.IsNotExist(err))
}

func TestManager_EnsureExists_MissingInput(t *testing.T) {
	m := newTestManager(t)
	missing := filepath.Join(t.TempDir(), "nope")
	key, err := Resolve(missing)
	require.NoError(t, err)

	_, _, err = m.EnsureExists(key, "abox", missing)
	require.Error(t, err)
	assert.Equal(t, failure.KindInput, failure.KindOf(err))
	assert.False(t, m.HasStaged(key, "abox"))
}

func TestManager_HasStagedAndClear(t *testing.T) {
	m := newTestManager(t)
	key, err := Resolve(filepath.Join(t.TempDir(), "abox"))
	require.NoError(t, err)

	assert.False(t, m.HasStaged(key, "tbox", "abox"))
	_, err = m.EnsureClean(key, "tbox")
	require.NoError(t, err)
	assert.False(t, m.HasStaged(key, "tbox", "abox"))
	_, err = m.EnsureClean(key, "abox")
	require.NoError(t, err)
	assert.True(t, m.HasStaged(key, "tbox", "abox"))

	require.NoError(t, m.Clear())
	_, err = os.Stat(m.Root())
	assert.True(t, os.IsNotExist(err))
	assert.False(t, m.HasStaged(key, "tbox"))
}

func TestManager_SameInputSameWorkspace(t *testing.T) {
	m := newTestManager(t)
	base := t.TempDir()

	k1, err := Resolve(filepath.Join(base, "tbox"))
	require.NoError(t, err)
	k2, err := Resolve(filepath.Join(base, "abox") + "/")
	require.NoError(t, err)

	assert.Equal(t, m.Dir(k1), m.Dir(k2), "tbox and abox siblings share a workspace")
	assert.Equal(t, filepath.Join(m.Dir(k1), "tbox"), m.TBox(k1))
	assert.Equal(t, filepath.Join(m.Dir(k1), "scratch"), m.Scratch(k1))
}
