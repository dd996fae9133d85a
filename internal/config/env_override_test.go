package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverrides(t *testing.T) {
	t.Run("OWLDLV_BASE replaces base path", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OWLDLV_BASE", "/srv/kb")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "/srv/kb", cfg.BasePath)
		assert.Equal(t, "/srv/kb/tmp", cfg.WorkspaceRoot())
	})

	t.Run("solver and java binaries", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OWLDLV_SOLVER", "/usr/local/bin/dlv")
		t.Setenv("OWLDLV_JAVA", "/usr/lib/jvm/bin/java")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "/usr/local/bin/dlv", cfg.Solver.DLV)
		assert.Equal(t, "/usr/local/bin/dlv", cfg.SolverPath(cfg.Solver.DLV))
		assert.Equal(t, "/usr/lib/jvm/bin/java", cfg.Converters.Java)
	})

	t.Run("debug toggle", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OWLDLV_DEBUG", "true")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.True(t, cfg.Logging.DebugMode)

		t.Setenv("OWLDLV_DEBUG", "0")
		cfg.applyEnvOverrides()
		assert.False(t, cfg.Logging.DebugMode)
	})

	t.Run("invalid engine from env fails Load", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OWLDLV_RELEVANCE_ENGINE", "psychic")

		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})
}
