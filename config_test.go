package wasmlauncher

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.MeteringEnabled)
	assert.Equal(t, 128, cfg.ModuleCacheSize)
	assert.Equal(t, uint64(1), cfg.DefaultGasPriority)
}

func TestLoadConfig_OverlaysDefaults(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "launcher-*.toml")
	require.NoError(t, err)
	_, err = f.WriteString("module_cache_size = 4\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	cfg, err := LoadConfig(f.Name())
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.ModuleCacheSize)
	assert.True(t, cfg.MeteringEnabled)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/launcher.toml")
	assert.Error(t, err)
}
