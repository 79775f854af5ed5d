package wasmlauncher

import (
	"os"

	"github.com/naoina/toml"
)

// LauncherConfig holds the defaults a caller can omit at construction time,
// loaded from a TOML file in the teacher's cmd/geth config idiom (SPEC_FULL
// §4.H), stripped of all CLI/flag plumbing since that remains out of scope.
type LauncherConfig struct {
	MeteringEnabled    bool   `toml:"metering_enabled"`
	ModuleCacheSize    int    `toml:"module_cache_size"`
	DefaultGasPriority uint64 `toml:"default_gas_priority"`
}

// DefaultConfig returns the zero-value-safe defaults used whenever a
// caller constructs a Launcher without supplying a config file.
func DefaultConfig() LauncherConfig {
	return LauncherConfig{
		MeteringEnabled:    true,
		ModuleCacheSize:    128,
		DefaultGasPriority: 1,
	}
}

// LoadConfig reads and decodes a TOML config file at path, layering it over
// DefaultConfig so an omitted field keeps its default value.
func LoadConfig(path string) (LauncherConfig, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	if err := toml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
