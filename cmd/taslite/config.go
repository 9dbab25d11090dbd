package main

import (
	"os"

	"github.com/goccy/go-yaml"
)

// Config is taslite.yml's shape: CLI-wide defaults an operator would
// otherwise have to repeat on every invocation (spec.md §6
// "Configuration": chunkSize, readOnly, default paths), loaded the way
// the teacher's generator config loader reads YAML (database/database.go's
// ParseGeneratorConfig, adapted here to goccy/go-yaml per SPEC_FULL.md's
// AMBIENT STACK). import and export fall back to ChunkSize when no
// --chunk-size is given, and every command falls back to Path. ReadOnly
// is parsed but no command consults it: get, export and migrate's source
// always open read-only, set and push always read-write.
type Config struct {
	ChunkSize int    `yaml:"chunk_size"`
	ReadOnly  bool   `yaml:"read_only"`
	Path      string `yaml:"path"`
}

func defaultConfig() Config {
	return Config{ChunkSize: 1024}
}

// loadConfig reads path if non-empty and it exists, overlaying its
// fields onto the defaults. A missing path is not an error: the config
// file is optional, every field also settable by flag.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
