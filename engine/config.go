package engine

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vxengine/vxengine/connpool"
	"github.com/vxengine/vxengine/snapshot"
	"github.com/vxengine/vxengine/vxerr"
)

// Config configures an Engine's connection pool and snapshot
// defaults. The zero value is not usable; build one with
// DefaultConfig or LoadConfig.
type Config struct {
	DatabasePath string                  `yaml:"database_path"`
	BusyTimeout  time.Duration           `yaml:"busy_timeout"`
	MaxOpenConns int                     `yaml:"max_open_conns"`
	Snapshot     snapshot.SnapshotConfig `yaml:"-"`
}

// DefaultConfig returns a Config pointed at an in-memory database with
// the connpool/snapshot package defaults.
func DefaultConfig() *Config {
	return &Config{
		DatabasePath: ":memory:",
		BusyTimeout:  connpool.DefaultBusyTimeout,
		MaxOpenConns: 8,
		Snapshot:     snapshot.DefaultSnapshotConfig(),
	}
}

// yamlConfig is the subset of Config that maps onto a config file;
// BusyTimeout is parsed as milliseconds since time.Duration has no
// canonical YAML scalar form, following the teacher's
// database.ParseGeneratorConfig pattern of a small file-shaped struct
// translated into the runtime type.
type yamlConfig struct {
	DatabasePath    string `yaml:"database_path"`
	BusyTimeoutMs   int64  `yaml:"busy_timeout_ms"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ChunkSize       int    `yaml:"snapshot_chunk_size"`
	IncludeIndexes  *bool  `yaml:"snapshot_include_index_files"`
	SnapshotTempDir string `yaml:"snapshot_temp_dir"`
}

// LoadConfig reads a YAML config file, overlaying it on DefaultConfig
// so an omitted field keeps its default.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, vxerr.Wrap(vxerr.Io, err, "reading engine config %s", path)
	}

	cfg := DefaultConfig()
	var y yamlConfig
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, vxerr.Wrap(vxerr.DataParsing, err, "parsing engine config %s", path)
	}

	if y.DatabasePath != "" {
		cfg.DatabasePath = y.DatabasePath
	}
	if y.BusyTimeoutMs > 0 {
		cfg.BusyTimeout = time.Duration(y.BusyTimeoutMs) * time.Millisecond
	}
	if y.MaxOpenConns > 0 {
		cfg.MaxOpenConns = y.MaxOpenConns
	}
	if y.ChunkSize > 0 {
		cfg.Snapshot.ChunkSize = y.ChunkSize
	}
	if y.SnapshotTempDir != "" {
		cfg.Snapshot.TempDir = y.SnapshotTempDir
	}
	if y.IncludeIndexes != nil {
		cfg.Snapshot.IncludeIndexFiles = *y.IncludeIndexes
	}

	return cfg, nil
}
