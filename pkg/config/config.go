// Package config provides configuration for hashgrid tables, snapshots and
// logging.
//
// The configuration is organized into sections:
//   - Table: backing store, capacity hints and the row limit
//   - Snapshot: payload format, compression and decode limits
//   - Logging: the zap logger configuration
//
// Configuration is read from YAML. ${VAR} and ${VAR:-default} references
// are replaced with environment values before parsing.
//
// Example usage:
//
//	cfg, err := config.Load("hashgrid.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tbl := config.NewTable[string, float64](cfg.Table)
//	opts, err := cfg.Snapshot.Options(logger.Get())
//	err = snapshot.WriteFile(cfg.Snapshot.Path, tbl, opts)
package config

import (
	"cmp"

	"go.uber.org/zap"

	"github.com/ajitpratap0/hashgrid/pkg/compression"
	"github.com/ajitpratap0/hashgrid/pkg/errors"
	"github.com/ajitpratap0/hashgrid/pkg/logger"
	"github.com/ajitpratap0/hashgrid/pkg/snapshot"
	"github.com/ajitpratap0/hashgrid/pkg/table"
)

// Backing names for TableConfig.Backing
const (
	BackingHash    = "hash"
	BackingOrdered = "ordered"
)

// Config is the top-level hashgrid configuration
type Config struct {
	// Table settings apply to tables built with NewTable
	Table TableConfig `yaml:"table" json:"table"`

	// Snapshot settings control how tables are persisted
	Snapshot SnapshotConfig `yaml:"snapshot" json:"snapshot"`

	// Logging configures the global logger
	Logging logger.Config `yaml:"logging" json:"logging"`
}

// TableConfig contains table construction settings
type TableConfig struct {
	// Backing selects the column store: "hash" (default) or "ordered"
	Backing string `yaml:"backing" json:"backing"`
	// ColumnCapacity pre-sizes the column store
	ColumnCapacity int `yaml:"column_capacity" json:"column_capacity"`
	// RowCapacity pre-sizes every new column
	RowCapacity int `yaml:"row_capacity" json:"row_capacity"`
	// MaxRows caps the row count (0 = unlimited)
	MaxRows int `yaml:"max_rows" json:"max_rows"`
}

// SnapshotConfig contains snapshot encoding settings
type SnapshotConfig struct {
	// Path is where snapshots are stored
	Path string `yaml:"path" json:"path"`
	// Format of the payload: "json" or "yaml"
	Format string `yaml:"format" json:"format"`
	// Compression algorithm name, e.g. "zstd" or "none"
	Compression string `yaml:"compression" json:"compression"`
	// Level is "fastest", "default", "better" or "best"
	Level string `yaml:"level" json:"level"`
	// MaxDecompressedSizeMB caps decoded payload size (0 = unlimited)
	MaxDecompressedSizeMB int `yaml:"max_decompressed_size_mb" json:"max_decompressed_size_mb"`
}

// Default returns a configuration with every field set to its default
func Default() *Config {
	return &Config{
		Table: TableConfig{
			Backing: BackingHash,
		},
		Snapshot: SnapshotConfig{
			Path:                  "hashgrid.hgs",
			Format:                "json",
			Compression:           string(compression.Zstd),
			Level:                 compression.Default.String(),
			MaxDecompressedSizeMB: 256,
		},
		Logging: logger.DefaultConfig(),
	}
}

// Validate checks every section. Failures are ErrorTypeConfig errors naming
// the offending field.
func (c *Config) Validate() error {
	if err := c.Table.Validate(); err != nil {
		return err
	}
	if err := c.Snapshot.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid logging configuration")
	}
	return nil
}

// Validate checks the table section
func (tc TableConfig) Validate() error {
	switch tc.Backing {
	case "", BackingHash, BackingOrdered:
	default:
		return invalid("table.backing", tc.Backing, "must be hash or ordered")
	}
	if tc.ColumnCapacity < 0 {
		return invalid("table.column_capacity", tc.ColumnCapacity, "must not be negative")
	}
	if tc.RowCapacity < 0 {
		return invalid("table.row_capacity", tc.RowCapacity, "must not be negative")
	}
	if tc.MaxRows < 0 {
		return invalid("table.max_rows", tc.MaxRows, "must not be negative")
	}
	return nil
}

// Options converts the capacity and limit settings to table options
func (tc TableConfig) Options() []table.Option {
	var opts []table.Option
	if tc.ColumnCapacity > 0 || tc.RowCapacity > 0 {
		opts = append(opts, table.WithCapacity(tc.ColumnCapacity, tc.RowCapacity))
	}
	if tc.MaxRows > 0 {
		opts = append(opts, table.WithMaxRows(tc.MaxRows))
	}
	return opts
}

// NewTable builds an empty table from tc. It assumes tc is valid; an
// unknown backing falls back to hash.
func NewTable[K cmp.Ordered, V any](tc TableConfig) *table.Table[K, V] {
	if tc.Backing == BackingOrdered {
		return table.NewOrdered[K, V](tc.Options()...)
	}
	return table.New[K, V](tc.Options()...)
}

// Validate checks the snapshot section
func (sc SnapshotConfig) Validate() error {
	if _, err := snapshot.ParseFormat(sc.Format); err != nil {
		return invalid("snapshot.format", sc.Format, "must be json or yaml")
	}
	if _, err := compression.ParseAlgorithm(sc.Compression); err != nil {
		return invalid("snapshot.compression", sc.Compression, "unknown compression algorithm")
	}
	if _, err := compression.ParseLevel(sc.Level); err != nil {
		return invalid("snapshot.level", sc.Level, "must be fastest, default, better or best")
	}
	if sc.MaxDecompressedSizeMB < 0 {
		return invalid("snapshot.max_decompressed_size_mb", sc.MaxDecompressedSizeMB, "must not be negative")
	}
	return nil
}

// Options converts the section to snapshot options logging to log. The
// table options are not included; set them from TableConfig.Options.
func (sc SnapshotConfig) Options(log *zap.Logger) (snapshot.Options, error) {
	if err := sc.Validate(); err != nil {
		return snapshot.Options{}, err
	}
	format, _ := snapshot.ParseFormat(sc.Format)
	algorithm, _ := compression.ParseAlgorithm(sc.Compression)
	level, _ := compression.ParseLevel(sc.Level)
	return snapshot.Options{
		Format:              format,
		Compression:         algorithm,
		Level:               level,
		MaxDecompressedSize: int64(sc.MaxDecompressedSizeMB) << 20,
		Logger:              log,
	}, nil
}

func invalid(field string, value interface{}, reason string) error {
	return errors.Newf(errors.ErrorTypeConfig, "invalid %s: %s", field, reason).
		WithDetail("field", field).
		WithDetail("value", value)
}
