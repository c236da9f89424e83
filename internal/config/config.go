// Package config loads the gridcalc YAML configuration.
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-hclog"
	"gopkg.in/yaml.v3"

	"github.com/vogtb/gridcalc/packages/spreadsheet"
)

const (
	DefaultRows     = 50
	DefaultColumns  = 26
	DefaultLogLevel = "warn"
)

// Config is the gridcalc configuration. keys missing from the file keep
// their defaults.
type Config struct {
	Rows     int    `yaml:"rows"`
	Columns  int    `yaml:"columns"`
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Rows:     DefaultRows,
		Columns:  DefaultColumns,
		LogLevel: DefaultLogLevel,
	}
}

// Load reads and validates the configuration at path. an empty path
// returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML configuration on top of the defaults. unknown keys are
// rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(err, "decoding yaml")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the grid dimensions and the log level
func (c Config) Validate() error {
	if c.Rows <= 0 {
		return errors.Newf("rows must be positive, got %d", c.Rows)
	}
	if c.Columns < 1 || c.Columns > spreadsheet.MaxColumns {
		return errors.Newf("columns must be between 1 and %d, got %d", spreadsheet.MaxColumns, c.Columns)
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		return errors.Newf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

// NewLogger builds the logger for the configured level
func (c Config) NewLogger(name string, output io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   name,
		Level:  hclog.LevelFromString(c.LogLevel),
		Output: output,
	})
}

// NewSpreadsheet creates an empty spreadsheet of the configured size
func (c Config) NewSpreadsheet(logger hclog.Logger) (*spreadsheet.Spreadsheet, error) {
	return spreadsheet.NewSpreadsheet(c.Rows, c.Columns, spreadsheet.WithLogger(logger))
}
