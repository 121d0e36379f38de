// Package config holds the settings of a pwcombo run.
//
// A Config starts from Default, may be overlaid by a YAML file, and is then
// overridden by explicitly set command-line flags. It is passed by value to
// the components that need it; there is no process-wide state.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/otuschhoff/pwcombo/pkg/output"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultOutputFile is the destination used when none is given.
	DefaultOutputFile = "passwords.txt"

	// DefaultLogFile is the rotating log file used when none is given.
	DefaultLogFile = "password_combo_generator.log"

	// DefaultEncoding is the only supported output encoding.
	DefaultEncoding = "utf-8"

	// DefaultMaxResults bounds the estimated result set size.
	DefaultMaxResults uint64 = 10_000_000
)

// Config holds all settings for one run.
type Config struct {
	OutputFile string `yaml:"output_file"`
	LogFile    string `yaml:"logfile"`
	Encoding   string `yaml:"encoding"`
	MaxResults uint64 `yaml:"max_results"` // 0 disables the size guard
	Summary    string `yaml:"summary"`     // "text", "table" or "json"
	NoHeader   bool   `yaml:"no_header"`
	Verbose    bool   `yaml:"verbose"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		OutputFile: DefaultOutputFile,
		LogFile:    DefaultLogFile,
		Encoding:   DefaultEncoding,
		MaxResults: DefaultMaxResults,
		Summary:    output.FormatText,
	}
}

// Load reads a YAML file and overlays it onto Default. Unknown keys are
// rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := cfg.Merge(data); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Merge overlays YAML data onto c. Keys absent from data keep their value.
func (c *Config) Merge(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	if c.OutputFile == "" {
		return errors.New("output file must not be empty")
	}
	if c.LogFile == "" {
		return errors.New("log file must not be empty")
	}
	if !output.ValidFormat(c.Summary) {
		return fmt.Errorf("invalid summary format: %q", c.Summary)
	}
	return c.WriterConfig().Validate()
}

// WriterConfig returns the settings handed to the password writer.
func (c Config) WriterConfig() output.WriterConfig {
	wc := output.DefaultWriterConfig()
	wc.Encoding = c.Encoding
	return wc
}
