// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DefaultOutputExt is the extension SummerCart 64 expects for save files.
const DefaultOutputExt = ".sav"

// ConversionConfig holds settings for converting dump files.
type ConversionConfig struct {
	// Force skips the size-mismatch confirmation and proceeds anyway.
	Force bool `json:"force" yaml:"force"`

	// OutputExt replaces the input extension when no output path is given
	// (default ".sav").
	OutputExt string `json:"ext" yaml:"ext"`

	// MarkersFile is an optional YAML or TOML file of extra game markers.
	MarkersFile string `json:"markers,omitempty" yaml:"markers,omitempty"`

	// SkipExisting leaves an existing output file untouched instead of
	// overwriting it.
	SkipExisting bool `json:"skip_existing" yaml:"skip_existing"`
}

// HistoryConfig holds settings for the optional conversion ledger.
type HistoryConfig struct {
	// Enabled turns on recording of every conversion attempt.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// DBPath is the SQLite database file
	// (default ~/.config/sram-convert/history.db).
	DBPath string `json:"db" yaml:"db"`

	// MaxResults is the default number of rows returned by list (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// WatchConfig holds settings for the directory watcher.
type WatchConfig struct {
	// Dir is the directory to watch for new dumps.
	Dir string `json:"dir" yaml:"dir"`

	// Settle is how long a file must go without writes before it is
	// converted (default 750ms).
	Settle time.Duration `json:"settle" yaml:"settle"`

	// Extensions lists the input extensions that trigger a conversion
	// (default .ram and .fla).
	Extensions []string `json:"extensions" yaml:"extensions"`
}

// Config groups all settings read from the config file, environment and flags.
type Config struct {
	Conversion ConversionConfig `json:"conversion" yaml:"conversion"`
	History    HistoryConfig    `json:"history" yaml:"history"`
	Watch      WatchConfig      `json:"watch" yaml:"watch"`
	LogLevel   string           `json:"log_level" yaml:"log_level"`
}
