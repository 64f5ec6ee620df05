package csvsort

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/lanrat/csvsort/codec"
)

// Config holds configuration settings for csvsort
type Config struct {
	BufferSizeMB      float64 // in-memory buffer per run, in MiB; runs are cut once the estimated size reaches it
	Order             Order   // Ascending or Descending
	OutputSuffix      string  // inserted before the input's extension to name the output
	TempFilesDir      string  // parent of the temp namespace, empty for a disk backed OS default ex: /var/tmp
	RunFilenamePrefix string  // filename prefix for runs put in the namespace
	FileBufferSize    int     // file IO buffer size for each run and the output
	MaxFanIn          int     // maximum runs merged at once, 0 merges all runs in one pass
	RunFormat         string  // record format of intermediate runs: "csv" or "cbor"
	Delimiter         rune    // field delimiter of the input and output
}

// DefaultConfig returns the default configuration options used if none provided
func DefaultConfig() *Config {
	return &Config{
		BufferSizeMB:      100,
		Order:             Ascending,
		OutputSuffix:      "_sorted",
		TempFilesDir:      "",
		RunFilenamePrefix: "run_",
		FileBufferSize:    1 << 16, // 64k
		MaxFanIn:          0,
		RunFormat:         "csv",
		Delimiter:         ',',
	}
}

// mergeConfig takes a provided config and replaces any values not set with the defaults.
// BufferSizeMB and Order are never defaulted: a zero buffer is rejected by Validate.
func mergeConfig(c *Config) *Config {
	d := DefaultConfig()
	if c == nil {
		return d
	}
	merged := *c
	if merged.OutputSuffix == "" {
		merged.OutputSuffix = d.OutputSuffix
	}
	if merged.RunFilenamePrefix == "" {
		merged.RunFilenamePrefix = d.RunFilenamePrefix
	}
	if merged.FileBufferSize <= 0 {
		merged.FileBufferSize = d.FileBufferSize
	}
	if merged.RunFormat == "" {
		merged.RunFormat = d.RunFormat
	}
	if merged.Delimiter == 0 {
		merged.Delimiter = d.Delimiter
	}
	// skipping TempFilesDir as it is the empty string
	return &merged
}

// Validate checks the configuration for values the sorter cannot work with
func (c *Config) Validate() error {
	if math.IsNaN(c.BufferSizeMB) || math.IsInf(c.BufferSizeMB, 0) || c.BufferSizeMB <= 0 {
		return &ConfigError{Field: "BufferSizeMB", Value: c.BufferSizeMB, Reason: "must be a positive number of megabytes"}
	}
	if c.Order != Ascending && c.Order != Descending {
		return &ConfigError{Field: "Order", Value: int(c.Order), Reason: "must be Ascending or Descending"}
	}
	if c.MaxFanIn < 0 || c.MaxFanIn == 1 {
		return &ConfigError{Field: "MaxFanIn", Value: c.MaxFanIn, Reason: "must be 0 (unlimited) or at least 2"}
	}
	if strings.ContainsAny(c.OutputSuffix, `/\`) {
		return &ConfigError{Field: "OutputSuffix", Value: c.OutputSuffix, Reason: "must not contain a path separator"}
	}
	if strings.ContainsAny(c.RunFilenamePrefix, `/\`) {
		return &ConfigError{Field: "RunFilenamePrefix", Value: c.RunFilenamePrefix, Reason: "must not contain a path separator"}
	}
	if _, err := codec.Lookup(c.RunFormat); err != nil {
		return &ConfigError{Field: "RunFormat", Value: c.RunFormat, Reason: err.Error()}
	}
	if c.Delimiter == '"' || c.Delimiter == '\r' || c.Delimiter == '\n' || c.Delimiter == utf8.RuneError || !utf8.ValidRune(c.Delimiter) {
		return &ConfigError{Field: "Delimiter", Value: string(c.Delimiter), Reason: "not a valid field delimiter"}
	}
	return nil
}

// BufferBytes converts BufferSizeMB to the byte threshold used by the run writer.
// The result is at least 1 so that a tiny buffer means one record per run.
func (c *Config) BufferBytes() int64 {
	f := c.BufferSizeMB * 1024 * 1024
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	b := int64(f)
	if b < 1 {
		return 1
	}
	return b
}
