// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for sram-convert: the
// conversion result handed back to the CLI, per-file status values, and the
// configuration structs each stage consumes.
package types

import "time"

// ConversionStatus indicates the outcome of converting one dump file.
type ConversionStatus string

const (
	ConversionDone     ConversionStatus = "converted"
	ConversionSkipped  ConversionStatus = "skipped"
	ConversionDeclined ConversionStatus = "declined"
	ConversionFailed   ConversionStatus = "failed"
)

// SizeCheck records how the input length compared with the expected dump size.
type SizeCheck string

const (
	SizeExact    SizeCheck = "exact"
	SizeMismatch SizeCheck = "mismatch"
)

// ConversionResult is the structured outcome of a single conversion. Region
// is never serialized; it is the exact byte range written to the output file.
type ConversionResult struct {
	// Input is the path of the dump that was read.
	Input string `json:"input" yaml:"input"`

	// Output is the path of the written save file.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`

	// InputSize is the length of the dump in bytes.
	InputSize int `json:"input_size" yaml:"input_size"`

	// SizeCheck is "exact" when InputSize matched the expected dump size.
	SizeCheck SizeCheck `json:"size_check" yaml:"size_check"`

	// Region holds the extracted SRAM bytes.
	Region []byte `json:"-" yaml:"-"`

	// FillRatio is the percentage (0-100) of non-zero bytes in Region.
	FillRatio float64 `json:"fill_ratio" yaml:"fill_ratio"`

	// Game is the label of the first marker found, empty when none matched.
	Game string `json:"game,omitempty" yaml:"game,omitempty"`

	Status ConversionStatus `json:"status" yaml:"status"`

	// Error carries the failure message when Status is failed or declined.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	ConvertedAt time.Time `json:"converted_at" yaml:"converted_at"`
}

// Detected reports whether a game marker matched.
func (r ConversionResult) Detected() bool {
	return r.Game != ""
}

// Empty reports whether the extracted region holds only zero bytes.
func (r ConversionResult) Empty() bool {
	return len(r.Region) > 0 && r.FillRatio == 0
}
