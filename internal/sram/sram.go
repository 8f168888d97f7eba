// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sram converts DreamDumper64 SRAM dumps into the raw save layout
// used by SummerCart 64.
//
// A DreamDumper64 dump is 128 KB. For cartridges with 256 Kbit SRAM the save
// occupies the first 32 KB of the dump and the rest is padding. SummerCart 64
// reads saves in raw cartridge byte order, so conversion is a plain prefix
// slice with no byte swapping. Everything in this package is pure: functions
// take a buffer and return values, and no state is shared between calls.
package sram

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/sram-convert/pkg/types"
)

const (
	// DumpSize is the length of a DreamDumper64 image (128 KB).
	DumpSize = 131072
	// RegionSize is the length of a 256 Kbit SRAM save (32 KB).
	RegionSize = 0x8000
	// MarkerWindow is how many leading region bytes are searched for markers.
	MarkerWindow = 1024
)

// SizeOutcome is the result of comparing a buffer length with DumpSize.
type SizeOutcome struct {
	Actual int
}

// Exact reports whether the buffer had exactly DumpSize bytes.
func (o SizeOutcome) Exact() bool {
	return o.Actual == DumpSize
}

// Check returns the outcome as a serializable status.
func (o SizeOutcome) Check() types.SizeCheck {
	if o.Exact() {
		return types.SizeExact
	}
	return types.SizeMismatch
}

func (o SizeOutcome) String() string {
	if o.Exact() {
		return "exact"
	}
	return fmt.Sprintf("mismatch(%d)", o.Actual)
}

// ValidateSize compares len(buf) against DumpSize. It never fails; callers
// decide what a mismatch means.
func ValidateSize(buf []byte) SizeOutcome {
	return SizeOutcome{Actual: len(buf)}
}

// ExtractRegion returns a copy of the first RegionSize bytes of buf.
func ExtractRegion(buf []byte) ([]byte, error) {
	if len(buf) < RegionSize {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrInsufficientData, len(buf), RegionSize)
	}
	region := make([]byte, RegionSize)
	copy(region, buf[:RegionSize])
	return region, nil
}

// FillRatio returns the percentage of non-zero bytes in region. An empty
// region has a ratio of 0.
func FillRatio(region []byte) float64 {
	if len(region) == 0 {
		return 0
	}
	nonZero := 0
	for _, b := range region {
		if b != 0 {
			nonZero++
		}
	}
	return 100 * float64(nonZero) / float64(len(region))
}

// DeriveOutputName replaces the extension of input with ext, leaving the
// directory untouched. A name with no extension gets ext appended; a dotfile
// such as ".ram" counts as having no extension. An empty ext means ".sav".
func DeriveOutputName(input, ext string) string {
	if ext == "" {
		ext = types.DefaultOutputExt
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	dir, base := filepath.Split(input)
	old := filepath.Ext(base)
	if old == base {
		old = ""
	}
	return dir + strings.TrimSuffix(base, old) + ext
}

// Options controls Convert.
type Options struct {
	// Force lets a size mismatch proceed to extraction.
	Force bool

	// Markers is the table used for game detection. Nil means DefaultMarkers.
	Markers MarkerTable
}

// Convert validates buf, extracts the SRAM region and annotates it with the
// fill ratio and detected game. A size mismatch fails with ErrSizeMismatch
// unless opts.Force is set; the returned result still carries InputSize and
// SizeCheck in that case. Convert never touches the filesystem.
func Convert(buf []byte, opts Options) (types.ConversionResult, error) {
	size := ValidateSize(buf)
	result := types.ConversionResult{
		InputSize: size.Actual,
		SizeCheck: size.Check(),
	}

	if !size.Exact() && !opts.Force {
		return result, fmt.Errorf("%w: got %d bytes, want %d", ErrSizeMismatch, size.Actual, DumpSize)
	}

	region, err := ExtractRegion(buf)
	if err != nil {
		return result, err
	}

	markers := opts.Markers
	if markers == nil {
		markers = DefaultMarkers()
	}

	result.Region = region
	result.FillRatio = FillRatio(region)
	result.Game, _ = markers.Classify(region)
	result.Status = types.ConversionDone
	result.ConvertedAt = time.Now().UTC()
	return result, nil
}
