// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sram

import (
	"bytes"
	"encoding/hex"
)

// GameMarker is a byte pattern known to appear near the start of one game's
// save data.
type GameMarker struct {
	Pattern []byte
	Label   string
}

// String renders the pattern as hex, or as text when it is printable ASCII.
func (m GameMarker) String() string {
	for _, b := range m.Pattern {
		if b < 0x20 || b > 0x7e {
			return hex.EncodeToString(m.Pattern)
		}
	}
	return string(m.Pattern)
}

// MarkerTable is an ordered list of markers. Order matters: when several
// patterns occur in the same save, the earliest entry wins.
type MarkerTable []GameMarker

// DefaultMarkers returns the built-in table. Only markers confirmed on real
// cartridges belong here. Each call returns a fresh slice.
func DefaultMarkers() MarkerTable {
	return MarkerTable{
		{Pattern: []byte("ZELDAZ"), Label: "The Legend of Zelda: Ocarina of Time"},
		{Pattern: []byte{0x12, 0x34, 0x56, 0x78}, Label: "Mario Golf 64"},
	}
}

// With returns a new table holding t followed by extra.
func (t MarkerTable) With(extra ...GameMarker) MarkerTable {
	out := make(MarkerTable, 0, len(t)+len(extra))
	out = append(out, t...)
	return append(out, extra...)
}

// Classify searches the first MarkerWindow bytes of region for each pattern
// in table order and returns the label of the first one found anywhere in
// that window. Empty patterns never match.
func (t MarkerTable) Classify(region []byte) (string, bool) {
	window := region
	if len(window) > MarkerWindow {
		window = window[:MarkerWindow]
	}
	for _, m := range t {
		if len(m.Pattern) == 0 {
			continue
		}
		if bytes.Contains(window, m.Pattern) {
			return m.Label, true
		}
	}
	return "", false
}
