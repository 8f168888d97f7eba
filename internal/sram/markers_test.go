// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sram

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	zelda := "The Legend of Zelda: Ocarina of Time"
	golf := "Mario Golf 64"

	tests := []struct {
		name    string
		setup   func(region []byte)
		want    string
		wantHit bool
	}{
		{
			name:    "zelda at start",
			setup:   func(r []byte) { copy(r, "ZELDAZ") },
			want:    zelda,
			wantHit: true,
		},
		{
			name:    "golf at start",
			setup:   func(r []byte) { copy(r, []byte{0x12, 0x34, 0x56, 0x78}) },
			want:    golf,
			wantHit: true,
		},
		{
			name:    "marker anywhere in window",
			setup:   func(r []byte) { copy(r[500:], "ZELDAZ") },
			want:    zelda,
			wantHit: true,
		},
		{
			name:    "marker ending on last window byte",
			setup:   func(r []byte) { copy(r[MarkerWindow-6:], "ZELDAZ") },
			want:    zelda,
			wantHit: true,
		},
		{
			name:  "marker straddling window edge",
			setup: func(r []byte) { copy(r[MarkerWindow-3:], "ZELDAZ") },
		},
		{
			name:  "marker past window",
			setup: func(r []byte) { copy(r[MarkerWindow:], "ZELDAZ") },
		},
		{
			name:  "no marker",
			setup: func(r []byte) {},
		},
		{
			name: "table order wins over position",
			setup: func(r []byte) {
				copy(r, []byte{0x12, 0x34, 0x56, 0x78})
				copy(r[800:], "ZELDAZ")
			},
			want:    zelda,
			wantHit: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			region := make([]byte, RegionSize)
			tt.setup(region)

			got, ok := DefaultMarkers().Classify(region)
			assert.Equal(t, tt.wantHit, ok)
			assert.Equal(t, tt.want, got)

			// Deterministic across calls.
			again, _ := DefaultMarkers().Classify(region)
			assert.Equal(t, got, again)
		})
	}
}

func TestClassifyShortRegion(t *testing.T) {
	got, ok := DefaultMarkers().Classify([]byte("ZELDAZ"))
	assert.True(t, ok)
	assert.Equal(t, "The Legend of Zelda: Ocarina of Time", got)
}

func TestClassifySkipsEmptyPattern(t *testing.T) {
	table := MarkerTable{{Label: "empty"}, {Pattern: []byte("AB"), Label: "ab"}}
	got, ok := table.Classify([]byte("xxABxx"))
	assert.True(t, ok)
	assert.Equal(t, "ab", got)
}

func TestDefaultMarkersIsFresh(t *testing.T) {
	a := DefaultMarkers()
	a[0].Label = "changed"
	assert.NotEqual(t, "changed", DefaultMarkers()[0].Label)
}

func TestWithKeepsOrder(t *testing.T) {
	base := DefaultMarkers()
	extended := base.With(GameMarker{Pattern: []byte("X"), Label: "x"})
	require.Len(t, extended, len(base)+1)
	assert.Equal(t, base[0].Label, extended[0].Label)
	assert.Equal(t, "x", extended[len(extended)-1].Label)
	assert.Len(t, base, 2)
}

func TestGameMarkerString(t *testing.T) {
	assert.Equal(t, "ZELDAZ", GameMarker{Pattern: []byte("ZELDAZ")}.String())
	assert.Equal(t, "12345678", GameMarker{Pattern: []byte{0x12, 0x34, 0x56, 0x78}}.String())
}

func TestLoadMarkerFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    MarkerTable
		errMsg  string
	}{
		{
			name: "yaml text and hex",
			file: "markers.yaml",
			content: `markers:
  - label: F-Zero X
    text: FZEROX
  - label: Harvest Moon 64
    hex: "0xDE AD be ef"
`,
			want: MarkerTable{
				{Pattern: []byte("FZEROX"), Label: "F-Zero X"},
				{Pattern: []byte{0xde, 0xad, 0xbe, 0xef}, Label: "Harvest Moon 64"},
			},
		},
		{
			name: "toml",
			file: "markers.toml",
			content: `[[markers]]
label = "Super Smash Bros."
text = "SMASH"

[[markers]]
label = "1080 Snowboarding"
hex = "10 80"
`,
			want: MarkerTable{
				{Pattern: []byte("SMASH"), Label: "Super Smash Bros."},
				{Pattern: []byte{0x10, 0x80}, Label: "1080 Snowboarding"},
			},
		},
		{
			name:    "empty file",
			file:    "markers.yml",
			content: "",
			want:    MarkerTable{},
		},
		{
			name:    "missing label",
			file:    "markers.yaml",
			content: "markers:\n  - text: ABC\n",
			errMsg:  "entry 1: missing label",
		},
		{
			name:    "missing pattern",
			file:    "markers.yaml",
			content: "markers:\n  - label: A\n    text: A\n  - label: B\n",
			errMsg:  "entry 2: B: missing pattern",
		},
		{
			name:    "both patterns",
			file:    "markers.yaml",
			content: "markers:\n  - label: A\n    text: A\n    hex: \"41\"\n",
			errMsg:  "not both",
		},
		{
			name:    "bad hex",
			file:    "markers.yaml",
			content: "markers:\n  - label: A\n    hex: \"zz\"\n",
			errMsg:  "invalid hex",
		},
		{
			name:    "unsupported extension",
			file:    "markers.json",
			content: "{}",
			errMsg:  "unsupported marker file format",
		},
		{
			name:    "malformed yaml",
			file:    "markers.yaml",
			content: "markers: [",
			errMsg:  "parsing marker file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			got, err := LoadMarkerFile(path)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadMarkerFileTooLong(t *testing.T) {
	path := filepath.Join(t.TempDir(), "markers.yaml")
	long := make([]byte, MarkerWindow+1)
	for i := range long {
		long[i] = 'A'
	}
	content := "markers:\n  - label: Long\n    text: " + string(long) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadMarkerFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "longer than")
}

func TestLoadMarkerFileMissing(t *testing.T) {
	_, err := LoadMarkerFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading marker file")
}
