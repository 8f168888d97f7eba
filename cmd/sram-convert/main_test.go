// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/sram-convert/internal/history"
	"github.com/pdiddy/sram-convert/internal/sram"
	"github.com/pdiddy/sram-convert/pkg/types"
)

func TestPromptConfirmer(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "Y\n", want: true},
		{input: " yes \n", want: true},
		{input: "n\n", want: false},
		{input: "\n", want: false},
		{input: "sure\n", want: false},
		{input: "y", want: true},
		{input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.input), func(t *testing.T) {
			var out bytes.Buffer
			p := newPromptConfirmer(strings.NewReader(tt.input), &out)
			got, err := p.Confirm("dump.ram is 65536 bytes. Continue anyway?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Continue anyway? (y/n): ")
		})
	}
}

func TestPrintReport(t *testing.T) {
	var out bytes.Buffer
	printReport(&out, types.ConversionResult{
		Input:     "ROMF.ram",
		Output:    "ROMF.sav",
		InputSize: sram.DumpSize,
		SizeCheck: types.SizeExact,
		Region:    make([]byte, sram.RegionSize),
		FillRatio: 41.5,
		Game:      "The Legend of Zelda: Ocarina of Time",
	})

	report := out.String()
	assert.Contains(t, report, "131,072 bytes (128.0 KB)")
	assert.Contains(t, report, "32,768 bytes (32.0 KB SRAM data)")
	assert.Contains(t, report, "41.5% non-zero bytes")
	assert.Contains(t, report, "Detected:  The Legend of Zelda: Ocarina of Time")
	assert.Contains(t, report, "Output file: ROMF.sav")
	assert.Contains(t, report, "NEXT STEPS")
	assert.NotContains(t, report, "may not be a DreamDumper64")
}

func TestPrintReportEmptyMismatch(t *testing.T) {
	var out bytes.Buffer
	printReport(&out, types.ConversionResult{
		Input:     "short.ram",
		Output:    "short.sav",
		InputSize: 65536,
		SizeCheck: types.SizeMismatch,
		Region:    make([]byte, sram.RegionSize),
	})

	report := out.String()
	assert.Contains(t, report, "may not be a DreamDumper64 SRAM dump")
	assert.Contains(t, report, "appears to be empty")
	assert.NotContains(t, report, "Detected:")
}

func TestDescribeError(t *testing.T) {
	mismatch := fmt.Errorf("%w: got 1 bytes", sram.ErrSizeMismatch)
	assert.Contains(t, describeError(mismatch), "--force")

	short := fmt.Errorf("%w: have 1 bytes", sram.ErrInsufficientData)
	assert.Contains(t, describeError(short), "too short")

	assert.Equal(t, "boom", describeError(errors.New("boom")))
}

func TestFormatHistory(t *testing.T) {
	entries := []history.Entry{{
		ID: 1, Input: "/mnt/sd/ROMF.ram", Game: "The Legend of Zelda: Ocarina of Time",
		FillRatio: 12.5, Status: types.ConversionDone,
		ConvertedAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}}

	var table bytes.Buffer
	require.NoError(t, formatHistory(&table, entries, false))
	assert.Contains(t, table.String(), "ROMF.ram")
	assert.Contains(t, table.String(), "The Legend of Zelda: Ocarin...")
	assert.Contains(t, table.String(), "1 entries")

	var empty bytes.Buffer
	require.NoError(t, formatHistory(&empty, nil, false))
	assert.Contains(t, empty.String(), "No conversions recorded.")

	var js bytes.Buffer
	require.NoError(t, formatHistory(&js, nil, true))
	assert.JSONEq(t, "[]", js.String())
}

func TestPrintMarkers(t *testing.T) {
	var out bytes.Buffer
	printMarkers(&out, sram.DefaultMarkers())
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "ZELDAZ")
	assert.Contains(t, lines[1], "12345678")
	assert.Contains(t, lines[1], "Mario Golf 64")
}

func TestRootCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "ROMF.ram")
	buf := make([]byte, sram.DumpSize)
	copy(buf, "ZELDAZ")
	require.NoError(t, os.WriteFile(in, buf, 0o644))

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"--json", "--no-input", in})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	var result types.ConversionResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
	assert.Equal(t, types.ConversionDone, result.Status)
	assert.Equal(t, "The Legend of Zelda: Ocarina of Time", result.Game)
	assert.Equal(t, filepath.Join(dir, "ROMF.sav"), result.Output)
	assert.Contains(t, stderr.String(), "converted:")

	out, err := os.ReadFile(result.Output)
	require.NoError(t, err)
	assert.Equal(t, buf[:sram.RegionSize], out)
}

func TestRootCommandNoInput(t *testing.T) {
	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	assert.True(t, errors.Is(err, errNoInput))
	assert.Contains(t, stdout.String(), "Usage:")
}

func TestTruncateCountsRunes(t *testing.T) {
	label := strings.Repeat("ゼルダの伝説", 6)
	got := truncate(label, 30)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 30, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, "short", truncate("short", 30))
}

func TestRootHelpNamesPathPrefix(t *testing.T) {
	assert.Contains(t, rootCmd.Long, `"sram-convert ./history"`)
	for _, name := range []string{"watch", "batch", "history", "markers", "version"} {
		assert.Contains(t, rootCmd.Long, name)
	}
}

func TestWatchDumpExtFlag(t *testing.T) {
	assert.NotNil(t, watchCmd.Flags().Lookup("dump-ext"))
	assert.Nil(t, watchCmd.Flags().Lookup("ext"))
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "ROMF.ram")
	buf := make([]byte, sram.DumpSize)
	copy(buf, "ZELDAZ")
	require.NoError(t, os.WriteFile(good, buf, 0o644))
	short := filepath.Join(dir, "half.ram")
	require.NoError(t, os.WriteFile(short, make([]byte, 65536), 0o644))

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"batch", "--no-input", good, short})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 dumps failed or were declined")
	assert.Contains(t, stdout.String(), "converted: "+good)
	assert.Contains(t, stdout.String(), "declined:  "+short)
	assert.Contains(t, stdout.String(), "Batch summary: 1 converted, 0 skipped, 1 declined, 0 failed (total: 2)")

	out, err := os.ReadFile(filepath.Join(dir, "ROMF.sav"))
	require.NoError(t, err)
	assert.Equal(t, buf[:sram.RegionSize], out)
	_, err = os.Stat(filepath.Join(dir, "half.sav"))
	assert.True(t, os.IsNotExist(err))
}

func TestBatchCommandSkipsExisting(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "ROM.ram")
	require.NoError(t, os.WriteFile(in, make([]byte, sram.DumpSize), 0o644))
	existing := filepath.Join(dir, "ROM.sav")
	require.NoError(t, os.WriteFile(existing, []byte("keep"), 0o644))

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"batch", "--no-input", in})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, stdout.String(), "skipped:")
	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
}
