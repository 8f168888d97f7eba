// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pdiddy/sram-convert/internal/sram"
	"github.com/pdiddy/sram-convert/pkg/types"
)

var printer = message.NewPrinter(language.English)

const rule = "============================================================"

// printReport writes the human-readable summary of a successful conversion.
func printReport(w io.Writer, r types.ConversionResult) {
	printer.Fprintf(w, "Reading:   %s\n", r.Input)
	printer.Fprintf(w, "File size: %d bytes (%.1f KB)\n", r.InputSize, float64(r.InputSize)/1024)
	if r.SizeCheck == types.SizeMismatch {
		printer.Fprintf(w, "Warning:   expected 128 KB (%d bytes); this may not be a DreamDumper64 SRAM dump\n", sram.DumpSize)
	}
	printer.Fprintf(w, "Extracted: %d bytes (%.1f KB SRAM data)\n", len(r.Region), float64(len(r.Region))/1024)

	if r.Empty() {
		fmt.Fprintln(w, "Warning:   save data appears to be empty (all zeros); this might be a blank/new save")
	} else {
		fmt.Fprintf(w, "Contents:  %.1f%% non-zero bytes\n", r.FillRatio)
	}
	if r.Detected() {
		fmt.Fprintf(w, "Detected:  %s\n", r.Game)
	}

	fmt.Fprintf(w, "\n%s\nConversion complete\n%s\n", rule, rule)
	fmt.Fprintf(w, "Output file: %s\n", r.Output)
	printer.Fprintf(w, "Size:        %d bytes (%.1f KB)\n\n", len(r.Region), float64(len(r.Region))/1024)
	fmt.Fprint(w, nextSteps)
}

const nextSteps = `NEXT STEPS:
1. Rename the .sav file to exactly match your ROM filename:
   ROM "Mario Golf 64 (Japan).n64" needs save "Mario Golf 64 (Japan).sav".
   Case, spaces and special characters must match.
2. Copy the .sav file to the SD card, in /saves (recommended) or next to the ROM.
3. Insert the SD card into the SummerCart 64 and load the game.
`

// writeJSON encodes the result, including failures, as indented JSON.
func writeJSON(w io.Writer, r types.ConversionResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// describeError adds a hint for the failures a user can act on.
func describeError(err error) string {
	msg := err.Error()
	switch {
	case errors.Is(err, sram.ErrSizeMismatch):
		return msg + " (use --force to convert anyway)"
	case errors.Is(err, sram.ErrInsufficientData):
		return msg + " (the dump is too short to hold a 32 KB SRAM save)"
	default:
		return msg
	}
}
