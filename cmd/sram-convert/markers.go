// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/sram-convert/internal/sram"
)

var markersCmd = &cobra.Command{
	Use:   "markers",
	Short: "Print the game markers used for detection",
	Long: `Markers prints the detection table in the order it is searched: the
built-in markers first, then any from --markers. The first marker found in
the first 1 KB of the save wins. Detection is informational only and never
changes the bytes written.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadMarkers(loadConfig().Conversion)
		if err != nil {
			return err
		}
		printMarkers(cmd.OutOrStdout(), table)
		return nil
	},
}

func printMarkers(w io.Writer, table sram.MarkerTable) {
	for i, m := range table {
		fmt.Fprintf(w, "%2d  %-24s  %s\n", i+1, m.String(), m.Label)
	}
}

func init() {
	rootCmd.AddCommand(markersCmd)
}
