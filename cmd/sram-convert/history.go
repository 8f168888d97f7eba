// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/sram-convert/internal/history"
	"github.com/pdiddy/sram-convert/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or export recorded conversions",
	Long: `History reads the conversion ledger written when --history is set (or
history.enabled is true in the config file). Use subcommands to list recent
conversions or export the ledger.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent conversions, newest first",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := history.Open(loadConfig().History)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(cmd.Context(), historyFilter(cmd))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatHistory(cmd.OutOrStdout(), entries, jsonOutput)
}

func formatHistory(w io.Writer, entries []history.Entry, jsonOutput bool) error {
	if jsonOutput {
		if entries == nil {
			entries = []history.Entry{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No conversions recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-20s  %-9s  %-30s  %-30s  %s\n", "When", "Status", "Input", "Game", "Fill")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, e := range entries {
		fmt.Fprintf(w, "%-20s  %-9s  %-30s  %-30s  %5.1f%%\n",
			e.ConvertedAt.Local().Format("2006-01-02 15:04:05"), e.Status,
			truncate(filepath.Base(e.Input), 30), truncate(e.Game, 30), e.FillRatio)
	}
	fmt.Fprintf(w, "\n%d entries\n", len(entries))
	return nil
}

// truncate shortens s to at most n characters, counting runes so multibyte
// labels are never cut mid-character.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the history to YAML or JSON",
	RunE:  runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")

	store, err := history.Open(loadConfig().History)
	if err != nil {
		return err
	}
	defer store.Close()

	filter := historyFilter(cmd)
	switch format {
	case "yaml", "":
		if out == "" {
			out = "history.yaml"
		}
		err = store.ExportYAML(cmd.Context(), filter, out)
	case "json":
		if out == "" {
			out = "history.json"
		}
		err = store.ExportJSON(cmd.Context(), filter, out)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", out)
	return nil
}

// --- shared helpers ---

func historyFilter(cmd *cobra.Command) history.Filter {
	game, _ := cmd.Flags().GetString("game")
	status, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")
	return history.Filter{
		Game:   game,
		Status: types.ConversionStatus(status),
		Limit:  limit,
	}
}

func init() {
	for _, c := range []*cobra.Command{historyListCmd, historyExportCmd} {
		c.Flags().String("game", "", "filter by detected game (substring)")
		c.Flags().String("status", "", "filter by status: converted, skipped, declined, failed")
	}
	historyListCmd.Flags().Int("limit", 0, "maximum number of entries (default 20)")
	historyListCmd.Flags().Bool("json", false, "output entries as JSON")
	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	historyExportCmd.Flags().String("out", "", "output file (default history.yaml or history.json)")

	historyCmd.AddCommand(historyListCmd, historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}
