// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/sram-convert/internal/convert"
)

var batchCmd = &cobra.Command{
	Use:   "batch <dump>...",
	Short: "Convert several dumps in one run",
	Long: `Batch converts each dump to a save file next to it, printing one status line
per dump and a summary. Existing save files are skipped unless --overwrite is
given. The exit code is 1 when any dump failed or was declined.`,
	Example: `  sram-convert batch /mnt/sd/*.ram
  sram-convert batch --no-input --overwrite ROMF.ram ROMG.ram`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.BoolP("force", "y", false, "convert dumps with an unexpected size without asking")
	f.Bool("no-input", false, "never prompt; decline dumps with an unexpected size")
	f.Bool("overwrite", false, "replace save files that already exist")
	f.String("ext", "", "output extension (default .sav)")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if force, _ := cmd.Flags().GetBool("force"); force {
		cfg.Conversion.Force = true
	}
	if ext, _ := cmd.Flags().GetString("ext"); ext != "" {
		cfg.Conversion.OutputExt = ext
	}
	overwrite, _ := cmd.Flags().GetBool("overwrite")
	cfg.Conversion.SkipExisting = !overwrite

	var confirmer convert.Confirmer = newPromptConfirmer(cmd.InOrStdin(), cmd.ErrOrStderr())
	if noInput, _ := cmd.Flags().GetBool("no-input"); noInput {
		confirmer = convert.NeverConfirm
	}

	opts, cleanup, err := conversionOptions(cfg, confirmer)
	if err != nil {
		return err
	}
	defer cleanup()

	batch := convert.ConvertPaths(cmd.Context(), args, opts, cmd.OutOrStdout())
	if err := cmd.Context().Err(); err != nil {
		return err
	}
	if batch.HasFailures() {
		return fmt.Errorf("%d of %d dumps failed or were declined", batch.Failed+batch.Declined, batch.Total())
	}
	return nil
}
