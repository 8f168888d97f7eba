// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pdiddy/sram-convert/internal/convert"
	"github.com/pdiddy/sram-convert/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Convert dumps as they appear in a directory",
	Long: `Watch converts every .ram and .fla dump in a directory that has no .sav yet,
then keeps watching and converts new dumps once they stop changing. Existing
save files are never overwritten. Dumps with an unexpected size are declined
unless --force is given. Stop with Ctrl-C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("settle", 0, "quiet period after the last write before converting (default 750ms)")
	watchCmd.Flags().Bool("force", false, "convert dumps with an unexpected size")
	watchCmd.Flags().StringSlice("dump-ext", nil, "dump extensions to watch (default .ram,.fla)")

	bindFlags(map[string]*pflag.Flag{
		"watch.settle":     watchCmd.Flags().Lookup("settle"),
		"watch.extensions": watchCmd.Flags().Lookup("dump-ext"),
	})

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if len(args) > 0 {
		cfg.Watch.Dir = args[0]
	}
	if cfg.Watch.Dir == "" {
		cfg.Watch.Dir = "."
	}
	if force, _ := cmd.Flags().GetBool("force"); force {
		cfg.Conversion.Force = true
	}

	opts, cleanup, err := conversionOptions(cfg, convert.NeverConfirm)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watch.New(cfg.Watch, opts, cmd.OutOrStdout())
	if err := w.Run(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "stopped")
	return nil
}
