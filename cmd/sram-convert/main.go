// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the sram-convert CLI, which turns
// DreamDumper64 SRAM dumps into SummerCart 64 save files.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/sram-convert/internal/convert"
	"github.com/pdiddy/sram-convert/internal/history"
	"github.com/pdiddy/sram-convert/internal/logging"
	"github.com/pdiddy/sram-convert/internal/sram"
	"github.com/pdiddy/sram-convert/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is configured in PersistentPreRunE from --log-level.
var logger = zerolog.Nop()

var errNoInput = errors.New("no input file given")

// rootCmd converts a single dump; subcommands cover watching, history and
// the marker table.
var rootCmd = &cobra.Command{
	Use:   "sram-convert <input.ram|input.fla> [output.sav]",
	Short: "Convert N64 SRAM saves from DreamDumper64 to SummerCart 64 format",
	Long: `sram-convert converts N64 SRAM save files dumped by DreamDumper64 into the
raw format SummerCart 64 loads.

DreamDumper64 writes 128 KB (131,072 byte) files. For SRAM games the save is
the first 32 KB; sram-convert extracts it unchanged (no byte swapping) and
writes a .sav file next to the input unless an output path is given.

Games using 256 Kbit SRAM include 1080 Snowboarding, F-Zero X, Harvest Moon 64,
The Legend of Zelda: Ocarina of Time, Major League Baseball featuring Ken
Griffey Jr., Mario Golf, The New Tetris, Ogre Battle 64, Pocket Monsters
Stadium, Resident Evil 2, Super Smash Bros., WCW/NWO Revenge and WWF
Wrestlemania 2000. EEPROM games (Super Mario 64, Mario Kart 64) and FlashRAM
games (Paper Mario, Majora's Mask) are not supported.

A dump whose name matches a subcommand (watch, batch, history, markers,
version) must be given with a path prefix, e.g. "sram-convert ./history".`,
	Example: `  sram-convert ROMF.ram
  sram-convert ROM.fla "Mario Golf 64.sav"
  sram-convert --force --json short-dump.ram`,
	Args:          cobra.MaximumNArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(cmd.ErrOrStderr(), viper.GetString("log_level"))
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	RunE: runConvert,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./sram-convert.yaml or ~/.config/sram-convert/sram-convert.yaml)")
	pf.String("log-level", logging.DefaultLevel, "log level: trace, debug, info, warn, error")
	pf.String("markers", "", "YAML or TOML file with extra game markers")
	pf.Bool("history", false, "record conversions in the history database")
	pf.String("history-db", "", "history database path (default ~/.config/sram-convert/history.db)")

	f := rootCmd.Flags()
	f.BoolP("force", "y", false, "convert dumps with an unexpected size without asking")
	f.Bool("no-input", false, "never prompt; decline dumps with an unexpected size")
	f.String("ext", types.DefaultOutputExt, "output extension when no output path is given")
	f.Bool("json", false, "print the conversion result as JSON")

	bindFlags(map[string]*pflag.Flag{
		"log_level":       pf.Lookup("log-level"),
		"markers":         pf.Lookup("markers"),
		"history.enabled": pf.Lookup("history"),
		"history.db":      pf.Lookup("history-db"),
		"force":           f.Lookup("force"),
		"ext":             f.Lookup("ext"),
	})
}

func bindFlags(flags map[string]*pflag.Flag) {
	for key, flag := range flags {
		if err := viper.BindPFlag(key, flag); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", flag.Name, err))
		}
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("sram-convert")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "sram-convert"))
		}
	}

	viper.SetDefault("watch.settle", "750ms")
	viper.SetEnvPrefix("SRAM_CONVERT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig collects settings from viper, where flags, environment and the
// config file have already been merged.
func loadConfig() types.Config {
	return types.Config{
		Conversion: types.ConversionConfig{
			Force:       viper.GetBool("force"),
			OutputExt:   viper.GetString("ext"),
			MarkersFile: viper.GetString("markers"),
		},
		History: types.HistoryConfig{
			Enabled:    viper.GetBool("history.enabled"),
			DBPath:     viper.GetString("history.db"),
			MaxResults: viper.GetInt("history.max_results"),
		},
		Watch: types.WatchConfig{
			Dir:        viper.GetString("watch.dir"),
			Settle:     viper.GetDuration("watch.settle"),
			Extensions: viper.GetStringSlice("watch.extensions"),
		},
		LogLevel: viper.GetString("log_level"),
	}
}

// loadMarkers returns the built-in marker table followed by any markers
// from the configured marker file.
func loadMarkers(cfg types.ConversionConfig) (sram.MarkerTable, error) {
	table := sram.DefaultMarkers()
	if cfg.MarkersFile == "" {
		return table, nil
	}
	extra, err := sram.LoadMarkerFile(cfg.MarkersFile)
	if err != nil {
		return nil, err
	}
	logger.Debug().Int("count", len(extra)).Str("file", cfg.MarkersFile).Msg("loaded markers")
	return table.With(extra...), nil
}

// conversionOptions builds the options shared by the convert and watch
// commands. The returned cleanup closes the history store, if one was opened.
func conversionOptions(cfg types.Config, confirmer convert.Confirmer) (convert.Options, func(), error) {
	markers, err := loadMarkers(cfg.Conversion)
	if err != nil {
		return convert.Options{}, nil, err
	}

	opts := convert.Options{
		ConversionConfig: cfg.Conversion,
		Markers:          markers,
		Confirmer:        confirmer,
		Logger:           &logger,
	}

	cleanup := func() {}
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History)
		if err != nil {
			return convert.Options{}, nil, err
		}
		logger.Debug().Str("db", store.Path()).Msg("recording history")
		opts.Recorder = store
		cleanup = func() { store.Close() }
	}
	return opts, cleanup, nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		cmd.Help()
		return errNoInput
	}

	cfg := loadConfig()

	var confirmer convert.Confirmer = newPromptConfirmer(cmd.InOrStdin(), cmd.ErrOrStderr())
	if noInput, _ := cmd.Flags().GetBool("no-input"); noInput {
		confirmer = convert.NeverConfirm
	}

	opts, cleanup, err := conversionOptions(cfg, confirmer)
	if err != nil {
		return err
	}
	defer cleanup()

	req := convert.Request{Input: args[0]}
	if len(args) > 1 {
		req.Output = args[1]
	}

	result, convErr := convert.ConvertFile(cmd.Context(), req, opts, cmd.ErrOrStderr())

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
			return err
		}
	} else if convErr == nil {
		printReport(cmd.OutOrStdout(), result)
	}

	return convErr
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errNoInput) {
			fmt.Fprintln(os.Stderr, "Error:", describeError(err))
		}
		os.Exit(1)
	}
}
