package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vsariola/traverso/config"
	"github.com/vsariola/traverso/input"
	"github.com/vsariola/traverso/version"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:           "traverso",
	Short:         "Multitrack audio session player with an undoable command core",
	Version:       version.Short(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: <user config dir>/traverso/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug messages")
	rootCmd.AddCommand(playCmd, exportCmd, keysCmd, versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Long())
	},
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.New(config.Options{File: cfgFile})
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

// keyMapFile is the user key map, merged over the defaults when it exists.
func keyMapFile() string {
	dir, err := config.UserDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "keymap.yml")
}

func loadKeyMap(file string) (*input.KeyMap, error) {
	km := input.NewKeyMap()
	if file == "" {
		return km, nil
	}
	f, err := os.Open(file)
	if os.IsNotExist(err) {
		return km, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := km.Load(f); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return km, nil
}
