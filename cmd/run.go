package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/patrikhermansson/metricspace/runner"
)

// NewRunCmd builds the "run" subcommand: load a config file (or fall
// back to a built-in default), build the configured index, and
// execute its run mode.
func NewRunCmd() *cobra.Command {
	var configPath string

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Build an index from a config file and execute its queries",
		RunE: func(c *cobra.Command, args []string) error {
			return runDriver(configPath)
		},
	}
	runCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a JSON configuration file")

	return runCmd
}

func init() {
	// "run" is also the root command's default action, per spec.md §6.
	var configPath string
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a JSON configuration file")
	rootCmd.RunE = func(c *cobra.Command, args []string) error {
		return runDriver(configPath)
	}
}

func runDriver(configPath string) error {
	cfg := runner.DefaultConfig()
	if configPath != "" {
		loaded, err := runner.LoadConfig(configPath)
		if err != nil {
			log.Error().Err(err).Str("path", configPath).Msg("cmd: failed to load config")
			return err
		}
		cfg = loaded
	}

	idx, d, data, err := runner.Build(cfg)
	if err != nil {
		log.Error().Err(err).Msg("cmd: failed to build index")
		return err
	}

	if err := runner.Run(cfg, idx, d, data, os.Stdin, os.Stdout); err != nil {
		log.Error().Err(err).Msg("cmd: run failed")
		return err
	}

	fmt.Fprintln(os.Stdout, "done")
	return nil
}
