package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Captain-Panda2024/TOPOS-Xi/internal/config"
)

var logger *zap.Logger

var rootCmd = &cobra.Command{
	Use:           "toposxi",
	Short:         "toposxi checks and runs TOPOS-Xi source files",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return err
		}

		cfg := zap.NewProductionConfig()
		if verbose {
			cfg = zap.NewDevelopmentConfig()
		}

		l, err := cfg.Build()
		if err != nil {
			return err
		}

		logger = l

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("stdlib", "", "directory of .htf standard-library manifests")
	rootCmd.PersistentFlags().Int("max-depth", 0, "maximum mapping-call recursion depth (0 selects the interpreter default)")
	rootCmd.PersistentFlags().Bool("strict", false, "fail on an unresolved identifier instead of falling back to its name")
	rootCmd.PersistentFlags().Int64("seed", 1, "seed for the Measurement random source")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug-level logging")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(runCmd)
}

// buildConfig reads cmd's persistent flags into a config.Config.
func buildConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config

	stdlib, err := cmd.Flags().GetString("stdlib")
	if err != nil {
		return cfg, err
	}

	maxDepth, err := cmd.Flags().GetInt("max-depth")
	if err != nil {
		return cfg, err
	}

	strict, err := cmd.Flags().GetBool("strict")
	if err != nil {
		return cfg, err
	}

	seed, err := cmd.Flags().GetInt64("seed")
	if err != nil {
		return cfg, err
	}

	cfg.StdLibPath = stdlib
	cfg.MaxRecursionDepth = maxDepth
	cfg.Strict = strict
	cfg.Rand = cfg.RandSource(seed)

	return cfg, nil
}
