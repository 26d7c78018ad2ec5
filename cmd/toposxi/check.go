package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Captain-Panda2024/TOPOS-Xi/internal/diag"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "lex, parse, load the standard library, and type/topology-check a source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(cmd)
		if err != nil {
			return err
		}

		if _, _, err := check(cfg, args[0]); err != nil {
			fmt.Fprintln(os.Stderr, diag.Explain(err))
			os.Exit(1)
		}

		return nil
	},
}
