package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Captain-Panda2024/TOPOS-Xi/internal/diag"
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "check a source file, then execute its entry-point mapping",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(cmd)
		if err != nil {
			return err
		}

		entry, err := cmd.Flags().GetString("entry")
		if err != nil {
			return err
		}

		result, err := runProgram(cfg, args[0], entry)
		if err != nil {
			fmt.Fprintln(os.Stderr, diag.Explain(err))
			os.Exit(1)
		}

		if result != nil {
			fmt.Println(result)
		}

		return nil
	},
}

func init() {
	runCmd.Flags().String("entry", "main", "mapping to invoke after initialization")
}
