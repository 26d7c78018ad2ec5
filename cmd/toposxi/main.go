// Command toposxi is the CLI driver for the TOPOS-Xi pipeline: a thin
// cobra binary that wires flags into an internal/config.Config and
// calls the lexer/parser/stdlib/analyzer/interpreter stages in order.
// It carries none of the tested logic itself.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
