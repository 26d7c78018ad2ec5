package main

import (
	"os"

	"github.com/Captain-Panda2024/TOPOS-Xi/internal/analyzer"
	"github.com/Captain-Panda2024/TOPOS-Xi/internal/ast"
	"github.com/Captain-Panda2024/TOPOS-Xi/internal/config"
	"github.com/Captain-Panda2024/TOPOS-Xi/internal/interp"
	"github.com/Captain-Panda2024/TOPOS-Xi/internal/lexer"
	"github.com/Captain-Panda2024/TOPOS-Xi/internal/parser"
	"github.com/Captain-Panda2024/TOPOS-Xi/internal/stdlib"
	"github.com/Captain-Panda2024/TOPOS-Xi/internal/symbols"
)

// check runs stages 1-4 (lexer, parser, stdlib loader, analyzer) against
// the source file at path, returning the resolved symbol table and
// parsed program on success.
func check(cfg config.Config, path string) (*ast.Program, symbols.Table, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	toks, err := lexer.New(string(src), logger).Tokenize()
	if err != nil {
		return nil, nil, err
	}

	prog, err := parser.ParseProgram(toks)
	if err != nil {
		return nil, nil, err
	}

	seed := symbols.New()
	if cfg.StdLibPath != "" {
		seed, err = stdlib.New(cfg.StdLibPath, logger).Load()
		if err != nil {
			return nil, nil, err
		}
	}

	a := analyzer.New(seed, logger)
	if err := a.Analyze(prog); err != nil {
		return nil, nil, err
	}

	return prog, a.Table(), nil
}

// runProgram performs check's four stages, then executes entryPoint
// (stage 5).
func runProgram(cfg config.Config, path, entryPoint string) (any, error) {
	prog, table, err := check(cfg, path)
	if err != nil {
		return nil, err
	}

	in := interp.New(table, cfg.Rand, cfg.MaxRecursionDepth, logger, cfg.Strict)

	return in.Run(prog, entryPoint)
}
