// Package config defines the explicit, caller-constructed configuration
// threaded through the TOPOS-Xi pipeline. There is no package-level
// state and nothing is read from the environment: cmd/toposxi is the
// only place flags are parsed, and it always builds a Config by value
// and passes it down.
package config

import "math/rand"

// Config collects every knob the five pipeline stages need beyond the
// source program itself.
type Config struct {
	// StdLibPath is the directory StdLibLoader globs for *.htf manifest
	// files. Empty means "no standard library" (bare builtins only).
	StdLibPath string

	// EntryPoint names a mapping to invoke after every space's properties
	// have been initialized; empty means initialize only. No code in this
	// module reads this field: cmd/toposxi's run command passes its
	// --entry flag to the interpreter directly, and check does not run
	// the interpreter at all.
	EntryPoint string

	// MaxRecursionDepth caps mapping-call nesting before the
	// interpreter fails with a RuntimeError. <= 0 selects
	// interp.DefaultMaxDepth.
	MaxRecursionDepth int

	// Strict makes an unresolved identifier that would otherwise fall
	// back to its own name (see spec.md's note on this fallback "hiding
	// errors") fail the run instead.
	Strict bool

	// Rand is the source of randomness Measurement draws from. When Rand
	// is nil, RandSource builds a fresh *rand.Rand from a given seed.
	Rand *rand.Rand
}

// Default returns the zero-value-sane Config: no standard library, no
// entry point, the interpreter's default recursion depth, strict mode
// off, and no random source (Rand is nil).
func Default() Config {
	return Config{}
}

// RandSource returns c.Rand, seeding a fresh one from seed when c.Rand
// is nil. Passing the same seed across runs makes Measurement
// deterministic; cmd/toposxi wires this from a --seed flag.
func (c Config) RandSource(seed int64) *rand.Rand {
	if c.Rand != nil {
		return c.Rand
	}

	return rand.New(rand.NewSource(seed))
}
