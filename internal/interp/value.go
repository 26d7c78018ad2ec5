package interp

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Pair is the runtime representation of a product-type value, produced
// by pair(a, b) and consumed by fst/snd.
type Pair struct {
	Left  any
	Right any
}

func (p Pair) String() string {
	return fmt.Sprintf("(%v, %v)", p.Left, p.Right)
}

// QuantumState is a single-qubit runtime value: a complex amplitude
// pair that collapses to a classical "0"/"1" the first time it is
// measured.
type QuantumState struct {
	Alpha, Beta complex128
	LastResult  string // "" until Measure is called
}

// NewQuantumState builds the equal-superposition state
// (|0> + |1>) / sqrt(2), the default for an uninitialized Qubit
// property.
func NewQuantumState() *QuantumState {
	v := complex(1/math.Sqrt2, 0)
	return &QuantumState{Alpha: v, Beta: v}
}

// NewBasisState builds a collapsed basis state: "0" -> |0>, "1" -> |1>.
func NewBasisState(bit string) *QuantumState {
	if bit == "1" {
		return &QuantumState{Alpha: 0, Beta: 1}
	}

	return &QuantumState{Alpha: 1, Beta: 0}
}

// Measure collapses the state using r for randomness, recording and
// returning the classical outcome. Measuring an already-collapsed
// state is idempotent (it keeps returning the same result), matching
// the original's overwrite-in-place semantics: alpha/beta are reset to
// the basis vector for the sampled outcome, so a second Measure call
// samples against probability 1/0 and reproduces the same bit.
func (q *QuantumState) Measure(r RandSource) string {
	p0 := cmplx.Abs(q.Alpha) * cmplx.Abs(q.Alpha)

	if r.Float64() < p0 {
		q.LastResult = "0"
	} else {
		q.LastResult = "1"
	}

	if q.LastResult == "0" {
		q.Alpha, q.Beta = 1, 0
	} else {
		q.Alpha, q.Beta = 0, 1
	}

	return q.LastResult
}

func (q *QuantumState) String() string {
	if q.LastResult != "" {
		return q.LastResult
	}

	return fmt.Sprintf("%.2f|0> + %.2f|1>", real(q.Alpha), real(q.Beta))
}

// RandSource is the injectable source of randomness a Measurement
// draws from, satisfied by *rand.Rand. Isolating it behind an
// interface keeps the interpreter's test suite deterministic.
type RandSource interface {
	Float64() float64
}
