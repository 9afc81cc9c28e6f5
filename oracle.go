// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package teq

import (
	"context"
	"io"
	"math/big"
	"math/rand"
)

// Circuit is a compiled circuit, as returned by an Oracle.
type Circuit interface {
	// Name is the name given to Compile, usually a file name.
	Name() string
	// Varnum is the number of variables declared by the circuit.
	Varnum() int
}

// LiteralWeighter gives the weight of every literal. Weights and
// LiteralWeights implement this interface.
type LiteralWeighter interface {
	Literal(l int) *big.Rat
}

// Assignment is a sequence of literals, one for each variable of a sampling
// set, sorted by variable.
type Assignment []int

// Oracle compiles circuits, computes their exact weighted counts and draws
// weighted random satisfying assignments. Circuits returned by Compile must be
// safe for concurrent use by Annotate and Sample.
type Oracle interface {
	// Declare returns the number of variables declared in the header of a
	// circuit, without compiling it.
	Declare(ctx context.Context, name string, r io.Reader) (int, error)
	// Compile reads a circuit. Errors wrap ErrCompilation.
	Compile(ctx context.Context, name string, r io.Reader) (Circuit, error)
	// Annotate returns the weighted count of c: the sum over all satisfying
	// assignments of the product of their literal weights.
	Annotate(ctx context.Context, c Circuit, w LiteralWeighter) (*big.Rat, error)
	// Sample returns n independent satisfying assignments of c, drawn with
	// probability proportional to their weight and projected on the variables
	// of set. All randomness must come from rng.
	Sample(ctx context.Context, c Circuit, w LiteralWeighter, n int, set []int, rng *rand.Rand) ([]Assignment, error)
}

// LiteralWeights gives arbitrary rational weights to literals, without the
// constraint that the weights of l and -l sum to 1. Literals without an entry
// have weight 1/2.
type LiteralWeights map[int]*big.Rat

// Literal returns the weight of l.
func (lw LiteralWeights) Literal(l int) *big.Rat {
	if p, ok := lw[l]; ok {
		return new(big.Rat).Set(p)
	}
	return new(big.Rat).Set(half)
}
