// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bdd_test

import (
	"fmt"
	"math/big"

	"github.com/dalzilio/teq/bdd"
)

// This example shows the basic usage of the package: create a BDD, compute an
// expression and its (weighted) number of models.
func Example_basic() {
	// Create a new BDD with 3 variables and a node table of 100 entries
	// (initially).
	b, _ := bdd.New(3, bdd.Nodesize(100))
	// n == (x0 | x1) & !x2
	n := b.And(b.Or(b.Ithvar(0), b.Ithvar(1)), b.NIthvar(2))
	fmt.Printf("Number of sat. assignments: %s\n", b.Satcount(n))
	// Each variable is true with probability 1/4.
	w := make(bdd.Weights, 3)
	for k := range w {
		w[k] = [2]*big.Rat{big.NewRat(3, 4), big.NewRat(1, 4)}
	}
	fmt.Printf("Probability: %s\n", b.WeightedCount(n, w).RatString())
	// Output:
	// Number of sat. assignments: 3
	// Probability: 21/64
}
