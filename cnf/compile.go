// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package cnf

import (
	"fmt"
	"sort"

	"github.com/dalzilio/teq/bdd"
)

// Compile builds the BDD of formula f, with variable i of the formula at level
// i-1. Options are passed to bdd.New. A formula with no variable is compiled
// into a BDD with one (unconstrained) variable, since a BDD needs at least
// one level.
func Compile(f *Formula, options ...bdd.Option) (*bdd.BDD, bdd.Node, error) {
	varnum := f.Varnum
	if varnum == 0 {
		varnum = 1
	}
	b, err := bdd.New(varnum, options...)
	if err != nil {
		return nil, -1, err
	}
	clauses := make([]bdd.Node, 0, len(f.Clauses))
	for k, c := range f.Clauses {
		n := b.False()
		for _, lit := range c {
			if lit > 0 {
				n = b.Or(n, b.Ithvar(lit-1))
			} else {
				n = b.Or(n, b.NIthvar(-lit-1))
			}
		}
		if b.Errored() {
			return nil, -1, fmt.Errorf("clause %d: %w", k+1, b.Err())
		}
		clauses = append(clauses, n)
	}
	// Conjoin the clauses bottom-up, starting with the ones whose top variable
	// is the deepest, which keeps intermediate results small on formulas where
	// clauses are local.
	sort.SliceStable(clauses, func(i, j int) bool {
		return level(b, clauses[i]) > level(b, clauses[j])
	})
	res := b.True()
	for _, n := range clauses {
		res = b.And(res, n)
		if b.Errored() {
			return nil, -1, b.Err()
		}
		if res == b.False() {
			break
		}
	}
	return b, res, nil
}

func level(b *bdd.BDD, n bdd.Node) int {
	if n == b.True() || n == b.False() {
		return b.Varnum()
	}
	return b.Label(n)
}
