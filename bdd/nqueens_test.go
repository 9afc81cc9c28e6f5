// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bdd

import (
	"math/big"
	"testing"
)

// nqueens returns a BDD whose models are the solutions of the N-Queens
// problem. Variable i*N+j is true when there is a queen on row i and column j.
// With N = 4, one of the two solutions is:
//
//	. X . .
//	. . . X
//	X . . .
//	. . X .
func nqueens(N int) (*BDD, Node) {
	bdd, _ := New(N*N, Nodesize(N*N*256), Cachesize(N*N*64))
	square := func(i, j int) Node { return bdd.Ithvar(i*N + j) }
	attacks := func(i, j, k, l int) bool {
		di, dj := k-i, l-j
		return di == 0 || dj == 0 || di == dj || di == -dj
	}
	queen := bdd.True()
	for i := 0; i < N; i++ {
		row := bdd.False()
		for j := 0; j < N; j++ {
			row = bdd.Or(row, square(i, j))
		}
		queen = bdd.And(queen, row)
	}
	// no two queens on squares that attack each other
	for p := 0; p < N*N; p++ {
		for q := p + 1; q < N*N; q++ {
			if attacks(p/N, p%N, q/N, q%N) {
				queen = bdd.And(queen, bdd.Imp(bdd.Ithvar(p), bdd.Not(bdd.Ithvar(q))))
			}
		}
	}
	return bdd, queen
}

func TestNQueens(t *testing.T) {
	expected := []int64{1, 0, 0, 2, 10, 4}
	for k, e := range expected {
		bdd, n := nqueens(k + 1)
		if bdd.Errored() {
			t.Fatalf("N=%d: %s", k+1, bdd.Error())
		}
		if actual := bdd.Satcount(n); actual.Cmp(big.NewInt(e)) != 0 {
			t.Errorf("N=%d: expected %d solutions, actual %s", k+1, e, actual)
		}
		// each solution has probability 2^-(N*N) under the uniform weighting
		wc := bdd.WeightedCount(n, Uniform((k+1)*(k+1)))
		count := new(big.Rat).Mul(wc, new(big.Rat).SetInt(new(big.Int).Lsh(big.NewInt(1), uint((k+1)*(k+1)))))
		if count.Cmp(new(big.Rat).SetInt64(e)) != 0 {
			t.Errorf("N=%d: weighted count inconsistent with Satcount (%s)", k+1, count.RatString())
		}
	}
}

func BenchmarkNQueens(b *testing.B) {
	for i := 0; i < b.N; i++ {
		nqueens(7)
	}
}
