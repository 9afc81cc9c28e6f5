// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bdd

import (
	"fmt"
	"math/big"
)

// Not returns the negation of the function denoted by n, obtained by swapping
// the two terminals.
func (b *BDD) Not(n Node) Node {
	if err := b.checknode(n); err != nil {
		return b.seterror("wrong operand in call to Not (%d)", n)
	}
	return Node(b.not(int(n)))
}

func (b *BDD) not(n int) int {
	if n < 2 {
		return n ^ 1
	}
	if res := b.matchnot(n); res >= 0 {
		return res
	}
	low, high := b.not(b.low(n)), b.not(b.high(n))
	if low < 0 || high < 0 {
		return -1
	}
	return b.setnot(n, b.makenode(b.level(n), low, high))
}

// Apply combines left and right with the binary operator op, for instance
// OPand or OPimp. The truth table of each operator is given in opres.
func (b *BDD) Apply(left Node, right Node, op Operator) Node {
	if err := b.checknode(left); err != nil {
		return b.seterror("wrong operand in call to Apply %s(left: %d, right: ...)", op, left)
	}
	if err := b.checknode(right); err != nil {
		return b.seterror("wrong operand in call to Apply %s(left: ..., right: %d)", op, right)
	}
	if op < OPand || op > OPinvimp {
		return b.seterror("unauthorized operation (%s) in apply", op)
	}
	b.applycache.op = op
	return Node(b.apply(int(left), int(right)))
}

// shortcut returns the result of the current operation when it can be decided
// without recursion: both operands are terminals, the operands are equal, or
// one terminal operand absorbs or is neutral for the operator.
func (b *BDD) shortcut(left, right int) (int, bool) {
	table := opres[b.applycache.op]
	switch {
	case left < 2 && right < 2:
		return int(table[left][right]), true
	case left == right:
		// only the diagonal of the truth table matters
		if table[0][0] == table[1][1] {
			return int(table[0][0]), true
		}
		return left, table[0][0] == 0
	case left < 2:
		return constrow(table[left][0], table[left][1], right)
	case right < 2:
		return constrow(table[0][right], table[1][right], left)
	}
	return 0, false
}

// constrow decides an operation where one operand is a terminal. Values f0 and
// f1 are the results when the other operand, n, is false or true.
func constrow(f0, f1 Node, n int) (int, bool) {
	switch {
	case f0 == f1:
		return int(f0), true
	case f0 == 0:
		return n, true
	}
	return 0, false
}

func (b *BDD) apply(left int, right int) int {
	if left < 0 || right < 0 {
		return -1
	}
	if res, ok := b.shortcut(left, right); ok {
		return res
	}
	if res := b.matchapply(left, right); res >= 0 {
		return res
	}
	lvl := min(b.level(left), b.level(right))
	l0, l1 := b.cofactors(left, lvl)
	r0, r1 := b.cofactors(right, lvl)
	low, high := b.apply(l0, r0), b.apply(l1, r1)
	if low < 0 || high < 0 {
		return -1
	}
	return b.setapply(left, right, b.makenode(lvl, low, high))
}

// cofactors returns the low and high successors of n with respect to the
// variable at level lvl. A node below lvl does not depend on it.
func (b *BDD) cofactors(n int, lvl int32) (int, int) {
	if b.level(n) != lvl {
		return n, n
	}
	return b.low(n), b.high(n)
}

// Ite computes the BDD for (f and g) or (not f and h) in a single traversal.
func (b *BDD) Ite(f, g, h Node) Node {
	for k, n := range [3]Node{f, g, h} {
		if err := b.checknode(n); err != nil {
			return b.seterror("wrong operand in call to Ite (operand %d: %d)", k+1, n)
		}
	}
	return Node(b.ite(int(f), int(g), int(h)))
}

func (b *BDD) ite(f, g, h int) int {
	switch {
	case f < 0 || g < 0 || h < 0:
		return -1
	case f == 1:
		return g
	case f == 0:
		return h
	case g == h:
		return g
	case g == 1 && h == 0:
		return f
	case g == 0 && h == 1:
		return b.not(f)
	}
	if res := b.matchite(f, g, h); res >= 0 {
		return res
	}
	lvl := min(b.level(f), b.level(g), b.level(h))
	f0, f1 := b.cofactors(f, lvl)
	g0, g1 := b.cofactors(g, lvl)
	h0, h1 := b.cofactors(h, lvl)
	low, high := b.ite(f0, g0, h0), b.ite(f1, g1, h1)
	if low < 0 || high < 0 {
		return -1
	}
	return b.setite(f, g, h, b.makenode(lvl, low, high))
}

// And returns the conjunction of nodes n. The conjunction of an empty list is
// True.
func (b *BDD) And(n ...Node) Node {
	return b.fold(bddone, OPand, n)
}

// Or returns the disjunction of nodes n. The disjunction of an empty list is
// False.
func (b *BDD) Or(n ...Node) Node {
	return b.fold(bddzero, OPor, n)
}

func (b *BDD) fold(res Node, op Operator, n []Node) Node {
	for _, v := range n {
		res = b.Apply(res, v, op)
	}
	return res
}

// Imp returns the implication n1 => n2.
func (b *BDD) Imp(n1, n2 Node) Node {
	return b.Apply(n1, n2, OPimp)
}

// Equiv returns the equivalence n1 <=> n2.
func (b *BDD) Equiv(n1, n2 Node) Node {
	return b.Apply(n1, n2, OPbiimp)
}

// Satcount returns the number of assignments of the Varnum variables that
// satisfy n. It is the weighted count of n when every literal has weight 1.
// The result is zero, and the error status of b is set, if n is not valid.
func (b *BDD) Satcount(n Node) *big.Int {
	if err := b.checknode(n); err != nil {
		b.seterror("wrong operand in call to Satcount (%d)", n)
		return big.NewInt(0)
	}
	one := big.NewRat(1, 1)
	w := make(Weights, b.varnum)
	for k := range w {
		w[k] = [2]*big.Rat{one, one}
	}
	wc := b.newwcounter(w)
	res := new(big.Rat).Mul(wc.count(int(n)), wc.span(0, b.level(int(n))))
	return new(big.Int).Set(res.Num())
}

// Allsat calls f on every cube of n, that is on every path from n to the
// terminal True. Each call receives a slice of length Varnum where entry k is
// 0 if level k is false on the path, 1 if it is true, and -1 if the path does
// not test it. The slice is reused between calls. We stop at the first error
// returned by f.
func (b *BDD) Allsat(n Node, f func([]int) error) error {
	if err := b.checknode(n); err != nil {
		return fmt.Errorf("wrong node in call to Allsat: %w", err)
	}
	cube := make([]int, b.varnum)
	for k := range cube {
		cube[k] = -1
	}
	return b.allsat(int(n), cube, f)
}

func (b *BDD) allsat(n int, cube []int, f func([]int) error) error {
	switch n {
	case 0:
		return nil
	case 1:
		return f(cube)
	}
	lvl := b.level(n)
	for v, child := range [2]int{b.low(n), b.high(n)} {
		if child == 0 {
			continue
		}
		cube[lvl] = v
		for k := lvl + 1; k < b.level(child); k++ {
			cube[k] = -1
		}
		if err := b.allsat(child, cube, f); err != nil {
			return err
		}
	}
	cube[lvl] = -1
	return nil
}
