// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bdd

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
)

//********************************************************************************************

func TestIte(t *testing.T) {
	bdd, _ := New(4, Nodesize(50))
	n1 := bdd.And(bdd.Ithvar(0), bdd.Ithvar(2), bdd.Ithvar(3))
	n2 := bdd.And(bdd.Ithvar(0), bdd.Ithvar(3))
	actual := bdd.Equiv(bdd.Ite(n1, n2, bdd.Not(n2)), bdd.Or(bdd.And(n1, n2), bdd.And(bdd.Not(n1), bdd.Not(n2))))
	if actual != bdd.True() {
		t.Errorf("ite(f,g,h) <=> (f and g) or (-f and h): expected true, actual false")
	}
}

//********************************************************************************************

// eval returns the value of n under assignment a, indexed by level.
func eval(bdd *BDD, n Node, a []int) bool {
	k := int(n)
	for k > 1 {
		if a[bdd.level(k)] == 1 {
			k = bdd.high(k)
		} else {
			k = bdd.low(k)
		}
	}
	return k == 1
}

func TestOperatorTables(t *testing.T) {
	bdd, _ := New(2)
	a, b := bdd.Ithvar(0), bdd.Ithvar(1)
	operands := map[string]Node{
		"false": bdd.False(),
		"true":  bdd.True(),
		"a":     a,
		"-a":    bdd.NIthvar(0),
		"b":     b,
	}
	for op := OPand; op <= OPinvimp; op++ {
		for ln, left := range operands {
			for rn, right := range operands {
				n := bdd.Apply(left, right, op)
				for va := 0; va < 2; va++ {
					for vb := 0; vb < 2; vb++ {
						asg := []int{va, vb}
						l, r := 0, 0
						if eval(bdd, left, asg) {
							l = 1
						}
						if eval(bdd, right, asg) {
							r = 1
						}
						want := opres[op][l][r] == 1
						if got := eval(bdd, n, asg); got != want {
							t.Errorf("%s(%s, %s) with a=%d, b=%d: expected %v, actual %v", op, ln, rn, va, vb, want, got)
						}
					}
				}
			}
		}
	}
	if bdd.Errored() {
		t.Fatal(bdd.Error())
	}
}

//********************************************************************************************

// TestOperations checks with Allsat that the cubes of a node are disjoint and
// cover exactly its satisfying assignments.
func TestOperations(t *testing.T) {
	bdd, _ := New(4, Nodesize(1000), Cachesize(1000))
	varnum := 4

	check := func(x Node) error {
		covered := make([]int, 1<<varnum)
		err := bdd.Allsat(x, func(cube []int) error {
			for m := 0; m < 1<<varnum; m++ {
				matches := true
				for k, v := range cube {
					if v >= 0 && (m>>k)&1 != v {
						matches = false
					}
				}
				if matches {
					covered[m]++
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		asg := make([]int, varnum)
		for m := range covered {
			for k := range asg {
				asg[k] = (m >> k) & 1
			}
			want := 0
			if eval(bdd, x, asg) {
				want = 1
			}
			if covered[m] != want {
				return fmt.Errorf("assignment %v covered %d times, expected %d", asg, covered[m], want)
			}
		}
		return nil
	}

	a, b, c, d := bdd.Ithvar(0), bdd.Ithvar(1), bdd.Ithvar(2), bdd.Ithvar(3)
	na, nb, nc, nd := bdd.Not(a), bdd.Not(b), bdd.Not(c), bdd.Not(d)

	tests := []Node{
		bdd.True(),
		bdd.False(),
		// a & b | !a & !b
		bdd.Or(bdd.And(a, b), bdd.And(na, nb)),
		// a & b | c & d
		bdd.Or(bdd.And(a, b), bdd.And(c, d)),
		// a & !b | a & !d | a & b & !c
		bdd.Or(bdd.And(a, nb), bdd.And(a, nd), bdd.And(a, b, nc)),
	}
	for i := 0; i < varnum; i++ {
		tests = append(tests, bdd.Ithvar(i), bdd.NIthvar(i))
	}
	rng := rand.New(rand.NewSource(1))
	set := bdd.True()
	for i := 0; i < 50; i++ {
		v := rng.Intn(varnum)
		if rng.Intn(2) == 0 {
			set = bdd.Or(set, bdd.And(bdd.Ithvar(v), bdd.NIthvar(rng.Intn(varnum))))
		} else {
			set = bdd.And(set, bdd.Or(bdd.NIthvar(v), bdd.Ithvar(rng.Intn(varnum))))
		}
		tests = append(tests, set)
	}
	for k, n := range tests {
		if err := check(n); err != nil {
			t.Errorf("test %d: %s", k, err)
		}
	}
}

//********************************************************************************************

func TestSatcount(t *testing.T) {
	bdd, _ := New(6)
	tests := []struct {
		name     string
		n        Node
		expected int64
	}{
		{"true", bdd.True(), 64},
		{"false", bdd.False(), 0},
		{"x0", bdd.Ithvar(0), 32},
		{"x5", bdd.Ithvar(5), 32},
		{"x0 & x3", bdd.And(bdd.Ithvar(0), bdd.Ithvar(3)), 16},
		{"x1 | x4", bdd.Or(bdd.Ithvar(1), bdd.Ithvar(4)), 48},
		{"x2 xor x5", bdd.Apply(bdd.Ithvar(2), bdd.Ithvar(5), OPxor), 32},
	}
	for _, tt := range tests {
		if actual := bdd.Satcount(tt.n); actual.Int64() != tt.expected {
			t.Errorf("Satcount(%s): expected %d, actual %s", tt.name, tt.expected, actual)
		}
	}
}

//********************************************************************************************

func TestErrorStatus(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Errorf("New(0): expected error")
	}
	bdd, _ := New(2)
	if n := bdd.Ithvar(2); n >= 0 {
		t.Errorf("Ithvar(2): expected invalid node, actual %d", n)
	}
	if !bdd.Errored() {
		t.Fatalf("expected error status after illegal Ithvar")
	}
	// errors are chained
	bdd.Not(Node(42))
	if bdd.Err() == nil || bdd.Error() == "" {
		t.Fatalf("expected chained error status")
	}
	small, _ := New(8, Maxnodesize(20))
	n := small.True()
	for i := 0; i < 8; i += 2 {
		n = small.Or(n, small.And(small.Ithvar(i), small.Ithvar(i+1)))
		n = small.Apply(n, small.Apply(small.Ithvar(i), small.Ithvar(i+1), OPxor), OPxor)
	}
	if !errors.Is(small.Err(), ErrMemory) {
		t.Errorf("expected ErrMemory, actual %v", small.Err())
	}
}
