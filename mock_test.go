// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package teq

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"math/rand"
	"sync/atomic"
)

// fn is a circuit given by its truth function; a[k] is the value of variable
// k+1.
type fn struct {
	name   string
	varnum int
	eval   func(a []bool) bool
}

func (c *fn) Name() string { return c.name }
func (c *fn) Varnum() int  { return c.varnum }

// models calls f on every satisfying assignment of c.
func (c *fn) models(f func(a []bool)) {
	a := make([]bool, c.varnum)
	for m := 0; m < 1<<c.varnum; m++ {
		for k := range a {
			a[k] = (m>>k)&1 == 1
		}
		if c.eval(a) {
			f(a)
		}
	}
}

func mass(a []bool, w LiteralWeighter) *big.Rat {
	res := big.NewRat(1, 1)
	for k, v := range a {
		if v {
			res.Mul(res, w.Literal(k+1))
		} else {
			res.Mul(res, w.Literal(-k-1))
		}
	}
	return res
}

// mockOracle counts by enumeration and samples by inversion of the cumulative
// distribution.
type mockOracle struct {
	circuits  map[string]*fn
	declares  atomic.Int64
	compiles  atomic.Int64
	annotates atomic.Int64
	samples   atomic.Int64
}

func newMock(circuits ...*fn) *mockOracle {
	o := &mockOracle{circuits: make(map[string]*fn)}
	for _, c := range circuits {
		o.circuits[c.name] = c
	}
	return o
}

func (o *mockOracle) Declare(ctx context.Context, name string, r io.Reader) (int, error) {
	o.declares.Add(1)
	c, ok := o.circuits[name]
	if !ok {
		return 0, fmt.Errorf("%w: unknown circuit %s", ErrCompilation, name)
	}
	return c.varnum, nil
}

func (o *mockOracle) Compile(ctx context.Context, name string, r io.Reader) (Circuit, error) {
	o.compiles.Add(1)
	c, ok := o.circuits[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown circuit %s", ErrCompilation, name)
	}
	return c, nil
}

func (o *mockOracle) Annotate(ctx context.Context, c Circuit, w LiteralWeighter) (*big.Rat, error) {
	o.annotates.Add(1)
	res := new(big.Rat)
	c.(*fn).models(func(a []bool) {
		res.Add(res, mass(a, w))
	})
	return res, nil
}

func (o *mockOracle) Sample(ctx context.Context, c Circuit, w LiteralWeighter, n int, set []int, rng *rand.Rand) ([]Assignment, error) {
	o.samples.Add(1)
	f := c.(*fn)
	for _, v := range set {
		if v < 1 || v > f.varnum {
			return nil, fmt.Errorf("variable %d not in circuit", v)
		}
	}
	var models [][]bool
	var cumul []float64
	total := 0.0
	f.models(func(a []bool) {
		p, _ := mass(a, w).Float64()
		total += p
		models = append(models, append([]bool(nil), a...))
		cumul = append(cumul, total)
	})
	if total == 0 {
		return nil, fmt.Errorf("no model")
	}
	res := make([]Assignment, n)
	for i := range res {
		x := rng.Float64() * total
		k := 0
		for k < len(cumul)-1 && cumul[k] <= x {
			k++
		}
		a := make(Assignment, len(set))
		for j, v := range set {
			a[j] = v
			if !models[k][v-1] {
				a[j] = -v
			}
		}
		res[i] = a
	}
	return res, nil
}

func or(a []bool) bool {
	for _, v := range a {
		if v {
			return true
		}
	}
	return false
}

func tautology([]bool) bool { return true }

func contradiction([]bool) bool { return false }

func variable(i int) func([]bool) bool {
	return func(a []bool) bool { return a[i-1] }
}

func weights(m map[int]*big.Rat) Weights {
	w, err := NewWeights(m)
	if err != nil {
		panic(err)
	}
	return w
}
