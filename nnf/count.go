// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package nnf

import (
	"errors"
	"fmt"
	"math/big"
	"math/rand"

	"github.com/bits-and-blooms/bitset"
)

// ErrWeights is returned when a weighting does not fit the circuit.
var ErrWeights = errors.New("bad weighting")

// Weights associates to each variable i of a circuit the weight of its
// negative literal (w[i-1][0]) and of its positive literal (w[i-1][1]). The
// slice must have exactly Varnum entries.
type Weights [][2]*big.Rat

func (c *Circuit) checkweights(w Weights) error {
	if len(w) != c.varnum {
		return fmt.Errorf("%w: %d variables in weighting, expected %d", ErrWeights, len(w), c.varnum)
	}
	for k, v := range w {
		if v[0] == nil || v[1] == nil {
			return fmt.Errorf("%w: missing weight for variable %d", ErrWeights, k+1)
		}
	}
	return nil
}

// counter holds the weighted count of every node, smoothed over the variables
// of the node.
type counter struct {
	c      *Circuit
	w      Weights
	sums   []*big.Rat // sums[i] = w[i-1][0] + w[i-1][1], index 0 unused
	counts []*big.Rat
}

func (c *Circuit) newcounter(w Weights) *counter {
	ct := &counter{
		c:      c,
		w:      w,
		sums:   make([]*big.Rat, c.varnum+1),
		counts: make([]*big.Rat, len(c.nodes)),
	}
	for k, v := range w {
		ct.sums[k+1] = new(big.Rat).Add(v[0], v[1])
	}
	for k, n := range c.nodes {
		ct.counts[k] = ct.count(n)
	}
	return ct
}

// missing returns the product of the total weights of the variables in outer
// that do not occur in inner.
func (ct *counter) missing(outer, inner *bitset.BitSet) *big.Rat {
	res := big.NewRat(1, 1)
	diff := outer.Difference(inner)
	for i, ok := diff.NextSet(0); ok; i, ok = diff.NextSet(i + 1) {
		res.Mul(res, ct.sums[i])
	}
	return res
}

func (ct *counter) weight(lit int) *big.Rat {
	if lit > 0 {
		return ct.w[lit-1][1]
	}
	return ct.w[-lit-1][0]
}

// count computes the count of n from the counts of its children, which are
// always known since children come first.
func (ct *counter) count(n node) *big.Rat {
	switch n.kind {
	case literal:
		return new(big.Rat).Set(ct.weight(n.lit))
	case and:
		res := big.NewRat(1, 1)
		for _, i := range n.children {
			res.Mul(res, ct.counts[i])
		}
		return res
	default:
		res := new(big.Rat)
		for _, i := range n.children {
			res.Add(res, ct.edge(n, i))
		}
		return res
	}
}

// edge returns the mass of child i of or-node n, smoothed over the variables
// of n.
func (ct *counter) edge(n node, i int) *big.Rat {
	res := ct.missing(n.vars, ct.c.nodes[i].vars)
	return res.Mul(res, ct.counts[i])
}

func (ct *counter) total() *big.Rat {
	root := ct.c.nodes[ct.c.root()]
	res := ct.missing(ct.c.allvars(), root.vars)
	return res.Mul(res, ct.counts[ct.c.root()])
}

func (c *Circuit) allvars() *bitset.BitSet {
	all := bitset.New(uint(c.varnum + 1))
	for i := 1; i <= c.varnum; i++ {
		all.Set(uint(i))
	}
	return all
}

// Count returns the weighted model count of the circuit over its Varnum
// variables. Variables that do not occur in a branch of a disjunction, or
// anywhere in the circuit, contribute the sum of the weights of their two
// literals. Weights can be arbitrary rationals.
func (c *Circuit) Count(w Weights) (*big.Rat, error) {
	if err := c.checkweights(w); err != nil {
		return nil, err
	}
	return c.newcounter(w).total(), nil
}

// Sampler draws models of a circuit with probability proportional to their
// weight. It is immutable once built and can serve concurrent calls to Draw,
// each with its own source of randomness.
type Sampler struct {
	c     *Circuit
	total *big.Rat
	// choice[n][k] is the probability of picking child k of or-node n, knowing
	// that none of the children before k was picked.
	choice map[int][]*big.Rat
	free   []*big.Rat // probability of the positive literal of a free variable
}

// NewSampler prepares the sampling of models of c under weighting w. All
// weights must be non-negative and the weighted count must be positive.
func (c *Circuit) NewSampler(w Weights) (*Sampler, error) {
	if err := c.checkweights(w); err != nil {
		return nil, err
	}
	for k, v := range w {
		if v[0].Sign() < 0 || v[1].Sign() < 0 {
			return nil, fmt.Errorf("%w: negative weight for variable %d", ErrWeights, k+1)
		}
	}
	ct := c.newcounter(w)
	s := &Sampler{
		c:      c,
		total:  ct.total(),
		choice: make(map[int][]*big.Rat),
		free:   make([]*big.Rat, c.varnum+1),
	}
	if s.total.Sign() == 0 {
		return nil, fmt.Errorf("cannot sample from a circuit with zero weighted count")
	}
	for i := 1; i <= c.varnum; i++ {
		s.free[i] = new(big.Rat)
		if ct.sums[i].Sign() != 0 {
			s.free[i].Quo(w[i-1][1], ct.sums[i])
		}
	}
	for k, n := range c.nodes {
		if n.kind != or {
			continue
		}
		probs := make([]*big.Rat, len(n.children))
		rest := new(big.Rat).Set(ct.counts[k])
		for j, i := range n.children {
			mass := ct.edge(n, i)
			probs[j] = new(big.Rat)
			if rest.Sign() > 0 {
				probs[j].Quo(mass, rest)
			}
			rest.Sub(rest, mass)
		}
		s.choice[k] = probs
	}
	return s, nil
}

// Total returns the weighted count of the circuit.
func (s *Sampler) Total() *big.Rat {
	return new(big.Rat).Set(s.total)
}

// Draw returns one model as a slice of length Varnum, where entry k is 1 when
// variable k+1 is true.
func (s *Sampler) Draw(rng *rand.Rand) []int {
	res := make([]int, s.c.varnum)
	root := s.c.root()
	s.drawfree(rng, res, s.c.allvars().Difference(s.c.nodes[root].vars))
	stack := []int{root}
	for len(stack) > 0 {
		k := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := s.c.nodes[k]
		switch n.kind {
		case literal:
			if n.lit > 0 {
				res[n.lit-1] = 1
			} else {
				res[-n.lit-1] = 0
			}
		case and:
			stack = append(stack, n.children...)
		case or:
			probs := s.choice[k]
			pick := n.children[len(n.children)-1]
			for j, i := range n.children {
				if bernoulli(rng, probs[j]) {
					pick = i
					break
				}
			}
			s.drawfree(rng, res, n.vars.Difference(s.c.nodes[pick].vars))
			stack = append(stack, pick)
		}
	}
	return res
}

func (s *Sampler) drawfree(rng *rand.Rand, res []int, vars *bitset.BitSet) {
	for i, ok := vars.NextSet(0); ok; i, ok = vars.NextSet(i + 1) {
		res[i-1] = 0
		if bernoulli(rng, s.free[i]) {
			res[i-1] = 1
		}
	}
}

// bernoulli returns true with probability p, exactly.
func bernoulli(rng *rand.Rand, p *big.Rat) bool {
	if p.Sign() <= 0 {
		return false
	}
	if p.Cmp(big.NewRat(1, 1)) >= 0 {
		return true
	}
	r := new(big.Int).Rand(rng, p.Denom())
	return r.Cmp(p.Num()) < 0
}
